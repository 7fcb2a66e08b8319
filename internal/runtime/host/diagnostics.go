package host

import (
	"context"
	"fmt"
	"strings"

	"github.com/CosmWasm/wazerovm/types"
)

// Debug implements debug. It never fails the call: unreadable regions are
// logged and dropped.
func (e *Environment) Debug(messagePtr uint32) {
	if !e.PrintDebug && e.DebugHandler == nil {
		return
	}
	raw, err := e.readRegion(messagePtr, MaxLengthDebug)
	if err != nil {
		e.Logger.Warn().Err(err).Msg("debug: dropping unreadable message")
		return
	}
	msg := strings.ToValidUTF8(string(raw), "�")

	if e.DebugHandler != nil {
		e.DebugHandler(msg)
		return
	}
	e.Logger.Debug().Str("source", "contract").Msg(msg)
}

// Abort implements abort. The returned error is always non-nil and stops
// the contract call.
func (e *Environment) Abort(messagePtr uint32) error {
	raw, err := e.readRegion(messagePtr, MaxLengthAbort)
	if err != nil {
		return fmt.Errorf("abort: reading message: %w", err)
	}
	return &types.AbortError{Msg: strings.ToValidUTF8(string(raw), "�")}
}

// QueryChain implements query_chain. Request and response bytes are passed
// through untouched.
func (e *Environment) QueryChain(ctx context.Context, requestPtr uint32) (uint32, error) {
	request, err := e.readRegion(requestPtr, MaxLengthQueryChainRequest)
	if err != nil {
		return 0, fmt.Errorf("query_chain: reading request: %w", err)
	}

	response, err := e.Backend.Querier.QueryRaw(request)
	if err != nil {
		return 0, &types.BackendError{Msg: fmt.Sprintf("query_chain: %v", err)}
	}

	ptr, err := e.allocate(ctx, response)
	if err != nil {
		return 0, fmt.Errorf("query_chain: returning response: %w", err)
	}
	return ptr, nil
}
