package host

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/CosmWasm/wazerovm/internal/runtime/memory"
	"github.com/CosmWasm/wazerovm/types"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const envKey contextKey = "env"

// DebugHandler receives the text of every debug call when set.
type DebugHandler func(msg string)

// Environment is everything the host imports need during one contract call:
// the instance's backend, the guest's memory and the guest's allocator.
// It is bound to the call through the context and never shared between
// instances.
type Environment struct {
	Backend   types.Backend
	Memory    memory.Memory
	Allocator memory.Allocator

	Logger       zerolog.Logger
	PrintDebug   bool
	DebugHandler DebugHandler

	fault error
}

// NewEnvironment creates the per-instance environment.
func NewEnvironment(backend types.Backend, mem memory.Memory, alloc memory.Allocator, logger zerolog.Logger) *Environment {
	return &Environment{
		Backend:   backend,
		Memory:    mem,
		Allocator: alloc,
		Logger:    logger.With().Str("module", "host").Logger(),
	}
}

// WithEnvironment binds env to ctx for the duration of a guest call.
func WithEnvironment(ctx context.Context, env *Environment) context.Context {
	return context.WithValue(ctx, envKey, env)
}

// EnvironmentFrom returns the Environment bound to ctx.
func EnvironmentFrom(ctx context.Context) (*Environment, error) {
	env, ok := ctx.Value(envKey).(*Environment)
	if !ok || env == nil {
		return nil, types.NewCommunicationError("no host environment bound to the call context")
	}
	return env, nil
}

// Fault returns the first host fault raised since the last Reset.
func (e *Environment) Fault() error {
	return e.fault
}

// Reset clears a recorded fault before the next call.
func (e *Environment) Reset() {
	e.fault = nil
}

// recordFault keeps the first fault of a call; later ones are consequences of
// the guest being torn down.
func (e *Environment) recordFault(function string, err error) {
	if e.fault != nil {
		return
	}
	e.fault = err

	event := e.Logger.Error()
	var abortErr *types.AbortError
	if errors.As(err, &abortErr) {
		event = e.Logger.Warn()
	}
	event.Str("function", function).Err(err).Msg("host function failed")
}

func (e *Environment) readRegion(ptr uint32, maxLength uint32) ([]byte, error) {
	return memory.ReadRegion(e.Memory, ptr, maxLength)
}

func (e *Environment) writeRegion(ptr uint32, data []byte) error {
	return memory.WriteRegion(e.Memory, ptr, data)
}

// allocate returns data to the guest in a freshly allocated Region.
func (e *Environment) allocate(ctx context.Context, data []byte) (uint32, error) {
	return memory.WriteToContract(ctx, e.Allocator, e.Memory, data)
}
