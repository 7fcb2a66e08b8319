package host

import (
	"context"
	"fmt"
)

const (
	errInputEmpty    = "Input is empty"
	errNotNormalized = "Address is not normalized"
)

// addrResult is the outcome of an address operation before it is translated
// to the guest convention: either success or a message for the contract.
type addrResult struct {
	ok  bool
	msg string
}

var addrOK = addrResult{ok: true}

func addrErr(msg string) addrResult { return addrResult{msg: msg} }

// finish turns an addrResult into 0 or a pointer to the error text.
func (e *Environment) finish(ctx context.Context, function string, res addrResult) (uint32, error) {
	if res.ok {
		return StatusOK, nil
	}
	e.Logger.Debug().Str("function", function).Str("reason", res.msg).Msg("address rejected")
	ptr, err := e.allocate(ctx, []byte(res.msg))
	if err != nil {
		return 0, fmt.Errorf("%s: returning error message: %w", function, err)
	}
	return ptr, nil
}

// AddrValidate implements addr_validate.
func (e *Environment) AddrValidate(ctx context.Context, sourcePtr uint32) (uint32, error) {
	source, err := e.readRegion(sourcePtr, MaxLengthHumanAddress)
	if err != nil {
		return 0, fmt.Errorf("addr_validate: reading address: %w", err)
	}
	return e.finish(ctx, "addr_validate", e.validate(string(source)))
}

func (e *Environment) validate(human string) addrResult {
	if human == "" {
		return addrErr(errInputEmpty)
	}
	canonical, err := e.Backend.API.CanonicalAddress(human)
	if err != nil {
		return addrErr(err.Error())
	}
	normalized, err := e.Backend.API.HumanAddress(canonical)
	if err != nil {
		return addrErr(err.Error())
	}
	if normalized != human {
		return addrErr(errNotNormalized)
	}
	return addrOK
}

// AddrCanonicalize implements addr_canonicalize.
func (e *Environment) AddrCanonicalize(ctx context.Context, sourcePtr, destinationPtr uint32) (uint32, error) {
	source, err := e.readRegion(sourcePtr, MaxLengthHumanAddress)
	if err != nil {
		return 0, fmt.Errorf("addr_canonicalize: reading address: %w", err)
	}
	if len(source) == 0 {
		return e.finish(ctx, "addr_canonicalize", addrErr(errInputEmpty))
	}

	canonical, err := e.Backend.API.CanonicalAddress(string(source))
	if err != nil {
		return e.finish(ctx, "addr_canonicalize", addrErr(err.Error()))
	}
	if err := e.writeRegion(destinationPtr, canonical); err != nil {
		return 0, fmt.Errorf("addr_canonicalize: writing result: %w", err)
	}
	return StatusOK, nil
}

// AddrHumanize implements addr_humanize.
func (e *Environment) AddrHumanize(ctx context.Context, sourcePtr, destinationPtr uint32) (uint32, error) {
	source, err := e.readRegion(sourcePtr, MaxLengthCanonicalAddress)
	if err != nil {
		return 0, fmt.Errorf("addr_humanize: reading address: %w", err)
	}

	human, err := e.Backend.API.HumanAddress(source)
	if err != nil {
		return e.finish(ctx, "addr_humanize", addrErr(err.Error()))
	}
	if err := e.writeRegion(destinationPtr, []byte(human)); err != nil {
		return 0, fmt.Errorf("addr_humanize: writing result: %w", err)
	}
	return StatusOK, nil
}
