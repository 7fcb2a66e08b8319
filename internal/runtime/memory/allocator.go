package memory

import (
	"context"
	"math"

	"github.com/tetratelabs/wazero/api"

	"github.com/CosmWasm/wazerovm/types"
)

// Allocator reserves a Region of the given capacity inside the guest and
// returns a pointer to it.
type Allocator interface {
	Allocate(ctx context.Context, size uint32) (uint32, error)
}

// AllocatorFunc adapts a plain function to the Allocator interface.
type AllocatorFunc func(ctx context.Context, size uint32) (uint32, error)

func (f AllocatorFunc) Allocate(ctx context.Context, size uint32) (uint32, error) {
	return f(ctx, size)
}

// NewExportAllocator wraps the contract's exported "allocate" function.
func NewExportAllocator(mod api.Module) (Allocator, error) {
	allocate := mod.ExportedFunction("allocate")
	if allocate == nil {
		return nil, types.NewCommunicationError("contract does not export 'allocate'")
	}
	return AllocatorFunc(func(ctx context.Context, size uint32) (uint32, error) {
		results, err := allocate.Call(ctx, api.EncodeU32(size))
		if err != nil {
			return 0, err
		}
		if len(results) != 1 {
			return 0, types.NewCommunicationError("expected 1 result from 'allocate', got %d", len(results))
		}
		return api.DecodeU32(results[0]), nil
	}), nil
}

// WriteToContract asks the guest for a Region large enough for data, copies
// data into it and returns the Region pointer. A zero pointer from the guest
// allocator is a fault; the host never writes to address zero.
func WriteToContract(ctx context.Context, alloc Allocator, mem Memory, data []byte) (uint32, error) {
	if uint64(len(data)) > math.MaxUint32 {
		return 0, types.NewCommunicationError("cannot allocate %d bytes in a 32 bit memory", len(data))
	}
	ptr, err := alloc.Allocate(ctx, uint32(len(data)))
	if err != nil {
		return 0, types.NewCommunicationError("failed to call 'allocate': %v", err)
	}
	if ptr == 0 {
		return 0, &types.RegionError{Kind: types.RegionZeroAddress}
	}
	if err := WriteRegion(mem, ptr, data); err != nil {
		return 0, err
	}
	return ptr, nil
}
