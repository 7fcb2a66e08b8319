package host

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/CosmWasm/wazerovm/backend"
	"github.com/CosmWasm/wazerovm/internal/runtime/memory/memtest"
	"github.com/CosmWasm/wazerovm/types"
)

const testPrefix = "cosmwasm"

type fixture struct {
	env   *Environment
	mem   *memtest.Memory
	alloc *memtest.Allocator
	logs  *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := memtest.NewMemory(8)
	alloc := memtest.NewAllocator(mem, 8)
	logs := &bytes.Buffer{}
	querier := backend.QuerierFunc(func(request []byte) ([]byte, error) {
		if bytes.Equal(request, []byte("fail")) {
			return nil, errors.New("querier is down")
		}
		return append([]byte("response to "), request...), nil
	})
	env := NewEnvironment(backend.NewInMemory(testPrefix, querier), mem, alloc, zerolog.New(logs).Level(zerolog.TraceLevel))
	return &fixture{env: env, mem: mem, alloc: alloc, logs: logs}
}

// input places data into guest memory and returns its Region pointer.
func (f *fixture) input(data []byte) uint32 {
	return f.alloc.Input(data)
}

func (f *fixture) output(capacity uint32) uint32 {
	return f.alloc.Output(capacity)
}

func (f *fixture) data(ptr uint32) []byte {
	return f.mem.RegionData(ptr)
}

func (f *fixture) human(t *testing.T, canonical []byte) string {
	t.Helper()
	human, err := f.env.Backend.API.HumanAddress(canonical)
	require.NoError(t, err)
	return human
}

func requireRegionError(t *testing.T, err error, kind types.RegionErrorKind) {
	t.Helper()
	var regionErr *types.RegionError
	require.True(t, errors.As(err, &regionErr), "expected RegionError, got %v", err)
	require.Equal(t, kind, regionErr.Kind, "unexpected region error: %v", regionErr)
}

// encodeSections is written out independently of the sections package so the
// tests pin the wire format.
func encodeSections(items ...[]byte) []byte {
	var out []byte
	for _, item := range items {
		out = binary.BigEndian.AppendUint32(out, uint32(len(item)))
		out = append(out, item...)
	}
	return out
}
