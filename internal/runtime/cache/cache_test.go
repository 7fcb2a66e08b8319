package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"

	"github.com/CosmWasm/wazerovm/types"
)

// emptyModule is the smallest valid Wasm binary.
var emptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func compile(t *testing.T, r wazero.Runtime) wazero.CompiledModule {
	t.Helper()
	compiled, err := r.CompileModule(context.Background(), emptyModule)
	require.NoError(t, err)
	return compiled
}

func TestCacheSaveLoad(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	c := New()
	checksum := types.NewChecksum(emptyModule)
	assert.False(t, c.Contains(checksum))

	_, ok := c.Load(checksum)
	assert.False(t, ok)

	compiled := compile(t, r)
	assert.True(t, c.Save(checksum, compiled, len(emptyModule)))
	assert.False(t, c.Save(checksum, compile(t, r), len(emptyModule)), "first module wins")
	assert.True(t, c.Contains(checksum))

	got, ok := c.Load(checksum)
	require.True(t, ok)
	assert.Same(t, compiled, got)

	m := c.Metrics()
	assert.Equal(t, uint32(1), m.Hits)
	assert.Equal(t, uint32(1), m.Misses)
	assert.Equal(t, 1, m.ElementsCount)
	assert.Equal(t, uint64(len(emptyModule)), m.Size)
}

func TestCachePinning(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	c := New()
	checksum := types.NewChecksum(emptyModule)
	assert.Error(t, c.Pin(checksum), "unknown code cannot be pinned")

	c.Save(checksum, compile(t, r), len(emptyModule))
	require.NoError(t, c.Pin(checksum))
	assert.Equal(t, 1, c.Metrics().PinnedCount)

	removed, err := c.Remove(ctx, checksum)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.True(t, c.Contains(checksum))

	c.Unpin(checksum)
	removed, err = c.Remove(ctx, checksum)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, c.Contains(checksum))

	require.NoError(t, c.Close(ctx))
	assert.Zero(t, c.Metrics().ElementsCount)
}
