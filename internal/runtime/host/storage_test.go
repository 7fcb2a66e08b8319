package host

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CosmWasm/wazerovm/types"
)

func TestDBReadWriteRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	key := f.input([]byte("counter"))

	ptr, err := f.env.DBRead(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, ptr, "absent key")
	assert.Zero(t, f.alloc.Calls, "nothing allocated for an absent key")

	require.NoError(t, f.env.DBWrite(key, f.input([]byte{0x01, 0x02})))
	ptr, err = f.env.DBRead(ctx, key)
	require.NoError(t, err)
	require.NotZero(t, ptr)
	assert.Equal(t, []byte{0x01, 0x02}, f.data(ptr))

	require.NoError(t, f.env.DBWrite(key, f.input([]byte("overwritten"))))
	ptr, err = f.env.DBRead(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("overwritten"), f.data(ptr))

	require.NoError(t, f.env.DBRemove(key))
	ptr, err = f.env.DBRead(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, ptr)

	// removing twice is fine
	require.NoError(t, f.env.DBRemove(key))
}

func TestDBReadEmptyValueIsPresent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	key := f.input([]byte("k"))

	require.NoError(t, f.env.DBWrite(key, f.input(nil)))
	ptr, err := f.env.DBRead(ctx, key)
	require.NoError(t, err)
	require.NotZero(t, ptr)
	assert.Empty(t, f.data(ptr))
}

func TestDBLimits(t *testing.T) {
	f := newFixture(t)

	bigKey := f.input(bytes.Repeat([]byte{'k'}, MaxLengthDBKey+1))
	err := f.env.DBWrite(bigKey, f.input([]byte("v")))
	requireRegionError(t, err, types.RegionLengthTooBig)

	bigValue := f.input(bytes.Repeat([]byte{'v'}, MaxLengthDBValue+1))
	err = f.env.DBWrite(f.input([]byte("k")), bigValue)
	requireRegionError(t, err, types.RegionLengthTooBig)

	assert.Nil(t, f.env.Backend.Storage.Get([]byte("k")), "nothing stored on failure")

	maxKey := bytes.Repeat([]byte{'k'}, MaxLengthDBKey)
	require.NoError(t, f.env.DBWrite(f.input(maxKey), f.input([]byte("v"))))
	assert.Equal(t, []byte("v"), f.env.Backend.Storage.Get(maxKey))
}

func TestDBReadAllocatorFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	key := f.input([]byte("k"))
	require.NoError(t, f.env.DBWrite(key, f.input([]byte("v"))))

	f.alloc.Override = func(uint32) (uint32, error) { return 0, nil }
	ptr, err := f.env.DBRead(ctx, key)
	assert.Zero(t, ptr)
	requireRegionError(t, err, types.RegionZeroAddress)
}

func TestDBScanAndNextAreUnsupported(t *testing.T) {
	f := newFixture(t)

	_, err := f.env.DBScan(f.input([]byte("a")), f.input([]byte("z")), 1)
	var unsupported *types.UnsupportedError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "db_scan", unsupported.Capability)

	_, err = f.env.DBNext(1)
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "db_next", unsupported.Capability)
}

func TestDBRejectsEmptyKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	empty := f.input(nil)

	requireCommunicationError := func(t *testing.T, err error, function string) {
		t.Helper()
		var commErr *types.CommunicationError
		require.True(t, errors.As(err, &commErr), "expected CommunicationError, got %v", err)
		assert.Contains(t, commErr.Msg, function)
	}

	ptr, err := f.env.DBRead(ctx, empty)
	assert.Zero(t, ptr)
	requireCommunicationError(t, err, "db_read")

	err = f.env.DBWrite(empty, f.input([]byte("v")))
	requireCommunicationError(t, err, "db_write")

	err = f.env.DBRemove(empty)
	requireCommunicationError(t, err, "db_remove")
}
