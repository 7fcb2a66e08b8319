// Package memtest provides an in-process linear memory and a bump allocator
// that follow the guest side of the Region ABI, so host imports can be
// exercised without compiling a contract.
package memtest

import (
	"context"
	"encoding/binary"
	"fmt"
)

const pageSize = 64 * 1024

// Memory is a fixed-size linear memory backed by a byte slice.
type Memory struct {
	buf []byte
}

// NewMemory returns a zeroed memory of the given number of Wasm pages.
func NewMemory(pages uint32) *Memory {
	return &Memory{buf: make([]byte, int(pages)*pageSize)}
}

func (m *Memory) Size() uint32 {
	return uint32(len(m.buf))
}

func (m *Memory) Read(offset, byteCount uint32) ([]byte, bool) {
	if uint64(offset)+uint64(byteCount) > uint64(len(m.buf)) {
		return nil, false
	}
	return m.buf[offset : offset+byteCount], true
}

func (m *Memory) Write(offset uint32, v []byte) bool {
	if uint64(offset)+uint64(len(v)) > uint64(len(m.buf)) {
		return false
	}
	copy(m.buf[offset:], v)
	return true
}

// PutRegion writes a raw Region struct at ptr, bypassing any validation.
func (m *Memory) PutRegion(ptr, offset, capacity, length uint32) {
	raw := make([]byte, 12)
	binary.LittleEndian.PutUint32(raw[0:4], offset)
	binary.LittleEndian.PutUint32(raw[4:8], capacity)
	binary.LittleEndian.PutUint32(raw[8:12], length)
	if !m.Write(ptr, raw) {
		panic(fmt.Sprintf("region struct at %d does not fit into memory", ptr))
	}
}

// RegionData returns a copy of the bytes the Region at ptr currently holds.
func (m *Memory) RegionData(ptr uint32) []byte {
	raw, ok := m.Read(ptr, 12)
	if !ok {
		panic(fmt.Sprintf("no region struct at %d", ptr))
	}
	offset := binary.LittleEndian.Uint32(raw[0:4])
	length := binary.LittleEndian.Uint32(raw[8:12])
	data, ok := m.Read(offset, length)
	if !ok {
		panic(fmt.Sprintf("region at %d points outside memory", ptr))
	}
	return append([]byte{}, data...)
}

// Allocator hands out Regions from a growing cursor, the way a contract's
// allocate export would. It never frees.
type Allocator struct {
	mem   *Memory
	next  uint32
	Calls int
	// Override, when set, replaces the result of every Allocate call.
	Override func(size uint32) (uint32, error)
}

// NewAllocator starts allocating at base, which must be non-zero.
func NewAllocator(mem *Memory, base uint32) *Allocator {
	if base == 0 {
		panic("allocator base must not be zero")
	}
	return &Allocator{mem: mem, next: base}
}

func (a *Allocator) Allocate(_ context.Context, size uint32) (uint32, error) {
	a.Calls++
	if a.Override != nil {
		return a.Override(size)
	}
	return a.reserve(size)
}

func (a *Allocator) reserve(size uint32) (uint32, error) {
	ptr := align(a.next)
	dataOffset := ptr + 12
	end := uint64(dataOffset) + uint64(size)
	if end > uint64(a.mem.Size()) {
		return 0, fmt.Errorf("out of guest memory: need %d bytes", size)
	}
	a.mem.PutRegion(ptr, dataOffset, size, 0)
	a.next = uint32(end)
	return ptr, nil
}

// Input places data into a fresh Region as a contract would before calling an
// import, and returns the Region pointer.
func (a *Allocator) Input(data []byte) uint32 {
	ptr := a.Output(uint32(len(data)))
	raw, _ := a.mem.Read(ptr, 12)
	offset := binary.LittleEndian.Uint32(raw[0:4])
	a.mem.Write(offset, data)
	a.mem.PutRegion(ptr, offset, uint32(len(data)), uint32(len(data)))
	return ptr
}

// Output reserves an empty Region with the given capacity.
func (a *Allocator) Output(capacity uint32) uint32 {
	ptr, err := a.reserve(capacity)
	if err != nil {
		panic(err)
	}
	return ptr
}

func align(v uint32) uint32 {
	return (v + 7) &^ 7
}
