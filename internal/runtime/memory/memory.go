package memory

import (
	"encoding/binary"
	"math"

	"github.com/CosmWasm/wazerovm/types"
)

// Memory is the part of a guest's linear memory the host touches.
// wazero's api.Memory satisfies it.
type Memory interface {
	Size() uint32
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
}

// Region describes data allocated in Wasm's linear memory
type Region struct {
	Offset   uint32
	Capacity uint32
	Length   uint32
}

// Size of a Region struct in bytes (3x4 bytes)
const RegionSize = 12

// validateRegion performs plausibility checks on a Region
func validateRegion(region *Region) error {
	if region.Offset == 0 {
		return &types.RegionError{Kind: types.RegionZeroAddress}
	}
	if region.Length > region.Capacity {
		return &types.RegionError{
			Kind:   types.RegionLengthExceedsCapacity,
			Offset: region.Offset,
			Length: uint64(region.Length),
			Limit:  uint64(region.Capacity),
		}
	}
	if uint64(region.Offset)+uint64(region.Capacity) > math.MaxUint32 {
		return &types.RegionError{
			Kind:   types.RegionOutOfRange,
			Offset: region.Offset,
			Length: uint64(region.Capacity),
		}
	}
	return nil
}

// checkBounds rejects any access that is not fully inside the current memory.
func checkBounds(mem Memory, offset uint32, length uint64) error {
	if uint64(offset)+length > uint64(mem.Size()) {
		return &types.RegionError{Kind: types.RegionOutOfBounds, Offset: offset, Length: length}
	}
	return nil
}

// readBytes returns a host owned copy of [offset, offset+length).
func readBytes(mem Memory, offset, length uint32) ([]byte, error) {
	if err := checkBounds(mem, offset, uint64(length)); err != nil {
		return nil, err
	}
	view, ok := mem.Read(offset, length)
	if !ok {
		return nil, &types.RegionError{Kind: types.RegionOutOfBounds, Offset: offset, Length: uint64(length)}
	}
	out := make([]byte, len(view))
	copy(out, view)
	return out, nil
}

// getRegion reads and validates the Region struct at ptr.
func getRegion(mem Memory, ptr uint32) (*Region, error) {
	if ptr == 0 {
		return nil, &types.RegionError{Kind: types.RegionZeroAddress}
	}
	raw, err := readBytes(mem, ptr, RegionSize)
	if err != nil {
		return nil, err
	}
	region := &Region{
		Offset:   binary.LittleEndian.Uint32(raw[0:4]),
		Capacity: binary.LittleEndian.Uint32(raw[4:8]),
		Length:   binary.LittleEndian.Uint32(raw[8:12]),
	}
	if err := validateRegion(region); err != nil {
		return nil, err
	}
	return region, nil
}

// ReadRegion copies the bytes described by the Region at ptr into a new host
// buffer. Regions longer than maxLength are rejected before anything is
// allocated host side.
func ReadRegion(mem Memory, ptr uint32, maxLength uint32) ([]byte, error) {
	region, err := getRegion(mem, ptr)
	if err != nil {
		return nil, err
	}
	if region.Length > maxLength {
		return nil, &types.RegionError{
			Kind:   types.RegionLengthTooBig,
			Offset: region.Offset,
			Length: uint64(region.Length),
			Limit:  uint64(maxLength),
		}
	}
	return readBytes(mem, region.Offset, region.Length)
}

// WriteRegion copies data into the Region at ptr and updates its length.
// Nothing is written unless the whole payload fits.
func WriteRegion(mem Memory, ptr uint32, data []byte) error {
	region, err := getRegion(mem, ptr)
	if err != nil {
		return err
	}
	if uint64(len(data)) > uint64(region.Capacity) {
		return &types.RegionError{
			Kind:   types.RegionTooSmall,
			Offset: region.Offset,
			Length: uint64(len(data)),
			Limit:  uint64(region.Capacity),
		}
	}
	if err := checkBounds(mem, region.Offset, uint64(len(data))); err != nil {
		return err
	}
	if !mem.Write(region.Offset, data) {
		return &types.RegionError{Kind: types.RegionOutOfBounds, Offset: region.Offset, Length: uint64(len(data))}
	}

	length := make([]byte, 4)
	binary.LittleEndian.PutUint32(length, uint32(len(data)))
	if !mem.Write(ptr+8, length) {
		return &types.RegionError{Kind: types.RegionOutOfBounds, Offset: ptr + 8, Length: 4}
	}
	return nil
}
