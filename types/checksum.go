package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ChecksumLen is the length of a checksum in bytes.
const ChecksumLen = 32

// Checksum identifies a Wasm blob by the SHA-256 hash of its bytecode.
type Checksum [ChecksumLen]byte

// NewChecksum hashes wasm bytecode.
func NewChecksum(wasm []byte) Checksum {
	return sha256.Sum256(wasm)
}

func (cs Checksum) String() string {
	return hex.EncodeToString(cs[:])
}

// ParseChecksum decodes a hex encoded checksum.
func ParseChecksum(input string) (Checksum, error) {
	var cs Checksum
	data, err := hex.DecodeString(input)
	if err != nil {
		return cs, fmt.Errorf("invalid checksum %q: %w", input, err)
	}
	if len(data) != ChecksumLen {
		return cs, fmt.Errorf("got wrong number of bytes for checksum: %d", len(data))
	}
	copy(cs[:], data)
	return cs, nil
}
