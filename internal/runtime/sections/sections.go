// Package sections implements the length-prefixed encoding contracts use to
// pass a list of byte slices through a single Region.
//
// Every section is a 4 byte big endian length followed by that many bytes.
package sections

import (
	"encoding/binary"
	"math"

	"github.com/CosmWasm/wazerovm/types"
)

const lengthPrefix = 4

// Decode splits data into its sections. Sections alias data.
// A truncated prefix or payload is reported as a CommunicationError.
func Decode(data []byte) ([][]byte, error) {
	out := [][]byte{}
	rest := data
	for len(rest) > 0 {
		if len(rest) < lengthPrefix {
			return nil, types.NewCommunicationError("sections: %d trailing bytes cannot hold a length prefix", len(rest))
		}
		n := binary.BigEndian.Uint32(rest[:lengthPrefix])
		rest = rest[lengthPrefix:]
		if uint64(n) > uint64(len(rest)) {
			return nil, types.NewCommunicationError("sections: section of %d bytes exceeds remaining %d bytes", n, len(rest))
		}
		out = append(out, rest[:n:n])
		rest = rest[n:]
	}
	return out, nil
}

// Encode is the inverse of Decode.
func Encode(items ...[]byte) []byte {
	size := 0
	for _, item := range items {
		if uint64(len(item)) > math.MaxUint32 {
			panic("sections: item does not fit a 32 bit length prefix")
		}
		size += lengthPrefix + len(item)
	}
	out := make([]byte, 0, size)
	for _, item := range items {
		out = binary.BigEndian.AppendUint32(out, uint32(len(item)))
		out = append(out, item...)
	}
	return out
}
