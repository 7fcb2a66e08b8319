package backend

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/CosmWasm/wazerovm/types"
)

const (
	// MinCanonicalLength and MaxCanonicalLength bound the canonical form.
	MinCanonicalLength = 1
	MaxCanonicalLength = 64
)

// Bech32API converts between bech32 human addresses with a fixed prefix and
// raw canonical bytes.
type Bech32API struct {
	Prefix string
}

var _ types.GoAPI = Bech32API{}

func NewBech32API(prefix string) Bech32API {
	return Bech32API{Prefix: prefix}
}

func (a Bech32API) CanonicalAddress(human types.HumanAddress) (types.CanonicalAddress, error) {
	prefix, data, err := bech32.DecodeNoLimit(human)
	if err != nil {
		return nil, fmt.Errorf("Error decoding bech32: %w", err)
	}
	if prefix != a.Prefix {
		return nil, fmt.Errorf("Wrong bech32 prefix: expected %q, got %q", a.Prefix, prefix)
	}
	canonical, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("Error converting bech32 data: %w", err)
	}
	if err := checkCanonicalLength(canonical); err != nil {
		return nil, err
	}
	return canonical, nil
}

func (a Bech32API) HumanAddress(canonical types.CanonicalAddress) (types.HumanAddress, error) {
	if err := checkCanonicalLength(canonical); err != nil {
		return "", err
	}
	data, err := bech32.ConvertBits(canonical, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("Error converting canonical address: %w", err)
	}
	human, err := bech32.Encode(a.Prefix, data)
	if err != nil {
		return "", fmt.Errorf("Error encoding bech32: %w", err)
	}
	return human, nil
}

func checkCanonicalLength(canonical []byte) error {
	if len(canonical) < MinCanonicalLength {
		return fmt.Errorf("Invalid canonical address length: %d, minimum is %d", len(canonical), MinCanonicalLength)
	}
	if len(canonical) > MaxCanonicalLength {
		return fmt.Errorf("Invalid canonical address length: %d, maximum is %d", len(canonical), MaxCanonicalLength)
	}
	return nil
}
