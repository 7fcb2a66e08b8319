package backend

import (
	"errors"

	"github.com/CosmWasm/wazerovm/types"
)

// QuerierFunc adapts a plain function to types.Querier.
type QuerierFunc func(request []byte) ([]byte, error)

var _ types.Querier = QuerierFunc(nil)

func (f QuerierFunc) QueryRaw(request []byte) ([]byte, error) {
	return f(request)
}

// ErrNoQuerier is returned by NoQuerier for every request.
var ErrNoQuerier = errors.New("queries are not available in this environment")

// NoQuerier answers every query with ErrNoQuerier.
type NoQuerier struct{}

var _ types.Querier = NoQuerier{}

func (NoQuerier) QueryRaw([]byte) ([]byte, error) {
	return nil, ErrNoQuerier
}

// NewInMemory returns a Backend backed by a fresh Lookup, a Bech32API with
// the given prefix and querier.
func NewInMemory(prefix string, querier types.Querier) types.Backend {
	if querier == nil {
		querier = NoQuerier{}
	}
	return types.Backend{
		Storage: NewLookup(),
		API:     NewBech32API(prefix),
		Querier: querier,
	}
}
