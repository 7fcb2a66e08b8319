// Package backend provides in-process implementations of the capabilities a
// contract instance is given: storage, address conversion and chain queries.
package backend

import (
	dbm "github.com/cometbft/cometbft-db"

	"github.com/CosmWasm/wazerovm/types"
)

// Lookup is an in-memory KVStore backed by a cometbft-db MemDB, used by
// tests and the demo CLI.
type Lookup struct {
	db *dbm.MemDB
}

var _ types.KVStore = Lookup{}

// NewLookup returns an empty store.
func NewLookup() Lookup {
	return Lookup{
		db: dbm.NewMemDB(),
	}
}

// Get returns nil for an absent key. MemDB only fails on an empty key,
// which the host rejects before it reaches a store, so errors panic.
func (l Lookup) Get(key []byte) []byte {
	v, err := l.db.Get(key)
	if err != nil {
		panic(err)
	}
	return v
}

// Set stores value under key.
func (l Lookup) Set(key, value []byte) {
	if err := l.db.Set(key, value); err != nil {
		panic(err)
	}
}

// Delete removes key if present.
func (l Lookup) Delete(key []byte) {
	if err := l.db.Delete(key); err != nil {
		panic(err)
	}
}

