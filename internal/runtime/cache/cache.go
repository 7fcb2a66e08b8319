// Package cache keeps compiled contracts by checksum so each code blob is
// compiled once per VM.
package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"

	"github.com/CosmWasm/wazerovm/types"
)

type entry struct {
	compiled wazero.CompiledModule
	size     uint64
	hits     uint32
}

// Metrics is a snapshot of cache usage.
type Metrics struct {
	Hits          uint32
	Misses        uint32
	ElementsCount int
	PinnedCount   int
	// Size is the summed bytecode size of all cached contracts.
	Size uint64
}

// Cache manages compiled Wasm modules
type Cache struct {
	mu      sync.RWMutex
	modules map[types.Checksum]*entry
	pinned  map[types.Checksum]struct{}
	hits    uint32
	misses  uint32
}

// New creates a new cache instance
func New() *Cache {
	return &Cache{
		modules: make(map[types.Checksum]*entry),
		pinned:  make(map[types.Checksum]struct{}),
	}
}

// Contains reports whether checksum is cached without touching the metrics.
func (c *Cache) Contains(checksum types.Checksum) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.modules[checksum]
	return ok
}

// Save stores a compiled module. If the checksum is already present the
// existing module is kept and false is returned; the caller owns compiled.
func (c *Cache) Save(checksum types.Checksum, compiled wazero.CompiledModule, size int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.modules[checksum]; ok {
		return false
	}
	c.modules[checksum] = &entry{compiled: compiled, size: uint64(size)}
	return true
}

// Load retrieves a compiled module and records a hit or a miss.
func (c *Cache) Load(checksum types.Checksum) (wazero.CompiledModule, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.modules[checksum]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	e.hits++
	return e.compiled, true
}

// Pin protects a cached module from Remove.
func (c *Cache) Pin(checksum types.Checksum) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.modules[checksum]; !ok {
		return fmt.Errorf("cannot pin %s: no code stored", checksum)
	}
	c.pinned[checksum] = struct{}{}
	return nil
}

// Unpin removes the pin from a module
func (c *Cache) Unpin(checksum types.Checksum) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pinned, checksum)
}

// Remove deletes and closes a module unless it is pinned. It reports
// whether the module is gone afterwards.
func (c *Cache) Remove(ctx context.Context, checksum types.Checksum) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, isPinned := c.pinned[checksum]; isPinned {
		return false, nil
	}
	e, ok := c.modules[checksum]
	if !ok {
		return true, nil
	}
	delete(c.modules, checksum)
	return true, e.compiled.Close(ctx)
}

// Metrics returns current hit counters and sizes.
func (c *Cache) Metrics() Metrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m := Metrics{
		Hits:          c.hits,
		Misses:        c.misses,
		ElementsCount: len(c.modules),
		PinnedCount:   len(c.pinned),
	}
	for _, e := range c.modules {
		m.Size += e.size
	}
	return m
}

// Close closes every cached module and empties the cache.
func (c *Cache) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for checksum, e := range c.modules {
		if err := e.compiled.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.modules, checksum)
	}
	c.pinned = make(map[types.Checksum]struct{})
	return firstErr
}
