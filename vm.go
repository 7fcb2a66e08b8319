package cosmwasm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/CosmWasm/wazerovm/internal/runtime/cache"
	"github.com/CosmWasm/wazerovm/internal/runtime/host"
	"github.com/CosmWasm/wazerovm/internal/runtime/memory"
	"github.com/CosmWasm/wazerovm/internal/runtime/validation"
	"github.com/CosmWasm/wazerovm/types"
)

// KVStore is a reference to some sub-kvstore that is valid for one instance of a code
type KVStore = types.KVStore

// GoAPI converts addresses between their human and canonical forms
type GoAPI = types.GoAPI

// Querier lets us make read-only queries on other modules
type Querier = types.Querier

// Backend bundles the capabilities handed to one instance
type Backend = types.Backend

// VM is the main entry point to this library. It owns a wazero runtime with
// the host module registered and a cache of compiled contracts.
type VM struct {
	config  types.VMConfig
	runtime wazero.Runtime
	logger  zerolog.Logger
	cache   *cache.Cache
}

// Metrics reports usage of the compiled code cache.
type Metrics = cache.Metrics

// NewVM creates a VM from a validated config.
func NewVM(ctx context.Context, config types.VMConfig, logger zerolog.Logger) (*VM, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	runtimeConfig := wazero.NewRuntimeConfig()
	if pages := config.MemoryLimitPages(); pages > 0 {
		runtimeConfig = runtimeConfig.WithMemoryLimitPages(pages)
	}
	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeConfig)
	if _, err := host.Instantiate(ctx, runtime, config.ModuleName); err != nil {
		_ = runtime.Close(ctx)
		return nil, err
	}

	logger.Info().
		Str("module", config.ModuleName).
		Uint32("memory_limit_pages", config.MemoryLimitPages()).
		Msg("Wazero runtime initialized")

	return &VM{
		config:  config,
		runtime: runtime,
		logger:  logger,
		cache:   cache.New(),
	}, nil
}

// StoreCode validates and compiles wasm and caches the result under its
// checksum. Storing the same code twice compiles it once.
func (vm *VM) StoreCode(ctx context.Context, wasm []byte) (types.Checksum, error) {
	checksum := types.NewChecksum(wasm)
	if vm.cache.Contains(checksum) {
		return checksum, nil
	}

	compiled, err := vm.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return checksum, fmt.Errorf("failed to compile contract: %w", err)
	}
	if err := validation.Contract(compiled, vm.config.ModuleName); err != nil {
		_ = compiled.Close(ctx)
		return checksum, err
	}

	if !vm.cache.Save(checksum, compiled, len(wasm)) {
		// stored concurrently
		_ = compiled.Close(ctx)
		return checksum, nil
	}
	vm.logger.Debug().Str("checksum", checksum.String()).Int("size", len(wasm)).Msg("stored contract code")
	return checksum, nil
}

// Pin keeps stored code in the cache until Unpin is called.
func (vm *VM) Pin(checksum types.Checksum) error {
	return vm.cache.Pin(checksum)
}

// Unpin allows stored code to be removed again.
func (vm *VM) Unpin(checksum types.Checksum) {
	vm.cache.Unpin(checksum)
}

// RemoveCode drops stored code. Pinned code is kept and an error returned.
// Instances already created from the code are not affected.
func (vm *VM) RemoveCode(ctx context.Context, checksum types.Checksum) error {
	removed, err := vm.cache.Remove(ctx, checksum)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("cannot remove pinned code %s", checksum)
	}
	return nil
}

// Metrics returns a snapshot of the code cache counters.
func (vm *VM) Metrics() Metrics {
	return vm.cache.Metrics()
}

// Instantiate compiles wasm if needed and creates a fresh instance that uses
// backend for storage, addresses and queries.
func (vm *VM) Instantiate(ctx context.Context, wasm []byte, backend Backend) (*Instance, error) {
	checksum, err := vm.StoreCode(ctx, wasm)
	if err != nil {
		return nil, err
	}
	return vm.InstantiateStored(ctx, checksum, backend)
}

// InstantiateStored creates an instance of previously stored code.
func (vm *VM) InstantiateStored(ctx context.Context, checksum types.Checksum, backend Backend) (*Instance, error) {
	compiled, ok := vm.cache.Load(checksum)
	if !ok {
		return nil, fmt.Errorf("no code stored for checksum %s", checksum)
	}

	// an empty name keeps instances of the same code apart
	mod, err := vm.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate contract: %w", err)
	}

	mem := mod.Memory()
	if mem == nil {
		_ = mod.Close(ctx)
		return nil, types.NewCommunicationError("contract does not export memory")
	}
	alloc, err := memory.NewExportAllocator(mod)
	if err != nil {
		_ = mod.Close(ctx)
		return nil, err
	}

	env := host.NewEnvironment(backend, mem, alloc, vm.logger.With().Str("checksum", checksum.String()).Logger())
	env.PrintDebug = vm.config.PrintDebug
	return &Instance{module: mod, env: env}, nil
}

// Close releases every compiled contract and then the runtime.
func (vm *VM) Close(ctx context.Context) error {
	if err := vm.cache.Close(ctx); err != nil {
		vm.logger.Warn().Err(err).Msg("closing compiled contracts")
	}
	return vm.runtime.Close(ctx)
}

// Instance is one instantiated contract. It serves one call at a time.
type Instance struct {
	module api.Module
	env    *host.Environment
}

// Call invokes an export of the contract. A fault raised by a host import
// is returned as is, so callers can inspect it with errors.As.
func (i *Instance) Call(ctx context.Context, export string, params ...uint64) ([]uint64, error) {
	fn := i.module.ExportedFunction(export)
	if fn == nil {
		return nil, fmt.Errorf("contract does not export %q", export)
	}

	i.env.Reset()
	results, err := fn.Call(host.WithEnvironment(ctx, i.env), params...)
	if fault := i.env.Fault(); fault != nil {
		return nil, fault
	}
	if err != nil {
		return nil, fmt.Errorf("calling %q: %w", export, err)
	}
	return results, nil
}

// Memory exposes the instance's linear memory.
func (i *Instance) Memory() api.Memory {
	return i.module.Memory()
}

// SetDebugHandler routes contract debug messages to handler instead of the
// logger. Passing nil restores the default.
func (i *Instance) SetDebugHandler(handler func(msg string)) {
	i.env.DebugHandler = handler
}

// Close releases the instance.
func (i *Instance) Close(ctx context.Context) error {
	return i.module.Close(ctx)
}
