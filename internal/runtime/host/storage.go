package host

import (
	"context"
	"fmt"

	"github.com/CosmWasm/wazerovm/types"
)

// readKey reads a storage key. Stores do not accept empty keys, so one is a
// protocol violation by the contract.
func (e *Environment) readKey(function string, keyPtr uint32) ([]byte, error) {
	key, err := e.readRegion(keyPtr, MaxLengthDBKey)
	if err != nil {
		return nil, fmt.Errorf("%s: reading key: %w", function, err)
	}
	if len(key) == 0 {
		return nil, types.NewCommunicationError("%s: key must not be empty", function)
	}
	return key, nil
}

// DBRead implements db_read. It returns 0 for an absent key and a Region
// pointer holding the value otherwise.
func (e *Environment) DBRead(ctx context.Context, keyPtr uint32) (uint32, error) {
	key, err := e.readKey("db_read", keyPtr)
	if err != nil {
		return 0, err
	}

	value := e.Backend.Storage.Get(key)
	if value == nil {
		e.Logger.Trace().Hex("key", key).Msg("db_read: key not found")
		return 0, nil
	}

	ptr, err := e.allocate(ctx, value)
	if err != nil {
		return 0, fmt.Errorf("db_read: returning value: %w", err)
	}
	return ptr, nil
}

// DBWrite implements db_write, overwriting any existing value.
func (e *Environment) DBWrite(keyPtr, valuePtr uint32) error {
	key, err := e.readKey("db_write", keyPtr)
	if err != nil {
		return err
	}
	value, err := e.readRegion(valuePtr, MaxLengthDBValue)
	if err != nil {
		return fmt.Errorf("db_write: reading value: %w", err)
	}
	e.Backend.Storage.Set(key, value)
	return nil
}

// DBRemove implements db_remove. Removing an absent key is a no-op.
func (e *Environment) DBRemove(keyPtr uint32) error {
	key, err := e.readKey("db_remove", keyPtr)
	if err != nil {
		return err
	}
	e.Backend.Storage.Delete(key)
	return nil
}

// DBScan implements db_scan. Range iteration is not available in this VM.
func (e *Environment) DBScan(_, _ uint32, _ int32) (uint32, error) {
	return 0, &types.UnsupportedError{Capability: "db_scan"}
}

// DBNext implements db_next. Range iteration is not available in this VM.
func (e *Environment) DBNext(_ uint32) (uint32, error) {
	return 0, &types.UnsupportedError{Capability: "db_next"}
}
