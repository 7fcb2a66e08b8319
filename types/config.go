package types

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

const wasmPageSize = 64 * 1024

var validate = validator.New()

// VMConfig defines the configuration for the VM.
type VMConfig struct {
	// ModuleName is the import module the host functions are exported under.
	ModuleName string `json:"module_name" validate:"required"`
	// PrintDebug enables forwarding of contract debug messages to the logger.
	PrintDebug bool `json:"print_debug"`
	// InstanceMemoryLimit caps the linear memory of every instance. Zero means
	// the wazero default (4 GiB).
	InstanceMemoryLimit Size `json:"instance_memory_limit"`
}

// DefaultVMConfig returns the configuration used by the CosmWasm ABI.
func DefaultVMConfig() VMConfig {
	return VMConfig{
		ModuleName:          "env",
		PrintDebug:          false,
		InstanceMemoryLimit: NewSizeMebi(32),
	}
}

// Validate checks the struct tags and that the memory limit is page aligned.
func (c VMConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid vm config: %w", err)
	}
	if c.InstanceMemoryLimit.uint32%wasmPageSize != 0 {
		return fmt.Errorf("invalid vm config: instance memory limit %d is not a multiple of %d", c.InstanceMemoryLimit.uint32, wasmPageSize)
	}
	return nil
}

// MemoryLimitPages returns the memory limit in Wasm pages, or 0 when unset.
func (c VMConfig) MemoryLimitPages() uint32 {
	return c.InstanceMemoryLimit.uint32 / wasmPageSize
}

type Size struct{ uint32 }

func (s Size) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.uint32)
}

func (s *Size) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &s.uint32)
}

// Bytes returns the size in bytes.
func (s Size) Bytes() uint32 {
	return s.uint32
}

func NewSize(v uint32) Size {
	return Size{v}
}

func NewSizeKibi(v uint32) Size {
	return Size{v * 1024}
}

// MaxSizeMebi is the largest whole number of MiB a Size can hold.
const MaxSizeMebi = math.MaxUint32 >> 20

// NewSizeMebi wraps around above MaxSizeMebi, so callers taking user input
// check the bound first.
func NewSizeMebi(v uint32) Size {
	return Size{v * 1024 * 1024}
}
