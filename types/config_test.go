package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigJSON(t *testing.T) {
	config := VMConfig{
		ModuleName:          "env",
		PrintDebug:          true,
		InstanceMemoryLimit: NewSizeKibi(128),
	}
	expected := `{"module_name":"env","print_debug":true,"instance_memory_limit":131072}`

	bz, err := json.Marshal(config)
	require.NoError(t, err)
	assert.Equal(t, expected, string(bz))

	var decoded VMConfig
	require.NoError(t, json.Unmarshal(bz, &decoded))
	assert.Equal(t, config, decoded)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *VMConfig)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(*VMConfig) {},
		},
		{
			name:   "no memory limit",
			mutate: func(c *VMConfig) { c.InstanceMemoryLimit = NewSize(0) },
		},
		{
			name:    "missing module name",
			mutate:  func(c *VMConfig) { c.ModuleName = "" },
			wantErr: "ModuleName",
		},
		{
			name:    "unaligned memory limit",
			mutate:  func(c *VMConfig) { c.InstanceMemoryLimit = NewSize(100) },
			wantErr: "not a multiple",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultVMConfig()
			tc.mutate(&config)
			err := config.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestMemoryLimitPages(t *testing.T) {
	assert.Equal(t, uint32(512), DefaultVMConfig().MemoryLimitPages())
	assert.Equal(t, uint32(0), VMConfig{}.MemoryLimitPages())
}

func TestNewSizeMebiMaximum(t *testing.T) {
	size := NewSizeMebi(MaxSizeMebi)
	assert.Equal(t, uint32(4095*1024*1024), size.Bytes())

	config := DefaultVMConfig()
	config.InstanceMemoryLimit = size
	require.NoError(t, config.Validate())
	assert.Equal(t, uint32(4095*16), config.MemoryLimitPages())
}
