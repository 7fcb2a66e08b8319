package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/CosmWasm/wazerovm/types"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "demo",
		Short: "Run CosmWasm contracts on wazero",
		Long: `demo loads a contract with in-memory storage, a bech32 address codec
and no querier, and calls its exports. It is meant for poking at the host
imports, not for running a chain.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "Path to a JSON VM config")
	root.PersistentFlags().Bool("debug", false, "Print contract debug messages")
	root.PersistentFlags().Uint32("memory", 0, "Instance memory limit in MiB (overrides config)")
	root.PersistentFlags().String("log-level", "info", "Log level: trace, debug, info, warn, error")

	root.AddCommand(newRunCmd(), newImportsCmd())
	return root
}

// loadConfig builds the VM config from the defaults, an optional JSON file
// and flags, in that order.
func loadConfig(cmd *cobra.Command) (types.VMConfig, error) {
	config := types.DefaultVMConfig()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return config, fmt.Errorf("reading config: %w", err)
		}
		if err := json.Unmarshal(raw, &config); err != nil {
			return config, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if cmd.Flags().Changed("debug") {
		config.PrintDebug, _ = cmd.Flags().GetBool("debug")
	}
	if mebi, _ := cmd.Flags().GetUint32("memory"); mebi > 0 {
		if mebi > types.MaxSizeMebi {
			return config, fmt.Errorf("--memory %d MiB exceeds the maximum of %d MiB", mebi, types.MaxSizeMebi)
		}
		config.InstanceMemoryLimit = types.NewSizeMebi(mebi)
	}
	return config, config.Validate()
}

func newLogger(cmd *cobra.Command) (zerolog.Logger, error) {
	name, _ := cmd.Flags().GetString("log-level")
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
		Level(level).
		With().Timestamp().Logger(), nil
}
