package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CosmWasm/wazerovm/internal/runtime/host"
)

func newImportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "imports",
		Short: "List the host functions contracts can import",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			for _, imp := range host.Imports() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s.%s\n", config.ModuleName, imp.Signature())
			}
			return nil
		},
	}
}
