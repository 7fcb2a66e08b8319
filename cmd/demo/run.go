package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	cosmwasm "github.com/CosmWasm/wazerovm"
	"github.com/CosmWasm/wazerovm/backend"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file.wasm> <export> [params...]",
		Short: "Instantiate a contract and call one export",
		Long: `Instantiate a contract with fresh in-memory backends and call one of its
exports. Params are passed as unsigned integers, the way guest pointers are.`,
		Args: cobra.MinimumNArgs(2),
		RunE: runRun,
	}
	cmd.Flags().String("prefix", "cosmwasm", "Bech32 prefix of human addresses")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	wasm, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	params := make([]uint64, 0, len(args)-2)
	for _, arg := range args[2:] {
		v, err := strconv.ParseUint(arg, 0, 64)
		if err != nil {
			return fmt.Errorf("invalid param %q: %w", arg, err)
		}
		params = append(params, v)
	}

	vm, err := cosmwasm.NewVM(ctx, config, logger)
	if err != nil {
		return err
	}
	defer vm.Close(ctx)

	prefix, _ := cmd.Flags().GetString("prefix")
	instance, err := vm.Instantiate(ctx, wasm, backend.NewInMemory(prefix, nil))
	if err != nil {
		return err
	}
	defer instance.Close(ctx)

	results, err := instance.Call(ctx, args[1], params...)
	if err != nil {
		return err
	}
	for _, result := range results {
		fmt.Fprintln(cmd.OutOrStdout(), result)
	}
	return nil
}
