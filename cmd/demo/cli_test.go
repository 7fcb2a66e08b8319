package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(args ...string) (string, error) {
	root := newRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestCLIHelp(t *testing.T) {
	output, err := executeCommand("--help")
	require.NoError(t, err)
	for _, phrase := range []string{"run", "imports", "--config", "--memory"} {
		assert.Contains(t, output, phrase)
	}
}

func TestCLIImports(t *testing.T) {
	output, err := executeCommand("imports")
	require.NoError(t, err)
	assert.Contains(t, output, "env.db_read(key_ptr i32) -> i32\n")
	assert.Contains(t, output, "env.abort(source_ptr i32)\n")
	assert.Len(t, strings.Split(strings.TrimSpace(output), "\n"), 22)
}

func TestCLIConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vm.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"module_name":"cosmwasm_env","instance_memory_limit":1048576}`), 0o600))

	output, err := executeCommand("imports", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, output, "cosmwasm_env.query_chain(request_ptr i32) -> i32")

	require.NoError(t, os.WriteFile(path, []byte(`{"module_name":"env","instance_memory_limit":1000}`), 0o600))
	_, err = executeCommand("imports", "--config", path)
	assert.ErrorContains(t, err, "not a multiple of")
}

func TestCLIMemoryFlagBounds(t *testing.T) {
	_, err := executeCommand("imports", "--memory", "4095")
	require.NoError(t, err)

	_, err = executeCommand("imports", "--memory", "4096")
	assert.ErrorContains(t, err, "exceeds the maximum of 4095 MiB")
}

func TestCLIRunErrors(t *testing.T) {
	_, err := executeCommand("run", "only-one-arg")
	assert.Error(t, err)

	_, err = executeCommand("run", filepath.Join(t.TempDir(), "missing.wasm"), "instantiate")
	assert.Error(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.wasm")
	require.NoError(t, os.WriteFile(path, []byte("not wasm"), 0o600))
	_, err = executeCommand("run", path, "instantiate", "x")
	assert.ErrorContains(t, err, "invalid param")
}
