// Package validation performs the static checks a contract must pass before
// it is stored.
package validation

import (
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/CosmWasm/wazerovm/internal/runtime/host"
)

// requiredExports are called by the host, so every contract needs them.
var requiredExports = []string{"allocate"}

// Contract checks compiled against the host ABI. Imports from moduleName must
// name a known host function with exactly the host's signature; imports from
// any other module are rejected.
func Contract(compiled wazero.CompiledModule, moduleName string) error {
	if n := len(compiled.ExportedMemories()); n != 1 {
		return fmt.Errorf("Error during static Wasm validation: Wasm contract must contain exactly one memory, found %d", n)
	}

	exports := compiled.ExportedFunctions()
	for _, name := range requiredExports {
		if _, ok := exports[name]; !ok {
			return fmt.Errorf("Wasm contract doesn't have required export: %q", name)
		}
	}

	known := make(map[string]host.Import)
	for _, imp := range host.Imports() {
		known[imp.Name] = imp
	}
	for _, def := range compiled.ImportedFunctions() {
		module, name, _ := def.Import()
		if module != moduleName {
			return fmt.Errorf("Wasm contract imports %s.%s from an unknown module", module, name)
		}
		want, ok := known[name]
		if !ok {
			return fmt.Errorf("Wasm contract requires unsupported import: %q", name)
		}
		if !sameTypes(def.ParamTypes(), want.ParamTypes) || !sameTypes(def.ResultTypes(), want.ResultTypes) {
			return fmt.Errorf("Wasm contract imports %q with a wrong signature, expected %s", name, want.Signature())
		}
	}
	return nil
}

func sameTypes(a, b []api.ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
