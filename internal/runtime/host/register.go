package host

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/CosmWasm/wazerovm/types"
)

// hostFunction is one import of the host module. All parameters are i32
// guest pointers or small integers.
type hostFunction struct {
	name    string
	params  []string
	results []api.ValueType
	call    func(ctx context.Context, env *Environment, stack []uint64) error
}

var (
	noResult  []api.ValueType
	i32Result = []api.ValueType{api.ValueTypeI32}
	i64Result = []api.ValueType{api.ValueTypeI64}
)

func u32(stack []uint64, i int) uint32 { return api.DecodeU32(stack[i]) }

// hostFunctions is the complete import surface offered to contracts.
var hostFunctions = []hostFunction{
	// storage
	{"db_read", []string{"key_ptr"}, i32Result, func(ctx context.Context, env *Environment, stack []uint64) error {
		ptr, err := env.DBRead(ctx, u32(stack, 0))
		stack[0] = api.EncodeU32(ptr)
		return err
	}},
	{"db_write", []string{"key_ptr", "value_ptr"}, noResult, func(_ context.Context, env *Environment, stack []uint64) error {
		return env.DBWrite(u32(stack, 0), u32(stack, 1))
	}},
	{"db_remove", []string{"key_ptr"}, noResult, func(_ context.Context, env *Environment, stack []uint64) error {
		return env.DBRemove(u32(stack, 0))
	}},
	{"db_scan", []string{"start_ptr", "end_ptr", "order"}, i32Result, func(_ context.Context, env *Environment, stack []uint64) error {
		id, err := env.DBScan(u32(stack, 0), u32(stack, 1), api.DecodeI32(stack[2]))
		stack[0] = api.EncodeU32(id)
		return err
	}},
	{"db_next", []string{"iterator_id"}, i32Result, func(_ context.Context, env *Environment, stack []uint64) error {
		ptr, err := env.DBNext(u32(stack, 0))
		stack[0] = api.EncodeU32(ptr)
		return err
	}},

	// addresses
	{"addr_validate", []string{"source_ptr"}, i32Result, func(ctx context.Context, env *Environment, stack []uint64) error {
		ptr, err := env.AddrValidate(ctx, u32(stack, 0))
		stack[0] = api.EncodeU32(ptr)
		return err
	}},
	{"addr_canonicalize", []string{"source_ptr", "destination_ptr"}, i32Result, func(ctx context.Context, env *Environment, stack []uint64) error {
		ptr, err := env.AddrCanonicalize(ctx, u32(stack, 0), u32(stack, 1))
		stack[0] = api.EncodeU32(ptr)
		return err
	}},
	{"addr_humanize", []string{"source_ptr", "destination_ptr"}, i32Result, func(ctx context.Context, env *Environment, stack []uint64) error {
		ptr, err := env.AddrHumanize(ctx, u32(stack, 0), u32(stack, 1))
		stack[0] = api.EncodeU32(ptr)
		return err
	}},

	// crypto
	{"secp256k1_verify", []string{"hash_ptr", "signature_ptr", "pubkey_ptr"}, i32Result, func(_ context.Context, env *Environment, stack []uint64) error {
		code, err := env.Secp256k1Verify(u32(stack, 0), u32(stack, 1), u32(stack, 2))
		stack[0] = api.EncodeU32(code)
		return err
	}},
	{"secp256k1_recover_pubkey", []string{"hash_ptr", "signature_ptr", "recovery_param"}, i64Result, func(ctx context.Context, env *Environment, stack []uint64) error {
		result, err := env.Secp256k1RecoverPubkey(ctx, u32(stack, 0), u32(stack, 1), u32(stack, 2))
		stack[0] = result
		return err
	}},
	{"secp256r1_verify", []string{"hash_ptr", "signature_ptr", "pubkey_ptr"}, i32Result, func(_ context.Context, env *Environment, stack []uint64) error {
		code, err := env.Secp256r1Verify(u32(stack, 0), u32(stack, 1), u32(stack, 2))
		stack[0] = api.EncodeU32(code)
		return err
	}},
	{"secp256r1_recover_pubkey", []string{"hash_ptr", "signature_ptr", "recovery_param"}, i64Result, func(ctx context.Context, env *Environment, stack []uint64) error {
		result, err := env.Secp256r1RecoverPubkey(ctx, u32(stack, 0), u32(stack, 1), u32(stack, 2))
		stack[0] = result
		return err
	}},
	{"ed25519_verify", []string{"message_ptr", "signature_ptr", "pubkey_ptr"}, i32Result, func(_ context.Context, env *Environment, stack []uint64) error {
		code, err := env.Ed25519Verify(u32(stack, 0), u32(stack, 1), u32(stack, 2))
		stack[0] = api.EncodeU32(code)
		return err
	}},
	{"ed25519_batch_verify", []string{"messages_ptr", "signatures_ptr", "pubkeys_ptr"}, i32Result, func(_ context.Context, env *Environment, stack []uint64) error {
		code, err := env.Ed25519BatchVerify(u32(stack, 0), u32(stack, 1), u32(stack, 2))
		stack[0] = api.EncodeU32(code)
		return err
	}},
	{"bls12_381_aggregate_g1", []string{"g1s_ptr", "out_ptr"}, i32Result, func(_ context.Context, env *Environment, stack []uint64) error {
		code, err := env.BLS12381AggregateG1(u32(stack, 0), u32(stack, 1))
		stack[0] = api.EncodeU32(code)
		return err
	}},
	{"bls12_381_aggregate_g2", []string{"g2s_ptr", "out_ptr"}, i32Result, func(_ context.Context, env *Environment, stack []uint64) error {
		code, err := env.BLS12381AggregateG2(u32(stack, 0), u32(stack, 1))
		stack[0] = api.EncodeU32(code)
		return err
	}},
	{"bls12_381_pairing_equality", []string{"ps_ptr", "qs_ptr", "r_ptr", "s_ptr"}, i32Result, func(_ context.Context, env *Environment, stack []uint64) error {
		code, err := env.BLS12381PairingEquality(u32(stack, 0), u32(stack, 1), u32(stack, 2), u32(stack, 3))
		stack[0] = api.EncodeU32(code)
		return err
	}},
	{"bls12_381_hash_to_g1", []string{"hash_function", "msg_ptr", "dst_ptr", "out_ptr"}, i32Result, func(_ context.Context, env *Environment, stack []uint64) error {
		code, err := env.BLS12381HashToG1(u32(stack, 0), u32(stack, 1), u32(stack, 2), u32(stack, 3))
		stack[0] = api.EncodeU32(code)
		return err
	}},
	{"bls12_381_hash_to_g2", []string{"hash_function", "msg_ptr", "dst_ptr", "out_ptr"}, i32Result, func(_ context.Context, env *Environment, stack []uint64) error {
		code, err := env.BLS12381HashToG2(u32(stack, 0), u32(stack, 1), u32(stack, 2), u32(stack, 3))
		stack[0] = api.EncodeU32(code)
		return err
	}},

	// diagnostics and queries
	{"debug", []string{"source_ptr"}, noResult, func(_ context.Context, env *Environment, stack []uint64) error {
		env.Debug(u32(stack, 0))
		return nil
	}},
	{"abort", []string{"source_ptr"}, noResult, func(_ context.Context, env *Environment, stack []uint64) error {
		return env.Abort(u32(stack, 0))
	}},
	{"query_chain", []string{"request_ptr"}, i32Result, func(ctx context.Context, env *Environment, stack []uint64) error {
		ptr, err := env.QueryChain(ctx, u32(stack, 0))
		stack[0] = api.EncodeU32(ptr)
		return err
	}},
}

func (f hostFunction) paramTypes() []api.ValueType {
	out := make([]api.ValueType, len(f.params))
	for i := range out {
		out[i] = api.ValueTypeI32
	}
	return out
}

// goFunc adapts f to wazero. A host fault is recorded on the Environment and
// then raised as a panic, which wazero turns into a trap of the guest call.
func (f hostFunction) goFunc() api.GoModuleFunc {
	return func(ctx context.Context, _ api.Module, stack []uint64) {
		env, err := EnvironmentFrom(ctx)
		if err != nil {
			panic(err)
		}
		if err := f.invoke(ctx, env, stack); err != nil {
			env.recordFault(f.name, err)
			panic(err)
		}
	}
}

// invoke runs f.call and turns a panic raised by a backend into a
// BackendError, so it surfaces as a typed fault instead of an opaque trap.
func (f hostFunction) invoke(ctx context.Context, env *Environment, stack []uint64) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &types.BackendError{Msg: fmt.Sprintf("%s: %v", f.name, rec)}
		}
	}()
	return f.call(ctx, env, stack)
}

// NewModuleBuilder declares every host import on a host module named
// moduleName. The caller compiles or instantiates it.
func NewModuleBuilder(r wazero.Runtime, moduleName string) wazero.HostModuleBuilder {
	builder := r.NewHostModuleBuilder(moduleName)
	for _, f := range hostFunctions {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(f.goFunc(), f.paramTypes(), f.results).
			WithParameterNames(f.params...).
			Export(f.name)
	}
	return builder
}

// Instantiate registers the host module on r so contracts importing from
// moduleName can be instantiated.
func Instantiate(ctx context.Context, r wazero.Runtime, moduleName string) (api.Module, error) {
	mod, err := NewModuleBuilder(r, moduleName).Instantiate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate host module %q: %w", moduleName, err)
	}
	return mod, nil
}

// Import describes one host import.
type Import struct {
	Name        string
	Params      []string
	ParamTypes  []api.ValueType
	ResultTypes []api.ValueType
}

// Signature renders the import the way it appears in a wat file.
func (i Import) Signature() string {
	var b strings.Builder
	b.WriteString(i.Name)
	b.WriteByte('(')
	for n, name := range i.Params {
		if n > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", name, api.ValueTypeName(i.ParamTypes[n]))
	}
	b.WriteByte(')')
	if len(i.ResultTypes) > 0 {
		b.WriteString(" -> ")
		b.WriteString(api.ValueTypeName(i.ResultTypes[0]))
	}
	return b.String()
}

// Imports lists every host import sorted by name.
func Imports() []Import {
	out := make([]Import, 0, len(hostFunctions))
	for _, f := range hostFunctions {
		out = append(out, Import{
			Name:        f.name,
			Params:      append([]string(nil), f.params...),
			ParamTypes:  f.paramTypes(),
			ResultTypes: append([]api.ValueType(nil), f.results...),
		})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}
