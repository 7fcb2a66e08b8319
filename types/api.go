package types

// HumanAddress is a printable (typically bech32 encoded) address string. Just use it as a label for developers.
type HumanAddress = string

// CanonicalAddress is the fixed-length binary form of an address.
type CanonicalAddress = []byte

// GoAPI converts addresses between their human and canonical representations.
// Both directions report guest-attributable failures as errors; the host turns
// them into error messages handed back to the contract.
type GoAPI interface {
	// CanonicalAddress decodes a human readable address (typically bech32)
	// into its canonical bytes.
	CanonicalAddress(human HumanAddress) (CanonicalAddress, error)
	// HumanAddress encodes canonical bytes into the normalized human readable form.
	HumanAddress(canonical CanonicalAddress) (HumanAddress, error)
}

// KVStore is the contract's persistent storage. Get returns nil when the key is
// absent and a non-nil (possibly empty) slice when it is present.
type KVStore interface {
	Get(key []byte) []byte
	Set(key, value []byte)
	Delete(key []byte)
}

// Querier answers serialized chain queries. The request and response payloads
// are opaque to the VM.
type Querier interface {
	QueryRaw(request []byte) ([]byte, error)
}

// Backend bundles the capabilities a VM instance hands to its host imports.
// It is created by the embedding chain and borrowed for the lifetime of one
// instance.
type Backend struct {
	Storage KVStore
	API     GoAPI
	Querier Querier
}
