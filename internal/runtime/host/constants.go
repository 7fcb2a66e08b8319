package host

const (
	KI = 1024
	MI = 1024 * 1024

	// MaxLengthDBKey is the maximum length of a db key.
	MaxLengthDBKey = 64 * KI
	// MaxLengthDBValue is the maximum length of a db value.
	MaxLengthDBValue = 128 * KI
	// MaxLengthCanonicalAddress is the maximum length of a canonical address.
	MaxLengthCanonicalAddress = 64
	// MaxLengthHumanAddress is the maximum length of a human address.
	MaxLengthHumanAddress = 256
	// MaxLengthQueryChainRequest is the maximum length of a serialized query.
	MaxLengthQueryChainRequest = 64 * KI
	// MaxLengthDebug and MaxLengthAbort bound guest diagnostics.
	MaxLengthDebug = 2 * MI
	MaxLengthAbort = 2 * MI

	MaxLengthED25519Message   = 128 * KI
	MaxLengthED25519Signature = 64
	MaxLengthED25519Pubkey    = 32
	MaxCountED25519Batch      = 256

	MaxLengthSecp256Hash      = 32
	MaxLengthSecp256Signature = 64
	MaxLengthSecp256Pubkey    = 65

	MaxLengthBLS12381AggregateInput = 2 * MI
	MaxLengthBLS12381Message        = 5 * MI
	MaxLengthBLS12381DST            = 5 * KI
	BLS12381G1PointLength           = 48
	BLS12381G2PointLength           = 96

	// sectionPrefix is the per item overhead of the sections encoding.
	sectionPrefix = 4
)

// Status codes returned in-band to the guest.
const (
	StatusOK uint32 = 0

	VerifyValid   uint32 = 0
	VerifyInvalid uint32 = 1

	PairingEqual    uint32 = 0
	PairingNotEqual uint32 = 1
)

// batchReadLimit bounds the region read of a sections encoded batch before
// any section header is looked at.
func batchReadLimit(itemLimit int) uint32 {
	return uint32((itemLimit + sectionPrefix) * MaxCountED25519Batch)
}
