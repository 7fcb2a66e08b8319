package crypto

import (
	"github.com/btcsuite/btcd/btcec/v2"
	btcec_ecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

const (
	// MessageHashLength is the digest length accepted by the ECDSA imports.
	MessageHashLength = 32
	// ECDSASignatureLength is the length of a compact (r || s) signature.
	ECDSASignatureLength = 64
	// ECDSAPubkeyMaxLength fits an uncompressed SEC1 public key.
	ECDSAPubkeyMaxLength = 65
)

// compactSignature splits a 64 byte (r || s) signature into its two big
// endian scalars. Zero or out of range scalars are rejected.
func compactSignature(signature []byte) (*btcec_ecdsa.Signature, bool) {
	if len(signature) != ECDSASignatureLength {
		return nil, false
	}
	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(signature[:32]); overflow || r.IsZero() {
		return nil, false
	}
	if overflow := s.SetByteSlice(signature[32:]); overflow || s.IsZero() {
		return nil, false
	}
	return btcec_ecdsa.NewSignature(&r, &s), true
}

// parseSecp256k1PublicKey accepts only the compressed (0x02/0x03) and
// uncompressed (0x04) SEC1 forms. btcec also parses the hybrid 0x06/0x07
// form, which would give a key a third valid encoding.
func parseSecp256k1PublicKey(pubkey []byte) (*btcec.PublicKey, bool) {
	switch {
	case len(pubkey) == btcec.PubKeyBytesLenCompressed && (pubkey[0] == 0x02 || pubkey[0] == 0x03):
	case len(pubkey) == ECDSAPubkeyMaxLength && pubkey[0] == 0x04:
	default:
		return nil, false
	}
	key, err := btcec.ParsePubKey(pubkey)
	if err != nil {
		return nil, false
	}
	return key, true
}

// Secp256k1Verify checks a compact ECDSA signature over a 32 byte digest.
// pubkey may be compressed or uncompressed. Any malformed input simply
// fails verification.
func Secp256k1Verify(hash, signature, pubkey []byte) bool {
	if len(hash) != MessageHashLength {
		return false
	}
	sig, ok := compactSignature(signature)
	if !ok {
		return false
	}
	key, ok := parseSecp256k1PublicKey(pubkey)
	if !ok {
		return false
	}
	return sig.Verify(hash, key)
}

// Secp256k1RecoverPubkey recovers the uncompressed (65 byte) public key that
// produced signature over hash. recoveryParam selects the parity of R.y and
// must be 0 or 1.
func Secp256k1RecoverPubkey(hash, signature []byte, recoveryParam uint8) ([]byte, error) {
	if len(hash) != MessageHashLength {
		return nil, ErrInvalidHashFormat
	}
	if _, ok := compactSignature(signature); !ok {
		return nil, ErrInvalidSignatureFormat
	}
	if recoveryParam > 1 {
		return nil, ErrInvalidRecoveryParam
	}

	// header byte 27+id selects an uncompressed result
	recoverable := make([]byte, 1+ECDSASignatureLength)
	recoverable[0] = 27 + recoveryParam
	copy(recoverable[1:], signature)

	key, _, err := btcec_ecdsa.RecoverCompact(recoverable, hash)
	if err != nil {
		return nil, newError(CodeGenericErr, "public key recovery failed: %v", err)
	}
	return key.SerializeUncompressed(), nil
}
