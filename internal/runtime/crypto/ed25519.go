package crypto

import (
	"crypto/ed25519"

	"github.com/hdevalence/ed25519consensus"
)

const (
	EdDSASignatureLength = 64
	EdDSAPubkeyLength    = 32
	// MaxEd25519BatchCount bounds the number of items in a batch verification.
	MaxEd25519BatchCount = 256
)

// Ed25519Verify checks signature over message using ZIP-215 validation rules,
// the same rules consensus-critical ed25519 verifiers apply.
func Ed25519Verify(message, signature, pubkey []byte) bool {
	if len(signature) != EdDSASignatureLength || len(pubkey) != EdDSAPubkeyLength {
		return false
	}
	return ed25519consensus.Verify(ed25519.PublicKey(pubkey), message, signature)
}

type batchItem struct {
	message   []byte
	signature []byte
	pubkey    []byte
}

// expandBatch normalizes a batch to one message and one key per signature.
// A single message or a single key is broadcast across all signatures; any
// other mismatch of lengths is a BatchErr.
func expandBatch(messages, signatures, pubkeys [][]byte) ([]batchItem, error) {
	n := len(signatures)
	if n > MaxEd25519BatchCount {
		return nil, newError(CodeBatchErr, "batch of %d signatures exceeds limit %d", n, MaxEd25519BatchCount)
	}

	message := func(i int) []byte { return messages[i] }
	pubkey := func(i int) []byte { return pubkeys[i] }

	switch {
	case len(messages) == n && len(pubkeys) == n:
	case len(messages) == 1 && len(pubkeys) == n:
		message = func(int) []byte { return messages[0] }
	case len(pubkeys) == 1 && len(messages) == n:
		pubkey = func(int) []byte { return pubkeys[0] }
	default:
		return nil, newError(CodeBatchErr, "mismatched batch lengths: %d messages, %d signatures, %d public keys",
			len(messages), n, len(pubkeys))
	}

	items := make([]batchItem, n)
	for i := range items {
		items[i] = batchItem{message: message(i), signature: signatures[i], pubkey: pubkey(i)}
	}
	return items, nil
}

// verifyItems stops at the first failing item. checked reports how many
// items were looked at.
func verifyItems(items []batchItem, verify func(message, signature, pubkey []byte) bool) (valid bool, checked int) {
	for _, item := range items {
		checked++
		if !verify(item.message, item.signature, item.pubkey) {
			return false, checked
		}
	}
	return true, checked
}

// Ed25519BatchVerify reports whether every signature in the batch is valid.
// An empty batch is valid. Shape errors are returned as a BatchErr before any
// signature is verified.
func Ed25519BatchVerify(messages, signatures, pubkeys [][]byte) (bool, error) {
	items, err := expandBatch(messages, signatures, pubkeys)
	if err != nil {
		return false, err
	}
	valid, _ := verifyItems(items, Ed25519Verify)
	return valid, nil
}
