package host

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	btcec_ecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CosmWasm/wazerovm/internal/runtime/crypto"
	"github.com/CosmWasm/wazerovm/types"
)

func secpSignature(t *testing.T, message string) (hash, sig, pubkey []byte, recid uint32) {
	t.Helper()
	priv, pub := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x5A}, 32))
	digest := sha256.Sum256([]byte(message))
	compact := btcec_ecdsa.SignCompact(priv, digest[:], false)
	return digest[:], compact[1:], pub.SerializeUncompressed(), uint32(compact[0] - 27)
}

func TestSecp256k1VerifyImport(t *testing.T) {
	f := newFixture(t)
	hash, sig, pub, _ := secpSignature(t, "import")

	code, err := f.env.Secp256k1Verify(f.input(hash), f.input(sig), f.input(pub))
	require.NoError(t, err)
	assert.Equal(t, VerifyValid, code)

	// the same key in SEC1 hybrid form is not accepted
	hybrid := bytes.Clone(pub)
	hybrid[0] = 0x06 | pub[64]&0x01
	code, err = f.env.Secp256k1Verify(f.input(hash), f.input(sig), f.input(hybrid))
	require.NoError(t, err)
	assert.Equal(t, VerifyInvalid, code)

	sig[0] ^= 0xFF
	code, err = f.env.Secp256k1Verify(f.input(hash), f.input(sig), f.input(pub))
	require.NoError(t, err)
	assert.Equal(t, VerifyInvalid, code)

	// malformed keys are a verdict, not a fault
	code, err = f.env.Secp256k1Verify(f.input(hash), f.input(sig), f.input([]byte{0x02, 0x01}))
	require.NoError(t, err)
	assert.Equal(t, VerifyInvalid, code)

	_, err = f.env.Secp256k1Verify(f.input(append(hash, 0)), f.input(sig), f.input(pub))
	requireRegionError(t, err, types.RegionLengthTooBig)
}

func TestSecp256k1RecoverPubkeyImport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hash, sig, pub, recid := secpSignature(t, "recover")

	result, err := f.env.Secp256k1RecoverPubkey(ctx, f.input(hash), f.input(sig), recid)
	require.NoError(t, err)
	assert.Zero(t, result>>32, "no error code")
	ptr := uint32(result)
	require.NotZero(t, ptr)
	assert.Equal(t, pub, f.data(ptr))

	result, err = f.env.Secp256k1RecoverPubkey(ctx, f.input(hash), f.input(sig), 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(crypto.CodeInvalidRecoveryParam), result>>32)
	assert.Zero(t, uint32(result))

	result, err = f.env.Secp256k1RecoverPubkey(ctx, f.input(hash[:10]), f.input(sig), recid)
	require.NoError(t, err)
	assert.Equal(t, uint64(crypto.CodeInvalidHashFormat), result>>32)

	result, err = f.env.Secp256k1RecoverPubkey(ctx, f.input(hash), f.input(sig), 1<<20)
	require.NoError(t, err)
	assert.Equal(t, uint64(crypto.CodeInvalidRecoveryParam), result>>32)
}

func TestEd25519VerifyImport(t *testing.T) {
	f := newFixture(t)
	key := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{9}, 32))
	msg := []byte("ed25519 import")
	sig := ed25519.Sign(key, msg)
	pub := key.Public().(ed25519.PublicKey)

	code, err := f.env.Ed25519Verify(f.input(msg), f.input(sig), f.input(pub))
	require.NoError(t, err)
	assert.Equal(t, VerifyValid, code)

	code, err = f.env.Ed25519Verify(f.input([]byte("other")), f.input(sig), f.input(pub))
	require.NoError(t, err)
	assert.Equal(t, VerifyInvalid, code)

	code, err = f.env.Ed25519Verify(f.input(msg), f.input(sig[:60]), f.input(pub))
	require.NoError(t, err)
	assert.Equal(t, VerifyInvalid, code)

	_, err = f.env.Ed25519Verify(f.input(msg), f.input(append(sig, 0)), f.input(pub))
	requireRegionError(t, err, types.RegionLengthTooBig)
}

type edBatch struct {
	messages, signatures, pubkeys [][]byte
}

func newEdBatch(n int, shareMessage bool) edBatch {
	var b edBatch
	for i := 0; i < n; i++ {
		key := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{byte(i + 1)}, 32))
		msg := []byte(fmt.Sprintf("msg %d", i))
		if shareMessage {
			msg = []byte("shared")
		}
		if !shareMessage || i == 0 {
			b.messages = append(b.messages, msg)
		}
		b.signatures = append(b.signatures, ed25519.Sign(key, msg))
		b.pubkeys = append(b.pubkeys, key.Public().(ed25519.PublicKey))
	}
	return b
}

func (f *fixture) verifyBatch(t *testing.T, b edBatch) uint32 {
	t.Helper()
	code, err := f.env.Ed25519BatchVerify(
		f.input(encodeSections(b.messages...)),
		f.input(encodeSections(b.signatures...)),
		f.input(encodeSections(b.pubkeys...)),
	)
	require.NoError(t, err)
	return code
}

func TestEd25519BatchVerifyImport(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, VerifyValid, f.verifyBatch(t, newEdBatch(3, false)))
	assert.Equal(t, VerifyValid, f.verifyBatch(t, newEdBatch(5, true)))
	assert.Equal(t, VerifyValid, f.verifyBatch(t, edBatch{}))

	corrupt := newEdBatch(3, false)
	corrupt.signatures[2][10] ^= 1
	assert.Equal(t, VerifyInvalid, f.verifyBatch(t, corrupt))

	ambiguous := newEdBatch(3, false)
	ambiguous.messages = ambiguous.messages[:2]
	assert.Equal(t, VerifyInvalid, f.verifyBatch(t, ambiguous))
}

func TestEd25519BatchVerifyMalformedSections(t *testing.T) {
	f := newFixture(t)
	b := newEdBatch(2, false)

	_, err := f.env.Ed25519BatchVerify(
		f.input([]byte{0, 0, 0, 9, 1}),
		f.input(encodeSections(b.signatures...)),
		f.input(encodeSections(b.pubkeys...)),
	)
	var commErr *types.CommunicationError
	require.ErrorAs(t, err, &commErr)
}

func TestEd25519BatchVerifyReadBound(t *testing.T) {
	f := newFixture(t)
	// 257 well formed signatures exceed the bounded read
	sigs := make([][]byte, MaxCountED25519Batch+1)
	for i := range sigs {
		sigs[i] = make([]byte, 64)
	}
	_, err := f.env.Ed25519BatchVerify(f.input(encodeSections([]byte("m"))), f.input(encodeSections(sigs...)), f.input(encodeSections(make([]byte, 32))))
	requireRegionError(t, err, types.RegionLengthTooBig)
}

func TestBLS12381Imports(t *testing.T) {
	f := newFixture(t)
	dst := []byte("QUUX-V01-CS02-with-BLS12381G1_XMD:SHA-256_SSWU_RO_")

	out := f.output(BLS12381G1PointLength)
	code, err := f.env.BLS12381HashToG1(crypto.HashFunctionSHA256, f.input([]byte("abc")), f.input(dst), out)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, code)
	p := f.data(out)
	require.Len(t, p, BLS12381G1PointLength)

	code, err = f.env.BLS12381HashToG1(7, f.input([]byte("abc")), f.input(dst), f.output(48))
	require.NoError(t, err)
	assert.Equal(t, crypto.CodeUnknownHashFunction, code)

	qOut := f.output(BLS12381G2PointLength)
	code, err = f.env.BLS12381HashToG2(crypto.HashFunctionSHA256, f.input([]byte("abc")), f.input(dst), qOut)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, code)
	q := f.data(qOut)

	sum := f.output(BLS12381G1PointLength)
	code, err = f.env.BLS12381AggregateG1(f.input(append(bytes.Clone(p), p...)), sum)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, code)

	code, err = f.env.BLS12381PairingEquality(f.input(append(bytes.Clone(p), p...)), f.input(append(bytes.Clone(q), q...)), f.input(f.data(sum)), f.input(q))
	require.NoError(t, err)
	assert.Equal(t, PairingEqual, code)

	code, err = f.env.BLS12381PairingEquality(f.input(p), f.input(q), f.input(f.data(sum)), f.input(q))
	require.NoError(t, err)
	assert.Equal(t, PairingNotEqual, code)

	code, err = f.env.BLS12381AggregateG2(f.input(q[:50]), f.output(96))
	require.NoError(t, err)
	assert.Equal(t, crypto.CodeInvalidPoint, code)

	_, err = f.env.BLS12381AggregateG1(f.input(p), f.output(10))
	requireRegionError(t, err, types.RegionTooSmall)
}
