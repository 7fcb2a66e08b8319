package host

import (
	"context"
	"fmt"

	"github.com/CosmWasm/wazerovm/internal/runtime/crypto"
	"github.com/CosmWasm/wazerovm/internal/runtime/sections"
)

func verifyCode(valid bool) uint32 {
	if valid {
		return VerifyValid
	}
	return VerifyInvalid
}

// recoverResult packs a recovery outcome into the u64 the guest expects:
// the Region pointer in the low half or the error code in the high half.
func recoverResult(ptr uint32, code uint32) uint64 {
	return uint64(code)<<32 | uint64(ptr)
}

// readECDSAInputs reads the (hash, signature, pubkey) triple shared by the
// secp256k1 and secp256r1 verify imports.
func (e *Environment) readECDSAInputs(function string, hashPtr, signaturePtr, pubkeyPtr uint32) (hash, signature, pubkey []byte, err error) {
	if hash, err = e.readRegion(hashPtr, MaxLengthSecp256Hash); err != nil {
		return nil, nil, nil, fmt.Errorf("%s: reading hash: %w", function, err)
	}
	if signature, err = e.readRegion(signaturePtr, MaxLengthSecp256Signature); err != nil {
		return nil, nil, nil, fmt.Errorf("%s: reading signature: %w", function, err)
	}
	if pubkey, err = e.readRegion(pubkeyPtr, MaxLengthSecp256Pubkey); err != nil {
		return nil, nil, nil, fmt.Errorf("%s: reading public key: %w", function, err)
	}
	return hash, signature, pubkey, nil
}

// Secp256k1Verify implements secp256k1_verify.
func (e *Environment) Secp256k1Verify(hashPtr, signaturePtr, pubkeyPtr uint32) (uint32, error) {
	hash, signature, pubkey, err := e.readECDSAInputs("secp256k1_verify", hashPtr, signaturePtr, pubkeyPtr)
	if err != nil {
		return 0, err
	}
	return verifyCode(crypto.Secp256k1Verify(hash, signature, pubkey)), nil
}

// Secp256r1Verify implements secp256r1_verify.
func (e *Environment) Secp256r1Verify(hashPtr, signaturePtr, pubkeyPtr uint32) (uint32, error) {
	hash, signature, pubkey, err := e.readECDSAInputs("secp256r1_verify", hashPtr, signaturePtr, pubkeyPtr)
	if err != nil {
		return 0, err
	}
	return verifyCode(crypto.Secp256r1Verify(hash, signature, pubkey)), nil
}

type recoverFunc func(hash, signature []byte, recoveryParam uint8) ([]byte, error)

func (e *Environment) recoverPubkey(ctx context.Context, function string, recoverKey recoverFunc, hashPtr, signaturePtr, recoveryParam uint32) (uint64, error) {
	hash, err := e.readRegion(hashPtr, MaxLengthSecp256Hash)
	if err != nil {
		return 0, fmt.Errorf("%s: reading hash: %w", function, err)
	}
	signature, err := e.readRegion(signaturePtr, MaxLengthSecp256Signature)
	if err != nil {
		return 0, fmt.Errorf("%s: reading signature: %w", function, err)
	}
	if recoveryParam > 0xFF {
		return recoverResult(0, crypto.CodeInvalidRecoveryParam), nil
	}

	pubkey, err := recoverKey(hash, signature, uint8(recoveryParam))
	if err != nil {
		e.Logger.Debug().Str("function", function).Err(err).Msg("public key recovery failed")
		return recoverResult(0, crypto.CodeOf(err)), nil
	}
	ptr, err := e.allocate(ctx, pubkey)
	if err != nil {
		return 0, fmt.Errorf("%s: returning public key: %w", function, err)
	}
	return recoverResult(ptr, 0), nil
}

// Secp256k1RecoverPubkey implements secp256k1_recover_pubkey.
func (e *Environment) Secp256k1RecoverPubkey(ctx context.Context, hashPtr, signaturePtr, recoveryParam uint32) (uint64, error) {
	return e.recoverPubkey(ctx, "secp256k1_recover_pubkey", crypto.Secp256k1RecoverPubkey, hashPtr, signaturePtr, recoveryParam)
}

// Secp256r1RecoverPubkey implements secp256r1_recover_pubkey.
func (e *Environment) Secp256r1RecoverPubkey(ctx context.Context, hashPtr, signaturePtr, recoveryParam uint32) (uint64, error) {
	return e.recoverPubkey(ctx, "secp256r1_recover_pubkey", crypto.Secp256r1RecoverPubkey, hashPtr, signaturePtr, recoveryParam)
}

// Ed25519Verify implements ed25519_verify.
func (e *Environment) Ed25519Verify(messagePtr, signaturePtr, pubkeyPtr uint32) (uint32, error) {
	message, err := e.readRegion(messagePtr, MaxLengthED25519Message)
	if err != nil {
		return 0, fmt.Errorf("ed25519_verify: reading message: %w", err)
	}
	signature, err := e.readRegion(signaturePtr, MaxLengthED25519Signature)
	if err != nil {
		return 0, fmt.Errorf("ed25519_verify: reading signature: %w", err)
	}
	pubkey, err := e.readRegion(pubkeyPtr, MaxLengthED25519Pubkey)
	if err != nil {
		return 0, fmt.Errorf("ed25519_verify: reading public key: %w", err)
	}
	return verifyCode(crypto.Ed25519Verify(message, signature, pubkey)), nil
}

// readBatch reads and decodes one sections encoded batch argument. The read
// is bounded by the largest well formed batch so a crafted header cannot
// make the host allocate more than that.
func (e *Environment) readBatch(what string, ptr uint32, itemLimit int) ([][]byte, error) {
	raw, err := e.readRegion(ptr, batchReadLimit(itemLimit))
	if err != nil {
		return nil, fmt.Errorf("ed25519_batch_verify: reading %s: %w", what, err)
	}
	items, err := sections.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("ed25519_batch_verify: decoding %s: %w", what, err)
	}
	return items, nil
}

// Ed25519BatchVerify implements ed25519_batch_verify.
func (e *Environment) Ed25519BatchVerify(messagesPtr, signaturesPtr, pubkeysPtr uint32) (uint32, error) {
	messages, err := e.readBatch("messages", messagesPtr, MaxLengthED25519Message)
	if err != nil {
		return 0, err
	}
	signatures, err := e.readBatch("signatures", signaturesPtr, MaxLengthED25519Signature)
	if err != nil {
		return 0, err
	}
	pubkeys, err := e.readBatch("public keys", pubkeysPtr, MaxLengthED25519Pubkey)
	if err != nil {
		return 0, err
	}

	valid, err := crypto.Ed25519BatchVerify(messages, signatures, pubkeys)
	if err != nil {
		e.Logger.Debug().Err(err).Msg("ed25519_batch_verify: rejected batch")
		return VerifyInvalid, nil
	}
	return verifyCode(valid), nil
}

// BLS12381AggregateG1 implements bls12_381_aggregate_g1.
func (e *Environment) BLS12381AggregateG1(pointsPtr, outPtr uint32) (uint32, error) {
	return e.blsAggregate("bls12_381_aggregate_g1", crypto.BLS12381AggregateG1, pointsPtr, outPtr)
}

// BLS12381AggregateG2 implements bls12_381_aggregate_g2.
func (e *Environment) BLS12381AggregateG2(pointsPtr, outPtr uint32) (uint32, error) {
	return e.blsAggregate("bls12_381_aggregate_g2", crypto.BLS12381AggregateG2, pointsPtr, outPtr)
}

func (e *Environment) blsAggregate(function string, aggregate func([]byte) ([]byte, error), pointsPtr, outPtr uint32) (uint32, error) {
	points, err := e.readRegion(pointsPtr, MaxLengthBLS12381AggregateInput)
	if err != nil {
		return 0, fmt.Errorf("%s: reading points: %w", function, err)
	}
	sum, err := aggregate(points)
	if err != nil {
		return crypto.CodeOf(err), nil
	}
	if err := e.writeRegion(outPtr, sum); err != nil {
		return 0, fmt.Errorf("%s: writing result: %w", function, err)
	}
	return StatusOK, nil
}

// BLS12381PairingEquality implements bls12_381_pairing_equality.
func (e *Environment) BLS12381PairingEquality(psPtr, qsPtr, rPtr, sPtr uint32) (uint32, error) {
	const function = "bls12_381_pairing_equality"
	ps, err := e.readRegion(psPtr, MaxLengthBLS12381AggregateInput)
	if err != nil {
		return 0, fmt.Errorf("%s: reading ps: %w", function, err)
	}
	qs, err := e.readRegion(qsPtr, MaxLengthBLS12381AggregateInput)
	if err != nil {
		return 0, fmt.Errorf("%s: reading qs: %w", function, err)
	}
	r, err := e.readRegion(rPtr, BLS12381G1PointLength)
	if err != nil {
		return 0, fmt.Errorf("%s: reading r: %w", function, err)
	}
	s, err := e.readRegion(sPtr, BLS12381G2PointLength)
	if err != nil {
		return 0, fmt.Errorf("%s: reading s: %w", function, err)
	}

	equal, err := crypto.BLS12381PairingEquality(ps, qs, r, s)
	if err != nil {
		return crypto.CodeOf(err), nil
	}
	if equal {
		return PairingEqual, nil
	}
	return PairingNotEqual, nil
}

// BLS12381HashToG1 implements bls12_381_hash_to_g1.
func (e *Environment) BLS12381HashToG1(hashFunction, messagePtr, dstPtr, outPtr uint32) (uint32, error) {
	return e.blsHashToCurve("bls12_381_hash_to_g1", crypto.BLS12381HashToG1, hashFunction, messagePtr, dstPtr, outPtr)
}

// BLS12381HashToG2 implements bls12_381_hash_to_g2.
func (e *Environment) BLS12381HashToG2(hashFunction, messagePtr, dstPtr, outPtr uint32) (uint32, error) {
	return e.blsHashToCurve("bls12_381_hash_to_g2", crypto.BLS12381HashToG2, hashFunction, messagePtr, dstPtr, outPtr)
}

func (e *Environment) blsHashToCurve(function string, hash func(uint32, []byte, []byte) ([]byte, error), hashFunction, messagePtr, dstPtr, outPtr uint32) (uint32, error) {
	message, err := e.readRegion(messagePtr, MaxLengthBLS12381Message)
	if err != nil {
		return 0, fmt.Errorf("%s: reading message: %w", function, err)
	}
	dst, err := e.readRegion(dstPtr, MaxLengthBLS12381DST)
	if err != nil {
		return 0, fmt.Errorf("%s: reading dst: %w", function, err)
	}
	point, err := hash(hashFunction, message, dst)
	if err != nil {
		return crypto.CodeOf(err), nil
	}
	if err := e.writeRegion(outPtr, point); err != nil {
		return 0, fmt.Errorf("%s: writing result: %w", function, err)
	}
	return StatusOK, nil
}
