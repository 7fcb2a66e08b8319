package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"math/big"
)

func parseP256PublicKey(pubkey []byte) (*ecdsa.PublicKey, bool) {
	curve := elliptic.P256()
	var x, y *big.Int
	switch {
	case len(pubkey) == 33 && (pubkey[0] == 0x02 || pubkey[0] == 0x03):
		x, y = elliptic.UnmarshalCompressed(curve, pubkey)
	case len(pubkey) == 65 && pubkey[0] == 0x04:
		//nolint:staticcheck // the ecdh replacement has no access to coordinates
		x, y = elliptic.Unmarshal(curve, pubkey)
	}
	if x == nil {
		return nil, false
	}
	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, true
}

func p256Scalars(signature []byte) (r, s *big.Int, ok bool) {
	if len(signature) != ECDSASignatureLength {
		return nil, nil, false
	}
	n := elliptic.P256().Params().N
	r = new(big.Int).SetBytes(signature[:32])
	s = new(big.Int).SetBytes(signature[32:])
	if r.Sign() == 0 || s.Sign() == 0 || r.Cmp(n) >= 0 || s.Cmp(n) >= 0 {
		return nil, nil, false
	}
	return r, s, true
}

// Secp256r1Verify checks a compact ECDSA signature on NIST P-256 over a 32 byte
// digest.
func Secp256r1Verify(hash, signature, pubkey []byte) bool {
	if len(hash) != MessageHashLength {
		return false
	}
	r, s, ok := p256Scalars(signature)
	if !ok {
		return false
	}
	key, ok := parseP256PublicKey(pubkey)
	if !ok {
		return false
	}
	return ecdsa.Verify(key, hash, r, s)
}

// Secp256r1RecoverPubkey recovers the uncompressed P-256 public key for the
// signature. Only recovery ids 0 and 1 are accepted, so R.x is always r.
func Secp256r1RecoverPubkey(hash, signature []byte, recoveryParam uint8) ([]byte, error) {
	if len(hash) != MessageHashLength {
		return nil, ErrInvalidHashFormat
	}
	r, s, ok := p256Scalars(signature)
	if !ok {
		return nil, ErrInvalidSignatureFormat
	}
	if recoveryParam > 1 {
		return nil, ErrInvalidRecoveryParam
	}

	curve := elliptic.P256()
	params := curve.Params()
	p, n := params.P, params.N

	// y² = x³ - 3x + b
	rx := new(big.Int).Set(r)
	y2 := new(big.Int).Exp(rx, big.NewInt(3), p)
	threeX := new(big.Int).Mul(rx, big.NewInt(3))
	y2.Sub(y2, threeX)
	y2.Add(y2, params.B)
	y2.Mod(y2, p)
	ry := new(big.Int).ModSqrt(y2, p)
	if ry == nil {
		return nil, newError(CodeGenericErr, "r is not the x coordinate of a curve point")
	}
	if ry.Bit(0) != uint(recoveryParam) {
		ry.Sub(p, ry)
	}

	// Q = r⁻¹(sR - eG)
	e := new(big.Int).SetBytes(hash)
	e.Mod(e, n)
	qx, qy := curve.ScalarMult(rx, ry, s.Bytes())
	if e.Sign() != 0 {
		gx, gy := curve.ScalarBaseMult(e.Bytes())
		gy.Sub(p, gy)
		qx, qy = curve.Add(qx, qy, gx, gy)
	}
	rInv := new(big.Int).ModInverse(r, n)
	qx, qy = curve.ScalarMult(qx, qy, rInv.Bytes())
	if qx.Sign() == 0 && qy.Sign() == 0 {
		return nil, newError(CodeGenericErr, "recovered the point at infinity")
	}

	key := &ecdsa.PublicKey{Curve: curve, X: qx, Y: qy}
	if !ecdsa.Verify(key, hash, r, s) {
		return nil, newError(CodeGenericErr, "recovered key does not verify")
	}
	//nolint:staticcheck // SEC1 uncompressed encoding of a validated point
	return elliptic.Marshal(curve, qx, qy), nil
}
