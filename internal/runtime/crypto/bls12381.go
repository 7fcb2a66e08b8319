package crypto

import (
	bls12381 "github.com/kilic/bls12-381"
)

const (
	BLS12381G1PointLength = 48
	BLS12381G2PointLength = 96

	// HashFunctionSHA256 selects expand_message_xmd with SHA-256.
	HashFunctionSHA256 uint32 = 1
)

func splitPoints(points []byte, size int) ([][]byte, error) {
	if len(points)%size != 0 {
		return nil, newError(CodeInvalidPoint, "input of %d bytes is not a multiple of the %d byte point size", len(points), size)
	}
	out := make([][]byte, 0, len(points)/size)
	for i := 0; i < len(points); i += size {
		out = append(out, points[i:i+size])
	}
	return out, nil
}

// BLS12381AggregateG1 sums a concatenation of compressed G1 points.
func BLS12381AggregateG1(points []byte) ([]byte, error) {
	elements, err := splitPoints(points, BLS12381G1PointLength)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, newError(CodeGenericErr, "no points to aggregate")
	}

	g1 := bls12381.NewG1()
	result := g1.Zero()
	for i, element := range elements {
		point, err := g1.FromCompressed(element)
		if err != nil {
			return nil, newError(CodeInvalidPoint, "G1 point %d: %v", i, err)
		}
		g1.Add(result, result, point)
	}
	return g1.ToCompressed(result), nil
}

// BLS12381AggregateG2 sums a concatenation of compressed G2 points.
func BLS12381AggregateG2(points []byte) ([]byte, error) {
	elements, err := splitPoints(points, BLS12381G2PointLength)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, newError(CodeGenericErr, "no points to aggregate")
	}

	g2 := bls12381.NewG2()
	result := g2.Zero()
	for i, element := range elements {
		point, err := g2.FromCompressed(element)
		if err != nil {
			return nil, newError(CodeInvalidPoint, "G2 point %d: %v", i, err)
		}
		g2.Add(result, result, point)
	}
	return g2.ToCompressed(result), nil
}

// BLS12381PairingEquality checks e(p₁, q₁)·…·e(pₙ, qₙ) == e(r, s), where ps
// and qs are concatenated compressed G1 and G2 points.
func BLS12381PairingEquality(ps, qs, r, s []byte) (bool, error) {
	pPoints, err := splitPoints(ps, BLS12381G1PointLength)
	if err != nil {
		return false, err
	}
	qPoints, err := splitPoints(qs, BLS12381G2PointLength)
	if err != nil {
		return false, err
	}
	if len(pPoints) != len(qPoints) {
		return false, newError(CodeGenericErr, "unequal number of G1 (%d) and G2 (%d) points", len(pPoints), len(qPoints))
	}
	if len(pPoints) == 0 {
		return false, newError(CodeGenericErr, "no pairs to check")
	}

	g1 := bls12381.NewG1()
	g2 := bls12381.NewG2()
	engine := bls12381.NewEngine()
	for i := range pPoints {
		p, err := g1.FromCompressed(pPoints[i])
		if err != nil {
			return false, newError(CodeInvalidPoint, "G1 point %d: %v", i, err)
		}
		q, err := g2.FromCompressed(qPoints[i])
		if err != nil {
			return false, newError(CodeInvalidPoint, "G2 point %d: %v", i, err)
		}
		engine.AddPair(p, q)
	}

	rPoint, err := g1.FromCompressed(r)
	if err != nil {
		return false, newError(CodeInvalidPoint, "r: %v", err)
	}
	sPoint, err := g2.FromCompressed(s)
	if err != nil {
		return false, newError(CodeInvalidPoint, "s: %v", err)
	}
	engine.AddPairInv(rPoint, sPoint)
	return engine.Check(), nil
}

// BLS12381HashToG1 hashes message onto G1 under the domain separation tag dst.
func BLS12381HashToG1(hashFunction uint32, message, dst []byte) ([]byte, error) {
	if hashFunction != HashFunctionSHA256 {
		return nil, ErrUnknownHashFunction
	}
	g1 := bls12381.NewG1()
	point, err := g1.HashToCurve(message, dst)
	if err != nil {
		return nil, newError(CodeGenericErr, "hash to G1: %v", err)
	}
	return g1.ToCompressed(point), nil
}

// BLS12381HashToG2 hashes message onto G2 under the domain separation tag dst.
func BLS12381HashToG2(hashFunction uint32, message, dst []byte) ([]byte, error) {
	if hashFunction != HashFunctionSHA256 {
		return nil, ErrUnknownHashFunction
	}
	g2 := bls12381.NewG2()
	point, err := g2.HashToCurve(message, dst)
	if err != nil {
		return nil, newError(CodeGenericErr, "hash to G2: %v", err)
	}
	return g2.ToCompressed(point), nil
}
