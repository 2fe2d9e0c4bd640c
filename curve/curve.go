// Package curve is a thin naming layer over the BLS12-381 pairing-friendly
// curve (github.com/consensys/gnark-crypto/ecc/bls12-381), matching
// spec.md §3's "Elliptic group points G1, G2, GT" and the trusted-setup
// object that publishes the constructive map x -> g2^(s-x).
package curve

import (
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"

	"github.com/kwindex/kwindex/field"
)

// G1 is a point on the BLS12-381 G1 curve, serialized uncompressed (96
// bytes), matching the fixed-layout accumulator proof encoding in spec.md §6.
type G1 struct {
	p bls12381.G1Affine
}

// G2 is a point on the BLS12-381 G2 curve.
type G2 struct {
	p bls12381.G2Affine
}

// GT is an element of the target group produced by the pairing.
type GT struct {
	v bls12381.GT
}

var (
	g1Gen bls12381.G1Affine
	g2Gen bls12381.G2Affine
)

func init() {
	_, _, g1Gen, g2Gen = bls12381.Generators()
}

// G1Generator returns g1.
func G1Generator() G1 { return G1{p: g1Gen} }

// G2Generator returns g2.
func G2Generator() G2 { return G2{p: g2Gen} }

func scalarBigInt(e field.Element) *big.Int {
	fe := e.ToFr()
	var out big.Int
	fe.BigInt(&out)
	return &out
}

// ScalarMulG1 returns p^scalar (additively, scalar*p).
func ScalarMulG1(p G1, scalar field.Element) G1 {
	var r bls12381.G1Affine
	r.ScalarMultiplication(&p.p, scalarBigInt(scalar))
	return G1{p: r}
}

// ScalarMulG2 returns p^scalar.
func ScalarMulG2(p G2, scalar field.Element) G2 {
	var r bls12381.G2Affine
	r.ScalarMultiplication(&p.p, scalarBigInt(scalar))
	return G2{p: r}
}

// AddG1 returns a+b.
func AddG1(a, b G1) G1 {
	var aJac, bJac, rJac bls12381.G1Jac
	aJac.FromAffine(&a.p)
	bJac.FromAffine(&b.p)
	rJac.Set(&aJac)
	rJac.AddAssign(&bJac)
	var r bls12381.G1Affine
	r.FromJacobian(&rJac)
	return G1{p: r}
}

// NegG1 returns -a.
func NegG1(a G1) G1 {
	var r bls12381.G1Affine
	r.Neg(&a.p)
	return G1{p: r}
}

// EqualG1 reports whether a==b.
func EqualG1(a, b G1) bool {
	return a.p.Equal(&b.p)
}

// EqualG2 reports whether a==b.
func EqualG2(a, b G2) bool {
	return a.p.Equal(&b.p)
}

// Pair computes e(p, q).
func Pair(p G1, q G2) (GT, error) {
	res, err := bls12381.Pair([]bls12381.G1Affine{p.p}, []bls12381.G2Affine{q.p})
	if err != nil {
		return GT{}, err
	}
	return GT{v: res}, nil
}

// EqualGT reports whether a==b in the target group; used to compare
// pairing products in verification equations like e(w,g2^(s-e)) == e(acc,g2).
func EqualGT(a, b GT) bool {
	return a.v.Equal(&b.v)
}

// MulGT multiplies two target-group elements (used when a verification
// equation is stated as a product of two pairings equalling a third).
func MulGT(a, b GT) GT {
	var r bls12381.GT
	r.Mul(&a.v, &b.v)
	return GT{v: r}
}

// Bytes returns the 96-byte uncompressed encoding of a G1 point.
func (p G1) Bytes() []byte {
	b := p.p.RawBytes()
	return b[:]
}

// G1FromBytes parses a 96-byte uncompressed G1 point.
func G1FromBytes(b []byte) (G1, error) {
	var p bls12381.G1Affine
	if _, err := p.SetBytes(b); err != nil {
		return G1{}, err
	}
	return G1{p: p}, nil
}

// Bytes returns the 192-byte uncompressed encoding of a G2 point.
func (p G2) Bytes() []byte {
	b := p.p.RawBytes()
	return b[:]
}

// G2FromBytes parses a 192-byte uncompressed G2 point.
func G2FromBytes(b []byte) (G2, error) {
	var p bls12381.G2Affine
	if _, err := p.SetBytes(b); err != nil {
		return G2{}, err
	}
	return G2{p: p}, nil
}

// G1ByteLen is the uncompressed G1 point size used by the fixed-layout
// accumulator proof encoding (spec.md §6).
const G1ByteLen = 96
