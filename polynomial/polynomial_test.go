package polynomial

import (
	"testing"

	"github.com/kwindex/kwindex/field"
	"github.com/stretchr/testify/require"
)

func elems(vs ...int64) []field.Element {
	out := make([]field.Element, len(vs))
	for i, v := range vs {
		if v >= 0 {
			out[i] = field.FromUint64(uint64(v))
		} else {
			out[i] = field.Neg(field.FromUint64(uint64(-v)))
		}
	}
	return out
}

// spec.md §8 scenario 1: set = {1 (x2), 2, 3}, expanded polynomial
// X^4 - 7X^3 + 17X^2 - 17X + 6, coefficients low-order first: [6,-17,17,-7,1]
func TestProductTreeMatchesSpecExpansion(t *testing.T) {
	roots := elems(1, 1, 2, 3)
	p := ProductTree(roots)
	want := New(elems(6, -17, 17, -7, 1))
	require.True(t, Equal(p, want), "got degree %d coeffs, want spec expansion", p.Degree())
}

func TestAddSubIdentity(t *testing.T) {
	a := New(elems(1, 2, 3))
	b := New(elems(4, 5))
	sum := Add(a, b)
	back := Sub(sum, b)
	require.True(t, Equal(a, back))
}

func TestMulDegree(t *testing.T) {
	a := Monomial(field.FromUint64(5))
	b := Monomial(field.FromUint64(7))
	p := Mul(a, b)
	require.Equal(t, 2, p.Degree())
	require.True(t, field.Equal(p.Evaluate(field.FromUint64(5)), field.Zero()))
	require.True(t, field.Equal(p.Evaluate(field.FromUint64(7)), field.Zero()))
}

func TestDivModRoundTrip(t *testing.T) {
	a := ProductTree(elems(1, 2, 3, 4, 5))
	b := Monomial(field.FromUint64(3))
	q, r := DivMod(a, b)
	require.True(t, r.IsZero(), "3 is a root of a, remainder must be zero")
	recombined := Mul(q, b)
	require.True(t, Equal(recombined, a))
}

func TestDivModNonzeroRemainder(t *testing.T) {
	a := New(elems(7, 0, 1)) // X^2 + 7
	b := Monomial(field.FromUint64(2))
	q, r := DivMod(a, b)
	require.Equal(t, 1, q.Degree())
	recombined := Add(Mul(q, b), r)
	require.True(t, Equal(recombined, a))
	require.Less(t, r.Degree(), b.Degree())
}

func TestXGCDBezout(t *testing.T) {
	a := Mul(Monomial(field.FromUint64(2)), Monomial(field.FromUint64(3)))
	b := Mul(Monomial(field.FromUint64(3)), Monomial(field.FromUint64(5)))
	g, u, v := XGCD(a, b)
	lhs := Add(Mul(u, a), Mul(v, b))
	require.True(t, Equal(lhs, g))
	require.LessOrEqual(t, g.Degree(), a.Degree())
	require.LessOrEqual(t, g.Degree(), b.Degree())
}

func TestXGCDCoprime(t *testing.T) {
	a := Monomial(field.FromUint64(2))
	b := Monomial(field.FromUint64(3))
	g, u, v := XGCD(a, b)
	require.Equal(t, 0, g.Degree(), "coprime monomials should reduce to a nonzero constant")
	lhs := Add(Mul(u, a), Mul(v, b))
	require.True(t, Equal(lhs, g))
}
