// Package polynomial implements dense univariate polynomials over the
// BLS12-381 scalar field, per spec.md §4.1. Coefficients are stored
// low-degree first; outputs are always canonicalized (trailing zero
// coefficients trimmed).
package polynomial

import (
	"github.com/kwindex/kwindex/field"
)

// Polynomial is a dense, low-degree-first coefficient list over field.Element.
// A nil/empty Polynomial represents the zero polynomial.
type Polynomial struct {
	coeffs []field.Element
}

// New builds a Polynomial from low-degree-first coefficients, trimming
// trailing zeros.
func New(coeffs []field.Element) Polynomial {
	return Polynomial{coeffs: trim(coeffs)}
}

// Zero is the additive identity.
func Zero() Polynomial {
	return Polynomial{}
}

// One is the multiplicative identity (the constant polynomial 1).
func One() Polynomial {
	return New([]field.Element{field.One()})
}

// Monomial returns the degree-1 polynomial (X - root), the basic factor
// used to build P(X) = prod(X - e_i).
func Monomial(root field.Element) Polynomial {
	return New([]field.Element{field.Neg(root), field.One()})
}

func trim(coeffs []field.Element) []field.Element {
	n := len(coeffs)
	for n > 0 && coeffs[n-1].IsZero() {
		n--
	}
	out := make([]field.Element, n)
	copy(out, coeffs[:n])
	return out
}

// Degree returns the polynomial's degree, or -1 for the zero polynomial.
func (p Polynomial) Degree() int {
	return len(p.coeffs) - 1
}

// IsZero reports whether p is the zero polynomial.
func (p Polynomial) IsZero() bool {
	return len(p.coeffs) == 0
}

// Coeffs returns a copy of the low-degree-first coefficient slice.
func (p Polynomial) Coeffs() []field.Element {
	out := make([]field.Element, len(p.coeffs))
	copy(out, p.coeffs)
	return out
}

func (p Polynomial) coeffAt(i int) field.Element {
	if i < 0 || i >= len(p.coeffs) {
		return field.Zero()
	}
	return p.coeffs[i]
}

// Add returns a+b.
func Add(a, b Polynomial) Polynomial {
	n := len(a.coeffs)
	if len(b.coeffs) > n {
		n = len(b.coeffs)
	}
	out := make([]field.Element, n)
	for i := 0; i < n; i++ {
		out[i] = field.Add(a.coeffAt(i), b.coeffAt(i))
	}
	return New(out)
}

// Sub returns a-b.
func Sub(a, b Polynomial) Polynomial {
	n := len(a.coeffs)
	if len(b.coeffs) > n {
		n = len(b.coeffs)
	}
	out := make([]field.Element, n)
	for i := 0; i < n; i++ {
		out[i] = field.Sub(a.coeffAt(i), b.coeffAt(i))
	}
	return New(out)
}

// Scale returns c*p.
func Scale(c field.Element, p Polynomial) Polynomial {
	out := make([]field.Element, len(p.coeffs))
	for i, v := range p.coeffs {
		out[i] = field.Mul(c, v)
	}
	return New(out)
}

// Mul returns a*b using the naive O(n*m) convolution (spec.md allows a
// quadratic fallback). ProductTree builds P(X) = prod(X-e_i) on top of it,
// so that product is quadratic too.
func Mul(a, b Polynomial) Polynomial {
	if a.IsZero() || b.IsZero() {
		return Zero()
	}
	out := make([]field.Element, len(a.coeffs)+len(b.coeffs)-1)
	for i := range out {
		out[i] = field.Zero()
	}
	for i, av := range a.coeffs {
		if av.IsZero() {
			continue
		}
		for j, bv := range b.coeffs {
			out[i+j] = field.Add(out[i+j], field.Mul(av, bv))
		}
	}
	return New(out)
}

// Evaluate computes p(x) via Horner's method.
func (p Polynomial) Evaluate(x field.Element) field.Element {
	if p.IsZero() {
		return field.Zero()
	}
	acc := p.coeffs[len(p.coeffs)-1]
	for i := len(p.coeffs) - 2; i >= 0; i-- {
		acc = field.Add(field.Mul(acc, x), p.coeffs[i])
	}
	return acc
}

// DivMod computes (q, r) such that a = q*b + r and deg(r) < deg(b), using
// standard schoolbook polynomial long division. b must be nonzero.
func DivMod(a, b Polynomial) (q, r Polynomial) {
	if b.IsZero() {
		panic("polynomial: division by zero polynomial")
	}
	if a.Degree() < b.Degree() {
		return Zero(), New(a.Coeffs())
	}
	remainder := make([]field.Element, len(a.coeffs))
	copy(remainder, a.coeffs)

	lead := b.coeffs[len(b.coeffs)-1]
	leadInv := field.Inverse(lead)

	qdeg := a.Degree() - b.Degree()
	qcoeffs := make([]field.Element, qdeg+1)
	for i := range qcoeffs {
		qcoeffs[i] = field.Zero()
	}

	for deg := a.Degree(); deg >= b.Degree(); deg-- {
		lc := remainder[deg]
		if lc.IsZero() {
			continue
		}
		coef := field.Mul(lc, leadInv)
		shift := deg - b.Degree()
		qcoeffs[shift] = coef
		for j, bv := range b.coeffs {
			if bv.IsZero() {
				continue
			}
			idx := shift + j
			remainder[idx] = field.Sub(remainder[idx], field.Mul(coef, bv))
		}
	}
	return New(qcoeffs), New(remainder)
}

// XGCD runs the extended Euclidean algorithm, returning (g, u, v) such that
// u*a + v*b = g and deg(g) <= min(deg(a), deg(b)). a and b must both be
// nonzero; the algorithm terminates because polynomial remainders strictly
// decrease in degree at every step.
func XGCD(a, b Polynomial) (g, u, v Polynomial) {
	if a.IsZero() || b.IsZero() {
		panic("polynomial: xgcd requires nonzero inputs")
	}
	oldR, r := a, b
	oldS, s := One(), Zero()
	oldT, t := Zero(), One()

	for !r.IsZero() {
		q, rem := DivMod(oldR, r)
		oldR, r = r, rem
		oldS, s = s, Sub(oldS, Mul(q, s))
		oldT, t = t, Sub(oldT, Mul(q, t))
	}
	return oldR, oldS, oldT
}

// ProductTree builds P(X) = prod(X - roots[i]) using a divide-and-conquer
// product tree. With the naive Mul above, the top-level product alone
// costs O(n^2), so the whole tree is O(n^2); this package has no fast
// multiplication that would bring it to O(n log^2 n).
func ProductTree(roots []field.Element) Polynomial {
	if len(roots) == 0 {
		return One()
	}
	if len(roots) == 1 {
		return Monomial(roots[0])
	}
	mid := len(roots) / 2
	left := ProductTree(roots[:mid])
	right := ProductTree(roots[mid:])
	return Mul(left, right)
}

// Equal reports whether a and b have identical (canonical) coefficients.
func Equal(a, b Polynomial) bool {
	if len(a.coeffs) != len(b.coeffs) {
		return false
	}
	for i := range a.coeffs {
		if !field.Equal(a.coeffs[i], b.coeffs[i]) {
			return false
		}
	}
	return true
}
