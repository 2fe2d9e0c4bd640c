// Package accumulator implements the dynamic bilinear-pairing cryptographic
// accumulator of spec.md §4.2: acc = g1^P(s) where P(X) = prod(X-e_i) for
// the set of element digests.
package accumulator

import (
	"github.com/kwindex/kwindex/curve"
	"github.com/kwindex/kwindex/field"
	"github.com/kwindex/kwindex/polynomial"
)

// Accumulator holds the current commitment to a set of field-element
// digests, plus the plaintext set needed to build witnesses and proofs.
// The prover (storage node) constructs Accumulator with the trusted Setup;
// it is immutable on error paths, per spec.md §4.2 "Failure semantics".
type Accumulator struct {
	setup    *curve.Setup
	accValue curve.G1
	elements map[string]field.Element // keyed by canonical field-element bytes
}

// New returns an empty accumulator: acc_value = g1.
func New(setup *curve.Setup) *Accumulator {
	return &Accumulator{
		setup:    setup,
		accValue: curve.G1Generator(),
		elements: make(map[string]field.Element),
	}
}

func elemKey(e field.Element) string {
	return string(e.Bytes())
}

// AccValue returns the current accumulator point.
func (a *Accumulator) AccValue() curve.G1 {
	return a.accValue
}

// Elements returns the plaintext digest set (for wiring into posting-list
// fid lists and for tests; not part of the cryptographic proof surface).
func (a *Accumulator) Elements() []field.Element {
	out := make([]field.Element, 0, len(a.elements))
	for _, e := range a.elements {
		out = append(out, e)
	}
	return out
}

// Contains reports whether e is currently a member.
func (a *Accumulator) Contains(e field.Element) bool {
	_, ok := a.elements[elemKey(e)]
	return ok
}

// Len returns the number of accumulated elements.
func (a *Accumulator) Len() int {
	return len(a.elements)
}

// Add accumulates e: acc <- acc^(s-e). Fails if e is already present.
func (a *Accumulator) Add(e field.Element) (*AddProof, error) {
	if a.Contains(e) {
		return nil, ErrElementAlreadyPresent
	}
	old := a.accValue
	exp := a.setup.SMinus(e)
	newAcc := curve.ScalarMulG1(old, exp)

	a.accValue = newAcc
	a.elements[elemKey(e)] = e

	return &AddProof{Old: old, New: newAcc, Element: e}, nil
}

// Delete removes e: acc <- acc^(1/(s-e)). Fails if e is absent, or (which
// can only indicate corruption, since s != e for any legitimate element)
// if s-e is zero.
func (a *Accumulator) Delete(e field.Element) (*DeleteProof, error) {
	if !a.Contains(e) {
		return nil, ErrElementAbsent
	}
	exp := a.setup.SMinus(e)
	if exp.IsZero() {
		return nil, ErrZeroDivisor
	}
	old := a.accValue
	newAcc := curve.ScalarMulG1(old, field.Inverse(exp))

	a.accValue = newAcc
	delete(a.elements, elemKey(e))

	return &DeleteProof{Old: old, New: newAcc, Element: e}, nil
}

// ProveMembership returns a constant-size witness for e, the accumulator of
// elements\{e}: w = g1^(P(s)/(s-e)), computed directly as a scalar product
// since the prover holds s (equivalent to, but faster than, rebuilding the
// witness accumulator element by element).
func (a *Accumulator) ProveMembership(e field.Element) (*MembershipProof, error) {
	if !a.Contains(e) {
		return nil, ErrElementAbsent
	}
	scalar := field.One()
	for _, f := range a.elements {
		if field.Equal(f, e) {
			continue
		}
		scalar = field.Mul(scalar, a.setup.SMinus(f))
	}
	witness := curve.ScalarMulG1(curve.G1Generator(), scalar)
	return &MembershipProof{Witness: witness, Element: e}, nil
}

// buildPolynomial returns P(X) = prod(X-f) for the current element set.
func (a *Accumulator) buildPolynomial() polynomial.Polynomial {
	roots := a.Elements()
	return polynomial.ProductTree(roots)
}

// ProveNonMembership returns a proof that e is not a member, via the
// Bezout identity A*Q + B*P = 1 for Q(X)=X-e, P(X)=prod(X-f). Fails with
// ErrElementPresent if e is a member, and ErrNonCoprime if the xgcd result
// is non-constant (which, per spec.md §4.2, can only happen if e is a
// member — i.e. this is a redundant consistency check).
func (a *Accumulator) ProveNonMembership(e field.Element) (*NonMembershipProof, error) {
	if a.Contains(e) {
		return nil, ErrElementPresent
	}
	p := a.buildPolynomial()
	q := polynomial.Monomial(e)
	if p.IsZero() {
		// empty set: P(X) = 1, so the Bezout identity is trivially 1*Q + 0*P... but
		// xgcd requires nonzero inputs. Handle the empty-set case directly:
		// A(X)=1/(X-e) is not a polynomial, so instead use A=0,B=1 against P=1.
		p = polynomial.One()
	}
	g, A, B := polynomial.XGCD(q, p)
	if g.Degree() != 0 {
		return nil, ErrNonCoprime
	}
	gInv := field.Inverse(g.Coeffs()[0])
	A = polynomial.Scale(gInv, A)
	B = polynomial.Scale(gInv, B)

	aS := A.Evaluate(a.setup.SecretScalar())
	bS := B.Evaluate(a.setup.SecretScalar())

	return &NonMembershipProof{
		Element: e,
		G2B:     curve.ScalarMulG2(curve.G2Generator(), bS),
		G1A:     curve.ScalarMulG1(curve.G1Generator(), aS),
	}, nil
}

// Query returns a membership or non-membership proof for e, whichever
// applies.
func (a *Accumulator) Query(e field.Element) (*QueryResult, error) {
	if a.Contains(e) {
		mp, err := a.ProveMembership(e)
		if err != nil {
			return nil, err
		}
		return &QueryResult{IsMember: true, Membership: mp}, nil
	}
	nmp, err := a.ProveNonMembership(e)
	if err != nil {
		return nil, err
	}
	return &QueryResult{IsMember: false, NonMembership: nmp}, nil
}

// Intersect computes E1 ∩ E2 explicitly, builds its accumulator, and
// produces the intersection proof described in spec.md §4.2.
func (a *Accumulator) Intersect(other *Accumulator) (*Accumulator, *IntersectionProof, error) {
	inter := New(a.setup)
	for _, e := range a.elements {
		if other.Contains(e) {
			if _, err := inter.Add(e); err != nil {
				return nil, nil, err
			}
		}
	}

	p1 := a.buildPolynomial()
	p2 := other.buildPolynomial()
	pI := inter.buildPolynomial()

	var q1, q2 polynomial.Polynomial
	if pI.IsZero() {
		q1, q2 = p1, p2
	} else {
		var r1, r2 polynomial.Polynomial
		q1, r1 = polynomial.DivMod(p1, pI)
		q2, r2 = polynomial.DivMod(p2, pI)
		if !r1.IsZero() || !r2.IsZero() {
			return nil, nil, ErrQuotientNotCoprime
		}
	}

	if q1.IsZero() || q2.IsZero() {
		q1, q2 = polynomial.One(), polynomial.One()
	}

	g, A, B := polynomial.XGCD(q1, q2)
	if g.Degree() != 0 {
		return nil, nil, ErrQuotientNotCoprime
	}
	gInv := field.Inverse(g.Coeffs()[0])
	A = polynomial.Scale(gInv, A)
	B = polynomial.Scale(gInv, B)

	s := a.setup.SecretScalar()
	proof := &IntersectionProof{
		G2Q1: curve.ScalarMulG2(curve.G2Generator(), q1.Evaluate(s)),
		G2Q2: curve.ScalarMulG2(curve.G2Generator(), q2.Evaluate(s)),
		G1A:  curve.ScalarMulG1(curve.G1Generator(), A.Evaluate(s)),
		G1B:  curve.ScalarMulG1(curve.G1Generator(), B.Evaluate(s)),
	}
	return inter, proof, nil
}

// Union computes E1 ∪ E2 explicitly and piggy-backs the intersection proof,
// per spec.md §4.2.
func (a *Accumulator) Union(other *Accumulator) (*Accumulator, *UnionProof, error) {
	union := New(a.setup)
	for _, e := range a.elements {
		if _, err := union.Add(e); err != nil {
			return nil, nil, err
		}
	}
	for _, e := range other.elements {
		if !union.Contains(e) {
			if _, err := union.Add(e); err != nil {
				return nil, nil, err
			}
		}
	}

	inter, interProof, err := a.Intersect(other)
	if err != nil {
		return nil, nil, err
	}

	return union, &UnionProof{
		IntersectionAccValue: inter.AccValue(),
		Intersection:         *interProof,
	}, nil
}
