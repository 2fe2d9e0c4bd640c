package accumulator

import (
	"github.com/kwindex/kwindex/curve"
	"github.com/kwindex/kwindex/field"
)

// AddProof witnesses an add operation. Verify checks
// e(new, g2) == e(old, g2^(s-e)).
type AddProof struct {
	Old     curve.G1
	New     curve.G1
	Element field.Element
}

// DeleteProof witnesses a delete operation. Verify checks
// e(new, g2^(s-e)) == e(old, g2).
type DeleteProof struct {
	Old     curve.G1
	New     curve.G1
	Element field.Element
}

// MembershipProof witnesses that Element is a member of the accumulated
// set. Verify checks e(w, g2^(s-e)) == e(acc, g2).
type MembershipProof struct {
	Witness curve.G1
	Element field.Element
}

// NonMembershipProof witnesses that Element is not a member of the
// accumulated set, via a Bezout identity A*Q + B*P = 1 for Q(X) = X-e.
// Verify checks e(acc, g2^B(s)) * e(g1^A(s), g2^(s-e)) == e(g1, g2).
type NonMembershipProof struct {
	Element field.Element
	G2B     curve.G2 // g2^B(s)
	G1A     curve.G1 // g1^A(s)
}

// IntersectionProof witnesses that accI is the accumulator of the
// intersection of the sets behind acc1 and acc2.
type IntersectionProof struct {
	G2Q1 curve.G2 // g2^Q1(s), Q1 = P1/PI
	G2Q2 curve.G2 // g2^Q2(s), Q2 = P2/PI
	G1A  curve.G1 // g1^A(s), Bezout coefficient for Q1
	G1B  curve.G1 // g1^B(s), Bezout coefficient for Q2
}

// UnionProof piggy-backs on an intersection proof, per spec.md §4.2.
type UnionProof struct {
	IntersectionAccValue curve.G1
	Intersection         IntersectionProof
}

// QueryResult is the outcome of Query: exactly one of Membership or
// NonMembership is set.
type QueryResult struct {
	IsMember      bool
	Membership    *MembershipProof
	NonMembership *NonMembershipProof
}

// Verify checks e(new, g2) == e(old, g2^(s-e)).
func (p *AddProof) Verify(setup *curve.Setup) bool {
	lhs, err := curve.Pair(p.New, curve.G2Generator())
	if err != nil {
		return false
	}
	rhs, err := curve.Pair(p.Old, setup.G2PowerSMinus(p.Element))
	if err != nil {
		return false
	}
	return curve.EqualGT(lhs, rhs)
}

// Verify checks e(new, g2^(s-e)) == e(old, g2).
func (p *DeleteProof) Verify(setup *curve.Setup) bool {
	lhs, err := curve.Pair(p.New, setup.G2PowerSMinus(p.Element))
	if err != nil {
		return false
	}
	rhs, err := curve.Pair(p.Old, curve.G2Generator())
	if err != nil {
		return false
	}
	return curve.EqualGT(lhs, rhs)
}

// Verify checks e(w, g2^(s-e)) == e(acc, g2) for the given accumulator value.
func (p *MembershipProof) Verify(setup *curve.Setup, accValue curve.G1) bool {
	lhs, err := curve.Pair(p.Witness, setup.G2PowerSMinus(p.Element))
	if err != nil {
		return false
	}
	rhs, err := curve.Pair(accValue, curve.G2Generator())
	if err != nil {
		return false
	}
	return curve.EqualGT(lhs, rhs)
}

// Verify checks e(acc, g2^B(s)) * e(g1^A(s), g2^(s-e)) == e(g1, g2).
func (p *NonMembershipProof) Verify(setup *curve.Setup, accValue curve.G1) bool {
	e1, err := curve.Pair(accValue, p.G2B)
	if err != nil {
		return false
	}
	e2, err := curve.Pair(p.G1A, setup.G2PowerSMinus(p.Element))
	if err != nil {
		return false
	}
	lhs := curve.MulGT(e1, e2)
	rhs, err := curve.Pair(curve.G1Generator(), curve.G2Generator())
	if err != nil {
		return false
	}
	return curve.EqualGT(lhs, rhs)
}

// VerifyIntersection checks the three pairings spec.md §4.2 describes for
// acc1, acc2, accI.
func VerifyIntersection(acc1, acc2, accI curve.G1, p *IntersectionProof) bool {
	lhs1, err := curve.Pair(acc1, curve.G2Generator())
	if err != nil {
		return false
	}
	rhs1, err := curve.Pair(accI, p.G2Q1)
	if err != nil {
		return false
	}
	if !curve.EqualGT(lhs1, rhs1) {
		return false
	}

	lhs2, err := curve.Pair(acc2, curve.G2Generator())
	if err != nil {
		return false
	}
	rhs2, err := curve.Pair(accI, p.G2Q2)
	if err != nil {
		return false
	}
	if !curve.EqualGT(lhs2, rhs2) {
		return false
	}

	e1, err := curve.Pair(p.G1A, p.G2Q1)
	if err != nil {
		return false
	}
	e2, err := curve.Pair(p.G1B, p.G2Q2)
	if err != nil {
		return false
	}
	lhs3 := curve.MulGT(e1, e2)
	rhs3, err := curve.Pair(curve.G1Generator(), curve.G2Generator())
	if err != nil {
		return false
	}
	return curve.EqualGT(lhs3, rhs3)
}

// VerifyUnion checks that the intersection sub-proof is valid and that
// acc1 + acc2 == accU + accI in G1, per spec.md §4.2/§8.
func VerifyUnion(acc1, acc2, accU curve.G1, p *UnionProof) bool {
	if !VerifyIntersection(acc1, acc2, p.IntersectionAccValue, &p.Intersection) {
		return false
	}
	lhs := curve.AddG1(acc1, acc2)
	rhs := curve.AddG1(accU, p.IntersectionAccValue)
	return curve.EqualG1(lhs, rhs)
}
