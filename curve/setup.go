package curve

import (
	"golang.org/x/crypto/blake2b"

	"github.com/kwindex/kwindex/field"
)

// Setup models spec.md §3's trusted setup: a secret scalar s and the public
// constructive map x -> g2^(s-x). s is never transmitted or persisted (the
// invariant spec.md calls out); Bytes()/String() are deliberately not
// implemented on Setup so that accidental serialization is a compile error,
// not a runtime leak.
//
// Design Note "Global state (trusted setup)": in the reference
// implementation s lives in a process-wide module; here it is an
// injectable object built once at process init (cmd/trustedsetup for a
// real ceremony, NewSetupFromSeed with a fixed seed for test builds)
// and passed explicitly into the accumulator rather than read from a
// global.
type Setup struct {
	s field.Element
}

// NewSetup builds a Setup from a secret scalar. Test code may call this
// directly with a fixed seed; cmd/trustedsetup derives s from a ceremony.
func NewSetup(s field.Element) *Setup {
	return &Setup{s: s}
}

// NewSetupFromSeed derives a deterministic secret scalar from a seed,
// for reproducible test fixtures, the same blake2b-hash-the-seed step
// cmd/trustedsetup uses for a real ceremony.
func NewSetupFromSeed(seed []byte) *Setup {
	h := blake2b.Sum256(seed)
	return NewSetup(field.FromBytesReduce(h[:]))
}

// G2PowerSMinus returns g2^(s-x), the only form of g2^(s^i) this system
// actually consumes (spec.md §3: "only g2^{s-x} and related forms are
// actually consumed in this spec").
func (t *Setup) G2PowerSMinus(x field.Element) G2 {
	exp := field.Sub(t.s, x)
	return ScalarMulG2(G2Generator(), exp)
}

// SMinus returns the field element (s-x), needed by the prover to build
// quotient polynomials such as P(X)/(X-e).
func (t *Setup) SMinus(x field.Element) field.Element {
	return field.Sub(t.s, x)
}

// SecretScalar returns s, the secret evaluation point a prover uses to
// commit to a polynomial p as g1^p(s).
func (t *Setup) SecretScalar() field.Element {
	return t.s
}
