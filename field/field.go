// Package field wraps the BLS12-381 scalar field used throughout the
// accumulator and polynomial kernel behind a small, serializable type.
package field

import (
	"io"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Element is a residue modulo the BLS12-381 scalar field prime.
type Element struct {
	inner fr.Element
}

// Zero returns the additive identity.
func Zero() Element {
	return Element{}
}

// One returns the multiplicative identity.
func One() Element {
	var e Element
	e.inner.SetOne()
	return e
}

// FromUint64 builds an element from a small non-negative integer.
func FromUint64(v uint64) Element {
	var e Element
	e.inner.SetUint64(v)
	return e
}

// FromBytesReduce interprets b as a big-endian integer and reduces it modulo
// the field prime. Used by digest.Hash to turn a SHA-256 output into a field
// element.
func FromBytesReduce(b []byte) Element {
	var e Element
	e.inner.SetBytes(b)
	return e
}

// Add returns a+b.
func Add(a, b Element) Element {
	var r Element
	r.inner.Add(&a.inner, &b.inner)
	return r
}

// Sub returns a-b.
func Sub(a, b Element) Element {
	var r Element
	r.inner.Sub(&a.inner, &b.inner)
	return r
}

// Mul returns a*b.
func Mul(a, b Element) Element {
	var r Element
	r.inner.Mul(&a.inner, &b.inner)
	return r
}

// Neg returns -a.
func Neg(a Element) Element {
	var r Element
	r.inner.Neg(&a.inner)
	return r
}

// Inverse returns a^-1. Panics if a is zero; callers that can hit a=0 on
// untrusted input must check IsZero first.
func Inverse(a Element) Element {
	var r Element
	if a.IsZero() {
		panic("field: inverse of zero")
	}
	r.inner.Inverse(&a.inner)
	return r
}

// Equal reports whether a==b.
func Equal(a, b Element) bool {
	return a.inner.Equal(&b.inner)
}

// IsZero reports whether a is the additive identity.
func (a Element) IsZero() bool {
	return a.inner.IsZero()
}

// Bytes returns the canonical 32-byte big-endian encoding.
func (a Element) Bytes() []byte {
	b := a.inner.Bytes()
	return b[:]
}

// SetBytes sets a from a canonical 32-byte encoding (reduced mod p).
func (a *Element) SetBytes(b []byte) {
	a.inner.SetBytes(b)
}

// Clone returns a copy.
func (a Element) Clone() Element {
	return a
}

// String returns a debug decimal representation.
func (a Element) String() string {
	return a.inner.String()
}

// ToFr exposes the underlying gnark-crypto element for packages (curve,
// accumulator) that need to feed it into scalar-multiplication APIs.
func (a Element) ToFr() fr.Element {
	return a.inner
}

// FromFr wraps a gnark-crypto fr.Element.
func FromFr(v fr.Element) Element {
	return Element{inner: v}
}

// Write implements the teacher's Read/Write serialization idiom
// (see trie.go's NodeData.Write) for proof encoding.
func (a Element) Write(w io.Writer) error {
	b := a.Bytes()
	_, err := w.Write(b)
	return err
}

// Read implements the teacher's Read/Write serialization idiom.
func (a *Element) Read(r io.Reader) error {
	var b [32]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return err
	}
	a.SetBytes(b[:])
	return nil
}
