// Package digest turns application values (fids, keywords, keyword:fid
// pairs) into prime-field elements via hash-then-reduce, per spec.md §3
// "Element digest".
package digest

import (
	"crypto/sha256"
	"fmt"

	"github.com/kwindex/kwindex/field"
)

// Hash computes h(v) = reduce_mod_p(SHA256(canonical_bytes(v))).
func Hash(canonicalBytes []byte) field.Element {
	sum := sha256.Sum256(canonicalBytes)
	return field.FromBytesReduce(sum[:])
}

// PostingElement combines a keyword and a fid as "keyword:fid" before
// hashing, ensuring per-keyword element uniqueness in the accumulator (a
// fid that appears under two keywords maps to two distinct field elements).
func PostingElement(keyword, fid string) field.Element {
	return Hash([]byte(fmt.Sprintf("%s:%s", keyword, fid)))
}

// KeyBytes produces the raw byte string used as an MPT key path for a
// keyword. The MPT indexes by keyword directly (unlike the accumulator,
// which indexes by the combined keyword:fid digest), so no hashing happens
// here; the nibble path is derived straight from the keyword's bytes.
func KeyBytes(keyword string) []byte {
	return []byte(keyword)
}
