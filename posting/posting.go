// Package posting implements the uniform posting-list ADS of spec.md §2/
// §4.5: one accumulator-or-MPT instance per keyword, mapping keyword to a
// list of fids and producing a (proof, root-digest) pair for each
// mutation. Grounded on the original Rust `ads_trait.rs` tagged-interface
// shape over `CryptoAccumulatorAds`/`MptAds`, replacing the Rust enum
// dispatch with a narrow Go interface implemented by two backends.
package posting

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kwindex/kwindex/accumulator"
	"github.com/kwindex/kwindex/curve"
	"github.com/kwindex/kwindex/digest"
	"github.com/kwindex/kwindex/kvstore"
	"github.com/kwindex/kwindex/mpt"
)

// Kind identifies which ADS backs a keyword's posting-list instance.
type Kind uint8

const (
	KindAccumulator Kind = iota
	KindMPT
)

func (k Kind) String() string {
	switch k {
	case KindAccumulator:
		return "accumulator"
	case KindMPT:
		return "mpt"
	default:
		return "unknown"
	}
}

// Proof wraps exactly one of the underlying ADS's proof shapes, tagged by
// Kind. Accepted is the storage node's own verdict on the proof: for an
// accumulator add, delete or membership proof it is the result of checking
// that proof locally against the trusted setup, and it is set for the
// "trivially-accepting" marker spec.md §4.5 describes for a missing keyword
// or an idempotent duplicate add. Other MPT proofs leave it unset.
type Proof struct {
	Kind      Kind
	Accepted  bool
	AccAdd    *accumulator.AddProof
	AccDelete *accumulator.DeleteProof
	AccQuery  *accumulator.QueryResult
	MPTQuery  *mpt.QueryProof
}

// Instance is the uniform contract over one keyword's ADS, per spec.md §2
// "Posting-list ADS" / the Rust ads_trait.rs AdsOperations trait.
type Instance interface {
	// Add records fid under the instance's keyword. A duplicate fid is
	// idempotent: no mutation occurs and Proof.Accepted is set.
	Add(fid string) (Proof, []byte, error)
	// Query returns the full fid list, a membership/existence proof, and
	// the instance's current root digest (folded into the proof's wire
	// encoding by the rpc package; not separately transmitted, since
	// spec.md §6's Storager.Query reply carries only fids and proof).
	Query() ([]string, Proof, []byte, error)
	// Delete removes fid. The returned root digest is empty once the
	// instance's fid list becomes empty.
	Delete(fid string) (Proof, []byte, error)
	// Describe reports the ADS kind for logging: the accumulator adds its
	// element count, the MPT its keyword and whether it is empty (mirrors
	// the Rust debug helper).
	Describe() string
	// Empty reports whether the instance's fid list is empty, so the
	// storager can discard it (spec.md §4.5).
	Empty() bool
}

// New constructs a fresh Instance for keyword, backed by the requested
// Kind. setup is required (and ignored otherwise) for KindAccumulator. kv
// is the external key-value store backing an MPT instance (ignored for
// KindAccumulator); a nil kv falls back to an in-memory store, which is
// what every in-process caller that does not care about persistence
// across restarts wants.
func New(kind Kind, keyword string, setup *curve.Setup, kv kvstore.KVStore) (Instance, error) {
	switch kind {
	case KindAccumulator:
		if setup == nil {
			return nil, errors.New("posting: accumulator instance requires a trusted setup")
		}
		return &accumulatorInstance{keyword: keyword, setup: setup, acc: accumulator.New(setup)}, nil
	case KindMPT:
		if kv == nil {
			kv = kvstore.NewMemStore()
		}
		return &mptInstance{
			keyword: keyword,
			key:     digest.KeyBytes(keyword),
			trie:    mpt.New(kv, 0),
		}, nil
	default:
		return nil, fmt.Errorf("posting: unknown kind %d", kind)
	}
}

// LoadMPT reopens a keyword's MPT instance from an already-populated
// external store (spec.md §6 "Persisted state"), restoring its root from
// the store's sentinel key rather than starting from an empty trie.
func LoadMPT(keyword string, kv kvstore.KVStore) (Instance, error) {
	trie, err := mpt.LoadFromDB(kv, 0)
	if err != nil {
		return nil, err
	}
	return &mptInstance{keyword: keyword, key: digest.KeyBytes(keyword), trie: trie}, nil
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(ss []string, s string) []string {
	out := make([]string, 0, len(ss))
	for _, v := range ss {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

func splitCSV(v []byte) []string {
	if len(v) == 0 {
		return nil
	}
	return strings.Split(string(v), ",")
}
