// Package storager implements the storage-node service of spec.md §4.5: a
// map of keyword to posting-list ADS instance, exposed over Add/Query/
// Delete. Grounded on the Rust Storager (a single boxed AdsOperations per
// node, with the keyword→instance map living inside the ADS implementation
// itself), and on johnjansen-torua's RWMutex-guarded map-of-instances idiom
// for the Go translation.
package storager

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kwindex/kwindex/curve"
	"github.com/kwindex/kwindex/kvstore"
	"github.com/kwindex/kwindex/posting"
)

// keywordRegistryKey is a reserved, unprefixed key in store listing every
// keyword that has ever gotten its own MPT namespace, so a restarted
// process knows which namespaces to reopen (spec.md §6 "Persisted state").
var keywordRegistryKey = []byte("__kwindex_keywords__")

// Storager owns one posting-list Instance per keyword, all of the same
// ADS kind (the node is configured with a single backend at startup, per
// spec.md §4.5 and cmd/storager's `ads_type` argument). RPC handlers call Add/Query/Delete
// concurrently, so the instance map is guarded by an RWMutex.
type Storager struct {
	mu        sync.RWMutex
	kind      posting.Kind
	setup     *curve.Setup
	store     kvstore.KVStore
	log       zerolog.Logger
	instances map[string]posting.Instance
}

// New returns a Storager backed by kind. setup is required for
// posting.KindAccumulator and ignored otherwise. store is the external
// key-value database backing KindMPT instances (spec.md §6 "Persisted
// state: only the MPT persists, via its external KV"); a nil store keeps
// every keyword's trie in memory only, which is what accumulator mode and
// tests want. Each keyword gets its own namespace within store via
// kvstore.Prefixed, so one database can back every keyword on the node.
func New(kind posting.Kind, setup *curve.Setup, store kvstore.KVStore, log zerolog.Logger) *Storager {
	return &Storager{
		kind:      kind,
		setup:     setup,
		store:     store,
		log:       log,
		instances: make(map[string]posting.Instance),
	}
}

// getOrCreateInstance returns keyword's instance, creating and registering
// a fresh one on first use. Called with s.mu held.
func (s *Storager) getOrCreateInstance(keyword string) (posting.Instance, error) {
	inst, ok := s.instances[keyword]
	if ok {
		return inst, nil
	}
	var kv kvstore.KVStore
	if s.store != nil {
		kv = kvstore.Prefixed(s.store, keyword)
	}
	inst, err := posting.New(s.kind, keyword, s.setup, kv)
	if err != nil {
		return nil, err
	}
	s.instances[keyword] = inst
	if s.store != nil {
		if err := s.recordKeyword(keyword); err != nil {
			s.log.Warn().Err(err).Str("keyword", keyword).Msg("persist keyword registry")
		}
	}
	return inst, nil
}

// Add creates the keyword's instance on first insert and records fid.
// Duplicate (keyword, fid) is idempotent (spec.md §4.5).
func (s *Storager) Add(keyword, fid string) (posting.Proof, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, err := s.getOrCreateInstance(keyword)
	if err != nil {
		return posting.Proof{}, nil, err
	}

	proof, root, err := inst.Add(fid)
	s.log.Debug().Str("keyword", keyword).Str("fid", fid).Str("ads", inst.Describe()).Msg("add")
	return proof, root, err
}

// Query returns the fid list, proof, and current root digest for keyword.
// A missing keyword returns empty fids with a trivially-accepting proof.
// The root is not part of the wire reply spec.md §6 names for Query; it
// exists here so the rpc layer can fold it into the proof's wire encoding
// (the accumulator membership proof is self-contained and carries the
// current accumulator value).
func (s *Storager) Query(keyword string) ([]string, posting.Proof, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.instances[keyword]
	if !ok {
		return nil, posting.Proof{Kind: s.kind, Accepted: true}, nil, nil
	}
	s.log.Debug().Str("keyword", keyword).Str("ads", inst.Describe()).Msg("query")
	return inst.Query()
}

// Delete removes (keyword, fid). A keyword with no instance yet still gets
// one materialized here rather than being short-circuited: in MPT mode a
// delete that races ahead of its add must still be recorded (the delayed-
// deletion bookkeeping in mpt.Trie, see mpt/trie.go's createNew), so a
// later add for the same (keyword, fid) cancels out instead of silently
// resurrecting the deleted entry. An instance materialized by this call
// is therefore kept, although its fid list is empty, unless its Delete
// fails. When an existing keyword's fid list becomes empty its instance is
// discarded. An empty fid list yields an empty root digest.
func (s *Storager) Delete(keyword, fid string) (posting.Proof, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.instances[keyword]
	inst, err := s.getOrCreateInstance(keyword)
	if err != nil {
		return posting.Proof{}, nil, err
	}

	proof, root, err := inst.Delete(fid)
	if inst.Empty() && (existed || err != nil) {
		delete(s.instances, keyword)
	}
	if err != nil {
		return posting.Proof{}, nil, err
	}
	s.log.Debug().Str("keyword", keyword).Str("fid", fid).Msg("delete")
	return proof, root, nil
}

// recordKeyword appends keyword to the persisted registry if it is not
// already present. Called with s.mu held.
func (s *Storager) recordKeyword(keyword string) error {
	known, err := s.readKeywordRegistry()
	if err != nil {
		return err
	}
	if containsString(known, keyword) {
		return nil
	}
	known = append(known, keyword)
	blob, err := json.Marshal(known)
	if err != nil {
		return err
	}
	return s.store.Put(keywordRegistryKey, blob)
}

func (s *Storager) readKeywordRegistry() ([]string, error) {
	blob, err := s.store.Get(keywordRegistryKey)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		return nil, nil
	}
	var known []string
	if err := json.Unmarshal(blob, &known); err != nil {
		return nil, err
	}
	return known, nil
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// Restore reopens every keyword namespace recorded in store, so a
// restarted MPT-mode node resumes from its prior state (spec.md §6
// "Persisted state: only the MPT persists, via its external KV"). A no-op
// when store is nil.
func (s *Storager) Restore() error {
	if s.store == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	keywords, err := s.readKeywordRegistry()
	if err != nil {
		return err
	}
	for _, keyword := range keywords {
		kv := kvstore.Prefixed(s.store, keyword)
		inst, err := posting.LoadMPT(keyword, kv)
		if err != nil {
			return err
		}
		if !inst.Empty() {
			s.instances[keyword] = inst
		}
	}
	return nil
}

// Keywords returns the keywords currently tracked, for diagnostics.
func (s *Storager) Keywords() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.instances))
	for k := range s.instances {
		out = append(out, k)
	}
	return out
}
