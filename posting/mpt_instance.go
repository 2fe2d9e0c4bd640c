package posting

import (
	"errors"
	"fmt"

	"github.com/kwindex/kwindex/mpt"
)

// mptInstance backs a keyword with a dedicated MPT, grounded on the Rust
// MptAds: one full trie per keyword, storing a single key (the keyword
// itself) whose value is the CSV-joined fid list (spec.md §4.3/§4.5).
type mptInstance struct {
	keyword string
	key     []byte
	trie    *mpt.Trie
}

func (m *mptInstance) Add(fid string) (Proof, []byte, error) {
	err := m.trie.AddMember(m.key, fid)
	if errors.Is(err, mpt.ErrTokenPresent) {
		return Proof{Kind: KindMPT, Accepted: true}, m.rootDigest(), nil
	}
	if err != nil {
		return Proof{}, nil, err
	}
	if err := m.persist(); err != nil {
		return Proof{}, nil, err
	}
	return Proof{Kind: KindMPT}, m.rootDigest(), nil
}

func (m *mptInstance) Query() ([]string, Proof, []byte, error) {
	val, proof, err := m.trie.QueryByKey(m.key)
	if err != nil {
		return nil, Proof{}, nil, err
	}
	if !proof.IsExist {
		return nil, Proof{Kind: KindMPT, MPTQuery: proof}, nil, nil
	}
	return splitCSV(val), Proof{Kind: KindMPT, MPTQuery: proof}, m.rootDigest(), nil
}

func (m *mptInstance) Delete(fid string) (Proof, []byte, error) {
	err := m.trie.RemoveMember(m.key, fid)
	if err != nil && !errors.Is(err, mpt.ErrTokenAbsent) {
		return Proof{}, nil, err
	}
	if err := m.persist(); err != nil {
		return Proof{}, nil, err
	}
	if m.Empty() {
		return Proof{Kind: KindMPT}, nil, nil
	}
	return Proof{Kind: KindMPT}, m.rootDigest(), nil
}

// persist recomputes hashes and flushes the trie to its external store
// (spec.md §4.3 batch_fix + persist_to_db). Cheap and idempotent against an
// in-memory store; the cost only matters when kv is a real database.
func (m *mptInstance) persist() error {
	if err := m.trie.BatchFix(); err != nil {
		return err
	}
	return m.trie.PersistToDB()
}

func (m *mptInstance) Describe() string {
	_, found, _ := m.trie.Get(m.key)
	if !found {
		return fmt.Sprintf("mpt(keyword=%q, empty)", m.keyword)
	}
	return fmt.Sprintf("mpt(keyword=%q)", m.keyword)
}

func (m *mptInstance) Empty() bool {
	_, found, _ := m.trie.Get(m.key)
	return !found
}

func (m *mptInstance) rootDigest() []byte {
	root := m.trie.RootHash()
	return root.Bytes()
}
