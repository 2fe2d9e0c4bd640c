package mpt

import (
	"encoding/json"

	"github.com/kwindex/kwindex/kvstore"
)

// metadata mirrors spec.md §4.3's sentinel "mpt:metadata" blob. No clock is
// read here: PersistToDB writes Timestamp as 0.
type metadata struct {
	RootHash  []byte `json:"root_hash"`
	Version   int    `json:"version"`
	Timestamp int64  `json:"timestamp"`
}

// BatchFix walks the tree, recomputing hashes bottom-up and clearing dirty
// flags (spec.md §4.3). It descends only into dirty nodes and stops at a
// clean one. Our mutation path already maintains hashes eagerly on every
// write, so BatchFix normally finds nothing to do; it is called before
// persistence.
func (t *Trie) BatchFix() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.rehashSubtree(t.root)
	return err
}

func (t *Trie) rehashSubtree(h Hash) (Hash, error) {
	if h.IsZero() {
		return ZeroHash, nil
	}
	n, err := t.cache.get(h)
	if err != nil {
		return h, err
	}
	if !n.dirty {
		return h, nil
	}
	switch n.Kind {
	case KindBranch:
		for i, c := range n.Children {
			newC, err := t.rehashSubtree(c)
			if err != nil {
				return h, err
			}
			n.Children[i] = newC
		}
	case KindExtension:
		newNext, err := t.rehashSubtree(n.NextHash)
		if err != nil {
			return h, err
		}
		n.NextHash = newNext
	}
	return t.store(n), nil
}

// PersistToDB writes every reachable node to the external KV keyed by its
// hash, plus the two sentinel keys spec.md §4.3 describes.
func (t *Trie) PersistToDB() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.loadMu.Lock()
	defer t.loadMu.Unlock()

	if err := t.persistSubtree(t.root, make(map[Hash]struct{})); err != nil {
		return err
	}
	if err := t.kv.Put([]byte(sentinelRootHash), t.root.Bytes()); err != nil {
		return err
	}
	meta := metadata{RootHash: t.root.Bytes(), Version: 1}
	blob, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return t.kv.Put([]byte(sentinelMetadata), blob)
}

func (t *Trie) persistSubtree(h Hash, seen map[Hash]struct{}) error {
	if h.IsZero() {
		return nil
	}
	if _, ok := seen[h]; ok {
		return nil
	}
	seen[h] = struct{}{}

	n, err := t.cache.get(h)
	if err != nil {
		return err
	}
	blob, err := n.marshal()
	if err != nil {
		return err
	}
	if err := t.kv.Put(h[:], blob); err != nil {
		return err
	}
	switch n.Kind {
	case KindBranch:
		for _, c := range n.Children {
			if err := t.persistSubtree(c, seen); err != nil {
				return err
			}
		}
	case KindExtension:
		if err := t.persistSubtree(n.NextHash, seen); err != nil {
			return err
		}
	}
	return nil
}

// LoadFromDB opens a trie backed by an already-populated external KV,
// restoring its root from the sentinel key.
func LoadFromDB(kv kvstore.KVStore, cacheCapacity int) (*Trie, error) {
	t := New(kv, cacheCapacity)
	if err := t.RestoreFromDB(); err != nil {
		return nil, err
	}
	return t, nil
}

// RestoreFromDB reads the sentinel root hash and adopts it as the trie's
// root; nodes are materialized lazily on first access (load_from_db).
func (t *Trie) RestoreFromDB() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.loadMu.Lock()
	defer t.loadMu.Unlock()

	blob, err := t.kv.Get([]byte(sentinelRootHash))
	if err != nil {
		return err
	}
	if blob == nil {
		return ErrNoRoot
	}
	t.root = HashFromBytes(blob)
	return nil
}

// Purge flushes the node cache's LRUs to the external KV in one pass and
// empties them (spec.md §4.3 "purge(db)").
func (t *Trie) Purge() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cache.purge()
}
