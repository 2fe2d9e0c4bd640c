package kvstore

import "strings"

// PrefixedStore namespaces every key under prefix before delegating to the
// underlying store, so one physical database (typically a single
// BadgerStore) can hold many logically-independent MPTs side by side: the
// storager keeps one keyword trie per keyword, each with its own root
// sentinel, and needs them not to collide in a shared on-disk store.
type PrefixedStore struct {
	kv     KVStore
	prefix []byte
}

var _ KVStore = (*PrefixedStore)(nil)

// Prefixed wraps kv so every key is stored under "prefix:key".
func Prefixed(kv KVStore, prefix string) *PrefixedStore {
	return &PrefixedStore{kv: kv, prefix: []byte(prefix + ":")}
}

func (s *PrefixedStore) key(k []byte) []byte {
	out := make([]byte, 0, len(s.prefix)+len(k))
	out = append(out, s.prefix...)
	out = append(out, k...)
	return out
}

func (s *PrefixedStore) Get(key []byte) ([]byte, error) { return s.kv.Get(s.key(key)) }

func (s *PrefixedStore) Has(key []byte) (bool, error) { return s.kv.Has(s.key(key)) }

func (s *PrefixedStore) Put(key, value []byte) error { return s.kv.Put(s.key(key), value) }

func (s *PrefixedStore) Delete(key []byte) error { return s.kv.Delete(s.key(key)) }

// Iterate only visits keys under this store's prefix, with the prefix
// stripped back off before calling f.
func (s *PrefixedStore) Iterate(f func(k, v []byte) bool) error {
	return s.kv.Iterate(func(k, v []byte) bool {
		if !strings.HasPrefix(string(k), string(s.prefix)) {
			return true
		}
		return f(k[len(s.prefix):], v)
	})
}
