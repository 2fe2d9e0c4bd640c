package mpt

import (
	"sync"

	"github.com/kwindex/kwindex/kvstore"
)

// mutation describes one of the three insert modes spec.md §4.3 defines,
// plus the primary-delete and secondary-delete variants.
type mutation struct {
	isPrimary    bool
	isDelete     bool
	primaryValue []byte
	member       string
}

// Trie is the hex-nibble Merkle-Patricia Trie of spec.md §4.3. It exposes
// coarse-grained locking sufficient for single-writer/many-reader use: one
// RWMutex guards the whole tree, matching the spec's "no lock-free
// concurrent mutation" note; the per-node/per-slot latch hierarchy the spec
// also describes is the implementation detail that RWMutex already gives
// us for a single-process tree walked under one lock.
type Trie struct {
	mu    sync.RWMutex
	cache *nodeCache
	kv    kvstore.KVStore
	root  Hash

	// loadMu serializes root reconstruction from the external KV: the
	// thread that wins performs the load, others wait (spec.md §4.3
	// "tryWriteLock pattern").
	loadMu sync.Mutex
}

const (
	sentinelRootHash = "mpt:root_hash"
	sentinelMetadata = "mpt:metadata"
)

// New returns an empty trie backed by kv, with a node cache of the given
// capacity (0 selects a default).
func New(kv kvstore.KVStore, cacheCapacity int) *Trie {
	return &Trie{
		cache: newNodeCache(kv, cacheCapacity),
		kv:    kv,
		root:  ZeroHash,
	}
}

// RootHash returns the trie's current root hash (ZeroHash if empty).
func (t *Trie) RootHash() Hash {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root
}

func (t *Trie) store(n *Node) Hash {
	h := n.rehash()
	t.cache.put(n)
	return h
}

// Put overwrites the primary value for key, returning the previous value
// (nil if key was absent).
func (t *Trie) Put(key, value []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	newRoot, old, err := t.mutate(t.root, ToNibbles(key), string(key), mutation{isPrimary: true, primaryValue: value})
	if err != nil {
		return nil, err
	}
	t.root = newRoot
	return old, nil
}

// DeletePrimary clears the primary value for key, returning the previous
// value.
func (t *Trie) DeletePrimary(key []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	newRoot, old, err := t.mutate(t.root, ToNibbles(key), string(key), mutation{isPrimary: true, isDelete: true})
	if err != nil {
		return nil, err
	}
	t.root = newRoot
	return old, nil
}

// AddMember inserts member into the CSV posting list at key (secondary-index
// add). Returns ErrTokenPresent if member is already recorded.
func (t *Trie) AddMember(key []byte, member string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	newRoot, _, err := t.mutate(t.root, ToNibbles(key), string(key), mutation{member: member})
	if err != nil {
		return err
	}
	t.root = newRoot
	return nil
}

// RemoveMember removes member from the CSV posting list at key
// (secondary-index delete).
func (t *Trie) RemoveMember(key []byte, member string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	newRoot, _, err := t.mutate(t.root, ToNibbles(key), string(key), mutation{member: member, isDelete: true})
	if err != nil {
		return err
	}
	t.root = newRoot
	return nil
}

// Get looks up key, returning (value, found).
func (t *Trie) Get(key []byte) ([]byte, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	path := ToNibbles(key)
	h := t.root
	for {
		if h.IsZero() {
			return nil, false, nil
		}
		n, err := t.cache.get(h)
		if err != nil {
			return nil, false, err
		}
		switch n.Kind {
		case KindBranch:
			if len(path) == 0 {
				if n.Branch == nil {
					return nil, false, nil
				}
				return n.Branch, true, nil
			}
			idx := path[0]
			path = path[1:]
			h = n.Children[idx]
		case KindLeaf:
			if lcp(path, n.Suffix) == len(path) && len(path) == len(n.Suffix) {
				return n.Value, true, nil
			}
			return nil, false, nil
		case KindExtension:
			common := lcp(path, n.Suffix)
			if common == len(n.Suffix) {
				path = path[common:]
				h = n.NextHash
				continue
			}
			return nil, false, nil
		}
	}
}

// applyValueOp implements the three insert modes of spec.md §4.3 against a
// single value slot (a leaf's Value or a branch's own Branch value).
func applyValueOp(existing []byte, m mutation) (old, newValue []byte, removed bool, err error) {
	if m.isPrimary {
		old = existing
		if m.isDelete {
			return old, nil, true, nil
		}
		return old, m.primaryValue, false, nil
	}
	if m.isDelete {
		if !csvContains(existing, m.member) {
			return nil, existing, false, ErrTokenAbsent
		}
		next := csvRemove(existing, m.member)
		if len(next) == 0 {
			return nil, nil, true, nil
		}
		return nil, next, false, nil
	}
	if csvContains(existing, m.member) {
		return nil, existing, false, ErrTokenPresent
	}
	return nil, csvAppend(existing, m.member), false, nil
}

// mutate is the recursive descent shared by every mutation mode. h is the
// hash of the subtree rooted here (ZeroHash for an absent subtree); path is
// the remaining nibble path; fullKey identifies the operation's original
// key, for to_del_map bookkeeping.
func (t *Trie) mutate(h Hash, path []byte, fullKey string, m mutation) (Hash, []byte, error) {
	if h.IsZero() {
		return t.createNew(path, fullKey, m)
	}
	n, err := t.cache.get(h)
	if err != nil {
		return h, nil, err
	}
	switch n.Kind {
	case KindBranch:
		return t.mutateBranch(h, n, path, fullKey, m)
	default:
		return t.mutateShort(h, n, path, fullKey, m)
	}
}

// createNew materializes fresh content for an empty slot. mutateBranch
// records a secondary delete's pending-deletion directly on the owning
// branch when the descent reaches a known branch's empty child slot; this
// function instead handles the case where there is no owning branch at
// all, i.e. the whole subtree rooted here (up to and including the whole
// trie) is absent. A secondary delete reaching that point still has to be
// remembered so a later add for the same (key, value) cancels it rather
// than silently resurrecting a delete that raced ahead of its add (the
// commutativity invariant of spec.md §4.3/§8) — so it materializes an
// empty branch carrying the pending deletion, exactly like mutateBranch's
// own bookkeeping node, and mutateBranch's cancellation path collapses it
// back to ZeroHash once the pending entry is consumed and nothing else
// keeps it alive.
func (t *Trie) createNew(path []byte, fullKey string, m mutation) (Hash, []byte, error) {
	if m.isPrimary {
		if m.isDelete {
			return ZeroHash, nil, nil
		}
		nn := newLeaf(nil, path, m.primaryValue)
		return t.store(nn), nil, nil
	}
	if m.isDelete {
		if len(path) == 0 {
			// A zero-length key has no tree position to hang a pending
			// deletion off of; nothing was ever there to delete.
			return ZeroHash, nil, ErrTokenAbsent
		}
		branch := newBranch()
		branch.recordPendingDelete(fullKey, m.member)
		return t.store(branch), nil, nil
	}
	nn := newLeaf(nil, path, csvAppend(nil, m.member))
	return t.store(nn), nil, nil
}

func (t *Trie) mutateBranch(h Hash, n *Node, path []byte, fullKey string, m mutation) (Hash, []byte, error) {
	n = n.clone()

	if len(path) == 0 {
		old, newVal, removed, err := applyValueOp(n.Branch, m)
		if err != nil {
			return h, nil, err
		}
		n.Branch = newVal
		if removed && n.isEmptyBranch() {
			return ZeroHash, old, nil
		}
		return t.store(n), old, nil
	}

	idx := path[0]
	rest := path[1:]
	child := n.Children[idx]

	if child.IsZero() {
		if !m.isPrimary && m.isDelete {
			if !n.pendingDelete(fullKey, m.member) {
				n.recordPendingDelete(fullKey, m.member)
			}
			return t.store(n), nil, nil
		}
		if !m.isPrimary && n.consumePendingDelete(fullKey, m.member) {
			// A pending delete cancels this add; net effect is absent. If
			// this branch existed solely to carry that pending deletion
			// (createNew's placeholder, or one left empty by other
			// mutations), collapse it back to ZeroHash so the tree ends up
			// identical to one where the cancelling pair never happened.
			if n.isEmptyBranch() {
				return ZeroHash, nil, nil
			}
			return t.store(n), nil, nil
		}
		newChildHash, old, err := t.mutate(ZeroHash, rest, fullKey, m)
		if err != nil {
			return h, nil, err
		}
		if !newChildHash.IsZero() && n.ToDelMap[fullKey] != nil {
			if childNode, gerr := t.cache.get(newChildHash); gerr == nil && childNode != nil {
				n.inheritToDelMap(childNode, fullKey)
				newChildHash = t.store(childNode)
			}
		}
		n.Children[idx] = newChildHash
		return t.store(n), old, nil
	}

	newChildHash, old, err := t.mutate(child, rest, fullKey, m)
	if err != nil {
		return h, nil, err
	}
	n.Children[idx] = newChildHash
	if n.isEmptyBranch() {
		return ZeroHash, old, nil
	}
	return t.store(n), old, nil
}

func (t *Trie) mutateShort(h Hash, n *Node, path []byte, fullKey string, m mutation) (Hash, []byte, error) {
	n = n.clone()
	common := lcp(path, n.Suffix)

	if n.Kind == KindExtension && common == len(n.Suffix) {
		newNext, old, err := t.mutate(n.NextHash, path[common:], fullKey, m)
		if err != nil {
			return h, nil, err
		}
		if newNext.IsZero() {
			return ZeroHash, old, nil
		}
		n.NextHash = newNext
		return t.store(n), old, nil
	}

	if n.Kind == KindLeaf && common == len(n.Suffix) && common == len(path) {
		old, newVal, removed, err := applyValueOp(n.Value, m)
		if err != nil {
			return h, nil, err
		}
		if removed {
			return ZeroHash, old, nil
		}
		n.Value = newVal
		return t.store(n), old, nil
	}

	// Partial (or, for leaf, suffix-exhausted-but-path-longer) overlap:
	// materialize a branch at depth `common`.
	branch := newBranch()

	if n.Kind == KindLeaf && common == len(n.Suffix) {
		// case 2: existing suffix consumed, new key longer.
		branch.Branch = cloneBytes(n.Value)
		branch.ToDelMap = n.ToDelMap
		idx := path[common]
		rest := path[common+1:]
		newChildHash, err := t.newSide(branch, rest, fullKey, m)
		if err != nil {
			return h, nil, err
		}
		branch.Children[idx] = newChildHash
		return t.wrapExtension(n.Prefix, path[:common], branch), nil, nil
	}

	if common == len(path) {
		// case 3 / extension case (b): new key ends here; old content
		// becomes the sole surviving child.
		var old []byte
		if !m.isPrimary && m.isDelete {
			// The descent would split rather than reach an existing
			// leaf: record the pending deletion instead of erroring
			// (spec.md §4.3 delayed-deletion, "the descent would split").
			branch.recordPendingDelete(fullKey, m.member)
		} else {
			o, newVal, removed, err := applyValueOp(nil, m)
			old = o
			if err != nil {
				return h, nil, err
			}
			if !removed {
				branch.Branch = newVal
			}
		}
		oldChildHash, err := t.oldSideHash(n, common)
		if err != nil {
			return h, nil, err
		}
		idx := n.Suffix[common]
		branch.Children[idx] = oldChildHash
		return t.wrapExtension(n.Prefix, path[:common], branch), old, nil
	}

	// case 4 / extension case (c)/(d): full three-way split.
	oldChildHash, err := t.oldSideHash(n, common)
	if err != nil {
		return h, nil, err
	}
	branch.Children[n.Suffix[common]] = oldChildHash

	newChildHash, err := t.newSide(branch, path[common+1:], fullKey, m)
	if err != nil {
		return h, nil, err
	}
	branch.Children[path[common]] = newChildHash

	return t.wrapExtension(n.Prefix, path[:common], branch), nil, nil
}

// newSide materializes the newly-inserted side of a split. A secondary
// delete that reaches here targets a key that never existed at this
// position (the descent is splitting rather than reaching an existing
// leaf); per spec.md §4.3 delayed-deletion, that is recorded as a pending
// deletion on branch rather than treated as an error.
func (t *Trie) newSide(branch *Node, rest []byte, fullKey string, m mutation) (Hash, error) {
	if !m.isPrimary && m.isDelete {
		branch.recordPendingDelete(fullKey, m.member)
		return ZeroHash, nil
	}
	h, _, err := t.mutate(ZeroHash, rest, fullKey, m)
	return h, err
}

// oldSideHash returns the branch-child reference for the surviving tail of
// a split short node, per spec.md §4.3's split rules.
func (t *Trie) oldSideHash(n *Node, common int) (Hash, error) {
	remaining := n.Suffix[common+1:]
	switch n.Kind {
	case KindLeaf:
		nn := newLeaf(n.Prefix, remaining, n.Value)
		nn.ToDelMap = n.ToDelMap
		return t.store(nn), nil
	case KindExtension:
		if len(remaining) == 0 {
			return n.NextHash, nil
		}
		nn := newExtension(n.Prefix, remaining, n.NextHash)
		nn.ToDelMap = n.ToDelMap
		return t.store(nn), nil
	}
	return ZeroHash, ErrInvalidSerialization
}

// wrapExtension wraps branch with an extension carrying prefix, unless the
// shared prefix is empty, in which case the branch is used directly (the
// "extension's suffix is never empty" invariant of spec.md §4.3).
func (t *Trie) wrapExtension(prefix, sharedSuffix []byte, branch *Node) Hash {
	branchHash := t.store(branch)
	if len(sharedSuffix) == 0 {
		return branchHash
	}
	ext := newExtension(prefix, sharedSuffix, branchHash)
	return t.store(ext)
}
