package mpt

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kwindex/kwindex/kvstore"
)

// nodeCache is the MPT's read-through/write-back node cache, per spec.md
// §4.3: "a pair of LRUs, one per node shape, each with a configurable
// capacity. Eviction is a write-back." Branch nodes go to the branches LRU
// and short (leaf/extension) nodes to the shorts LRU; the configured
// capacity is split in half between the two.
type nodeCache struct {
	branches *lru.Cache[Hash, *Node]
	shorts   *lru.Cache[Hash, *Node]
	kv       kvstore.KVStore
}

const defaultCacheCapacity = 4096

func newNodeCache(kv kvstore.KVStore, capacity int) *nodeCache {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	half := capacity / 2
	if half < 1 {
		half = 1
	}
	c := &nodeCache{kv: kv}
	c.branches, _ = lru.NewWithEvict(half, c.evictBranch)
	c.shorts, _ = lru.NewWithEvict(half, c.evictShort)
	return c
}

func (c *nodeCache) lruFor(kind Kind) *lru.Cache[Hash, *Node] {
	if kind == KindBranch {
		return c.branches
	}
	return c.shorts
}

func (c *nodeCache) evictBranch(h Hash, n *Node) { c.writeBack(h, n) }
func (c *nodeCache) evictShort(h Hash, n *Node)  { c.writeBack(h, n) }

func (c *nodeCache) writeBack(h Hash, n *Node) {
	if n == nil {
		return
	}
	blob, err := n.marshal()
	if err != nil {
		return
	}
	_ = c.kv.Put(h[:], blob)
}

// get returns the node for h, trying the cache then lazily materializing
// it from the external KV (spec.md §4.3 load_from_db).
func (c *nodeCache) get(h Hash) (*Node, error) {
	if h.IsZero() {
		return nil, nil
	}
	if n, ok := c.branches.Get(h); ok {
		return n, nil
	}
	if n, ok := c.shorts.Get(h); ok {
		return n, nil
	}
	blob, err := c.kv.Get(h[:])
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, ErrNodeNotFound
	}
	n, err := unmarshalNode(blob)
	if err != nil {
		return nil, err
	}
	c.lruFor(n.Kind).Add(h, n)
	return n, nil
}

// put stores a freshly mutated node (hash already computed) into the cache.
func (c *nodeCache) put(n *Node) {
	c.lruFor(n.Kind).Add(n.hash, n)
}

// purge flushes both LRUs to the external KV in one pass and empties them
// (spec.md §4.3 "purge(db)").
func (c *nodeCache) purge() {
	for _, h := range c.branches.Keys() {
		if n, ok := c.branches.Peek(h); ok {
			c.writeBack(h, n)
		}
	}
	for _, h := range c.shorts.Keys() {
		if n, ok := c.shorts.Peek(h); ok {
			c.writeBack(h, n)
		}
	}
	c.branches.Purge()
	c.shorts.Purge()
}
