// Package hashring implements the consistent hash ring of spec.md §4.4,
// ported from the Rust `consistent_hash` crate's BTreeMap-backed ring to a
// sorted slice with binary search (Go's idiomatic stand-in for an ordered
// map range query).
package hashring

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Ring is a consistent hash ring with virtual-node support, safe for
// concurrent use.
type Ring struct {
	mu sync.RWMutex

	// hashes and owners are kept in lockstep, sorted ascending by hash
	// value: hashes[i] is owned by owners[i]. This is the slice
	// equivalent of the Rust BTreeMap<u64, String> ring.
	hashes []uint64
	owners []string

	replicas map[string]int // node -> virtual node count
}

// New returns an empty ring.
func New() *Ring {
	return &Ring{replicas: make(map[string]int)}
}

func hashKey(key string) uint64 {
	return xxhash.Sum64String(key)
}

func vnodeKey(node string, i int) string {
	return fmt.Sprintf("%s#vnode%d", node, i)
}

// AddNode adds a node with the given replica (virtual node) count. Returns
// false if the node already exists.
func (r *Ring) AddNode(node string, replicas int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.replicas[node]; exists {
		return false
	}

	for i := 0; i < replicas; i++ {
		h := hashKey(vnodeKey(node, i))
		r.insert(h, node)
	}
	r.replicas[node] = replicas
	return true
}

// RemoveNode removes a node and exactly its replicas. Returns false if the
// node did not exist.
func (r *Ring) RemoveNode(node string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	replicas, exists := r.replicas[node]
	if !exists {
		return false
	}

	for i := 0; i < replicas; i++ {
		h := hashKey(vnodeKey(node, i))
		r.remove(h)
	}
	delete(r.replicas, node)
	return true
}

// insert keeps r.hashes sorted ascending, mirroring BTreeMap::insert.
func (r *Ring) insert(h uint64, node string) {
	i := sort.Search(len(r.hashes), func(i int) bool { return r.hashes[i] >= h })
	if i < len(r.hashes) && r.hashes[i] == h {
		r.owners[i] = node // hash collision: last write wins, as in the Rust map
		return
	}
	r.hashes = append(r.hashes, 0)
	r.owners = append(r.owners, "")
	copy(r.hashes[i+1:], r.hashes[i:])
	copy(r.owners[i+1:], r.owners[i:])
	r.hashes[i] = h
	r.owners[i] = node
}

func (r *Ring) remove(h uint64) {
	i := sort.Search(len(r.hashes), func(i int) bool { return r.hashes[i] >= h })
	if i >= len(r.hashes) || r.hashes[i] != h {
		return
	}
	r.hashes = append(r.hashes[:i], r.hashes[i+1:]...)
	r.owners = append(r.owners[:i], r.owners[i+1:]...)
}

// GetNode returns the physical node key routes to: the owner of the
// smallest vnode hash >= H(key), wrapping to the smallest overall hash if
// none exists. Returns ("", false) if the ring is empty.
func (r *Ring) GetNode(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.hashes) == 0 {
		return "", false
	}

	h := hashKey(key)
	i := sort.Search(len(r.hashes), func(i int) bool { return r.hashes[i] >= h })
	if i == len(r.hashes) {
		i = 0 // wrap around the ring
	}
	return r.owners[i], true
}

// GetNodes walks the ring in ascending order starting at H(key), skipping
// duplicate physical nodes, until count distinct nodes are collected or the
// ring is exhausted.
func (r *Ring) GetNodes(key string, count int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.hashes) == 0 || count <= 0 {
		return nil
	}

	h := hashKey(key)
	start := sort.Search(len(r.hashes), func(i int) bool { return r.hashes[i] >= h })

	seen := make(map[string]struct{}, count)
	result := make([]string, 0, count)
	n := len(r.hashes)
	for i := 0; i < n; i++ {
		owner := r.owners[(start+i)%n]
		if _, ok := seen[owner]; ok {
			continue
		}
		seen[owner] = struct{}{}
		result = append(result, owner)
		if len(result) >= count {
			break
		}
	}
	return result
}

// Nodes returns all physical node names currently on the ring.
func (r *Ring) Nodes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.replicas))
	for node := range r.replicas {
		out = append(out, node)
	}
	return out
}

// NodeCount returns the number of physical nodes.
func (r *Ring) NodeCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.replicas)
}

// VirtualNodeCount returns the total number of virtual nodes on the ring.
func (r *Ring) VirtualNodeCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hashes)
}

// ReplicaCount returns the replica count registered for node, and whether
// the node exists.
func (r *Ring) ReplicaCount(node string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.replicas[node]
	return n, ok
}

// IsEmpty reports whether the ring has no physical nodes.
func (r *Ring) IsEmpty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.replicas) == 0
}

// Distribution counts, for each key in keys, which node it routes to.
// Debugging/test helper mirroring the Rust distribution().
func (r *Ring) Distribution(keys []string) map[string]int {
	counts := make(map[string]int)
	for _, k := range keys {
		if node, ok := r.GetNode(k); ok {
			counts[node]++
		}
	}
	return counts
}
