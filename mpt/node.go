// Package mpt implements the hex-nibble Merkle-Patricia Trie used as one
// of the two interchangeable authenticated data structures backing a
// keyword's posting list (spec.md §4.3). Keys are arbitrary byte strings
// interpreted as nibble paths; nodes are content-addressed by SHA-256 and
// persisted through an external key-value store (kvstore.KVStore) behind
// an LRU read-through/write-back cache.
//
// Generalized from the teacher's arity-parameterized, single-node-shape
// trie (trie/, mutable/) to the Ethereum-style three-shape
// branch/extension/leaf trie spec.md §4.3 specifies, since spec.md's
// split/merge rules are stated in exactly those terms.
package mpt

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
)

// Hash is a node's content hash, or the zero value for "no node".
type Hash [32]byte

// ZeroHash denotes an empty subtree / absent child.
var ZeroHash Hash

func (h Hash) IsZero() bool {
	return h == ZeroHash
}

func (h Hash) Bytes() []byte {
	out := make([]byte, 32)
	copy(out, h[:])
	return out
}

func HashFromBytes(b []byte) Hash {
	var h Hash
	copy(h[:], b)
	return h
}

// Kind tags the two node shapes spec.md §3 describes.
type Kind uint8

const (
	KindLeaf Kind = iota
	KindExtension
	KindBranch
)

// Node is the tagged union of the MPT's node shapes. Branch fields are
// populated when Kind==KindBranch; Prefix/Suffix/Value/NextHash are
// populated for the two "short" shapes (leaf, extension).
type Node struct {
	Kind Kind

	// Short-node fields (leaf, extension).
	Prefix []byte // cosmetic byte-string label, spec.md §3
	Suffix []byte // hex-nibble path segment

	Value    []byte // leaf only
	NextHash Hash   // extension only

	// Branch fields.
	Children [16]Hash
	Branch   []byte // optional value carried by a branch node

	// ToDelMap is the delayed-deletion bookkeeping described in spec.md
	// §4.3: map[key][value] -> pending-deletion count.
	ToDelMap map[string]map[string]uint32

	hash  Hash
	dirty bool
}

func newLeaf(prefix, suffix, value []byte) *Node {
	return &Node{Kind: KindLeaf, Prefix: cloneBytes(prefix), Suffix: cloneBytes(suffix), Value: cloneBytes(value), dirty: true}
}

func newExtension(prefix, suffix []byte, next Hash) *Node {
	return &Node{Kind: KindExtension, Prefix: cloneBytes(prefix), Suffix: cloneBytes(suffix), NextHash: next, dirty: true}
}

func newBranch() *Node {
	return &Node{Kind: KindBranch, dirty: true}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (n *Node) clone() *Node {
	c := *n
	c.Prefix = cloneBytes(n.Prefix)
	c.Suffix = cloneBytes(n.Suffix)
	c.Value = cloneBytes(n.Value)
	c.Branch = cloneBytes(n.Branch)
	c.Children = n.Children
	if n.ToDelMap != nil {
		c.ToDelMap = make(map[string]map[string]uint32, len(n.ToDelMap))
		for k, vs := range n.ToDelMap {
			inner := make(map[string]uint32, len(vs))
			for v, cnt := range vs {
				inner[v] = cnt
			}
			c.ToDelMap[k] = inner
		}
	}
	c.dirty = true
	return &c
}

func (n *Node) isEmptyBranch() bool {
	if n.Kind != KindBranch {
		return false
	}
	if len(n.Branch) != 0 {
		return false
	}
	for _, h := range n.Children {
		if !h.IsZero() {
			return false
		}
	}
	return true
}

// rehash recomputes the node's content hash. Branch: H(children[0..16] ||
// value?); short: H(prefix || suffix || (value if leaf else next_hash)).
func (n *Node) rehash() Hash {
	h := sha256.New()
	switch n.Kind {
	case KindBranch:
		for _, c := range n.Children {
			h.Write(c[:])
		}
		h.Write(n.Branch)
	default:
		h.Write(n.Prefix)
		h.Write(n.Suffix)
		if n.Kind == KindLeaf {
			h.Write(n.Value)
		} else {
			h.Write(n.NextHash[:])
		}
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	n.hash = out
	n.dirty = false
	return out
}

func (n *Node) pendingDelete(key, value string) bool {
	vals, ok := n.ToDelMap[key]
	if !ok {
		return false
	}
	return vals[value] > 0
}

// consumePendingDelete cancels one pending deletion for (key,value), if any,
// returning true if one was consumed.
func (n *Node) consumePendingDelete(key, value string) bool {
	vals, ok := n.ToDelMap[key]
	if !ok {
		return false
	}
	cnt, ok := vals[value]
	if !ok || cnt == 0 {
		return false
	}
	if cnt == 1 {
		delete(vals, value)
		if len(vals) == 0 {
			delete(n.ToDelMap, key)
		}
	} else {
		vals[value] = cnt - 1
	}
	return true
}

func (n *Node) recordPendingDelete(key, value string) {
	if n.ToDelMap == nil {
		n.ToDelMap = make(map[string]map[string]uint32)
	}
	vals, ok := n.ToDelMap[key]
	if !ok {
		vals = make(map[string]uint32)
		n.ToDelMap[key] = vals
	}
	vals[value]++
}

// inheritToDelMap moves every pending deletion recorded for key from n into
// child, per spec.md §4.3's "inheritance rule": when a new leaf is created
// at a branch that has accumulated tokens descending through it, those
// tokens move to the new child.
func (n *Node) inheritToDelMap(child *Node, key string) {
	vals, ok := n.ToDelMap[key]
	if !ok {
		return
	}
	if child.ToDelMap == nil {
		child.ToDelMap = make(map[string]map[string]uint32)
	}
	child.ToDelMap[key] = vals
	delete(n.ToDelMap, key)
}

// --- JSON serialization (spec.md §4.3 "JSON-serialized node blobs") ---

type nodeJSON struct {
	Kind     Kind                          `json:"kind"`
	Prefix   []byte                        `json:"prefix,omitempty"`
	Suffix   []byte                        `json:"suffix,omitempty"`
	Value    []byte                        `json:"value,omitempty"`
	NextHash []byte                        `json:"next_hash,omitempty"`
	Children [16][]byte                    `json:"children,omitempty"`
	Branch   []byte                        `json:"branch_value,omitempty"`
	ToDelMap map[string]map[string]uint32  `json:"to_del_map,omitempty"`
}

func (n *Node) marshal() ([]byte, error) {
	j := nodeJSON{
		Kind:     n.Kind,
		Prefix:   n.Prefix,
		Suffix:   n.Suffix,
		Value:    n.Value,
		NextHash: nonZeroBytes(n.NextHash),
		Branch:   n.Branch,
		ToDelMap: n.ToDelMap,
	}
	for i, c := range n.Children {
		j.Children[i] = nonZeroBytes(c)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(j); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func nonZeroBytes(h Hash) []byte {
	if h.IsZero() {
		return nil
	}
	return h.Bytes()
}

func unmarshalNode(data []byte) (*Node, error) {
	var j nodeJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, ErrInvalidSerialization
	}
	n := &Node{
		Kind:     j.Kind,
		Prefix:   j.Prefix,
		Suffix:   j.Suffix,
		Value:    j.Value,
		Branch:   j.Branch,
		ToDelMap: j.ToDelMap,
	}
	if len(j.NextHash) > 0 {
		n.NextHash = HashFromBytes(j.NextHash)
	}
	for i, c := range j.Children {
		if len(c) > 0 {
			n.Children[i] = HashFromBytes(c)
		}
	}
	n.rehash()
	return n, nil
}

// --- nibble path helpers ---

// ToNibbles expands a byte string into its hex-nibble key path, per
// spec.md §3: [k[0]>>4, k[0]&0xF, k[1]>>4, ...].
func ToNibbles(key []byte) []byte {
	out := make([]byte, len(key)*2)
	for i, b := range key {
		out[2*i] = b >> 4
		out[2*i+1] = b & 0x0F
	}
	return out
}

// lcp returns the length of the longest common prefix of a and b.
func lcp(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
