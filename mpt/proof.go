package mpt

// ProofElement carries the local data a verifier needs to recompute one
// node's hash while walking a query proof from leaf to root (spec.md
// §4.3).
type ProofElement struct {
	Kind           Kind
	Prefix         []byte
	Suffix         []byte
	Value          []byte      // leaf
	NextHash       Hash        // extension
	ChildrenHashes [16]Hash    // branch
	BranchValue    []byte      // branch
	ChildIndex     byte        // nibble taken to descend past this element, if any
}

// QueryProof is the ordered list of ProofElements from the leaf upward,
// plus the metadata spec.md §4.3 requires.
type QueryProof struct {
	IsExist  bool
	Levels   int
	Elements []ProofElement // leaf-to-root order
}

// QueryByKey returns (value, proof) for key, per spec.md §4.3.
func (t *Trie) QueryByKey(key []byte) ([]byte, *QueryProof, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	path := ToNibbles(key)
	h := t.root
	var elements []ProofElement
	levels := 0

	for {
		if h.IsZero() {
			reverse(elements)
			return nil, &QueryProof{IsExist: false, Levels: levels, Elements: elements}, nil
		}
		n, err := t.cache.get(h)
		if err != nil {
			return nil, nil, err
		}
		switch n.Kind {
		case KindBranch:
			if len(path) == 0 {
				elements = append(elements, ProofElement{
					Kind:           KindBranch,
					ChildrenHashes: n.Children,
					BranchValue:    n.Branch,
				})
				reverse(elements)
				if n.Branch == nil {
					return nil, &QueryProof{IsExist: false, Levels: levels, Elements: elements}, nil
				}
				return n.Branch, &QueryProof{IsExist: true, Levels: levels, Elements: elements}, nil
			}
			idx := path[0]
			elements = append(elements, ProofElement{
				Kind:           KindBranch,
				ChildrenHashes: n.Children,
				BranchValue:    n.Branch,
				ChildIndex:     idx,
			})
			path = path[1:]
			h = n.Children[idx]
			levels++
		case KindLeaf:
			common := lcp(path, n.Suffix)
			elements = append(elements, ProofElement{Kind: KindLeaf, Prefix: n.Prefix, Suffix: n.Suffix, Value: n.Value})
			reverse(elements)
			if common == len(path) && common == len(n.Suffix) {
				return n.Value, &QueryProof{IsExist: true, Levels: levels, Elements: elements}, nil
			}
			return nil, &QueryProof{IsExist: false, Levels: levels, Elements: elements}, nil
		case KindExtension:
			common := lcp(path, n.Suffix)
			elements = append(elements, ProofElement{Kind: KindExtension, Prefix: n.Prefix, Suffix: n.Suffix, NextHash: n.NextHash})
			if common == len(n.Suffix) {
				path = path[common:]
				h = n.NextHash
				levels++
				continue
			}
			reverse(elements)
			return nil, &QueryProof{IsExist: false, Levels: levels, Elements: elements}, nil
		}
	}
}

func reverse(e []ProofElement) {
	for i, j := 0, len(e)-1; i < j; i, j = i+1, j-1 {
		e[i], e[j] = e[j], e[i]
	}
}

func elementHash(e ProofElement) Hash {
	n := &Node{
		Kind:     e.Kind,
		Prefix:   e.Prefix,
		Suffix:   e.Suffix,
		Value:    e.Value,
		NextHash: e.NextHash,
		Children: e.ChildrenHashes,
		Branch:   e.BranchValue,
	}
	return n.rehash()
}

// VerifyQueryResult checks proof against value and the trie's current root,
// per spec.md §4.3: hash upward element by element, checking at each
// non-leaf level that the computed child hash appears in the parent (branch
// slot, or extension next_hash), then comparing the final hash to root.
func (t *Trie) VerifyQueryResult(value []byte, proof *QueryProof) bool {
	return VerifyQueryResult(value, proof, t.RootHash())
}

// VerifyQueryResult is the standalone verifier: it needs only the claimed
// value, the proof, and the root hash the verifier already trusts.
func VerifyQueryResult(value []byte, proof *QueryProof, root Hash) bool {
	if proof == nil || len(proof.Elements) == 0 {
		return root.IsZero() && !proof.IsExist
	}

	elements := proof.Elements // leaf-to-root order, per spec.md §4.3
	n := len(elements)

	leaf := elements[0]
	if proof.IsExist {
		switch leaf.Kind {
		case KindLeaf:
			if !bytesEqual(leaf.Value, value) {
				return false
			}
		case KindBranch:
			if !bytesEqual(leaf.BranchValue, value) {
				return false
			}
		default:
			return false
		}
	}

	childHash := elementHash(leaf)
	for i := 1; i < n; i++ {
		parent := elements[i]
		switch parent.Kind {
		case KindBranch:
			if parent.ChildrenHashes[parent.ChildIndex] != childHash {
				return false
			}
		case KindExtension:
			if parent.NextHash != childHash {
				return false
			}
		default:
			return false
		}
		childHash = elementHash(parent)
	}

	return childHash == root
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
