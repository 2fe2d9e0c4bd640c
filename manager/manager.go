// Package manager implements the manager service of spec.md §4.6: routes
// keywords to storage nodes via a consistent hash ring, verifies
// per-keyword proofs, evaluates boolean queries, and maintains a root
// digest cache. Grounded on
// `original_source/crates/manager/src/{manager,service}.rs`, with the
// `tonic`/gRPC client call replaced by an injected StoragerClient per node
// (the `rpc` package supplies the real net/rpc-backed implementation).
package manager

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/xerrors"

	"github.com/kwindex/kwindex/boolean"
	"github.com/kwindex/kwindex/hashring"
	"github.com/kwindex/kwindex/posting"
)

// ErrNoStoragerAvailable is returned when the ring has no node to route a
// keyword to.
var ErrNoStoragerAvailable = xerrors.New("manager: no storager available")

// ErrProofVerificationFailed is returned when a storage node's proof does
// not pass the manager-side structural check.
var ErrProofVerificationFailed = xerrors.New("manager: proof verification failed")

// StoragerClient is the manager's view of a single storage node: whatever
// transport `rpc` wires up, reduced to three raw, wire-shaped calls.
type StoragerClient interface {
	Add(keyword, fid string) (proof []byte, root []byte, err error)
	Query(keyword string) (fids []string, proof []byte, err error)
	Delete(keyword, fid string) (proof []byte, root []byte, err error)
}

// Dialer resolves a storager's address to a usable client.
type Dialer func(addr string) (StoragerClient, error)

// Manager owns the ring, the node-id -> address map, and the cached root
// digest per node, per spec.md §3 "Manager state".
type Manager struct {
	mu sync.RWMutex

	ring      *hashring.Ring
	addresses map[string]string
	roots     map[string][]byte

	kind posting.Kind
	dial Dialer
	log  zerolog.Logger
}

// New returns an empty Manager. kind selects which ADS-mode verification
// rules apply (spec.md §4.7); dial opens a client connection to a
// storager's address.
func New(kind posting.Kind, dial Dialer, log zerolog.Logger) *Manager {
	return &Manager{
		ring:      hashring.New(),
		addresses: make(map[string]string),
		roots:     make(map[string][]byte),
		kind:      kind,
		dial:      dial,
		log:       log,
	}
}

// AddStorager registers a storage node on the ring under nodeID, with
// replicas virtual nodes, reachable at addr.
func (m *Manager) AddStorager(nodeID, addr string, replicas int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ring.AddNode(nodeID, replicas)
	m.addresses[nodeID] = addr
}

// RemoveStorager removes a storage node and its replicas from the ring.
func (m *Manager) RemoveStorager(nodeID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ring.RemoveNode(nodeID)
	delete(m.addresses, nodeID)
	delete(m.roots, nodeID)
}

func (m *Manager) storagerFor(keyword string) (nodeID, addr string, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	nodeID, ok := m.ring.GetNode(keyword)
	if !ok {
		return "", "", ErrNoStoragerAvailable
	}
	addr, ok = m.addresses[nodeID]
	if !ok {
		return "", "", ErrNoStoragerAvailable
	}
	return nodeID, addr, nil
}

func (m *Manager) clientFor(keyword string) (nodeID string, client StoragerClient, err error) {
	nodeID, addr, err := m.storagerFor(keyword)
	if err != nil {
		return "", nil, err
	}
	client, err = m.dial(addr)
	if err != nil {
		return "", nil, fmt.Errorf("manager: dial %s: %w", addr, err)
	}
	return nodeID, client, nil
}

// cachedRoot returns the cached root digest for nodeID, or nil if the
// manager has not observed one yet (a fresh manager bootstraps from the
// first query response per spec.md §4.6 "Root cache discipline").
func (m *Manager) cachedRoot(nodeID string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.roots[nodeID]
}

func (m *Manager) updateRoot(nodeID string, root []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roots[nodeID] = root
}

// Add routes fid under each of keywords (deduplicated) to its shard and
// verifies the returned proof. On the first verification failure the whole
// operation fails with no rollback of keywords already applied (spec.md
// §4.6 "at-most-once semantics per keyword").
func (m *Manager) Add(fid string, keywords []string) error {
	for _, kw := range dedup(keywords) {
		nodeID, client, err := m.clientFor(kw)
		if err != nil {
			return err
		}
		proof, root, err := client.Add(kw, fid)
		if err != nil {
			return fmt.Errorf("manager: storager add for keyword %q: %w", kw, err)
		}
		if !VerifyProof(m.kind, proof, root) {
			return ErrProofVerificationFailed
		}
		m.updateRoot(nodeID, root)
	}
	return nil
}

// Delete is symmetric to Add.
func (m *Manager) Delete(fid string, keywords []string) error {
	for _, kw := range dedup(keywords) {
		nodeID, client, err := m.clientFor(kw)
		if err != nil {
			return err
		}
		proof, root, err := client.Delete(kw, fid)
		if err != nil {
			return fmt.Errorf("manager: storager delete for keyword %q: %w", kw, err)
		}
		if !VerifyProof(m.kind, proof, root) {
			return ErrProofVerificationFailed
		}
		m.updateRoot(nodeID, root)
	}
	return nil
}

// Update deletes fid from oldKeywords then adds it under newKeywords;
// partial failure is partially observable, as in the reference (spec.md
// §4.6).
func (m *Manager) Update(fid string, oldKeywords, newKeywords []string) error {
	if err := m.Delete(fid, oldKeywords); err != nil {
		return err
	}
	return m.Add(fid, newKeywords)
}

// QueryResult is the outcome of a manager-level query.
type QueryResult struct {
	Fids     []string
	Proof    CombinedProof
	Root     []byte
	Verified bool
}

// QuerySingleKeyword issues one StoragerQuery and checks its proof with
// VerifyProof. The proof is not compared with the cached root for that
// shard (VerifyProof does not consult it); the cached root is only
// returned in the result, and while none is cached the result is
// reported as verified whatever the check says.
func (m *Manager) QuerySingleKeyword(keyword string) (QueryResult, error) {
	nodeID, client, err := m.clientFor(keyword)
	if err != nil {
		return QueryResult{}, err
	}
	fids, proof, err := client.Query(keyword)
	if err != nil {
		return QueryResult{}, fmt.Errorf("manager: storager query for keyword %q: %w", keyword, err)
	}

	root := m.cachedRoot(nodeID)
	verified := VerifyProof(m.kind, proof, root)
	if root == nil {
		// Bootstrap: a fresh manager has no cached root yet (spec.md §4.6).
		verified = true
	}

	return QueryResult{
		Fids:     fids,
		Proof:    CombinedProof{SubProofs: [][]byte{proof}},
		Root:     root,
		Verified: verified,
	}, nil
}

// QueryBooleanExpr parses expr, fans out one StoragerQuery per distinct
// keyword leaf, verifies each sub-proof, evaluates the AST over the
// per-keyword fid sets, and combines the sub-proofs (spec.md §4.6).
func (m *Manager) QueryBooleanExpr(expr string) (QueryResult, error) {
	ast, err := boolean.Parse(expr)
	if err != nil {
		return QueryResult{}, fmt.Errorf("manager: parse boolean expression: %w", err)
	}

	keywords := boolean.Keywords(ast)
	results := make(map[string][]string, len(keywords))
	var subProofs [][]byte
	var representativeRoot []byte

	for _, kw := range keywords {
		nodeID, client, err := m.clientFor(kw)
		if err != nil {
			return QueryResult{}, err
		}
		fids, proof, err := client.Query(kw)
		if err != nil {
			return QueryResult{}, fmt.Errorf("manager: storager query for keyword %q: %w", kw, err)
		}

		root := m.cachedRoot(nodeID)
		if !VerifyProof(m.kind, proof, root) && root != nil {
			return QueryResult{}, fmt.Errorf("%w: keyword %q", ErrProofVerificationFailed, kw)
		}

		results[kw] = fids
		subProofs = append(subProofs, proof)
		if representativeRoot == nil {
			representativeRoot = root
		}
	}

	fids := boolean.EvaluateFidSlices(ast, results)

	return QueryResult{
		Fids:     fids,
		Proof:    m.combine(subProofs),
		Root:     representativeRoot,
		Verified: true, // each sub-proof already verified above
	}, nil
}

// combine dispatches to the accumulator or MPT combination rule, per
// spec.md §9's documented "combine_proofs" design note.
func (m *Manager) combine(proofs [][]byte) CombinedProof {
	if m.kind == posting.KindMPT {
		return CombineMPT(proofs)
	}
	return Combine(proofs)
}

func dedup(ss []string) []string {
	seen := make(map[string]struct{}, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
