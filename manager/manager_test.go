package manager

import (
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kwindex/kwindex/curve"
	"github.com/kwindex/kwindex/field"
	"github.com/kwindex/kwindex/posting"
	"github.com/kwindex/kwindex/storager"
)

// encodeProof is a shorter stand-in for rpc.EncodeProof's wire layout: an
// accumulator proof is one G1 point, the last 8 bytes of the element's
// big-endian encoding and the valid byte (105 bytes, the minimum
// VerifyAccumulatorProof accepts, where rpc emits 201); an MPT proof is
// the root hash, or 32 placeholder bytes when there is none.
// manager_test.go stays an internal test (needs storagerFor for the
// routing-stability test below), so it cannot import the rpc package,
// which itself imports manager to implement manager.StoragerClient.
func encodeProof(p posting.Proof, root []byte) []byte {
	switch p.Kind {
	case posting.KindAccumulator:
		var g curve.G1
		var elem field.Element
		switch {
		case p.AccAdd != nil:
			g, elem = p.AccAdd.New, p.AccAdd.Element
		case p.AccDelete != nil:
			g, elem = p.AccDelete.New, p.AccDelete.Element
		case p.AccQuery != nil && p.AccQuery.Membership != nil:
			g, elem = p.AccQuery.Membership.Witness, p.AccQuery.Membership.Element
		default:
			g, elem = curve.G1Generator(), field.Zero()
		}
		out := make([]byte, 0, 96+8+1)
		out = append(out, g.Bytes()...)
		eb := elem.Bytes()
		out = append(out, eb[len(eb)-8:]...)
		if p.Accepted {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
		return out
	case posting.KindMPT:
		if p.MPTQuery != nil && !p.MPTQuery.IsExist {
			return nil
		}
		if root != nil {
			return root
		}
		return []byte(strings.Repeat("a", mptRootHashSize))
	default:
		return nil
	}
}

// fakeStorager wraps a real *storager.Storager so the manager's routing,
// caching, and verification logic runs against genuine proofs rather than
// hand-rolled stubs.
type fakeStorager struct {
	s *storager.Storager
}

func (f *fakeStorager) Add(keyword, fid string) ([]byte, []byte, error) {
	proof, root, err := f.s.Add(keyword, fid)
	if err != nil {
		return nil, nil, err
	}
	return encodeProof(proof, root), root, nil
}

func (f *fakeStorager) Query(keyword string) ([]string, []byte, error) {
	fids, proof, root, err := f.s.Query(keyword)
	if err != nil {
		return nil, nil, err
	}
	return fids, encodeProof(proof, root), nil
}

func (f *fakeStorager) Delete(keyword, fid string) ([]byte, []byte, error) {
	proof, root, err := f.s.Delete(keyword, fid)
	if err != nil {
		return nil, nil, err
	}
	return encodeProof(proof, root), root, nil
}

func discardLog() zerolog.Logger { return zerolog.New(io.Discard) }

func newTestManager(t *testing.T, kind posting.Kind, nodeIDs []string) *Manager {
	t.Helper()
	var setup *curve.Setup
	if kind == posting.KindAccumulator {
		setup = curve.NewSetupFromSeed([]byte("manager test fixture"))
	}

	nodes := make(map[string]*fakeStorager, len(nodeIDs))
	for _, id := range nodeIDs {
		nodes[id] = &fakeStorager{s: storager.New(kind, setup, nil, discardLog())}
	}

	dial := func(addr string) (StoragerClient, error) {
		return nodes[addr], nil
	}

	m := New(kind, dial, discardLog())
	for _, id := range nodeIDs {
		m.AddStorager(id, id, 100)
	}
	return m
}

func TestAddQuerySingleKeywordAccumulator(t *testing.T) {
	m := newTestManager(t, posting.KindAccumulator, []string{"node-a", "node-b", "node-c"})

	require.NoError(t, m.Add("file1", []string{"rust", "storage"}))
	require.NoError(t, m.Add("file2", []string{"rust"}))

	res, err := m.QuerySingleKeyword("rust")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"file1", "file2"}, res.Fids)
	require.True(t, res.Verified)
}

func TestAddQuerySingleKeywordMPT(t *testing.T) {
	m := newTestManager(t, posting.KindMPT, []string{"node-a", "node-b", "node-c"})

	require.NoError(t, m.Add("file1", []string{"go", "networking"}))
	res, err := m.QuerySingleKeyword("go")
	require.NoError(t, err)
	require.Equal(t, []string{"file1"}, res.Fids)
}

func TestDeleteThenQueryIsEmpty(t *testing.T) {
	m := newTestManager(t, posting.KindAccumulator, []string{"node-a", "node-b"})

	require.NoError(t, m.Add("file1", []string{"rust"}))
	require.NoError(t, m.Delete("file1", []string{"rust"}))

	res, err := m.QuerySingleKeyword("rust")
	require.NoError(t, err)
	require.Empty(t, res.Fids)
}

func TestUpdateMovesFidBetweenKeywords(t *testing.T) {
	m := newTestManager(t, posting.KindMPT, []string{"node-a", "node-b"})

	require.NoError(t, m.Add("file1", []string{"draft"}))
	require.NoError(t, m.Update("file1", []string{"draft"}, []string{"published"}))

	draft, err := m.QuerySingleKeyword("draft")
	require.NoError(t, err)
	require.Empty(t, draft.Fids)

	published, err := m.QuerySingleKeyword("published")
	require.NoError(t, err)
	require.Equal(t, []string{"file1"}, published.Fids)
}

// TestBooleanQueryAcrossShards follows spec.md §8's distributed boolean
// query scenario, routed across three storage nodes.
func TestBooleanQueryAcrossShards(t *testing.T) {
	m := newTestManager(t, posting.KindMPT, []string{"node-a", "node-b", "node-c"})

	add := func(fid string, keywords ...string) {
		require.NoError(t, m.Add(fid, keywords))
	}
	add("file1", "rust", "distributed")
	add("file2", "rust", "storage")
	add("file3", "rust", "storage", "distributed")
	add("file4", "python")

	res, err := m.QueryBooleanExpr("rust AND storage")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"file2", "file3"}, res.Fids)

	res, err = m.QueryBooleanExpr("python OR distributed")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"file1", "file3", "file4"}, res.Fids)

	res, err = m.QueryBooleanExpr("NOT rust")
	require.NoError(t, err)
	require.Empty(t, res.Fids)
}

func TestNoStoragerAvailableWhenRingEmpty(t *testing.T) {
	m := New(posting.KindMPT, func(addr string) (StoragerClient, error) { return nil, nil }, discardLog())
	_, err := m.QuerySingleKeyword("rust")
	require.ErrorIs(t, err, ErrNoStoragerAvailable)
}

func TestRoutingIsStableAcrossCalls(t *testing.T) {
	m := newTestManager(t, posting.KindMPT, []string{"node-a", "node-b", "node-c"})
	nodeID1, _, err := m.storagerFor("rust")
	require.NoError(t, err)
	nodeID2, _, err := m.storagerFor("rust")
	require.NoError(t, err)
	require.Equal(t, nodeID1, nodeID2)
}
