package posting

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kwindex/kwindex/curve"
)

func testSetup() *curve.Setup {
	return curve.NewSetupFromSeed([]byte("posting test fixture"))
}

func TestAccumulatorInstanceLifecycle(t *testing.T) {
	inst, err := New(KindAccumulator, "rust", testSetup(), nil)
	require.NoError(t, err)
	require.True(t, inst.Empty())

	_, root1, err := inst.Add("file1")
	require.NoError(t, err)
	require.NotEmpty(t, root1)

	_, root2, err := inst.Add("file2")
	require.NoError(t, err)
	require.NotEqual(t, root1, root2)

	// Duplicate add is idempotent.
	fids, proof, root3, err := addAndQuery(inst, "file1")
	require.NoError(t, err)
	require.True(t, proof.Accepted)
	require.Equal(t, root2, root3)
	require.ElementsMatch(t, []string{"file1", "file2"}, fids)

	fids, qproof, qroot, err := inst.Query()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"file1", "file2"}, fids)
	require.NotNil(t, qproof.AccQuery)
	require.True(t, qproof.AccQuery.IsMember)
	require.Equal(t, root3, qroot)

	_, _, err = inst.Delete("file1")
	require.NoError(t, err)
	require.False(t, inst.Empty())

	_, root4, err := inst.Delete("file2")
	require.NoError(t, err)
	require.Nil(t, root4)
	require.True(t, inst.Empty())
}

func addAndQuery(inst Instance, fid string) ([]string, Proof, []byte, error) {
	proof, root, err := inst.Add(fid)
	if err != nil {
		return nil, Proof{}, nil, err
	}
	fids, _, _, err := inst.Query()
	return fids, proof, root, err
}

func TestMPTInstanceLifecycle(t *testing.T) {
	inst, err := New(KindMPT, "go", nil, nil)
	require.NoError(t, err)
	require.True(t, inst.Empty())

	_, root1, err := inst.Add("file1")
	require.NoError(t, err)
	require.NotEmpty(t, root1)

	_, root2, err := inst.Add("file2")
	require.NoError(t, err)
	require.NotEqual(t, root1, root2)

	fids, proof, qroot, err := inst.Query()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"file1", "file2"}, fids)
	require.True(t, proof.MPTQuery.IsExist)
	require.Equal(t, root2, qroot)

	_, _, err = inst.Add("file1")
	require.NoError(t, err)

	_, _, err = inst.Delete("file1")
	require.NoError(t, err)
	require.False(t, inst.Empty())

	_, root3, err := inst.Delete("file2")
	require.NoError(t, err)
	require.Nil(t, root3)
	require.True(t, inst.Empty())
}

func TestQueryMissingKeywordIsTriviallyAccepting(t *testing.T) {
	accInst, err := New(KindAccumulator, "missing", testSetup(), nil)
	require.NoError(t, err)
	fids, proof, _, err := accInst.Query()
	require.NoError(t, err)
	require.Empty(t, fids)
	require.True(t, proof.Accepted)

	mptInst, err := New(KindMPT, "missing", nil, nil)
	require.NoError(t, err)
	fids, proof, _, err = mptInst.Query()
	require.NoError(t, err)
	require.Empty(t, fids)
	require.False(t, proof.MPTQuery.IsExist)
}
