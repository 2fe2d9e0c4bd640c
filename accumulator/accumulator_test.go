package accumulator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kwindex/kwindex/curve"
	"github.com/kwindex/kwindex/field"
)

func testSetup() *curve.Setup {
	return curve.NewSetupFromSeed([]byte("accumulator test fixture"))
}

func elem(v uint64) field.Element {
	return field.FromUint64(v)
}

// TestAddQueryDeleteLifecycle follows spec.md §8 scenario 2: add three
// elements, query a member and a non-member, delete a member, query it
// again, then fail to delete it a second time.
func TestAddQueryDeleteLifecycle(t *testing.T) {
	setup := testSetup()
	acc := New(setup)

	_, err := acc.Add(elem(100))
	require.NoError(t, err)
	_, err = acc.Add(elem(200))
	require.NoError(t, err)
	addProof, err := acc.Add(elem(300))
	require.NoError(t, err)
	require.True(t, addProof.Verify(setup))

	res, err := acc.Query(elem(200))
	require.NoError(t, err)
	require.True(t, res.IsMember)
	require.True(t, res.Membership.Verify(setup, acc.AccValue()))

	res, err = acc.Query(elem(999))
	require.NoError(t, err)
	require.False(t, res.IsMember)
	require.True(t, res.NonMembership.Verify(setup, acc.AccValue()))

	delProof, err := acc.Delete(elem(100))
	require.NoError(t, err)
	require.True(t, delProof.Verify(setup))

	res, err = acc.Query(elem(100))
	require.NoError(t, err)
	require.False(t, res.IsMember)
	require.True(t, res.NonMembership.Verify(setup, acc.AccValue()))

	_, err = acc.Delete(elem(100))
	require.ErrorIs(t, err, ErrElementAbsent)
}

func TestAddDuplicateFails(t *testing.T) {
	setup := testSetup()
	acc := New(setup)
	_, err := acc.Add(elem(1))
	require.NoError(t, err)
	_, err = acc.Add(elem(1))
	require.ErrorIs(t, err, ErrElementAlreadyPresent)
}

func TestMembershipProofRejectsWrongAccValue(t *testing.T) {
	setup := testSetup()
	acc := New(setup)
	_, err := acc.Add(elem(7))
	require.NoError(t, err)
	proof, err := acc.ProveMembership(elem(7))
	require.NoError(t, err)

	other := New(setup)
	_, err = other.Add(elem(9))
	require.NoError(t, err)

	require.False(t, proof.Verify(setup, other.AccValue()))
}

// TestIntersection follows spec.md §8 scenario 3: E1={100,200,300},
// E2={200,300,400}; the intersection is {200,300} and its accumulator
// matches one built independently, with a verifying proof.
func TestIntersection(t *testing.T) {
	setup := testSetup()

	acc1 := New(setup)
	for _, v := range []uint64{100, 200, 300} {
		_, err := acc1.Add(elem(v))
		require.NoError(t, err)
	}
	acc2 := New(setup)
	for _, v := range []uint64{200, 300, 400} {
		_, err := acc2.Add(elem(v))
		require.NoError(t, err)
	}

	inter, proof, err := acc1.Intersect(acc2)
	require.NoError(t, err)
	require.ElementsMatch(t, []field.Element{elem(200), elem(300)}, inter.Elements())

	independent := New(setup)
	_, err = independent.Add(elem(200))
	require.NoError(t, err)
	_, err = independent.Add(elem(300))
	require.NoError(t, err)
	require.True(t, curve.EqualG1(inter.AccValue(), independent.AccValue()))

	require.True(t, VerifyIntersection(acc1.AccValue(), acc2.AccValue(), inter.AccValue(), proof))
}

func TestUnion(t *testing.T) {
	setup := testSetup()

	acc1 := New(setup)
	for _, v := range []uint64{100, 200, 300} {
		_, err := acc1.Add(elem(v))
		require.NoError(t, err)
	}
	acc2 := New(setup)
	for _, v := range []uint64{200, 300, 400} {
		_, err := acc2.Add(elem(v))
		require.NoError(t, err)
	}

	union, proof, err := acc1.Union(acc2)
	require.NoError(t, err)
	require.ElementsMatch(t, []field.Element{elem(100), elem(200), elem(300), elem(400)}, union.Elements())
	require.True(t, VerifyUnion(acc1.AccValue(), acc2.AccValue(), union.AccValue(), proof))
}

func TestIntersectionEmpty(t *testing.T) {
	setup := testSetup()
	acc1 := New(setup)
	_, err := acc1.Add(elem(1))
	require.NoError(t, err)
	acc2 := New(setup)
	_, err = acc2.Add(elem(2))
	require.NoError(t, err)

	inter, proof, err := acc1.Intersect(acc2)
	require.NoError(t, err)
	require.Equal(t, 0, inter.Len())
	require.True(t, VerifyIntersection(acc1.AccValue(), acc2.AccValue(), inter.AccValue(), proof))
}

func TestNonMembershipOnEmptyAccumulator(t *testing.T) {
	setup := testSetup()
	acc := New(setup)
	res, err := acc.Query(elem(42))
	require.NoError(t, err)
	require.False(t, res.IsMember)
	require.True(t, res.NonMembership.Verify(setup, acc.AccValue()))
}
