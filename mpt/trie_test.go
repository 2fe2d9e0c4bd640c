package mpt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kwindex/kwindex/kvstore"
)

// TestBasicPutGetVerify follows spec.md §8 scenario 5.
func TestBasicPutGetVerify(t *testing.T) {
	tr := New(kvstore.NewMemStore(), 0)

	old, err := tr.Put([]byte("name"), []byte("Alice"))
	require.NoError(t, err)
	require.Nil(t, old)

	_, err = tr.Put([]byte("age"), []byte("25"))
	require.NoError(t, err)

	val, found, err := tr.Get([]byte("name"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("Alice"), val)

	_, proof, err := tr.QueryByKey([]byte("name"))
	require.NoError(t, err)
	require.True(t, proof.IsExist)
	require.True(t, tr.VerifyQueryResult([]byte("Alice"), proof))

	old, err = tr.Put([]byte("name"), []byte("Bob"))
	require.NoError(t, err)
	require.Equal(t, []byte("Alice"), old)

	old, err = tr.DeletePrimary([]byte("age"))
	require.NoError(t, err)
	require.Equal(t, []byte("25"), old)

	_, found, err = tr.Get([]byte("age"))
	require.NoError(t, err)
	require.False(t, found)

	_, proof, err = tr.QueryByKey([]byte("age"))
	require.NoError(t, err)
	require.False(t, proof.IsExist)
}

// TestRestart follows spec.md §8 scenario 6.
func TestRestart(t *testing.T) {
	store := kvstore.NewMemStore()
	tr := New(store, 0)

	type kv struct{ k, v string }
	fixtures := make([]kv, 0, 10)
	for i := 0; i < 10; i++ {
		k := string(rune('a' + i))
		v := k + k + k
		fixtures = append(fixtures, kv{k, v})
		_, err := tr.Put([]byte(k), []byte(v))
		require.NoError(t, err)
	}

	require.NoError(t, tr.BatchFix())
	require.NoError(t, tr.PersistToDB())
	wantRoot := tr.RootHash()

	restored, err := LoadFromDB(store, 0)
	require.NoError(t, err)
	require.Equal(t, wantRoot, restored.RootHash())

	for _, f := range fixtures {
		val, proof, err := restored.QueryByKey([]byte(f.k))
		require.NoError(t, err)
		require.Equal(t, []byte(f.v), val)
		require.True(t, restored.VerifyQueryResult([]byte(f.v), proof))
	}
}

func TestSecondaryIndexAddRemove(t *testing.T) {
	tr := New(kvstore.NewMemStore(), 0)

	require.NoError(t, tr.AddMember([]byte("go"), "file1"))
	require.NoError(t, tr.AddMember([]byte("go"), "file2"))
	require.ErrorIs(t, tr.AddMember([]byte("go"), "file1"), ErrTokenPresent)

	val, found, err := tr.Get([]byte("go"))
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, csvContains(val, "file1"))
	require.True(t, csvContains(val, "file2"))

	require.NoError(t, tr.RemoveMember([]byte("go"), "file1"))
	require.ErrorIs(t, tr.RemoveMember([]byte("go"), "file1"), ErrTokenAbsent)

	val, found, err = tr.Get([]byte("go"))
	require.NoError(t, err)
	require.True(t, found)
	require.False(t, csvContains(val, "file1"))
	require.True(t, csvContains(val, "file2"))

	require.NoError(t, tr.RemoveMember([]byte("go"), "file2"))
	_, found, err = tr.Get([]byte("go"))
	require.NoError(t, err)
	require.False(t, found)
}

// TestMPTCommutativity follows spec.md §8's "MPT commutativity" property:
// reordering a sequence of secondary add/delete operations on the same
// (key, value) yields the same root hash.
func TestMPTCommutativity(t *testing.T) {
	build := func(ops []func(*Trie) error) Hash {
		tr := New(kvstore.NewMemStore(), 0)
		for _, op := range ops {
			require.NoError(t, op(tr))
		}
		require.NoError(t, tr.BatchFix())
		return tr.RootHash()
	}

	add := func(k, v string) func(*Trie) error {
		return func(tr *Trie) error { return tr.AddMember([]byte(k), v) }
	}
	del := func(k, v string) func(*Trie) error {
		return func(tr *Trie) error {
			err := tr.RemoveMember([]byte(k), v)
			if err == ErrTokenAbsent {
				return nil
			}
			return err
		}
	}

	orderA := []func(*Trie) error{add("rust", "storage"), add("rust", "python"), del("rust", "storage")}
	orderB := []func(*Trie) error{del("rust", "storage"), add("rust", "storage"), add("rust", "python")}

	rootA := build(orderA)
	rootB := build(orderB)
	require.Equal(t, rootA, rootB)
}
