package storager

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kwindex/kwindex/curve"
	"github.com/kwindex/kwindex/kvstore"
	"github.com/kwindex/kwindex/posting"
)

func discardLog() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func TestAddQueryDeleteAccumulatorBacked(t *testing.T) {
	setup := curve.NewSetupFromSeed([]byte("storager test fixture"))
	s := New(posting.KindAccumulator, setup, nil, discardLog())

	_, root1, err := s.Add("rust", "file1")
	require.NoError(t, err)
	require.NotEmpty(t, root1)

	_, root2, err := s.Add("rust", "file2")
	require.NoError(t, err)
	require.NotEqual(t, root1, root2)

	fids, _, _, err := s.Query("rust")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"file1", "file2"}, fids)

	fids, proof, _, err := s.Query("missing")
	require.NoError(t, err)
	require.Empty(t, fids)
	require.True(t, proof.Accepted)

	_, _, err = s.Delete("rust", "file1")
	require.NoError(t, err)
	require.Contains(t, s.Keywords(), "rust")

	_, root3, err := s.Delete("rust", "file2")
	require.NoError(t, err)
	require.Nil(t, root3)
	require.NotContains(t, s.Keywords(), "rust")
}

func TestAddQueryDeleteMPTBacked(t *testing.T) {
	s := New(posting.KindMPT, nil, nil, discardLog())

	_, _, err := s.Add("go", "file1")
	require.NoError(t, err)
	_, _, err = s.Add("go", "file2")
	require.NoError(t, err)

	fids, _, _, err := s.Query("go")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"file1", "file2"}, fids)

	_, _, err = s.Delete("go", "file1")
	require.NoError(t, err)
	_, root, err := s.Delete("go", "file2")
	require.NoError(t, err)
	require.Nil(t, root)
	require.NotContains(t, s.Keywords(), "go")
}

func TestDeleteMissingKeywordIsIdempotent(t *testing.T) {
	s := New(posting.KindMPT, nil, nil, discardLog())
	_, root, err := s.Delete("nope", "file1")
	require.NoError(t, err)
	require.Nil(t, root)
}

func TestMPTKeywordSurvivesRestoreFromStore(t *testing.T) {
	store := kvstore.NewMemStore()

	s1 := New(posting.KindMPT, nil, store, discardLog())
	_, root1, err := s1.Add("rust", "file1")
	require.NoError(t, err)
	_, root2, err := s1.Add("rust", "file2")
	require.NoError(t, err)
	require.NotEqual(t, root1, root2)

	s2 := New(posting.KindMPT, nil, store, discardLog())
	require.NoError(t, s2.Restore())
	require.Contains(t, s2.Keywords(), "rust")

	fids, _, root, err := s2.Query("rust")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"file1", "file2"}, fids)
	require.Equal(t, root2, root)
}

func TestMPTRestoreSkipsFullyDeletedKeywords(t *testing.T) {
	store := kvstore.NewMemStore()

	s1 := New(posting.KindMPT, nil, store, discardLog())
	_, _, err := s1.Add("go", "file1")
	require.NoError(t, err)
	_, root, err := s1.Delete("go", "file1")
	require.NoError(t, err)
	require.Nil(t, root)

	s2 := New(posting.KindMPT, nil, store, discardLog())
	require.NoError(t, s2.Restore())
	require.NotContains(t, s2.Keywords(), "go")
}
