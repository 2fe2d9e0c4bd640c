package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kwindex/kwindex/posting"
)

func TestParseAdsMode(t *testing.T) {
	kind, err := parseAdsMode("")
	require.NoError(t, err)
	require.Equal(t, posting.KindAccumulator, kind)

	kind, err = parseAdsMode("ACCUMULATOR")
	require.NoError(t, err)
	require.Equal(t, posting.KindAccumulator, kind)

	kind, err = parseAdsMode("mpt")
	require.NoError(t, err)
	require.Equal(t, posting.KindMPT, kind)

	_, err = parseAdsMode("bogus")
	require.Error(t, err)
}

func TestSplitStoragers(t *testing.T) {
	require.Nil(t, splitStoragers(""))
	require.Nil(t, splitStoragers("   "))
	require.Equal(t, []string{"a:1"}, splitStoragers("a:1"))
	require.Equal(t, []string{"a:1", "b:2"}, splitStoragers("a:1, b:2"))
}
