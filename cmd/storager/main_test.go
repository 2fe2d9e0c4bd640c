package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kwindex/kwindex/posting"
)

func TestParseAdsType(t *testing.T) {
	kind, err := parseAdsType("")
	require.NoError(t, err)
	require.Equal(t, posting.KindAccumulator, kind)

	kind, err = parseAdsType("MPT")
	require.NoError(t, err)
	require.Equal(t, posting.KindMPT, kind)

	_, err = parseAdsType("bogus")
	require.Error(t, err)
}
