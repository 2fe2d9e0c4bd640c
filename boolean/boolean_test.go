package boolean

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSingleKeyword(t *testing.T) {
	expr, err := Parse("rust")
	require.NoError(t, err)
	require.Equal(t, Keyword("rust"), expr)
}

func TestParseAndOrNot(t *testing.T) {
	expr, err := Parse("rust AND storage")
	require.NoError(t, err)
	_, ok := expr.(*And)
	require.True(t, ok)

	expr, err = Parse("rust OR python")
	require.NoError(t, err)
	_, ok = expr.(*Or)
	require.True(t, ok)

	expr, err = Parse("NOT rust")
	require.NoError(t, err)
	_, ok = expr.(*Not)
	require.True(t, ok)
}

func TestParseCaseInsensitiveOperators(t *testing.T) {
	_, err := Parse("rust and storage")
	require.NoError(t, err)
	_, err = Parse("rust or python")
	require.NoError(t, err)
	_, err = Parse("not rust")
	require.NoError(t, err)
}

func TestParseComplexPrecedenceAndParens(t *testing.T) {
	expr, err := Parse("(rust OR python) AND storage")
	require.NoError(t, err)
	and, ok := expr.(*And)
	require.True(t, ok)
	_, ok = and.Left.(*Or)
	require.True(t, ok)
}

func TestGetKeywords(t *testing.T) {
	expr, err := Parse("(rust OR python) AND storage")
	require.NoError(t, err)
	kws := Keywords(expr)
	require.ElementsMatch(t, []string{"rust", "python", "storage"}, kws)
}

func TestParseErrorReportsPositionAndToken(t *testing.T) {
	_, err := Parse("rust AND")
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)

	_, err = Parse("(rust OR python AND storage")
	require.Error(t, err)
	require.ErrorAs(t, err, &perr)
}

// TestBooleanQueryScenario follows spec.md §8's distributed boolean query
// scenario: file1..file4 scattered across keywords rust/storage/python/
// distributed.
func TestBooleanQueryScenario(t *testing.T) {
	results := map[string][]string{
		"rust":        {"file1", "file2", "file3"},
		"storage":     {"file2", "file3"},
		"python":      {"file4"},
		"distributed": {"file1", "file3"},
	}

	expr, err := Parse("rust AND storage")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"file2", "file3"}, EvaluateFidSlices(expr, results))

	expr, err = Parse("python OR distributed")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"file1", "file3", "file4"}, EvaluateFidSlices(expr, results))

	expr, err = Parse("(rust AND storage) OR python")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"file2", "file3", "file4"}, EvaluateFidSlices(expr, results))

	expr, err = Parse("NOT rust")
	require.NoError(t, err)
	require.Empty(t, EvaluateFidSlices(expr, results))
}

func TestEvaluateMissingKeywordIsEmptySet(t *testing.T) {
	expr, err := Parse("unknown")
	require.NoError(t, err)
	require.Empty(t, EvaluateFidSlices(expr, map[string][]string{}))
}
