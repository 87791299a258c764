package flamegraph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flamefold/internal/symbols"
)

func TestBuildMergesSharedPrefixes(t *testing.T) {
	root, total, err := Build(strings.NewReader("a;b;c 1\na;b 1\n"), BuildOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)
	assert.Equal(t, uint64(2), root.Samples)

	a := root.Children["a"]
	require.NotNil(t, a)
	assert.Equal(t, uint64(2), a.Samples)

	b := a.Children["b"]
	require.NotNil(t, b)
	assert.Equal(t, uint64(2), b.Samples)

	c := b.Children["c"]
	require.NotNil(t, c)
	assert.Equal(t, uint64(1), c.Samples)
}

func TestBuildSkipsMalformedLines(t *testing.T) {
	var skipped []string
	root, total, err := Build(strings.NewReader("a;b 1\nnot-a-valid-line\na;c 1\n"), BuildOptions{}, func(line, reason string) {
		skipped = append(skipped, line)
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)
	assert.Equal(t, []string{"not-a-valid-line"}, skipped)
	assert.Equal(t, uint64(2), root.Samples)
}

func TestBuildDiffTracksBothCounts(t *testing.T) {
	root, totalA, totalB, err := BuildDiff(strings.NewReader("a;b 10\n"), strings.NewReader("a;b 20\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), totalA)
	assert.Equal(t, uint64(20), totalB)

	b := root.Children["a"].Children["b"]
	require.NotNil(t, b)
	assert.Equal(t, uint64(10), b.Samples)
	assert.Equal(t, uint64(20), b.SamplesB)
	assert.Equal(t, int64(10), b.Delta())
}

func TestBuildAutoDetectsSingleStreamDiffLines(t *testing.T) {
	root, totalA, totalB, isDiff, err := BuildAuto(strings.NewReader("a;b 10 20\n"), BuildOptions{}, nil)
	require.NoError(t, err)
	assert.True(t, isDiff)
	assert.Equal(t, uint64(10), totalA)
	assert.Equal(t, uint64(20), totalB)

	b := root.Children["a"].Children["b"]
	require.NotNil(t, b)
	assert.Equal(t, uint64(10), b.Samples)
	assert.Equal(t, uint64(20), b.SamplesB)
}

func TestBuildAutoLeavesPlainLinesNonDiff(t *testing.T) {
	root, totalA, totalB, isDiff, err := BuildAuto(strings.NewReader("a;b 10\n"), BuildOptions{}, nil)
	require.NoError(t, err)
	assert.False(t, isDiff)
	assert.Equal(t, uint64(10), totalA)
	assert.Equal(t, uint64(0), totalB)
	assert.Equal(t, uint64(10), root.Children["a"].Children["b"].Samples)
}

func TestFixupIdempotence(t *testing.T) {
	cases := []string{
		"std::vector<int, std::allocator<int> >::push_back(int&&)",
		"foo<bar()>",
		"foo<bar(",
		"(anonymous namespace)::f()",
	}
	for _, c := range cases {
		once := symbols.Fix(c)
		twice := symbols.Fix(once)
		assert.Equal(t, once, twice, "fix_names should be idempotent on %q", c)
	}
}
