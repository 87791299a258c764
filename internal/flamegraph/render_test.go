package flamegraph

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmptyInputProducesErrorSVG(t *testing.T) {
	var out bytes.Buffer
	empty, _, err := Render(strings.NewReader(""), &out, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, empty)
	assert.Contains(t, out.String(), "ERROR: No stack counts found")
}

func TestRenderContainsFrameContract(t *testing.T) {
	var out bytes.Buffer
	empty, total, err := Render(strings.NewReader("a;b 10\na;c 5\n"), &out, DefaultOptions())
	require.NoError(t, err)
	assert.False(t, empty)
	assert.Equal(t, uint64(15), total)

	svg := out.String()
	assert.Contains(t, svg, `<g id="frames">`)
	assert.Contains(t, svg, `class="func_g"`)
	assert.Contains(t, svg, `id="details"`)
	assert.Contains(t, svg, `id="search"`)
	assert.Contains(t, svg, `id="unzoom"`)
	assert.Contains(t, svg, `id="matched"`)
	assert.Contains(t, svg, "var nametype")
	assert.Contains(t, svg, "var searchcolor")
	assert.Contains(t, svg, "var inverted")
}

func TestRenderEscapesFrameText(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Render(strings.NewReader("a<b>&\"c 1\n"), &out, DefaultOptions())
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "<b>&\"c</title>")
	assert.Contains(t, out.String(), "&lt;b&gt;&amp;&quot;c")
}

func TestRenderDiffColorsByDelta(t *testing.T) {
	var out bytes.Buffer
	empty, totalA, totalB, err := RenderDiff(strings.NewReader("a;b 10\n"), strings.NewReader("a;b 20\n"), &out, DefaultOptions())
	require.NoError(t, err)
	assert.False(t, empty)
	assert.Equal(t, uint64(10), totalA)
	assert.Equal(t, uint64(20), totalB)
	assert.Contains(t, out.String(), "a;b (20 samples, +100.00%)")
}

// diff-folded writes "stack countA countB" on one line; Render must treat
// that the same as two separate RenderDiff streams.
func TestRenderDetectsDiffFoldedSingleStream(t *testing.T) {
	var out bytes.Buffer
	empty, total, err := Render(strings.NewReader("a;b 10 20\n"), &out, DefaultOptions())
	require.NoError(t, err)
	assert.False(t, empty)
	assert.Equal(t, uint64(20), total)
	assert.Contains(t, out.String(), "a;b (20 samples, +100.00%)")
}

func TestRenderDiffFoldedZeroAfterFallsBackToBeforeShape(t *testing.T) {
	var out bytes.Buffer
	empty, total, err := Render(strings.NewReader("a;b 10 0\n"), &out, DefaultOptions())
	require.NoError(t, err)
	assert.False(t, empty)
	assert.Equal(t, uint64(10), total)
	assert.Contains(t, out.String(), `<g id="frames">`)
}
