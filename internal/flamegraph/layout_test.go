package flamegraph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutWidthMonotonicity(t *testing.T) {
	root, total, err := Build(strings.NewReader("a;b;c 1\na;b 1\na;d 2\n"), BuildOptions{}, nil)
	require.NoError(t, err)

	opts := DefaultOptions()
	frames := Layout(root, total, opts)
	require.NotEmpty(t, frames)

	byName := map[string]Frame{}
	for _, f := range frames {
		byName[f.Node.Name] = f
	}

	a := byName["a"]
	b := byName["b"]
	d := byName["d"]
	// a's width must be at least the sum of its direct children's widths.
	assert.GreaterOrEqual(t, a.Width+0.001, b.Width+d.Width)
}

func TestLayoutAlphabeticalByDefault(t *testing.T) {
	root, total, err := Build(strings.NewReader("a;zebra 1\na;apple 1\n"), BuildOptions{}, nil)
	require.NoError(t, err)

	frames := Layout(root, total, DefaultOptions())
	var order []string
	for _, f := range frames {
		if f.Depth == 1 {
			order = append(order, f.Node.Name)
		}
	}
	assert.Equal(t, []string{"apple", "zebra"}, order)
}

func TestLayoutFlameChartPreservesFirstSeenOrder(t *testing.T) {
	root, total, err := Build(strings.NewReader("a;zebra 1\na;apple 1\n"), BuildOptions{}, nil)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.FlameChart = true
	frames := Layout(root, total, opts)
	var order []string
	for _, f := range frames {
		if f.Depth == 1 {
			order = append(order, f.Node.Name)
		}
	}
	assert.Equal(t, []string{"zebra", "apple"}, order)
}
