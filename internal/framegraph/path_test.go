package framegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/framegraph/internal/rigid"
)

func TestPath_PushPop(t *testing.T) {
	g, _ := newTestGraph(t)
	ids := addFrames(g, "a", "b", "c")
	require.True(t, g.SetEdgeAt(ids[0], ids[1], rigid.Identity(), testEpoch))
	require.True(t, g.SetEdge(ids[2], ids[1], rigid.Identity()))

	p := NewPath(g)
	assert.Equal(t, "empty path", p.String())
	assert.Equal(t, NoFrame, p.At(0))

	assert.Equal(t, 1, p.Push(ids[0]))
	assert.Equal(t, 0.0, p.Weight())
	assert.Equal(t, 2, p.Push(ids[1]))
	assert.Equal(t, 3, p.Push(ids[2]))

	assert.Equal(t, []float64{5, 1}, p.Weights(), "b -> c falls back to the c -> b weight")
	assert.Equal(t, 6.0, p.Weight())
	assert.Equal(t, "1 -> (5) -> 2 -> (1) -> 3 [weight 6]", p.String())
	assert.Equal(t, ids[2], p.At(2))
	assert.Equal(t, NoFrame, p.At(3))

	require.True(t, p.Pop())
	assert.Equal(t, 5.0, p.Weight())
	require.True(t, p.Pop())
	assert.Equal(t, 0.0, p.Weight())
	assert.Equal(t, 1, p.Len())
	require.True(t, p.Pop())
	assert.False(t, p.Pop())
	assert.Empty(t, p.Weights())
}

func TestPath_UnknownHop(t *testing.T) {
	g, _ := newTestGraph(t)
	ids := addFrames(g, "a", "b")

	p := NewPath(g)
	p.Push(ids[0])
	p.Push(ids[1])
	assert.Equal(t, DefaultWeights.Unknown, p.Weight())
}

func TestPath_CopiesAreIndependent(t *testing.T) {
	g, _ := newTestGraph(t)
	ids := addFrames(g, "a", "b")

	p := NewPath(g)
	p.Push(ids[0])
	p.Push(ids[1])

	frames := p.Frames()
	frames[0] = NoFrame
	assert.Equal(t, ids[0], p.At(0))

	weights := p.Weights()
	weights[0] = -1
	assert.Equal(t, DefaultWeights.Unknown, p.Weights()[0])
}

func TestFindPath_Invalid(t *testing.T) {
	g, _ := newTestGraph(t)
	ids := addFrames(g, "a", "b")

	_, ok := g.FindPath(ids[0], ids[0])
	assert.False(t, ok)
	_, ok = g.FindPath(ids[0], NoFrame)
	assert.False(t, ok)
	_, ok = g.FindPath(ids[0], ids[1])
	assert.False(t, ok)
}

func TestFindPath_FillsReverseEdgesOnly(t *testing.T) {
	g, _ := newTestGraph(t)
	ids := addFrames(g, "a", "b", "c")
	require.True(t, g.SetEdge(ids[0], ids[1], rotZ(10)))
	require.True(t, g.SetEdge(ids[2], ids[1], rotZ(20)))
	require.Equal(t, StateUndefined, g.EdgeState(ids[1], ids[2]))

	p, ok := g.FindPath(ids[0], ids[2])
	require.True(t, ok)
	assert.Equal(t, 3, p.Len())

	assert.Equal(t, g.EdgeState(ids[2], ids[1]), g.EdgeState(ids[1], ids[2]))
	assert.Equal(t, StateUndefined, g.EdgeState(ids[0], ids[2]), "composed result is not cached")
}
