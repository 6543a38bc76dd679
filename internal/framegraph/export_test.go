package framegraph

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/framegraph/internal/rigid"
)

func TestGraph_StringDump(t *testing.T) {
	g, _ := newTestGraph(t)
	ids := addFrames(g, "a", "b", "c", "d")

	require.True(t, g.SetEdgeAt(ids[0], ids[1], rigid.Translate(1, 0, 0), testEpoch))
	require.True(t, g.SetEdge(ids[1], ids[2], rigid.Translate(0, 1, 0)))
	require.True(t, g.SetIdentity(ids[2], ids[3], testEpoch))
	_, ok := g.QueryTransform(ids[0], ids[3])
	require.True(t, ok)

	out := g.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], `"test"`)
	assert.Contains(t, lines[0], "frames=4")

	assert.Equal(t, " 1  .  O  ?  = ", lines[2])
	assert.Equal(t, " 2  ?  .  C  ? ", lines[3])
	assert.Equal(t, " 3  ?  ?  .  1 ", lines[4])

	require.True(t, g.ReleaseFrame(ids[1]))
	out = g.String()
	assert.Contains(t, out, "X2X")
	body := strings.SplitN(out, "\n", 2)[1]
	assert.NotContains(t, body, "=", "release invalidates derived edges")
}

func TestGraph_StringDump_WideIndices(t *testing.T) {
	g, _ := newTestGraph(t)
	ids := make([]FrameID, 12)
	for i := range ids {
		ids[i] = g.AddFrame(fmt.Sprintf("f%d", i+1))
	}
	require.True(t, g.SetEdge(ids[9], ids[10], rigid.Translate(1, 0, 0)))
	require.True(t, g.ReleaseFrame(ids[2]))

	lines := strings.Split(strings.TrimRight(g.String(), "\n"), "\n")
	require.Len(t, lines, 14)
	for _, line := range lines[1:] {
		assert.Len(t, line, 13*4, "line %q", line)
	}
	assert.True(t, strings.HasPrefix(lines[1], "      1   2 X 3X  4 "), lines[1])
	assert.True(t, strings.HasPrefix(lines[11], " 10   ?   ?   ?"), lines[11])
	assert.Equal(t, "C", strings.Fields(lines[11])[11])
	assert.True(t, strings.HasPrefix(lines[12], " 11 "), lines[12])
}

func TestGraph_MarshalDOT(t *testing.T) {
	g, clock := newTestGraph(t)
	ids := addFrames(g, "world", "camera", "marker", "spare")

	require.True(t, g.SetEdge(ids[0], ids[1], rigid.Translate(0, 0, 2)))
	require.True(t, g.SetEdgeAt(ids[1], ids[2], rigid.Translate(1, 0, 0), testEpoch))
	require.True(t, g.ReleaseFrame(ids[3]))
	clock.Advance(time.Second)

	b, err := g.MarshalDOT()
	require.NoError(t, err)
	out := string(b)

	assert.True(t, strings.HasPrefix(out, "digraph"), out)
	assert.Contains(t, out, "f1")
	assert.Contains(t, out, "f4")
	assert.Contains(t, out, "f1 -> f2")
	assert.Contains(t, out, "f2 -> f3")
	assert.NotContains(t, out, "f2 -> f1")
	assert.Contains(t, out, "1: world")
	assert.Contains(t, out, "Permanent Weight=1")
	assert.Contains(t, out, "Measured Weight=5")
	assert.Contains(t, out, "yellow", "stale measurement")
	assert.Contains(t, out, "red", "released frame")
	assert.Contains(t, out, "green")
}

func TestGraph_MarshalDOT_FreshEdgeIsBlack(t *testing.T) {
	g, _ := newTestGraph(t)
	ids := addFrames(g, "a", "b")
	require.True(t, g.SetEdgeAt(ids[0], ids[1], rigid.Identity(), testEpoch))

	b, err := g.MarshalDOT()
	require.NoError(t, err)
	assert.NotContains(t, string(b), "yellow")
	assert.Contains(t, string(b), "black")
}

func TestGraph_MarshalDOT_UnnamedUsesID(t *testing.T) {
	g := New("")
	g.AddFrame("only")

	b, err := g.MarshalDOT()
	require.NoError(t, err)
	assert.Contains(t, string(b), g.ID().String())
}
