package framegraph

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/banshee-data/framegraph/internal/timeutil"
)

// String dumps the edge states as a matrix, one row per source frame and
// one column per target frame. Released frames are shown as X<n>X.
//
//	?  undefined   O  measured   C  permanent
//	1  identity    =  derived    .  diagonal
func (g *Graph) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "FrameGraph %q (%s) frames=%d\n", g.name, g.id, len(g.frames))

	width := len(strconv.Itoa(len(g.frames)))
	label := func(i int) string {
		if g.frames[i-1].active {
			return fmt.Sprintf(" %*d ", width, i)
		}
		return fmt.Sprintf("X%*dX", width, i)
	}

	b.WriteString(strings.Repeat(" ", width+2))
	for j := 1; j <= len(g.frames); j++ {
		b.WriteString(label(j))
	}
	b.WriteByte('\n')
	for i := 1; i <= len(g.frames); i++ {
		b.WriteString(label(i))
		for j := 1; j <= len(g.frames); j++ {
			symbol := "."
			if i != j {
				symbol = g.cell(i, j).state.symbol()
			}
			fmt.Fprintf(&b, " %*s ", width, symbol)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

type attrs []encoding.Attribute

func (a attrs) Attributes() []encoding.Attribute { return a }

type dotNode struct {
	index  int64
	name   string
	active bool
}

func (n dotNode) ID() int64 { return n.index }

func (n dotNode) DOTID() string { return fmt.Sprintf("f%d", n.index) }

func (n dotNode) Attributes() []encoding.Attribute {
	fill := "green"
	if !n.active {
		fill = "red"
	}
	return []encoding.Attribute{
		{Key: "label", Value: fmt.Sprintf("%d: %s", n.index, n.name)},
		{Key: "style", Value: "filled"},
		{Key: "fillcolor", Value: fill},
	}
}

type dotEdge struct {
	from, to dotNode
	label    string
	color    string
}

func (e dotEdge) From() graph.Node { return e.from }
func (e dotEdge) To() graph.Node   { return e.to }

func (e dotEdge) ReversedEdge() graph.Edge {
	e.from, e.to = e.to, e.from
	return e
}

func (e dotEdge) Attributes() []encoding.Attribute {
	return []encoding.Attribute{
		{Key: "label", Value: e.label},
		{Key: "color", Value: e.color},
	}
}

type dotGraph struct {
	*simple.DirectedGraph
	graphAttrs, nodeAttrs, edgeAttrs attrs
}

func (g dotGraph) DOTAttributers() (graph, node, edge encoding.Attributer) {
	return g.graphAttrs, g.nodeAttrs, g.edgeAttrs
}

// MarshalDOT renders the graph in Graphviz format. Live frames are green
// and released ones red. Each known edge is labelled with its state, weight
// and transform; edges stamped outside the age tolerance of the graph clock
// are drawn yellow, the rest black.
func (g *Graph) MarshalDOT() ([]byte, error) {
	now := g.Now()
	dg := dotGraph{
		DirectedGraph: simple.NewDirectedGraph(),
		graphAttrs: attrs{
			{Key: "labelloc", Value: "t"},
			{Key: "label", Value: fmt.Sprintf("%s at %s", g.name, now.Format("2006-01-02 15:04:05.000"))},
		},
		nodeAttrs: attrs{
			{Key: "shape", Value: "circle"},
			{Key: "fontname", Value: "Arial"},
		},
		edgeAttrs: attrs{},
	}

	nodes := make([]dotNode, len(g.frames))
	for i, f := range g.frames {
		nodes[i] = dotNode{index: int64(i + 1), name: f.name, active: f.active}
		dg.AddNode(nodes[i])
	}

	for i := 1; i <= len(g.frames); i++ {
		if !g.frames[i-1].active {
			continue
		}
		for j := 1; j <= len(g.frames); j++ {
			if i == j || !g.frames[j-1].active {
				continue
			}
			e := g.cell(i, j)
			if e.state == StateUndefined {
				continue
			}
			color := "black"
			if !e.T.IsPermanent() && !timeutil.Within(e.T.Stamp, now, g.ageTolerance) {
				color = "yellow"
			}
			dg.SetEdge(dotEdge{
				from:  nodes[i-1],
				to:    nodes[j-1],
				label: fmt.Sprintf("%s Weight=%g %s", e.state, e.weight, e.T),
				color: color,
			})
		}
	}

	name := g.name
	if name == "" {
		name = g.id.String()
	}
	return dot.Marshal(dg, name, "", "  ")
}
