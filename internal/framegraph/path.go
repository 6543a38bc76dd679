package framegraph

import (
	"fmt"
	"strings"
)

// Path is an ordered walk through a graph with the weight of each hop and
// their running sum. It borrows the graph it was built from and must not
// outlive it.
type Path struct {
	g       *Graph
	frames  []FrameID
	weights []float64
	total   float64
}

// NewPath returns an empty path over g.
func NewPath(g *Graph) *Path {
	return &Path{g: g}
}

// Push appends a frame. From the second frame on, the hop weight is looked
// up in the graph and added to the total.
func (p *Path) Push(id FrameID) int {
	p.frames = append(p.frames, id)
	if n := len(p.frames); n > 1 {
		w := p.g.weight(int(p.frames[n-2].Index), int(id.Index))
		p.weights = append(p.weights, w)
		p.total += w
	}
	return len(p.frames)
}

// Pop drops the last frame and its hop weight.
func (p *Path) Pop() bool {
	if len(p.frames) == 0 {
		return false
	}
	p.frames = p.frames[:len(p.frames)-1]
	if n := len(p.weights); n > 0 {
		p.total -= p.weights[n-1]
		p.weights = p.weights[:n-1]
	}
	return true
}

// Len returns the number of frames on the path.
func (p *Path) Len() int { return len(p.frames) }

// At returns the i-th frame, or NoFrame when i is out of range.
func (p *Path) At(i int) FrameID {
	if i < 0 || i >= len(p.frames) {
		return NoFrame
	}
	return p.frames[i]
}

// Frames returns a copy of the frames on the path.
func (p *Path) Frames() []FrameID {
	return append([]FrameID(nil), p.frames...)
}

// Weights returns a copy of the per-hop weights.
func (p *Path) Weights() []float64 {
	return append([]float64(nil), p.weights...)
}

// Weight is the sum of the hop weights.
func (p *Path) Weight() float64 { return p.total }

// String renders the path as "1 -> (5) -> 2 -> (1) -> 3 [weight 6]".
func (p *Path) String() string {
	if len(p.frames) == 0 {
		return "empty path"
	}
	var b strings.Builder
	b.WriteString(p.frames[0].String())
	for i := 1; i < len(p.frames); i++ {
		fmt.Fprintf(&b, " -> (%g) -> %s", p.weights[i-1], p.frames[i])
	}
	fmt.Fprintf(&b, " [weight %g]", p.total)
	return b.String()
}
