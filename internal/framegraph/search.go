package framegraph

import (
	"cmp"
	"slices"
)

// visitSet marks frame pairs already tried during one search. It is indexed
// like the edge storage and always marks both directions of a pair.
type visitSet []bool

func (v visitSet) mark(a, b int) {
	v[cellIndex(a, b)] = true
	v[cellIndex(b, a)] = true
}

func (v visitSet) seen(a, b int) bool {
	return v[cellIndex(a, b)] || v[cellIndex(b, a)]
}

type candidate struct {
	index  int
	weight float64
}

// resolve reports whether the edge from -> to is usable as is. When only
// the reverse is known its inverse is cached in place, carrying the
// reverse edge's state and weight.
func (g *Graph) resolve(from, to int) bool {
	e := g.cell(from, to)
	if e.state != StateUndefined {
		return true
	}
	rev := g.cell(to, from)
	if rev.state == StateUndefined {
		return false
	}
	*e = edge{T: rev.T.Inverse(), state: rev.state, weight: rev.weight}
	return true
}

// neighbours lists the active frames reachable in one hop from at through
// pairs not yet visited, marking each pair visited as it is listed. The
// list is ordered by weight only when weights differ; otherwise slot order
// is kept.
func (g *Graph) neighbours(at int, visited visitSet) []candidate {
	var out []candidate
	mixed := false
	for k := 1; k <= len(g.frames); k++ {
		if k == at || !g.frames[k-1].active || visited.seen(at, k) {
			continue
		}
		if !g.resolve(at, k) {
			continue
		}
		visited.mark(at, k)
		c := candidate{index: k, weight: g.weight(at, k)}
		if len(out) > 0 && c.weight != out[0].weight {
			mixed = true
		}
		out = append(out, c)
	}
	if mixed {
		slices.SortStableFunc(out, func(a, b candidate) int {
			return cmp.Compare(a.weight, b.weight)
		})
	}
	return out
}

// findPath walks the graph depth first from `from`, descending into the
// lightest unvisited neighbour first, and returns the first path that
// reaches `to`. The walk keeps an explicit stack instead of recursing.
func (g *Graph) findPath(from, to int) (*Path, bool) {
	visited := make(visitSet, len(g.edges))

	type level struct {
		next  int
		cands []candidate
	}

	first := g.neighbours(from, visited)
	if len(first) == 0 {
		return nil, false
	}
	path := NewPath(g)
	path.Push(g.handle(from))
	stack := []level{{cands: first}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.cands) {
			stack = stack[:len(stack)-1]
			path.Pop()
			continue
		}
		c := top.cands[top.next].index
		top.next++

		if c == to {
			path.Push(g.handle(to))
			return path, true
		}
		cands := g.neighbours(c, visited)
		if len(cands) == 0 {
			continue
		}
		path.Push(g.handle(c))
		stack = append(stack, level{cands: cands})
	}
	return nil, false
}

// FindPath runs the search QueryTransform falls back to when no edge is
// known. It is meant for diagnostics. The composed from -> to result is not
// cached, but every reverse edge the search walks is filled in with its
// inverse, as QueryTransform would do, so EdgeState reports those pairs as
// defined afterwards.
func (g *Graph) FindPath(from, to FrameID) (*Path, bool) {
	if !g.validPair(from, to) {
		return nil, false
	}
	return g.findPath(int(from.Index), int(to.Index))
}
