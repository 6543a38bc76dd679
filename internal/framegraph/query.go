package framegraph

import (
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/framegraph/internal/monitoring"
	"github.com/banshee-data/framegraph/internal/rigid"
	"github.com/banshee-data/framegraph/internal/timeutil"
)

// notFound is returned by failed queries: identity with no stamp.
func notFound() rigid.Transform {
	return rigid.Identity()
}

// QueryTransform returns the transform mapping coordinates in from into to.
//
// A frame resolves to itself as identity stamped with the graph clock. An
// existing edge (measured, permanent, identity or derived) is returned as
// is; when only the reverse edge exists its inverse is cached and returned.
// Otherwise the graph is searched, and the path found is composed and
// cached as a Derived edge whose weight is the sum of the hop weights and
// whose RMS and StdDev are the worst along the path.
func (g *Graph) QueryTransform(from, to FrameID) (rigid.Transform, bool) {
	if !g.valid(from) || !g.valid(to) {
		return notFound(), false
	}
	if from.Index == to.Index {
		return rigid.Identity().WithStamp(g.Now()), true
	}

	i, j := int(from.Index), int(to.Index)
	if g.resolve(i, j) {
		return g.cell(i, j).T, true
	}

	path, ok := g.findPath(i, j)
	if !ok {
		monitoring.Debugf("[FrameGraph] graph=%s no path %s -> %s", g.name, from, to)
		return notFound(), false
	}
	if monitoring.DebugEnabled() {
		monitoring.Debugf("[FrameGraph] graph=%s path %s", g.name, path)
	}
	return g.cacheDerived(path), true
}

// cacheDerived composes the hops of path and stores the result on the edge
// from its first to its last frame.
func (g *Graph) cacheDerived(path *Path) rigid.Transform {
	n := path.Len()
	first, last := int(path.At(0).Index), int(path.At(n-1).Index)
	if n < 3 {
		return g.cell(first, last).T
	}

	t := g.cell(first, int(path.At(1).Index)).T
	for k := 1; k < n-1; k++ {
		t = t.Then(g.cell(int(path.At(k).Index), int(path.At(k+1).Index)).T)
	}

	*g.cell(first, last) = edge{T: t, state: StateDerived, weight: path.Weight()}
	return t
}

// QueryTransformAt is QueryTransform restricted to results stamped within
// tolerance of at. A permanent result has no stamp to compare and is
// rejected. A rejected result is still returned so callers can report its
// stamp.
func (g *Graph) QueryTransformAt(from, to FrameID, at time.Time, tolerance time.Duration) (rigid.Transform, bool) {
	t, ok := g.QueryTransform(from, to)
	if !ok || t.IsPermanent() {
		return t, false
	}
	return t, timeutil.Within(t.Stamp, at, tolerance)
}

// QueryTransformFresh is QueryTransform restricted to results no older than
// maxAge against the graph clock. Permanent results never age. A negative
// maxAge accepts any result.
func (g *Graph) QueryTransformFresh(from, to FrameID, maxAge time.Duration) (rigid.Transform, bool) {
	t, ok := g.QueryTransform(from, to)
	if !ok || maxAge < 0 || t.IsPermanent() {
		return t, ok
	}
	return t, timeutil.Within(t.Stamp, g.Now(), maxAge)
}

// Distance returns the length of the translation between two frames.
func (g *Graph) Distance(from, to FrameID) (float64, bool) {
	t, ok := g.QueryTransform(from, to)
	if !ok {
		return 0, false
	}
	return t.Distance(), true
}

// TransformPoint expresses p, given in from, in the coordinates of to.
func (g *Graph) TransformPoint(from, to FrameID, p r3.Vec) (r3.Vec, bool) {
	t, ok := g.QueryTransform(from, to)
	if !ok {
		return r3.Vec{}, false
	}
	return t.Apply(p), true
}

// OriginInFrame returns the origin of from expressed in to.
func (g *Graph) OriginInFrame(from, to FrameID) (r3.Vec, bool) {
	return g.TransformPoint(from, to, r3.Vec{})
}
