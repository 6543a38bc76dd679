// Package framegraph keeps a registry of named coordinate frames and the
// rigid transforms measured between them, and resolves the transform between
// any two frames by searching the graph of known edges.
//
// Frames are addressed by FrameID handles. Each ordered pair of frames owns
// one edge record whose state says where its transform came from:
//
//	Undefined  nothing known
//	Measured   set from a timestamped sample
//	Permanent  set from a time-independent calibration (zero stamp)
//	Identity   declared coincident, both directions, weight 0
//	Derived    composed from a path found by QueryTransform and cached
//
// Setting or resetting any edge clears every Derived edge in the graph.
// Lookups that find no direct edge fall back to a depth-first search that
// prefers lighter edges locally and returns the first path reaching the
// target; it is not a global shortest path.
//
// A Graph is not safe for concurrent use. Callers that share one across
// goroutines serialize access themselves. Queries keep their visited set
// local, so a query never corrupts state seen by another call.
//
// TemporalFilter buffers a stream of samples stamped against the same clock
// as a Graph and reduces the trailing window to one transform.
package framegraph
