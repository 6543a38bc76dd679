package framegraph

import (
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/framegraph/internal/config"
	"github.com/banshee-data/framegraph/internal/monitoring"
	"github.com/banshee-data/framegraph/internal/rigid"
	"github.com/banshee-data/framegraph/internal/timeutil"
)

// Weights assigns search costs to edges by state. Identity edges always
// weigh 0. Unknown is reported for pairs with no edge in either direction.
type Weights struct {
	Permanent float64
	Measured  float64
	Unknown   float64
}

// DefaultWeights prefers permanent calibrations over live measurements.
var DefaultWeights = Weights{
	Permanent: config.DefaultPermanentWeight,
	Measured:  config.DefaultMeasuredWeight,
	Unknown:   config.DefaultUnknownWeight,
}

type edge struct {
	T      rigid.Transform
	state  EdgeState
	weight float64
}

// Graph is the frame registry. The zero value is not usable; call New.
type Graph struct {
	id           uuid.UUID
	name         string
	clock        timeutil.Clock
	weights      Weights
	ageTolerance time.Duration

	frames   []frame
	edges    []edge
	released []uint32 // LIFO
}

// Option configures a Graph.
type Option func(*Graph)

// WithClock sets the clock used to stamp identity results, judge freshness
// and drive temporal filters. Defaults to timeutil.RealClock.
func WithClock(c timeutil.Clock) Option {
	return func(g *Graph) {
		if c != nil {
			g.clock = c
		}
	}
}

// WithWeights overrides the per-state search weights.
func WithWeights(w Weights) Option {
	return func(g *Graph) { g.weights = w }
}

// WithConfig applies weights and the age tolerance from a tuning config.
func WithConfig(cfg *config.TuningConfig) Option {
	return func(g *Graph) {
		if cfg == nil {
			return
		}
		g.weights = Weights{
			Permanent: cfg.GetPermanentWeight(),
			Measured:  cfg.GetMeasuredWeight(),
			Unknown:   cfg.GetUnknownWeight(),
		}
		g.ageTolerance = cfg.GetAgeTolerance()
	}
}

// New returns an empty graph.
func New(name string, opts ...Option) *Graph {
	g := &Graph{
		id:           uuid.New(),
		name:         name,
		clock:        timeutil.RealClock{},
		weights:      DefaultWeights,
		ageTolerance: config.DefaultAgeTolerance,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ID identifies this graph instance in logs and exports.
func (g *Graph) ID() uuid.UUID { return g.id }

// Name returns the graph's display name.
func (g *Graph) Name() string { return g.name }

// Now reads the graph clock.
func (g *Graph) Now() time.Time { return g.clock.Now() }

// AgeTolerance is the freshness window used by exports to flag stale edges.
func (g *Graph) AgeTolerance() time.Duration { return g.ageTolerance }

// NumFrames returns the number of frame slots, released ones included.
func (g *Graph) NumFrames() int { return len(g.frames) }

// AddFrame registers a frame and returns its handle. The most recently
// released slot is reused first; otherwise storage grows by one shell.
func (g *Graph) AddFrame(name string) FrameID {
	if n := len(g.released); n > 0 {
		index := g.released[n-1]
		g.released = g.released[:n-1]
		f := &g.frames[index-1]
		f.name = name
		f.active = true
		return FrameID{Index: index, Gen: f.gen}
	}

	g.frames = append(g.frames, frame{name: name, active: true})
	n := len(g.frames)
	for len(g.edges) < n*n {
		g.edges = append(g.edges, g.undefinedEdge())
	}
	return FrameID{Index: uint32(n)}
}

// ReleaseFrame clears every edge touching id, deactivates it and queues its
// slot for reuse. It fails for an invalid or already released handle.
func (g *Graph) ReleaseFrame(id FrameID) bool {
	if !g.valid(id) {
		return false
	}
	g.clearIncident(int(id.Index))
	f := &g.frames[id.Index-1]
	f.active = false
	f.gen++
	g.released = append(g.released, id.Index)
	monitoring.Debugf("[FrameGraph] graph=%s released frame %s (%q)", g.name, id, f.name)
	return true
}

// IsActive reports whether id addresses a live frame.
func (g *Graph) IsActive(id FrameID) bool { return g.valid(id) }

// FrameName returns the name of a live frame.
func (g *Graph) FrameName(id FrameID) (string, bool) {
	if !g.valid(id) {
		return "", false
	}
	return g.frames[id.Index-1].name, true
}

// SetFrameName renames a live frame.
func (g *Graph) SetFrameName(id FrameID, name string) bool {
	if !g.valid(id) {
		return false
	}
	g.frames[id.Index-1].name = name
	return true
}

// LookupFrame returns the first live frame with the given name.
func (g *Graph) LookupFrame(name string) (FrameID, bool) {
	for i, f := range g.frames {
		if f.active && f.name == name {
			return FrameID{Index: uint32(i + 1), Gen: f.gen}, true
		}
	}
	return NoFrame, false
}

// ActiveFrames lists the live frames in slot order.
func (g *Graph) ActiveFrames() []FrameID {
	out := make([]FrameID, 0, len(g.frames))
	for i, f := range g.frames {
		if f.active {
			out = append(out, FrameID{Index: uint32(i + 1), Gen: f.gen})
		}
	}
	return out
}

// EdgeState returns the state of the edge from -> to. Invalid handles read
// as StateUndefined.
func (g *Graph) EdgeState(from, to FrameID) EdgeState {
	if !g.valid(from) || !g.valid(to) || from.Index == to.Index {
		return StateUndefined
	}
	return g.cell(int(from.Index), int(to.Index)).state
}

// Weight returns the search weight between two frames, falling back to the
// reverse edge and then to the unknown weight.
func (g *Graph) Weight(from, to FrameID) (float64, bool) {
	if !g.valid(from) || !g.valid(to) {
		return g.weights.Unknown, false
	}
	return g.weight(int(from.Index), int(to.Index)), true
}

// SetEdge records t as the transform from -> to, classified by t.Stamp.
func (g *Graph) SetEdge(from, to FrameID, t rigid.Transform) bool {
	return g.SetEdgeAt(from, to, t, t.Stamp)
}

// SetEdgeAt records t as the transform from -> to, stamped with stamp. A
// zero stamp marks a permanent calibration, anything else a measurement.
// The reverse edge is cleared, since a new measurement says nothing about
// the cached inverse, and every Derived edge in the graph is invalidated.
func (g *Graph) SetEdgeAt(from, to FrameID, t rigid.Transform, stamp time.Time) bool {
	if !g.validPair(from, to) {
		return false
	}
	i, j := int(from.Index), int(to.Index)

	*g.cell(j, i) = g.undefinedEdge()

	e := g.cell(i, j)
	e.T = t.WithStamp(stamp)
	if stamp.IsZero() {
		e.state = StatePermanent
		e.weight = g.weights.Permanent
	} else {
		e.state = StateMeasured
		e.weight = g.weights.Measured
	}

	g.invalidateDerived()
	return true
}

// SetIdentity declares from and to coincident in both directions.
func (g *Graph) SetIdentity(from, to FrameID, stamp time.Time) bool {
	if !g.validPair(from, to) {
		return false
	}
	i, j := int(from.Index), int(to.Index)

	id := rigid.Identity().WithStamp(stamp)
	*g.cell(i, j) = edge{T: id, state: StateIdentity}
	*g.cell(j, i) = edge{T: id, state: StateIdentity}

	g.invalidateDerived()
	return true
}

// ResetEdge clears both directions between from and to.
func (g *Graph) ResetEdge(from, to FrameID) bool {
	if !g.validPair(from, to) {
		return false
	}
	i, j := int(from.Index), int(to.Index)
	*g.cell(i, j) = g.undefinedEdge()
	*g.cell(j, i) = g.undefinedEdge()

	g.invalidateDerived()
	return true
}

// ResetFrame clears every edge touching id.
func (g *Graph) ResetFrame(id FrameID) bool {
	if !g.valid(id) {
		return false
	}
	g.clearIncident(int(id.Index))
	return true
}

func (g *Graph) clearIncident(index int) {
	for k := 1; k <= len(g.frames); k++ {
		if k == index {
			continue
		}
		*g.cell(index, k) = g.undefinedEdge()
		*g.cell(k, index) = g.undefinedEdge()
	}
	g.invalidateDerived()
}

// invalidateDerived clears every Derived edge. Dependency tracking would
// allow a narrower sweep; the full sweep is the documented behaviour.
func (g *Graph) invalidateDerived() {
	cleared := 0
	for x := range g.edges {
		if g.edges[x].state == StateDerived {
			g.edges[x] = g.undefinedEdge()
			cleared++
		}
	}
	if cleared > 0 {
		monitoring.Debugf("[FrameGraph] graph=%s invalidated %d derived edges", g.name, cleared)
	}
}

func (g *Graph) undefinedEdge() edge {
	return edge{T: rigid.Identity(), state: StateUndefined, weight: g.weights.Unknown}
}

func (g *Graph) valid(id FrameID) bool {
	if id.Index < 1 || int(id.Index) > len(g.frames) {
		return false
	}
	f := g.frames[id.Index-1]
	return f.active && f.gen == id.Gen
}

func (g *Graph) validPair(from, to FrameID) bool {
	return g.valid(from) && g.valid(to) && from.Index != to.Index
}

func (g *Graph) handle(index int) FrameID {
	return FrameID{Index: uint32(index), Gen: g.frames[index-1].gen}
}

func (g *Graph) cell(from, to int) *edge {
	return &g.edges[cellIndex(from, to)]
}

// weight of the hop from -> to: the edge itself, else its reverse, else
// the unknown weight.
func (g *Graph) weight(from, to int) float64 {
	if e := g.cell(from, to); e.state != StateUndefined {
		return e.weight
	}
	if e := g.cell(to, from); e.state != StateUndefined {
		return e.weight
	}
	return g.weights.Unknown
}
