package framegraph

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/framegraph/internal/config"
	"github.com/banshee-data/framegraph/internal/monitoring"
	"github.com/banshee-data/framegraph/internal/rigid"
)

// FilterPolicy selects how a TemporalFilter reduces its window.
//
// The weighted policies compute a coefficient from each sample's position
// u in [0,1] between the oldest (0) and newest (1) buffered stamp.
type FilterPolicy int

const (
	FilterConstant FilterPolicy = iota // every sample weighs 1
	FilterLinear                       // u
	FilterLog                          // ln(1 + u(e-1))
	FilterSquare                       // u²
	FilterCubic                        // u³
	FilterOldest                       // oldest sample only
	FilterNewest                       // newest sample only
)

var filterPolicyNames = map[FilterPolicy]string{
	FilterConstant: "constant",
	FilterLinear:   "linear",
	FilterLog:      "log",
	FilterSquare:   "square",
	FilterCubic:    "cubic",
	FilterOldest:   "oldest",
	FilterNewest:   "newest",
}

func (p FilterPolicy) String() string {
	if s, ok := filterPolicyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("FilterPolicy(%d)", int(p))
}

// ParseFilterPolicy maps a config name onto a FilterPolicy.
func ParseFilterPolicy(s string) (FilterPolicy, error) {
	for p, name := range filterPolicyNames {
		if name == s {
			return p, nil
		}
	}
	return FilterConstant, fmt.Errorf("unknown filter policy %q", s)
}

// Nower supplies the current time. *Graph satisfies it, so a filter and the
// graph it feeds share a clock.
type Nower interface {
	Now() time.Time
}

// TemporalFilter keeps the samples of one transform stream that fall inside
// a trailing window and reduces them on demand. It is owned by a single
// caller.
type TemporalFilter struct {
	clock   Nower
	window  time.Duration
	policy  FilterPolicy
	samples []rigid.Transform
	last    time.Time
}

// NewTemporalFilter returns an empty filter over clock.
func NewTemporalFilter(clock Nower, window time.Duration, policy FilterPolicy) *TemporalFilter {
	return &TemporalFilter{clock: clock, window: window, policy: policy}
}

// NewTemporalFilterFromConfig reads the window and policy from cfg.
func NewTemporalFilterFromConfig(clock Nower, cfg *config.TuningConfig) (*TemporalFilter, error) {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	policy, err := ParseFilterPolicy(cfg.GetFilterPolicy())
	if err != nil {
		return nil, fmt.Errorf("temporal filter: %w", err)
	}
	return NewTemporalFilter(clock, cfg.GetFilterWindow(), policy), nil
}

// Window returns the trailing window length.
func (f *TemporalFilter) Window() time.Duration { return f.window }

// Policy returns the reduction policy.
func (f *TemporalFilter) Policy() FilterPolicy { return f.policy }

// Len returns the number of buffered samples, before pruning.
func (f *TemporalFilter) Len() int { return len(f.samples) }

// Push buffers t. A stamp earlier than the previous push means the stream
// lost its ordering, so the buffered history is dropped first.
func (f *TemporalFilter) Push(t rigid.Transform) {
	if len(f.samples) > 0 && t.Stamp.Before(f.last) {
		monitoring.Debugf("[TemporalFilter] stamp %s precedes %s, dropping %d samples",
			t.Stamp.Format(time.RFC3339Nano), f.last.Format(time.RFC3339Nano), len(f.samples))
		f.Clear()
	}
	f.last = t.Stamp
	f.samples = append(f.samples, t)
}

// Get drops samples older than the window and reduces the rest. It returns
// the reduced transform and how many samples contributed; with none left
// the result is identity with no stamp.
func (f *TemporalFilter) Get() (rigid.Transform, int) {
	f.prune()
	return reduce(f.samples, f.policy), len(f.samples)
}

// Clear empties the buffer.
func (f *TemporalFilter) Clear() {
	f.samples = nil
	f.last = time.Time{}
}

func (f *TemporalFilter) prune() {
	cutoff := f.clock.Now().Add(-f.window)
	drop := 0
	for drop < len(f.samples) && f.samples[drop].Stamp.Before(cutoff) {
		drop++
	}
	if drop == len(f.samples) {
		f.samples = nil
		return
	}
	f.samples = f.samples[drop:]
}

func reduce(samples []rigid.Transform, policy FilterPolicy) rigid.Transform {
	n := len(samples)
	switch {
	case n == 0:
		return rigid.Identity()
	case policy == FilterOldest:
		return samples[0]
	case policy == FilterNewest, n == 1:
		return samples[n-1]
	}

	first, newest := samples[0].Stamp, samples[n-1].Stamp
	span := newest.Sub(first)
	ref := samples[n-1].Rotation

	var (
		total    float64
		trans    r3.Vec
		rot      quat.Number
		rms, std float64
	)
	for _, s := range samples {
		c := 1.0
		if policy != FilterConstant && span > 0 {
			c = coefficient(float64(s.Stamp.Sub(first))/float64(span), policy)
		}
		q := s.Rotation
		// q and -q are the same rotation; keep every term in one hemisphere.
		if q.Real*ref.Real+q.Imag*ref.Imag+q.Jmag*ref.Jmag+q.Kmag*ref.Kmag < 0 {
			q = quat.Scale(-1, q)
		}
		trans = r3.Add(trans, r3.Scale(c, s.Translation))
		rot = quat.Add(rot, quat.Scale(c, q))
		total += c
		rms = math.Max(rms, s.RMS)
		std = math.Max(std, s.StdDev)
	}

	out := rigid.New(rot, r3.Scale(1/total, trans))
	out.Stamp = newest
	out.RMS = rms
	out.StdDev = std
	return out
}

func coefficient(u float64, policy FilterPolicy) float64 {
	switch policy {
	case FilterLinear:
		return u
	case FilterLog:
		return math.Log(1 + u*(math.E-1))
	case FilterSquare:
		return u * u
	case FilterCubic:
		return u * u * u
	default:
		return 1
	}
}
