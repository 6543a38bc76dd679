package main

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/framegraph/internal/config"
	"github.com/banshee-data/framegraph/internal/framegraph"
	"github.com/banshee-data/framegraph/internal/rigid"
	"github.com/banshee-data/framegraph/internal/security"
	"github.com/banshee-data/framegraph/internal/timeutil"
)

// markerBurst is the number of synthetic tracker samples fed to the filter.
const markerBurst = 8

// markerPeriod is the tracker sample period.
const markerPeriod = 20 * time.Millisecond

// toolTip is the marker -> tool calibration: the tip sits 15cm along the
// marker's z axis, flipped about x.
var toolTip = [16]float64{
	1, 0, 0, 0,
	0, -1, 0, 0,
	0, 0, -1, 0.15,
	0, 0, 0, 1,
}

type rig struct {
	g      *framegraph.Graph
	filter *framegraph.TemporalFilter

	world, tracker, marker, tool, camera framegraph.FrameID
}

func buildRig(cfg *config.TuningConfig, clock timeutil.Clock) (*rig, error) {
	g := framegraph.New("bench", framegraph.WithClock(clock), framegraph.WithConfig(cfg))
	filter, err := framegraph.NewTemporalFilterFromConfig(g, cfg)
	if err != nil {
		return nil, err
	}

	r := &rig{
		g:       g,
		filter:  filter,
		world:   g.AddFrame("world"),
		tracker: g.AddFrame("tracker"),
		marker:  g.AddFrame("marker"),
		tool:    g.AddFrame("tool"),
		camera:  g.AddFrame("camera"),
	}

	trackerMount := rigid.FromAxisAngle(r3.Vec{Z: 1}, math.Pi/2, r3.Vec{X: 0.4, Y: 0, Z: 1.8})
	if !g.SetEdge(r.tracker, r.world, trackerMount) {
		return nil, fmt.Errorf("register tracker mount")
	}

	tip, err := rigid.FromMatrix(toolTip)
	if err != nil {
		return nil, fmt.Errorf("tool calibration: %w", err)
	}
	if !g.SetEdge(r.tool, r.marker, tip) {
		return nil, fmt.Errorf("register tool calibration")
	}

	cameraMount := rigid.FromAxisAngle(r3.Vec{X: 1}, -math.Pi/6, r3.Vec{X: -1.2, Y: 0.3, Z: 1.5})
	if !g.SetEdge(r.world, r.camera, cameraMount) {
		return nil, fmt.Errorf("register camera mount")
	}

	if err := r.trackMarker(); err != nil {
		return nil, err
	}
	return r, nil
}

// trackMarker feeds a burst of jittered marker poses through the temporal
// filter and registers the smoothed pose as a measurement.
func (r *rig) trackMarker() error {
	now := r.g.Now()
	for i := 0; i < markerBurst; i++ {
		jitter := 0.002 * math.Sin(float64(i))
		sample := rigid.FromAxisAngle(r3.Vec{Y: 1}, 0.25+jitter, r3.Vec{X: 0.1 + jitter, Y: -0.05, Z: 1.1}).
			WithStamp(now.Add(-time.Duration(markerBurst-1-i) * markerPeriod)).
			WithQuality(0.02+math.Abs(jitter), 0.004)
		r.filter.Push(sample)
	}

	smoothed, n := r.filter.Get()
	if n == 0 {
		return fmt.Errorf("no marker samples inside the %s filter window", r.filter.Window())
	}
	res := smoothed.Validate()
	if !rigid.IsUsableForTracking(res) {
		return fmt.Errorf("marker pose unusable: %v", res.Issues)
	}
	log.Printf("[rigctl] marker smoothed from %d samples (%s), quality %s", n, r.filter.Policy(), res.Quality)

	if !r.g.SetEdge(r.marker, r.tracker, smoothed) {
		return fmt.Errorf("register marker pose")
	}
	return nil
}

func (r *rig) report(w io.Writer, opts reportOptions) error {
	from, ok := r.g.LookupFrame(opts.from)
	if !ok {
		return fmt.Errorf("unknown frame %q", opts.from)
	}
	to, ok := r.g.LookupFrame(opts.to)
	if !ok {
		return fmt.Errorf("unknown frame %q", opts.to)
	}

	if path, ok := r.g.FindPath(from, to); ok {
		fmt.Fprintf(w, "path:     %s\n", path)
	}
	t, ok := r.g.QueryTransformFresh(from, to, r.g.AgeTolerance())
	if !ok {
		if t.Stamp.IsZero() {
			return fmt.Errorf("no transform from %s to %s", opts.from, opts.to)
		}
		log.Printf("[rigctl] %s -> %s is older than %s", opts.from, opts.to, r.g.AgeTolerance())
	}

	origin := t.Apply(r3.Vec{})
	fmt.Fprintf(w, "%s -> %s: %s\n", opts.from, opts.to, t)
	fmt.Fprintf(w, "origin:   (%.4f %.4f %.4f)\n", origin.X, origin.Y, origin.Z)
	fmt.Fprintf(w, "distance: %.4f\n", t.Distance())
	fmt.Fprintf(w, "quality:  %s\n", t.Quality())

	if opts.dump {
		fmt.Fprint(w, r.g)
	}
	if !opts.dot && opts.dotOut == "" {
		return nil
	}
	b, err := r.g.MarshalDOT()
	if err != nil {
		return fmt.Errorf("dot export: %w", err)
	}
	if opts.dot {
		fmt.Fprintf(w, "%s\n", b)
	}
	if opts.dotOut != "" {
		return writeDOT(opts.dotOut, r.g.Name(), b)
	}
	return nil
}

func writeDOT(target, name string, b []byte) error {
	path, err := security.ExportFile(target, name, ".dot")
	if err != nil {
		return fmt.Errorf("dot export: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("dot export: %w", err)
	}
	log.Printf("[rigctl] wrote %s (%d bytes)", path, len(b))
	return nil
}
