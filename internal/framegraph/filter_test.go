package framegraph

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/framegraph/internal/config"
	"github.com/banshee-data/framegraph/internal/rigid"
	"github.com/banshee-data/framegraph/internal/timeutil"
)

func sampleAt(x float64, offset time.Duration) rigid.Transform {
	return rigid.Translate(x, 0, 0).WithStamp(testEpoch.Add(offset))
}

func TestTemporalFilter_Constant(t *testing.T) {
	clock := timeutil.NewMockClock(testEpoch)
	f := NewTemporalFilter(clock, time.Second, FilterConstant)

	f.Push(sampleAt(1, -300*time.Millisecond))
	f.Push(sampleAt(2, -200*time.Millisecond))
	f.Push(sampleAt(6, -100*time.Millisecond))

	got, n := f.Get()
	require.Equal(t, 3, n)
	assert.InDelta(t, 3.0, got.Translation.X, 1e-12)
	assert.Equal(t, testEpoch.Add(-100*time.Millisecond), got.Stamp)
}

func TestTemporalFilter_WeightedPolicies(t *testing.T) {
	// Samples at u = 0, 0.5, 1 with x = 0, 2, 4.
	tests := []struct {
		policy FilterPolicy
		want   float64
	}{
		{FilterConstant, 2},
		{FilterLinear, (0.5*2 + 1*4) / 1.5},
		{FilterSquare, (0.25*2 + 1*4) / 1.25},
		{FilterCubic, (0.125*2 + 1*4) / 1.125},
		{FilterOldest, 0},
		{FilterNewest, 4},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			f := NewTemporalFilter(timeutil.NewMockClock(testEpoch), time.Second, tt.policy)
			f.Push(sampleAt(0, -200*time.Millisecond))
			f.Push(sampleAt(2, -100*time.Millisecond))
			f.Push(sampleAt(4, 0))

			got, n := f.Get()
			require.Equal(t, 3, n)
			assert.InDelta(t, tt.want, got.Translation.X, 1e-12)
		})
	}

	t.Run("log", func(t *testing.T) {
		f := NewTemporalFilter(timeutil.NewMockClock(testEpoch), time.Second, FilterLog)
		f.Push(sampleAt(0, -200*time.Millisecond))
		f.Push(sampleAt(2, -100*time.Millisecond))
		f.Push(sampleAt(4, 0))

		mid := math.Log(1 + 0.5*(math.E-1))
		got, _ := f.Get()
		assert.InDelta(t, (mid*2+4)/(mid+1), got.Translation.X, 1e-12)
	})
}

func TestTemporalFilter_BackwardsStampClears(t *testing.T) {
	f := NewTemporalFilter(timeutil.NewMockClock(testEpoch), time.Second, FilterConstant)
	f.Push(sampleAt(10, -100*time.Millisecond))
	f.Push(sampleAt(20, -50*time.Millisecond))
	require.Equal(t, 2, f.Len())

	f.Push(sampleAt(1, -400*time.Millisecond))
	assert.Equal(t, 1, f.Len())

	got, n := f.Get()
	require.Equal(t, 1, n)
	assert.InDelta(t, 1.0, got.Translation.X, 1e-12)
}

func TestTemporalFilter_WindowElapses(t *testing.T) {
	clock := timeutil.NewMockClock(testEpoch)
	f := NewTemporalFilter(clock, 500*time.Millisecond, FilterConstant)
	f.Push(sampleAt(1, -400*time.Millisecond))
	f.Push(sampleAt(3, -100*time.Millisecond))

	clock.Advance(200 * time.Millisecond)
	got, n := f.Get()
	require.Equal(t, 1, n, "oldest sample aged out")
	assert.InDelta(t, 3.0, got.Translation.X, 1e-12)

	clock.Advance(time.Second)
	got, n = f.Get()
	assert.Equal(t, 0, n)
	assert.True(t, got.ApproxEqual(rigid.Identity(), 0))
	assert.True(t, got.Stamp.IsZero())
	assert.Equal(t, 0, f.Len())
}

func TestTemporalFilter_RotationMean(t *testing.T) {
	f := NewTemporalFilter(timeutil.NewMockClock(testEpoch), time.Second, FilterConstant)

	a := rotZ(10).WithStamp(testEpoch.Add(-20 * time.Millisecond))
	b := rotZ(30)
	// Same rotation with the opposite quaternion sign.
	b.Rotation = quat.Scale(-1, b.Rotation)
	b = b.WithStamp(testEpoch.Add(-10 * time.Millisecond))

	f.Push(a)
	f.Push(b)
	got, n := f.Get()
	require.Equal(t, 2, n)
	assert.True(t, got.ApproxEqual(rotZ(20), 1e-9), "got %s", got)
	assert.InDelta(t, 1.0, quat.Abs(got.Rotation), 1e-12)
}

func TestTemporalFilter_QualityIsWorst(t *testing.T) {
	f := NewTemporalFilter(timeutil.NewMockClock(testEpoch), time.Second, FilterLinear)
	f.Push(sampleAt(0, -30*time.Millisecond).WithQuality(0.5, 0.01))
	f.Push(sampleAt(0, -20*time.Millisecond).WithQuality(0.1, 0.2))
	f.Push(sampleAt(0, -10*time.Millisecond).WithQuality(0.2, 0.05))

	got, _ := f.Get()
	assert.Equal(t, 0.5, got.RMS)
	assert.Equal(t, 0.2, got.StdDev)
}

func TestTemporalFilter_Clear(t *testing.T) {
	f := NewTemporalFilter(timeutil.NewMockClock(testEpoch), time.Second, FilterNewest)
	f.Push(sampleAt(1, 0))
	f.Clear()
	assert.Equal(t, 0, f.Len())

	// No ordering history after a clear.
	f.Push(sampleAt(2, -time.Millisecond))
	assert.Equal(t, 1, f.Len())
}

func TestTemporalFilter_SharesGraphClock(t *testing.T) {
	g, clock := newTestGraph(t)
	ids := addFrames(g, "tracker", "marker")

	f := NewTemporalFilter(g, 150*time.Millisecond, FilterConstant)
	for i := 0; i < 5; i++ {
		m := rigid.FromAxisAngle(r3.Vec{Z: 1}, 0, r3.Vec{X: float64(i)})
		f.Push(m.WithStamp(clock.Now()))
		clock.Advance(40 * time.Millisecond)
	}

	// Samples stamped at 80, 120 and 160 ms remain at 200 ms.
	smoothed, n := f.Get()
	require.Equal(t, 3, n)
	require.True(t, g.SetEdge(ids[0], ids[1], smoothed))
	assert.Equal(t, StateMeasured, g.EdgeState(ids[0], ids[1]))

	d, ok := g.Distance(ids[0], ids[1])
	require.True(t, ok)
	assert.InDelta(t, 3.0, d, 1e-12)
}

func TestNewTemporalFilterFromConfig(t *testing.T) {
	clock := timeutil.NewMockClock(testEpoch)

	f, err := NewTemporalFilterFromConfig(clock, nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultFilterWindow, f.Window())
	assert.Equal(t, FilterConstant, f.Policy())

	window, policy := "250ms", "cubic"
	f, err = NewTemporalFilterFromConfig(clock, &config.TuningConfig{FilterWindow: &window, FilterPolicy: &policy})
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, f.Window())
	assert.Equal(t, FilterCubic, f.Policy())

	bad := "median"
	_, err = NewTemporalFilterFromConfig(clock, &config.TuningConfig{FilterPolicy: &bad})
	assert.Error(t, err)
}

func TestParseFilterPolicy(t *testing.T) {
	for _, name := range config.FilterPolicies {
		p, err := ParseFilterPolicy(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, p.String())
	}

	_, err := ParseFilterPolicy("")
	assert.Error(t, err)
	assert.Equal(t, "FilterPolicy(99)", FilterPolicy(99).String())
}
