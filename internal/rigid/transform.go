// Package rigid provides the rigid transform record exchanged by the frame
// graph: a rotation and translation plus the timestamp and registration
// quality (RMS, standard deviation) of the sample that produced it.
package rigid

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Transform maps coordinates expressed in a source frame into a target
// frame. Rotation is kept as a unit quaternion.
//
// A zero Stamp marks a time-independent sample (a permanent calibration).
type Transform struct {
	Rotation    quat.Number
	Translation r3.Vec
	Stamp       time.Time
	RMS         float64
	StdDev      float64
}

// Identity returns the identity transform with zero quality and no stamp.
func Identity() Transform {
	return Transform{Rotation: quat.Number{Real: 1}}
}

// New builds a transform from a rotation and translation. The rotation is
// normalized; a zero quaternion is treated as identity.
func New(rotation quat.Number, translation r3.Vec) Transform {
	return Transform{Rotation: normalize(rotation), Translation: translation}
}

// FromAxisAngle builds a transform rotating by angle radians about axis,
// followed by translation.
func FromAxisAngle(axis r3.Vec, angle float64, translation r3.Vec) Transform {
	n := r3.Norm(axis)
	if n == 0 || angle == 0 {
		return Transform{Rotation: quat.Number{Real: 1}, Translation: translation}
	}
	u := r3.Scale(1/n, axis)
	s := math.Sin(angle / 2)
	return Transform{
		Rotation:    quat.Number{Real: math.Cos(angle / 2), Imag: u.X * s, Jmag: u.Y * s, Kmag: u.Z * s},
		Translation: translation,
	}
}

// Translate returns a pure translation.
func Translate(x, y, z float64) Transform {
	return Transform{Rotation: quat.Number{Real: 1}, Translation: r3.Vec{X: x, Y: y, Z: z}}
}

// WithStamp returns a copy of t carrying stamp.
func (t Transform) WithStamp(stamp time.Time) Transform {
	t.Stamp = stamp
	return t
}

// WithQuality returns a copy of t carrying the given registration quality.
func (t Transform) WithQuality(rms, stdDev float64) Transform {
	t.RMS = rms
	t.StdDev = stdDev
	return t
}

// IsPermanent reports whether t is a time-independent sample.
func (t Transform) IsPermanent() bool {
	return t.Stamp.IsZero()
}

// Apply maps p from the source frame into the target frame.
func (t Transform) Apply(p r3.Vec) r3.Vec {
	return r3.Add(rotate(t.Rotation, p), t.Translation)
}

// Then composes t (A->B) with next (B->C) and returns A->C. The result keeps
// the older of the two stamps, ignoring permanent ones, and the worse of
// each quality figure.
func (t Transform) Then(next Transform) Transform {
	return Transform{
		Rotation:    normalize(quat.Mul(next.Rotation, t.Rotation)),
		Translation: r3.Add(rotate(next.Rotation, t.Translation), next.Translation),
		Stamp:       OlderStamp(t.Stamp, next.Stamp),
		RMS:         math.Max(t.RMS, next.RMS),
		StdDev:      math.Max(t.StdDev, next.StdDev),
	}
}

// Inverse returns the transform mapping the target frame back into the
// source frame. Stamp and quality are carried over unchanged.
func (t Transform) Inverse() Transform {
	inv := quat.Conj(t.Rotation)
	return Transform{
		Rotation:    inv,
		Translation: r3.Scale(-1, rotate(inv, t.Translation)),
		Stamp:       t.Stamp,
		RMS:         t.RMS,
		StdDev:      t.StdDev,
	}
}

// Distance is the magnitude of the translation part.
func (t Transform) Distance() float64 {
	return r3.Norm(t.Translation)
}

// ApproxEqual compares the poses of t and o, ignoring stamp and quality.
// q and -q describe the same rotation.
func (t Transform) ApproxEqual(o Transform, tol float64) bool {
	if r3.Norm(r3.Sub(t.Translation, o.Translation)) > tol {
		return false
	}
	d := math.Abs(dot(t.Rotation, o.Rotation))
	return 1-d <= tol
}

// String renders the pose compactly for logs and diagnostics.
func (t Transform) String() string {
	stamp := "permanent"
	if !t.IsPermanent() {
		stamp = t.Stamp.Format(time.RFC3339Nano)
	}
	q := t.Rotation
	return fmt.Sprintf("t=(%.4f %.4f %.4f) q=(%.4f %.4f %.4f %.4f) %s rms=%.4g sd=%.4g",
		t.Translation.X, t.Translation.Y, t.Translation.Z,
		q.Real, q.Imag, q.Jmag, q.Kmag, stamp, t.RMS, t.StdDev)
}

// OlderStamp returns the earlier of a and b. A zero stamp is time-independent
// and never ages a result, so it only wins when both are zero.
func OlderStamp(a, b time.Time) time.Time {
	switch {
	case a.IsZero():
		return b
	case b.IsZero():
		return a
	case b.Before(a):
		return b
	default:
		return a
	}
}

func rotate(q quat.Number, p r3.Vec) r3.Vec {
	v := quat.Number{Imag: p.X, Jmag: p.Y, Kmag: p.Z}
	r := quat.Mul(quat.Mul(q, v), quat.Conj(q))
	return r3.Vec{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

func normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/n, q)
}

func dot(a, b quat.Number) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}
