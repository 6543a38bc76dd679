package rigid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// MatrixValidationTolerance bounds how far a rotation block may stray from
// orthonormal with determinant 1.
const MatrixValidationTolerance = 0.01

// IsValidTransformMatrix reports whether a row-major 4x4 matrix is rigid:
// the 3x3 block R satisfies RᵀR = I and det R = 1 within
// MatrixValidationTolerance, and the last row is [0 0 0 1].
func IsValidTransformMatrix(T [16]float64) bool {
	if T[12] != 0 || T[13] != 0 || T[14] != 0 || math.Abs(T[15]-1) > 0.001 {
		return false
	}

	cols := [3]r3.Vec{
		{X: T[0], Y: T[4], Z: T[8]},
		{X: T[1], Y: T[5], Z: T[9]},
		{X: T[2], Y: T[6], Z: T[10]},
	}
	for i := range cols {
		for j := i; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if math.Abs(r3.Dot(cols[i], cols[j])-want) > MatrixValidationTolerance {
				return false
			}
		}
	}

	// Orthonormal columns leave det = ±1; reject reflections.
	det := r3.Dot(cols[0], r3.Cross(cols[1], cols[2]))
	return math.Abs(det-1) <= MatrixValidationTolerance
}

// FromMatrix converts a row-major homogeneous matrix into a Transform.
func FromMatrix(T [16]float64) (Transform, error) {
	if !IsValidTransformMatrix(T) {
		return Identity(), fmt.Errorf("matrix is not a rigid transform")
	}

	m00, m01, m02 := T[0], T[1], T[2]
	m10, m11, m12 := T[4], T[5], T[6]
	m20, m21, m22 := T[8], T[9], T[10]

	// Shepperd's method: branch on the largest diagonal term for stability.
	var q quat.Number
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 2 * math.Sqrt(trace+1)
		q = quat.Number{Real: s / 4, Imag: (m21 - m12) / s, Jmag: (m02 - m20) / s, Kmag: (m10 - m01) / s}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = quat.Number{Real: (m21 - m12) / s, Imag: s / 4, Jmag: (m01 + m10) / s, Kmag: (m02 + m20) / s}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = quat.Number{Real: (m02 - m20) / s, Imag: (m01 + m10) / s, Jmag: s / 4, Kmag: (m12 + m21) / s}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = quat.Number{Real: (m10 - m01) / s, Imag: (m02 + m20) / s, Jmag: (m12 + m21) / s, Kmag: s / 4}
	}

	return Transform{
		Rotation:    normalize(q),
		Translation: r3.Vec{X: T[3], Y: T[7], Z: T[11]},
	}, nil
}

// Matrix returns t as a row-major 4x4 homogeneous matrix, the layout used by
// ApplyMatrix.
func (t Transform) Matrix() [16]float64 {
	q := t.Rotation
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return [16]float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y), t.Translation.X,
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x), t.Translation.Y,
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y), t.Translation.Z,
		0, 0, 0, 1,
	}
}

// ApplyMatrix applies a 4x4 row-major transform T to point p.
func ApplyMatrix(p r3.Vec, T [16]float64) r3.Vec {
	return r3.Vec{
		X: T[0]*p.X + T[1]*p.Y + T[2]*p.Z + T[3],
		Y: T[4]*p.X + T[5]*p.Y + T[6]*p.Z + T[7],
		Z: T[8]*p.X + T[9]*p.Y + T[10]*p.Z + T[11],
	}
}
