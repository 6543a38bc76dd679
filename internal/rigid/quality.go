package rigid

import "math"

// Quality represents the assessed quality of a registered transform.
type Quality string

const (
	// QualityExcellent indicates RMS < 0.05 - excellent registration
	QualityExcellent Quality = "excellent"
	// QualityGood indicates RMS 0.05-0.15 - good for tracking
	QualityGood Quality = "good"
	// QualityFair indicates RMS 0.15-0.30 - usable but consider recalibration
	QualityFair Quality = "fair"
	// QualityPoor indicates RMS > 0.30 - requires recalibration
	QualityPoor Quality = "poor"
	// QualityUnknown indicates RMS not computed
	QualityUnknown Quality = "unknown"
)

// RMS thresholds, in the unit of the translation.
const (
	RMSThresholdExcellent = 0.05
	RMSThresholdGood      = 0.15
	RMSThresholdFair      = 0.30
)

// ValidationResult contains the result of transform validation.
type ValidationResult struct {
	Valid   bool
	Quality Quality
	Issues  []string
}

// Grade maps an RMS value to a Quality.
func Grade(rms float64) Quality {
	switch {
	case rms == 0:
		return QualityUnknown
	case rms < RMSThresholdExcellent:
		return QualityExcellent
	case rms < RMSThresholdGood:
		return QualityGood
	case rms < RMSThresholdFair:
		return QualityFair
	default:
		return QualityPoor
	}
}

// Quality grades t by its RMS.
func (t Transform) Quality() Quality {
	return Grade(t.RMS)
}

// Validate checks that t is a proper rigid transform and assesses its
// quality. Derived transforms carry the worst RMS along their path, so a
// single poor hop grades the whole chain poor.
func (t Transform) Validate() ValidationResult {
	result := ValidationResult{
		Quality: QualityUnknown,
		Issues:  make([]string, 0),
	}

	if !finite(t) {
		result.Issues = append(result.Issues, "transform has non-finite components")
		result.Quality = QualityPoor
		return result
	}
	if n := math.Sqrt(dot(t.Rotation, t.Rotation)); math.Abs(n-1) > MatrixValidationTolerance {
		result.Issues = append(result.Issues, "rotation quaternion is not unit length")
		result.Quality = QualityPoor
		return result
	}

	result.Quality = t.Quality()
	switch result.Quality {
	case QualityUnknown:
		result.Issues = append(result.Issues, "RMS not computed - quality unknown")
	case QualityFair:
		result.Issues = append(result.Issues, "quality is fair - consider recalibration")
	case QualityPoor:
		result.Issues = append(result.Issues, "quality is poor - recalibration required")
	}

	result.Valid = result.Quality != QualityPoor
	return result
}

// IsUsableForTracking returns true if the quality is sufficient for tracking.
// Unknown is allowed with caution.
func IsUsableForTracking(result ValidationResult) bool {
	return result.Valid && result.Quality != QualityPoor
}

// String returns a human-readable description of the quality.
func (q Quality) String() string {
	switch q {
	case QualityExcellent:
		return "excellent (RMS < 0.05)"
	case QualityGood:
		return "good (RMS 0.05-0.15)"
	case QualityFair:
		return "fair (RMS 0.15-0.30)"
	case QualityPoor:
		return "poor (RMS > 0.30)"
	case QualityUnknown:
		return "unknown (RMS not computed)"
	default:
		return string(q)
	}
}

func finite(t Transform) bool {
	for _, v := range []float64{
		t.Rotation.Real, t.Rotation.Imag, t.Rotation.Jmag, t.Rotation.Kmag,
		t.Translation.X, t.Translation.Y, t.Translation.Z,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
