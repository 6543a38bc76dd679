package rigid

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/num/quat"
)

func TestValidate_ValidIdentity(t *testing.T) {
	result := Identity().WithQuality(0.03, 0).Validate()

	if !result.Valid {
		t.Error("expected valid transform")
	}
	if result.Quality != QualityExcellent {
		t.Errorf("expected excellent quality, got %s", result.Quality)
	}
}

func TestValidate_QualityLevels(t *testing.T) {
	tests := []struct {
		rms      float64
		expected Quality
	}{
		{0.02, QualityExcellent},
		{0.05, QualityGood}, // At threshold, should be Good
		{0.10, QualityGood},
		{0.15, QualityFair}, // At threshold, should be Fair
		{0.25, QualityFair},
		{0.35, QualityPoor},
		{0.00, QualityUnknown},
	}

	for _, tt := range tests {
		result := Identity().WithQuality(tt.rms, 0).Validate()
		if result.Quality != tt.expected {
			t.Errorf("RMS %.2f: expected quality %s, got %s", tt.rms, tt.expected, result.Quality)
		}
	}
}

func TestValidate_NonUnitRotation(t *testing.T) {
	tr := Identity()
	tr.Rotation = quat.Number{Real: 2}

	result := tr.Validate()
	if result.Valid {
		t.Error("expected invalid for non-unit rotation")
	}
	if result.Quality != QualityPoor {
		t.Errorf("expected poor quality, got %s", result.Quality)
	}
}

func TestValidate_NaN(t *testing.T) {
	tr := Translate(math.NaN(), 0, 0)
	if tr.Validate().Valid {
		t.Error("expected invalid for NaN translation")
	}
}

func TestIsUsableForTracking(t *testing.T) {
	if !IsUsableForTracking(Identity().WithQuality(0.2, 0).Validate()) {
		t.Error("fair quality should be usable for tracking")
	}
	if IsUsableForTracking(Identity().WithQuality(0.5, 0).Validate()) {
		t.Error("poor quality should not be usable for tracking")
	}
	if !IsUsableForTracking(Identity().Validate()) {
		t.Error("unknown quality should be usable for tracking")
	}
}

func TestQuality_String(t *testing.T) {
	if QualityGood.String() != "good (RMS 0.05-0.15)" {
		t.Errorf("unexpected string %q", QualityGood.String())
	}
	if Quality("custom").String() != "custom" {
		t.Error("unknown quality should render verbatim")
	}
}
