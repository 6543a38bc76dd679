package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// Default values used when a field is omitted.
const (
	DefaultPermanentWeight = 1.0
	DefaultMeasuredWeight  = 5.0
	DefaultUnknownWeight   = 1000.0
	DefaultAgeTolerance    = 50 * time.Millisecond
	DefaultFilterWindow    = 500 * time.Millisecond
	DefaultFilterPolicy    = "constant"
)

// FilterPolicies lists the accepted filter_policy names.
var FilterPolicies = []string{"constant", "linear", "log", "square", "cubic", "oldest", "newest"}

// TuningConfig holds the frame graph tuning parameters. Pointer fields
// distinguish "unset" from zero so partial files fall back to defaults.
type TuningConfig struct {
	// Edge weights, lower is preferred during search.
	PermanentWeight *float64 `json:"permanent_weight,omitempty"`
	MeasuredWeight  *float64 `json:"measured_weight,omitempty"`
	UnknownWeight   *float64 `json:"unknown_weight,omitempty"`

	// Query freshness
	AgeTolerance *string `json:"age_tolerance,omitempty"` // duration string like "50ms"

	// Temporal filter
	FilterWindow *string `json:"filter_window,omitempty"` // duration string like "500ms"
	FilterPolicy *string `json:"filter_policy,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated
// with its default.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		PermanentWeight: ptrFloat64(DefaultPermanentWeight),
		MeasuredWeight:  ptrFloat64(DefaultMeasuredWeight),
		UnknownWeight:   ptrFloat64(DefaultUnknownWeight),
		AgeTolerance:    ptrString(DefaultAgeTolerance.String()),
		FilterWindow:    ptrString(DefaultFilterWindow.String()),
		FilterPolicy:    ptrString(DefaultFilterPolicy),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath,
// searching the current directory and its parents up to the repository root.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	weights := []struct {
		name string
		v    *float64
	}{
		{"permanent_weight", c.PermanentWeight},
		{"measured_weight", c.MeasuredWeight},
		{"unknown_weight", c.UnknownWeight},
	}
	for _, w := range weights {
		if w.v != nil && *w.v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", w.name, *w.v)
		}
	}

	// Unknown must stay the most expensive so resolvable edges are preferred.
	if c.GetUnknownWeight() < c.GetMeasuredWeight() || c.GetUnknownWeight() < c.GetPermanentWeight() {
		return fmt.Errorf("unknown_weight (%f) must not be lower than the measured and permanent weights", c.GetUnknownWeight())
	}

	durations := []struct {
		name string
		v    *string
	}{
		{"age_tolerance", c.AgeTolerance},
		{"filter_window", c.FilterWindow},
	}
	for _, d := range durations {
		if d.v == nil || *d.v == "" {
			continue
		}
		parsed, err := time.ParseDuration(*d.v)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", d.name, *d.v, err)
		}
		if parsed < 0 {
			return fmt.Errorf("%s must be non-negative, got %s", d.name, *d.v)
		}
	}

	if c.FilterPolicy != nil && !slices.Contains(FilterPolicies, *c.FilterPolicy) {
		return fmt.Errorf("unknown filter_policy %q (want one of %v)", *c.FilterPolicy, FilterPolicies)
	}

	return nil
}

// GetPermanentWeight returns the permanent_weight value or the default.
func (c *TuningConfig) GetPermanentWeight() float64 {
	if c.PermanentWeight == nil {
		return DefaultPermanentWeight
	}
	return *c.PermanentWeight
}

// GetMeasuredWeight returns the measured_weight value or the default.
func (c *TuningConfig) GetMeasuredWeight() float64 {
	if c.MeasuredWeight == nil {
		return DefaultMeasuredWeight
	}
	return *c.MeasuredWeight
}

// GetUnknownWeight returns the unknown_weight value or the default.
func (c *TuningConfig) GetUnknownWeight() float64 {
	if c.UnknownWeight == nil {
		return DefaultUnknownWeight
	}
	return *c.UnknownWeight
}

// GetAgeTolerance parses and returns the AgeTolerance as a time.Duration.
func (c *TuningConfig) GetAgeTolerance() time.Duration {
	return parseDurationOr(c.AgeTolerance, DefaultAgeTolerance)
}

// GetFilterWindow parses and returns the FilterWindow as a time.Duration.
func (c *TuningConfig) GetFilterWindow() time.Duration {
	return parseDurationOr(c.FilterWindow, DefaultFilterWindow)
}

// GetFilterPolicy returns the filter_policy value or the default.
func (c *TuningConfig) GetFilterPolicy() string {
	if c.FilterPolicy == nil || *c.FilterPolicy == "" {
		return DefaultFilterPolicy
	}
	return *c.FilterPolicy
}

func parseDurationOr(s *string, def time.Duration) time.Duration {
	if s == nil || *s == "" {
		return def
	}
	d, err := time.ParseDuration(*s)
	if err != nil {
		return def // default on parse error
	}
	return d
}
