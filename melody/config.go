package melody

import "fmt"

// Default pipeline options.
const (
	DefaultDenom         = 8
	DefaultMinMs         = 80
	DefaultMaxNotes      = 400
	DefaultMaxCoarsening = 6
)

// Config holds the options of a single pipeline run.
// It is passed by value into every stage; there is no package-level default
// that stages read behind the caller's back.
type Config struct {
	// Quantization denominator: the grid unit is roughly 1/Denom of a beat
	// (or of the median segment duration when no tempo is known).
	Denom int `yaml:"denom"`

	// Segments shorter than this are absorbed into a neighbour.
	MinMs int `yaml:"min_ms"`

	// Upper bound on the number of output segments.
	MaxNotes int `yaml:"max_notes"`

	// Skip the Quantizer and Reducer and emit the extracted timeline as is.
	MonophonicOnly bool `yaml:"monophonic_only"`

	// How many times the grid unit may be doubled while trying to fit MaxNotes.
	MaxCoarsening int `yaml:"max_coarsening"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Denom:         DefaultDenom,
		MinMs:         DefaultMinMs,
		MaxNotes:      DefaultMaxNotes,
		MaxCoarsening: DefaultMaxCoarsening,
	}
}

// Validate checks that every option is usable.
func (c Config) Validate() error {
	if c.Denom <= 0 {
		return fmt.Errorf("denom must be positive, got %d", c.Denom)
	}
	if c.MinMs < 0 || c.MinMs > MaxDuration {
		return fmt.Errorf("min_ms must be 0-%d, got %d", MaxDuration, c.MinMs)
	}
	if c.MaxNotes < 1 {
		return fmt.Errorf("max_notes must be at least 1, got %d", c.MaxNotes)
	}
	if c.MaxCoarsening < 0 || c.MaxCoarsening > 16 {
		return fmt.Errorf("max_coarsening must be 0-16, got %d", c.MaxCoarsening)
	}
	return nil
}
