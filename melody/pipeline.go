package melody

import "fmt"

// Run converts a polyphonic event list into a monophonic table:
// Extract, then Quantize and Reduce unless cfg.MonophonicOnly is set.
// Warnings from every stage are collected on the returned Melody.
//
// An empty event list yields an empty melody, not an error.
func Run(events []RawEvent, tempo Tempo, cfg Config) (*Melody, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	extraction, err := Extract(events)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	m := &Melody{}
	m.Warnings = append(m.Warnings, extraction.Warnings...)

	if cfg.MonophonicOnly {
		segs, ws := Clamp(extraction.Segments)
		m.Segments = segs
		m.Warnings = append(m.Warnings, ws...)
		return m, nil
	}

	unit, err := DeriveUnit(extraction.Segments, tempo, cfg.Denom)
	if err != nil {
		return nil, fmt.Errorf("quantize: %w", err)
	}

	reduction, err := Reduce(Quantize(extraction.Segments, unit), extraction.Segments, unit, cfg)
	if err != nil {
		return nil, fmt.Errorf("reduce: %w", err)
	}

	m.Segments = reduction.Segments
	m.Unit = reduction.Unit
	m.Warnings = append(m.Warnings, reduction.Warnings...)
	return m, nil
}

// Simplify runs the Reducer on an already extracted or already reduced
// table, deriving the grid unit from the median duration.
func Simplify(segs []Segment, cfg Config) (*Melody, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	unit, err := DeriveUnit(segs, 0, cfg.Denom)
	if err != nil {
		return nil, fmt.Errorf("quantize: %w", err)
	}

	reduction, err := Reduce(Quantize(segs, unit), segs, unit, cfg)
	if err != nil {
		return nil, fmt.Errorf("reduce: %w", err)
	}

	return &Melody{
		Segments: reduction.Segments,
		Unit:     reduction.Unit,
		Warnings: reduction.Warnings,
	}, nil
}
