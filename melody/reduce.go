package melody

import (
	"fmt"
	"slices"
)

// Reduction is the output of Reduce.
type Reduction struct {
	Segments []Segment

	// Unit is the grid unit the result was produced with. It equals the unit
	// passed to Reduce unless the grid had to be coarsened.
	Unit int

	// Number of times the unit was doubled to fit the budget.
	Coarsenings int

	Warnings []Warning
}

// Merge joins adjacent segments that share a frequency by summing their
// durations. The input is not modified.
func Merge(segs []Segment) []Segment {
	out := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if n := len(out); n > 0 && out[n-1].Freq == s.Freq {
			out[n-1].Duration += s.Duration
			continue
		}
		out = append(out, s)
	}
	return out
}

// dropEmpty removes segments that have no duration.
func dropEmpty(segs []Segment) []Segment {
	out := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if s.Duration > 0 {
			out = append(out, s)
		}
	}
	return out
}

// absorbPass folds every segment shorter than minMs into the segment before
// it; the previous segment keeps its frequency. Short segments at the start
// have no predecessor and are folded into the segment after them instead.
// It reports whether anything was absorbed.
func absorbPass(segs []Segment, minMs int) ([]Segment, bool) {
	out := make([]Segment, 0, len(segs))
	carry := 0
	changed := false

	for i, s := range segs {
		if len(out) == 0 {
			s.Duration += carry
			carry = 0
			if s.Duration < minMs && i < len(segs)-1 {
				carry = s.Duration
				changed = true
				continue
			}
			out = append(out, s)
			continue
		}

		if s.Duration < minMs {
			out[len(out)-1].Duration += s.Duration
			changed = true
			continue
		}
		out = append(out, s)
	}

	return out, changed
}

// Absorb merges equal neighbours and absorbs segments shorter than minMs,
// repeating until nothing changes or a single segment is left.
func Absorb(segs []Segment, minMs int) []Segment {
	out := Merge(segs)
	for len(out) > 1 {
		var changed bool
		out, changed = absorbPass(out, minMs)
		out = Merge(out)
		if !changed {
			break
		}
	}
	return out
}

// Clamp limits every duration to MaxDuration. The excess is dropped and each
// clamped segment is reported as a DurationOverflow warning.
func Clamp(segs []Segment) ([]Segment, []Warning) {
	var ws warnings
	out := make([]Segment, len(segs))
	for i, s := range segs {
		if s.Duration > MaxDuration {
			ws.add(DurationOverflow, i, "duration %d ms clamped to %d ms", s.Duration, MaxDuration)
			s.Duration = MaxDuration
		}
		out[i] = s
	}
	return out, ws
}

// reduceOnce runs the reduction passes for a single grid.
func reduceOnce(segs []Segment, minMs int) ([]Segment, []Warning) {
	return Clamp(Absorb(dropEmpty(segs), minMs))
}

// coarsen places source onto a grid of unit milliseconds by snapping the
// boundary between every two segments to the nearest grid point. A segment
// whose start and end snap to the same point disappears; every other one keeps
// its snapped length, so the total stays within half a unit of the source.
// If everything disappears the last frequency is kept for a single unit.
func coarsen(source []Segment, unit int) []Segment {
	u := int64(max(unit, 1))
	out := make([]Segment, 0, len(source))

	var end, snappedStart int64
	for _, s := range source {
		end += int64(max(s.Duration, 0))
		snappedEnd := roundDiv(end, u) * u
		if snappedEnd > snappedStart {
			out = append(out, Segment{Freq: s.Freq, Duration: int(snappedEnd - snappedStart)})
			snappedStart = snappedEnd
		}
	}

	if len(out) == 0 && end > 0 {
		out = append(out, Segment{Freq: source[len(source)-1].Freq, Duration: int(u)})
	}
	return out
}

// Reduce turns a quantized sequence into one that fits the table:
// no equal neighbours, no segment shorter than cfg.MinMs (unless only one is
// left), no duration above MaxDuration and at most cfg.MaxNotes entries.
//
// When the reduced sequence is still too long, source (the sequence before
// quantization) is placed again on a grid with the unit doubled, up to
// cfg.MaxCoarsening times. On these coarser grids segment boundaries are
// snapped to the grid, so notes shorter than the grid drop out one by one
// while the rest keep their place in time. If source is nil the quantized
// input is used in its place. If unit is not positive it is derived from the
// median of source.
// When even the coarsest grid does not fit, the last attempt is truncated to
// cfg.MaxNotes entries and a BudgetUnreachable warning is returned.
//
// A sequence that already satisfies all of the above is returned unchanged.
func Reduce(quantized, source []Segment, unit int, cfg Config) (*Reduction, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if source == nil {
		source = quantized
	}

	segs, ws := reduceOnce(quantized, cfg.MinMs)
	if len(segs) <= cfg.MaxNotes {
		return &Reduction{Segments: segs, Unit: unit, Warnings: ws}, nil
	}

	if unit <= 0 {
		var err error
		unit, err = DeriveUnit(source, 0, cfg.Denom)
		if err != nil {
			return nil, err
		}
	}

	result := &Reduction{Unit: unit}
	for k := 1; k <= cfg.MaxCoarsening; k++ {
		result.Unit = unit << k
		result.Coarsenings = k
		segs, ws = reduceOnce(coarsen(source, result.Unit), cfg.MinMs)
		if len(segs) <= cfg.MaxNotes {
			result.Segments = segs
			result.Warnings = ws
			return result, nil
		}
	}

	dropped := len(segs) - cfg.MaxNotes
	lost := TotalDuration(segs[cfg.MaxNotes:])
	result.Segments = segs[:cfg.MaxNotes:cfg.MaxNotes]
	ws = slices.DeleteFunc(ws, func(w Warning) bool { return w.Index >= cfg.MaxNotes })
	result.Warnings = append(ws, Warning{
		Kind:  BudgetUnreachable,
		Index: cfg.MaxNotes,
		Message: fmt.Sprintf("%d segments still exceed the budget of %d at a %d ms grid, dropped the last %d (%d ms)",
			len(segs), cfg.MaxNotes, result.Unit, dropped, lost),
	})
	return result, nil
}
