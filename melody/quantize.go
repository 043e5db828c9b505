package melody

import (
	"fmt"
	"slices"
)

// Tempo is an optional tempo hint in microseconds per beat (quarter note),
// as declared by MIDI tempo meta events. Zero means no tempo is known.
type Tempo int64

// DefaultTempo is the MIDI default of 120 BPM.
const DefaultTempo Tempo = 500000

// BPM returns the tempo in beats per minute, or 0 if unknown.
func (t Tempo) BPM() float64 {
	if t <= 0 {
		return 0
	}
	return 60000000 / float64(t)
}

// roundDiv divides a by b rounding half up. a must be >= 0 and b > 0.
func roundDiv(a, b int64) int64 {
	return (2*a + b) / (2 * b)
}

// MedianDuration returns the median of all positive segment durations, using
// the upper median for an even count. It returns 0 if there are none.
func MedianDuration(segs []Segment) int {
	durs := make([]int, 0, len(segs))
	for _, s := range segs {
		if s.Duration > 0 {
			durs = append(durs, s.Duration)
		}
	}
	if len(durs) == 0 {
		return 0
	}
	slices.Sort(durs)
	return durs[len(durs)/2]
}

// DeriveUnit computes the quantization unit in milliseconds. With a tempo
// hint the unit is 1/denom of a beat, otherwise 1/denom of the median segment
// duration. The result is never below 1.
func DeriveUnit(segs []Segment, tempo Tempo, denom int) (int, error) {
	if denom <= 0 {
		return 0, fmt.Errorf("quantization denominator must be positive, got %d", denom)
	}

	var unit int64
	if tempo > 0 {
		unit = roundDiv(int64(tempo), 1000*int64(denom))
	} else {
		unit = roundDiv(int64(MedianDuration(segs)), int64(denom))
	}
	return int(max(unit, 1)), nil
}

// Quantize snaps every duration to the nearest multiple of unit. A duration
// that would round to zero becomes one unit, so no zero-length segment
// leaves this stage. The input is not modified.
func Quantize(segs []Segment, unit int) []Segment {
	u := int64(max(unit, 1))
	out := make([]Segment, len(segs))
	for i, s := range segs {
		d := int64(max(s.Duration, 0))
		q := roundDiv(d, u) * u
		if q == 0 {
			q = u
		}
		out[i] = Segment{Freq: s.Freq, Duration: int(q)}
	}
	return out
}
