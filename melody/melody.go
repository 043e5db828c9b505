package melody

import (
	"fmt"
	"math"
	"strings"
)

// MaxDuration is the largest duration (in milliseconds) a table entry can hold.
const MaxDuration = math.MaxUint16

// MaxPitch is the highest valid MIDI note number.
const MaxPitch = 127

// MaxVelocity is the highest valid MIDI velocity.
const MaxVelocity = 127

type EventKind int

const (
	NoteOn  EventKind = iota // A note starts sounding.
	NoteOff                  // A note stops sounding.
)

func (k EventKind) String() string {
	switch k {
	case NoteOn:
		return "NoteOn"
	case NoteOff:
		return "NoteOff"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// RawEvent is a single note-on or note-off action in the input timeline.
type RawEvent struct {
	Timestamp int64     // Time of the event in milliseconds.
	Kind      EventKind // Whether the note starts or stops.
	Pitch     int       // MIDI note number (0-127).
	Velocity  int       // MIDI velocity (0-127), only meaningful for NoteOn.
}

// On returns a NoteOn event.
func On(t int64, pitch, velocity int) RawEvent {
	return RawEvent{Timestamp: t, Kind: NoteOn, Pitch: pitch, Velocity: velocity}
}

// Off returns a NoteOff event.
func Off(t int64, pitch int) RawEvent {
	return RawEvent{Timestamp: t, Kind: NoteOff, Pitch: pitch}
}

// Segment is one entry of the output table: a tone (or a rest when Freq is 0)
// held for Duration milliseconds.
type Segment struct {
	Freq     int // Frequency in Hz, 0 means rest.
	Duration int // Duration in milliseconds.
}

// IsRest reports whether the segment is silent.
func (s Segment) IsRest() bool {
	return s.Freq == 0
}

// TotalDuration returns the sum of all segment durations.
func TotalDuration(segs []Segment) int64 {
	var total int64
	for _, s := range segs {
		total += int64(s.Duration)
	}
	return total
}

// PitchToFreq converts a MIDI note number to the nearest integer frequency
// in equal temperament with A4 (note 69) at 440 Hz.
func PitchToFreq(pitch int) int {
	return int(math.Round(440 * math.Pow(2, float64(pitch-69)/12)))
}

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// FreqToNoteName returns the name of the equal-tempered note closest to freq
// (e.g. "A4"), or "rest" for 0.
func FreqToNoteName(freq int) string {
	if freq <= 0 {
		return "rest"
	}
	pitch := int(math.Round(69 + 12*math.Log2(float64(freq)/440)))
	if pitch < 0 {
		return "?"
	}
	return fmt.Sprintf("%s%d", noteNames[pitch%12], pitch/12-1)
}

// Melody is the final monophonic table handed to the serializers.
type Melody struct {
	Name string // Name of the melody, used for the include guard.

	Segments []Segment
	Unit     int // Quantization unit in milliseconds (0 when not quantized).

	// Warnings produced while building the melody.
	Warnings []Warning
}

// Pretty-print
func (m *Melody) String() string {
	var b strings.Builder
	b.WriteString("Melody:\n")
	fmt.Fprintf(&b, "- Name: %s\n", m.Name)
	if m.Unit > 0 {
		fmt.Fprintf(&b, "- Quantization unit: %d ms\n", m.Unit)
	} else {
		b.WriteString("- Quantization unit: none\n")
	}
	fmt.Fprintf(&b, "- Entries: %d\n", len(m.Segments))
	fmt.Fprintf(&b, "- Total duration: %d ms\n", TotalDuration(m.Segments))

	if len(m.Segments) > 0 {
		b.WriteString(formatSegments(m.Segments, 2))
	}

	if len(m.Warnings) > 0 {
		b.WriteString("- Warnings:\n")
		for _, w := range m.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}

	size := m.CalculateSize()
	fmt.Fprintf(&b, "[Total table size: %d byte", size)
	if size != 1 {
		b.WriteString("s")
	}
	b.WriteString("]\n")

	return b.String()
}

// formatSegments renders segments as a fixed-width table indented by indent spaces.
func formatSegments(segs []Segment, indent int) string {
	headers := []string{"#", "Freq (Hz)", "Note", "Duration (ms)"}
	rows := make([][]string, 0, len(segs))
	for i, s := range segs {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", s.Freq),
			FreqToNoteName(s.Freq),
			fmt.Sprintf("%d", s.Duration),
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = max(len(h), 6)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	padRight := func(s string, w int) string {
		if len(s) >= w {
			return s
		}
		return s + strings.Repeat(" ", w-len(s))
	}

	var b strings.Builder
	separator := func() {
		b.WriteString(strings.Repeat(" ", indent))
		for _, w := range widths {
			b.WriteString("+")
			b.WriteString(strings.Repeat("-", w+2))
		}
		b.WriteString("+\n")
	}
	line := func(cells []string) {
		b.WriteString(strings.Repeat(" ", indent))
		for i, cell := range cells {
			b.WriteString("| ")
			b.WriteString(padRight(cell, widths[i]))
			b.WriteString(" ")
		}
		b.WriteString("|\n")
	}

	separator()
	line(headers)
	separator()
	for _, row := range rows {
		line(row)
	}
	separator()

	return b.String()
}
