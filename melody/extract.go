package melody

import (
	"cmp"
	"fmt"
	"slices"
)

// activeNote is a note that is currently sounding during extraction.
type activeNote struct {
	pitch    int
	velocity int
	onset    int // Insertion sequence number, higher is more recent.
}

// Extraction is the output of Extract.
type Extraction struct {
	Segments []Segment
	Warnings []Warning
}

// validateEvent rejects numeric input that cannot be interpreted at all.
func validateEvent(i int, ev RawEvent) error {
	if ev.Timestamp < 0 {
		return fmt.Errorf("event %d: negative timestamp %d", i, ev.Timestamp)
	}
	if ev.Kind != NoteOn && ev.Kind != NoteOff {
		return fmt.Errorf("event %d at %d ms: unknown event kind %d", i, ev.Timestamp, int(ev.Kind))
	}
	if ev.Pitch < 0 || ev.Pitch > MaxPitch {
		return fmt.Errorf("event %d at %d ms: pitch must be 0-%d, got %d", i, ev.Timestamp, MaxPitch, ev.Pitch)
	}
	if ev.Velocity < 0 || ev.Velocity > MaxVelocity {
		return fmt.Errorf("event %d at %d ms: velocity must be 0-%d, got %d", i, ev.Timestamp, MaxVelocity, ev.Velocity)
	}
	return nil
}

// dominant returns the frequency of the loudest active note, preferring the
// most recent onset on velocity ties. It returns 0 (rest) when nothing sounds.
func dominant(active []activeNote) int {
	if len(active) == 0 {
		return 0
	}
	best := active[0]
	for _, n := range active[1:] {
		if n.velocity > best.velocity || (n.velocity == best.velocity && n.onset > best.onset) {
			best = n
		}
	}
	return PitchToFreq(best.pitch)
}

// Extract sweeps a chronological list of note events and returns a single
// voice timeline covering the span from the first to the last event without
// gaps. Silence becomes rest segments.
//
// Events are processed in timestamp order; events sharing a timestamp keep
// their original order. A NoteOff for a pitch that is not sounding is ignored
// and reported as a MalformedEventStream warning.
func Extract(events []RawEvent) (*Extraction, error) {
	result := &Extraction{}
	if len(events) == 0 {
		return result, nil
	}

	for i, ev := range events {
		if err := validateEvent(i, ev); err != nil {
			return nil, err
		}
	}

	// Sort indices rather than events so warnings can point at the caller's index.
	order := make([]int, len(events))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(events[a].Timestamp, events[b].Timestamp)
	})

	var (
		active []activeNote
		seq    int
		ws     warnings
	)

	apply := func(index int, ev RawEvent) {
		switch ev.Kind {
		case NoteOn:
			active = slices.DeleteFunc(active, func(n activeNote) bool { return n.pitch == ev.Pitch })
			active = append(active, activeNote{pitch: ev.Pitch, velocity: ev.Velocity, onset: seq})
			seq++
		case NoteOff:
			i := slices.IndexFunc(active, func(n activeNote) bool { return n.pitch == ev.Pitch })
			if i == -1 {
				ws.add(MalformedEventStream, index, "NoteOff for pitch %d at %d ms has no matching NoteOn", ev.Pitch, ev.Timestamp)
				return
			}
			active = slices.Delete(active, i, i+1)
		}
	}

	for i := 0; i < len(order); {
		t := events[order[i]].Timestamp

		// Apply every event at this instant before deciding what sounds next.
		for ; i < len(order) && events[order[i]].Timestamp == t; i++ {
			apply(order[i], events[order[i]])
		}
		if i == len(order) {
			break
		}

		next := events[order[i]].Timestamp
		result.Segments = append(result.Segments, Segment{
			Freq:     dominant(active),
			Duration: int(next - t),
		})
	}

	result.Warnings = ws
	return result, nil
}
