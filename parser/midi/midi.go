package midi

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"slices"

	"github.com/QEStudios/BuzzerCompiler/melody"
	"github.com/davecgh/go-spew/spew"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ParseResult holds the decoded timeline of a MIDI file.
type ParseResult struct {
	// Note events of every track merged into one chronological stream,
	// timestamps in milliseconds.
	Events []melody.RawEvent

	// First declared tempo, or melody.DefaultTempo if the file has none.
	Tempo melody.Tempo

	Tracks int
}

// Parser decodes a Standard MIDI File into note events.
type Parser struct {
	r      io.Reader
	logger *log.Logger

	// If true, the decoded result is dumped to the logger's output.
	Debug bool

	// Whether or not the parser has already been used.
	used bool
}

// NewParser creates a new parser reading a MIDI file from r.
func NewParser(r io.Reader, logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.Default()
	}
	return &Parser{r: r, logger: logger}
}

// ParseFile opens and decodes the MIDI file at path.
func ParseFile(path string, logger *log.Logger) (*ParseResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening midi file: %w", err)
	}
	defer file.Close()

	return NewParser(file, logger).Parse()
}

// timedEvent remembers where an event came from so ties can be ordered.
type timedEvent struct {
	event melody.RawEvent
	order int
}

// microsToMillis rounds a microsecond time to the nearest millisecond.
func microsToMillis(us int64) int64 {
	return int64(math.Round(float64(us) / 1000))
}

// Parse reads the whole file and returns its note events.
//
// NoteOn messages with velocity 0 are treated as NoteOff. At equal timestamps
// NoteOff events are ordered before NoteOn events so a re-struck note is not
// cut off by its own release; otherwise track order is kept.
func (p *Parser) Parse() (result *ParseResult, err error) {
	if p.used {
		return nil, fmt.Errorf("parser already used")
	}
	p.used = true

	// smf can panic on truncated files instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("error parsing midi file: %v", r)
		}
	}()

	data, err := io.ReadAll(p.r)
	if err != nil {
		return nil, fmt.Errorf("error reading midi file: %w", err)
	}
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error parsing midi file: %w", err)
	}
	// TimeAt only understands metric time.
	if _, ok := s.TimeFormat.(smf.MetricTicks); !ok {
		return nil, fmt.Errorf("unsupported time format %v, only ticks per quarter note are supported", s.TimeFormat)
	}

	p.logger.Printf("MIDI loaded: tracks=%d, time format=%v", len(s.Tracks), s.TimeFormat)

	result = &ParseResult{Tracks: len(s.Tracks)}

	var timed []timedEvent
	firstTempoTick := int64(-1)

	for _, track := range s.Tracks {
		var absTicks int64
		for _, event := range track {
			absTicks += int64(event.Delta)

			var channel, key, velocity uint8
			var bpm float64
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				t := microsToMillis(s.TimeAt(absTicks))
				ev := melody.On(t, int(key), int(velocity))
				if velocity == 0 {
					ev = melody.Off(t, int(key))
				}
				timed = append(timed, timedEvent{event: ev, order: len(timed)})

			case event.Message.GetNoteOff(&channel, &key, &velocity):
				t := microsToMillis(s.TimeAt(absTicks))
				timed = append(timed, timedEvent{event: melody.Off(t, int(key)), order: len(timed)})

			case event.Message.GetMetaTempo(&bpm):
				if bpm <= 0 {
					continue
				}
				if firstTempoTick == -1 || absTicks < firstTempoTick {
					firstTempoTick = absTicks
					result.Tempo = melody.Tempo(math.Round(60000000 / bpm))
				}
			}
		}
	}

	slices.SortFunc(timed, func(a, b timedEvent) int {
		if c := cmp.Compare(a.event.Timestamp, b.event.Timestamp); c != 0 {
			return c
		}
		if a.event.Kind != b.event.Kind {
			// NoteOff sorts first.
			return cmp.Compare(b.event.Kind, a.event.Kind)
		}
		return cmp.Compare(a.order, b.order)
	})

	result.Events = make([]melody.RawEvent, len(timed))
	for i, te := range timed {
		result.Events[i] = te.event
	}

	if result.Tempo == 0 {
		result.Tempo = melody.DefaultTempo
		p.logger.Printf("No tempo found, assuming %.0f BPM", result.Tempo.BPM())
	} else {
		p.logger.Printf("Tempo: %.2f BPM", result.Tempo.BPM())
	}
	p.logger.Printf("Decoded %d note events", len(result.Events))

	if p.Debug {
		spew.Fdump(p.logger.Writer(), result)
	}

	return result, nil
}
