package melody

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPitchToFreq(t *testing.T) {
	cases := []struct {
		pitch int
		want  int
	}{
		{69, 440},
		{57, 220},
		{81, 880},
		{60, 262},
		{64, 330},
		{72, 523},
		{0, 8},
		{127, 12544},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, PitchToFreq(c.pitch), "pitch %d", c.pitch)
	}
}

func TestExtractSingleNote(t *testing.T) {
	res, err := Extract([]RawEvent{On(0, 69, 100), Off(500, 69)})
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal([]Segment{{440, 500}}, res.Segments)
	assert.Empty(res.Warnings)
}

func TestExtractHigherVelocityWins(t *testing.T) {
	res, err := Extract([]RawEvent{
		On(0, 60, 50),
		On(0, 64, 90),
		Off(200, 60),
		Off(200, 64),
	})
	require.NoError(t, err)
	assert.Equal(t, []Segment{{PitchToFreq(64), 200}}, res.Segments)
}

func TestExtractLouderNoteKeepsSounding(t *testing.T) {
	res, err := Extract([]RawEvent{
		On(0, 60, 100),
		On(100, 64, 50),
		Off(200, 64),
		Off(300, 60),
	})
	require.NoError(t, err)
	assert.Equal(t, []Segment{{262, 100}, {262, 100}, {262, 100}}, res.Segments)
}

func TestExtractVelocityTieMostRecentWins(t *testing.T) {
	t.Run("same onset time", func(t *testing.T) {
		res, err := Extract([]RawEvent{
			On(0, 60, 80),
			On(0, 64, 80),
			Off(100, 60),
			Off(100, 64),
		})
		require.NoError(t, err)
		assert.Equal(t, []Segment{{330, 100}}, res.Segments)
	})

	t.Run("later onset", func(t *testing.T) {
		res, err := Extract([]RawEvent{
			On(0, 64, 80),
			On(50, 60, 80),
			Off(100, 60),
			Off(150, 64),
		})
		require.NoError(t, err)
		assert.Equal(t, []Segment{{330, 50}, {262, 50}, {330, 50}}, res.Segments)
	})
}

func TestExtractRest(t *testing.T) {
	res, err := Extract([]RawEvent{
		On(0, 69, 100),
		Off(200, 69),
		On(500, 72, 100),
		Off(700, 72),
	})
	require.NoError(t, err)
	assert.Equal(t, []Segment{{440, 200}, {0, 300}, {523, 200}}, res.Segments)
}

func TestExtractRestrikeReplacesEntry(t *testing.T) {
	res, err := Extract([]RawEvent{
		On(0, 60, 50),
		On(0, 64, 70),
		On(100, 60, 100),
		Off(200, 60),
		Off(300, 64),
	})
	require.NoError(t, err)
	assert.Equal(t, []Segment{{330, 100}, {262, 100}, {330, 100}}, res.Segments)
}

func TestExtractUnmatchedNoteOffIsIgnored(t *testing.T) {
	res, err := Extract([]RawEvent{
		On(0, 60, 100),
		Off(50, 62),
		Off(100, 60),
	})
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal([]Segment{{262, 50}, {262, 50}}, res.Segments)
	require.Len(t, res.Warnings, 1)
	assert.Equal(MalformedEventStream, res.Warnings[0].Kind)
	assert.Equal(1, res.Warnings[0].Index)
}

func TestExtractEmpty(t *testing.T) {
	res, err := Extract(nil)
	require.NoError(t, err)
	assert.Empty(t, res.Segments)
	assert.Empty(t, res.Warnings)
}

func TestExtractUnorderedInput(t *testing.T) {
	res, err := Extract([]RawEvent{
		Off(300, 60),
		On(0, 60, 100),
		On(100, 64, 110),
		Off(200, 64),
	})
	require.NoError(t, err)
	assert.Equal(t, []Segment{{262, 100}, {330, 100}, {262, 100}}, res.Segments)
}

func TestExtractRejectsInvalidNumbers(t *testing.T) {
	cases := []struct {
		name  string
		event RawEvent
	}{
		{"negative timestamp", On(-1, 60, 100)},
		{"pitch too high", On(0, 128, 100)},
		{"negative pitch", Off(0, -1)},
		{"velocity too high", On(0, 60, 200)},
		{"unknown kind", RawEvent{Kind: EventKind(7), Pitch: 60}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Extract([]RawEvent{On(0, 69, 100), c.event})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "event 1")
		})
	}
}

// testEvents returns a deterministic polyphonic event list with overlapping
// notes, rests and simultaneous events.
func testEvents(n int) []RawEvent {
	var events []RawEvent
	seed := uint32(12345)
	next := func(mod uint32) int {
		seed = seed*1103515245 + 12345
		return int((seed >> 16) % mod)
	}

	var t int64
	for i := 0; i < n; i++ {
		pitch := 48 + next(36)
		start := t + int64(next(3)*10)
		length := int64(20 + next(400))
		events = append(events, On(start, pitch, 1+next(127)), Off(start+length, pitch))
		t = start + int64(next(200))
	}

	// Sort the way a decoder would hand them over.
	return sortedEvents(events)
}

func sortedEvents(events []RawEvent) []RawEvent {
	out := make([]RawEvent, len(events))
	copy(out, events)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Timestamp < out[j-1].Timestamp; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func TestExtractCoversWholeSpan(t *testing.T) {
	events := testEvents(300)
	res, err := Extract(events)
	require.NoError(t, err)

	first, last := events[0].Timestamp, events[len(events)-1].Timestamp
	assert.Equal(t, last-first, TotalDuration(res.Segments))
	for i, s := range res.Segments {
		assert.Positive(t, s.Duration, "segment %d", i)
	}
}
