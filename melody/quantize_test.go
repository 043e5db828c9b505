package melody

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveUnit(t *testing.T) {
	segs := []Segment{{440, 400}, {0, 100}, {523, 300}, {659, 200}}

	cases := []struct {
		name  string
		segs  []Segment
		tempo Tempo
		denom int
		want  int
	}{
		{"tempo hint, 62.5 rounds up", segs, DefaultTempo, 8, 63},
		{"tempo hint, quarter grid", segs, DefaultTempo, 4, 125},
		{"upper median without tempo", segs, 0, 8, 38},
		{"median of odd count", segs[:3], 0, 4, 75},
		{"clamped to 1", []Segment{{440, 3}}, 0, 8, 1},
		{"no segments", nil, 0, 8, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			unit, err := DeriveUnit(c.segs, c.tempo, c.denom)
			require.NoError(t, err)
			assert.Equal(t, c.want, unit)
		})
	}
}

func TestDeriveUnitRejectsBadDenominator(t *testing.T) {
	_, err := DeriveUnit([]Segment{{440, 100}}, 0, 0)
	assert.Error(t, err)
}

func TestMedianDurationIgnoresEmpty(t *testing.T) {
	assert.Equal(t, 200, MedianDuration([]Segment{{0, 0}, {440, 200}, {440, 100}}))
	assert.Equal(t, 0, MedianDuration([]Segment{{0, 0}}))
}

func TestQuantize(t *testing.T) {
	in := []Segment{{440, 130}, {0, 20}, {523, 90}, {659, 125}, {440, 0}}
	out := Quantize(in, 50)

	assert := assert.New(t)
	assert.Equal([]Segment{{440, 150}, {0, 50}, {523, 100}, {659, 150}, {440, 50}}, out)
	assert.Equal(130, in[0].Duration, "input must not be modified")
}

func TestQuantizeClampsUnit(t *testing.T) {
	in := []Segment{{440, 7}}
	assert.Equal(t, in, Quantize(in, 0))
}

func TestQuantizeIsDeterministic(t *testing.T) {
	res, err := Extract(testEvents(100))
	require.NoError(t, err)

	unit, err := DeriveUnit(res.Segments, 0, 8)
	require.NoError(t, err)

	a := Quantize(res.Segments, unit)
	b := Quantize(res.Segments, unit)
	assert.Equal(t, a, b)
	for i, s := range a {
		assert.Zero(t, s.Duration%unit, "segment %d", i)
		assert.Positive(t, s.Duration, "segment %d", i)
	}
}
