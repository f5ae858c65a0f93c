package duration

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBeatsOfEachCode(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(4.0, Whole.Beats())
	assert.Equal(2.0, Half.Beats())
	assert.Equal(1.0, Quarter.Beats())
	assert.Equal(1.0, Code("4").Beats())
	assert.Equal(0.5, Eighth.Beats())
	assert.Equal(0.25, Sixteenth.Beats())
}

func TestDottedIsOneAndAHalf(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(3.0, Half.Dotted().Beats())
	assert.Equal(1.5, Quarter.Dotted().Beats())
	assert.Equal(0.375, Sixteenth.Dotted().Beats())
	assert.Equal(Quarter.Dotted(), Quarter.Dotted().Dotted())
	assert.Equal(Quarter, Quarter.Dotted().Base())
}

func TestUnknownCodePanics(t *testing.T) {
	assert := assert.New(t)
	assert.Panics(func() { Code("x").Beats() })
	assert.Panics(func() { Code("").Beats() })
}

func TestFromBeatsBuckets(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(Whole, FromBeats(4))
	assert.Equal(Whole, FromBeats(6))
	assert.Equal(Half, FromBeats(3))
	assert.Equal(Half, FromBeats(2))
	assert.Equal(Quarter, FromBeats(1.5))
	assert.Equal(Quarter, FromBeats(1))
	assert.Equal(Eighth, FromBeats(0.75))
	assert.Equal(Eighth, FromBeats(0.5))
	assert.Equal(Sixteenth, FromBeats(0.25))
	assert.Equal(Sixteenth, FromBeats(0))
}

func TestFromBeatsIsIdempotent(t *testing.T) {
	assert := assert.New(t)
	for _, b := range []float64{0, 0.1, 0.25, 0.375, 0.5, 0.75, 1, 1.5, 2, 3, 4, 7.5} {
		c := FromBeats(b)
		assert.Equal(c, FromBeats(c.Beats()), "%v beats", b)
	}
}

func TestDurationAtTempo(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(time.Second, Quarter.Duration(60))
	assert.Equal(500*time.Millisecond, Quarter.Duration(120))
	assert.Equal(3*time.Second, Half.Dotted().Duration(60))
}

func TestParse(t *testing.T) {
	assert := assert.New(t)
	cases := map[string]Code{
		"w":   Whole,
		"q":   Quarter,
		"4":   Quarter,
		"4.":  Quarter.Dotted(),
		"qd":  Quarter.Dotted(),
		"8.":  Eighth.Dotted(),
		"16":  Sixteenth,
		" h ": Half,
	}
	for in, want := range cases {
		got, err := Parse(in)
		assert.NoError(err, in)
		assert.Equal(want, got, in)
	}

	for _, in := range []string{"", "3", "qq", ".", "32"} {
		_, err := Parse(in)
		assert.True(errors.Is(err, ErrInvalidCode), in)
	}
}
