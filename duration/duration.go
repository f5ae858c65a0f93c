package duration

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var ErrInvalidCode = errors.New("invalid duration code")

// Code is a symbolic note length: w, h, q (or 4), 8, 16, optionally
// followed by a dot meaning one and a half times as long.
type Code string

const (
	Whole     Code = "w"
	Half      Code = "h"
	Quarter   Code = "q"
	Eighth    Code = "8"
	Sixteenth Code = "16"
)

const dot = "."

var baseBeats = map[string]float64{
	"w":  4,
	"h":  2,
	"q":  1,
	"4":  1,
	"8":  0.5,
	"16": 0.25,
}

// Dotted returns the dotted form of c.
func (c Code) Dotted() Code {
	if c.IsDotted() {
		return c
	}
	return c + dot
}

func (c Code) IsDotted() bool {
	return strings.HasSuffix(string(c), dot)
}

// Base strips the dot.
func (c Code) Base() Code {
	return Code(strings.TrimSuffix(string(c), dot))
}

func (c Code) Valid() bool {
	_, ok := baseBeats[string(c.Base())]
	return ok
}

// Beats returns the length in quarter-note beats. An unknown code means the
// note stream was corrupted upstream, so it panics.
func (c Code) Beats() float64 {
	b, ok := baseBeats[string(c.Base())]
	if !ok {
		panic(fmt.Sprintf("%v: %q", ErrInvalidCode, string(c)))
	}
	if c.IsDotted() {
		b *= 1.5
	}
	return b
}

// Duration is the wall-clock length of c at bpm.
func (c Code) Duration(bpm float64) time.Duration {
	return BeatsToDuration(c.Beats(), bpm)
}

// FromBeats buckets a beat count into the next coarser standard code. It
// does not round to nearest and never returns a dotted code.
func FromBeats(beats float64) Code {
	switch {
	case beats >= 4:
		return Whole
	case beats >= 2:
		return Half
	case beats >= 1:
		return Quarter
	case beats >= 0.5:
		return Eighth
	default:
		return Sixteenth
	}
}

// BeatsToDuration converts beats at bpm into a duration, 60/bpm seconds per
// beat.
func BeatsToDuration(beats, bpm float64) time.Duration {
	return time.Duration(beats * 60 / bpm * float64(time.Second))
}

// Parse validates text from outside the core. "qd" is read as "q.".
func Parse(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		s = strings.TrimSuffix(s, "d") + dot
	}
	c := Code(s)
	if c.Base() == "4" {
		c = Quarter + Code(strings.TrimPrefix(s, "4"))
	}
	if !c.Valid() {
		return "", errors.Wrapf(ErrInvalidCode, "%q", s)
	}
	return c, nil
}

func (c *Code) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
