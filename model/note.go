package model

import (
	"github.com/jsphweid/staffgrid/duration"
	"github.com/jsphweid/staffgrid/pitch"
)

type Clef uint8

const (
	Treble Clef = iota
	Bass
)

func (c Clef) String() string {
	if c == Bass {
		return "bass"
	}
	return "treble"
}

// NoteEvent is one note, chord or pause in one clef's bar. A pause has no
// pitches.
type NoteEvent struct {
	Pitches  []pitch.Pitch
	Pause    bool
	Duration duration.Code
}

func Note(code duration.Code, pitches ...pitch.Pitch) NoteEvent {
	return NoteEvent{Pitches: pitches, Duration: code}
}

func Pause(code duration.Code) NoteEvent {
	return NoteEvent{Pause: true, Duration: code}
}

// IsPause also covers a note event that lost all of its pitches.
func (e NoteEvent) IsPause() bool {
	return e.Pause || len(e.Pitches) == 0
}

// Bar is one clef's notes for one measure.
type Bar = []NoteEvent
