package model

import (
	"github.com/jsphweid/staffgrid/duration"
	"github.com/jsphweid/staffgrid/pitch"
)

// Entry is one merged onset in a bar. Times are in beats from the start of
// the bar, a quarter note being one beat.
type Entry struct {
	StartTime           float64         `json:"start_time"`
	EndTime             float64         `json:"end_time"`
	DurationCode        duration.Code   `json:"duration"`
	IsPause             bool            `json:"is_pause"`
	AllPitches          []pitch.Pitch   `json:"all_pitches"`
	TrebleOnsetPitches  []pitch.Pitch   `json:"treble_onset_pitches"`
	BassOnsetPitches    []pitch.Pitch   `json:"bass_onset_pitches"`
	TrebleDurationCodes []duration.Code `json:"treble_duration_codes"`
	BassDurationCodes   []duration.Code `json:"bass_duration_codes"`
}

func (e Entry) Beats() float64 {
	return e.EndTime - e.StartTime
}

// Onsets returns the onset pitches of one register with their own codes.
func (e Entry) Onsets(c Clef) ([]pitch.Pitch, []duration.Code) {
	if c == Bass {
		return e.BassOnsetPitches, e.BassDurationCodes
	}
	return e.TrebleOnsetPitches, e.TrebleDurationCodes
}

type Color string

const (
	PlaybackColor  Color = "red"
	SelectionColor Color = "blue"
)

type Highlight struct {
	Bar   int   `json:"bar"`
	Note  int   `json:"note"`
	Color Color `json:"color"`
}
