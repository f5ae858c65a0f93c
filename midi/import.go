package midi

import (
	"math"
	"sort"

	"github.com/jsphweid/staffgrid/constants"
	"github.com/jsphweid/staffgrid/duration"
	"github.com/jsphweid/staffgrid/model"
	"github.com/jsphweid/staffgrid/piece"
	"github.com/jsphweid/staffgrid/pitch"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Onsets are snapped to this many steps per beat, a sixteenth grid.
const importSteps = 4

// MiddleC is the default split key: it and everything above is treble.
const MiddleC = 60

// TimedNote is one sounded key, in beats from the start of the file.
type TimedNote struct {
	Key        uint8
	Start, End float64
	Track      int
}

// Notes pairs note-ons with their note-offs across all tracks.
func Notes(s *smf.SMF) ([]TimedNote, error) {
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, errors.New("only metric time formats are supported")
	}
	perBeat := float64(mt.Ticks4th())

	var res []TimedNote
	for ti, track := range s.Tracks {
		open := make(map[uint8]float64)
		var absTicks int64
		for _, event := range track {
			absTicks += int64(event.Delta)
			at := float64(absTicks) / perBeat
			var channel, key, velocity uint8
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity) && velocity > 0:
				open[key] = at
			case event.Message.GetNoteOn(&channel, &key, &velocity),
				event.Message.GetNoteOff(&channel, &key, &velocity):
				if start, ok := open[key]; ok {
					res = append(res, TimedNote{Key: key, Start: start, End: at, Track: ti})
					delete(open, key)
				}
			}
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].Start != res[j].Start {
			return res[i].Start < res[j].Start
		}
		return res[i].Key < res[j].Key
	})
	return res, nil
}

// Split decides which clef a note is written in.
type Split func(n TimedNote) model.Clef

// SplitAtKey sends key and above to the treble clef.
func SplitAtKey(key uint8) Split {
	return func(n TimedNote) model.Clef {
		if n.Key >= key {
			return model.Treble
		}
		return model.Bass
	}
}

// SplitByTrack sends notes of the given track to the treble clef and every
// other track to the bass clef.
func SplitByTrack(treble int) Split {
	return func(n TimedNote) model.Clef {
		if n.Track == treble {
			return model.Treble
		}
		return model.Bass
	}
}

// ToPiece reads an SMF into a piece, quantized to sixteenths and cut into
// 4/4 bars. A nil split uses SplitAtKey(MiddleC).
func ToPiece(s *smf.SMF, split Split) (*piece.Piece, error) {
	notes, err := Notes(s)
	if err != nil {
		return nil, err
	}
	if split == nil {
		split = SplitAtKey(MiddleC)
	}
	var trebleNotes, bassNotes []TimedNote
	for _, n := range notes {
		if split(n) == model.Treble {
			trebleNotes = append(trebleNotes, n)
		} else {
			bassNotes = append(bassNotes, n)
		}
	}
	p := piece.New(Arrange(trebleNotes), Arrange(bassNotes))
	if tc := s.TempoChanges(); len(tc) > 0 {
		p.Tempo = tc[0].BPM
	}
	return p, nil
}

type span struct {
	start, end float64
	pitches    []pitch.Pitch
}

func quantize(beats float64) float64 {
	return math.Round(beats*importSteps) / importSteps
}

// Arrange turns one clef's notes into bars. Notes that start together form a
// chord lasting as long as its shortest note, cut short by the next onset.
// Gaps become pauses. There are no ties, so a chord crossing a barline
// continues as a pause in the next bar.
func Arrange(notes []TimedNote) []model.Bar {
	var spans []span
	for _, n := range notes {
		start, end := quantize(n.Start), quantize(n.End)
		if end <= start {
			end = start + 1.0/importSteps
		}
		p := pitch.FromKey(int(n.Key))
		if last := len(spans) - 1; last >= 0 && spans[last].start == start {
			spans[last].pitches = append(spans[last].pitches, p)
			if end < spans[last].end {
				spans[last].end = end
			}
			continue
		}
		spans = append(spans, span{start: start, end: end, pitches: []pitch.Pitch{p}})
	}

	var bars []model.Bar
	var t float64
	for i, sp := range spans {
		if i+1 < len(spans) && spans[i+1].start < sp.end {
			sp.end = spans[i+1].start
		}
		bars = fill(bars, t, sp.start, nil)
		bars = fill(bars, sp.start, sp.end, sp.pitches)
		t = sp.end
	}
	return bars
}

// fill lays [from, to) into bars, splitting at barlines and into standard
// codes. Only the first piece of a note sounds.
func fill(bars []model.Bar, from, to float64, pitches []pitch.Pitch) []model.Bar {
	const barBeats = constants.BeatsPerBar
	for from < to {
		bar := int(from / barBeats)
		for len(bars) <= bar {
			bars = append(bars, model.Bar{})
		}
		barEnd := float64(bar+1) * barBeats
		end := math.Min(to, barEnd)
		for _, code := range codesFor(end - from) {
			if len(pitches) > 0 {
				bars[bar] = append(bars[bar], model.Note(code, pitches...))
				pitches = nil
			} else {
				bars[bar] = append(bars[bar], model.Pause(code))
			}
		}
		from = end
	}
	return bars
}

var standardCodes = []duration.Code{
	duration.Whole,
	duration.Half.Dotted(),
	duration.Half,
	duration.Quarter.Dotted(),
	duration.Quarter,
	duration.Eighth.Dotted(),
	duration.Eighth,
	duration.Sixteenth,
}

// codesFor splits a sixteenth-aligned length into the fewest standard codes,
// longest first.
func codesFor(beats float64) []duration.Code {
	var res []duration.Code
	for _, c := range standardCodes {
		for beats >= c.Beats()-1e-9 {
			res = append(res, c)
			beats -= c.Beats()
		}
	}
	return res
}
