package grid

import (
	"github.com/jsphweid/staffgrid/constants"
	"github.com/jsphweid/staffgrid/duration"
	"github.com/jsphweid/staffgrid/model"
	"github.com/jsphweid/staffgrid/pitch"
	"github.com/jsphweid/staffgrid/util"
	"golang.org/x/exp/slices"
)

// octaves at or above this are scheduled in the treble register
const trebleOctave = 4

type timedEvent struct {
	start, end float64
	event      model.NoteEvent
}

func (t timedEvent) beats() float64 {
	return t.end - t.start
}

func timeline(bar model.Bar) []timedEvent {
	res := make([]timedEvent, 0, len(bar))
	var t float64
	for _, e := range bar {
		beats := e.Duration.Beats()
		res = append(res, timedEvent{start: t, end: t + beats, event: e})
		t += beats
	}
	return res
}

// onsetTime is the comparable form of a start time. Prefix sums of dotted
// sixteenths do not land on exact floats, so times are snapped to a fine grid.
func onsetTime(t float64) float64 {
	return util.Quantize(t, constants.TicksPerBeat)
}

func startTimes(clefs ...[]timedEvent) []float64 {
	seen := make(map[float64]bool)
	for _, events := range clefs {
		for _, e := range events {
			seen[onsetTime(e.start)] = true
		}
	}
	return util.SortedKeys(seen)
}

// Build merges one bar of treble and bass note events into entries ordered
// by start time. Each distinct onset across both clefs yields exactly one
// entry. Either clef may be empty; both empty gives an empty result.
func Build(treble, bass model.Bar) []model.Entry {
	trebleEvents := timeline(treble)
	bassEvents := timeline(bass)
	starts := startTimes(trebleEvents, bassEvents)

	entries := make([]model.Entry, 0, len(starts))
	for i, start := range starts {
		var onset []timedEvent
		for _, events := range [][]timedEvent{trebleEvents, bassEvents} {
			for _, e := range events {
				if onsetTime(e.start) == start {
					onset = append(onset, e)
				}
			}
		}

		entry := mergeOnset(onset)
		entry.StartTime = start
		if i+1 < len(starts) {
			entry.EndTime = starts[i+1]
		} else {
			entry.EndTime = start + shortest(onset)
		}
		entry.DurationCode = duration.FromBeats(entry.EndTime - entry.StartTime)
		entries = append(entries, entry)
	}
	return entries
}

func shortest(events []timedEvent) float64 {
	res := events[0].beats()
	for _, e := range events[1:] {
		res = util.Min(res, e.beats())
	}
	return res
}

// mergeOnset fills the pitch lists of an entry. The merged set holds each
// pitch once even when both clefs sound it, while the per-register onset
// lists keep every note. Registers follow the octave, not the clef the note
// was written in.
func mergeOnset(onset []timedEvent) model.Entry {
	entry := model.Entry{IsPause: true}
	seen := make(map[pitch.Pitch]bool)
	for _, e := range onset {
		if e.event.IsPause() {
			continue
		}
		entry.IsPause = false
		for _, p := range e.event.Pitches {
			if !seen[p] {
				seen[p] = true
				entry.AllPitches = append(entry.AllPitches, p)
			}
			if p.Octave >= trebleOctave {
				entry.TrebleOnsetPitches = append(entry.TrebleOnsetPitches, p)
				entry.TrebleDurationCodes = append(entry.TrebleDurationCodes, e.event.Duration)
			} else {
				entry.BassOnsetPitches = append(entry.BassOnsetPitches, p)
				entry.BassDurationCodes = append(entry.BassDurationCodes, e.event.Duration)
			}
		}
	}
	return entry
}

// Pitches returns every onset pitch of the entries, treble before bass.
func Pitches(entries []model.Entry) []pitch.Pitch {
	var res []pitch.Pitch
	for _, e := range entries {
		res = append(res, e.TrebleOnsetPitches...)
		res = append(res, e.BassOnsetPitches...)
	}
	return res
}

// SortedPitches is Pitches in pitch order, used to compare onset content.
func SortedPitches(entries []model.Entry) []pitch.Pitch {
	res := Pitches(entries)
	slices.SortFunc(res, func(a, b pitch.Pitch) bool { return a.Less(b) })
	return res
}
