package grid

import (
	"testing"

	"github.com/jsphweid/staffgrid/duration"
	"github.com/jsphweid/staffgrid/model"
	"github.com/jsphweid/staffgrid/pitch"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slices"
)

var p = pitch.MustParse

func TestBothClefsEmptyGivesNoEntries(t *testing.T) {
	assert := assert.New(t)
	assert.Empty(Build(nil, nil))
	assert.Empty(Build(model.Bar{}, model.Bar{}))
}

func TestMergesTrebleAndBassOnsets(t *testing.T) {
	treble := model.Bar{
		model.Note(duration.Quarter, p("C4")),
		model.Note(duration.Quarter, p("E4")),
	}
	bass := model.Bar{model.Note(duration.Half, p("C3"))}

	entries := Build(treble, bass)

	assert := assert.New(t)
	assert.Len(entries, 2)

	assert.Equal(0.0, entries[0].StartTime)
	assert.Equal(1.0, entries[0].EndTime)
	assert.Equal(duration.Quarter, entries[0].DurationCode)
	assert.Equal([]pitch.Pitch{p("C4"), p("C3")}, entries[0].AllPitches)
	assert.Equal([]pitch.Pitch{p("C4")}, entries[0].TrebleOnsetPitches)
	assert.Equal([]duration.Code{duration.Quarter}, entries[0].TrebleDurationCodes)
	assert.Equal([]pitch.Pitch{p("C3")}, entries[0].BassOnsetPitches)
	assert.Equal([]duration.Code{duration.Half}, entries[0].BassDurationCodes)
	assert.False(entries[0].IsPause)

	assert.Equal(1.0, entries[1].StartTime)
	assert.Equal(2.0, entries[1].EndTime)
	assert.Equal(duration.Quarter, entries[1].DurationCode)
	assert.Equal([]pitch.Pitch{p("E4")}, entries[1].AllPitches)
	assert.Empty(entries[1].BassOnsetPitches)
}

func TestSamePitchInBothClefsListedOnce(t *testing.T) {
	treble := model.Bar{model.Note(duration.Half, p("C4"), p("E4"))}
	bass := model.Bar{model.Note(duration.Quarter, p("C4"))}

	entries := Build(treble, bass)

	assert := assert.New(t)
	assert.Len(entries, 1)
	assert.Equal([]pitch.Pitch{p("C4"), p("E4")}, entries[0].AllPitches)
	// both clefs still contribute an onset
	assert.Equal([]pitch.Pitch{p("C4"), p("E4"), p("C4")}, entries[0].TrebleOnsetPitches)
	assert.Equal([]duration.Code{duration.Half, duration.Half, duration.Quarter}, entries[0].TrebleDurationCodes)
	// the last entry ends after its shortest note
	assert.Equal(1.0, entries[0].EndTime)
}

func TestRegistersFollowOctave(t *testing.T) {
	treble := model.Bar{model.Note(duration.Whole, p("A3"), p("C5"))}
	bass := model.Bar{model.Note(duration.Whole, p("D4"), p("G2"))}

	entries := Build(treble, bass)

	assert := assert.New(t)
	assert.Len(entries, 1)
	assert.Equal([]pitch.Pitch{p("C5"), p("D4")}, entries[0].TrebleOnsetPitches)
	assert.Equal([]pitch.Pitch{p("A3"), p("G2")}, entries[0].BassOnsetPitches)
	assert.Equal(duration.Whole, entries[0].DurationCode)
}

func TestPausesMakeEntries(t *testing.T) {
	treble := model.Bar{
		model.Pause(duration.Quarter),
		model.Note(duration.Quarter, p("G4")),
	}
	bass := model.Bar{
		model.Pause(duration.Half),
	}

	entries := Build(treble, bass)

	assert := assert.New(t)
	assert.Len(entries, 2)
	assert.True(entries[0].IsPause)
	assert.Empty(entries[0].AllPitches)
	assert.False(entries[1].IsPause)
	assert.Equal([]pitch.Pitch{p("G4")}, entries[1].AllPitches)
}

func TestPauseAgainstANoteIsNotAPause(t *testing.T) {
	treble := model.Bar{model.Pause(duration.Quarter)}
	bass := model.Bar{model.Note(duration.Quarter, p("F2"))}

	entries := Build(treble, bass)

	assert := assert.New(t)
	assert.Len(entries, 1)
	assert.False(entries[0].IsPause)
	assert.Equal([]pitch.Pitch{p("F2")}, entries[0].AllPitches)
}

func TestDottedValuesLandOnTheirOnsets(t *testing.T) {
	treble := model.Bar{
		model.Note(duration.Eighth.Dotted(), p("C5")),
		model.Note(duration.Sixteenth, p("D5")),
		model.Note(duration.Quarter.Dotted(), p("E5")),
		model.Note(duration.Eighth, p("F5")),
	}
	bass := model.Bar{
		model.Note(duration.Quarter, p("C3")),
		model.Note(duration.Quarter.Dotted(), p("G3")),
	}

	entries := Build(treble, bass)

	assert := assert.New(t)
	starts := make([]float64, len(entries))
	for i, e := range entries {
		starts[i] = e.StartTime
	}
	assert.Equal([]float64{0, 0.75, 1, 2.5}, starts)
	assert.Equal(duration.Eighth, entries[0].DurationCode)
	assert.Equal(duration.Sixteenth, entries[1].DurationCode)
	assert.Equal(duration.Quarter, entries[2].DurationCode)
	assert.Equal(3.0, entries[3].EndTime)
}

func TestStartsStrictlyIncreaseAndOnsetsArePreserved(t *testing.T) {
	bars := []struct{ treble, bass model.Bar }{
		{
			model.Bar{
				model.Note(duration.Sixteenth.Dotted(), p("C5")),
				model.Note(duration.Sixteenth.Dotted(), p("D5")),
				model.Note(duration.Sixteenth.Dotted(), p("E5")),
				model.Note(duration.Sixteenth.Dotted(), p("F5")),
				model.Pause(duration.Eighth),
				model.Note(duration.Half, p("G4"), p("B4")),
			},
			model.Bar{
				model.Note(duration.Eighth, p("C2")),
				model.Note(duration.Eighth, p("E2")),
				model.Note(duration.Quarter, p("G5")),
				model.Pause(duration.Half),
			},
		},
		{
			model.Bar{model.Note(duration.Whole, p("C4"))},
			nil,
		},
	}

	assert := assert.New(t)
	for _, bar := range bars {
		entries := Build(bar.treble, bar.bass)
		for i := 1; i < len(entries); i++ {
			assert.Less(entries[i-1].StartTime, entries[i].StartTime)
		}

		var want []pitch.Pitch
		for _, b := range []model.Bar{bar.treble, bar.bass} {
			for _, e := range b {
				if !e.IsPause() {
					want = append(want, e.Pitches...)
				}
			}
		}
		slices.SortFunc(want, func(a, b pitch.Pitch) bool { return a.Less(b) })
		assert.Equal(want, SortedPitches(entries))
	}
}
