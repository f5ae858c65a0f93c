package report

import (
	"fmt"
	"io"

	"github.com/jsphweid/staffgrid/grid"
	"github.com/jsphweid/staffgrid/model"
	"github.com/jsphweid/staffgrid/pitch"
	"github.com/jsphweid/staffgrid/util"
)

type Report struct {
	Bars         int
	EmptyBars    int
	Entries      int
	Pauses       int
	Chords       int
	TrebleOnsets int
	BassOnsets   int
	TotalBeats   float64
	// Most entries found in a single bar.
	BusiestBar int
	// Lowest and Highest are only set when something sounds.
	Lowest, Highest pitch.Pitch
	// Bars whose two clefs do not add up to the same length.
	MismatchedBars []int
}

// Analyze walks the grid, using the note streams only for the clef totals.
func Analyze(g *grid.Grid, treble, bass []model.Bar) Report {
	var r Report
	r.Bars = g.NumBars()
	for i, bar := range g.Bars {
		if len(bar) == 0 {
			r.EmptyBars++
			continue
		}
		r.TotalBeats += bar[len(bar)-1].EndTime
		r.BusiestBar = util.Max(r.BusiestBar, len(bar))
		if sorted := grid.SortedPitches(bar); len(sorted) > 0 {
			lo, hi := sorted[0], sorted[len(sorted)-1]
			if r.TrebleOnsets+r.BassOnsets == 0 || lo.Less(r.Lowest) {
				r.Lowest = lo
			}
			if r.TrebleOnsets+r.BassOnsets == 0 || r.Highest.Less(hi) {
				r.Highest = hi
			}
		}
		for _, e := range bar {
			r.Entries++
			if e.IsPause {
				r.Pauses++
			}
			if len(e.AllPitches) > 1 {
				r.Chords++
			}
			r.TrebleOnsets += len(e.TrebleOnsetPitches)
			r.BassOnsets += len(e.BassOnsetPitches)
		}
		if barBeats(treble, i) != barBeats(bass, i) {
			r.MismatchedBars = append(r.MismatchedBars, i)
		}
	}
	return r
}

func barBeats(bars []model.Bar, i int) float64 {
	if i >= len(bars) {
		return 0
	}
	var total float64
	for _, e := range bars[i] {
		total += e.Duration.Beats()
	}
	return total
}

func (r Report) Print(w io.Writer) {
	fmt.Fprintf(w, "bars: %v (empty: %v)\n", r.Bars, r.EmptyBars)
	fmt.Fprintf(w, "entries: %v (pauses: %v, chords: %v)\n", r.Entries, r.Pauses, r.Chords)
	fmt.Fprintf(w, "onsets: treble %v, bass %v\n", r.TrebleOnsets, r.BassOnsets)
	fmt.Fprintf(w, "total beats: %v (busiest bar: %v entries)\n", r.TotalBeats, r.BusiestBar)
	if r.TrebleOnsets+r.BassOnsets > 0 {
		fmt.Fprintf(w, "range: %v to %v\n", r.Lowest, r.Highest)
	}
	if len(r.MismatchedBars) > 0 {
		fmt.Fprintf(w, "bars with unequal clef lengths: %v\n", r.MismatchedBars)
	}
}
