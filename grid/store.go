package grid

import (
	"sync/atomic"

	"github.com/jsphweid/staffgrid/model"
)

// Grid is an immutable snapshot of the whole piece, one entry list per bar.
type Grid struct {
	Bars [][]model.Entry
}

func (g *Grid) NumBars() int {
	if g == nil {
		return 0
	}
	return len(g.Bars)
}

func (g *Grid) NumEntries(bar int) int {
	if g == nil || bar < 0 || bar >= len(g.Bars) {
		return 0
	}
	return len(g.Bars[bar])
}

// Entry reports ok=false for any position outside the grid.
func (g *Grid) Entry(bar, note int) (model.Entry, bool) {
	if note < 0 || note >= g.NumEntries(bar) {
		return model.Entry{}, false
	}
	return g.Bars[bar][note], true
}

// Empty is true when no bar has an entry.
func (g *Grid) Empty() bool {
	for bar := 0; bar < g.NumBars(); bar++ {
		if g.NumEntries(bar) > 0 {
			return false
		}
	}
	return true
}

// BuildAll runs Build over every bar. A clef with fewer bars contributes
// empty bars.
func BuildAll(treble, bass []model.Bar) *Grid {
	n := len(treble)
	if len(bass) > n {
		n = len(bass)
	}
	g := &Grid{Bars: make([][]model.Entry, n)}
	for i := 0; i < n; i++ {
		var t, b model.Bar
		if i < len(treble) {
			t = treble[i]
		}
		if i < len(bass) {
			b = bass[i]
		}
		g.Bars[i] = Build(t, b)
	}
	return g
}

// Store owns the current grid. Rebuild replaces the snapshot in a single
// store, so a reader holding the old snapshot never sees a partial grid.
type Store struct {
	current atomic.Value // *Grid
}

func NewStore() *Store {
	s := &Store{}
	s.current.Store(&Grid{})
	return s
}

// Rebuild always processes every bar.
func (s *Store) Rebuild(treble, bass []model.Bar) *Grid {
	g := BuildAll(treble, bass)
	s.current.Store(g)
	return g
}

func (s *Store) Snapshot() *Grid {
	return s.current.Load().(*Grid)
}

func (s *Store) Entry(bar, note int) (model.Entry, bool) {
	return s.Snapshot().Entry(bar, note)
}
