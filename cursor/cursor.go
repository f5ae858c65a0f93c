package cursor

import "fmt"

// Layout is the shape of a grid: how many bars, how many entries per bar.
type Layout interface {
	NumBars() int
	NumEntries(bar int) int
}

// Position addresses one grid entry.
type Position struct {
	Bar  int
	Note int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Bar, p.Note)
}

func (p Position) Valid(l Layout) bool {
	return p.Bar >= 0 && p.Note >= 0 && p.Note < l.NumEntries(p.Bar)
}

// Advance moves to the next entry, stepping over empty bars and wrapping to
// the first entry after the last entry of the last bar.
func (p *Position) Advance(l Layout) {
	if p.Note+1 < l.NumEntries(p.Bar) {
		p.Note++
		return
	}
	for bar := p.Bar + 1; bar < l.NumBars(); bar++ {
		if l.NumEntries(bar) > 0 {
			*p = Position{Bar: bar}
			return
		}
	}
	*p, _ = First(l)
}

// Retreat moves to the previous entry. It does not wrap: at (0,0), or with
// nothing before the position, it reports false and leaves p alone.
func (p *Position) Retreat(l Layout) bool {
	if p.Note > 0 && p.Note-1 < l.NumEntries(p.Bar) {
		p.Note--
		return true
	}
	for bar := p.Bar - 1; bar >= 0; bar-- {
		if bar >= l.NumBars() {
			continue
		}
		if n := l.NumEntries(bar); n > 0 {
			*p = Position{Bar: bar, Note: n - 1}
			return true
		}
	}
	return false
}

// Clamp moves an out-of-range position to the first entry, or to (0,0) when
// the layout is empty, and reports whether it had to.
func (p *Position) Clamp(l Layout) bool {
	if p.Valid(l) {
		return false
	}
	first, _ := First(l)
	if *p == first {
		return false
	}
	*p = first
	return true
}

// First finds the first addressable entry. ok is false for an empty layout.
func First(l Layout) (Position, bool) {
	for bar := 0; bar < l.NumBars(); bar++ {
		if l.NumEntries(bar) > 0 {
			return Position{Bar: bar}, true
		}
	}
	return Position{}, false
}
