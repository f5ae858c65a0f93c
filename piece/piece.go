package piece

import (
	"sync"

	"github.com/jsphweid/staffgrid/model"
)

// Piece holds the treble and bass note streams and notifies subscribers
// after every mutation. It implements session.Provider.
type Piece struct {
	mu        sync.Mutex
	Title     string
	Tempo     float64
	treble    []model.Bar
	bass      []model.Bar
	listeners []func()
}

func New(treble, bass []model.Bar) *Piece {
	p := &Piece{}
	p.treble, p.bass = pad(copyBars(treble), copyBars(bass))
	return p
}

func copyBars(bars []model.Bar) []model.Bar {
	res := make([]model.Bar, len(bars))
	for i, b := range bars {
		res[i] = append(model.Bar(nil), b...)
	}
	return res
}

// pad gives both clefs the same number of bars.
func pad(treble, bass []model.Bar) ([]model.Bar, []model.Bar) {
	for len(treble) < len(bass) {
		treble = append(treble, model.Bar{})
	}
	for len(bass) < len(treble) {
		bass = append(bass, model.Bar{})
	}
	return treble, bass
}

// Bars returns copies of both streams.
func (p *Piece) Bars() (treble, bass []model.Bar) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return copyBars(p.treble), copyBars(p.bass)
}

func (p *Piece) NumBars() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.treble)
}

func (p *Piece) Subscribe(f func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, f)
}

// mutate applies f under the lock and notifies outside of it, so that a
// listener may read the piece back.
func (p *Piece) mutate(f func()) {
	p.mu.Lock()
	f()
	p.treble, p.bass = pad(p.treble, p.bass)
	listeners := append([]func(){}, p.listeners...)
	p.mu.Unlock()

	for _, l := range listeners {
		l()
	}
}

// Replace swaps both streams wholesale.
func (p *Piece) Replace(treble, bass []model.Bar) {
	p.mutate(func() {
		p.treble, p.bass = copyBars(treble), copyBars(bass)
	})
}

func (p *Piece) AppendBar(treble, bass model.Bar) {
	p.mutate(func() {
		p.treble = append(p.treble, append(model.Bar(nil), treble...))
		p.bass = append(p.bass, append(model.Bar(nil), bass...))
	})
}

// SetBar overwrites one bar, growing the piece if needed.
func (p *Piece) SetBar(i int, treble, bass model.Bar) {
	p.mutate(func() {
		for len(p.treble) <= i {
			p.treble = append(p.treble, model.Bar{})
		}
		for len(p.bass) <= i {
			p.bass = append(p.bass, model.Bar{})
		}
		p.treble[i] = append(model.Bar(nil), treble...)
		p.bass[i] = append(model.Bar(nil), bass...)
	})
}

// Truncate keeps the first n bars.
func (p *Piece) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	p.mutate(func() {
		if n < len(p.treble) {
			p.treble = p.treble[:n]
		}
		if n < len(p.bass) {
			p.bass = p.bass[:n]
		}
	})
}
