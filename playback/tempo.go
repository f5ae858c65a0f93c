package playback

import "sync"

// Tempo is read once at the start of every iteration.
type Tempo interface {
	BPM() float64
}

type FixedTempo float64

func (t FixedTempo) BPM() float64 {
	return float64(t)
}

// TempoVar is a tempo that can be changed while playing. A change applies
// from the next iteration; a delay already armed is not adjusted.
type TempoVar struct {
	mu  sync.Mutex
	bpm float64
}

func NewTempoVar(bpm float64) *TempoVar {
	return &TempoVar{bpm: bpm}
}

func (t *TempoVar) BPM() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bpm
}

func (t *TempoVar) Set(bpm float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bpm = bpm
}
