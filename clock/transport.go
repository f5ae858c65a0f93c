package clock

import (
	"math"
	"time"

	"github.com/jsphweid/staffgrid/duration"
)

// TempoFunc reads the current tempo in beats per minute.
type TempoFunc func() float64

// Transport lays a beat grid over a Clock, anchored at the moment it was
// (re)started, and snaps instants forward onto that grid.
type Transport struct {
	Clock
	tempo     TempoFunc
	epoch     time.Time
	tolerance time.Duration
}

// NewTransport anchors the beat grid at c.Now(). Boundaries closer than
// tolerance behind now count as on time.
func NewTransport(c Clock, tempo TempoFunc, tolerance time.Duration) *Transport {
	return &Transport{Clock: c, tempo: tempo, epoch: c.Now(), tolerance: tolerance}
}

// Reset re-anchors the grid at now.
func (t *Transport) Reset() {
	t.epoch = t.Now()
}

func (t *Transport) Epoch() time.Time {
	return t.epoch
}

// AlignToNextPhase returns the next instant on the grid of phase lengths,
// never earlier than now.
func (t *Transport) AlignToNextPhase(phase duration.Code) time.Time {
	now := t.Now()
	bpm := t.tempo()
	if bpm <= 0 {
		return now
	}
	step := phase.Duration(bpm)
	if step <= 0 {
		return now
	}

	elapsed := now.Add(-t.tolerance).Sub(t.epoch)
	if elapsed < 0 {
		return now
	}
	n := math.Ceil(float64(elapsed) / float64(step))
	at := t.epoch.Add(time.Duration(n) * step)
	if at.Before(now) {
		return now
	}
	return at
}
