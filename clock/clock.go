package clock

import (
	"sync"
	"time"

	"golang.org/x/exp/slices"
)

// Timer is a pending callback.
type Timer interface {
	Stop() bool
}

// Clock is the time source the scheduler re-arms itself on.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Real is the wall clock. Callbacks run on their own goroutine.
type Real struct{}

func (Real) Now() time.Time {
	return time.Now()
}

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Virtual is a manually driven clock. Callbacks run synchronously inside
// Advance, in due order, so tests see a deterministic single-threaded loop.
type Virtual struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*virtualTimer
}

type virtualTimer struct {
	v       *Virtual
	at      time.Time
	seq     int
	f       func()
	stopped bool
}

func (t *virtualTimer) Stop() bool {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

func (v *Virtual) AfterFunc(d time.Duration, f func()) Timer {
	v.mu.Lock()
	defer v.mu.Unlock()
	if d < 0 {
		d = 0
	}
	v.seq++
	t := &virtualTimer{v: v, at: v.now.Add(d), seq: v.seq, f: f}
	v.timers = append(v.timers, t)
	return t
}

// Advance moves time forward by d, firing every timer that falls due on the
// way, including timers armed by the callbacks themselves.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	end := v.now.Add(d)
	v.mu.Unlock()

	for {
		t := v.popDue(end)
		if t == nil {
			break
		}
		t.f()
	}

	v.mu.Lock()
	v.now = end
	v.mu.Unlock()
}

// Next fires the earliest pending timer, moving time to it. It reports false
// when nothing is pending.
func (v *Virtual) Next() bool {
	v.mu.Lock()
	v.prune()
	if len(v.timers) == 0 {
		v.mu.Unlock()
		return false
	}
	at := v.timers[0].at
	v.mu.Unlock()
	v.Advance(at.Sub(v.Now()))
	return true
}

// Pending counts armed, unstopped timers.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.prune()
	return len(v.timers)
}

func (v *Virtual) popDue(end time.Time) *virtualTimer {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.prune()
	if len(v.timers) == 0 || v.timers[0].at.After(end) {
		return nil
	}
	t := v.timers[0]
	v.timers = v.timers[1:]
	t.stopped = true
	if t.at.After(v.now) {
		v.now = t.at
	}
	return t
}

// prune drops stopped timers and keeps the rest in firing order.
func (v *Virtual) prune() {
	live := v.timers[:0]
	for _, t := range v.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	v.timers = live
	slices.SortStableFunc(v.timers, func(a, b *virtualTimer) bool {
		if !a.at.Equal(b.at) {
			return a.at.Before(b.at)
		}
		return a.seq < b.seq
	})
}
