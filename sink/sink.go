package sink

import (
	"sync"
	"time"

	"github.com/jsphweid/staffgrid/pitch"
	"github.com/jsphweid/staffgrid/playback"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Log writes every dispatched chord to a logger. Useful as a silent sink.
type Log struct {
	Logger *zap.Logger
}

func (l Log) Play(pitches []pitch.Pitch, velocity uint8, dur time.Duration, at time.Time) error {
	l.Logger.Info("play",
		zap.Stringers("pitches", pitches),
		zap.Uint8("velocity", velocity),
		zap.Duration("duration", dur),
		zap.Time("at", at))
	return nil
}

// Played is one call to Recorder.Play.
type Played struct {
	Pitches  []pitch.Pitch
	Velocity uint8
	Duration time.Duration
	At       time.Time
}

// Recorder keeps every call in memory.
type Recorder struct {
	mu     sync.Mutex
	played []Played
	// Err, when set, is returned from every Play after recording it.
	Err error
}

func (r *Recorder) Play(pitches []pitch.Pitch, velocity uint8, dur time.Duration, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.played = append(r.played, Played{
		Pitches:  append([]pitch.Pitch(nil), pitches...),
		Velocity: velocity,
		Duration: dur,
		At:       at,
	})
	return r.Err
}

func (r *Recorder) Played() []Played {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Played(nil), r.played...)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.played = nil
}

// Multi plays into every sink and combines their errors.
type Multi []playback.Sink

func (m Multi) Play(pitches []pitch.Pitch, velocity uint8, dur time.Duration, at time.Time) error {
	var err error
	for _, s := range m {
		err = multierr.Append(err, s.Play(pitches, velocity, dur, at))
	}
	return err
}
