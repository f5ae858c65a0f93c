package sink

import (
	"sync"
	"time"

	"github.com/jsphweid/staffgrid/clock"
	"github.com/jsphweid/staffgrid/pitch"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
)

// MIDIOut sends note on and note off messages. Both are armed on the clock,
// so an onset aligned into the future still starts on time.
type MIDIOut struct {
	clock   clock.Clock
	send    func(midi.Message) error
	channel uint8

	mu   sync.Mutex
	errs []error
}

// NewMIDIOut wraps a send func such as the one returned by midi.SendTo.
func NewMIDIOut(c clock.Clock, send func(midi.Message) error, channel uint8) *MIDIOut {
	if c == nil {
		c = clock.Real{}
	}
	return &MIDIOut{clock: c, send: send, channel: channel}
}

func (m *MIDIOut) Play(pitches []pitch.Pitch, velocity uint8, dur time.Duration, at time.Time) error {
	keys := make([]uint8, 0, len(pitches))
	for _, p := range pitches {
		k := p.Key()
		if k < 0 || k > 127 {
			return errors.Errorf("%v is outside the midi range", p)
		}
		keys = append(keys, uint8(k))
	}

	wait := at.Sub(m.clock.Now())
	on := func() {
		for _, k := range keys {
			m.record(m.send(midi.NoteOn(m.channel, k, velocity)))
		}
	}
	off := func() {
		for _, k := range keys {
			m.record(m.send(midi.NoteOff(m.channel, k)))
		}
	}
	if wait > 0 {
		m.clock.AfterFunc(wait, on)
	} else {
		wait = 0
		on()
	}
	m.clock.AfterFunc(wait+dur, off)
	return m.takeErr()
}

func (m *MIDIOut) record(err error) {
	if err == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, err)
}

// takeErr reports the first send failure since the last call. Failures of
// delayed messages surface on the next Play.
func (m *MIDIOut) takeErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.errs) == 0 {
		return nil
	}
	err := errors.Wrap(m.errs[0], "sending midi")
	m.errs = nil
	return err
}
