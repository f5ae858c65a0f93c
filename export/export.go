package export

import (
	"io"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/jsphweid/staffgrid/grid"
	"github.com/jsphweid/staffgrid/model"
	"github.com/jsphweid/staffgrid/util"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const ticksPerQuarter = 960

const velocity = 100

type noteEvent struct {
	tick uint32
	off  bool
	key  uint8
}

// track renders one register of the grid. Bars follow each other without
// padding, the same way playback walks them.
func track(g *grid.Grid, clef model.Clef, channel uint8) smf.Track {
	var events []noteEvent
	var barStart float64
	for _, bar := range g.Bars {
		for _, entry := range bar {
			pitches, codes := entry.Onsets(clef)
			for i, p := range pitches {
				start := barStart + entry.StartTime
				end := start + codes[i].Beats()
				events = append(events,
					noteEvent{tick: toTicks(start), key: uint8(p.Key())},
					noteEvent{tick: toTicks(end), off: true, key: uint8(p.Key())})
			}
		}
		if n := len(bar); n > 0 {
			barStart += bar[n-1].EndTime
		}
	}

	// note-offs first so a repeated key can sound again on the same tick
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].off && !events[j].off
	})

	var tr smf.Track
	var last uint32
	for _, ev := range events {
		delta := ev.tick - last
		last = ev.tick
		if ev.off {
			tr.Add(delta, midi.NoteOff(channel, ev.key))
		} else {
			tr.Add(delta, midi.NoteOn(channel, ev.key, velocity))
		}
	}
	tr.Close(0)
	return tr
}

func toTicks(beats float64) uint32 {
	return uint32(util.Quantize(beats, ticksPerQuarter) * ticksPerQuarter)
}

// checkKeys rejects pitches that have no MIDI key number.
func checkKeys(g *grid.Grid) error {
	for b, bar := range g.Bars {
		for _, p := range grid.Pitches(bar) {
			if k := p.Key(); k < 0 || k > 127 {
				return errors.Errorf("bar %d: %v is outside the midi range", b+1, p)
			}
		}
	}
	return nil
}

// Build renders the grid as a three-track SMF: tempo and meter, treble, bass.
func Build(g *grid.Grid, bpm float64) (*smf.SMF, error) {
	if err := checkKeys(g); err != nil {
		return nil, err
	}
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var meta smf.Track
	meta.Add(0, smf.MetaMeter(4, 4))
	meta.Add(0, smf.MetaTempo(bpm))
	meta.Close(0)
	if err := s.Add(meta); err != nil {
		return nil, errors.Wrap(err, "adding tempo track")
	}
	for i, clef := range []model.Clef{model.Treble, model.Bass} {
		if err := s.Add(track(g, clef, uint8(i))); err != nil {
			return nil, errors.Wrapf(err, "adding %v track", clef)
		}
	}
	return s, nil
}

func Write(w io.Writer, g *grid.Grid, bpm float64) error {
	s, err := Build(g, bpm)
	if err != nil {
		return err
	}
	_, err = s.WriteTo(w)
	return errors.Wrap(err, "writing midi")
}

// WriteFile writes the grid into dir under a fresh uuid name and returns
// the path.
func WriteFile(dir string, g *grid.Grid, bpm float64) (string, error) {
	path := filepath.Join(dir, uuid.New().String()+".mid")
	if err := util.EnsureDir(path); err != nil {
		return "", errors.Wrap(err, "creating output dir")
	}
	s, err := Build(g, bpm)
	if err != nil {
		return "", err
	}
	if err := s.WriteFile(path); err != nil {
		return "", errors.Wrapf(err, "writing %s", path)
	}
	return path, nil
}
