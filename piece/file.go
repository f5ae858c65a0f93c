package piece

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/jsphweid/staffgrid/duration"
	"github.com/jsphweid/staffgrid/model"
	"github.com/jsphweid/staffgrid/pitch"
	"github.com/pkg/errors"
)

const pauseWord = "pause"

// fileEvent is one note event on disk. "pitches" may be a single name, a
// list of names, or the word "Pause".
type fileEvent struct {
	Pitches  pitchList     `json:"pitches"`
	Pause    bool          `json:"pause,omitempty"`
	Duration duration.Code `json:"duration"`
}

type pitchList struct {
	names []string
	pause bool
}

func (l *pitchList) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		if strings.EqualFold(one, pauseWord) {
			l.pause = true
			return nil
		}
		l.names = []string{one}
		return nil
	}
	return json.Unmarshal(b, &l.names)
}

func (l pitchList) MarshalJSON() ([]byte, error) {
	if l.names == nil {
		return []byte("null"), nil
	}
	return json.Marshal(l.names)
}

type fileFormat struct {
	Title  string        `json:"title,omitempty"`
	Tempo  float64       `json:"tempo,omitempty"`
	Treble [][]fileEvent `json:"treble"`
	Bass   [][]fileEvent `json:"bass"`
}

func toBars(bars [][]fileEvent) ([]model.Bar, error) {
	res := make([]model.Bar, len(bars))
	for i, bar := range bars {
		res[i] = make(model.Bar, 0, len(bar))
		for j, fe := range bar {
			if !fe.Duration.Valid() {
				return nil, errors.Wrapf(duration.ErrInvalidCode, "bar %d event %d: %q", i, j, string(fe.Duration))
			}
			pitches, err := pitch.ParseAll(fe.Pitches.names)
			if err != nil {
				return nil, errors.Wrapf(err, "bar %d event %d", i, j)
			}
			if fe.Pause || fe.Pitches.pause || len(pitches) == 0 {
				res[i] = append(res[i], model.Pause(fe.Duration))
				continue
			}
			res[i] = append(res[i], model.Note(fe.Duration, pitches...))
		}
	}
	return res, nil
}

func fromBars(bars []model.Bar) [][]fileEvent {
	res := make([][]fileEvent, len(bars))
	for i, bar := range bars {
		res[i] = make([]fileEvent, 0, len(bar))
		for _, ev := range bar {
			fe := fileEvent{Duration: ev.Duration, Pause: ev.IsPause()}
			if !fe.Pause {
				for _, p := range ev.Pitches {
					fe.Pitches.names = append(fe.Pitches.names, p.String())
				}
			}
			res[i] = append(res[i], fe)
		}
	}
	return res
}

// Decode reads a piece in the JSON file format.
func Decode(r io.Reader) (*Piece, error) {
	var ff fileFormat
	if err := json.NewDecoder(r).Decode(&ff); err != nil {
		return nil, errors.Wrap(err, "decode piece")
	}
	treble, err := toBars(ff.Treble)
	if err != nil {
		return nil, errors.Wrap(err, "treble")
	}
	bass, err := toBars(ff.Bass)
	if err != nil {
		return nil, errors.Wrap(err, "bass")
	}
	p := New(treble, bass)
	p.Title = ff.Title
	p.Tempo = ff.Tempo
	return p, nil
}

func Encode(w io.Writer, p *Piece) error {
	treble, bass := p.Bars()
	ff := fileFormat{
		Title:  p.Title,
		Tempo:  p.Tempo,
		Treble: fromBars(treble),
		Bass:   fromBars(bass),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(ff), "encode piece")
}

func Load(path string) (*Piece, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open piece")
	}
	defer f.Close()

	p, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return p, nil
}

func Save(path string, p *Piece) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create piece file")
	}
	defer f.Close()
	return Encode(f, p)
}
