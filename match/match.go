package match

import (
	"fmt"
	"strings"

	"github.com/jsphweid/staffgrid/pitch"
	"golang.org/x/exp/slices"
)

type Mode int

const (
	// Exact compares letter, accidental and octave.
	Exact Mode = iota
	// PitchClass ignores the octave.
	PitchClass
)

func (m Mode) String() string {
	if m == PitchClass {
		return "pitch-class"
	}
	return "exact"
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exact", "":
		return Exact, nil
	case "pitch-class", "pitchclass", "class":
		return PitchClass, nil
	}
	return Exact, fmt.Errorf("unknown match mode %q", s)
}

// normalize reduces, de-duplicates and sorts a pitch set into comparable
// names.
func normalize(pitches []pitch.Pitch, mode Mode) []string {
	ps := slices.Clone(pitches)
	if mode == PitchClass {
		for i := range ps {
			ps[i].Octave = 0
		}
	}
	slices.SortFunc(ps, func(a, b pitch.Pitch) bool { return a.Less(b) })
	ps = slices.Compact(ps)

	res := make([]string, len(ps))
	for i, p := range ps {
		if mode == PitchClass {
			res[i] = p.Class().String()
		} else {
			res[i] = p.String()
		}
	}
	return res
}

// Sets reports whether held sounds the same set as target under mode.
func Sets(held, target []pitch.Pitch, mode Mode) bool {
	return slices.Equal(normalize(held, mode), normalize(target, mode))
}

// Key renders a pitch set as a sorted, dash-joined key.
func Key(pitches []pitch.Pitch, mode Mode) string {
	return strings.Join(normalize(pitches, mode), "-")
}
