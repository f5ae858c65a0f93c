package pitch

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidPitch = errors.New("invalid pitch")

type Letter uint8

const (
	C Letter = iota
	D
	E
	F
	G
	A
	B
)

var letterNames = [...]string{"C", "D", "E", "F", "G", "A", "B"}

// semitones above C for each natural letter
var letterSemitones = [...]int{0, 2, 4, 5, 7, 9, 11}

func (l Letter) String() string {
	if int(l) < len(letterNames) {
		return letterNames[l]
	}
	return "?"
}

type Accidental int8

const (
	Natural Accidental = 0
	Sharp   Accidental = 1
	Flat    Accidental = -1
)

func (a Accidental) String() string {
	switch a {
	case Sharp:
		return "#"
	case Flat:
		return "b"
	}
	return ""
}

// Pitch is a letter, an accidental and an octave. Octave 4 holds middle C.
type Pitch struct {
	Letter     Letter
	Accidental Accidental
	Octave     int
}

// Class is a pitch with the octave dropped.
type Class struct {
	Letter     Letter
	Accidental Accidental
}

func (c Class) String() string {
	return c.Letter.String() + c.Accidental.String()
}

// Less orders classes by letter, then accidental.
func (c Class) Less(o Class) bool {
	if c.Letter != o.Letter {
		return c.Letter < o.Letter
	}
	return c.Accidental < o.Accidental
}

func New(l Letter, a Accidental, octave int) Pitch {
	return Pitch{Letter: l, Accidental: a, Octave: octave}
}

func (p Pitch) String() string {
	return p.Letter.String() + p.Accidental.String() + strconv.Itoa(p.Octave)
}

func (p Pitch) Class() Class {
	return Class{Letter: p.Letter, Accidental: p.Accidental}
}

// Key returns the MIDI key number, C4 = 60.
func (p Pitch) Key() int {
	return (p.Octave+1)*12 + letterSemitones[p.Letter] + int(p.Accidental)
}

// Less orders pitches by octave, letter, then accidental. Spelling is kept
// apart so that enharmonic pitches stay distinct, matching Exact equality.
func (p Pitch) Less(o Pitch) bool {
	if p.Octave != o.Octave {
		return p.Octave < o.Octave
	}
	return p.Class().Less(o.Class())
}

// FromKey spells a MIDI key number, preferring sharps.
func FromKey(key int) Pitch {
	octave := key/12 - 1
	semitone := key % 12
	if semitone < 0 {
		semitone += 12
		octave--
	}
	for i := len(letterSemitones) - 1; i >= 0; i-- {
		if letterSemitones[i] == semitone {
			return Pitch{Letter: Letter(i), Octave: octave}
		}
		if letterSemitones[i] == semitone-1 {
			return Pitch{Letter: Letter(i), Accidental: Sharp, Octave: octave}
		}
	}
	return Pitch{Octave: octave}
}

// Parse reads names like "C4", "F#3" or "Bb5". The letter is case
// insensitive, the octave may be negative.
func Parse(s string) (Pitch, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Pitch{}, errors.Wrapf(ErrInvalidPitch, "%q", s)
	}

	var p Pitch
	switch strings.ToUpper(s[:1]) {
	case "C":
		p.Letter = C
	case "D":
		p.Letter = D
	case "E":
		p.Letter = E
	case "F":
		p.Letter = F
	case "G":
		p.Letter = G
	case "A":
		p.Letter = A
	case "B":
		p.Letter = B
	default:
		return Pitch{}, errors.Wrapf(ErrInvalidPitch, "%q", s)
	}

	rest := s[1:]
	switch {
	case strings.HasPrefix(rest, "#"):
		p.Accidental = Sharp
		rest = rest[1:]
	case strings.HasPrefix(rest, "b"):
		p.Accidental = Flat
		rest = rest[1:]
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return Pitch{}, errors.Wrapf(ErrInvalidPitch, "%q", s)
	}
	p.Octave = octave
	return p, nil
}

// MustParse is Parse for literals in tests and tables.
func MustParse(s string) Pitch {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseAll parses every name or returns the first error.
func ParseAll(names []string) ([]Pitch, error) {
	res := make([]Pitch, 0, len(names))
	for _, n := range names {
		p, err := Parse(n)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, nil
}

func (p Pitch) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pitch) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
