package midi

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	var blank smf.SMF
	var err error

	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s, e = &blank, fmt.Errorf("parsing midi file panicked: %v", r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return &blank, errors.Wrap(err, "Error reading midi file")
	}

	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return &blank, errors.Wrap(err, "Error parsing midi file")
	}

	return res, nil
}
