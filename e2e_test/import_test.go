//go:build e2e
// +build e2e

package e2e_test

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jsphweid/staffgrid/cmd"
	"github.com/jsphweid/staffgrid/duration"
	"github.com/jsphweid/staffgrid/piece"
	"github.com/jsphweid/staffgrid/pitch"
	"github.com/jsphweid/staffgrid/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
	"go.uber.org/zap"
)

func TestImportWritesAPieceFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "two-voices.mid")

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(960)
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(90))
	tr.Add(0, midi.NoteOn(0, 64, 100))
	tr.Add(0, midi.NoteOn(0, 48, 100))
	tr.Add(960, midi.NoteOff(0, 64))
	tr.Add(0, midi.NoteOff(0, 48))
	tr.Close(0)
	require.NoError(t, s.Add(tr))
	require.NoError(t, s.WriteFile(src))

	out, err := cmd.ImportPiece(src, filepath.Join(dir, "pieces"))
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(filepath.Join(dir, "pieces", "two-voices.json"), out)

	p, err := piece.Load(out)
	require.NoError(t, err)
	assert.Equal(1, p.NumBars())
	treble, bass := p.Bars()
	assert.Equal([]pitch.Pitch{pitch.MustParse("E4")}, treble[0][0].Pitches)
	assert.Equal(duration.Quarter, treble[0][0].Duration)
	assert.Equal([]pitch.Pitch{pitch.MustParse("C3")}, bass[0][0].Pitches)
}

func TestPlaybackSinkFansOutToTheMIDIPort(t *testing.T) {
	var mu sync.Mutex
	var sent []midi.Message
	send := func(msg midi.Message) error {
		mu.Lock()
		defer mu.Unlock()
		sent = append(sent, msg)
		return nil
	}

	assert := assert.New(t)
	assert.IsType(sink.Log{}, cmd.PlaybackSink(zap.NewNop(), nil))

	out := cmd.PlaybackSink(zap.NewNop(), send)
	assert.IsType(sink.Multi{}, out)
	assert.NoError(out.Play([]pitch.Pitch{pitch.MustParse("A4")}, 90, time.Millisecond, time.Now()))
	assert.Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(sent) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	var ch, key, vel uint8
	assert.True(sent[0].GetNoteOn(&ch, &key, &vel))
	assert.Equal(uint8(69), key)
	assert.Equal(uint8(90), vel)
	assert.True(sent[1].GetNoteOff(&ch, &key, &vel))
}
