package cmd

import (
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/bep/debounce"
	"github.com/jsphweid/staffgrid/clock"
	"github.com/jsphweid/staffgrid/grid"
	"github.com/jsphweid/staffgrid/logger"
	"github.com/jsphweid/staffgrid/match"
	"github.com/jsphweid/staffgrid/model"
	"github.com/jsphweid/staffgrid/pitch"
	"github.com/jsphweid/staffgrid/playback"
	"github.com/jsphweid/staffgrid/render"
	"github.com/jsphweid/staffgrid/session"
	"github.com/jsphweid/staffgrid/sink"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
	"go.uber.org/zap"
)

var (
	practiceIn    int
	practiceOut   int
	practiceMode  string
	practicePlay  bool
	practiceAlign bool
)

func init() {
	flags := practiceCmd.Flags()
	flags.IntVar(&practiceIn, "in", 0, "MIDI in port number")
	flags.IntVar(&practiceOut, "out", -1, "MIDI out port number for playback (-1 logs notes instead)")
	flags.StringVar(&practiceMode, "mode", match.Exact.String(), "exact or pitch-class")
	flags.BoolVar(&practicePlay, "play", false, "start playback right away")
	flags.BoolVar(&practiceAlign, "align", true, "snap onsets to the beat grid")
	rootCmd.AddCommand(practiceCmd)
}

var practiceCmd = &cobra.Command{
	Use:   "practice [piece]",
	Short: "Follows along with a MIDI keyboard",
	Long: `Listens to a MIDI in port and moves the selection cursor forward each time
the held keys match the next entry of the grid.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := piecePath(args)
		if err != nil {
			return err
		}
		return practice(cmd, path)
	},
}

// heldKeys tracks the keys currently down on the input device.
type heldKeys struct {
	mu   sync.Mutex
	keys map[uint8]bool
}

func (h *heldKeys) set(key uint8, down bool) []pitch.Pitch {
	h.mu.Lock()
	defer h.mu.Unlock()
	if down {
		h.keys[key] = true
	} else {
		delete(h.keys, key)
	}
	res := make([]pitch.Pitch, 0, len(h.keys))
	for k := range h.keys {
		res = append(res, pitch.FromKey(int(k)))
	}
	return res
}

// PlaybackSink logs every played note. With a send func the notes also go
// out on channel 1 of that MIDI port.
func PlaybackSink(l *zap.Logger, send func(midi.Message) error) playback.Sink {
	logged := sink.Log{Logger: logger.OrNop(l).Named("sink")}
	if send == nil {
		return logged
	}
	return sink.Multi{logged, sink.NewMIDIOut(clock.Real{}, send, 0)}
}

func practice(cmd *cobra.Command, path string) error {
	mode, err := match.ParseMode(practiceMode)
	if err != nil {
		return err
	}
	p, err := LoadPiece(path)
	if err != nil {
		return err
	}

	defer midi.CloseDriver()
	in, err := midi.InPort(practiceIn)
	if err != nil {
		return errors.Wrapf(err, "can't open MIDI in port %v", practiceIn)
	}

	var send func(midi.Message) error
	if practiceOut >= 0 {
		port, err := midi.OutPort(practiceOut)
		if err != nil {
			return errors.Wrapf(err, "can't open MIDI out port %v", practiceOut)
		}
		if send, err = midi.SendTo(port); err != nil {
			return err
		}
	}
	out := PlaybackSink(log, send)

	redraw := debounce.New(30 * time.Millisecond)
	screen := render.Func(func(g *grid.Grid, highlights []model.Highlight) {
		redraw(func() {
			fmt.Fprint(cmdOut, "\033[H\033[2J"+render.Format(g, highlights))
		})
	})

	sess := session.New(p,
		session.WithLogger(log),
		session.WithTempo(playback.FixedTempo(tempoFor(p))),
		session.WithSink(out),
		session.WithRenderer(screen),
		session.WithAlignment(practiceAlign),
		session.WithMatchMode(mode),
	)

	held := &heldKeys{keys: make(map[uint8]bool)}
	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		var ch, key, vel uint8
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			sess.MatchInput(held.set(key, true))
		case msg.GetNoteEnd(&ch, &key):
			sess.MatchInput(held.set(key, false))
		}
	})
	if err != nil {
		return errors.Wrap(err, "listening to MIDI in")
	}
	defer stop()

	if practicePlay {
		sess.Start()
	}
	log.Info("practicing", zap.String("piece", path), zap.Stringer("mode", mode))

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()
	sess.Stop()
	return nil
}
