package cmd

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/staffgrid/constants"
	"github.com/jsphweid/staffgrid/logger"
	"github.com/jsphweid/staffgrid/midi"
	"github.com/jsphweid/staffgrid/piece"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logLevel  string
	logFormat string
	logFile   string
	tempoFlag float64

	log = zap.NewNop()

	cmdOut io.Writer = os.Stdout
)

var rootCmd = &cobra.Command{
	Use:   "staffgrid",
	Short: "Two-staff practice grid",
	Long: `staffgrid merges the treble and bass staves of a piece into one grid of
onsets, plays it back and follows along with what you play.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logger.New(logger.Config{
			Level:  logLevel,
			Format: logger.Format(logFormat),
			File:   logFile,
		})
		if err != nil {
			return err
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	flags.StringVar(&logFormat, "log-format", string(logger.ConsoleFormat), "console or json")
	flags.StringVar(&logFile, "log-file", "", "also write logs to this file")
	flags.Float64Var(&tempoFlag, "tempo", 0, "playback tempo in bpm (default: the piece's, then $STAFFGRID_TEMPO)")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

// piecePath picks the first arg, falling back to $STAFFGRID_PIECE.
func piecePath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if path := constants.GetPiecePath(); path != "" {
		return path, nil
	}
	return "", errors.New("no piece given: pass a path or set STAFFGRID_PIECE")
}

// LoadPiece reads a JSON piece or imports a MIDI file.
func LoadPiece(path string) (*piece.Piece, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi":
		s, err := midi.ReadMidiFile(path)
		if err != nil {
			return nil, err
		}
		p, err := midi.ToPiece(s, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "importing %s", path)
		}
		p.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return p, nil
	default:
		return piece.Load(path)
	}
}

func tempoFor(p *piece.Piece) float64 {
	switch {
	case tempoFlag > 0:
		return tempoFlag
	case p.Tempo > 0:
		return p.Tempo
	default:
		return constants.GetTempo()
	}
}
