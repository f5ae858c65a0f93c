package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jsphweid/staffgrid/constants"
	"github.com/jsphweid/staffgrid/piece"
	"github.com/jsphweid/staffgrid/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importDir string

func init() {
	importCmd.Flags().StringVar(&importDir, "out", constants.GetOutDir(), "directory to write into")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <midi file>",
	Short: "Converts a MIDI file into a piece file",
	Long: `Quantizes a MIDI file onto sixteenths, splits it at middle C and writes
the result as a JSON piece that can be edited by hand.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := ImportPiece(args[0], importDir)
		if err != nil {
			return err
		}
		log.Info("imported", zap.String("source", args[0]), zap.String("piece", out))
		fmt.Fprintln(cmdOut, out)
		return nil
	},
}

// ImportPiece loads src and saves it into dir as <name>.json, returning the
// new path.
func ImportPiece(src, dir string) (string, error) {
	p, err := LoadPiece(src)
	if err != nil {
		return "", err
	}
	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ".json"
	path := filepath.Join(dir, name)
	if err := util.EnsureDir(path); err != nil {
		return "", errors.Wrap(err, "creating output dir")
	}
	if err := piece.Save(path, p); err != nil {
		return "", errors.Wrapf(err, "saving %s", path)
	}
	return path, nil
}
