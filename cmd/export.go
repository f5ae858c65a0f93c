package cmd

import (
	"fmt"

	"github.com/jsphweid/staffgrid/constants"
	"github.com/jsphweid/staffgrid/export"
	"github.com/jsphweid/staffgrid/grid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportDir string

func init() {
	exportCmd.Flags().StringVar(&exportDir, "out", constants.GetOutDir(), "directory to write into")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [piece]",
	Short: "Writes the grid of a piece as a standard MIDI file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := piecePath(args)
		if err != nil {
			return err
		}
		p, err := LoadPiece(path)
		if err != nil {
			return err
		}
		out, err := export.WriteFile(exportDir, grid.BuildAll(p.Bars()), tempoFor(p))
		if err != nil {
			return err
		}
		log.Info("exported", zap.String("piece", path), zap.String("file", out))
		fmt.Fprintln(cmdOut, out)
		return nil
	},
}
