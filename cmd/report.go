package cmd

import (
	"fmt"

	"github.com/jsphweid/staffgrid/file"
	"github.com/jsphweid/staffgrid/grid"
	"github.com/jsphweid/staffgrid/report"
	"github.com/jsphweid/staffgrid/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reportMax int

func init() {
	reportCmd.Flags().IntVar(&reportMax, "max", 0, "stop after this many pieces (0 for all)")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report [piece or dir]",
	Short: "Summarizes the grid of one piece or a directory of pieces",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := piecePath(args)
		if err != nil {
			return err
		}
		return runReport(path)
	},
}

func runReport(root string) error {
	paths, err := file.GatherPiecePaths(root, reportMax)
	if err != nil {
		return err
	}
	fileNums := file.CreateFileNumMap(paths)
	var bars []int
	for _, num := range util.SortedKeys(fileNums) {
		path := fileNums[num]
		p, err := LoadPiece(path)
		if err != nil {
			log.Warn("skipping piece", zap.String("path", path), zap.Error(err))
			continue
		}
		treble, bass := p.Bars()
		fmt.Fprintf(cmdOut, "#%v %v\n", num, path)
		r := report.Analyze(grid.BuildAll(treble, bass), treble, bass)
		r.Print(cmdOut)
		bars = append(bars, r.Bars)
	}
	fmt.Fprintf(cmdOut, "%v pieces, %v bars\n", len(bars), util.Sum(bars))
	return nil
}
