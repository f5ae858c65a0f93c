package cmd

import (
	"encoding/json"

	"github.com/jsphweid/staffgrid/grid"
	"github.com/jsphweid/staffgrid/render"
	"github.com/spf13/cobra"
)

var inspectJSON bool

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print the grid entries as JSON")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [piece]",
	Short: "Prints the grid of a piece",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := piecePath(args)
		if err != nil {
			return err
		}
		return inspect(path)
	},
}

func inspect(path string) error {
	p, err := LoadPiece(path)
	if err != nil {
		return err
	}
	g := grid.BuildAll(p.Bars())
	if inspectJSON {
		enc := json.NewEncoder(cmdOut)
		enc.SetIndent("", "  ")
		return enc.Encode(g.Bars)
	}
	render.NewText(cmdOut, log).Render(g, nil)
	return nil
}
