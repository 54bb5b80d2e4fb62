package commands

import (
	"github.com/spf13/cobra"
)

func showCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored simulation and its results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cw, err := clientWire()
			if err != nil {
				return err
			}
			sim, err := cw.API.GetSimulation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res, err := cw.API.GetResults(cmd.Context(), sim.ID)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), format, storedReport(sim, res))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json, yaml or csv")
	return cmd
}
