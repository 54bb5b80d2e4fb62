package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List your stored simulations (requires login)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cw, err := clientWire()
			if err != nil {
				return err
			}
			sims, err := cw.API.ListSimulations(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sims) == 0 {
				fmt.Fprintln(out, "No simulations yet")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tACID\tBASE\tKA\tEQUIVALENCE PH")
			for _, s := range sims {
				p := s.Parameters.Equilibrium()
				eq := "-"
				if n := len(s.Results); n > 0 {
					eq = fmt.Sprintf("%.3f", s.Results[(n-1)/2].PH)
				}
				fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%g\t%s\n",
					s.ID, s.CreatedAt.Local().Format(time.DateTime), p.AcidConcentration, p.BaseConcentration, p.Ka, eq)
			}
			return tw.Flush()
		},
	}
}
