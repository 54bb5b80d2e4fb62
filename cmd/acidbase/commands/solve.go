package commands

import (
	"github.com/spf13/cobra"

	"acidbase/internal/equilibrium"
)

type paramFlags struct {
	acid, base, ka float64
	samples        int
}

func (p *paramFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&p.acid, "acid", 0, "weak acid concentration (mol/L)")
	cmd.Flags().Float64Var(&p.base, "base", 0, "strong base concentration (mol/L)")
	cmd.Flags().Float64Var(&p.ka, "ka", 0, "acid dissociation constant")
	cmd.Flags().IntVar(&p.samples, "samples", 0, "sample intervals (default from config)")
	_ = cmd.MarkFlagRequired("acid")
	_ = cmd.MarkFlagRequired("base")
	_ = cmd.MarkFlagRequired("ka")
}

func (p *paramFlags) params() equilibrium.Parameters {
	return equilibrium.Parameters{AcidConcentration: p.acid, BaseConcentration: p.base, Ka: p.ka}
}

// solve: compute a curve without a server.
func solveCmd() *cobra.Command {
	var (
		pf     paramFlags
		format string
	)
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Compute a titration curve locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			samples := pf.samples
			if samples == 0 {
				samples = cfg.Solver.DefaultSamples
			}
			curve, err := equilibrium.Solve(pf.params(), samples)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), format, curveReport{
				Parameters: pf.params(),
				Summary:    curve.Summary,
				Points:     curve.Points,
			})
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json, yaml or csv")
	return cmd
}
