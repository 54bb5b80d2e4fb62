package commands

import (
	"github.com/spf13/cobra"

	"acidbase/internal/domain"
	"acidbase/internal/equilibrium"
)

// simulate: run a simulation on the server so it is stored.
func simulateCmd() *cobra.Command {
	var (
		pf     paramFlags
		format string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a simulation on the server and store it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cw, err := clientWire()
			if err != nil {
				return err
			}
			params := domain.NewSimulationParameters(pf.acid, pf.base, pf.ka, pf.samples)
			sim, res, err := cw.API.CreateSimulation(cmd.Context(), params)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), format, storedReport(sim, res))
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json, yaml or csv")
	return cmd
}

// storedReport rebuilds a curve report from the server's records.
func storedReport(sim domain.Simulation, res domain.Results) curveReport {
	return curveReport{
		ID:         sim.ID,
		Parameters: sim.Parameters.Equilibrium(),
		Summary: equilibrium.Summary{
			InitialPH:      res.ReactionKinetics.InitialPH,
			FinalPH:        res.ReactionKinetics.FinalPH,
			EquivalencePH:  res.DynamicPH,
			BufferCapacity: res.ReactionKinetics.BufferCapacity,
			PKa:            equilibrium.PKa(res.EquilibriumConstant),
		},
		Points: sim.Results,
	}
}
