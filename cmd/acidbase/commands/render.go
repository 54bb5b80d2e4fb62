package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"acidbase/internal/equilibrium"
)

// Output formats for curves.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatCSV   = "csv"
)

type curveReport struct {
	ID         string                 `json:"id,omitempty" yaml:"id,omitempty"`
	Parameters equilibrium.Parameters `json:"parameters" yaml:"parameters"`
	Summary    equilibrium.Summary    `json:"summary" yaml:"summary"`
	Points     []equilibrium.Point    `json:"points" yaml:"points"`
}

func writeReport(w io.Writer, format string, r curveReport) error {
	switch format {
	case formatTable, "":
		return writeTable(w, r)
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case formatCSV:
		return writeCSV(w, r.Points)
	}
	return fmt.Errorf("unknown format %q (want table, json, yaml or csv)", format)
}

func writeTable(w io.Writer, r curveReport) error {
	if r.ID != "" {
		fmt.Fprintf(w, "Simulation %s\n", r.ID)
	}
	p := r.Parameters
	fmt.Fprintf(w, "Acid %g M, base %g M, Ka %g (pKa %.3f)\n\n", p.AcidConcentration, p.BaseConcentration, p.Ka, r.Summary.PKa)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ratio\tpH\tpOH\t[H+]\t[OH-]\tdiss %\tregime\t")
	for _, pt := range r.Points {
		fmt.Fprintf(tw, "%.2f\t%.3f\t%.3f\t%.3e\t%.3e\t%.3f\t%s\t\n",
			pt.VolumeRatio, pt.PH, pt.POH, pt.HydroniumConcentration, pt.HydroxideConcentration,
			pt.PercentDissociation, pt.Regime)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := r.Summary
	capacity := "unbounded"
	if s.BufferCapacity != nil {
		capacity = fmt.Sprintf("%.4f", *s.BufferCapacity)
	}
	_, err := fmt.Fprintf(w, "\nInitial pH %.3f, equivalence pH %.3f, final pH %.3f, buffer capacity %s\n",
		s.InitialPH, s.EquivalencePH, s.FinalPH, capacity)
	return err
}

func writeCSV(w io.Writer, points []equilibrium.Point) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"volumeRatio", "pH", "pOH", "hydroniumConcentration", "hydroxideConcentration", "percentDissociation", "regime",
	}); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, p := range points {
		if err := cw.Write([]string{
			f(p.VolumeRatio), f(p.PH), f(p.POH), f(p.HydroniumConcentration),
			f(p.HydroxideConcentration), f(p.PercentDissociation), p.Regime.String(),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
