package equilibrium

import (
	"fmt"
	"math"
)

// Solve sweeps the mixing ratio from 0 to 1 in sampleCount steps and returns
// sampleCount+1 points plus their summary.
func Solve(params Parameters, sampleCount int) (*Curve, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if sampleCount < MinSampleCount || sampleCount > MaxSampleCount {
		return nil, &InvalidParameterError{
			Field:  "sampleCount",
			Value:  float64(sampleCount),
			Reason: fmt.Sprintf("must be between %d and %d", MinSampleCount, MaxSampleCount),
		}
	}

	points := make([]Point, 0, sampleCount+1)
	for i := 0; i <= sampleCount; i++ {
		ratio := float64(i) / float64(sampleCount)
		p, err := samplePoint(params, ratio)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	return &Curve{
		Points:  points,
		Summary: summarize(points, params.Ka),
	}, nil
}

// SolveDefault is Solve with DefaultSampleCount.
func SolveDefault(params Parameters) (*Curve, error) {
	return Solve(params, DefaultSampleCount)
}

// Validate checks the parameters without running a sweep.
func (p Parameters) Validate() error {
	if math.IsNaN(p.Ka) || math.IsInf(p.Ka, 0) || p.Ka <= 0 {
		return &InvalidParameterError{Field: "ka", Value: p.Ka, Reason: "must be a positive finite number"}
	}
	if err := checkConcentration("acidConcentration", p.AcidConcentration); err != nil {
		return err
	}
	return checkConcentration("baseConcentration", p.BaseConcentration)
}

// PKa returns -log10(ka).
func PKa(ka float64) float64 { return -math.Log10(ka) }

func checkConcentration(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return &InvalidParameterError{Field: field, Value: v, Reason: "must be a non-negative finite number"}
	}
	return nil
}

func samplePoint(params Parameters, ratio float64) (Point, error) {
	acid := params.AcidConcentration * (1 - ratio)
	base := params.BaseConcentration * ratio

	var (
		hydronium, pH float64
		regime        Regime
	)
	switch {
	case math.Abs(acid-base) < EquivalenceTolerance:
		regime = RegimeEquivalence
		if acid > 0 {
			pH = NeutralPH + 0.5*math.Log10(acid/params.Ka)
		} else {
			// nothing left in solution but water
			pH = NeutralPH
		}
		hydronium = math.Pow(10, -pH)
	case acid > base:
		regime = RegimeExcessAcid
		h, disc, ok := excessAcidHydronium(acid-base, params.Ka)
		if !ok {
			return Point{}, &NoSolutionError{Ratio: ratio, Regime: regime, Discriminant: disc}
		}
		hydronium = h
		pH = -math.Log10(hydronium)
	default:
		regime = RegimeExcessBase
		hydronium = Kw / (base - acid)
		pH = -math.Log10(hydronium)
	}
	if !finitePositive(hydronium) || !finitePositive(Kw/hydronium) || math.IsNaN(pH) || math.IsInf(pH, 0) {
		return Point{}, &NoSolutionError{Ratio: ratio, Regime: regime, Hydronium: hydronium}
	}

	dissociation := 0.0
	if acid > 0 {
		dissociation = hydronium / acid * 100
	}

	return Point{
		VolumeRatio:            ratio,
		PH:                     pH,
		POH:                    PHScale - pH,
		HydroniumConcentration: hydronium,
		HydroxideConcentration: Kw / hydronium,
		PercentDissociation:    dissociation,
		Regime:                 regime,
	}, nil
}

// excessAcidHydronium solves [H+]² + Ka[H+] − Ka·c − Kw = 0 for the positive
// root. ok is false when the discriminant admits no real root.
func excessAcidHydronium(c, ka float64) (h, disc float64, ok bool) {
	b := ka
	k := -(ka*c + Kw)
	disc = b*b - 4*k
	if disc < 0 || math.IsNaN(disc) {
		return 0, disc, false
	}
	return (-b + math.Sqrt(disc)) / 2, disc, true
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func summarize(points []Point, ka float64) Summary {
	n := len(points) - 1
	q := n / 4

	s := Summary{
		InitialPH:     points[0].PH,
		FinalPH:       points[n].PH,
		EquivalencePH: points[n/2].PH,
		PKa:           PKa(ka),
	}
	if slope := points[q+1].PH - points[q-1].PH; slope != 0 {
		capacity := math.Abs(1 / slope)
		s.BufferCapacity = &capacity
	}
	return s
}
