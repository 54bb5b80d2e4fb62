package equilibrium_test

import (
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"acidbase/internal/equilibrium"
)

var aceticAcid = equilibrium.Parameters{
	AcidConcentration: 0.1,
	BaseConcentration: 0.1,
	Ka:                1.8e-5,
}

func mustSolve(t *testing.T, p equilibrium.Parameters, n int) *equilibrium.Curve {
	t.Helper()
	c, err := equilibrium.Solve(p, n)
	if err != nil {
		t.Fatalf("Solve(%+v, %d): %v", p, n, err)
	}
	return c
}

func TestSolve_PointCountAndRatios(t *testing.T) {
	c := mustSolve(t, aceticAcid, equilibrium.DefaultSampleCount)
	if len(c.Points) != equilibrium.DefaultSampleCount+1 {
		t.Fatalf("want %d points, got %d", equilibrium.DefaultSampleCount+1, len(c.Points))
	}
	if c.Points[0].VolumeRatio != 0 || c.Points[len(c.Points)-1].VolumeRatio != 1 {
		t.Fatalf("sweep must span [0,1], got [%g,%g]",
			c.Points[0].VolumeRatio, c.Points[len(c.Points)-1].VolumeRatio)
	}
}

func TestSolve_WaterBalance(t *testing.T) {
	for _, p := range []equilibrium.Parameters{
		aceticAcid,
		{AcidConcentration: 0.05, BaseConcentration: 0.2, Ka: 6.3e-5},
		{AcidConcentration: 1.0, BaseConcentration: 0.5, Ka: 1.3e-3},
	} {
		c := mustSolve(t, p, 200)
		for i, pt := range c.Points {
			if !scalar.EqualWithinRel(pt.HydroniumConcentration*pt.HydroxideConcentration, equilibrium.Kw, 1e-9) {
				t.Fatalf("%+v point %d: [H+][OH-] = %g", p, i, pt.HydroniumConcentration*pt.HydroxideConcentration)
			}
			if !scalar.EqualWithinAbs(pt.PH+pt.POH, equilibrium.PHScale, 1e-9) {
				t.Fatalf("%+v point %d: pH+pOH = %g", p, i, pt.PH+pt.POH)
			}
			if pt.HydroniumConcentration <= 0 || pt.HydroxideConcentration <= 0 {
				t.Fatalf("%+v point %d: non-positive concentration", p, i)
			}
		}
	}
}

func TestSolve_MonotonePH(t *testing.T) {
	const eps = 1e-9
	c := mustSolve(t, aceticAcid, equilibrium.DefaultSampleCount)
	for i := 1; i < len(c.Points); i++ {
		if c.Points[i].PH < c.Points[i-1].PH-eps {
			t.Fatalf("pH drops between ratio %g (%g) and %g (%g)",
				c.Points[i-1].VolumeRatio, c.Points[i-1].PH, c.Points[i].VolumeRatio, c.Points[i].PH)
		}
	}
}

func TestSolve_InitialPointIsWeakAcid(t *testing.T) {
	c := mustSolve(t, aceticAcid, equilibrium.DefaultSampleCount)
	first := c.Points[0]
	if first.Regime != equilibrium.RegimeExcessAcid {
		t.Fatalf("want excess-acid regime at ratio 0, got %s", first.Regime)
	}
	if math.Abs(first.PH-2.87) > 0.01 {
		t.Fatalf("want pH ≈ 2.87, got %g", first.PH)
	}
	if c.Summary.InitialPH != first.PH {
		t.Fatalf("summary initial pH %g != first point %g", c.Summary.InitialPH, first.PH)
	}
}

func TestSolve_EquivalencePoint(t *testing.T) {
	c := mustSolve(t, aceticAcid, equilibrium.DefaultSampleCount)
	mid := c.Points[equilibrium.DefaultSampleCount/2]
	if mid.Regime != equilibrium.RegimeEquivalence {
		t.Fatalf("want equivalence regime at ratio 0.5, got %s", mid.Regime)
	}
	if mid.PH <= 7 {
		t.Fatalf("weak acid / strong base equivalence pH must exceed 7, got %g", mid.PH)
	}
	want := 7 + 0.5*math.Log10(0.05/1.8e-5)
	if !scalar.EqualWithinAbs(mid.PH, want, 1e-12) {
		t.Fatalf("want %g, got %g", want, mid.PH)
	}
	if c.Summary.EquivalencePH != mid.PH {
		t.Fatalf("summary equivalence pH %g != midpoint %g", c.Summary.EquivalencePH, mid.PH)
	}
}

func TestSolve_ExcessBaseTail(t *testing.T) {
	c := mustSolve(t, aceticAcid, equilibrium.DefaultSampleCount)
	last := c.Points[len(c.Points)-1]
	if last.Regime != equilibrium.RegimeExcessBase {
		t.Fatalf("want excess-base regime at ratio 1, got %s", last.Regime)
	}
	if !scalar.EqualWithinAbs(last.PH, 13, 1e-9) {
		t.Fatalf("0.1 M hydroxide should give pH 13, got %g", last.PH)
	}
	if last.PercentDissociation != 0 {
		t.Fatalf("no acid left, want 0%% dissociation, got %g", last.PercentDissociation)
	}
	if c.Summary.FinalPH != last.PH {
		t.Fatalf("summary final pH %g != last point %g", c.Summary.FinalPH, last.PH)
	}
}

func TestSolve_PercentDissociationRange(t *testing.T) {
	c := mustSolve(t, aceticAcid, equilibrium.DefaultSampleCount)
	for _, pt := range c.Points {
		if pt.PercentDissociation < 0 || pt.PercentDissociation > 100 {
			t.Fatalf("ratio %g: dissociation %g outside [0,100]", pt.VolumeRatio, pt.PercentDissociation)
		}
	}
}

func TestSolve_Summary(t *testing.T) {
	c := mustSolve(t, aceticAcid, equilibrium.DefaultSampleCount)
	if !scalar.EqualWithinAbs(c.Summary.PKa, -math.Log10(1.8e-5), 1e-12) {
		t.Fatalf("pKa = %g", c.Summary.PKa)
	}
	if c.Summary.BufferCapacity == nil {
		t.Fatal("want a finite buffer capacity")
	}
	want := math.Abs(1 / (c.Points[26].PH - c.Points[24].PH))
	if *c.Summary.BufferCapacity != want || want <= 0 {
		t.Fatalf("buffer capacity = %g, want %g", *c.Summary.BufferCapacity, want)
	}
}

func TestSolve_FlatCurveHasUnboundedCapacity(t *testing.T) {
	// no acid and no base: every sample is neutral water
	c := mustSolve(t, equilibrium.Parameters{Ka: 1e-5}, 8)
	for _, pt := range c.Points {
		if pt.PH != equilibrium.NeutralPH {
			t.Fatalf("ratio %g: want neutral pH, got %g", pt.VolumeRatio, pt.PH)
		}
	}
	if c.Summary.BufferCapacity != nil {
		t.Fatalf("want nil buffer capacity, got %g", *c.Summary.BufferCapacity)
	}
}

func TestSolve_MinimumSampleCount(t *testing.T) {
	c := mustSolve(t, aceticAcid, equilibrium.MinSampleCount)
	if len(c.Points) != equilibrium.MinSampleCount+1 {
		t.Fatalf("want %d points, got %d", equilibrium.MinSampleCount+1, len(c.Points))
	}
}

func TestSolve_InvalidParameters(t *testing.T) {
	cases := []struct {
		name  string
		p     equilibrium.Parameters
		n     int
		field string
	}{
		{"zero ka", equilibrium.Parameters{AcidConcentration: 0.1, BaseConcentration: 0.1}, 100, "ka"},
		{"negative ka", equilibrium.Parameters{AcidConcentration: 0.1, BaseConcentration: 0.1, Ka: -1}, 100, "ka"},
		{"nan ka", equilibrium.Parameters{AcidConcentration: 0.1, Ka: math.NaN()}, 100, "ka"},
		{"negative acid", equilibrium.Parameters{AcidConcentration: -0.1, BaseConcentration: 0.1, Ka: 1e-5}, 100, "acidConcentration"},
		{"negative base", equilibrium.Parameters{AcidConcentration: 0.1, BaseConcentration: -0.1, Ka: 1e-5}, 100, "baseConcentration"},
		{"infinite base", equilibrium.Parameters{AcidConcentration: 0.1, BaseConcentration: math.Inf(1), Ka: 1e-5}, 100, "baseConcentration"},
		{"too few samples", aceticAcid, 3, "sampleCount"},
		{"too many samples", aceticAcid, equilibrium.MaxSampleCount + 1, "sampleCount"},
		{"max int samples", aceticAcid, math.MaxInt, "sampleCount"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := equilibrium.Solve(tc.p, tc.n)
			var ipe *equilibrium.InvalidParameterError
			if !errors.As(err, &ipe) {
				t.Fatalf("want InvalidParameterError, got %v", err)
			}
			if ipe.Field != tc.field {
				t.Fatalf("want field %q, got %q", tc.field, ipe.Field)
			}
		})
	}
}

func TestSolve_MaxSampleCount(t *testing.T) {
	c := mustSolve(t, aceticAcid, equilibrium.MaxSampleCount)
	if len(c.Points) != equilibrium.MaxSampleCount+1 {
		t.Fatalf("want %d points, got %d", equilibrium.MaxSampleCount+1, len(c.Points))
	}
}

func TestSolve_OutOfRangeHydronium(t *testing.T) {
	// acid/Ka overflows at the equivalence point
	p := equilibrium.Parameters{AcidConcentration: 0.1, BaseConcentration: 0.1, Ka: 5e-324}
	c, err := equilibrium.Solve(p, 100)
	if c != nil {
		t.Fatalf("want no curve, got %d points", len(c.Points))
	}
	var nse *equilibrium.NoSolutionError
	if !errors.As(err, &nse) {
		t.Fatalf("want NoSolutionError, got %v", err)
	}
	if nse.Ratio != 0.5 || nse.Regime != equilibrium.RegimeEquivalence {
		t.Fatalf("want equivalence at ratio 0.5, got %s at %g", nse.Regime, nse.Ratio)
	}
}

func TestSolve_PointsAreFinite(t *testing.T) {
	for _, ka := range []float64{1e-300, 1e-14, 1.8e-5, 1, 1e10} {
		c, err := equilibrium.Solve(equilibrium.Parameters{AcidConcentration: 0.1, BaseConcentration: 0.1, Ka: ka}, 100)
		if err != nil {
			var nse *equilibrium.NoSolutionError
			if !errors.As(err, &nse) {
				t.Fatalf("ka=%g: unexpected error %v", ka, err)
			}
			continue
		}
		for _, pt := range c.Points {
			for _, v := range []float64{pt.PH, pt.POH, pt.HydroniumConcentration, pt.HydroxideConcentration} {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("ka=%g ratio=%g: non-finite value in %+v", ka, pt.VolumeRatio, pt)
				}
			}
			if pt.HydroniumConcentration <= 0 || pt.HydroxideConcentration <= 0 {
				t.Fatalf("ka=%g ratio=%g: non-positive concentration in %+v", ka, pt.VolumeRatio, pt)
			}
		}
	}
}

func TestSolve_Deterministic(t *testing.T) {
	want := mustSolve(t, aceticAcid, 64)

	var wg sync.WaitGroup
	results := make([]*equilibrium.Curve, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := equilibrium.Solve(aceticAcid, 64)
			if err == nil {
				results[i] = c
			}
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("run %d differs from the reference run", i)
		}
	}
}

func TestRegime_TextRoundTrip(t *testing.T) {
	for _, r := range []equilibrium.Regime{
		equilibrium.RegimeExcessAcid, equilibrium.RegimeEquivalence, equilibrium.RegimeExcessBase,
	} {
		b, err := r.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText: %v", err)
		}
		var got equilibrium.Regime
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", b, err)
		}
		if got != r {
			t.Fatalf("want %s, got %s", r, got)
		}
	}
	var r equilibrium.Regime
	if err := r.UnmarshalText([]byte("buffer")); err == nil {
		t.Fatal("expected error for unknown regime")
	}
}

func TestExcessAcidHydronium_NegativeDiscriminant(t *testing.T) {
	// a negative net acid concentration has no physical root
	_, disc, ok := equilibrium.ExcessAcidHydronium(-1, 1e-5)
	if ok {
		t.Fatal("expected no real root")
	}
	if disc >= 0 {
		t.Fatalf("want negative discriminant, got %g", disc)
	}

	err := error(&equilibrium.NoSolutionError{Ratio: 0.25, Discriminant: disc})
	var nse *equilibrium.NoSolutionError
	if !errors.As(err, &nse) || nse.Ratio != 0.25 {
		t.Fatalf("errors.As lost the ratio: %v", err)
	}
}

func TestExcessAcidHydronium_PositiveRoot(t *testing.T) {
	h, _, ok := equilibrium.ExcessAcidHydronium(0.1, 1.8e-5)
	if !ok {
		t.Fatal("expected a real root")
	}
	residual := h*h + 1.8e-5*h - 1.8e-5*0.1 - equilibrium.Kw
	if math.Abs(residual) > 1e-15 {
		t.Fatalf("root does not satisfy the quadratic, residual %g", residual)
	}
}
