package equilibrium

import "fmt"

const (
	// Kw is the ionic product of water at 25 °C.
	Kw = 1.0e-14

	// PHScale is pH + pOH at 25 °C.
	PHScale = 14.0

	// NeutralPH is the pH of pure water.
	NeutralPH = 7.0

	// EquivalenceTolerance is the largest |Ca − Cb| still treated as the
	// equivalence point.
	EquivalenceTolerance = 1e-10

	// DefaultSampleCount is the number of steps in a sweep when the caller
	// does not choose one.
	DefaultSampleCount = 100

	// MinSampleCount keeps the quarter-point neighbourhood used for the
	// buffer capacity inside the curve.
	MinSampleCount = 4

	// MaxSampleCount bounds the size of a single sweep.
	MaxSampleCount = 100_000
)

// Regime names the chemistry used for a sample.
type Regime int

const (
	RegimeExcessAcid Regime = iota
	RegimeEquivalence
	RegimeExcessBase
)

func (r Regime) String() string {
	switch r {
	case RegimeExcessAcid:
		return "excess-acid"
	case RegimeEquivalence:
		return "equivalence"
	case RegimeExcessBase:
		return "excess-base"
	default:
		return "unknown"
	}
}

// MarshalText encodes the regime by name.
func (r Regime) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText mirrors MarshalText.
func (r *Regime) UnmarshalText(b []byte) error {
	switch string(b) {
	case "excess-acid":
		*r = RegimeExcessAcid
	case "equivalence":
		*r = RegimeEquivalence
	case "excess-base":
		*r = RegimeExcessBase
	default:
		return fmt.Errorf("unknown regime %q", b)
	}
	return nil
}

// Parameters describe a titration. AcidConcentration is the weak acid before
// mixing, BaseConcentration the titrant at full titration (ratio 1), both
// molar.
type Parameters struct {
	AcidConcentration float64 `json:"acidConcentration" yaml:"acidConcentration"`
	BaseConcentration float64 `json:"baseConcentration" yaml:"baseConcentration"`
	Ka                float64 `json:"ka" yaml:"ka"`
}

// Point is one sample of the titration curve.
type Point struct {
	VolumeRatio            float64 `json:"volumeRatio" yaml:"volumeRatio"`
	PH                     float64 `json:"pH" yaml:"pH"`
	POH                    float64 `json:"pOH" yaml:"pOH"`
	HydroniumConcentration float64 `json:"hydroniumConcentration" yaml:"hydroniumConcentration"`
	HydroxideConcentration float64 `json:"hydroxideConcentration" yaml:"hydroxideConcentration"`
	PercentDissociation    float64 `json:"percentDissociation" yaml:"percentDissociation"`
	Regime                 Regime  `json:"regime" yaml:"regime"`
}

// Summary condenses a curve.
//
// BufferCapacity is nil when the pH is flat around the quarter point, i.e.
// the capacity is unbounded.
type Summary struct {
	InitialPH      float64  `json:"initialPH" yaml:"initialPH"`
	FinalPH        float64  `json:"finalPH" yaml:"finalPH"`
	EquivalencePH  float64  `json:"equivalencePH" yaml:"equivalencePH"`
	BufferCapacity *float64 `json:"bufferCapacity" yaml:"bufferCapacity"`
	PKa            float64  `json:"pKa" yaml:"pKa"`
}

// Curve is the result of a sweep.
type Curve struct {
	Points  []Point `json:"points" yaml:"points"`
	Summary Summary `json:"summary" yaml:"summary"`
}
