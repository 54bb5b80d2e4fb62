package equilibrium

import "fmt"

// InvalidParameterError reports input the solver refuses to work with.
type InvalidParameterError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}

// NoSolutionError reports a sample with no usable hydronium concentration:
// either the excess-acid quadratic has no real root, or the regime formula
// left the floating-point range.
type NoSolutionError struct {
	Ratio        float64
	Regime       Regime
	Discriminant float64
	Hydronium    float64
}

func (e *NoSolutionError) Error() string {
	if e.Regime == RegimeExcessAcid && e.Discriminant < 0 {
		return fmt.Sprintf("no real hydronium concentration at volume ratio %g (discriminant %g)",
			e.Ratio, e.Discriminant)
	}
	return fmt.Sprintf("hydronium concentration %g at volume ratio %g (%s) is out of range",
		e.Hydronium, e.Ratio, e.Regime)
}
