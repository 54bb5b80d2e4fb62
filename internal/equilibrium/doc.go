// Package equilibrium computes weak-acid / strong-base titration curves.
//
// # Overview
//
// Solve sweeps the mixing ratio from 0 (acid only) to 1 (full titration) in
// sampleCount equal steps. At each step the acid and base concentrations are
// mixed linearly and one of three regimes decides the hydronium
// concentration:
//
//   - Equivalence: acid and base agree within EquivalenceTolerance. The pH
//     comes from salt hydrolysis, pH = 7 + ½·log10(Ca/Ka).
//   - Excess acid: positive root of [H+]² + Ka[H+] − Ka(Ca−Cb) − Kw = 0.
//   - Excess base: [OH−] = Cb − Ca and [H+] = Kw/[OH−].
//
// The regimes are tested in that order. After the sweep a Summary is
// derived from the first, middle, last and quarter-point samples.
//
// # Errors
//
// Invalid input yields *InvalidParameterError. A negative discriminant at any
// sample yields *NoSolutionError naming the ratio. Both are deterministic in
// the input; retrying with the same parameters reproduces them.
//
// # Concurrency
//
// The package holds no state. Solve may be called from any number of
// goroutines.
package equilibrium
