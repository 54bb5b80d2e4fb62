// Package simulation runs titration simulations and manages their records.
//
// A run validates the request, solves the curve with the equilibrium
// package, persists the simulation and then its results record, and links the
// simulation to the requesting account when there is one.
package simulation
