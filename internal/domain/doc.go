// Package domain defines the records and contracts shared across the app.
// It contains plain types (wire/state) and interfaces only; the chemistry
// lives in internal/equilibrium.
package domain
