package domain

import (
	"time"

	"acidbase/internal/equilibrium"
)

// Role is a user's authorisation level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// SimulationParameters is the request form of equilibrium.Parameters.
// Pointer fields distinguish a missing value from zero.
type SimulationParameters struct {
	AcidConcentration *float64 `json:"acidConcentration"`
	BaseConcentration *float64 `json:"baseConcentration"`
	Ka                *float64 `json:"ka"`
	SampleCount       int      `json:"sampleCount,omitempty"`
}

// Required returns the first missing field in the order the API reports
// them, or "" when every field is present.
func (p SimulationParameters) Required() string {
	switch {
	case p.AcidConcentration == nil:
		return "acidConcentration"
	case p.BaseConcentration == nil:
		return "baseConcentration"
	case p.Ka == nil:
		return "ka"
	}
	return ""
}

// Equilibrium converts to solver input. Callers check Required first.
func (p SimulationParameters) Equilibrium() equilibrium.Parameters {
	return equilibrium.Parameters{
		AcidConcentration: deref(p.AcidConcentration),
		BaseConcentration: deref(p.BaseConcentration),
		Ka:                deref(p.Ka),
	}
}

// NewSimulationParameters builds a complete parameter set.
func NewSimulationParameters(acid, base, ka float64, samples int) SimulationParameters {
	return SimulationParameters{
		AcidConcentration: &acid,
		BaseConcentration: &base,
		Ka:                &ka,
		SampleCount:       samples,
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Simulation is a stored titration request and its curve.
type Simulation struct {
	ID         string               `json:"_id"`
	UserID     string               `json:"userId,omitempty"`
	Parameters SimulationParameters `json:"parameters"`
	Results    []equilibrium.Point  `json:"results"`
	CreatedAt  time.Time            `json:"createdAt"`
}

// ReactionKinetics carries the curve summary of a Results record.
type ReactionKinetics struct {
	InitialPH      float64             `json:"initialPH"`
	FinalPH        float64             `json:"finalPH"`
	BufferCapacity *float64            `json:"bufferCapacity"`
	DataPoints     []equilibrium.Point `json:"dataPoints"`
}

// Results is the derived record stored next to a Simulation.
type Results struct {
	ID                  string           `json:"_id"`
	SimulationID        string           `json:"simulationId"`
	DynamicPH           float64          `json:"dynamicPH"`
	EquilibriumConstant float64          `json:"equilibriumConstant"`
	ReactionKinetics    ReactionKinetics `json:"reactionKinetics"`
	CreatedAt           time.Time        `json:"createdAt"`
}

// AuditEntry records an account action.
type AuditEntry struct {
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// User is an account. PasswordHash is never serialised to API clients; the
// stores persist it through StoredUser.
type User struct {
	ID               string       `json:"_id"`
	Username         string       `json:"username"`
	Email            string       `json:"email"`
	PasswordHash     string       `json:"-"`
	Role             Role         `json:"role"`
	SavedSimulations []string     `json:"savedSimulations"`
	AuditLogs        []AuditEntry `json:"auditLogs"`
}

// StoredUser is the persisted form of User.
type StoredUser struct {
	User
	PasswordHash string `json:"password"`
}

// ToStored attaches the password hash for persistence.
func (u User) ToStored() StoredUser { return StoredUser{User: u, PasswordHash: u.PasswordHash} }

// ToUser restores the hash onto the embedded User.
func (s StoredUser) ToUser() User {
	u := s.User
	u.PasswordHash = s.PasswordHash
	return u
}

// Claims are the verified contents of a bearer token.
type Claims struct {
	UserID    string
	Username  string
	Role      Role
	ExpiresAt time.Time
}

// ChartSeries and friends describe a titration chart for the frontend.
type ChartPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ChartSeries struct {
	Name string       `json:"name"`
	Data []ChartPoint `json:"data"`
}

type ChartMarker struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis"`
	YAxis      string        `json:"yAxis"`
	YMin       float64       `json:"yMin"`
	YMax       float64       `json:"yMax"`
	Series     []ChartSeries `json:"series"`
	Markers    []ChartMarker `json:"markers,omitempty"`
	Colors     []string      `json:"colors"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}
