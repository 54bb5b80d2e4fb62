package domain

import "context"

// SimulationStore persists Simulation records.
type SimulationStore interface {
	SaveSimulation(ctx context.Context, sim Simulation) error
	LoadSimulation(ctx context.Context, id string) (Simulation, bool, error)
	ListSimulations(ctx context.Context, userID string) ([]Simulation, error)
	DeleteSimulation(ctx context.Context, id string) error
}

// ResultsStore persists Results records.
type ResultsStore interface {
	SaveResults(ctx context.Context, res Results) error
	LoadResults(ctx context.Context, simulationID string) (Results, bool, error)
	DeleteResults(ctx context.Context, simulationID string) error
}

// UserStore persists accounts.
type UserStore interface {
	SaveUser(ctx context.Context, u User) error
	// UpdateUser loads the account with id, applies fn and saves the result
	// as one step. It returns ErrNotFound for unknown ids and stores nothing
	// when fn fails.
	UpdateUser(ctx context.Context, id string, fn func(*User) error) (User, error)
	LoadUser(ctx context.Context, id string) (User, bool, error)
	LoadUserByName(ctx context.Context, username string) (User, bool, error)
	LoadUserByEmail(ctx context.Context, email string) (User, bool, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// Store is a backend implementing every record store.
type Store interface {
	SimulationStore
	ResultsStore
	UserStore
	Close() error
}

// TokenStore caches login tokens on the client side.
type TokenStore interface {
	SaveToken(serverURL, token string) error
	LoadToken(serverURL string) (string, bool, error)
}

// SimulationService runs and retrieves simulations.
type SimulationService interface {
	Run(ctx context.Context, userID string, params *SimulationParameters) (Simulation, Results, error)
	Get(ctx context.Context, id string) (Simulation, error)
	Results(ctx context.Context, simulationID string) (Results, error)
	ListByUser(ctx context.Context, userID string) ([]Simulation, error)
	Delete(ctx context.Context, caller Claims, id string) error
	Chart(ctx context.Context, id string) (ChartConfig, error)
}

// UserService manages accounts and bearer tokens.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (User, error)
	Login(ctx context.Context, username, password string) (string, User, error)
	Authenticate(ctx context.Context, token string) (Claims, error)
	Get(ctx context.Context, id string) (User, error)
	List(ctx context.Context) ([]User, error)
	SetRole(ctx context.Context, id string, role Role) (User, error)
	RecordSimulation(ctx context.Context, userID, simulationID string) error
}

// APIClient is how the CLI talks to a running server.
type APIClient interface {
	CreateSimulation(ctx context.Context, params SimulationParameters) (Simulation, Results, error)
	GetSimulation(ctx context.Context, id string) (Simulation, error)
	GetResults(ctx context.Context, simulationID string) (Results, error)
	ListSimulations(ctx context.Context) ([]Simulation, error)
	Register(ctx context.Context, username, email, password string) (User, error)
	Login(ctx context.Context, username, password string) (string, User, error)
}
