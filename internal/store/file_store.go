package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"acidbase/internal/domain"
)

const (
	simulationsFile = "simulations.json"
	resultsFile     = "results.json"
	usersFile       = "users.json"
)

// FileStore keeps every collection as a JSON document under dir.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore { return &FileStore{dir: dir} }

// Close is a no-op; FileStore holds no open handles.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(name string) string { return filepath.Join(s.dir, name) }

// ---------- Simulations ----------

// SaveSimulation stores or replaces sim by ID.
func (s *FileStore) SaveSimulation(ctx context.Context, sim domain.Simulation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sims := map[string]domain.Simulation{}
	if err := readJSON(s.path(simulationsFile), &sims); err != nil {
		return err
	}
	sims[sim.ID] = sim
	return writeJSON(s.path(simulationsFile), sims, 0o600)
}

// LoadSimulation returns the simulation with id and whether it exists.
func (s *FileStore) LoadSimulation(ctx context.Context, id string) (domain.Simulation, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Simulation{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sims := map[string]domain.Simulation{}
	if err := readJSON(s.path(simulationsFile), &sims); err != nil {
		return domain.Simulation{}, false, err
	}
	sim, ok := sims[id]
	return sim, ok, nil
}

// ListSimulations returns the simulations owned by userID, newest first.
// An empty userID lists every simulation.
func (s *FileStore) ListSimulations(ctx context.Context, userID string) ([]domain.Simulation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sims := map[string]domain.Simulation{}
	if err := readJSON(s.path(simulationsFile), &sims); err != nil {
		return nil, err
	}
	out := make([]domain.Simulation, 0, len(sims))
	for _, sim := range sims {
		if userID == "" || sim.UserID == userID {
			out = append(out, sim)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// DeleteSimulation removes the simulation with id. Unknown ids are ignored.
func (s *FileStore) DeleteSimulation(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sims := map[string]domain.Simulation{}
	if err := readJSON(s.path(simulationsFile), &sims); err != nil {
		return err
	}
	if _, ok := sims[id]; !ok {
		return nil
	}
	delete(sims, id)
	return writeJSON(s.path(simulationsFile), sims, 0o600)
}

// ---------- Results ----------

// SaveResults stores res keyed by its simulation.
func (s *FileStore) SaveResults(ctx context.Context, res domain.Results) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all := map[string]domain.Results{}
	if err := readJSON(s.path(resultsFile), &all); err != nil {
		return err
	}
	all[res.SimulationID] = res
	return writeJSON(s.path(resultsFile), all, 0o600)
}

// LoadResults returns the results record of simulationID.
func (s *FileStore) LoadResults(ctx context.Context, simulationID string) (domain.Results, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Results{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all := map[string]domain.Results{}
	if err := readJSON(s.path(resultsFile), &all); err != nil {
		return domain.Results{}, false, err
	}
	res, ok := all[simulationID]
	return res, ok, nil
}

// DeleteResults removes the results record of simulationID.
func (s *FileStore) DeleteResults(ctx context.Context, simulationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all := map[string]domain.Results{}
	if err := readJSON(s.path(resultsFile), &all); err != nil {
		return err
	}
	if _, ok := all[simulationID]; !ok {
		return nil
	}
	delete(all, simulationID)
	return writeJSON(s.path(resultsFile), all, 0o600)
}

// ---------- Users ----------

// SaveUser stores or replaces u. Username and email must stay unique.
func (s *FileStore) SaveUser(ctx context.Context, u domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	users := map[string]domain.StoredUser{}
	if err := readJSON(s.path(usersFile), &users); err != nil {
		return err
	}
	return s.putUser(users, u)
}

// UpdateUser applies fn to the stored user with id while holding the lock.
func (s *FileStore) UpdateUser(ctx context.Context, id string, fn func(*domain.User) error) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	users := map[string]domain.StoredUser{}
	if err := readJSON(s.path(usersFile), &users); err != nil {
		return domain.User{}, err
	}
	stored, ok := users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	u := stored.ToUser()
	if err := fn(&u); err != nil {
		return domain.User{}, err
	}
	u.ID = id
	if err := s.putUser(users, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// putUser writes u into users and persists them. Callers hold s.mu.
func (s *FileStore) putUser(users map[string]domain.StoredUser, u domain.User) error {
	for id, other := range users {
		if id == u.ID {
			continue
		}
		if strings.EqualFold(other.Username, u.Username) || strings.EqualFold(other.Email, u.Email) {
			return domain.ErrConflict
		}
	}
	users[u.ID] = u.ToStored()
	return writeJSON(s.path(usersFile), users, 0o600)
}

// LoadUser returns the user with id.
func (s *FileStore) LoadUser(ctx context.Context, id string) (domain.User, bool, error) {
	return s.findUser(ctx, func(u domain.StoredUser) bool { return u.ID == id })
}

// LoadUserByName returns the user with username (case-insensitive).
func (s *FileStore) LoadUserByName(ctx context.Context, username string) (domain.User, bool, error) {
	return s.findUser(ctx, func(u domain.StoredUser) bool { return strings.EqualFold(u.Username, username) })
}

// LoadUserByEmail returns the user with email (case-insensitive).
func (s *FileStore) LoadUserByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	return s.findUser(ctx, func(u domain.StoredUser) bool { return strings.EqualFold(u.Email, email) })
}

// ListUsers returns every account ordered by username.
func (s *FileStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	users := map[string]domain.StoredUser{}
	if err := readJSON(s.path(usersFile), &users); err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToUser())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *FileStore) findUser(ctx context.Context, match func(domain.StoredUser) bool) (domain.User, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	users := map[string]domain.StoredUser{}
	if err := readJSON(s.path(usersFile), &users); err != nil {
		return domain.User{}, false, err
	}
	for _, u := range users {
		if match(u) {
			return u.ToUser(), true, nil
		}
	}
	return domain.User{}, false, nil
}

func sortNewestFirst(sims []domain.Simulation) {
	sort.Slice(sims, func(i, j int) bool {
		if sims[i].CreatedAt.Equal(sims[j].CreatedAt) {
			return sims[i].ID < sims[j].ID
		}
		return sims[i].CreatedAt.After(sims[j].CreatedAt)
	})
}

// Compile-time assertion that FileStore implements domain.Store.
var _ domain.Store = (*FileStore)(nil)
