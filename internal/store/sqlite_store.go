package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"acidbase/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS simulations (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL DEFAULT '',
	parameters  TEXT NOT NULL,
	results     TEXT NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_simulations_user ON simulations(user_id, created_at);

CREATE TABLE IF NOT EXISTS results (
	id                   TEXT PRIMARY KEY,
	simulation_id        TEXT NOT NULL UNIQUE,
	dynamic_ph           REAL NOT NULL,
	equilibrium_constant REAL NOT NULL,
	reaction_kinetics    TEXT NOT NULL,
	created_at           INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id                TEXT PRIMARY KEY,
	username          TEXT NOT NULL UNIQUE COLLATE NOCASE,
	email             TEXT NOT NULL UNIQUE COLLATE NOCASE,
	password          TEXT NOT NULL,
	role              TEXT NOT NULL DEFAULT 'user',
	saved_simulations TEXT NOT NULL DEFAULT '[]',
	audit_logs        TEXT NOT NULL DEFAULT '[]'
);
`

// SQLiteStore keeps records in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single writer avoids SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// ---------- Simulations ----------

func (s *SQLiteStore) SaveSimulation(ctx context.Context, sim domain.Simulation) error {
	params, err := json.Marshal(sim.Parameters)
	if err != nil {
		return err
	}
	points, err := json.Marshal(sim.Results)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO simulations (id, user_id, parameters, results, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			parameters = excluded.parameters,
			results = excluded.results,
			created_at = excluded.created_at`,
		sim.ID, sim.UserID, string(params), string(points), sim.CreatedAt.UnixNano())
	return err
}

func (s *SQLiteStore) LoadSimulation(ctx context.Context, id string) (domain.Simulation, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, parameters, results, created_at FROM simulations WHERE id = ?`, id)
	sim, err := scanSimulation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Simulation{}, false, nil
	}
	if err != nil {
		return domain.Simulation{}, false, err
	}
	return sim, true, nil
}

func (s *SQLiteStore) ListSimulations(ctx context.Context, userID string) ([]domain.Simulation, error) {
	query := `SELECT id, user_id, parameters, results, created_at FROM simulations`
	var args []any
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Simulation{}
	for rows.Next() {
		sim, err := scanSimulation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sim)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteSimulation(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM simulations WHERE id = ?`, id)
	return err
}

// ---------- Results ----------

func (s *SQLiteStore) SaveResults(ctx context.Context, res domain.Results) error {
	kinetics, err := json.Marshal(res.ReactionKinetics)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO results (id, simulation_id, dynamic_ph, equilibrium_constant, reaction_kinetics, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(simulation_id) DO UPDATE SET
			id = excluded.id,
			dynamic_ph = excluded.dynamic_ph,
			equilibrium_constant = excluded.equilibrium_constant,
			reaction_kinetics = excluded.reaction_kinetics,
			created_at = excluded.created_at`,
		res.ID, res.SimulationID, res.DynamicPH, res.EquilibriumConstant, string(kinetics), res.CreatedAt.UnixNano())
	return err
}

func (s *SQLiteStore) LoadResults(ctx context.Context, simulationID string) (domain.Results, bool, error) {
	var (
		res       domain.Results
		kinetics  string
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, simulation_id, dynamic_ph, equilibrium_constant, reaction_kinetics, created_at
		FROM results WHERE simulation_id = ?`, simulationID).
		Scan(&res.ID, &res.SimulationID, &res.DynamicPH, &res.EquilibriumConstant, &kinetics, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Results{}, false, nil
	}
	if err != nil {
		return domain.Results{}, false, err
	}
	if err := json.Unmarshal([]byte(kinetics), &res.ReactionKinetics); err != nil {
		return domain.Results{}, false, err
	}
	res.CreatedAt = time.Unix(0, createdAt).UTC()
	return res, true, nil
}

func (s *SQLiteStore) DeleteResults(ctx context.Context, simulationID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE simulation_id = ?`, simulationID)
	return err
}

// ---------- Users ----------

func (s *SQLiteStore) SaveUser(ctx context.Context, u domain.User) error {
	return upsertUser(ctx, s.db, u)
}

// UpdateUser applies fn to the user with id inside one transaction.
func (s *SQLiteStore) UpdateUser(ctx context.Context, id string, fn func(*domain.User) error) (domain.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, err
	}
	defer tx.Rollback()

	u, ok, err := queryUser(ctx, tx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	if err := fn(&u); err != nil {
		return domain.User{}, err
	}
	u.ID = id
	if err := upsertUser(ctx, tx, u); err != nil {
		return domain.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func upsertUser(ctx context.Context, db execQuerier, u domain.User) error {
	saved, err := json.Marshal(nonNil(u.SavedSimulations))
	if err != nil {
		return err
	}
	audit, err := json.Marshal(u.AuditLogs)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password, role, saved_simulations, audit_logs)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			email = excluded.email,
			password = excluded.password,
			role = excluded.role,
			saved_simulations = excluded.saved_simulations,
			audit_logs = excluded.audit_logs`,
		u.ID, u.Username, u.Email, u.PasswordHash, string(u.Role), string(saved), string(audit))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return domain.ErrConflict
	}
	return err
}

const userColumns = `id, username, email, password, role, saved_simulations, audit_logs`

func (s *SQLiteStore) LoadUser(ctx context.Context, id string) (domain.User, bool, error) {
	return queryUser(ctx, s.db, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (s *SQLiteStore) LoadUserByName(ctx context.Context, username string) (domain.User, bool, error) {
	return queryUser(ctx, s.db, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (s *SQLiteStore) LoadUserByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	return queryUser(ctx, s.db, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func queryUser(ctx context.Context, db execQuerier, query string, arg string) (domain.User, bool, error) {
	u, err := scanUser(db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	return u, true, nil
}

// ---------- helpers ----------

type scanner interface {
	Scan(dest ...any) error
}

func scanSimulation(sc scanner) (domain.Simulation, error) {
	var (
		sim               domain.Simulation
		params, points    string
		createdAtUnixNano int64
	)
	if err := sc.Scan(&sim.ID, &sim.UserID, &params, &points, &createdAtUnixNano); err != nil {
		return domain.Simulation{}, err
	}
	if err := json.Unmarshal([]byte(params), &sim.Parameters); err != nil {
		return domain.Simulation{}, err
	}
	if err := json.Unmarshal([]byte(points), &sim.Results); err != nil {
		return domain.Simulation{}, err
	}
	sim.CreatedAt = time.Unix(0, createdAtUnixNano).UTC()
	return sim, nil
}

func scanUser(sc scanner) (domain.User, error) {
	var (
		u            domain.User
		role         string
		saved, audit string
	)
	if err := sc.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &saved, &audit); err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	if err := json.Unmarshal([]byte(saved), &u.SavedSimulations); err != nil {
		return domain.User{}, err
	}
	if err := json.Unmarshal([]byte(audit), &u.AuditLogs); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Compile-time assertion that SQLiteStore implements domain.Store.
var _ domain.Store = (*SQLiteStore)(nil)
