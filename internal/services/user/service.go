package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"acidbase/internal/crypto"
	"acidbase/internal/domain"
	"acidbase/internal/logging"
)

const (
	// MinPasswordLength defines the minimum number of characters required for a password.
	MinPasswordLength = 8

	ActionRegister         = "user.register"
	ActionLogin            = "user.login"
	ActionSimulationCreate = "simulation.create"
	ActionRoleChange       = "user.role"
)

var (
	// ErrWeakPassword is returned when the password fails the length policy.
	ErrWeakPassword = domain.Invalid(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))

	errInvalidCredentials = fmt.Errorf("%w: invalid username or password", domain.ErrUnauthorized)
)

// Service manages accounts using a backing store and a token issuer.
type Service struct {
	store  domain.UserStore
	tokens *crypto.TokenIssuer
	params crypto.PasswordParams
	logger *zap.Logger
	now    func() time.Time
}

// New returns a user service. A nil logger discards output.
func New(
	s domain.UserStore,
	tokens *crypto.TokenIssuer,
	params crypto.PasswordParams,
	logger *zap.Logger,
) *Service {
	return &Service{
		store:  s,
		tokens: tokens,
		params: params,
		logger: logging.OrNop(logger).Named("user"),
		now:    time.Now,
	}
}

// WithClock overrides the audit-log clock; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Register creates an account with the default role.
func (s *Service) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return domain.User{}, domain.Invalid("Username, email and password are required")
	}
	if !strings.Contains(email, "@") {
		return domain.User{}, domain.Invalid("Email address is invalid")
	}
	if len([]rune(password)) < MinPasswordLength {
		return domain.User{}, ErrWeakPassword
	}

	if _, ok, err := s.store.LoadUserByName(ctx, username); err != nil {
		return domain.User{}, err
	} else if ok {
		return domain.User{}, fmt.Errorf("%w: username %q is taken", domain.ErrConflict, username)
	}
	if _, ok, err := s.store.LoadUserByEmail(ctx, email); err != nil {
		return domain.User{}, err
	} else if ok {
		return domain.User{}, fmt.Errorf("%w: email is already registered", domain.ErrConflict)
	}

	hash, err := crypto.HashPassword(password, s.params)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:               uuid.NewString(),
		Username:         username,
		Email:            email,
		PasswordHash:     hash,
		Role:             domain.RoleUser,
		SavedSimulations: []string{},
	}
	s.audit(&u, ActionRegister)
	if err := s.store.SaveUser(ctx, u); err != nil {
		return domain.User{}, err
	}
	s.logger.Info("registered user", zap.String("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

// Login verifies the password and returns a signed bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (string, domain.User, error) {
	u, ok, err := s.store.LoadUserByName(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", domain.User{}, err
	}
	if !ok {
		return "", domain.User{}, errInvalidCredentials
	}
	if err := crypto.VerifyPassword(password, u.PasswordHash); err != nil {
		if errors.Is(err, crypto.ErrMismatchedPassword) {
			s.logger.Warn("failed login", zap.String("user_id", u.ID))
			return "", domain.User{}, errInvalidCredentials
		}
		return "", domain.User{}, err
	}

	u, err = s.store.UpdateUser(ctx, u.ID, func(u *domain.User) error {
		s.audit(u, ActionLogin)
		return nil
	})
	if err != nil {
		return "", domain.User{}, err
	}
	token, _, err := s.tokens.Issue(u)
	if err != nil {
		return "", domain.User{}, err
	}
	s.logger.Info("user logged in", zap.String("user_id", u.ID), zap.String("token_fp", crypto.Fingerprint([]byte(token))))
	return token, u, nil
}

// Authenticate verifies token and checks that its subject still exists.
// The role comes from the stored account, not from the token.
func (s *Service) Authenticate(ctx context.Context, token string) (domain.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return domain.Claims{}, err
	}
	u, ok, err := s.store.LoadUser(ctx, claims.UserID)
	if err != nil {
		return domain.Claims{}, err
	}
	if !ok {
		return domain.Claims{}, fmt.Errorf("%w: unknown subject", domain.ErrUnauthorized)
	}
	claims.Username = u.Username
	claims.Role = u.Role
	return claims, nil
}

// Get returns the account with id.
func (s *Service) Get(ctx context.Context, id string) (domain.User, error) {
	u, ok, err := s.store.LoadUser(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return u, nil
}

// List returns every account.
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	return s.store.ListUsers(ctx)
}

// SetRole changes the role of the account with id.
func (s *Service) SetRole(ctx context.Context, id string, role domain.Role) (domain.User, error) {
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return domain.User{}, domain.Invalid(fmt.Sprintf("Unknown role %q", role))
	}
	u, err := s.store.UpdateUser(ctx, id, func(u *domain.User) error {
		u.Role = role
		s.audit(u, ActionRoleChange)
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	s.logger.Info("role changed", zap.String("user_id", id), zap.String("role", string(role)))
	return u, nil
}

// RecordSimulation links simulationID to the account with userID.
func (s *Service) RecordSimulation(ctx context.Context, userID, simulationID string) error {
	_, err := s.store.UpdateUser(ctx, userID, func(u *domain.User) error {
		u.SavedSimulations = append(u.SavedSimulations, simulationID)
		s.audit(u, ActionSimulationCreate)
		return nil
	})
	return err
}

func (s *Service) audit(u *domain.User, action string) {
	u.AuditLogs = append(u.AuditLogs, domain.AuditEntry{Action: action, Timestamp: s.now().UTC()})
}

// Compile-time assertion that Service implements domain.UserService.
var _ domain.UserService = (*Service)(nil)
