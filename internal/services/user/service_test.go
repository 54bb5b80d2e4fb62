package user_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acidbase/internal/crypto"
	"acidbase/internal/domain"
	"acidbase/internal/services/user"
	"acidbase/internal/store"
)

var cheap = crypto.PasswordParams{Time: 1, Memory: 1024, Threads: 1}

func newService(t *testing.T) (*user.Service, *store.FileStore) {
	t.Helper()
	fs := store.NewFileStore(t.TempDir())
	tokens, err := crypto.NewTokenIssuer("test-secret-0123456789", time.Hour)
	require.NoError(t, err)
	return user.New(fs, tokens, cheap, nil), fs
}

func TestRegisterAndLogin(t *testing.T) {
	svc, fs := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, " ada ", "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ada", u.Username)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.NotContains(t, u.PasswordHash, "correct horse")
	require.Len(t, u.AuditLogs, 1)
	assert.Equal(t, user.ActionRegister, u.AuditLogs[0].Action)

	token, logged, err := svc.Login(ctx, "ada", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, u.ID, logged.ID)

	claims, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)

	stored, ok, err := fs.LoadUser(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, stored.AuditLogs, 2)
	assert.Equal(t, user.ActionLogin, stored.AuditLogs[1].Action)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	cases := []struct {
		name, username, email, password string
	}{
		{"missing username", "", "a@example.com", "longenough"},
		{"missing email", "ada", "", "longenough"},
		{"bad email", "ada", "not-an-email", "longenough"},
		{"short password", "ada", "a@example.com", "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.username, tc.email, tc.password)
			var ve *domain.ValidationError
			assert.True(t, errors.As(err, &ve), "got %v", err)
		})
	}
}

func TestRegister_Conflict(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "ada", "ada@example.com", "longenough")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "ADA", "other@example.com", "longenough")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.Register(ctx, "bob", "ada@example.com", "longenough")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestLogin_Rejects(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "ada", "ada@example.com", "longenough")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "ada", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, _, err = svc.Login(ctx, "nobody", "longenough")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSetRoleAndRecordSimulation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, "ada", "ada@example.com", "longenough")
	require.NoError(t, err)

	admin, err := svc.SetRole(ctx, u.ID, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	_, err = svc.SetRole(ctx, u.ID, "root")
	var ve *domain.ValidationError
	assert.True(t, errors.As(err, &ve))

	require.NoError(t, svc.RecordSimulation(ctx, u.ID, "sim-1"))
	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"sim-1"}, got.SavedSimulations)
	assert.Equal(t, user.ActionSimulationCreate, got.AuditLogs[len(got.AuditLogs)-1].Action)

	assert.ErrorIs(t, svc.RecordSimulation(ctx, "missing", "sim-2"), domain.ErrNotFound)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestAuthenticate_UsesStoredRole(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, "ada", "ada@example.com", "longenough")
	require.NoError(t, err)
	_, err = svc.SetRole(ctx, u.ID, domain.RoleAdmin)
	require.NoError(t, err)

	token, _, err := svc.Login(ctx, "ada", "longenough")
	require.NoError(t, err)
	claims, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)

	_, err = svc.SetRole(ctx, u.ID, domain.RoleUser)
	require.NoError(t, err)
	claims, err = svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, claims.Role, "demotion applies to tokens already issued")
}

func TestRecordSimulation_Concurrent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, "ada", "ada@example.com", "longenough")
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, svc.RecordSimulation(ctx, u.ID, fmt.Sprintf("sim-%d", i)))
		}(i)
	}
	wg.Wait()

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, got.SavedSimulations, n)
	assert.Len(t, got.AuditLogs, n+1)
}
