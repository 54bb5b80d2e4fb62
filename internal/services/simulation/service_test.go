package simulation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acidbase/internal/crypto"
	"acidbase/internal/domain"
	"acidbase/internal/equilibrium"
	"acidbase/internal/metrics"
	"acidbase/internal/services/simulation"
	"acidbase/internal/services/user"
	"acidbase/internal/store"
)

type fixture struct {
	sims    *simulation.Service
	users   *user.Service
	store   *store.FileStore
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	fs := store.NewFileStore(t.TempDir())
	tokens, err := crypto.NewTokenIssuer("test-secret-0123456789", time.Hour)
	require.NoError(t, err)
	users := user.New(fs, tokens, crypto.PasswordParams{Time: 1, Memory: 1024, Threads: 1}, nil)
	m := metrics.New()
	sims := simulation.New(fs, fs, simulation.Options{Users: users, Metrics: m})
	return fixture{sims: sims, users: users, store: fs, metrics: m}
}

func acetic() *domain.SimulationParameters {
	p := domain.NewSimulationParameters(0.1, 0.1, 1.8e-5, 0)
	return &p
}

func TestRun_PersistsSimulationAndResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sim, res, err := f.sims.Run(ctx, "", acetic())
	require.NoError(t, err)

	assert.NotEmpty(t, sim.ID)
	assert.Len(t, sim.Results, equilibrium.DefaultSampleCount+1)
	assert.Equal(t, equilibrium.DefaultSampleCount, sim.Parameters.SampleCount)
	assert.Equal(t, sim.ID, res.SimulationID)
	assert.Equal(t, 1.8e-5, res.EquilibriumConstant)
	assert.Equal(t, sim.Results[50].PH, res.DynamicPH)
	assert.Equal(t, sim.Results[0].PH, res.ReactionKinetics.InitialPH)
	assert.Equal(t, sim.Results[100].PH, res.ReactionKinetics.FinalPH)
	require.NotNil(t, res.ReactionKinetics.BufferCapacity)
	assert.Len(t, res.ReactionKinetics.DataPoints, len(sim.Results))

	got, err := f.sims.Get(ctx, sim.ID)
	require.NoError(t, err)
	assert.Equal(t, sim.ID, got.ID)

	gotRes, err := f.sims.Results(ctx, sim.ID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, gotRes.ID)

	assert.Equal(t, 1.0, metricsCounter(t, f.metrics, metrics.OutcomeOK))
}

func metricsCounter(t *testing.T, m *metrics.Metrics, outcome string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != "acidbase_solver_solves_total" {
			continue
		}
		for _, metric := range fam.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == "outcome" && l.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestRun_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.sims.Run(ctx, "", nil)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Parameters are required", ve.Message)

	p := acetic()
	p.BaseConcentration = nil
	p.Ka = nil
	_, _, err = f.sims.Run(ctx, "", p)
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Missing required parameter: baseConcentration", ve.Message)

	bad := domain.NewSimulationParameters(0.1, 0.1, 0, 0)
	_, _, err = f.sims.Run(ctx, "", &bad)
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Message, "ka")

	few := domain.NewSimulationParameters(0.1, 0.1, 1.8e-5, 2)
	_, _, err = f.sims.Run(ctx, "", &few)
	require.True(t, errors.As(err, &ve))

	many := domain.NewSimulationParameters(0.1, 0.1, 1.8e-5, 1_000_000_000)
	_, _, err = f.sims.Run(ctx, "", &many)
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Message, "sampleCount")

	tiny := domain.NewSimulationParameters(0.1, 0.1, 5e-324, 0)
	_, _, err = f.sims.Run(ctx, "", &tiny)
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Message, "out of range")

	all, err := f.store.ListSimulations(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all, "nothing persisted on validation failure")
	assert.Equal(t, 4.0, metricsCounter(t, f.metrics, metrics.OutcomeInvalid))
}

func TestRun_LinksKnownUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.users.Register(ctx, "ada", "ada@example.com", "longenough")
	require.NoError(t, err)

	sim, _, err := f.sims.Run(ctx, u.ID, acetic())
	require.NoError(t, err)
	assert.Equal(t, u.ID, sim.UserID)

	got, err := f.users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{sim.ID}, got.SavedSimulations)
	assert.Equal(t, user.ActionSimulationCreate, got.AuditLogs[len(got.AuditLogs)-1].Action)

	// Unknown owners are stored as given without failing the run.
	_, _, err = f.sims.Run(ctx, "ghost", acetic())
	require.NoError(t, err)

	mine, err := f.sims.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestRun_CustomSampleCount(t *testing.T) {
	f := newFixture(t)
	p := domain.NewSimulationParameters(0.1, 0.1, 1.8e-5, 20)
	sim, _, err := f.sims.Run(context.Background(), "", &p)
	require.NoError(t, err)
	assert.Len(t, sim.Results, 21)
}

func TestDelete_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sim, _, err := f.sims.Run(ctx, "owner", acetic())
	require.NoError(t, err)

	err = f.sims.Delete(ctx, domain.Claims{UserID: "intruder", Role: domain.RoleUser}, sim.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, f.sims.Delete(ctx, domain.Claims{UserID: "owner", Role: domain.RoleUser}, sim.ID))
	_, err = f.sims.Get(ctx, sim.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.sims.Results(ctx, sim.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	anon, _, err := f.sims.Run(ctx, "", acetic())
	require.NoError(t, err)
	assert.ErrorIs(t, f.sims.Delete(ctx, domain.Claims{UserID: "someone"}, anon.ID), domain.ErrForbidden)
	require.NoError(t, f.sims.Delete(ctx, domain.Claims{UserID: "root", Role: domain.RoleAdmin}, anon.ID))

	assert.ErrorIs(t, f.sims.Delete(ctx, domain.Claims{Role: domain.RoleAdmin}, "missing"), domain.ErrNotFound)
}

func TestChart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sim, _, err := f.sims.Run(ctx, "", acetic())
	require.NoError(t, err)

	cfg, err := f.sims.Chart(ctx, sim.ID)
	require.NoError(t, err)
	assert.Contains(t, cfg.Title, "Ka = 1.8e-05")
	require.Len(t, cfg.Series, 2)
	assert.Len(t, cfg.Series[0].Data, len(sim.Results))

	_, err = f.sims.Chart(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type failingResults struct{ domain.ResultsStore }

func (failingResults) SaveResults(context.Context, domain.Results) error {
	return errors.New("disk full")
}

func TestRun_RollsBackWhenResultsFail(t *testing.T) {
	fs := store.NewFileStore(t.TempDir())
	svc := simulation.New(fs, failingResults{fs}, simulation.Options{})
	ctx := context.Background()

	_, _, err := svc.Run(ctx, "", acetic())
	require.Error(t, err)

	all, err := fs.ListSimulations(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}
