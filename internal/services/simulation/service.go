package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"acidbase/internal/chart"
	"acidbase/internal/domain"
	"acidbase/internal/equilibrium"
	"acidbase/internal/logging"
	"acidbase/internal/metrics"
)

// Service runs simulations against the record stores.
type Service struct {
	sims    domain.SimulationStore
	results domain.ResultsStore
	users   domain.UserService
	logger  *zap.Logger
	metrics *metrics.Metrics
	samples int
	now     func() time.Time
}

// Options carries the optional collaborators of a Service.
type Options struct {
	// Users links new simulations to their owner. Nil skips linking.
	Users domain.UserService
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Metrics may be nil.
	Metrics *metrics.Metrics
	// DefaultSamples applies when a request carries no sample count.
	// Zero means equilibrium.DefaultSampleCount.
	DefaultSamples int
}

// New returns a simulation service backed by the given stores.
func New(sims domain.SimulationStore, results domain.ResultsStore, opts Options) *Service {
	samples := opts.DefaultSamples
	if samples == 0 {
		samples = equilibrium.DefaultSampleCount
	}
	return &Service{
		sims:    sims,
		results: results,
		users:   opts.Users,
		logger:  logging.OrNop(opts.Logger).Named("simulation"),
		metrics: opts.Metrics,
		samples: samples,
		now:     time.Now,
	}
}

// WithClock overrides the record timestamp clock; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Run solves params and stores the simulation followed by its results record.
func (s *Service) Run(
	ctx context.Context,
	userID string,
	params *domain.SimulationParameters,
) (domain.Simulation, domain.Results, error) {
	if params == nil {
		return domain.Simulation{}, domain.Results{}, domain.Invalid("Parameters are required")
	}
	if missing := params.Required(); missing != "" {
		return domain.Simulation{}, domain.Results{}, domain.Invalid("Missing required parameter: " + missing)
	}

	samples := params.SampleCount
	if samples == 0 {
		samples = s.samples
	}

	start := time.Now()
	curve, err := equilibrium.Solve(params.Equilibrium(), samples)
	elapsed := time.Since(start)
	if err != nil {
		var (
			invalid    *equilibrium.InvalidParameterError
			noSolution *equilibrium.NoSolutionError
		)
		if errors.As(err, &invalid) || errors.As(err, &noSolution) {
			s.metrics.ObserveSolve(metrics.OutcomeInvalid, elapsed)
			return domain.Simulation{}, domain.Results{}, domain.Invalid(err.Error())
		}
		s.metrics.ObserveSolve(metrics.OutcomeFailed, elapsed)
		s.logger.Error("solve failed", zap.Error(err))
		return domain.Simulation{}, domain.Results{}, err
	}
	s.metrics.ObserveSolve(metrics.OutcomeOK, elapsed)

	stored := *params
	stored.SampleCount = samples
	now := s.now().UTC()

	sim := domain.Simulation{
		ID:         uuid.NewString(),
		UserID:     userID,
		Parameters: stored,
		Results:    curve.Points,
		CreatedAt:  now,
	}
	if err := s.sims.SaveSimulation(ctx, sim); err != nil {
		return domain.Simulation{}, domain.Results{}, fmt.Errorf("save simulation: %w", err)
	}

	res := domain.Results{
		ID:                  uuid.NewString(),
		SimulationID:        sim.ID,
		DynamicPH:           curve.Summary.EquivalencePH,
		EquilibriumConstant: *params.Ka,
		ReactionKinetics: domain.ReactionKinetics{
			InitialPH:      curve.Summary.InitialPH,
			FinalPH:        curve.Summary.FinalPH,
			BufferCapacity: curve.Summary.BufferCapacity,
			DataPoints:     curve.Points,
		},
		CreatedAt: now,
	}
	if err := s.results.SaveResults(ctx, res); err != nil {
		if derr := s.sims.DeleteSimulation(ctx, sim.ID); derr != nil {
			s.logger.Warn("orphaned simulation", zap.String("simulation_id", sim.ID), zap.Error(derr))
		}
		return domain.Simulation{}, domain.Results{}, fmt.Errorf("save results: %w", err)
	}

	if userID != "" && s.users != nil {
		switch err := s.users.RecordSimulation(ctx, userID, sim.ID); {
		case err == nil:
		case errors.Is(err, domain.ErrNotFound):
			s.logger.Debug("simulation owner is not a known user", zap.String("user_id", userID))
		default:
			s.logger.Warn("failed to link simulation to user",
				zap.String("user_id", userID), zap.String("simulation_id", sim.ID), zap.Error(err))
		}
	}

	s.logger.Info("simulation created",
		zap.String("simulation_id", sim.ID),
		zap.String("user_id", userID),
		zap.Int("samples", samples),
		zap.Float64("equivalence_ph", curve.Summary.EquivalencePH),
		zap.Duration("solve", elapsed),
	)
	return sim, res, nil
}

// Get returns the simulation with id.
func (s *Service) Get(ctx context.Context, id string) (domain.Simulation, error) {
	sim, ok, err := s.sims.LoadSimulation(ctx, id)
	if err != nil {
		return domain.Simulation{}, err
	}
	if !ok {
		return domain.Simulation{}, fmt.Errorf("simulation %s: %w", id, domain.ErrNotFound)
	}
	return sim, nil
}

// Results returns the results record of the simulation with simulationID.
func (s *Service) Results(ctx context.Context, simulationID string) (domain.Results, error) {
	res, ok, err := s.results.LoadResults(ctx, simulationID)
	if err != nil {
		return domain.Results{}, err
	}
	if !ok {
		return domain.Results{}, fmt.Errorf("results for simulation %s: %w", simulationID, domain.ErrNotFound)
	}
	return res, nil
}

// ListByUser returns the simulations owned by userID, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Simulation, error) {
	return s.sims.ListSimulations(ctx, userID)
}

// Delete removes a simulation and its results. Only the owner or an admin may
// delete.
func (s *Service) Delete(ctx context.Context, caller domain.Claims, id string) error {
	sim, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if caller.Role != domain.RoleAdmin && (sim.UserID == "" || sim.UserID != caller.UserID) {
		return fmt.Errorf("simulation %s: %w", id, domain.ErrForbidden)
	}
	if err := s.results.DeleteResults(ctx, id); err != nil {
		return err
	}
	if err := s.sims.DeleteSimulation(ctx, id); err != nil {
		return err
	}
	s.logger.Info("simulation deleted", zap.String("simulation_id", id), zap.String("by", caller.UserID))
	return nil
}

// Chart describes the stored curve of the simulation with id.
func (s *Service) Chart(ctx context.Context, id string) (domain.ChartConfig, error) {
	sim, err := s.Get(ctx, id)
	if err != nil {
		return domain.ChartConfig{}, err
	}
	p := sim.Parameters.Equilibrium()
	title := fmt.Sprintf("%g M acid vs %g M base (Ka = %g)", p.AcidConcentration, p.BaseConcentration, p.Ka)
	return chart.BuildTitrationChart(title, sim.Results), nil
}

// Compile-time assertion that Service implements domain.SimulationService.
var _ domain.SimulationService = (*Service)(nil)
