package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"acidbase/internal/domain"
	"acidbase/internal/logging"
	"acidbase/internal/metrics"
)

// Options tune the HTTP layer.
type Options struct {
	// AllowedOrigins lists CORS origins; "*" allows any.
	AllowedOrigins []string
	// RateLimit requests per RateWindow per client. Zero disables limiting.
	RateLimit  int
	RateWindow time.Duration
	// TrustProxy keys the rate limiter on X-Forwarded-For.
	TrustProxy bool
	// MaxBodyBytes caps request bodies. Zero means 100 KiB.
	MaxBodyBytes int64
}

const defaultMaxBodyBytes = 100 << 10

// Server routes HTTP requests to the simulation and user services.
type Server struct {
	sims    domain.SimulationService
	users   domain.UserService
	logger  *zap.Logger
	metrics *metrics.Metrics
	limiter *RateLimiter
	opts    Options
}

// New returns a server. A nil logger discards output; nil metrics disables
// /metrics.
func New(
	sims domain.SimulationService,
	users domain.UserService,
	logger *zap.Logger,
	m *metrics.Metrics,
	opts Options,
) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	s := &Server{
		sims:    sims,
		users:   users,
		logger:  logging.OrNop(logger).Named("http"),
		metrics: m,
		opts:    opts,
	}
	if opts.RateLimit > 0 && opts.RateWindow > 0 {
		s.limiter = NewRateLimiter(opts.RateLimit, opts.RateWindow)
	}
	return s
}

// Limiter returns the rate limiter, or nil when limiting is disabled.
func (s *Server) Limiter() *RateLimiter { return s.limiter }

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/simulations", s.createSimulation)
	mux.HandleFunc("GET /api/simulations", s.requireAuth(s.listSimulations))
	mux.HandleFunc("GET /api/simulations/{id}", s.getSimulation)
	mux.HandleFunc("GET /api/simulations/{id}/results", s.getResults)
	mux.HandleFunc("GET /api/simulations/{id}/chart", s.getChart)
	mux.HandleFunc("DELETE /api/simulations/{id}", s.requireAuth(s.deleteSimulation))

	mux.HandleFunc("POST /api/auth/register", s.register)
	mux.HandleFunc("POST /api/auth/login", s.login)

	mux.HandleFunc("GET /api/users/me", s.requireAuth(s.me))
	mux.HandleFunc("GET /api/users", s.requireAdmin(s.listUsers))
	mux.HandleFunc("PATCH /api/users/{id}/role", s.requireAdmin(s.setRole))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	var h http.Handler = mux
	h = s.rateLimit(h)
	h = s.cors(h)
	h = securityHeaders(h)
	h = s.recoverPanics(h)
	h = s.observe(h)
	h = withRequestID(h)
	return h
}
