package app

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"acidbase/internal/api"
	"acidbase/internal/client"
	"acidbase/internal/crypto"
	"acidbase/internal/domain"
	"acidbase/internal/logging"
	"acidbase/internal/metrics"
	simulationsvc "acidbase/internal/services/simulation"
	usersvc "acidbase/internal/services/user"
	"acidbase/internal/store"
)

// Wire bundles all stores, services and the HTTP server for the API.
type Wire struct {
	Config      Config
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	Store       domain.Store
	Users       domain.UserService
	Simulations domain.SimulationService
	API         *api.Server
}

// NewWire constructs the server dependency graph from cfg.
func NewWire(cfg Config, logger *zap.Logger) (*Wire, error) {
	if err := cfg.ValidateServer(); err != nil {
		return nil, err
	}
	logger = logging.OrNop(logger)

	tokens, err := crypto.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	users := usersvc.New(st, tokens, cfg.Auth.Password, logger)
	sims := simulationsvc.New(st, st, simulationsvc.Options{
		Users:          users,
		Logger:         logger,
		Metrics:        m,
		DefaultSamples: cfg.Solver.DefaultSamples,
	})
	srv := api.New(sims, users, logger, m, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimit:      cfg.RateLimit.Requests,
		RateWindow:     cfg.RateLimit.Window,
		TrustProxy:     cfg.Server.TrustProxy,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
	})

	return &Wire{
		Config:      cfg,
		Logger:      logger,
		Metrics:     m,
		Store:       st,
		Users:       users,
		Simulations: sims,
		API:         srv,
	}, nil
}

// Close releases the store.
func (w *Wire) Close() error {
	if w.Store == nil {
		return nil
	}
	return w.Store.Close()
}

// ClientWire bundles what the CLI needs to talk to a server.
type ClientWire struct {
	Server string
	Tokens domain.TokenStore
	API    *client.HTTP
}

// NewClientWire builds an API client for server (or cfg.Client.Server) that
// sends the cached login token, if any.
func NewClientWire(cfg Config, server string) (*ClientWire, error) {
	if server == "" {
		server = cfg.Client.Server
	}
	if server == "" {
		return nil, errors.New("server URL required (--server)")
	}
	tokens := store.NewTokenFileStore(cfg.Home)
	c := client.NewHTTP(server, &http.Client{Timeout: cfg.Client.Timeout})
	if tok, ok, err := tokens.LoadToken(c.Base); err != nil {
		return nil, err
	} else if ok {
		c = c.WithToken(tok)
	}
	return &ClientWire{Server: c.Base, Tokens: tokens, API: c}, nil
}
