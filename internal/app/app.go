package app

import (
	"context"
	"errors"
	"net"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App runs the API server.
type App struct {
	wire *Wire
	srv  *http.Server
}

// New returns an App serving w.API on the configured address.
func New(w *Wire) *App {
	cfg := w.Config.Server
	return &App{
		wire: w,
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           w.API.Handler(),
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			ErrorLog:          zap.NewStdLog(w.Logger.Named("http")),
		},
	}
}

// Run serves until ctx is done, then shuts down gracefully within the
// configured timeout.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.srv.Addr)
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	logger := a.wire.Logger
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening",
			zap.String("addr", ln.Addr().String()),
			zap.String("storage", a.wire.Config.Storage.Driver))
		if err := a.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.wire.Config.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return a.srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Serve wires cfg and runs the API server until ctx is done.
func Serve(ctx context.Context, cfg Config, logger *zap.Logger) error {
	w, err := NewWire(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); err != nil {
			w.Logger.Warn("closing store", zap.Error(err))
		}
	}()
	return New(w).Run(ctx)
}
