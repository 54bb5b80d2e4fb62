package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"acidbase/internal/app"
	"acidbase/internal/logging"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "acidbased:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("acidbased", pflag.ContinueOnError)
	configFile := flags.String("config", "", "config file (default <home>/config.yaml)")
	flags.String("home", "", "config dir (default ~/.acidbase)")
	flags.String("addr", "", "listen address")
	flags.String("storage-driver", "", "storage backend: file or sqlite")
	flags.String("storage-path", "", "storage directory or database file")
	flags.String("log-level", "", "log level")
	flags.String("log-format", "", "log format: json or console")
	if err := flags.Parse(args); err != nil {
		return err
	}

	v := app.NewViper()
	for key, name := range map[string]string{
		"home":           "home",
		"server.addr":    "addr",
		"storage.driver": "storage-driver",
		"storage.path":   "storage-path",
		"log.level":      "log-level",
		"log.format":     "log-format",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return err
		}
	}

	cfg, err := app.Load(v, *configFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Serve(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
