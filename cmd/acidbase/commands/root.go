package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"acidbase/internal/app"
	"acidbase/internal/logging"
)

var (
	home       string
	configFile string
	serverURL  string
	logLevel   string

	cfg    app.Config
	logger *zap.Logger
)

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	home, configFile, serverURL, logLevel = "", "", "", ""

	root := &cobra.Command{
		Use:           "acidbase",
		Short:         "Weak acid / strong base titration simulator",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := app.NewViper()
			flags := cmd.Flags()
			for key, name := range map[string]string{
				"home":          "home",
				"client.server": "server",
				"log.level":     "log-level",
			} {
				if f := flags.Lookup(name); f != nil {
					if err := v.BindPFlag(key, f); err != nil {
						return err
					}
				}
			}

			var err error
			cfg, err = app.Load(v, configFile)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
				return err
			}
			logger, err = logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.acidbase)")
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default <home>/config.yaml)")
	root.PersistentFlags().StringVar(&serverURL, "server", "", "API base URL (e.g. http://localhost:5000)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		solveCmd(),
		simulateCmd(),
		registerCmd(),
		loginCmd(),
		historyCmd(),
		showCmd(),
		serveCmd(),
	)
	return root
}

func clientWire() (*app.ClientWire, error) {
	return app.NewClientWire(cfg, cfg.Client.Server)
}
