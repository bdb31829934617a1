package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"logicsim/internal/config"
	"logicsim/internal/logging"
	"logicsim/internal/repository"
	"logicsim/internal/repository/postgres"
	"logicsim/internal/repository/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// rootOptions holds the global flags and the state resolved from them
type rootOptions struct {
	configPath string
	dbPath     string
	circuit    string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "logicsim",
		Short:         "Logic circuit simulator",
		Long:          "logicsim builds, simulates and stores logic circuits made of gates and inputs.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default: search "+config.EnvConfigPath+", ./"+config.ConfigFileName+", XDG dirs)")
	flags.StringVar(&opts.dbPath, "db", "", "SQLite database path")
	flags.StringVar(&opts.circuit, "circuit", "", "circuit name")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(opts),
		newSimulateCmd(opts),
		newWatchCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
		newListCmd(opts),
		newDeleteCmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}

// resolve loads the config, applies flag overrides and builds the logger
func (o *rootOptions) resolve(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, _, err = config.LoadFromPath(o.configPath)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		return err
	}

	if o.dbPath != "" {
		cfg.Database.Path = o.dbPath
	}
	if o.circuit != "" {
		cfg.Circuit.Name = o.circuit
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	o.cfg = cfg
	o.logger = logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	slog.SetDefault(o.logger)
	cmd.SetContext(logging.WithLogger(cmd.Context(), o.logger))
	return nil
}

// openRepository opens the store selected by the database config
func openRepository(ctx context.Context, db config.DatabaseConfig) (repository.Repository, error) {
	switch db.Driver {
	case config.DriverPostgres:
		store, err := postgres.Open(ctx, db.URL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return store, nil
	default:
		repo, err := sqlite.New(db.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", db.Path, err)
		}
		return repo, nil
	}
}

func closeQuietly(ctx context.Context, c io.Closer) {
	if err := c.Close(); err != nil {
		logging.FromContext(ctx).Warn("close failed", "error", err)
	}
}
