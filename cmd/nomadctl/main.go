// Command nomadctl runs operator tasks against a NomadX database: seeding
// profiles, issuing tokens, exporting bookings and taking backups.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"nomadx/internal/config"
	"nomadx/internal/database"
	"nomadx/internal/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "nomadctl",
	Short:         "Operator tools for NomadX",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "configs/config.yaml"
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultPath, "path to config file")

	rootCmd.AddCommand(profileCmd, tokenCmd, exportCmd, backupCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// env is what every subcommand works with. close releases the database and log file.
type env struct {
	cfg    *config.Config
	db     *database.DB
	logger *zerolog.Logger
	closer io.Closer
}

func (e *env) close() {
	if e.db != nil {
		_ = e.db.Close()
	}
	if e.closer != nil {
		_ = e.closer.Close()
	}
}

func loadConfig() (*config.Config, *zerolog.Logger, io.Closer, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logging.Component(logger, "nomadctl"), closer, nil
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, logger, closer, err := loadConfig()
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, logger: logger, closer: closer}

	e.db, err = database.Open(ctx, cfg.Database, logging.Component(logger, "database"))
	if err != nil {
		e.close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	return e, nil
}
