package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/penyaskito/dashboard-initiative/internal/app"
	"github.com/penyaskito/dashboard-initiative/internal/config"
	"github.com/penyaskito/dashboard-initiative/internal/core"
	"github.com/penyaskito/dashboard-initiative/internal/logging"
)

type rootOptions struct {
	configFile string
	modulePath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "democontent",
		Short:         "Import multilingual demo content from CSV and delete it again",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "TOML config file (overrides CONFIG_FILE)")
	cmd.PersistentFlags().StringVar(&opts.modulePath, "module-path", "", "Directory holding default_content/ (overrides CONTENT_MODULE_PATH)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	cmd.AddCommand(newImportCmd(&opts))
	cmd.AddCommand(newDeleteCmd(&opts))
	cmd.AddCommand(newStatusCmd(&opts))
	cmd.AddCommand(newPathCmd(&opts))
	return cmd
}

// loadConfig applies flag overrides to the environment and loads the config.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	overrides := map[string]string{
		"CONFIG_FILE":         o.configFile,
		"CONTENT_MODULE_PATH": o.modulePath,
		"LOG_LEVEL":           o.logLevel,
	}
	for name, value := range overrides {
		if value == "" {
			continue
		}
		if err := os.Setenv(name, value); err != nil {
			return nil, withCode(exitUsage, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	return cfg, nil
}

// session is an opened App plus the run context for one command.
type session struct {
	cfg    *config.Config
	app    *app.App
	ctx    context.Context
	cancel context.CancelFunc
}

// open loads config, routes logs to stderr and opens the stores. Runs are
// bounded by IMPORT_TIMEOUT and cancelled by SIGINT or SIGTERM.
func (o *rootOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, cfg.Import.Timeout)

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		cancel()
		stop()
		return nil, withCode(exitStore, err)
	}

	return &session{
		cfg: cfg,
		app: a,
		ctx: ctx,
		cancel: func() {
			cancel()
			stop()
		},
	}, nil
}

func (s *session) Close() {
	s.cancel()
	if err := s.app.Close(); err != nil {
		slog.Warn("close stores", "error", err)
	}
}

func Execute() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		if msg := core.FormatUserError(err); code != exitUsage && core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}
}
