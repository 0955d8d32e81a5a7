// Package app assembles the import service from configuration.
//
// Both binaries open their stores through Open so the server and the CLI
// always agree on where content and provenance live.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/penyaskito/dashboard-initiative/internal/config"
	"github.com/penyaskito/dashboard-initiative/internal/core"
	"github.com/penyaskito/dashboard-initiative/internal/entity"
	"github.com/penyaskito/dashboard-initiative/internal/state"
	"github.com/penyaskito/dashboard-initiative/internal/state/badgerstate"
	"github.com/penyaskito/dashboard-initiative/internal/store/memory"
	"github.com/penyaskito/dashboard-initiative/internal/store/postgres"
	"github.com/penyaskito/dashboard-initiative/internal/store/sqlite"
)

// App holds the opened stores and the service built over them.
type App struct {
	Service *core.Service
	closers []func() error
}

// entityStore is what the sqlite and postgres stores provide.
type entityStore interface {
	entity.Manager
	state.Store
	Close() error
}

// Open opens the configured entity and state stores and builds the service.
// Callers must Close the returned App.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{}

	entities, err := a.openEntities(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	st, err := a.openState(cfg, entities, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	svc, err := core.NewService(entities, st, core.Options{
		ModulePath:        cfg.Content.ModulePath,
		DefaultLanguage:   cfg.Content.DefaultLanguage,
		Languages:         cfg.Content.Languages,
		BodyFormat:        cfg.Content.BodyFormat,
		AuthorRole:        cfg.Content.AuthorRole,
		AuthorEmailDomain: cfg.Content.AuthorEmailDomain,
		RegistryKey:       cfg.Content.RegistryKey,
		MaxWait:           cfg.Import.MaxWaitTime,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Service = svc

	logger.Info("service ready",
		"storage", cfg.Storage.Backend,
		"state", cfg.State.Backend,
		"module_path", cfg.Content.ModulePath,
		"languages", cfg.Content.Languages,
	)
	return a, nil
}

func (a *App) openEntities(ctx context.Context, cfg *config.Config, logger *slog.Logger) (entity.Manager, error) {
	var store entityStore
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return memory.New(), nil

	case config.BackendSQLite:
		if dir := filepath.Dir(cfg.Storage.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		s, err := sqlite.Open(cfg.Storage.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		store = s

	case config.BackendPostgres:
		s, err := postgres.Open(ctx, cfg.Storage.DatabaseURL, postgres.PoolOptions{
			MaxConns:        int32(cfg.Storage.MaxConns),
			MinConns:        int32(cfg.Storage.MinConns),
			MaxConnLifetime: cfg.Storage.MaxConnLifetime,
			MaxConnIdleTime: cfg.Storage.MaxConnIdleTime,
		}, logger)
		if err != nil {
			return nil, err
		}
		store = s

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	a.closers = append(a.closers, store.Close)
	return store, nil
}

func (a *App) openState(cfg *config.Config, entities entity.Manager, logger *slog.Logger) (state.Store, error) {
	switch cfg.State.Backend {
	case config.BackendMemory:
		return state.NewMemory(), nil

	case config.BackendBadger:
		s, err := badgerstate.Open(cfg.State.Dir, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil

	case config.BackendDatabase:
		st, ok := entities.(state.Store)
		if !ok {
			return nil, fmt.Errorf("storage backend %q cannot hold state", cfg.Storage.Backend)
		}
		return st, nil

	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.State.Backend)
	}
}

// Close releases the stores in reverse opening order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
