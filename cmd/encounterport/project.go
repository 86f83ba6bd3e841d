package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"encounterport/internal/config"
	"encounterport/internal/datafs"
	"encounterport/internal/importer"
	"encounterport/internal/logging"
	"encounterport/internal/store"
	"encounterport/internal/store/postgres"
	"encounterport/internal/store/sqlite"
)

type project struct {
	cfg    *config.ProjectConfig
	logger *slog.Logger
	data   *datafs.Local
}

func loadProject() (*project, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	data, err := datafs.NewLocal(cfg.DataRoot)
	if err != nil {
		return nil, err
	}
	return &project{cfg: cfg, logger: logger, data: data}, nil
}

// options returns the importer options for p, with the configured icon rules loaded.
func (p *project) options() (importer.Options, error) {
	opts := importer.OptionsFromConfig(p.cfg)
	if strings.TrimSpace(p.cfg.IconRules) == "" {
		opts.Icons = config.DefaultIconRules()
		return opts, nil
	}
	rules, err := config.LoadIconRules(p.cfg.IconRules)
	if err != nil {
		return importer.Options{}, err
	}
	opts.Icons = rules
	return opts, nil
}

func openDB(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	dsn := cfg.Database.DSN
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "sqlite://"):
		client, err := sqlite.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return client, nil
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		client, err := postgres.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported database dsn scheme: %s", dsn)
	}
}

// openStore opens the configured database and makes sure its schema exists.
func openStore(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close(ctx)
		return nil, err
	}
	return db, nil
}
