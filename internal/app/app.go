// Package app wires the stores and services every binary shares.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/cashbook/internal/classify"
	"github.com/MrJamesThe3rd/cashbook/internal/config"
	"github.com/MrJamesThe3rd/cashbook/internal/database"
	"github.com/MrJamesThe3rd/cashbook/internal/duplicate"
	"github.com/MrJamesThe3rd/cashbook/internal/export"
	"github.com/MrJamesThe3rd/cashbook/internal/importer"
	"github.com/MrJamesThe3rd/cashbook/internal/learning"
	"github.com/MrJamesThe3rd/cashbook/internal/learning/filestore"
	learningStore "github.com/MrJamesThe3rd/cashbook/internal/learning/store"
	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/cashbook/internal/ledger/store"
)

type App struct {
	DB *sql.DB

	Ledger   *ledger.Service
	Learning *learning.Service
	Importer *importer.Service
	Export   *export.Service
}

// New connects to the database and builds the services. Close releases the
// connection pool.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := database.New(ctx, cfg.ConnectionString(), cfg.DB.Migrate)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	rules, err := learningRepository(db, cfg.Learning.File)
	if err != nil {
		db.Close()
		return nil, err
	}

	var (
		ledgerService   = ledger.NewService(ledgerStore.New(db), ledger.WithLogger(logger))
		learningService = learning.NewService(rules)
		classifier      = classify.New(learningService, cfg.Import.GuestDeposit, classify.WithLogger(logger))
		detector        = duplicate.NewDetector(duplicate.WithCategories(cfg.Import.DedupeCategories...))
	)

	return &App{
		DB:       db,
		Ledger:   ledgerService,
		Learning: learningService,
		Importer: importer.NewService(ledgerService, classifier, detector, importer.WithLogger(logger)),
		Export:   export.NewService(ledgerService),
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}

// learningRepository keeps rules in Postgres unless a YAML file is configured.
func learningRepository(db *sql.DB, file string) (learning.Repository, error) {
	if file == "" {
		return learningStore.New(db), nil
	}

	fs, err := filestore.Open(file)
	if err != nil {
		return nil, fmt.Errorf("opening learning file: %w", err)
	}

	return fs, nil
}
