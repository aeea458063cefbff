package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/cashbook/internal/app"
	"github.com/MrJamesThe3rd/cashbook/internal/config"
	cashbookHttp "github.com/MrJamesThe3rd/cashbook/internal/http"
	accountHandler "github.com/MrJamesThe3rd/cashbook/internal/http/account"
	categoryHandler "github.com/MrJamesThe3rd/cashbook/internal/http/category"
	entryHandler "github.com/MrJamesThe3rd/cashbook/internal/http/entry"
	exportHandler "github.com/MrJamesThe3rd/cashbook/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/cashbook/internal/http/importcsv"
	learningHandler "github.com/MrJamesThe3rd/cashbook/internal/http/learning"
	maintenanceHandler "github.com/MrJamesThe3rd/cashbook/internal/http/maintenance"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	router := cashbookHttp.New(cashbookHttp.Handlers{
		Entries:     entryHandler.NewHandler(a.Ledger),
		Accounts:    accountHandler.NewHandler(a.Ledger),
		Categories:  categoryHandler.NewHandler(a.Ledger),
		Maintenance: maintenanceHandler.NewHandler(a.Ledger),
		Import:      importHandler.NewHandler(a.Importer),
		Learning:    learningHandler.NewHandler(a.Learning),
		Export:      exportHandler.NewHandler(a.Export),
	}, cashbookHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		JWTSecret:      cfg.Auth.JWTSecret,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr, "auth", cfg.Auth.JWTSecret != "")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
