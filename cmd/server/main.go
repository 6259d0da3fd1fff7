package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/sylcheck/internal/api"
	"github.com/dgallion1/sylcheck/internal/catalog"
	"github.com/dgallion1/sylcheck/internal/checker"
	"github.com/dgallion1/sylcheck/internal/config"
	"github.com/dgallion1/sylcheck/internal/parser"
	"github.com/dgallion1/sylcheck/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The catalog client is optional. Keep the interfaces untyped nil when
	// it is disabled so the server reports the catalog as unavailable.
	var (
		lookup checker.CatalogLookup
		admin  api.CatalogAdmin
	)
	if cfg.Catalog.Enabled {
		client := catalog.NewClient(catalog.NewCache(cfg.Catalog.CacheTTL, time.Now), cfg.CatalogOptions(), log)
		lookup, admin = client, client
		log.Info("catalog validation enabled", "base_url", cfg.Catalog.BaseURL)
	}

	chk := checker.New(parser.NewExtractor(cfg.ParserOptions()), lookup, log)

	orch := pipeline.NewOrchestrator(cfg, chk, log)
	orch.Start(ctx)

	srv := api.NewServer(chk, orch, admin, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		// Stop accepting uploads before the job queue closes.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", "error", err)
		}

		orch.Stop()
	}()

	log.Info("starting sylcheck server", "port", cfg.Port, "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
