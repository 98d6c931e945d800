package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/xbrlgest/internal/api"
	"github.com/dgallion1/xbrlgest/internal/canonical"
	"github.com/dgallion1/xbrlgest/internal/config"
	"github.com/dgallion1/xbrlgest/internal/pipeline"
	"github.com/dgallion1/xbrlgest/internal/store"
	"github.com/dgallion1/xbrlgest/internal/taxonomy"
)

func main() {
	godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Canonical mapping table: built once, immutable, shared by all
	// ingestions. An absent table is not fatal; facts just carry no
	// canonical concept.
	table := canonical.LoadDir(log, cfg.MappingsDir, cfg.MappingPattern)

	registry := taxonomy.DefaultRegistry()
	if cfg.TaxonomyRegistry != "" {
		reg, err := taxonomy.LoadRegistry(cfg.TaxonomyRegistry)
		if err != nil {
			log.Warn("taxonomy registry unavailable, using defaults", "path", cfg.TaxonomyRegistry, "error", err)
		} else {
			registry = reg
		}
	}

	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("database unavailable", "error", err)
			os.Exit(1)
		}
		st = pg
	} else {
		log.Warn("DATABASE_URL not set, filings are kept in memory only")
		st = store.NewMemory()
	}

	// Initialize pipeline.
	ingestor := pipeline.NewIngestor(table, taxonomy.NewResolver(registry))
	orch := pipeline.NewOrchestrator(cfg, ingestor, st, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		st.Close()
	}()

	log.Info("starting xbrlgest", "port", cfg.Port, "mappings", table.Len())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
