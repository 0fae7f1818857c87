// Command meraservice resolves MERA variable requests from Kafka and serves
// synchronous lookups over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/mera-explorer/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/mera-explorer/internal/adapter/kafka"
	"github.com/couchcryptid/mera-explorer/internal/config"
	"github.com/couchcryptid/mera-explorer/internal/inventory"
	"github.com/couchcryptid/mera-explorer/internal/mera"
	"github.com/couchcryptid/mera-explorer/internal/observability"
	"github.com/couchcryptid/mera-explorer/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	resolver := mera.NewResolver(mera.DefaultTable())
	if dups := mera.DefaultTable().Duplicates(); len(dups) > 0 {
		logger.Warn("standard name table has shared codes", "codes", len(dups))
	}

	// Presence checks are feature-flagged via MERA_MEDIUM.
	var loader inventory.Loader
	if cfg.InventoryEnabled() {
		manifestDir := cfg.ManifestDir
		if cfg.MediaFile != "" {
			media, err := config.LoadMedia(cfg.MediaFile)
			if err != nil {
				logger.Error("failed to load media catalogue", "error", err)
				os.Exit(1)
			}
			if _, ok := media.Lookup(cfg.Medium); !ok {
				logger.Error("medium not in catalogue", "medium", cfg.Medium, "media", media.Names())
				os.Exit(1)
			}
			if media.ManifestDir != "" {
				manifestDir = media.ManifestDir
			}
		}
		loader = inventory.NewCachedLoader(inventory.NewFSLoader(os.DirFS(manifestDir), "."), cfg.ManifestCacheSize, metrics)
		metrics.InventoryActive.Set(1)
		logger.Info("inventory checks enabled", "medium", cfg.Medium, "manifest_dir", manifestDir, "cache_size", cfg.ManifestCacheSize)
	} else {
		logger.Info("inventory checks disabled")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(resolver, loader, cfg.Medium, logger, metrics, pipeline.WithLocalRoot(cfg.RootDir))

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize, pipeline.WithWorkers(cfg.Workers))

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, transformer, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start resolve pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
