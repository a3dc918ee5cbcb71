package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inkgest/inkgest/internal/api"
	"github.com/inkgest/inkgest/internal/archive"
	"github.com/inkgest/inkgest/internal/config"
	"github.com/inkgest/inkgest/internal/document"
	"github.com/inkgest/inkgest/internal/pdfinfo"
	"github.com/inkgest/inkgest/internal/pipeline"
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

	// Initialize clients.
	ac := archive.NewClient(cfg.ArchiveURL, cfg.ArchiveAPIKey)
	var pdf document.PdfResolver
	if cfg.ResolvePdfBackgrounds {
		pdf = pdfinfo.Resolver{}
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, ac, pdf, log)
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

		ac.Close()
	}()

	log.Info("starting inkgest", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
