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

	"github.com/AstikVerma/doclens/internal/api"
	"github.com/AstikVerma/doclens/internal/config"
	"github.com/AstikVerma/doclens/internal/embedding"
	"github.com/AstikVerma/doclens/internal/index"
	"github.com/AstikVerma/doclens/internal/insights"
	"github.com/AstikVerma/doclens/internal/outline"
	"github.com/AstikVerma/doclens/internal/pipeline"
	"github.com/AstikVerma/doclens/internal/search"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.PDFDir, 0o755); err != nil {
		log.Error("create pdf dir", "error", err)
		os.Exit(1)
	}

	// Initialize clients.
	encoder, err := embedding.NewOllama(cfg.OllamaHost, cfg.EmbedModel)
	if err != nil {
		log.Error("embedding client init failed", "error", err)
		os.Exit(1)
	}
	gen, err := insights.NewGenerator(cfg.OllamaHost, cfg.LLMModel, log)
	if err != nil {
		log.Error("insights client init failed", "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	classifier := outline.New(cfg.HeadingModelPath, log)
	store, err := index.NewStore(cfg.IndexDir)
	if err != nil {
		log.Error("index store init failed", "error", err)
		os.Exit(1)
	}
	builder := index.NewBuilder(classifier, encoder, log, cfg.EmbedMaxConcurrent)
	runner := pipeline.NewRunner(builder, store, log)
	engine := search.NewEngine(encoder)

	// Initialize HTTP server.
	srv := api.NewServer(runner, store, engine, gen, log, cfg)

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

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting doclens", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
