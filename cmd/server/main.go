package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docchunk/internal/api"
	"github.com/dgallion1/docchunk/internal/blobstore"
	"github.com/dgallion1/docchunk/internal/config"
	"github.com/dgallion1/docchunk/internal/document"
	"github.com/dgallion1/docchunk/internal/pipeline"
	"github.com/dgallion1/docchunk/internal/processor"
	"github.com/dgallion1/docchunk/internal/writer"
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
	store := blobstore.NewClient(cfg.BlobstoreURL, cfg.BlobstoreAPIKey, cfg.SourceContainer, cfg.DestContainer)

	// Initialize pipeline.
	registry := buildRegistry(cfg)
	pipe := pipeline.New(registry, writer.New(store, log), log)
	orch, err := pipeline.NewOrchestrator(pipe, log,
		pipeline.WithWorkerCount(cfg.WorkerCount),
		pipeline.WithJobTTL(cfg.JobTTL),
	)
	if err != nil {
		log.Error("failed to initialize orchestrator", "error", err)
		os.Exit(1)
	}
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, store, registry, log, cfg)

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

		store.Close()
	}()

	log.Info("starting docchunk", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// buildRegistry wires the built-in document kinds with chunk parameters
// from configuration.
func buildRegistry(cfg config.Config) *processor.Registry {
	pdfParams := document.ChunkParams{Size: cfg.PDFChunkSize, Overlap: cfg.PDFChunkOverlap}
	defParams := document.ChunkParams{Size: cfg.DefaultChunkSize, Overlap: cfg.DefaultChunkOverlap}

	r := processor.NewRegistry()
	r.Register(processor.KindPDF, processor.NewPDFProcessor(pdfParams), ".pdf")
	r.Register(processor.KindWord, processor.NewWordProcessor(defParams), ".docx", ".doc")
	r.Register(processor.KindMarkdown, processor.NewMarkdownProcessor(defParams), ".md", ".markdown")
	r.Register(processor.KindHTML, processor.NewHTMLProcessor(defParams), ".html", ".htm")
	r.Register(processor.KindText, processor.NewTextProcessor(defParams), ".txt")
	r.Register(processor.KindCSV, processor.NewCSVProcessor(defParams), ".csv")
	return r
}
