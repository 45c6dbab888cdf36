package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/noteshelper/internal/commentary"
	"github.com/Lllllllleong/noteshelper/internal/config"
	"github.com/Lllllllleong/noteshelper/internal/gcp"
	"github.com/Lllllllleong/noteshelper/internal/logger"
	"github.com/Lllllllleong/noteshelper/internal/ocr"
	"github.com/Lllllllleong/noteshelper/internal/results"
	"github.com/Lllllllleong/noteshelper/internal/services"
	"github.com/Lllllllleong/noteshelper/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the notes annotation HTTP server",
	Long: `Start the long-lived HTTP server.

Required environment variables:
  GOOGLE_CLOUD_PROJECT - Google Cloud project ID
  IMAGE_BUCKET         - GCS bucket for re-encoded note images

Optional:
  COMMENTARY_PROVIDER  - "vertex" (default) or "openai"
  OPENAI_API_KEY       - required when COMMENTARY_PROVIDER=openai`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.WithComponent("serve")

	// Remote-service handles are constructed once here and injected; they
	// are shared, read-only state for the life of the process.
	bucket, err := gcp.NewBucket(ctx, cfg.ImageBucket)
	if err != nil {
		return err
	}
	defer bucket.Close()

	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return err
	}
	defer firestoreClient.Close()
	store := results.NewFirestoreStore(firestoreClient, cfg.ResultsCollection)

	ocrService, err := ocr.NewVisionService(ctx, bucket)
	if err != nil {
		return err
	}
	defer ocrService.Close()

	generator, closeGenerator, err := buildGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeGenerator()

	annotator := services.NewAnnotator(bucket, ocrService, generator, store, services.AnnotatorConfig{
		OCRPollInterval: cfg.OCRPollInterval,
		OCRTimeout:      cfg.OCRTimeout,
		RemoteRetries:   cfg.RemoteRetries,
		SignedURLTTL:    cfg.SignedURLTTL,
	})
	server := web.NewServer(cfg.ListenAddr, annotator)

	log.Info().
		Str("addr", cfg.ListenAddr).
		Str("bucket", cfg.ImageBucket).
		Str("provider", cfg.CommentaryProvider).
		Msg("starting notes helper")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(server.ListenAndServe)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildGenerator picks the commentary provider from configuration.
func buildGenerator(ctx context.Context, cfg *config.Config) (commentary.Generator, func(), error) {
	if cfg.CommentaryProvider == "openai" {
		return commentary.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel), func() {}, nil
	}

	vertexGenerator, err := commentary.NewVertexGenerator(ctx, cfg.ProjectID, cfg.VertexAIRegion)
	if err != nil {
		return nil, nil, err
	}
	return vertexGenerator, func() { _ = vertexGenerator.Close() }, nil
}
