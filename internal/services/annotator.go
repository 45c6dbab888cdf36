// Package services implements the intake-and-annotation pipeline: image
// re-encoding and identifier assignment, OCR and commentary orchestration
// in single and grouped modes, and result retrieval.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Lllllllleong/noteshelper/internal/commentary"
	"github.com/Lllllllleong/noteshelper/internal/logger"
	"github.com/Lllllllleong/noteshelper/internal/ocr"
	"github.com/Lllllllleong/noteshelper/internal/results"
)

// ObjectStore is the subset of bucket behavior the pipeline needs.
type ObjectStore interface {
	Put(ctx context.Context, objectName string, data []byte) error
	URI(objectName string) string
	SignedURL(objectName string, ttl time.Duration) (string, error)
}

// AnnotatorConfig tunes the pipeline's remote-call behavior.
type AnnotatorConfig struct {
	// OCRPollInterval is the fixed interval between polls of a pending OCR
	// operation.
	OCRPollInterval time.Duration

	// OCRTimeout bounds how long one document's OCR operation may stay
	// pending before the pipeline gives up.
	OCRTimeout time.Duration

	// RemoteRetries is the number of attempts for OCR submission and
	// commentary generation before surfacing the error.
	RemoteRetries int

	// SignedURLTTL is the validity window of signed image URLs.
	SignedURLTTL time.Duration
}

func (c *AnnotatorConfig) applyDefaults() {
	if c.OCRPollInterval <= 0 {
		c.OCRPollInterval = time.Second
	}
	if c.OCRTimeout <= 0 {
		c.OCRTimeout = 2 * time.Minute
	}
	if c.RemoteRetries <= 0 {
		c.RemoteRetries = 3
	}
	if c.SignedURLTTL <= 0 {
		c.SignedURLTTL = time.Hour
	}
}

// Annotator holds the remote-service handles for the pipeline. Clients are
// constructed once at startup and injected; the Annotator itself holds no
// per-request state, so concurrent uploads are independent.
type Annotator struct {
	objects   ObjectStore
	ocrSvc    ocr.Service
	generator commentary.Generator
	results   results.Store
	cfg       AnnotatorConfig
	log       zerolog.Logger
}

// NewAnnotator wires the pipeline's collaborators together.
func NewAnnotator(objects ObjectStore, ocrSvc ocr.Service, generator commentary.Generator, store results.Store, cfg AnnotatorConfig) *Annotator {
	cfg.applyDefaults()
	return &Annotator{
		objects:   objects,
		ocrSvc:    ocrSvc,
		generator: generator,
		results:   store,
		cfg:       cfg,
		log:       logger.WithComponent("annotator"),
	}
}
