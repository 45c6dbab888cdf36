// Package web exposes the annotation pipeline over HTTP: multipart upload,
// JSON retrieval endpoints, and a small HTML front end.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Lllllllleong/noteshelper/internal/logger"
	"github.com/Lllllllleong/noteshelper/internal/models"
)

// Pipeline is the slice of annotator behavior the web tier depends on.
type Pipeline interface {
	ProcessBatch(ctx context.Context, files []models.UploadFile, grouped bool) (*models.BatchOutcome, error)
	Retrieve(ctx context.Context, ids []string) (*models.RetrievalOutcome, error)
	ImageURL(id string) (string, error)
	ProcessingResult(ctx context.Context, id string) (string, bool, error)
}

// Server is the HTTP front of the service.
type Server struct {
	pipeline   Pipeline
	log        zerolog.Logger
	httpServer *http.Server
}

// NewServer wires the routes and returns a server listening on addr once
// ListenAndServe is called.
func NewServer(addr string, pipeline Pipeline) *Server {
	s := &Server{
		pipeline: pipeline,
		log:      logger.WithComponent("web"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/view_result", s.handleViewResult)
	mux.HandleFunc("/result", s.handleResultPage)
	mux.HandleFunc("/get_image_url", s.handleGetImageURL)
	mux.HandleFunc("/get_processing_result", s.handleGetProcessingResult)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		// Uploads block on sequential OCR polling and generation calls, so
		// the write timeout has to cover a whole grouped batch.
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving requests until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
