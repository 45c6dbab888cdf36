package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Lllllllleong/noteshelper/internal/models"
	"github.com/Lllllllleong/noteshelper/internal/ocr"
	"github.com/Lllllllleong/noteshelper/internal/results"
)

const initialRetryBackoff = 500 * time.Millisecond

// ProcessDocument runs OCR and commentary generation for one stored
// document. The extracted text rides along in the result but is never
// persisted on its own.
func (a *Annotator) ProcessDocument(ctx context.Context, documentID string) (models.AnnotationResult, error) {
	result := models.AnnotationResult{DocumentID: documentID}

	operationID, err := a.submitWithRetry(ctx, a.objects.URI(documentID))
	if err != nil {
		return result, fmt.Errorf("ocr submit for document %s: %w", documentID, err)
	}

	text, err := a.waitForText(ctx, operationID)
	if err != nil {
		return result, fmt.Errorf("ocr wait for document %s: %w", documentID, err)
	}
	result.ExtractedText = text

	content, err := a.generateWithRetry(ctx, text)
	if err != nil {
		return result, fmt.Errorf("commentary for document %s: %w", documentID, err)
	}
	result.Commentary = content

	return result, nil
}

// ProcessBatch runs the full pipeline for one upload call. Files are
// handled strictly in submission order, one complete pipeline at a time.
// A file that fails is recorded in the outcome and skipped; it never
// aborts its siblings.
//
// When grouped is set and more than one document succeeds, the individual
// commentaries are joined with a single space, in submission order, and
// passed through generation a second time; the combined commentary is
// persisted under the session's composite key. A grouped batch with a
// single surviving document behaves as ungrouped.
func (a *Annotator) ProcessBatch(ctx context.Context, files []models.UploadFile, grouped bool) (*models.BatchOutcome, error) {
	outcome := &models.BatchOutcome{}

	for _, file := range files {
		doc, err := a.IntakeImage(ctx, file.Data)
		if err != nil {
			a.log.Warn().Err(err).Str("filename", file.Filename).Msg("intake failed")
			outcome.Failures = append(outcome.Failures, models.FileFailure{Filename: file.Filename, Err: err})
			continue
		}

		res, err := a.ProcessDocument(ctx, doc.ID)
		if err != nil {
			a.log.Error().Err(err).Str("document_id", doc.ID).Str("filename", file.Filename).Msg("annotation failed")
			outcome.Failures = append(outcome.Failures, models.FileFailure{Filename: file.Filename, Err: err})
			continue
		}

		if err := a.results.Put(ctx, doc.ID, results.Record{ProcessingResult: res.Commentary}); err != nil {
			a.log.Error().Err(err).Str("document_id", doc.ID).Msg("failed to persist result")
			outcome.Failures = append(outcome.Failures, models.FileFailure{Filename: file.Filename, Err: err})
			continue
		}

		outcome.DocumentIDs = append(outcome.DocumentIDs, doc.ID)
		outcome.Results = append(outcome.Results, res)
	}

	if grouped && len(outcome.DocumentIDs) > 1 {
		combined, err := a.synthesizeCombined(ctx, outcome)
		if err != nil {
			return outcome, err
		}
		outcome.CombinedCommentary = combined
	}

	return outcome, nil
}

// synthesizeCombined runs the second-order pass: generation over the
// already-generated commentaries rather than the raw OCR text.
func (a *Annotator) synthesizeCombined(ctx context.Context, outcome *models.BatchOutcome) (string, error) {
	parts := make([]string, len(outcome.Results))
	for i, res := range outcome.Results {
		parts[i] = res.Commentary
	}

	combined, err := a.generateWithRetry(ctx, strings.Join(parts, " "))
	if err != nil {
		return "", fmt.Errorf("combined commentary: %w", err)
	}

	key := results.CompositeKey(outcome.DocumentIDs)
	if err := a.results.Put(ctx, key, results.Record{CombinedCommentary: combined}); err != nil {
		return "", fmt.Errorf("failed to persist combined commentary under %q: %w", key, err)
	}

	a.log.Info().Str("session_key", key).Int("documents", len(outcome.DocumentIDs)).Msg("combined commentary stored")
	return combined, nil
}

// waitForText polls the OCR operation at the configured interval until it
// leaves the pending state or the deadline expires.
func (a *Annotator) waitForText(ctx context.Context, operationID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.OCRTimeout)
	defer cancel()

	ticker := time.NewTicker(a.cfg.OCRPollInterval)
	defer ticker.Stop()

	for {
		res, err := a.ocrSvc.Poll(ctx, operationID)
		if err != nil {
			return "", err
		}
		switch res.Status {
		case ocr.StatusDone:
			return res.Text, nil
		case ocr.StatusFailed:
			return "", ocr.ErrOCRFailed
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("ocr operation %s did not complete within %s: %w", operationID, a.cfg.OCRTimeout, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (a *Annotator) submitWithRetry(ctx context.Context, imageURI string) (string, error) {
	var operationID string
	err := a.withRetry(ctx, "ocr submit", func() error {
		var submitErr error
		operationID, submitErr = a.ocrSvc.Submit(ctx, imageURI)
		return submitErr
	})
	return operationID, err
}

func (a *Annotator) generateWithRetry(ctx context.Context, text string) (string, error) {
	var content string
	err := a.withRetry(ctx, "generate commentary", func() error {
		var genErr error
		content, genErr = a.generator.Generate(ctx, text)
		return genErr
	})
	return content, err
}

// withRetry runs fn up to cfg.RemoteRetries times with doubling backoff.
// Both wrapped calls are idempotent on the remote side.
func (a *Annotator) withRetry(ctx context.Context, op string, fn func() error) error {
	backoff := initialRetryBackoff

	var err error
	for attempt := 1; attempt <= a.cfg.RemoteRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == a.cfg.RemoteRetries {
			break
		}

		a.log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Dur("backoff", backoff).Msg("remote call failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
