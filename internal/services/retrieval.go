package services

import (
	"context"
	"fmt"

	"github.com/Lllllllleong/noteshelper/internal/models"
	"github.com/Lllllllleong/noteshelper/internal/results"
)

// Retrieve implements the read side: a signed image URL and the stored
// commentary for every requested id, plus the combined record when more
// than one id was supplied. Retrieval never recomputes: a missing record
// is reported as ErrResultNotFound, and a missing combined record simply
// leaves the field empty.
func (a *Annotator) Retrieve(ctx context.Context, ids []string) (*models.RetrievalOutcome, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one document id is required")
	}

	outcome := &models.RetrievalOutcome{}
	for _, id := range ids {
		url, err := a.objects.SignedURL(id, a.cfg.SignedURLTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to sign image URL for %s: %w", id, err)
		}

		rec, found, err := a.results.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrResultNotFound, id)
		}

		outcome.ImageURLs = append(outcome.ImageURLs, url)
		outcome.ProcessingResults = append(outcome.ProcessingResults, rec.ProcessingResult)
	}

	// The combined record exists only under the exact id order used at
	// upload time.
	if len(ids) > 1 {
		rec, found, err := a.results.Get(ctx, results.CompositeKey(ids))
		if err != nil {
			return nil, err
		}
		if found {
			outcome.CombinedCommentary = rec.CombinedCommentary
		}
	}

	return outcome, nil
}

// ImageURL returns a signed read URL for one stored document.
func (a *Annotator) ImageURL(id string) (string, error) {
	return a.objects.SignedURL(id, a.cfg.SignedURLTTL)
}

// ProcessingResult returns the stored commentary for one document id. The
// second return value reports whether a record exists.
func (a *Annotator) ProcessingResult(ctx context.Context, id string) (string, bool, error) {
	rec, found, err := a.results.Get(ctx, id)
	if err != nil {
		return "", false, err
	}
	return rec.ProcessingResult, found, nil
}
