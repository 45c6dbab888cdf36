// Package results persists annotation outcomes in a string-keyed store and
// defines the key scheme for single vs. grouped retrieval.
package results

import "context"

// Record is the stored outcome for one key. Exactly one field is set:
// ProcessingResult for an individual document, CombinedCommentary for a
// grouped session. Records are written once and never merged; a same-key
// write is an idempotent overwrite.
type Record struct {
	ProcessingResult   string `firestore:"processing_result,omitempty" json:"processing_result,omitempty"`
	CombinedCommentary string `firestore:"combined_commentary,omitempty" json:"combined_commentary,omitempty"`
}

// Store is the result store contract. Get reports absence through its
// second return value: an absent key is an expected outcome, not an error,
// and is distinguishable from a present-but-empty record.
type Store interface {
	Put(ctx context.Context, key string, rec Record) error
	Get(ctx context.Context, key string) (Record, bool, error)
}
