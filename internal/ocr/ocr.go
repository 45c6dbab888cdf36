// Package ocr extracts text from stored note images through an
// asynchronous submit/poll protocol.
//
// The production implementation uses Google Cloud Vision's asynchronous
// image annotation: Submit starts a long-running DOCUMENT_TEXT_DETECTION
// operation whose output lands in GCS, and Poll reports the operation
// state, collecting the extracted text once the operation completes.
package ocr

import "context"

// Status is the observed state of a submitted operation.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Result is one poll observation. Text is populated only when Status is
// StatusDone.
type Result struct {
	Status Status
	Text   string
}

// Service is the asynchronous OCR contract. The caller owns the poll loop:
// it polls at a fixed interval until the status leaves StatusPending.
type Service interface {
	// Submit starts text extraction for the image at the given storage URI
	// and returns the operation identifier to poll.
	Submit(ctx context.Context, imageURI string) (string, error)

	// Poll reports the current state of a previously submitted operation.
	Poll(ctx context.Context, operationID string) (Result, error)
}
