package ocr

import "errors"

var (
	// ErrOCRFailed is returned when the remote annotation operation reports
	// a failure or its output cannot be collected.
	ErrOCRFailed = errors.New("ocr operation failed")

	// ErrNoText is returned when a completed operation produced no readable
	// text for the image.
	ErrNoText = errors.New("image contains no readable text")
)
