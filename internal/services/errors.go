package services

import "errors"

var (
	// ErrInvalidImage is returned when intake cannot decode uploaded bytes.
	// It fails that single file; sibling files in a batch are unaffected.
	ErrInvalidImage = errors.New("cannot decode uploaded image")

	// ErrResultNotFound is returned on retrieval of an id that was never
	// written to the result store.
	ErrResultNotFound = errors.New("processing result not found")
)
