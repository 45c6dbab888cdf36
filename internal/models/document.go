package models

// Document represents one uploaded notes image. The identifier is assigned
// at intake time and doubles as the object name of the re-encoded bytes in
// the image bucket. Documents are immutable once created.
type Document struct {
	ID        string
	ObjectURI string
}

// AnnotationResult is the per-document outcome of the pipeline. The
// extracted text is transient: it feeds the commentary step and is never
// persisted on its own.
type AnnotationResult struct {
	DocumentID    string
	ExtractedText string
	Commentary    string
}

// UploadFile carries one file from a multipart upload into the pipeline.
type UploadFile struct {
	Filename string
	Data     []byte
}

// FileFailure records a single file that failed during a batch upload.
// Sibling files are unaffected.
type FileFailure struct {
	Filename string
	Err      error
}

// BatchOutcome reports the result of one upload call: the ids assigned in
// submission order, their individual results, the combined commentary when
// grouped mode applied, and any per-file failures.
type BatchOutcome struct {
	DocumentIDs        []string
	Results            []AnnotationResult
	CombinedCommentary string
	Failures           []FileFailure
}

// RetrievalOutcome carries the read-side view of one or more documents:
// signed image URLs and stored commentaries in request order, plus the
// combined commentary when one was stored for that id sequence.
type RetrievalOutcome struct {
	ImageURLs          []string
	ProcessingResults  []string
	CombinedCommentary string
}
