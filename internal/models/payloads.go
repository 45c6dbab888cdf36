package models

// These structs define the JSON payloads for the HTTP API.

// UploadResponse is the reply to POST /upload. Ids appear in submission
// order. Errors lists per-file failures that did not abort the batch.
type UploadResponse struct {
	ImgUUIDs []string `json:"img_uuids"`
	Errors   []string `json:"errors,omitempty"`
}

// ViewResultResponse is the reply to GET /view_result. CombinedCommentary
// is present only when more than one id was requested and a combined record
// exists for exactly that id order.
type ViewResultResponse struct {
	ImageURLs          []string `json:"image_urls"`
	ProcessingResults  []string `json:"processing_results"`
	CombinedCommentary string   `json:"combined_commentary,omitempty"`
}

// ImageURLRequest is the body of POST /get_image_url.
type ImageURLRequest struct {
	ImgUUID string `json:"img_uuid"`
}

// ImageURLResponse carries a time-limited signed read URL.
type ImageURLResponse struct {
	ImageURL string `json:"image_url"`
}

// ProcessingResultRequest is the body of POST /get_processing_result.
type ProcessingResultRequest struct {
	ImgUUID string `json:"img_uuid"`
}

// ProcessingResultResponse carries one stored commentary.
type ProcessingResultResponse struct {
	ProcessingResult string `json:"processing_result"`
}

// ErrorResponse is the structured error body for all API endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}
