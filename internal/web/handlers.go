package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Lllllllleong/noteshelper/internal/models"
	"github.com/Lllllllleong/noteshelper/internal/results"
	"github.com/Lllllllleong/noteshelper/internal/services"
)

const maxUploadBytes = 64 << 20

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	data := struct{ ImgUUID string }{ImgUUID: r.URL.Query().Get("img_uuid")}
	if err := templates.ExecuteTemplate(w, "upload.html", data); err != nil {
		s.log.Error().Err(err).Msg("failed to render upload page")
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "could not parse multipart form")
		return
	}

	headers := r.MultipartForm.File["image"]
	if len(headers) == 0 {
		s.writeError(w, http.StatusBadRequest, "at least one image file is required")
		return
	}
	grouped := parseFlag(r.FormValue("groupImages"))

	files := make([]models.UploadFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("could not open uploaded file %s", header.Filename))
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("could not read uploaded file %s", header.Filename))
			return
		}
		files = append(files, models.UploadFile{Filename: header.Filename, Data: data})
	}

	outcome, err := s.pipeline.ProcessBatch(r.Context(), files, grouped)
	if err != nil {
		s.log.Error().Err(err).Msg("batch processing failed")
		s.writeError(w, http.StatusInternalServerError, "processing failed")
		return
	}

	if len(outcome.DocumentIDs) == 0 {
		s.writeError(w, http.StatusBadRequest, strings.Join(failureMessages(outcome.Failures), "; "))
		return
	}

	s.writeJSON(w, http.StatusOK, models.UploadResponse{
		ImgUUIDs: outcome.DocumentIDs,
		Errors:   failureMessages(outcome.Failures),
	})
}

func (s *Server) handleViewResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	outcome, ok := s.retrieve(w, r)
	if !ok {
		return
	}

	s.writeJSON(w, http.StatusOK, models.ViewResultResponse{
		ImageURLs:          outcome.ImageURLs,
		ProcessingResults:  outcome.ProcessingResults,
		CombinedCommentary: outcome.CombinedCommentary,
	})
}

func (s *Server) handleResultPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	outcome, ok := s.retrieve(w, r)
	if !ok {
		return
	}

	page, err := buildResultPage(r.URL.Query().Get("img_uuids"), outcome)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to render commentary markdown")
		s.writeError(w, http.StatusInternalServerError, "failed to render result")
		return
	}
	if err := templates.ExecuteTemplate(w, "result.html", page); err != nil {
		s.log.Error().Err(err).Msg("failed to render result page")
	}
}

// retrieve parses the img_uuids parameter and fetches the documents,
// writing the error response itself when anything goes wrong.
func (s *Server) retrieve(w http.ResponseWriter, r *http.Request) (*models.RetrievalOutcome, bool) {
	param := r.URL.Query().Get("img_uuids")
	if param == "" {
		s.writeError(w, http.StatusBadRequest, "img_uuids parameter is required")
		return nil, false
	}
	ids := results.SplitKey(param)
	if len(ids) == 0 {
		s.writeError(w, http.StatusBadRequest, "img_uuids parameter is required")
		return nil, false
	}

	outcome, err := s.pipeline.Retrieve(r.Context(), ids)
	if err != nil {
		if errors.Is(err, services.ErrResultNotFound) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return nil, false
		}
		s.log.Error().Err(err).Str("img_uuids", param).Msg("retrieval failed")
		s.writeError(w, http.StatusInternalServerError, "retrieval failed")
		return nil, false
	}
	return outcome, true
}

func (s *Server) handleGetImageURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req models.ImageURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ImgUUID == "" {
		s.writeError(w, http.StatusBadRequest, "img_uuid is required")
		return
	}

	url, err := s.pipeline.ImageURL(req.ImgUUID)
	if err != nil {
		s.log.Error().Err(err).Str("img_uuid", req.ImgUUID).Msg("failed to sign image URL")
		s.writeError(w, http.StatusInternalServerError, "failed to create image URL")
		return
	}

	s.writeJSON(w, http.StatusOK, models.ImageURLResponse{ImageURL: url})
}

func (s *Server) handleGetProcessingResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req models.ProcessingResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ImgUUID == "" {
		s.writeError(w, http.StatusBadRequest, "img_uuid is required")
		return
	}

	result, found, err := s.pipeline.ProcessingResult(r.Context(), req.ImgUUID)
	if err != nil {
		s.log.Error().Err(err).Str("img_uuid", req.ImgUUID).Msg("failed to fetch processing result")
		s.writeError(w, http.StatusInternalServerError, "failed to fetch processing result")
		return
	}
	if !found {
		s.writeError(w, http.StatusNotFound, "processing result not found")
		return
	}

	s.writeJSON(w, http.StatusOK, models.ProcessingResultResponse{ProcessingResult: result})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, models.ErrorResponse{Error: msg})
}

func failureMessages(failures []models.FileFailure) []string {
	if len(failures) == 0 {
		return nil
	}
	msgs := make([]string, len(failures))
	for i, f := range failures {
		msgs[i] = fmt.Sprintf("%s: %v", f.Filename, f.Err)
	}
	return msgs
}

func parseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
