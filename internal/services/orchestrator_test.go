package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Lllllllleong/noteshelper/internal/models"
	"github.com/Lllllllleong/noteshelper/internal/ocr"
	"github.com/Lllllllleong/noteshelper/internal/results"
)

type objectStoreStub struct {
	objects map[string][]byte
	putErr  error
}

func (s *objectStoreStub) Put(_ context.Context, name string, data []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[name] = data
	return nil
}

func (s *objectStoreStub) URI(name string) string {
	return "gs://test-bucket/" + name
}

func (s *objectStoreStub) SignedURL(name string, _ time.Duration) (string, error) {
	return "https://signed.example/" + name, nil
}

// ocrStub completes each operation after pendingPolls pending observations,
// returning text derived from the submitted URI.
type ocrStub struct {
	pendingPolls int
	failSubmits  int
	textByOp     map[string]string
	polls        map[string]int
	submissions  int
}

func (s *ocrStub) Submit(_ context.Context, imageURI string) (string, error) {
	if s.failSubmits > 0 {
		s.failSubmits--
		return "", errors.New("ocr backend unavailable")
	}
	opID := fmt.Sprintf("op-%d", s.submissions)
	s.submissions++
	if s.textByOp == nil {
		s.textByOp = make(map[string]string)
	}
	s.textByOp[opID] = "notes from " + imageURI
	return opID, nil
}

func (s *ocrStub) Poll(_ context.Context, operationID string) (ocr.Result, error) {
	if s.polls == nil {
		s.polls = make(map[string]int)
	}
	s.polls[operationID]++
	if s.polls[operationID] <= s.pendingPolls {
		return ocr.Result{Status: ocr.StatusPending}, nil
	}
	return ocr.Result{Status: ocr.StatusDone, Text: s.textByOp[operationID]}, nil
}

// neverDoneOCR models a remote operation that never leaves pending.
type neverDoneOCR struct{}

func (neverDoneOCR) Submit(context.Context, string) (string, error) {
	return "op-stuck", nil
}

func (neverDoneOCR) Poll(context.Context, string) (ocr.Result, error) {
	return ocr.Result{Status: ocr.StatusPending}, nil
}

type generatorStub struct {
	failures int
	calls    []string
}

func (g *generatorStub) Generate(_ context.Context, notes string) (string, error) {
	if g.failures > 0 {
		g.failures--
		return "", errors.New("model overloaded")
	}
	g.calls = append(g.calls, notes)
	return "commentary on [" + notes + "]", nil
}

type storeStub struct {
	records map[string]results.Record
}

func newStoreStub() *storeStub {
	return &storeStub{records: make(map[string]results.Record)}
}

func (s *storeStub) Put(_ context.Context, key string, rec results.Record) error {
	s.records[key] = rec
	return nil
}

func (s *storeStub) Get(_ context.Context, key string) (results.Record, bool, error) {
	rec, ok := s.records[key]
	return rec, ok, nil
}

func fastConfig() AnnotatorConfig {
	return AnnotatorConfig{
		OCRPollInterval: time.Millisecond,
		OCRTimeout:      time.Second,
		RemoteRetries:   1,
	}
}

func TestProcessBatchGrouped(t *testing.T) {
	gen := &generatorStub{}
	store := newStoreStub()
	a := NewAnnotator(&objectStoreStub{}, &ocrStub{pendingPolls: 2}, gen, store, fastConfig())

	files := []models.UploadFile{
		{Filename: "page1.png", Data: makePNG(t)},
		{Filename: "page2.png", Data: makePNG(t)},
		{Filename: "page3.png", Data: makePNG(t)},
	}

	outcome, err := a.ProcessBatch(context.Background(), files, true)
	if err != nil {
		t.Fatalf("ProcessBatch returned error: %v", err)
	}
	if len(outcome.DocumentIDs) != 3 {
		t.Fatalf("expected 3 document ids, got %d", len(outcome.DocumentIDs))
	}
	if outcome.CombinedCommentary == "" {
		t.Fatal("grouped batch must produce a combined commentary")
	}
	if outcome.Results[0].ExtractedText == "" {
		t.Fatal("per-document result should carry the extracted text")
	}

	// Individual records keyed by id verbatim.
	for i, id := range outcome.DocumentIDs {
		rec, ok := store.records[id]
		if !ok {
			t.Fatalf("no record stored for document %s", id)
		}
		if rec.ProcessingResult != outcome.Results[i].Commentary {
			t.Fatalf("stored commentary mismatch for %s", id)
		}
		if rec.CombinedCommentary != "" {
			t.Fatalf("individual record for %s must not carry a combined commentary", id)
		}
	}

	// Combined record only under the submission-order composite key.
	key := results.CompositeKey(outcome.DocumentIDs)
	rec, ok := store.records[key]
	if !ok {
		t.Fatalf("no combined record under %q", key)
	}
	if rec.CombinedCommentary != outcome.CombinedCommentary {
		t.Fatal("stored combined commentary does not match outcome")
	}
	if rec.ProcessingResult != "" {
		t.Fatal("combined record must not carry an individual result")
	}

	reversed := []string{outcome.DocumentIDs[2], outcome.DocumentIDs[1], outcome.DocumentIDs[0]}
	if _, ok := store.records[results.CompositeKey(reversed)]; ok {
		t.Fatal("combined record must not be reachable under a permuted key")
	}

	// The combined pass consumes the individual commentaries, space-joined
	// in submission order, not the raw OCR text.
	individual := make([]string, 3)
	for i, res := range outcome.Results {
		individual[i] = res.Commentary
	}
	lastInput := gen.calls[len(gen.calls)-1]
	if lastInput != strings.Join(individual, " ") {
		t.Fatalf("combined input = %q, want space-joined individual commentaries", lastInput)
	}
}

func TestProcessBatchUngroupedProducesNoCombined(t *testing.T) {
	store := newStoreStub()
	a := NewAnnotator(&objectStoreStub{}, &ocrStub{}, &generatorStub{}, store, fastConfig())

	files := []models.UploadFile{
		{Filename: "a.png", Data: makePNG(t)},
		{Filename: "b.png", Data: makePNG(t)},
	}

	outcome, err := a.ProcessBatch(context.Background(), files, false)
	if err != nil {
		t.Fatalf("ProcessBatch returned error: %v", err)
	}
	if outcome.CombinedCommentary != "" {
		t.Fatal("ungrouped batch must not produce a combined commentary")
	}
	if len(store.records) != 2 {
		t.Fatalf("expected exactly 2 stored records, got %d", len(store.records))
	}
}

func TestProcessBatchGroupedSingleFile(t *testing.T) {
	store := newStoreStub()
	a := NewAnnotator(&objectStoreStub{}, &ocrStub{}, &generatorStub{}, store, fastConfig())

	outcome, err := a.ProcessBatch(context.Background(), []models.UploadFile{{Filename: "only.png", Data: makePNG(t)}}, true)
	if err != nil {
		t.Fatalf("ProcessBatch returned error: %v", err)
	}
	if outcome.CombinedCommentary != "" {
		t.Fatal("a single-document session is not grouped")
	}
	if len(store.records) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(store.records))
	}
}

func TestProcessBatchInvalidFileDoesNotAbortSiblings(t *testing.T) {
	store := newStoreStub()
	a := NewAnnotator(&objectStoreStub{}, &ocrStub{}, &generatorStub{}, store, fastConfig())

	files := []models.UploadFile{
		{Filename: "broken.bin", Data: []byte("not an image")},
		{Filename: "good.png", Data: makePNG(t)},
	}

	outcome, err := a.ProcessBatch(context.Background(), files, false)
	if err != nil {
		t.Fatalf("ProcessBatch returned error: %v", err)
	}
	if len(outcome.DocumentIDs) != 1 {
		t.Fatalf("expected 1 surviving document, got %d", len(outcome.DocumentIDs))
	}
	if len(outcome.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(outcome.Failures))
	}
	if !errors.Is(outcome.Failures[0].Err, ErrInvalidImage) {
		t.Fatalf("failure should wrap ErrInvalidImage, got %v", outcome.Failures[0].Err)
	}
}

func TestProcessDocumentTimesOutOnStalledOCR(t *testing.T) {
	cfg := AnnotatorConfig{
		OCRPollInterval: time.Millisecond,
		OCRTimeout:      20 * time.Millisecond,
		RemoteRetries:   1,
	}
	a := NewAnnotator(&objectStoreStub{}, neverDoneOCR{}, &generatorStub{}, newStoreStub(), cfg)

	_, err := a.ProcessDocument(context.Background(), "doc-1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRemoteCallsRetryBeforeFailing(t *testing.T) {
	cfg := fastConfig()
	cfg.RemoteRetries = 3

	gen := &generatorStub{failures: 2}
	ocrSvc := &ocrStub{failSubmits: 2}
	a := NewAnnotator(&objectStoreStub{}, ocrSvc, gen, newStoreStub(), cfg)

	outcome, err := a.ProcessBatch(context.Background(), []models.UploadFile{{Filename: "a.png", Data: makePNG(t)}}, false)
	if err != nil {
		t.Fatalf("ProcessBatch returned error: %v", err)
	}
	if len(outcome.DocumentIDs) != 1 {
		t.Fatalf("expected the document to succeed after retries, failures: %v", outcome.Failures)
	}
}

func TestRetrieve(t *testing.T) {
	store := newStoreStub()
	a := NewAnnotator(&objectStoreStub{}, &ocrStub{}, &generatorStub{}, store, fastConfig())

	ctx := context.Background()
	store.records["u1"] = results.Record{ProcessingResult: "C1"}
	store.records["u2"] = results.Record{ProcessingResult: "C2"}
	store.records["u1|u2"] = results.Record{CombinedCommentary: "C3"}

	t.Run("single id", func(t *testing.T) {
		out, err := a.Retrieve(ctx, []string{"u1"})
		if err != nil {
			t.Fatalf("Retrieve returned error: %v", err)
		}
		if len(out.ProcessingResults) != 1 || out.ProcessingResults[0] != "C1" {
			t.Fatalf("unexpected results: %v", out.ProcessingResults)
		}
		if out.CombinedCommentary != "" {
			t.Fatal("single-id retrieval must not fetch a combined record")
		}
	})

	t.Run("multiple ids with combined", func(t *testing.T) {
		out, err := a.Retrieve(ctx, []string{"u1", "u2"})
		if err != nil {
			t.Fatalf("Retrieve returned error: %v", err)
		}
		if out.CombinedCommentary != "C3" {
			t.Fatalf("combined commentary = %q, want C3", out.CombinedCommentary)
		}
		if len(out.ImageURLs) != 2 {
			t.Fatalf("expected 2 image URLs, got %d", len(out.ImageURLs))
		}
	})

	t.Run("permuted order misses combined", func(t *testing.T) {
		out, err := a.Retrieve(ctx, []string{"u2", "u1"})
		if err != nil {
			t.Fatalf("Retrieve returned error: %v", err)
		}
		if out.CombinedCommentary != "" {
			t.Fatal("permuted id order must not find the combined record")
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := a.Retrieve(ctx, []string{"missing"})
		if !errors.Is(err, ErrResultNotFound) {
			t.Fatalf("expected ErrResultNotFound, got %v", err)
		}
	})
}

func TestProcessingResultAbsent(t *testing.T) {
	a := NewAnnotator(&objectStoreStub{}, &ocrStub{}, &generatorStub{}, newStoreStub(), fastConfig())

	_, found, err := a.ProcessingResult(context.Background(), "never-written")
	if err != nil {
		t.Fatalf("ProcessingResult returned error: %v", err)
	}
	if found {
		t.Fatal("absent record reported as found")
	}
}
