package ocr

import (
	"context"
	"fmt"
	"path"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/Lllllllleong/noteshelper/internal/gcp"
	"github.com/Lllllllleong/noteshelper/internal/logger"
)

// ocrOutputPrefix is where the Vision API writes annotation results inside
// the image bucket, namespaced per document.
const ocrOutputPrefix = "ocr-output"

// VisionService implements Service on Google Cloud Vision's asynchronous
// image annotation API. Annotation output is written to the same bucket
// that holds the images, under ocrOutputPrefix.
type VisionService struct {
	annotator *vision.ImageAnnotatorClient
	bucket    *gcp.Bucket
	log       zerolog.Logger
}

// NewVisionService creates the Vision client with application-default
// credentials.
func NewVisionService(ctx context.Context, bucket *gcp.Bucket) (*VisionService, error) {
	client, err := vision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return NewVisionServiceWithClient(client, bucket), nil
}

// NewVisionServiceWithClient creates the service with an explicit client.
func NewVisionServiceWithClient(client *vision.ImageAnnotatorClient, bucket *gcp.Bucket) *VisionService {
	return &VisionService{
		annotator: client,
		bucket:    bucket,
		log:       logger.WithComponent("ocr-vision"),
	}
}

// Submit starts an asynchronous DOCUMENT_TEXT_DETECTION operation for the
// image at imageURI and returns the operation name.
func (s *VisionService) Submit(ctx context.Context, imageURI string) (string, error) {
	objectName := path.Base(imageURI)
	destination := s.bucket.URI(fmt.Sprintf("%s/%s/", ocrOutputPrefix, objectName))

	req := &visionpb.AsyncBatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{
					Source: &visionpb.ImageSource{ImageUri: imageURI},
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
		OutputConfig: &visionpb.OutputConfig{
			GcsDestination: &visionpb.GcsDestination{Uri: destination},
			BatchSize:      1,
		},
	}

	op, err := s.annotator.AsyncBatchAnnotateImages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to submit annotation for %s: %w", imageURI, err)
	}

	s.log.Debug().Str("image_uri", imageURI).Str("operation", op.Name()).Msg("submitted OCR operation")
	return op.Name(), nil
}

// Poll reports the state of a submitted operation. When the operation has
// completed, the annotation output is read back from the bucket and its
// text collected.
func (s *VisionService) Poll(ctx context.Context, operationID string) (Result, error) {
	op := s.annotator.AsyncBatchAnnotateImagesOperation(operationID)

	resp, err := op.Poll(ctx)
	if err != nil {
		return Result{Status: StatusFailed}, fmt.Errorf("%w: operation %s: %v", ErrOCRFailed, operationID, err)
	}
	if !op.Done() {
		return Result{Status: StatusPending}, nil
	}

	prefix := s.objectPrefix(resp.GetOutputConfig().GetGcsDestination().GetUri())
	text, err := s.collectText(ctx, prefix)
	if err != nil {
		return Result{Status: StatusFailed}, err
	}

	return Result{Status: StatusDone, Text: text}, nil
}

// Close releases the underlying Vision client.
func (s *VisionService) Close() error {
	return s.annotator.Close()
}

// objectPrefix strips the bucket scheme from a gs:// destination URI,
// leaving the object name prefix used for listing.
func (s *VisionService) objectPrefix(gcsURI string) string {
	return strings.TrimPrefix(gcsURI, "gs://"+s.bucket.Name()+"/")
}

// collectText reads every output object the operation produced and
// concatenates the detected text in output order.
func (s *VisionService) collectText(ctx context.Context, prefix string) (string, error) {
	outputs, err := s.bucket.ReadPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read annotation output under %s: %v", ErrOCRFailed, prefix, err)
	}
	if len(outputs) == 0 {
		return "", fmt.Errorf("%w: no annotation output under %s", ErrOCRFailed, prefix)
	}

	var builder strings.Builder
	for _, data := range outputs {
		text, err := parseAnnotationOutput(data)
		if err != nil {
			return "", err
		}
		builder.WriteString(text)
	}

	text := builder.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

// parseAnnotationOutput decodes one Vision output object, a JSON-encoded
// BatchAnnotateImagesResponse, and extracts the full text annotation.
func parseAnnotationOutput(data []byte) (string, error) {
	var batch visionpb.BatchAnnotateImagesResponse
	unmarshaler := protojson.UnmarshalOptions{DiscardUnknown: true}
	if err := unmarshaler.Unmarshal(data, &batch); err != nil {
		return "", fmt.Errorf("%w: failed to decode annotation output: %v", ErrOCRFailed, err)
	}

	var builder strings.Builder
	for _, resp := range batch.GetResponses() {
		if respErr := resp.GetError(); respErr != nil {
			return "", fmt.Errorf("%w: %s", ErrOCRFailed, respErr.GetMessage())
		}
		builder.WriteString(resp.GetFullTextAnnotation().GetText())
	}
	return builder.String(), nil
}
