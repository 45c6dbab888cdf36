package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	"github.com/google/uuid"

	"github.com/Lllllllleong/noteshelper/internal/models"

	// Decoders for the upload formats phones and scanners produce.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// jpegQuality is the fixed re-encoding quality. Aggressive on purpose:
// note text stays legible and storage cost stays low.
const jpegQuality = 5

// IntakeImage decodes one uploaded image, re-encodes it as low-quality
// JPEG, assigns a fresh identifier, and stores the encoded bytes under
// that identifier.
func (a *Annotator) IntakeImage(ctx context.Context, raw []byte) (models.Document, error) {
	encoded, err := compressImage(raw)
	if err != nil {
		return models.Document{}, err
	}

	id := uuid.NewString()
	if err := a.objects.Put(ctx, id, encoded); err != nil {
		return models.Document{}, fmt.Errorf("failed to store encoded image %s: %w", id, err)
	}

	a.log.Debug().Str("document_id", id).Int("raw_bytes", len(raw)).Int("encoded_bytes", len(encoded)).Msg("image intake complete")
	return models.Document{ID: id, ObjectURI: a.objects.URI(id)}, nil
}

// compressImage decodes the input and re-encodes it as JPEG at the fixed
// quality. JPEG carries no alpha channel, so the image is composited onto
// white first.
func compressImage(raw []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := src.Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, bounds, src, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to re-encode image: %w", err)
	}
	return buf.Bytes(), nil
}
