package commentary

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/Lllllllleong/noteshelper/internal/gcp"
)

const vertexModelName = "gemini-1.5-pro"

// VertexGenerator implements Generator on a Vertex AI generative model
// pre-configured with the commentary system instruction.
type VertexGenerator struct {
	model      *genai.GenerativeModel
	baseClient *genai.Client
}

// NewVertexGenerator creates the Vertex client and configures the
// commentary model.
func NewVertexGenerator(ctx context.Context, projectID, region string) (*VertexGenerator, error) {
	baseClient, err := gcp.NewVertexClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex client: %w", err)
	}

	model := baseClient.GenerativeModel(vertexModelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemPrompt)},
	}

	return &VertexGenerator{
		model:      model,
		baseClient: baseClient,
	}, nil
}

// Generate runs a single generation call over the note text.
func (g *VertexGenerator) Generate(ctx context.Context, notes string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(notes))
	if err != nil {
		return "", fmt.Errorf("failed to generate commentary from gemini: %w", err)
	}

	content := extractText(resp)
	if content == "" {
		return "", fmt.Errorf("gemini returned no commentary content")
	}
	return content, nil
}

func (g *VertexGenerator) Close() error {
	if g.baseClient != nil {
		return g.baseClient.Close()
	}
	return nil
}

// extractText parses the model's response to get the text content,
// stripping a surrounding code fence if the model added one.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			builder.WriteString(string(txt))
		}
	}

	content := strings.TrimSpace(builder.String())
	content = strings.TrimPrefix(content, "```markdown")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
