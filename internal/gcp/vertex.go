package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
)

// NewVertexClient creates a Vertex AI generative client for the given
// project and region. Model configuration lives with the callers.
func NewVertexClient(ctx context.Context, projectID, region string) (*genai.Client, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}

	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	return client, nil
}
