// Package commentary turns extracted note text into markdown-formatted
// exam-preparation guidance. Two providers are supported: Vertex AI
// (default) and OpenAI, both carrying the same fixed system instruction.
package commentary

import "context"

// Generator produces study commentary from a body of note text in a single
// synchronous call. No streaming, no multi-turn state.
type Generator interface {
	Generate(ctx context.Context, notes string) (string, error)
}
