package commentary

import (
	"testing"

	"cloud.google.com/go/vertexai/genai"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{
			name: "nil response",
			resp: nil,
			want: "",
		},
		{
			name: "plain text",
			resp: responseWith("# Biochemistry\n\nFocus on lipoproteins."),
			want: "# Biochemistry\n\nFocus on lipoproteins.",
		},
		{
			name: "fenced markdown",
			resp: responseWith("```markdown\n# Subject\n```"),
			want: "# Subject",
		},
		{
			name: "bare fence",
			resp: responseWith("```\ncontent\n```"),
			want: "content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractText(tt.resp); got != tt.want {
				t.Fatalf("extractText = %q, want %q", got, tt.want)
			}
		})
	}
}

func responseWith(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []genai.Part{genai.Text(text)},
				},
			},
		},
	}
}
