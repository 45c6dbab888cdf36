package web

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/yuin/goldmark"

	"github.com/Lllllllleong/noteshelper/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var markdown = goldmark.New()

// resultPage is the data for the result.html template.
type resultPage struct {
	ImgUUIDs string
	Images   []resultImage
	Combined template.HTML
	HasGroup bool
}

type resultImage struct {
	URL        string
	Commentary template.HTML
}

// buildResultPage converts commentary markdown to HTML for the result view.
func buildResultPage(imgUUIDs string, outcome *models.RetrievalOutcome) (*resultPage, error) {
	page := &resultPage{ImgUUIDs: imgUUIDs}

	for i, url := range outcome.ImageURLs {
		html, err := renderMarkdown(outcome.ProcessingResults[i])
		if err != nil {
			return nil, err
		}
		page.Images = append(page.Images, resultImage{URL: url, Commentary: html})
	}

	if outcome.CombinedCommentary != "" {
		html, err := renderMarkdown(outcome.CombinedCommentary)
		if err != nil {
			return nil, err
		}
		page.Combined = html
		page.HasGroup = true
	}

	return page, nil
}

func renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
