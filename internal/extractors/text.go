package extractors

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/models"
	"github.com/feichai0017/docintel/internal/plugins"
)

// TextExtractor handles plain-text families: txt, markdown, csv, json, xml.
// It validates UTF-8 and passes content through untouched.
type TextExtractor struct {
	plugins.Base
}

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

func (e *TextExtractor) Name() string { return "text" }

func (e *TextExtractor) SupportedMimeTypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/csv",
		"text/html",
		"application/json",
		"application/xml",
	}
}

func (e *TextExtractor) CanHandle(mimeType string) bool {
	cm := CanonicalMime(mimeType)
	for _, m := range e.SupportedMimeTypes() {
		if m == cm {
			return true
		}
	}
	return false
}

func (e *TextExtractor) Extract(_ context.Context, data []byte, mimeType string, _ *models.ExtractionConfig) (*models.RawExtractionResult, error) {
	if !utf8.Valid(data) {
		return nil, errs.NewInvalidFormat(nil, "invalid format: %s payload is not valid UTF-8", mimeType)
	}
	content := string(data)
	return &models.RawExtractionResult{
		Content: content,
		Metadata: map[string]interface{}{
			"line_count": strings.Count(content, "\n") + 1,
			"byte_size":  len(data),
		},
	}, nil
}
