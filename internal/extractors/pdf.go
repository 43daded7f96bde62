package extractors

import (
	"bytes"
	"context"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/models"
	"github.com/feichai0017/docintel/internal/plugins"
	"github.com/feichai0017/docintel/pkg/logger"
)

// PDFExtractor extracts per-page text from PDF documents and records page
// boundaries so downstream chunking can map chunks to pages.
type PDFExtractor struct {
	plugins.Base
	log logger.Logger
}

func NewPDFExtractor(log logger.Logger) *PDFExtractor {
	if log == nil {
		log = logger.NewNop()
	}
	return &PDFExtractor{log: log}
}

func (e *PDFExtractor) Name() string { return "pdf" }

func (e *PDFExtractor) SupportedMimeTypes() []string {
	return []string{"application/pdf"}
}

func (e *PDFExtractor) CanHandle(mimeType string) bool {
	return CanonicalMime(mimeType) == "application/pdf"
}

func (e *PDFExtractor) Extract(ctx context.Context, data []byte, _ string, _ *models.ExtractionConfig) (*models.RawExtractionResult, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return nil, errs.NewInvalidFormat(err, "invalid format: cannot open PDF")
	}

	numPages := pdfReader.NumPage()
	var sb strings.Builder
	pages := make([]models.Page, 0, numPages)

	// Pages must land in the content buffer in order, so extraction stays
	// sequential; the batch layer provides the parallelism.
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			e.log.Warn("pdf page text extraction failed",
				logger.Int("page", i),
				logger.Error(err),
			)
			continue
		}

		start := sb.Len()
		sb.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			sb.WriteString("\n")
		}
		pages = append(pages, models.Page{
			Number:    i,
			ByteStart: start,
			ByteEnd:   sb.Len(),
		})
	}

	return &models.RawExtractionResult{
		Content: sb.String(),
		Metadata: map[string]interface{}{
			"page_count": numPages,
		},
		Pages: pages,
	}, nil
}
