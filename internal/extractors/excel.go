package extractors

import (
	"bytes"
	"context"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/models"
	"github.com/feichai0017/docintel/internal/plugins"
	"github.com/feichai0017/docintel/pkg/logger"
)

// ExcelExtractor turns xlsx workbooks into one table per sheet plus a
// markdown rendering of each sheet in the content body.
type ExcelExtractor struct {
	plugins.Base
	log logger.Logger
}

func NewExcelExtractor(log logger.Logger) *ExcelExtractor {
	if log == nil {
		log = logger.NewNop()
	}
	return &ExcelExtractor{log: log}
}

func (e *ExcelExtractor) Name() string { return "excel" }

func (e *ExcelExtractor) SupportedMimeTypes() []string {
	return []string{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"}
}

func (e *ExcelExtractor) CanHandle(mimeType string) bool {
	return CanonicalMime(mimeType) == e.SupportedMimeTypes()[0]
}

func (e *ExcelExtractor) Extract(ctx context.Context, data []byte, _ string, config *models.ExtractionConfig) (*models.RawExtractionResult, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errs.NewInvalidFormat(err, "invalid format: cannot open workbook")
	}
	defer func() {
		if cerr := wb.Close(); cerr != nil {
			e.log.Warn("workbook close failed", logger.Error(cerr))
		}
	}()

	var sb strings.Builder
	var tables []models.Table

	for _, sheet := range wb.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return nil, errs.NewInvalidFormat(err, "invalid format: cannot read sheet %q", sheet)
		}
		if len(rows) == 0 {
			continue
		}

		markdown := sheetToMarkdown(sheet, rows)
		sb.WriteString(markdown)
		sb.WriteString("\n")

		if config == nil || config.ExtractTables {
			tables = append(tables, models.Table{
				Name:     sheet,
				Cells:    rows,
				Markdown: markdown,
			})
		}
	}

	return &models.RawExtractionResult{
		Content: sb.String(),
		Metadata: map[string]interface{}{
			"sheet_count": wb.SheetCount,
		},
		Tables: tables,
	}, nil
}

func sheetToMarkdown(sheet string, rows [][]string) string {
	var sb strings.Builder
	sb.WriteString("## ")
	sb.WriteString(sheet)
	sb.WriteString("\n")

	for i, row := range rows {
		sb.WriteString("| ")
		sb.WriteString(strings.Join(row, " | "))
		sb.WriteString(" |\n")
		if i == 0 {
			sb.WriteString("|")
			sb.WriteString(strings.Repeat(" --- |", len(row)))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
