package extraction

import (
	"context"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/models"
	"github.com/feichai0017/docintel/internal/pipeline"
	"github.com/feichai0017/docintel/internal/plugins"
)

// Service is the boundary of the extraction engine. Everything callers can do
// goes through here: running extractions, managing the plugin registries and
// inspecting the cache.
type Service interface {
	ExtractBytes(ctx context.Context, data []byte, mimeHint, filename string, config *models.ExtractionConfig) (*models.ExtractionResult, error)
	ExtractFile(ctx context.Context, path string, config *models.ExtractionConfig) (*models.ExtractionResult, error)
	ExtractBatch(ctx context.Context, inputs []pipeline.Input, config *models.ExtractionConfig) ([]*models.ExtractionResult, error)
	ExtractBatchItems(ctx context.Context, inputs []pipeline.Input, config *models.ExtractionConfig) ([]pipeline.BatchItem, error)

	RegisterExtractor(e plugins.DocumentExtractor) error
	UnregisterExtractor(name string)
	ListExtractors() []string
	SupportedMimeTypes() []string

	RegisterPostProcessor(p plugins.PostProcessor) error
	UnregisterPostProcessor(name string)
	ListPostProcessors() []string

	RegisterValidator(v plugins.Validator) error
	UnregisterValidator(name string)
	ListValidators() []string

	RegisterOcrBackend(b plugins.OcrBackend) error
	UnregisterOcrBackend(name string)
	ListOcrBackends() []string

	CacheStats(ctx context.Context) map[string]interface{}
	ClearCache(ctx context.Context) error
	ClearPlugins()

	ClassifyError(err error) errs.Kind
}
