package extraction

import (
	"context"
	"os"
	"path/filepath"

	"github.com/feichai0017/docintel/internal/cache"
	"github.com/feichai0017/docintel/internal/enrich"
	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/extractors"
	"github.com/feichai0017/docintel/internal/models"
	"github.com/feichai0017/docintel/internal/pipeline"
	"github.com/feichai0017/docintel/internal/plugins"
	"github.com/feichai0017/docintel/pkg/logger"
)

// ServiceConfig selects the collaborators for a service instance. Zero value
// means: in-memory cache, built-in extractors, no OCR backends, no embedder.
type ServiceConfig struct {
	Cache    cache.Cache
	Detector *enrich.LanguageDetector
	Embedder enrich.EmbeddingModel

	// SkipDefaultExtractors leaves the extractor registry empty so the
	// caller can install a custom set.
	SkipDefaultExtractors bool
}

type service struct {
	orchestrator *pipeline.Orchestrator
	extractors   *extractors.Registry
	validators   *plugins.Registry[plugins.Validator]
	processors   *plugins.Registry[plugins.PostProcessor]
	ocrBackends  *plugins.Registry[plugins.OcrBackend]
	cache        cache.Cache
	log          logger.Logger
}

// NewService wires a ready-to-use extraction service. The built-in text, pdf,
// spreadsheet and image extractors are registered unless the config opts out.
func NewService(cfg *ServiceConfig, log logger.Logger) Service {
	if cfg == nil {
		cfg = &ServiceConfig{}
	}
	if log == nil {
		log = logger.NewNop()
	}

	c := cfg.Cache
	if c == nil {
		c = cache.NewMemoryCache(log)
	}

	extractorReg := extractors.NewRegistry(log)
	validatorReg := plugins.NewRegistry[plugins.Validator](log, plugins.ValidatorPriorityCheck)
	processorReg := plugins.NewRegistry[plugins.PostProcessor](log, plugins.ProcessorStageCheck)
	ocrReg := plugins.NewRegistry[plugins.OcrBackend](log)

	if !cfg.SkipDefaultExtractors {
		for _, e := range []plugins.DocumentExtractor{
			extractors.NewTextExtractor(),
			extractors.NewPDFExtractor(log),
			extractors.NewExcelExtractor(log),
			extractors.NewImageExtractor(),
		} {
			if err := extractorReg.Register(e); err != nil {
				log.Warn("built-in extractor registration failed",
					logger.String("extractor", e.Name()),
					logger.Error(err),
				)
			}
		}
	}

	orchestrator := pipeline.NewOrchestrator(pipeline.Deps{
		Extractors:  extractorReg,
		Validators:  validatorReg,
		Processors:  processorReg,
		OcrBackends: ocrReg,
		Cache:       c,
		Detector:    cfg.Detector,
		Embedder:    cfg.Embedder,
		Logger:      log,
	})

	return &service{
		orchestrator: orchestrator,
		extractors:   extractorReg,
		validators:   validatorReg,
		processors:   processorReg,
		ocrBackends:  ocrReg,
		cache:        c,
		log:          log,
	}
}

func (s *service) ExtractBytes(ctx context.Context, data []byte, mimeHint, filename string, config *models.ExtractionConfig) (*models.ExtractionResult, error) {
	return s.orchestrator.Extract(ctx, pipeline.Input{Data: data, MimeType: mimeHint, Filename: filename}, config)
}

func (s *service) ExtractFile(ctx context.Context, path string, config *models.ExtractionConfig) (*models.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.NewIO(err, "cannot read %s", path).WithContext("file", path)
	}
	return s.orchestrator.Extract(ctx, pipeline.Input{Data: data, Filename: filepath.Base(path)}, config)
}

func (s *service) ExtractBatch(ctx context.Context, inputs []pipeline.Input, config *models.ExtractionConfig) ([]*models.ExtractionResult, error) {
	return s.orchestrator.ExtractBatch(ctx, inputs, config)
}

func (s *service) ExtractBatchItems(ctx context.Context, inputs []pipeline.Input, config *models.ExtractionConfig) ([]pipeline.BatchItem, error) {
	return s.orchestrator.ExtractBatchItems(ctx, inputs, config)
}

func (s *service) RegisterExtractor(e plugins.DocumentExtractor) error { return s.extractors.Register(e) }
func (s *service) UnregisterExtractor(name string)                     { s.extractors.Unregister(name) }
func (s *service) ListExtractors() []string                            { return s.extractors.Names() }
func (s *service) SupportedMimeTypes() []string                        { return s.extractors.SupportedMimeTypes() }

func (s *service) RegisterPostProcessor(p plugins.PostProcessor) error { return s.processors.Register(p) }
func (s *service) UnregisterPostProcessor(name string)                 { s.processors.Unregister(name) }
func (s *service) ListPostProcessors() []string                        { return s.processors.Names() }

func (s *service) RegisterValidator(v plugins.Validator) error { return s.validators.Register(v) }
func (s *service) UnregisterValidator(name string)             { s.validators.Unregister(name) }
func (s *service) ListValidators() []string                    { return s.validators.Names() }

func (s *service) RegisterOcrBackend(b plugins.OcrBackend) error { return s.ocrBackends.Register(b) }
func (s *service) UnregisterOcrBackend(name string)              { s.ocrBackends.Unregister(name) }
func (s *service) ListOcrBackends() []string                     { return s.ocrBackends.Names() }

func (s *service) CacheStats(ctx context.Context) map[string]interface{} { return s.cache.Stats(ctx) }
func (s *service) ClearCache(ctx context.Context) error                  { return s.cache.Clear(ctx) }

// ClearPlugins empties the mutable registries. Extractors stay: dropping them
// would leave the service unable to process anything.
func (s *service) ClearPlugins() {
	s.validators.Clear()
	s.processors.Clear()
	s.ocrBackends.Clear()
}

func (s *service) ClassifyError(err error) errs.Kind { return errs.KindOf(err) }
