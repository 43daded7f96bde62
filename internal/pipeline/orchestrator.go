package pipeline

import (
	"context"
	"html"
	"strings"

	"github.com/feichai0017/docintel/internal/cache"
	"github.com/feichai0017/docintel/internal/enrich"
	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/extractors"
	"github.com/feichai0017/docintel/internal/models"
	"github.com/feichai0017/docintel/internal/ocr"
	"github.com/feichai0017/docintel/internal/plugins"
	"github.com/feichai0017/docintel/pkg/logger"
)

// Input is one document to extract. MimeType, when set, overrides detection;
// Filename is only consulted as a type fallback when sniffing is ambiguous.
type Input struct {
	Data     []byte
	MimeType string
	Filename string
}

// Deps wires the orchestrator to its collaborators. Nil registries are
// replaced with empty ones; a nil cache disables caching; nil detector and
// embedder turn their enrichment steps into recorded soft failures.
type Deps struct {
	Extractors  *extractors.Registry
	Validators  *plugins.Registry[plugins.Validator]
	Processors  *plugins.Registry[plugins.PostProcessor]
	OcrBackends *plugins.Registry[plugins.OcrBackend]
	Cache       cache.Cache
	Detector    *enrich.LanguageDetector
	Embedder    enrich.EmbeddingModel
	Logger      logger.Logger
}

// Orchestrator drives a single extraction end to end: type resolution, cache
// lookup, extraction, OCR augmentation, enrichment, validation, post-
// processing and cache store.
type Orchestrator struct {
	extractors  *extractors.Registry
	validators  *plugins.Registry[plugins.Validator]
	processors  *plugins.Registry[plugins.PostProcessor]
	ocrBackends *plugins.Registry[plugins.OcrBackend]
	cache       cache.Cache
	detector    *enrich.LanguageDetector
	embedder    enrich.EmbeddingModel
	log         logger.Logger
}

func NewOrchestrator(deps Deps) *Orchestrator {
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	if deps.Extractors == nil {
		deps.Extractors = extractors.NewRegistry(log)
	}
	if deps.Validators == nil {
		deps.Validators = plugins.NewRegistry[plugins.Validator](log, plugins.ValidatorPriorityCheck)
	}
	if deps.Processors == nil {
		deps.Processors = plugins.NewRegistry[plugins.PostProcessor](log, plugins.ProcessorStageCheck)
	}
	if deps.OcrBackends == nil {
		deps.OcrBackends = plugins.NewRegistry[plugins.OcrBackend](log)
	}
	return &Orchestrator{
		extractors:  deps.Extractors,
		validators:  deps.Validators,
		processors:  deps.Processors,
		ocrBackends: deps.OcrBackends,
		cache:       deps.Cache,
		detector:    deps.Detector,
		embedder:    deps.Embedder,
		log:         log,
	}
}

// Extract runs the full pipeline for one input. A validation or processing
// failure fails the call and skips the cache store; cache write failures are
// logged and swallowed.
func (o *Orchestrator) Extract(ctx context.Context, input Input, config *models.ExtractionConfig) (*models.ExtractionResult, error) {
	if config == nil {
		config = models.DefaultConfig()
	}

	mimeType := ResolveMime(input.Data, input.MimeType, input.Filename)

	var fingerprint string
	if config.UseCache && o.cache != nil {
		fingerprint = cache.Fingerprint(input.Data, mimeType, config)
		if cached, ok := o.cache.Get(ctx, fingerprint); ok {
			o.log.Debug("cache hit", logger.String("mimeType", mimeType))
			return cached, nil
		}
	}

	extractor, err := o.extractors.ForMime(mimeType)
	if err != nil {
		return nil, err
	}

	raw, err := extractor.Extract(ctx, input.Data, mimeType, config)
	if err != nil {
		return nil, err
	}
	result := models.NewResult(raw, mimeType)

	if err := o.augmentWithOCR(ctx, input.Data, mimeType, result, config); err != nil {
		return nil, err
	}
	o.enrichResult(ctx, result, config)

	if err := plugins.RunValidators(ctx, o.validators.List(), result); err != nil {
		return nil, err
	}
	if err := plugins.RunPostProcessors(ctx, o.processors.List(), result, config, o.log); err != nil {
		return nil, err
	}
	if err := plugins.RunValidators(ctx, o.validators.List(), result); err != nil {
		return nil, err
	}

	if config.OutputFormat == models.OutputHTML {
		result.Content = "<pre>" + html.EscapeString(result.Content) + "</pre>"
	}

	if fingerprint != "" {
		if err := o.cache.Set(ctx, fingerprint, result); err != nil {
			o.log.Warn("cache store failed", logger.Error(err))
		}
	}
	return result, nil
}

// augmentWithOCR fills the content of image inputs through the configured
// OCR backend. ForceOCR reruns recognition even when an extractor already
// produced text. OCR failures fail the extraction: the caller explicitly
// asked for recognition it did not get.
func (o *Orchestrator) augmentWithOCR(ctx context.Context, data []byte, mimeType string, result *models.ExtractionResult, config *models.ExtractionConfig) error {
	if !config.OCR.Enabled || !strings.HasPrefix(mimeType, "image/") {
		return nil
	}
	if !config.OCR.ForceOCR && strings.TrimSpace(result.Content) != "" {
		return nil
	}

	backend, err := ocr.Resolve(o.ocrBackends, config.OCR.Backend, config.OCR.Language)
	if err != nil {
		return err
	}
	text, err := backend.ProcessImage(ctx, data, config.OCR.Language)
	if err != nil {
		return err
	}
	result.Content = text
	result.SetMeta("ocr_backend", backend.Name())
	return nil
}

// enrichResult runs the optional enrichment steps. Enrichment never fails an
// extraction: a step that cannot run records its error under a metadata key
// and the pipeline moves on.
func (o *Orchestrator) enrichResult(ctx context.Context, result *models.ExtractionResult, config *models.ExtractionConfig) {
	if config.Chunking.Enabled {
		chunks := enrich.ChunkContent(result.Content, result.Pages, config.Chunking.MaxChars, config.Chunking.MaxOverlap)
		if config.Chunking.Embed {
			switch {
			case o.embedder == nil:
				result.SetMeta("embedding_error", "no embedding model configured")
			default:
				if err := enrich.EmbedChunks(ctx, o.embedder, chunks); err != nil {
					o.log.Warn("chunk embedding failed", logger.Error(err))
					result.SetMeta("embedding_error", err.Error())
				}
			}
		}
		result.Chunks = chunks
		result.SetMeta("chunk_count", len(chunks))
	}

	if config.LanguageDetection {
		if o.detector == nil {
			result.SetMeta("language_detection_error", "no language detector configured")
		} else {
			result.DetectedLanguages = o.detector.Detect(result.Content)
		}
	}

	if config.Keywords.Enabled {
		count := config.Keywords.Count
		if count <= 0 {
			count = models.DefaultConfig().Keywords.Count
		}
		result.Keywords = enrich.ExtractKeywords(result.Content, count)
	}
}

// ClassifyError maps any error from the pipeline onto the error taxonomy.
func ClassifyError(err error) errs.Kind {
	return errs.KindOf(err)
}
