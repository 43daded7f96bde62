package plugins

import (
	"context"

	"github.com/feichai0017/docintel/internal/models"
)

// Stage orders post-processor execution. Early processors run before middle,
// middle before late.
type Stage string

const (
	StageEarly  Stage = "early"
	StageMiddle Stage = "middle"
	StageLate   Stage = "late"
)

// Valid reports whether s is a member of the closed stage enumeration.
func (s Stage) Valid() bool {
	switch s {
	case StageEarly, StageMiddle, StageLate:
		return true
	}
	return false
}

// Validator priorities are bounded to catch registration typos; higher runs
// first.
const (
	MinPriority = -1000
	MaxPriority = 1000
)

// Plugin is the lifecycle contract shared by every plugin kind. Initialize
// and Shutdown are hooks invoked by the registry on register/unregister.
type Plugin interface {
	Name() string
	Initialize() error
	Shutdown() error
}

// Base provides no-op lifecycle hooks. Embed it in plugins that do not need
// explicit setup or teardown.
type Base struct{}

func (Base) Initialize() error { return nil }
func (Base) Shutdown() error   { return nil }

// PostProcessor mutates an extraction result after validation. Processors of
// the same stage run in registration order; the mutated result threads from
// one processor into the next.
type PostProcessor interface {
	Plugin
	Stage() Stage
	Process(ctx context.Context, result *models.ExtractionResult, config *models.ExtractionConfig) error
}

// Validator is a quality gate over an extraction result. ShouldValidate lets
// a validator opt out per result; a returned error fails the extraction.
type Validator interface {
	Plugin
	Priority() int
	ShouldValidate(result *models.ExtractionResult) bool
	Validate(ctx context.Context, result *models.ExtractionResult) error
}

// ValidatorBase supplies the defaults: priority 50 and always-validate.
// Embed it and override as needed.
type ValidatorBase struct {
	Base
}

func (ValidatorBase) Priority() int { return 50 }

func (ValidatorBase) ShouldValidate(*models.ExtractionResult) bool { return true }

// OcrBackend recognizes text in images. SupportedLanguages declares the
// capability set used by "auto" dispatch; the backend itself remains
// authoritative and may still reject a language at call time.
type OcrBackend interface {
	Plugin
	SupportedLanguages() []string
	ProcessImage(ctx context.Context, image []byte, language string) (string, error)
	ProcessFile(ctx context.Context, path string, language string) (string, error)
}

// DocumentExtractor turns raw bytes of a supported MIME type into a raw
// extraction result. Implementations live in internal/extractors.
type DocumentExtractor interface {
	Plugin
	SupportedMimeTypes() []string
	CanHandle(mimeType string) bool
	Extract(ctx context.Context, data []byte, mimeType string, config *models.ExtractionConfig) (*models.RawExtractionResult, error)
}
