package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"runtime"
)

// OutputFormat selects the representation of ExtractionResult.Content.
type OutputFormat string

const (
	OutputPlain OutputFormat = "plain"
	OutputHTML  OutputFormat = "html"
)

// OCRConfig controls the OCR augmentation step.
type OCRConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Backend  string `json:"backend" yaml:"backend"` // backend name or "auto"
	Language string `json:"language" yaml:"language"`
	ForceOCR bool   `json:"forceOcr" yaml:"forceOcr"`
}

// ChunkingConfig controls content chunking and optional embedding.
type ChunkingConfig struct {
	Enabled    bool `json:"enabled" yaml:"enabled"`
	MaxChars   int  `json:"maxChars" yaml:"maxChars"`
	MaxOverlap int  `json:"maxOverlap" yaml:"maxOverlap"`
	Embed      bool `json:"embed" yaml:"embed"`
}

// KeywordConfig controls keyword extraction.
type KeywordConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Count   int  `json:"count" yaml:"count"`
}

// ExtractionConfig holds every per-call pipeline toggle. It is built once by
// the caller and never mutated inside the pipeline.
type ExtractionConfig struct {
	UseCache                 bool           `json:"useCache" yaml:"useCache"`
	OCR                      OCRConfig      `json:"ocr" yaml:"ocr"`
	Chunking                 ChunkingConfig `json:"chunking" yaml:"chunking"`
	ExtractImages            bool           `json:"extractImages" yaml:"extractImages"`
	ExtractTables            bool           `json:"extractTables" yaml:"extractTables"`
	LanguageDetection        bool           `json:"languageDetection" yaml:"languageDetection"`
	Keywords                 KeywordConfig  `json:"keywords" yaml:"keywords"`
	ProcessorAllowList       []string       `json:"processorAllowList" yaml:"processorAllowList"`
	ProcessorDenyList        []string       `json:"processorDenyList" yaml:"processorDenyList"`
	ContinueOnProcessorError bool           `json:"continueOnProcessorError" yaml:"continueOnProcessorError"`
	MaxConcurrentExtractions int            `json:"maxConcurrentExtractions" yaml:"maxConcurrentExtractions"`
	OutputFormat             OutputFormat   `json:"outputFormat" yaml:"outputFormat"`
}

// DefaultConfig returns the configuration used when the caller passes nil.
func DefaultConfig() *ExtractionConfig {
	return &ExtractionConfig{
		UseCache: true,
		OCR: OCRConfig{
			Backend:  "auto",
			Language: "eng",
		},
		Chunking: ChunkingConfig{
			MaxChars:   2000,
			MaxOverlap: 100,
		},
		ExtractTables: true,
		Keywords: KeywordConfig{
			Count: 10,
		},
		MaxConcurrentExtractions: DefaultMaxConcurrency(),
		OutputFormat:             OutputPlain,
	}
}

// DefaultMaxConcurrency bounds batch fan-out when the config does not.
func DefaultMaxConcurrency() int {
	return runtime.NumCPU() * 2
}

// Hash returns a deterministic digest of the normalized configuration,
// used as the config component of cache fingerprints. JSON marshaling of a
// struct emits fields in declaration order, so equal configs hash equally.
func (c *ExtractionConfig) Hash() string {
	if c == nil {
		c = DefaultConfig()
	}
	data, err := json.Marshal(c)
	if err != nil {
		// Only unmarshalable types can fail here and the struct has none.
		return "unhashable"
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
