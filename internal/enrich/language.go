package enrich

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// minLanguageConfidence filters out trailing low-confidence candidates; the
// top-ranked language is always reported.
const minLanguageConfidence = 0.35

// LanguageDetector wraps a lingua detector and reports lowercase ISO 639-3
// codes. Building the detector loads statistical models, so callers should
// construct it once and share it.
type LanguageDetector struct {
	detector lingua.LanguageDetector
}

// NewLanguageDetector builds a detector. With no arguments every supported
// language is considered; passing languages restricts the candidate set,
// which is faster and more precise when the inputs are known.
func NewLanguageDetector(languages ...lingua.Language) *LanguageDetector {
	unconfigured := lingua.NewLanguageDetectorBuilder()
	var builder lingua.LanguageDetectorBuilder
	if len(languages) > 0 {
		builder = unconfigured.FromLanguages(languages...)
	} else {
		builder = unconfigured.FromAllLanguages()
	}
	return &LanguageDetector{detector: builder.Build()}
}

// Detect returns the languages found in text, most confident first. Empty or
// indeterminate input yields nil.
func (d *LanguageDetector) Detect(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	values := d.detector.ComputeLanguageConfidenceValues(text)
	var codes []string
	for i, v := range values {
		if v.Value() <= 0 {
			break
		}
		if i > 0 && v.Value() < minLanguageConfidence {
			break
		}
		codes = append(codes, strings.ToLower(v.Language().IsoCode639_3().String()))
	}
	return codes
}
