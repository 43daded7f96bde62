package ocr

import (
	"strings"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/plugins"
)

// AutoBackend asks dispatch to pick a backend by language capability.
const AutoBackend = "auto"

// Resolve picks the OCR backend for a request. A concrete backend name is
// looked up directly; "auto" (or empty) scans registered backends in
// registration order and returns the first whose declared language set
// contains the requested code. Capability metadata is advisory: the selected
// backend may still reject the language at call time, and that rejection is
// authoritative.
func Resolve(registry *plugins.Registry[plugins.OcrBackend], backendName, language string) (plugins.OcrBackend, error) {
	if backendName != "" && backendName != AutoBackend {
		backend, ok := registry.Get(backendName)
		if !ok {
			return nil, errs.NewOCR(nil, "ocr backend %q is not registered (known: %s)",
				backendName, knownBackends(registry))
		}
		return backend, nil
	}

	for _, backend := range registry.List() {
		if supportsLanguage(backend, language) {
			return backend, nil
		}
	}
	return nil, errs.NewOCR(nil, "no ocr backend supports language %q (known: %s)",
		language, knownBackends(registry)).WithContext("language", language)
}

func supportsLanguage(backend plugins.OcrBackend, language string) bool {
	for _, lang := range backend.SupportedLanguages() {
		if strings.EqualFold(lang, language) {
			return true
		}
	}
	return false
}

func knownBackends(registry *plugins.Registry[plugins.OcrBackend]) string {
	names := registry.Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
