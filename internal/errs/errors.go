package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind categorizes a pipeline error.
type Kind string

const (
	KindIO            Kind = "io_error"
	KindInvalidFormat Kind = "invalid_format"
	KindOCR           Kind = "ocr_error"
	KindInvalidConfig Kind = "invalid_config"
	KindExtraction    Kind = "extraction_error"
	KindPlugin        Kind = "plugin_error"
	KindUnknown       Kind = "unknown_error"
)

// Error is the error type returned by the extraction pipeline. It carries a
// classified kind, a message and optional structured context (format, file,
// plugin name) so failures can be diagnosed without access to internals.
type Error struct {
	Kind    Kind
	Message string
	Context map[string]interface{}
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithContext attaches a structured context value and returns the error.
func (e *Error) WithContext(key string, val interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = val
	return e
}

func newError(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		cause:   cause,
	}
}

func NewIO(cause error, format string, args ...interface{}) *Error {
	return newError(KindIO, cause, format, args...)
}

func NewInvalidFormat(cause error, format string, args ...interface{}) *Error {
	return newError(KindInvalidFormat, cause, format, args...)
}

func NewOCR(cause error, format string, args ...interface{}) *Error {
	return newError(KindOCR, cause, format, args...)
}

func NewInvalidConfig(cause error, format string, args ...interface{}) *Error {
	return newError(KindInvalidConfig, cause, format, args...)
}

func NewExtraction(cause error, format string, args ...interface{}) *Error {
	return newError(KindExtraction, cause, format, args...)
}

// NewPlugin builds a plugin contract violation error carrying the plugin name.
func NewPlugin(plugin string, cause error, format string, args ...interface{}) *Error {
	return newError(KindPlugin, cause, format, args...).WithContext("plugin", plugin)
}

// NewUnsupportedFormat reports that no extractor handles the given MIME type.
func NewUnsupportedFormat(mimeType string) *Error {
	return newError(KindInvalidFormat, nil, "unsupported format: %s", mimeType).
		WithContext("format", mimeType)
}

// keyword groups for Classify, checked in order. IO phrases win over format
// phrases, format over config, config over OCR.
var classifyOrder = []struct {
	kind     Kind
	keywords []string
}{
	{KindIO, []string{"not found", "permission denied", "no such file"}},
	{KindInvalidFormat, []string{"invalid format", "unsupported format"}},
	{KindInvalidConfig, []string{"config error"}},
	{KindOCR, []string{"ocr"}},
}

// Classify maps a free-form error message to a Kind using ordered,
// case-insensitive keyword matching. Empty or unmatched text yields
// KindUnknown.
func Classify(message string) Kind {
	lower := strings.ToLower(message)
	if lower == "" {
		return KindUnknown
	}
	for _, group := range classifyOrder {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.kind
			}
		}
	}
	return KindUnknown
}

// KindOf returns the classified kind of err. Typed pipeline errors report
// their own kind; anything else falls back to message classification.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Classify(err.Error())
}
