package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/models"
	"github.com/feichai0017/docintel/internal/plugins"
	"github.com/feichai0017/docintel/pkg/logger"
)

type stubExtractor struct {
	plugins.Base
	name  string
	mimes []string
}

func (s *stubExtractor) Name() string                  { return s.name }
func (s *stubExtractor) SupportedMimeTypes() []string  { return s.mimes }
func (s *stubExtractor) CanHandle(mimeType string) bool {
	for _, m := range s.mimes {
		if CanonicalMime(mimeType) == m {
			return true
		}
	}
	return false
}

func (s *stubExtractor) Extract(_ context.Context, data []byte, _ string, _ *models.ExtractionConfig) (*models.RawExtractionResult, error) {
	return &models.RawExtractionResult{Content: string(data)}, nil
}

func TestRegistryDispatchByMime(t *testing.T) {
	reg := NewRegistry(logger.NewTestLogger())
	require.NoError(t, reg.Register(&stubExtractor{name: "txt", mimes: []string{"text/plain"}}))
	require.NoError(t, reg.Register(&stubExtractor{name: "pdf", mimes: []string{"application/pdf"}}))

	e, err := reg.ForMime("application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf", e.Name())
}

func TestRegistryCanonicalizesAliases(t *testing.T) {
	reg := NewRegistry(logger.NewTestLogger())
	require.NoError(t, reg.Register(&stubExtractor{name: "pdf", mimes: []string{"application/pdf"}}))
	require.NoError(t, reg.Register(&stubExtractor{name: "img", mimes: []string{"image/jpeg"}}))

	e, err := reg.ForMime("application/x-pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf", e.Name())

	e, err = reg.ForMime("image/jpg")
	require.NoError(t, err)
	assert.Equal(t, "img", e.Name())
}

func TestRegistryUnsupportedFormat(t *testing.T) {
	reg := NewRegistry(logger.NewTestLogger())
	_, err := reg.ForMime("application/x-mystery")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "application/x-mystery")

	var perr *errs.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, errs.KindInvalidFormat, perr.Kind)
}

func TestRegistryRejectsAmbiguousClaim(t *testing.T) {
	reg := NewRegistry(logger.NewTestLogger())
	require.NoError(t, reg.Register(&stubExtractor{name: "first", mimes: []string{"text/plain"}}))

	err := reg.Register(&stubExtractor{name: "second", mimes: []string{"text/csv", "text/plain"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")

	// the failed registration must not leave partial claims behind
	_, err = reg.ForMime("text/csv")
	assert.Error(t, err)
	assert.Equal(t, []string{"first"}, reg.Names())
}

func TestRegistryAmbiguityThroughAlias(t *testing.T) {
	reg := NewRegistry(logger.NewTestLogger())
	require.NoError(t, reg.Register(&stubExtractor{name: "img", mimes: []string{"image/jpeg"}}))

	// image/jpg canonicalizes to image/jpeg, so this is the same claim
	err := reg.Register(&stubExtractor{name: "img2", mimes: []string{"image/jpg"}})
	assert.Error(t, err)
}

func TestRegistryUnregisterReleasesClaims(t *testing.T) {
	reg := NewRegistry(logger.NewTestLogger())
	require.NoError(t, reg.Register(&stubExtractor{name: "txt", mimes: []string{"text/plain"}}))

	reg.Unregister("txt")
	reg.Unregister("txt") // idempotent

	_, err := reg.ForMime("text/plain")
	assert.Error(t, err)

	// the claim is free again
	require.NoError(t, reg.Register(&stubExtractor{name: "txt2", mimes: []string{"text/plain"}}))
}

func TestRegistryClear(t *testing.T) {
	reg := NewRegistry(logger.NewTestLogger())
	require.NoError(t, reg.Register(&stubExtractor{name: "a", mimes: []string{"text/plain"}}))
	require.NoError(t, reg.Register(&stubExtractor{name: "b", mimes: []string{"application/pdf"}}))

	reg.Clear()
	assert.Empty(t, reg.Names())
	assert.Empty(t, reg.SupportedMimeTypes())
}

func TestTextExtractor(t *testing.T) {
	e := NewTextExtractor()
	raw, err := e.Extract(context.Background(), []byte("hello\nworld"), "text/plain", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", raw.Content)
	assert.Equal(t, 2, raw.Metadata["line_count"])

	_, err = e.Extract(context.Background(), []byte{0xff, 0xfe, 0xfd}, "text/plain", nil)
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidFormat, errs.KindOf(err))
}

func TestDefaultExtractorsDisjoint(t *testing.T) {
	reg := NewRegistry(logger.NewTestLogger())
	require.NoError(t, reg.Register(NewTextExtractor()))
	require.NoError(t, reg.Register(NewPDFExtractor(logger.NewTestLogger())))
	require.NoError(t, reg.Register(NewExcelExtractor(logger.NewTestLogger())))
	require.NoError(t, reg.Register(NewImageExtractor()))

	assert.Equal(t, []string{"text", "pdf", "excel", "image"}, reg.Names())
}
