package extraction

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/models"
	"github.com/feichai0017/docintel/internal/pipeline"
	"github.com/feichai0017/docintel/internal/plugins"
	"github.com/feichai0017/docintel/pkg/logger"
)

type noopValidator struct {
	plugins.ValidatorBase
	name string
}

func (v *noopValidator) Name() string { return v.name }
func (v *noopValidator) Validate(context.Context, *models.ExtractionResult) error {
	return nil
}

func newTestService(t *testing.T) Service {
	t.Helper()
	return NewService(nil, logger.NewTestLogger())
}

func TestNewServiceRegistersDefaults(t *testing.T) {
	svc := newTestService(t)
	assert.Equal(t, []string{"text", "pdf", "excel", "image"}, svc.ListExtractors())
	assert.Contains(t, svc.SupportedMimeTypes(), "application/pdf")
}

func TestServiceExtractBytes(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.ExtractBytes(context.Background(), []byte("hello"), "text/plain", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", result.Content)
	assert.Equal(t, "text/plain", result.MimeType)
}

func TestServiceExtractFile(t *testing.T) {
	svc := newTestService(t)

	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# heading"), 0o644))

	result, err := svc.ExtractFile(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, "# heading", result.Content)
	assert.Equal(t, "text/markdown", result.MimeType)
}

func TestServiceExtractFileMissing(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ExtractFile(context.Background(), filepath.Join(t.TempDir(), "absent.txt"), nil)
	require.Error(t, err)
	assert.Equal(t, errs.KindIO, svc.ClassifyError(err))
}

func TestServiceExtractBatch(t *testing.T) {
	svc := newTestService(t)

	inputs := []pipeline.Input{
		{Data: []byte("one"), MimeType: "text/plain"},
		{Data: []byte("two"), MimeType: "text/plain"},
	}
	results, err := svc.ExtractBatch(context.Background(), inputs, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "one", results[0].Content)
	assert.Equal(t, "two", results[1].Content)
}

func TestServicePluginManagement(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.RegisterValidator(&noopValidator{name: "v1"}))
	assert.Equal(t, []string{"v1"}, svc.ListValidators())

	svc.UnregisterValidator("v1")
	assert.Empty(t, svc.ListValidators())
}

func TestServiceClearPluginsKeepsExtractors(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.RegisterValidator(&noopValidator{name: "v1"}))

	svc.ClearPlugins()
	assert.Empty(t, svc.ListValidators())
	assert.Empty(t, svc.ListPostProcessors())
	assert.Empty(t, svc.ListOcrBackends())
	assert.NotEmpty(t, svc.ListExtractors())
}

func TestServiceCacheLifecycle(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ExtractBytes(context.Background(), []byte("cache me"), "text/plain", "", nil)
	require.NoError(t, err)

	stats := svc.CacheStats(context.Background())
	assert.Equal(t, int64(1), stats["stores"])

	require.NoError(t, svc.ClearCache(context.Background()))
	stats = svc.CacheStats(context.Background())
	assert.Equal(t, 0, stats["entries"])
}

func TestServiceClassifyError(t *testing.T) {
	svc := newTestService(t)
	assert.Equal(t, errs.KindOCR, svc.ClassifyError(errors.New("OCR engine crashed")))
	assert.Equal(t, errs.KindUnknown, svc.ClassifyError(nil))
}
