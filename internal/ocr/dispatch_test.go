package ocr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/plugins"
	"github.com/feichai0017/docintel/pkg/logger"
)

type fakeBackend struct {
	plugins.Base
	name      string
	languages []string
	reject    bool
}

func (f *fakeBackend) Name() string                 { return f.name }
func (f *fakeBackend) SupportedLanguages() []string { return f.languages }

func (f *fakeBackend) ProcessImage(_ context.Context, _ []byte, language string) (string, error) {
	if f.reject {
		return "", errs.NewOCR(nil, "ocr: backend %s cannot read %s", f.name, language)
	}
	return "recognized by " + f.name, nil
}

func (f *fakeBackend) ProcessFile(ctx context.Context, _ string, language string) (string, error) {
	return f.ProcessImage(ctx, nil, language)
}

func newBackendRegistry(t *testing.T) *plugins.Registry[plugins.OcrBackend] {
	t.Helper()
	reg := plugins.NewRegistry[plugins.OcrBackend](logger.NewTestLogger())
	require.NoError(t, reg.Register(&fakeBackend{name: "b1", languages: []string{"eng", "deu"}}))
	require.NoError(t, reg.Register(&fakeBackend{name: "b2", languages: []string{"chi"}}))
	return reg
}

func TestResolveAutoByLanguage(t *testing.T) {
	reg := newBackendRegistry(t)

	backend, err := Resolve(reg, "auto", "chi")
	require.NoError(t, err)
	assert.Equal(t, "b2", backend.Name())

	backend, err = Resolve(reg, "", "deu")
	require.NoError(t, err)
	assert.Equal(t, "b1", backend.Name())
}

func TestResolveAutoPrefersRegistrationOrder(t *testing.T) {
	reg := plugins.NewRegistry[plugins.OcrBackend](logger.NewTestLogger())
	require.NoError(t, reg.Register(&fakeBackend{name: "first", languages: []string{"eng"}}))
	require.NoError(t, reg.Register(&fakeBackend{name: "second", languages: []string{"eng"}}))

	backend, err := Resolve(reg, "auto", "eng")
	require.NoError(t, err)
	assert.Equal(t, "first", backend.Name())
}

func TestResolveUnknownLanguage(t *testing.T) {
	reg := newBackendRegistry(t)

	_, err := Resolve(reg, "auto", "fra")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fra")
	assert.Contains(t, err.Error(), "b1")
	assert.Contains(t, err.Error(), "b2")
	assert.Equal(t, errs.KindOCR, errs.KindOf(err))
}

func TestResolveByName(t *testing.T) {
	reg := newBackendRegistry(t)

	backend, err := Resolve(reg, "b2", "eng")
	require.NoError(t, err)
	assert.Equal(t, "b2", backend.Name())

	_, err = Resolve(reg, "missing", "eng")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestBackendRejectionIsAuthoritative(t *testing.T) {
	reg := plugins.NewRegistry[plugins.OcrBackend](logger.NewTestLogger())
	// the backend over-reports its capabilities and rejects at call time
	require.NoError(t, reg.Register(&fakeBackend{name: "liar", languages: []string{"eng"}, reject: true}))

	backend, err := Resolve(reg, "auto", "eng")
	require.NoError(t, err)

	_, err = backend.ProcessImage(context.Background(), nil, "eng")
	require.Error(t, err)
	assert.Equal(t, errs.KindOCR, errs.KindOf(err))
}

func TestResolveEmptyRegistry(t *testing.T) {
	reg := plugins.NewRegistry[plugins.OcrBackend](logger.NewTestLogger())
	_, err := Resolve(reg, "auto", "eng")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none")
}
