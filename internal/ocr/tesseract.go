package ocr

import (
	"context"
	"os"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/plugins"
	"github.com/feichai0017/docintel/pkg/logger"
)

// TesseractBackend runs OCR through a local tesseract installation.
type TesseractBackend struct {
	plugins.Base
	languages []string
	log       logger.Logger
}

// NewTesseractBackend builds the backend declaring the tesseract language
// packs available on this host.
func NewTesseractBackend(languages []string, log logger.Logger) *TesseractBackend {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &TesseractBackend{languages: languages, log: log}
}

func (b *TesseractBackend) Name() string { return "tesseract" }

func (b *TesseractBackend) SupportedLanguages() []string {
	out := make([]string, len(b.languages))
	copy(out, b.languages)
	return out
}

func (b *TesseractBackend) Initialize() error {
	// probe once so a missing installation surfaces at registration
	client := gosseract.NewClient()
	defer client.Close()
	if _, err := client.GetAvailableLanguages(); err != nil {
		return errs.NewOCR(err, "ocr: tesseract unavailable")
	}
	return nil
}

func (b *TesseractBackend) ProcessImage(ctx context.Context, image []byte, language string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	prepared, err := PrepareImage(image)
	if err != nil {
		b.log.Warn("image preprocessing failed, using original bytes", logger.Error(err))
		prepared = image
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return "", errs.NewOCR(err, "ocr: tesseract rejected language %q", language)
	}
	if err := client.SetImageFromBytes(prepared); err != nil {
		return "", errs.NewOCR(err, "ocr: cannot load image")
	}
	text, err := client.Text()
	if err != nil {
		return "", errs.NewOCR(err, "ocr: tesseract recognition failed")
	}
	return strings.TrimSpace(text), nil
}

func (b *TesseractBackend) ProcessFile(ctx context.Context, path string, language string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errs.NewIO(err, "cannot read image file %s", path).WithContext("file", path)
	}
	return b.ProcessImage(ctx, data, language)
}
