package extractors

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/feichai0017/docintel/internal/models"
	"github.com/feichai0017/docintel/internal/plugins"
)

// ImageExtractor handles raster images. Images carry no machine-readable
// text of their own; the extractor records dimensions and hands the bytes to
// the OCR augmentation step, which fills in the content.
type ImageExtractor struct {
	plugins.Base
}

func NewImageExtractor() *ImageExtractor {
	return &ImageExtractor{}
}

func (e *ImageExtractor) Name() string { return "image" }

func (e *ImageExtractor) SupportedMimeTypes() []string {
	return []string{"image/jpeg", "image/png", "image/tiff", "image/gif", "image/bmp", "image/webp"}
}

func (e *ImageExtractor) CanHandle(mimeType string) bool {
	cm := CanonicalMime(mimeType)
	for _, m := range e.SupportedMimeTypes() {
		if m == cm {
			return true
		}
	}
	return false
}

func (e *ImageExtractor) Extract(_ context.Context, data []byte, mimeType string, config *models.ExtractionConfig) (*models.RawExtractionResult, error) {
	meta := map[string]interface{}{
		"byte_size": len(data),
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		meta["width"] = cfg.Width
		meta["height"] = cfg.Height
	}

	raw := &models.RawExtractionResult{
		Content:  "",
		Metadata: meta,
	}
	if config != nil && config.ExtractImages {
		raw.Images = []models.ExtractedImage{{
			Data:     data,
			MimeType: CanonicalMime(mimeType),
		}}
	}
	return raw, nil
}
