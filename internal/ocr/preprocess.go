package ocr

import (
	"bytes"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/feichai0017/docintel/internal/errs"
)

// recognition quality drops sharply below ~300px on the short edge
const minDimension = 300

// PrepareImage normalizes an image for recognition: grayscale, slight
// contrast boost, and upscaling of tiny inputs. Returns PNG bytes.
func PrepareImage(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errs.NewInvalidFormat(err, "invalid format: cannot decode image")
	}

	img = imaging.Grayscale(img)
	img = imaging.AdjustContrast(img, 10)

	bounds := img.Bounds()
	if bounds.Dx() < minDimension || bounds.Dy() < minDimension {
		img = imaging.Resize(img, bounds.Dx()*2, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errs.NewExtraction(err, "cannot encode preprocessed image")
	}
	return buf.Bytes(), nil
}
