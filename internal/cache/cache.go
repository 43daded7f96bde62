package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/feichai0017/docintel/internal/models"
)

// Cache maps a content fingerprint to a prior extraction result. A read
// failure is treated as a miss and a write failure is logged by the caller;
// neither fails an otherwise-successful extraction.
type Cache interface {
	Get(ctx context.Context, fingerprint string) (*models.ExtractionResult, bool)
	Set(ctx context.Context, fingerprint string, result *models.ExtractionResult) error
	// Stats returns aggregate counters and sizes under string keys.
	Stats(ctx context.Context) map[string]interface{}
	// Clear empties the cache. Idempotent.
	Clear(ctx context.Context) error
}

// Fingerprint derives the cache key for one extraction call: a sha256 over
// the input bytes, the declared MIME type and the normalized configuration.
func Fingerprint(data []byte, mimeType string, config *models.ExtractionConfig) string {
	h := sha256.New()
	h.Write(data)
	h.Write([]byte{0})
	h.Write([]byte(mimeType))
	h.Write([]byte{0})
	h.Write([]byte(config.Hash()))
	return hex.EncodeToString(h.Sum(nil))
}
