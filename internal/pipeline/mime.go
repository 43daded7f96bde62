package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/internal/extractors"
)

// extensionMIME is the fallback table for formats content sniffing cannot
// tell apart (markdown vs plain text, csv vs text).
var extensionMIME = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".html": "text/html",
	".htm":  "text/html",
	".json": "application/json",
	".xml":  "application/xml",
	".pdf":  "application/pdf",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":  "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".tiff": "image/tiff",
	".bmp":  "image/bmp",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// genericMimes are sniffer outputs too vague to dispatch on when a filename
// extension can do better.
var genericMimes = map[string]bool{
	"application/octet-stream": true,
	"text/plain":               true,
}

// ResolveMime determines the canonical MIME type for an input. An explicit
// hint wins. Otherwise the content is sniffed; when sniffing yields only a
// generic type the filename extension breaks the tie. The result may still be
// a type no extractor claims, which dispatch reports as unsupported.
func ResolveMime(data []byte, hint, filename string) string {
	if hint != "" {
		return normalizeMime(hint)
	}

	sniffed := DetectMimeType(data)
	if genericMimes[sniffed] {
		ext := strings.ToLower(filepath.Ext(filename))
		if byExt, ok := extensionMIME[ext]; ok {
			return extractors.CanonicalMime(byExt)
		}
	}
	return sniffed
}

// DetectMimeType sniffs the canonical MIME type of raw bytes.
func DetectMimeType(data []byte) string {
	return normalizeMime(mimetype.Detect(data).String())
}

// DetectMimeTypeFromPath sniffs a file on disk without loading it whole.
func DetectMimeTypeFromPath(path string) (string, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", errs.NewIO(err, "cannot detect type of %s", path)
	}
	return normalizeMime(mt.String()), nil
}

// normalizeMime lowercases, strips parameters like charset, and canonicalizes
// through the alias table.
func normalizeMime(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return extractors.CanonicalMime(mimeType)
}
