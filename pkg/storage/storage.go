package storage

import (
	"context"
	"io"
	"time"

	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/pkg/logger"
	"github.com/feichai0017/docintel/pkg/storage/minio"
	"github.com/feichai0017/docintel/pkg/storage/s3"
)

// Kind selects the artifact store backend.
type Kind string

const (
	KindS3    Kind = "s3"
	KindMinio Kind = "minio"
)

// Store archives extraction artifacts: the uploaded documents and the JSON
// results the worker produces for them.
type Store interface {
	Put(ctx context.Context, key string, reader io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// CleanupBefore deletes artifacts last modified before threshold.
	CleanupBefore(ctx context.Context, threshold time.Time) error
}

// DocumentKey is where the raw upload for a job lives.
func DocumentKey(jobID string) string { return "documents/" + jobID }

// ResultKey is where the serialized extraction result for a job lives.
func ResultKey(jobID string) string { return "results/" + jobID }

// NewStore builds the configured artifact store backend.
func NewStore(kind Kind, log logger.Logger) (Store, error) {
	switch kind {
	case KindS3:
		return s3.NewStore(log)
	case KindMinio:
		return minio.NewStore(log)
	default:
		return nil, errs.NewInvalidConfig(nil, "config error: unknown storage backend %q", kind)
	}
}
