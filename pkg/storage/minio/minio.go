package minio

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	cfg "github.com/feichai0017/docintel/config"
	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/pkg/logger"
)

// Store keeps extraction artifacts in a MinIO bucket.
type Store struct {
	client *minio.Client
	bucket string
	log    logger.Logger
}

// NewStore connects to MinIO using the environment configuration and ensures
// the artifact bucket exists.
func NewStore(log logger.Logger) (*Store, error) {
	mc := cfg.GetMinioConfig()
	client, err := minio.New(mc.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(mc.AccessKey, mc.SecretKey, ""),
		Secure: mc.UseSSL,
		Region: mc.Region,
	})
	if err != nil {
		return nil, errs.NewInvalidConfig(err, "config error: cannot build minio client")
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, mc.BucketName)
	if err != nil {
		return nil, errs.NewIO(err, "cannot check bucket %s", mc.BucketName)
	}
	if !exists {
		if err := client.MakeBucket(ctx, mc.BucketName, minio.MakeBucketOptions{Region: mc.Region}); err != nil {
			return nil, errs.NewIO(err, "cannot create bucket %s", mc.BucketName)
		}
	}

	return &Store{client: client, bucket: mc.BucketName, log: log}, nil
}

func (s *Store) Put(ctx context.Context, key string, reader io.Reader) error {
	if _, err := s.client.PutObject(ctx, s.bucket, key, reader, -1, minio.PutObjectOptions{}); err != nil {
		return errs.NewIO(err, "cannot store artifact %s", key).WithContext("bucket", s.bucket)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errs.NewIO(err, "artifact %s not found", key).WithContext("bucket", s.bucket)
	}
	return obj, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return errs.NewIO(err, "cannot delete artifact %s", key).WithContext("bucket", s.bucket)
	}
	return nil
}

func (s *Store) CleanupBefore(ctx context.Context, threshold time.Time) error {
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			s.log.Warn("artifact listing error",
				logger.String("bucket", s.bucket),
				logger.Error(obj.Err),
			)
			continue
		}
		if !obj.LastModified.Before(threshold) {
			continue
		}
		if err := s.Delete(ctx, obj.Key); err != nil {
			s.log.Warn("expired artifact not deleted",
				logger.String("key", obj.Key),
				logger.Error(err),
			)
			continue
		}
		s.log.Debug("expired artifact deleted",
			logger.String("key", obj.Key),
			logger.Time("lastModified", obj.LastModified),
		)
	}
	return nil
}
