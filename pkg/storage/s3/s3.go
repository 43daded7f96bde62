package s3

import (
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	cfg "github.com/feichai0017/docintel/config"
	"github.com/feichai0017/docintel/internal/errs"
	"github.com/feichai0017/docintel/pkg/logger"
)

// Store keeps extraction artifacts in an S3 bucket.
type Store struct {
	client *s3.Client
	bucket string
	log    logger.Logger
}

// NewStore connects to S3 using the environment configuration and verifies
// the artifact bucket is reachable.
func NewStore(log logger.Logger) (*Store, error) {
	sc := cfg.GetS3Config()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(sc.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			sc.AccessKey,
			sc.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, errs.NewInvalidConfig(err, "config error: cannot build aws config")
	}

	client := s3.NewFromConfig(awsCfg)
	if _, err := client.HeadBucket(context.Background(), &s3.HeadBucketInput{
		Bucket: aws.String(sc.BucketName),
	}); err != nil {
		return nil, errs.NewIO(err, "bucket %s is not reachable", sc.BucketName)
	}

	return &Store{client: client, bucket: sc.BucketName, log: log}, nil
}

func (s *Store) Put(ctx context.Context, key string, reader io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   reader,
	})
	if err != nil {
		return errs.NewIO(err, "cannot store artifact %s", key).WithContext("bucket", s.bucket)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errs.NewIO(err, "artifact %s not found", key).WithContext("bucket", s.bucket)
	}
	return out.Body, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errs.NewIO(err, "cannot delete artifact %s", key).WithContext("bucket", s.bucket)
	}
	return nil
}

func (s *Store) CleanupBefore(ctx context.Context, threshold time.Time) error {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return errs.NewIO(err, "cannot list artifacts").WithContext("bucket", s.bucket)
		}
		for _, obj := range page.Contents {
			if obj.LastModified == nil || !obj.LastModified.Before(threshold) {
				continue
			}
			if err := s.Delete(ctx, aws.ToString(obj.Key)); err != nil {
				s.log.Warn("expired artifact not deleted",
					logger.String("key", aws.ToString(obj.Key)),
					logger.Error(err),
				)
				continue
			}
			s.log.Debug("expired artifact deleted",
				logger.String("key", aws.ToString(obj.Key)),
				logger.Time("lastModified", *obj.LastModified),
			)
		}
	}
	return nil
}
