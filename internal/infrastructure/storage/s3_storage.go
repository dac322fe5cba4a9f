// Package storage archives fetched shipping-label documents in object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	labelsapp "github.com/sellerdesk/backend/internal/application/labels"
	infraconfig "github.com/sellerdesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// LabelContentType is the content type of archived label documents
const LabelContentType = "application/pdf"

// Ensure S3LabelArchive implements labels.Archive
var _ labelsapp.Archive = (*S3LabelArchive)(nil)

// S3LabelArchive stores label PDFs in an S3-compatible bucket
// (AWS S3, MinIO, RustFS, etc.).
type S3LabelArchive struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	prefix            string
	presignExpiration time.Duration
	now               func() time.Time
	logger            *zap.Logger
}

// S3LabelArchiveOption is a functional option for configuring S3LabelArchive
type S3LabelArchiveOption func(*S3LabelArchive)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3LabelArchiveOption {
	return func(s *S3LabelArchive) {
		s.logger = logger
	}
}

// WithPresignExpiration sets how long download URLs stay valid
func WithPresignExpiration(d time.Duration) S3LabelArchiveOption {
	return func(s *S3LabelArchive) {
		s.presignExpiration = d
	}
}

// WithClock overrides the clock used for object keys
func WithClock(now func() time.Time) S3LabelArchiveOption {
	return func(s *S3LabelArchive) {
		s.now = now
	}
}

// NewS3LabelArchive creates an archive from configuration
func NewS3LabelArchive(cfg *infraconfig.StorageConfig, opts ...S3LabelArchiveOption) (*S3LabelArchive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	archive := &S3LabelArchive{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		prefix:            cfg.Prefix,
		presignExpiration: 15 * time.Minute,
		now:               time.Now,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(archive)
	}
	return archive, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup.
func (s *S3LabelArchive) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating label bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		// Lost the race against another instance
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Archive uploads one label document and returns where it was stored
func (s *S3LabelArchive) Archive(ctx context.Context, storeID string, data []byte) (labelsapp.ArchivedLabel, error) {
	key := s.objectKey(storeID)
	if err := s.upload(ctx, key, data, LabelContentType); err != nil {
		return labelsapp.ArchivedLabel{}, err
	}

	downloadURL, expiresAt, err := s.DownloadURL(ctx, key, 0)
	if err != nil {
		return labelsapp.ArchivedLabel{}, err
	}

	s.logger.Debug("Label archived",
		zap.String("store_id", storeID),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)
	return labelsapp.ArchivedLabel{Key: key, URL: downloadURL, ExpiresAt: expiresAt}, nil
}

// DownloadURL generates a presigned GET URL for an archived object
func (s *S3LabelArchive) DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if expiresIn <= 0 {
		expiresIn = s.presignExpiration
	}

	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate download URL: %w", err)
	}
	return req.URL, s.now().Add(expiresIn), nil
}

// Bucket returns the bucket name
func (s *S3LabelArchive) Bucket() string {
	return s.bucket
}

func (s *S3LabelArchive) upload(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

// objectKey lays labels out as <prefix><store>/<yyyy>/<mm>/<dd>/<time>-<id>.pdf
func (s *S3LabelArchive) objectKey(storeID string) string {
	now := s.now().UTC()
	name := fmt.Sprintf("%s-%s.pdf", now.Format("150405"), uuid.NewString()[:8])
	return s.prefix + path.Join(storeID, now.Format("2006/01/02"), name)
}
