package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/vidforge/gateway/config"
)

// S3 stores uploads in an S3 bucket under the uploads/ prefix and issues
// presigned download URLs.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      config.StorageConfig
	logger   *zap.Logger
}

// NewS3 creates the S3 storage backend. Credentials come from config when set,
// otherwise from the default AWS credential chain.
func NewS3(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*S3, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)))
	} else {
		logger.Warn("S3 storage using default credential chain (AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY not set)")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024 // 5MB parts so large payloads stream instead of buffering
	})
	logger.Info("S3 storage ready", zap.String("region", cfg.Region), zap.String("bucket", cfg.Bucket))
	return &S3{client: client, uploader: uploader, cfg: cfg, logger: logger}, nil
}

// Save streams the payload to uploads/{key} in the configured bucket and
// returns an s3://bucket/key locator.
func (s *S3) Save(ctx context.Context, key string, r io.Reader) (string, error) {
	objectKey := ObjectKey(key)
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(objectKey),
		Body:   r,
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", s.cfg.Bucket, objectKey), nil
}

// Bucket returns the configured uploads bucket name.
func (s *S3) Bucket() string { return s.cfg.Bucket }

// PresignDownload returns a presigned GET URL for an object key with the
// configured fixed expiry.
func (s *S3) PresignDownload(ctx context.Context, key string) (string, time.Duration, error) {
	expire := s.cfg.PresignExpire()
	presignClient := s3.NewPresignClient(s.client)
	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expire
	})
	if err != nil {
		return "", 0, fmt.Errorf("presign get: %w", err)
	}
	return req.URL, expire, nil
}
