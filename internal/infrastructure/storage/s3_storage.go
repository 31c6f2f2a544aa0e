// Package storage keeps printed label documents in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	infraconfig "github.com/pexcode/qds-print-sdk/internal/infrastructure/config"
	"github.com/pexcode/qds-print-sdk/internal/infrastructure/printing"
	"go.uber.org/zap"
)

const pdfContentType = "application/pdf"

var _ printing.DocumentStore = (*S3DocumentStore)(nil)

// S3DocumentStore implements printing.DocumentStore using AWS S3 SDK v2.
// It is compatible with any S3-compatible storage (AWS S3, RustFS, MinIO, etc.)
type S3DocumentStore struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	prefix            string
	endpoint          string
	usePathStyle      bool
	presignExpiration time.Duration
	logger            *zap.Logger
}

// S3DocumentStoreOption is a functional option for configuring S3DocumentStore
type S3DocumentStoreOption func(*S3DocumentStore)

// WithLogger sets a custom logger for S3DocumentStore
func WithLogger(logger *zap.Logger) S3DocumentStoreOption {
	return func(s *S3DocumentStore) {
		s.logger = logger
	}
}

// WithPresignExpiration sets a custom presign expiration duration
func WithPresignExpiration(d time.Duration) S3DocumentStoreOption {
	return func(s *S3DocumentStore) {
		s.presignExpiration = d
	}
}

// NewS3DocumentStore creates a new S3DocumentStore from configuration.
func NewS3DocumentStore(ctx context.Context, cfg *infraconfig.S3Config, opts ...S3DocumentStoreOption) (*S3DocumentStore, error) {
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

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
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

	store := &S3DocumentStore{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		prefix:            strings.Trim(cfg.Prefix, "/"),
		endpoint:          strings.TrimSuffix(endpoint, "/"),
		usePathStyle:      cfg.UsePathStyle,
		presignExpiration: cfg.PresignExpiration,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.presignExpiration == 0 {
		store.presignExpiration = 15 * time.Minute
	}

	return store, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *S3DocumentStore) EnsureBucket(ctx context.Context) error {
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
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Store uploads the PDF as {prefix}/{year}/{month}/{key}.pdf
func (s *S3DocumentStore) Store(ctx context.Context, req *printing.StoreRequest) (*printing.StoreResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	path := req.ObjectPath()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(path)),
		Body:          bytes.NewReader(req.PDFData),
		ContentLength: aws.Int64(int64(len(req.PDFData))),
		ContentType:   aws.String(pdfContentType),
	})
	if err != nil {
		return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "failed to upload PDF", err)
	}

	result := &printing.StoreResult{
		Path: path,
		URL:  s.GetURL(path),
		Size: int64(len(req.PDFData)),
	}
	s.logger.Info("label PDF uploaded",
		zap.String("bucket", s.bucket),
		zap.String("key", s.objectKey(path)),
		zap.Int64("size", result.Size))
	return result, nil
}

// Get downloads a stored PDF; the caller closes the body
func (s *S3DocumentStore) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "path is required", nil)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(path)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "PDF not found", err)
		}
		return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "failed to download PDF", err)
	}
	return out.Body, nil
}

// Delete removes a stored PDF. S3 treats deleting a missing key as success.
func (s *S3DocumentStore) Delete(ctx context.Context, path string) error {
	if path == "" {
		return printing.NewRenderError(printing.ErrCodeStorageFailed, "path is required", nil)
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(path)),
	})
	if err != nil {
		return printing.NewRenderError(printing.ErrCodeStorageFailed, "failed to delete PDF", err)
	}
	return nil
}

// GetURL returns the unsigned object URL
func (s *S3DocumentStore) GetURL(path string) string {
	key := s.objectKey(path)
	if s.usePathStyle {
		return s.endpoint + "/" + s.bucket + "/" + key
	}
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return s.endpoint + "/" + s.bucket + "/" + key
	}
	u.Host = s.bucket + "." + u.Host
	u.Path = "/" + key
	return u.String()
}

// PresignURL returns a time-limited download URL for a stored PDF
func (s *S3DocumentStore) PresignURL(ctx context.Context, path string) (string, time.Time, error) {
	if path == "" {
		return "", time.Time{}, errors.New("path is required")
	}

	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(path)),
	}, s3.WithPresignExpires(s.presignExpiration))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate download URL: %w", err)
	}
	return req.URL, time.Now().Add(s.presignExpiration), nil
}

// Bucket returns the bucket name
func (s *S3DocumentStore) Bucket() string {
	return s.bucket
}

func (s *S3DocumentStore) objectKey(path string) string {
	path = strings.TrimPrefix(path, "/")
	if s.prefix == "" {
		return path
	}
	return s.prefix + "/" + path
}
