package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quanghuy1242/content-api/pkg/observability"
	"github.com/quanghuy1242/content-api/pkg/storage"
)

var s3Tracer = tracer

// ObjectStore implements api.ObjectStore against S3. Image bytes never pass
// through the API process: clients upload and download directly using
// pre-signed URLs, and the API only confirms existence.
type ObjectStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	expiry  time.Duration
	cache   *URLCache
	metrics *observability.Metrics
}

// WithMetrics attaches presign counters. Nil disables them.
func (o *ObjectStore) WithMetrics(m *observability.Metrics) *ObjectStore {
	o.metrics = m
	return o
}

func (o *ObjectStore) observePresign(direction string, start time.Time, err error) {
	if o.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	o.metrics.PresignTotal.WithLabelValues(direction, status).Inc()
	o.metrics.PresignDuration.WithLabelValues(direction).Observe(time.Since(start).Seconds())
}

// NewObjectStore creates an S3-backed object store. The cache argument is
// optional; pass nil to presign every download request.
func NewObjectStore(cfg storage.Config, cache *URLCache) (*ObjectStore, error) {
	ctx := context.Background()

	var awsConfig aws.Config
	var err error

	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		// Static credentials, for MinIO or AWS with explicit keys
		awsConfig, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.S3Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.S3AccessKey,
				cfg.S3SecretKey,
				"",
			)),
		)
	} else {
		// Default credential chain: IAM roles, env vars, etc.
		awsConfig, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.S3Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		if cfg.S3UsePathStyle {
			o.UsePathStyle = true
		}
	})

	// Bootstrap the bucket for local dev with MinIO.
	if err := createBucketIfNotExists(ctx, client, cfg.S3Bucket); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return &ObjectStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.S3Bucket,
		expiry:  cfg.SignedURLExpiry,
		cache:   cache,
	}, nil
}

// PresignUpload produces a pre-signed PUT URL bound to the exact content
// type and length the record declares, so a client cannot upload something
// other than what it registered.
func (o *ObjectStore) PresignUpload(ctx context.Context, key, contentType string, size int64) (string, error) {
	ctx, span := s3Tracer.Start(ctx, "S3.PresignUpload",
		trace.WithAttributes(
			attribute.String("s3.bucket", o.bucket),
			attribute.String("s3.key", key),
			attribute.String("content.type", contentType),
			attribute.Int64("content.size", size),
		),
	)
	defer span.End()

	start := time.Now()
	req, err := o.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(o.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}, s3.WithPresignExpires(o.expiry))
	o.observePresign("upload", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to presign upload")
		return "", fmt.Errorf("failed to presign upload: %w", err)
	}

	span.SetStatus(codes.Ok, "upload url presigned")
	return req.URL, nil
}

// PresignDownload produces a pre-signed GET URL, served from cache when one
// is still fresh.
func (o *ObjectStore) PresignDownload(ctx context.Context, key string) (string, error) {
	ctx, span := s3Tracer.Start(ctx, "S3.PresignDownload",
		trace.WithAttributes(
			attribute.String("s3.bucket", o.bucket),
			attribute.String("s3.key", key),
		),
	)
	defer span.End()

	if o.cache != nil {
		if url, ok := o.cache.Get(ctx, key); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return url, nil
		}
		span.SetAttributes(attribute.Bool("cache.hit", false))
	}

	start := time.Now()
	req, err := o.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(o.expiry))
	o.observePresign("download", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to presign download")
		return "", fmt.Errorf("failed to presign download: %w", err)
	}

	if o.cache != nil {
		o.cache.Set(ctx, key, req.URL)
	}
	span.SetStatus(codes.Ok, "download url presigned")
	return req.URL, nil
}

// Exists reports whether the object is present in the bucket.
func (o *ObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	ctx, span := s3Tracer.Start(ctx, "S3.HeadObject",
		trace.WithAttributes(
			attribute.String("s3.bucket", o.bucket),
			attribute.String("s3.key", key),
		),
	)
	defer span.End()

	_, err := o.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		span.RecordError(err)
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}

// HealthCheck verifies S3 connectivity.
func (o *ObjectStore) HealthCheck(ctx context.Context) error {
	_, err := o.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(o.bucket),
	})
	if err != nil {
		return fmt.Errorf("s3 health check failed: %w", err)
	}
	return nil
}

func createBucketIfNotExists(ctx context.Context, client *s3.Client, bucket string) error {
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err == nil {
		return nil
	}

	_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var exists *types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

func isNotFoundError(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey)
}
