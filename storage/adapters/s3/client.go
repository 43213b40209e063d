// Package s3 stores objects in an AWS S3 (or S3 compatible) bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"healthdash/config"
	"healthdash/observability/types"
	storagetypes "healthdash/storage/types"
)

// API is the subset of *s3.Client the adapter uses.
type API interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, opts ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// Client implements storagetypes.ObjectStorage for S3
type Client struct {
	api     API
	bucket  string
	region  string
	logger  types.Logger
	metrics types.Metrics
}

// NewClient builds an S3 client from configuration and makes sure the bucket
// exists, creating it when missing.
func NewClient(ctx context.Context, cfg *config.StorageConfig, logger types.Logger, metrics types.Metrics) (*Client, error) {
	if cfg.S3.Bucket == "" {
		return nil, fmt.Errorf("invalid S3 configuration: bucket is required")
	}

	awsCfg, err := buildAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
		o.UsePathStyle = cfg.S3.UsePathStyle
	})

	client := NewWithAPI(api, cfg.S3.Bucket, cfg.S3.Region, logger, metrics)

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.ensureBucketExists(checkCtx); err != nil {
		return nil, fmt.Errorf("failed to verify bucket existence: %w", err)
	}

	return client, nil
}

// NewWithAPI wraps an existing API implementation without any network check.
func NewWithAPI(api API, bucket, region string, logger types.Logger, metrics types.Metrics) *Client {
	return &Client{
		api:     api,
		bucket:  bucket,
		region:  region,
		logger:  logger,
		metrics: metrics,
	}
}

// Put stores an object in S3
func (c *Client) Put(ctx context.Context, key string, reader io.Reader, metadata storagetypes.ObjectMetadata) error {
	start := time.Now()
	defer func() {
		c.metrics.RecordDuration("s3.put", time.Since(start).Seconds())
	}()

	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, reader); err != nil {
		c.metrics.RecordError("s3.put", "read")
		return fmt.Errorf("failed to read content: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(int64(buf.Len())),
	}
	if metadata.ContentType != "" {
		input.ContentType = aws.String(metadata.ContentType)
	}
	if metadata.CacheControl != "" {
		input.CacheControl = aws.String(metadata.CacheControl)
	}
	if len(metadata.UserMetadata) > 0 {
		input.Metadata = metadata.UserMetadata
	}

	if _, err := c.api.PutObject(ctx, input); err != nil {
		c.metrics.RecordError("s3.put", errorCode(err))
		c.logger.Error(ctx, "failed to put object", err, types.Fields{
			"bucket": c.bucket,
			"key":    key,
		})
		return fmt.Errorf("failed to put object: %w", err)
	}

	c.metrics.RecordSuccess("s3.put")
	c.logger.Debug(ctx, "object stored", types.Fields{
		"bucket": c.bucket,
		"key":    key,
		"size":   buf.Len(),
	})

	return nil
}

// Get retrieves an object from S3
func (c *Client) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	start := time.Now()
	defer func() {
		c.metrics.RecordDuration("s3.get", time.Since(start).Seconds())
	}()

	result, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, storagetypes.ErrObjectNotFound
		}
		c.metrics.RecordError("s3.get", errorCode(err))
		c.logger.Error(ctx, "failed to get object", err, types.Fields{
			"bucket": c.bucket,
			"key":    key,
		})
		return nil, fmt.Errorf("failed to get object: %w", err)
	}

	c.metrics.RecordSuccess("s3.get")
	return result.Body, nil
}

// Exists checks if an object exists in S3
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		c.metrics.RecordError("s3.exists", errorCode(err))
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}

// Delete removes an object from S3
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFoundError(err) {
		c.metrics.RecordError("s3.delete", errorCode(err))
		c.logger.Error(ctx, "failed to delete object", err, types.Fields{
			"bucket": c.bucket,
			"key":    key,
		})
		return fmt.Errorf("failed to delete object: %w", err)
	}

	c.metrics.RecordSuccess("s3.delete")
	return nil
}

// List returns objects under prefix, following pagination.
func (c *Client) List(ctx context.Context, prefix string) ([]storagetypes.ObjectInfo, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var objects []storagetypes.ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(c.api, input)

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			c.metrics.RecordError("s3.list", errorCode(err))
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		for _, obj := range page.Contents {
			objects = append(objects, storagetypes.ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
				ETag:         aws.ToString(obj.ETag),
			})
		}
	}

	c.metrics.RecordSuccess("s3.list")
	return objects, nil
}

// ensureBucketExists checks the configured bucket and creates it if missing.
func (c *Client) ensureBucketExists(ctx context.Context) error {
	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err == nil {
		return nil
	}

	var nf *s3types.NotFound
	if !errors.As(err, &nf) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	c.logger.Info(ctx, "bucket does not exist, attempting to create", types.Fields{
		"bucket": c.bucket,
	})

	input := &s3.CreateBucketInput{Bucket: aws.String(c.bucket)}
	// us-east-1 rejects an explicit location constraint
	if c.region != "" && c.region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(c.region),
		}
	}

	if _, err := c.api.CreateBucket(ctx, input); err != nil {
		var exists *s3types.BucketAlreadyExists
		var owned *s3types.BucketAlreadyOwnedByYou
		if errors.As(err, &exists) || errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// buildAWSConfig builds the AWS configuration from the storage config
func buildAWSConfig(ctx context.Context, cfg *config.StorageConfig) (aws.Config, error) {
	var optFns []func(*awsconfig.LoadOptions) error

	if cfg.S3.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.S3.Region))
	}

	if cfg.S3.AccessKeyID != "" && cfg.S3.SecretAccessKey != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, ""),
		))
	}

	if cfg.Timeout > 0 {
		optFns = append(optFns, awsconfig.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}

	return awsconfig.LoadDefaultConfig(ctx, optFns...)
}

// isNotFoundError checks if an error is a not found error
func isNotFoundError(err error) bool {
	var nsk *s3types.NoSuchKey
	var nf *s3types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}

// errorCode returns the AWS error code for metrics labels.
func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return "unknown"
}
