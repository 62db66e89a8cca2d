package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"transcode-worker/internal/logging"
	"transcode-worker/internal/metrics"
)

// Client wraps the S3 API with the download/upload/existence primitives the
// pipeline needs. All operations verify their outcome: downloads stat the
// local file, uploads re-check the remote key.
type Client struct {
	s3 *s3.Client
}

// New builds a Client from the default AWS configuration chain (environment,
// shared config, instance role). An optional endpoint override supports
// S3-compatible stores in development.
func New(ctx context.Context, region, endpoint string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{s3: client}, nil
}

// Exists reports whether the object is present, using a head request.
func (c *Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := c.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		metrics.StoreOperationsTotal.WithLabelValues("head", "error").Inc()
		return false, fmt.Errorf("head %s/%s: %w", bucket, key, err)
	}
	metrics.StoreOperationsTotal.WithLabelValues("head", "success").Inc()
	return true, nil
}

// ContentType returns the object's declared content type from a head
// request. Missing objects are an error here; callers check existence first.
func (c *Client) ContentType(ctx context.Context, bucket, key string) (string, error) {
	head, err := c.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		metrics.StoreOperationsTotal.WithLabelValues("head", "error").Inc()
		return "", fmt.Errorf("head %s/%s: %w", bucket, key, err)
	}
	metrics.StoreOperationsTotal.WithLabelValues("head", "success").Inc()
	return aws.ToString(head.ContentType), nil
}

// Download streams the object body directly into dest. The body is never
// buffered wholly in memory; after the transfer the local file is verified
// to exist.
func (c *Client) Download(ctx context.Context, bucket, key, dest string) error {
	resp, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		metrics.StoreOperationsTotal.WithLabelValues("download", "error").Inc()
		return fmt.Errorf("get %s/%s: %w", bucket, key, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("ObjectStore: failed to close response body for %s: %v", key, err)
		}
	}()

	out, err := os.Create(dest)
	if err != nil {
		metrics.StoreOperationsTotal.WithLabelValues("download", "error").Inc()
		return fmt.Errorf("create %s: %w", dest, err)
	}

	written, copyErr := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if copyErr != nil {
		metrics.StoreOperationsTotal.WithLabelValues("download", "error").Inc()
		return fmt.Errorf("stream %s/%s to %s: %w", bucket, key, dest, copyErr)
	}
	if closeErr != nil {
		metrics.StoreOperationsTotal.WithLabelValues("download", "error").Inc()
		return fmt.Errorf("close %s: %w", dest, closeErr)
	}

	if _, err := os.Stat(dest); err != nil {
		metrics.StoreOperationsTotal.WithLabelValues("download", "error").Inc()
		return fmt.Errorf("downloaded file missing at %s: %w", dest, err)
	}

	metrics.StoreOperationsTotal.WithLabelValues("download", "success").Inc()
	metrics.StoreBytesTransferred.WithLabelValues("download").Add(float64(written))
	logging.Debug("ObjectStore: downloaded %s/%s to %s (%d bytes)", bucket, key, dest, written)
	return nil
}

// Upload publishes a local file under the given key and verifies the object
// is visible afterwards.
func (c *Client) Upload(ctx context.Context, bucket, key, localPath, contentType string) error {
	file, err := os.Open(localPath)
	if err != nil {
		metrics.StoreOperationsTotal.WithLabelValues("upload", "error").Inc()
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("ObjectStore: failed to close %s: %v", localPath, err)
		}
	}()

	info, err := file.Stat()
	if err != nil {
		metrics.StoreOperationsTotal.WithLabelValues("upload", "error").Inc()
		return fmt.Errorf("stat %s: %w", localPath, err)
	}

	_, err = c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		metrics.StoreOperationsTotal.WithLabelValues("upload", "error").Inc()
		return fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}

	exists, err := c.Exists(ctx, bucket, key)
	if err != nil {
		return fmt.Errorf("verify upload of %s/%s: %w", bucket, key, err)
	}
	if !exists {
		metrics.StoreOperationsTotal.WithLabelValues("upload", "error").Inc()
		return fmt.Errorf("upload of %s/%s not visible after put", bucket, key)
	}

	metrics.StoreOperationsTotal.WithLabelValues("upload", "success").Inc()
	metrics.StoreBytesTransferred.WithLabelValues("upload").Add(float64(info.Size()))
	logging.Debug("ObjectStore: uploaded %s as %s/%s (%d bytes)", localPath, bucket, key, info.Size())
	return nil
}

// isNotFound classifies head/get failures that mean "object absent" rather
// than "request failed".
func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "404":
			return true
		}
	}
	return false
}
