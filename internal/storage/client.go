package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ObjectAPI is the subset of the S3 client used by Client.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// FileRef identifies a stored identification document and the URL it can be
// retrieved from.
type FileRef struct {
	ID  string
	URL string
}

// Uploader is the capability consumed by the patient registration flow.
type Uploader interface {
	Upload(ctx context.Context, blob []byte, filename string) (*FileRef, error)
}

// Client stores identification documents in an S3-compatible bucket.
type Client struct {
	api       ObjectAPI
	endpoint  string
	bucket    string
	projectID string
	logger    *slog.Logger
}

func NewClient(api ObjectAPI, endpoint, bucket, projectID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		api:       api,
		endpoint:  strings.TrimRight(endpoint, "/"),
		bucket:    bucket,
		projectID: projectID,
		logger:    logger,
	}
}

// Upload stores the blob under a freshly minted file id and returns the
// reference callers persist alongside the patient profile. The declared
// filename only survives as the download disposition; the object key is the id
// so the retrieval URL can be rebuilt from the id alone.
func (c *Client) Upload(ctx context.Context, blob []byte, filename string) (*FileRef, error) {
	id := uuid.NewString()
	key := objectKey(id)

	contentType := http.DetectContentType(blob)

	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(c.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(blob),
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(fmt.Sprintf("inline; filename=%q", path.Base(filename))),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: put %s: %w", key, err)
	}

	ref := &FileRef{ID: id, URL: c.FileURL(id)}

	c.logger.Info("stored identification document",
		"file_id", id,
		"bucket", c.bucket,
		"content_type", contentType,
		"size_bytes", len(blob),
	)

	return ref, nil
}

// Ping verifies the configured bucket is reachable. Used by readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err != nil {
		return fmt.Errorf("storage: head bucket %s: %w", c.bucket, err)
	}
	return nil
}

// FileURL composes the public retrieval URL for a stored file id.
func (c *Client) FileURL(id string) string {
	return fmt.Sprintf("%s/storage/buckets/%s/files/%s/view?project=%s",
		c.endpoint, c.bucket, id, c.projectID)
}

func objectKey(id string) string {
	return "identification-documents/" + id
}
