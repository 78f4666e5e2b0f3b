// Package gcs archives page snapshots to Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// Archive implements docwatch.Archive for a GCS bucket.
type Archive struct {
	client      *storage.Client
	bucket      string
	contentType string
	logger      *zap.Logger
}

// New initializes a GCS client and verifies the bucket is reachable.
// Authentication is handled via Application Default Credentials.
func New(ctx context.Context, bucket, contentType string, logger *zap.Logger) (*Archive, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if contentType == "" {
		contentType = "text/html; charset=utf-8"
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	// Fail fast on startup if the bucket is misconfigured.
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("failed to close GCS client after bucket check failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("failed to get GCS bucket %q attributes: %w", bucket, err)
	}

	return &Archive{client: client, bucket: bucket, contentType: contentType, logger: logger}, nil
}

// Save uploads the snapshot to the bucket.
func (a *Archive) Save(ctx context.Context, objectName string, data []byte) error {
	wc := a.client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = a.contentType

	if _, err := wc.Write(data); err != nil {
		if closeErr := wc.Close(); closeErr != nil {
			a.logger.Warn("failed to close GCS writer after write failure", zap.Error(closeErr))
		}
		return fmt.Errorf("failed to write GCS object %s: %w", objectName, err)
	}
	// Close finalizes the upload and flushes buffered data.
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer for object %s: %w", objectName, err)
	}
	return nil
}

// Close releases the underlying client.
func (a *Archive) Close() error {
	return a.client.Close()
}
