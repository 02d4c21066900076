package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"cloud.google.com/go/storage"
)

// GCSStorage implements ObjectStorage on a Google Cloud Storage bucket.
type GCSStorage struct {
	client *storage.Client
	bucket string
	logger *log.Logger
}

// NewGCSStorage creates a client for the given bucket using ambient
// application-default credentials.
func NewGCSStorage(ctx context.Context, bucket string, logger *log.Logger) (*GCSStorage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStorage{
		client: client,
		bucket: bucket,
		logger: logger,
	}, nil
}

// Upload copies the local file into the bucket under objectName and returns
// the public object URL.
func (s *GCSStorage) Upload(ctx context.Context, localPath, objectName string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	writer := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(writer, f); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("failed to write object %s: %w", objectName, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", objectName, err)
	}

	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectName)
	s.logger.Printf("Mirrored %s to %s", localPath, url)
	return url, nil
}

// Close releases the underlying client.
func (s *GCSStorage) Close() error {
	return s.client.Close()
}
