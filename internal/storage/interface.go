package storage

import (
	"context"
	"time"
)

// StorageInterface defines the interface for requirement-file backends.
// Supports both mock (local filesystem) and S3.
type StorageInterface interface {
	// PutObject stores data under key, replacing any existing object.
	// Repeating a put with the same key is how upload retries stay idempotent.
	PutObject(ctx context.Context, key string, contentType string, data []byte) error

	// GeneratePresignedUploadURL generates a presigned URL for uploading
	GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error)

	// GeneratePresignedDownloadURL generates a presigned URL for downloading
	GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// FileExists checks if a file exists and returns its size
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	// DeleteFile removes a file from storage
	DeleteFile(ctx context.Context, key string) error
}
