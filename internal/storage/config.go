package storage

import (
	"context"
	"fmt"
)

// Config holds storage configuration
type Config struct {
	Type     string // "mock" or "s3"
	MockDir  string // Directory for mock storage
	BaseURL  string // Server base URL for generating mock URLs
	Bucket   string
	Region   string
	Endpoint string
}

// New builds the configured backend. The mock service is also returned so
// the HTTP layer can mount its upload and download routes; it is nil for S3.
func New(ctx context.Context, cfg Config) (StorageInterface, *MockStorageService, error) {
	switch cfg.Type {
	case "", "mock":
		mock, err := NewMockStorageService(cfg.BaseURL, cfg.MockDir)
		if err != nil {
			return nil, nil, err
		}
		return mock, mock, nil
	case "s3":
		s, err := NewS3Storage(ctx, cfg.Bucket, cfg.Region, cfg.Endpoint)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
