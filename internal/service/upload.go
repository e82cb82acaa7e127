package service

import (
	"context"
	"fmt"
	"path"
	"strings"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/logger"
	"munlink-backend/internal/storage"

	"golang.org/x/sync/errgroup"
)

const maxParallelUploads = 4

// storedFile is one file that reached storage.
type storedFile struct {
	Label string
	Key   string
}

// uploadFiles writes files under deterministic keys for recordID. Files that
// were stored are returned even when another file failed, so the caller can
// keep partial progress.
func uploadFiles(ctx context.Context, store storage.StorageInterface, prefix string, recordID int32, files []domain.FileUpload) ([]storedFile, error) {
	results := make([]*storedFile, len(files))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxParallelUploads)
	for i, f := range files {
		i, f := i, f
		eg.Go(func() error {
			label := fileLabel(f)
			key := storage.ObjectKey(prefix, recordID, label, f.Filename)
			if err := store.PutObject(egCtx, key, f.ContentType, f.Content); err != nil {
				return fmt.Errorf("upload %q: %w", f.Filename, err)
			}
			results[i] = &storedFile{Label: label, Key: key}
			return nil
		})
	}
	err := eg.Wait()

	stored := make([]storedFile, 0, len(files))
	for _, r := range results {
		if r != nil {
			stored = append(stored, *r)
		}
	}
	if err != nil {
		logger.WarnContext(ctx, "File upload failed", "prefix", prefix, "recordID", recordID,
			"stored", len(stored), "total", len(files), "error", err)
		return stored, err
	}
	return stored, nil
}

// fileLabel falls back to the filename without extension when the client
// did not name the requirement.
func fileLabel(f domain.FileUpload) string {
	if l := strings.TrimSpace(f.Label); l != "" {
		return l
	}
	return strings.TrimSuffix(f.Filename, path.Ext(f.Filename))
}

func countLabels(files []domain.FileUpload, extra []string) map[string]int {
	counts := make(map[string]int, len(files)+len(extra))
	for _, f := range files {
		counts[fileLabel(f)]++
	}
	for _, l := range extra {
		if l = strings.TrimSpace(l); l != "" {
			counts[l]++
		}
	}
	return counts
}
