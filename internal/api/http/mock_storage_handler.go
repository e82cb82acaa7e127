package http

import (
	"io"
	"net/http"
	"path/filepath"
	"slices"

	"munlink-backend/internal/logger"
	"munlink-backend/internal/storage"

	"github.com/gorilla/mux"
)

// MockStorageHandler serves the presigned URLs of the local storage backend
type MockStorageHandler struct {
	mockStorage  *storage.MockStorageService
	allowedTypes []string
	maxBytes     int64
}

// NewMockStorageHandler creates a new upload handler
func NewMockStorageHandler(mockStorage *storage.MockStorageService, allowedTypes []string, maxBytes int64) *MockStorageHandler {
	return &MockStorageHandler{
		mockStorage:  mockStorage,
		allowedTypes: allowedTypes,
		maxBytes:     maxBytes,
	}
}

// HandleMockUpload handles HTTP PUT requests to mock presigned URLs
func (h *MockStorageHandler) HandleMockUpload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" || !storage.ValidKey(key) {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if !slices.Contains(h.allowedTypes, contentType) {
		http.Error(w, "Invalid content type", http.StatusBadRequest)
		return
	}

	body := io.Reader(r.Body)
	if h.maxBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}
	if err := h.mockStorage.SaveFile(key, body); err != nil {
		logger.WarnContext(r.Context(), "Mock upload failed", "key", key, "error", err)
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	// Mimic the S3 response
	w.Header().Set("ETag", `"mock-etag-success"`)
	w.WriteHeader(http.StatusOK)
}

// HandleMockDownload handles HTTP GET requests to download stored files
func (h *MockStorageHandler) HandleMockDownload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}

	file, err := h.mockStorage.ReadFile(key)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".pdf":
		contentType = "application/pdf"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=300")
	if _, err := io.Copy(w, file); err != nil {
		logger.WarnContext(r.Context(), "Mock download interrupted", "key", key, "error", err)
	}
}

// registerMockStorageRoutes registers the mock storage HTTP endpoints
func registerMockStorageRoutes(router *mux.Router, h *MockStorageHandler) {
	router.HandleFunc("/api/v1/upload/{token}", h.HandleMockUpload).Methods(http.MethodPut).Name("MockUpload")
	router.HandleFunc("/api/v1/download/{key}", h.HandleMockDownload).Methods(http.MethodGet).Name("MockDownload")
}
