package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/logger"
)

type errorBody struct {
	Error            string             `json:"error"`
	ErrorDescription string             `json:"error_description,omitempty"`
	Violations       []domain.Violation `json:"violations,omitempty"`
	Reasons          []string           `json:"reasons,omitempty"`
	RetryPath        string             `json:"retry_path,omitempty"`
}

// uploadErrorBody is attached to a created record whose files did not all
// reach storage.
type uploadErrorBody struct {
	Message   string `json:"message"`
	RetryPath string `json:"retry_path"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, errorBody{Error: code, ErrorDescription: description})
}

// writeServiceError maps the domain error taxonomy onto HTTP statuses.
// Internal errors are logged and never described to the caller.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *domain.ValidationError
		eerr *domain.EligibilityError
		uerr *domain.UploadError
		serr *domain.SubmissionError
		berr *badRequestError
	)
	switch {
	case errors.As(err, &berr):
		writeJSONError(w, http.StatusBadRequest, "bad_request", berr.msg)
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:            "validation_failed",
			ErrorDescription: verr.Error(),
			Violations:       verr.Violations,
		})
	case errors.As(err, &eerr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:            "not_eligible",
			ErrorDescription: "You do not meet the eligibility criteria of this program",
			Reasons:          eerr.Reasons,
		})
	case errors.As(err, &uerr):
		logger.WarnContext(r.Context(), "Document upload failed", "recordID", uerr.RecordID, "error", uerr.Err)
		writeJSON(w, http.StatusBadGateway, errorBody{
			Error:            "upload_failed",
			ErrorDescription: "Some files could not be stored. Please try again.",
			RetryPath:        uerr.RetryPath,
		})
	case errors.As(err, &serr):
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrConflict) {
			status = http.StatusConflict
		}
		writeJSONError(w, status, "submission_failed", serr.Message)
	case errors.Is(err, domain.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", "Resource not found")
	case errors.Is(err, domain.ErrForbidden):
		writeJSONError(w, http.StatusForbidden, "forbidden", "You are not allowed to perform this action")
	case errors.Is(err, domain.ErrInvalidTransition):
		writeJSONError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeJSONError(w, http.StatusConflict, "conflict", "The record already exists")
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
	default:
		logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

// splitUploadError separates a post-create upload failure from a refused
// submission. A failed upload still answers 201 because the record exists;
// the client retries the files only.
func splitUploadError(r *http.Request, err error) (*uploadErrorBody, error) {
	if err == nil {
		return nil, nil
	}
	var uerr *domain.UploadError
	if !errors.As(err, &uerr) {
		return nil, err
	}
	logger.WarnContext(r.Context(), "Record created but upload failed", "recordID", uerr.RecordID, "error", uerr.Err)
	return &uploadErrorBody{
		Message:   "Your submission was saved but some files could not be uploaded. Please retry the upload.",
		RetryPath: uerr.RetryPath,
	}, nil
}
