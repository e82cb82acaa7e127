package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Violation is one unmet submission rule, addressed to a form field.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError is a local, recoverable refusal: the record was not created.
type ValidationError struct {
	Violations []Violation
}

func NewValidationError(field, rule, message string) *ValidationError {
	return &ValidationError{Violations: []Violation{{Field: field, Rule: rule, Message: message}}}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// HasRule reports whether a violation with the given rule is present.
func (e *ValidationError) HasRule(rule string) bool {
	for _, v := range e.Violations {
		if v.Rule == rule {
			return true
		}
	}
	return false
}

// EligibilityError carries the failed eligibility messages of an applicant.
type EligibilityError struct {
	Reasons []string
}

func (e *EligibilityError) Error() string {
	return "not eligible: " + strings.Join(e.Reasons, "; ")
}

// UploadError means the record exists but its files did not all reach
// storage. RetryPath addresses the idempotent upload endpoint.
type UploadError struct {
	RecordID     int32
	RecordNumber string
	RetryPath    string
	Err          error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("record %s created but document upload failed: %v", e.RecordNumber, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// DefaultSubmissionMessage is shown when the server gave no usable reason.
const DefaultSubmissionMessage = "We could not submit your request. Please review your details and try again."

// SubmissionError means the create call itself was refused.
type SubmissionError struct {
	Message string
	Err     error
}

func NewSubmissionError(message string, err error) *SubmissionError {
	if strings.TrimSpace(message) == "" {
		message = DefaultSubmissionMessage
	}
	return &SubmissionError{Message: message, Err: err}
}

func (e *SubmissionError) Error() string {
	return e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
