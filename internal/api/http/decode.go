package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"munlink-backend/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

const (
	maxJSONBytes = 1 << 20
	maxFiles     = 10
)

// badRequestError is a malformed request the client must fix before any
// validation can run.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags of a request DTO and reports failures
// in the domain violation format.
func validateStruct(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return badRequest("invalid request: %v", err)
	}
	out := &domain.ValidationError{}
	for _, fe := range verrs {
		out.Violations = append(out.Violations, domain.Violation{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: violationMessage(fe),
		})
	}
	return out
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	return validateStruct(dst)
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// UploadLimits bounds every file received in a multipart request.
type UploadLimits struct {
	MaxBytes     int64
	AllowedTypes []string
}

// decodeSubmission reads either a JSON body or a multipart form carrying a
// JSON "payload" field plus "files". Each file's requirement label comes
// from the "labels" field at the same position, or from the file name.
func decodeSubmission(w http.ResponseWriter, r *http.Request, dst any, limits UploadLimits) ([]domain.FileUpload, error) {
	if !isMultipart(r) {
		return nil, decodeJSON(w, r, dst)
	}
	files, form, err := readMultipart(w, r, limits)
	if err != nil {
		return nil, err
	}
	payload := form.Value["payload"]
	if len(payload) == 0 {
		return nil, badRequest("multipart request is missing the payload field")
	}
	dec := json.NewDecoder(strings.NewReader(payload[0]))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return nil, badRequest("invalid payload: %v", err)
	}
	if err := validateStruct(dst); err != nil {
		return nil, err
	}
	return files, nil
}

// decodeFiles reads a multipart upload with no payload, used by the retry
// endpoints.
func decodeFiles(w http.ResponseWriter, r *http.Request, limits UploadLimits) ([]domain.FileUpload, error) {
	if !isMultipart(r) {
		return nil, badRequest("expected multipart/form-data")
	}
	files, _, err := readMultipart(w, r, limits)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, domain.NewValidationError("files", "required", "At least one file is required")
	}
	return files, nil
}

func readMultipart(w http.ResponseWriter, r *http.Request, limits UploadLimits) ([]domain.FileUpload, *multipart.Form, error) {
	if limits.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limits.MaxBytes*maxFiles+maxJSONBytes)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, nil, badRequest("invalid multipart body: %v", err)
	}
	form := r.MultipartForm
	headers := form.File["files"]
	if len(headers) > maxFiles {
		return nil, nil, domain.NewValidationError("files", "max", fmt.Sprintf("At most %d files may be uploaded at once", maxFiles))
	}
	labels := form.Value["labels"]

	var violations []domain.Violation
	files := make([]domain.FileUpload, 0, len(headers))
	for i, fh := range headers {
		contentType := fh.Header.Get("Content-Type")
		if limits.MaxBytes > 0 && fh.Size > limits.MaxBytes {
			violations = append(violations, domain.Violation{
				Field:   "files",
				Rule:    "too_large",
				Message: fmt.Sprintf("%s is larger than %d MB", fh.Filename, limits.MaxBytes>>20),
			})
			continue
		}
		if len(limits.AllowedTypes) > 0 && !slices.Contains(limits.AllowedTypes, contentType) {
			violations = append(violations, domain.Violation{
				Field:   "files",
				Rule:    "unsupported_type",
				Message: fmt.Sprintf("%s has unsupported type %q", fh.Filename, contentType),
			})
			continue
		}
		content, err := readPart(fh)
		if err != nil {
			return nil, nil, badRequest("could not read %s: %v", fh.Filename, err)
		}
		f := domain.FileUpload{
			Filename:    fh.Filename,
			ContentType: contentType,
			Size:        fh.Size,
			Content:     content,
		}
		if i < len(labels) {
			f.Label = strings.TrimSpace(labels[i])
		}
		files = append(files, f)
	}
	if len(violations) > 0 {
		return nil, nil, &domain.ValidationError{Violations: violations}
	}
	return files, form, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func pathID(r *http.Request, name string) (int32, error) {
	v, err := strconv.ParseInt(mux.Vars(r)[name], 10, 32)
	if err != nil || v <= 0 {
		return 0, badRequest("invalid %s", name)
	}
	return int32(v), nil
}

// queryID reads an optional positive id from the query string.
func queryID(r *http.Request, name string) (*int32, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v <= 0 {
		return nil, badRequest("invalid %s", name)
	}
	id := int32(v)
	return &id, nil
}
