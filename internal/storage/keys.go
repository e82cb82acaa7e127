package storage

import (
	"fmt"
	"path"
	"strings"
	"unicode"
)

const (
	PrefixDocumentRequests = "document-requests"
	PrefixApplications     = "applications"
	PrefixSpecialStatuses  = "special-statuses"
)

// ObjectKey is deterministic in (prefix, recordID, label) so that a retried
// upload for the same requirement overwrites the earlier object. The file
// extension follows the uploaded filename.
func ObjectKey(prefix string, recordID int32, label, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}
	return fmt.Sprintf("%s/%d/%s%s", prefix, recordID, Slug(label), ext)
}

// Slug lowercases label and collapses everything outside [a-z0-9] into '-'.
func Slug(label string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(label) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "file"
	}
	return s
}

// ValidKey rejects keys that could escape the storage root.
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}
