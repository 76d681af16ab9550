package validation

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/username/tallytrace/backend/src/logger"
)

// Client-declared MIME types accepted for a transaction CSV upload.
// Browsers and exporting apps disagree wildly on what a CSV is, so the
// list is generous on text types while spreadsheet container formats
// stay rejected.
var allowedClientContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true, // legacy Excel label many banks still send for CSV
	"text/plain":               true,
	"application/octet-stream": true, // generic fallback; the magic-byte check and parser gate it
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": false, // real .xlsx, not CSV
}

// ValidateClientContentType checks the Content-Type the client declared for
// an uploaded file. This is the cheap first gate; the declared type is
// attacker-controlled, so ValidateFileContentByMagicBytes still runs after.
func ValidateClientContentType(contentType string) error {
	if allowed, exists := allowedClientContentTypes[strings.ToLower(contentType)]; !exists || !allowed {
		logger.L.Warn("Disallowed client-declared Content-Type on import", "contentType", contentType)
		return fmt.Errorf("client-declared file type '%s' is not allowed for CSV import", contentType)
	}
	return nil
}

// ValidateFileContentByMagicBytes sniffs the first 512 bytes of the upload
// and rejects anything that does not look like text. The reader is seeked
// back to the start so the CSV parser sees the whole file afterwards.
// Returns the detected content type alongside any error.
func ValidateFileContentByMagicBytes(file io.ReadSeeker) (string, error) {
	if file == nil {
		return "", fmt.Errorf("file is nil")
	}

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file for content type checking: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to reset file read pointer: %w", err)
	}

	detected := strings.ToLower(strings.Split(http.DetectContentType(buffer[:n]), ";")[0])

	// DetectContentType never says "text/csv"; a well-formed CSV sniffs as
	// text/plain. octet-stream passes here because the row parser rejects
	// non-CSV content anyway.
	switch detected {
	case "text/plain", "text/csv", "application/csv", "application/octet-stream":
		logger.L.Debug("Import file content sniff passed", "detectedContentType", detected)
		return detected, nil
	}
	logger.L.Warn("Import rejected by content sniff", "detectedContentType", detected)
	return detected, fmt.Errorf("detected file content type '%s' is not consistent with a CSV file", detected)
}
