// internal/api/download.go
package api

import (
	"fmt"
	"mime"
	"strings"
	"time"
)

// Statement is a downloaded account statement.
type Statement struct {
	Filename string
	Data     []byte
}

// filenameFromDisposition extracts the filename from a Content-Disposition
// header. Returns "" when the header is absent or unparseable so callers can
// fall back to a generated name.
func filenameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := params["filename"]
	// Reject path components smuggled into the header.
	if strings.ContainsAny(name, "/\\") {
		return ""
	}
	return name
}

// fallbackStatementName builds the substitute filename used when the server
// does not name the download.
func fallbackStatementName(lastName string, now time.Time) string {
	lastName = strings.TrimSpace(lastName)
	if lastName == "" {
		return "statement.pdf"
	}
	return fmt.Sprintf("statement_%s_%s.pdf", lastName, now.Format("2006-01-02"))
}
