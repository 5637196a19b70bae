// internal/models/attachment.go
package models

// Attachment is an in-memory file selected for upload.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// IsZero reports whether no file has been selected.
func (a Attachment) IsZero() bool {
	return a.Filename == "" && len(a.Content) == 0
}
