// Package errors provides standardized error handling for the portal client.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"
	ErrCodeSessionExpired       ErrorCode = "SESSION_EXPIRED"
	ErrCodeSessionCorrupt       ErrorCode = "SESSION_CORRUPT"
	ErrCodeSessionWriteFailed   ErrorCode = "SESSION_WRITE_FAILED"

	ErrCodeRequestRejected    ErrorCode = "REQUEST_REJECTED"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeResponseMalformed  ErrorCode = "RESPONSE_MALFORMED"

	ErrCodeFileUploadFailed   ErrorCode = "FILE_UPLOAD_FAILED"
	ErrCodeDownloadFailed     ErrorCode = "DOWNLOAD_FAILED"
	ErrCodeSubmissionRejected ErrorCode = "SUBMISSION_REJECTED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// FieldErrors maps form field names to a single human-readable message each,
// as returned by the backend on rejected submissions.
type FieldErrors map[string]string

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError creates a non-retryable client-side validation error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthenticationError creates a non-retryable credential error.
func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthenticationFailed,
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionExpiredError marks a session that could not be refreshed.
func NewSessionExpiredError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionExpired,
		Message:   "Session has expired, please sign in again",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionCorruptError marks a persisted session record that failed integrity checks.
func NewSessionCorruptError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionCorrupt,
		Message:   "Stored session is unreadable and was discarded",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionWriteFailedError creates a retryable session persistence error.
func NewSessionWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionWriteFailed,
		Message:   "Failed to persist session",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestRejectedError carries a server-provided message for a 4xx response.
func NewRequestRejectedError(message, details string) *StandardError {
	if message == "" {
		message = "The server rejected the request"
	}
	return &StandardError{
		Code:      ErrCodeRequestRejected,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewServiceUnavailableError creates a retryable transport or 5xx error.
func NewServiceUnavailableError(err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeServiceUnavailable,
		Message:   "Could not connect to the server to fetch your data.",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewResponseMalformedError marks a response body that could not be decoded.
func NewResponseMalformedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResponseMalformed,
		Message:   "Unexpected response from the server",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFileUploadFailedError creates an upload error; retryable when transient.
func NewFileUploadFailedError(details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      ErrCodeFileUploadFailed,
		Message:   "File upload failed",
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewDownloadFailedError creates a retryable statement download error.
func NewDownloadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDownloadFailed,
		Message:   "Failed to generate statement. Please try again later.",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionRejectedError carries field-level errors from a rejected form submission.
func NewSubmissionRejectedError(message string, fields FieldErrors) *StandardError {
	if message == "" {
		message = "Please correct the highlighted fields."
	}
	meta := map[string]interface{}{}
	if len(fields) > 0 {
		meta["fields"] = fields
	}
	return &StandardError{
		Code:      ErrCodeSubmissionRejected,
		Message:   message,
		Retryable: false,
		Metadata:  meta,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Helpers
// ==========================

// AsStandard unwraps err into a *StandardError when possible.
func AsStandard(err error) (*StandardError, bool) {
	var se *StandardError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// HasCode reports whether err is a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	se, ok := AsStandard(err)
	return ok && se.Code == code
}

// FieldErrorsOf extracts field-level errors attached to a submission rejection.
func FieldErrorsOf(err error) FieldErrors {
	se, ok := AsStandard(err)
	if !ok || se.Metadata == nil {
		return nil
	}
	if fe, ok := se.Metadata["fields"].(FieldErrors); ok {
		return fe
	}
	return nil
}

// IsRetryable reports whether err represents a transient condition.
func IsRetryable(err error) bool {
	se, ok := AsStandard(err)
	return ok && se.Retryable
}
