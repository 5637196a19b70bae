// internal/api/errors_test.go
package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "housing-portal/internal/common/errors"
)

func TestErrorFromResponseTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode errs.ErrorCode
	}{
		{"unauthorized", http.StatusUnauthorized, `{"detail": "Token expired"}`, errs.ErrCodeAuthenticationFailed},
		{"forbidden", http.StatusForbidden, `{"detail": "Not allowed"}`, errs.ErrCodeAuthenticationFailed},
		{"server error", http.StatusInternalServerError, ``, errs.ErrCodeServiceUnavailable},
		{"bad gateway", http.StatusBadGateway, `<html>`, errs.ErrCodeServiceUnavailable},
		{"field errors", http.StatusBadRequest, `{"email": ["Invalid email."]}`, errs.ErrCodeSubmissionRejected},
		{"plain rejection", http.StatusBadRequest, `{"detail": "Already applied"}`, errs.ErrCodeRequestRejected},
		{"unreadable body", http.StatusBadRequest, `not json`, errs.ErrCodeRequestRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errorFromResponse(tt.status, []byte(tt.body))
			assert.True(t, errs.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestServerErrorsAreRetryable(t *testing.T) {
	err := errorFromResponse(http.StatusServiceUnavailable, nil)
	assert.True(t, errs.IsRetryable(err))

	err = errorFromResponse(http.StatusBadRequest, []byte(`{"detail": "no"}`))
	assert.False(t, errs.IsRetryable(err))
}

func TestFieldErrorsTakeFirstArrayElement(t *testing.T) {
	err := errorFromResponse(http.StatusBadRequest, []byte(`{
		"email": ["Enter a valid email address.", "This field is duplicated."],
		"phone_number": "Too short.",
		"detail": "ignored",
		"non_field_errors": ["ignored too"]
	}`))

	fields := errs.FieldErrorsOf(err)
	require.NotNil(t, fields)
	assert.Equal(t, "Enter a valid email address.", fields["email"])
	assert.Equal(t, "Too short.", fields["phone_number"])
	assert.NotContains(t, fields, "detail")
	assert.NotContains(t, fields, "non_field_errors")
}

func TestSubmissionRejectionFallbackMessage(t *testing.T) {
	err := errorFromResponse(http.StatusBadRequest, []byte(`{"email": ["Invalid."]}`))

	se, ok := errs.AsStandard(err)
	require.True(t, ok)
	assert.Equal(t, "Please correct the highlighted fields.", se.Message)
}

func TestFirstMessagePrefersNonFieldErrors(t *testing.T) {
	p := decodeErrorPayload([]byte(`{
		"detail": "general detail",
		"non_field_errors": ["credentials wrong"]
	}`))

	assert.Equal(t, "credentials wrong", p.firstMessage())
}

func TestFirstMessageFallsBackToDetail(t *testing.T) {
	p := decodeErrorPayload([]byte(`{"detail": "general detail"}`))

	assert.Equal(t, "general detail", p.firstMessage())
}
