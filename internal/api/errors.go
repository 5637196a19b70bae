// internal/api/errors.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	errs "housing-portal/internal/common/errors"
)

// errorPayload decodes the loosely-shaped error bodies the backend returns:
// {"detail": "..."} on rejections, {"non_field_errors": ["..."]} on bad
// credentials, and {"field": ["msg"]} maps on invalid submissions.
type errorPayload map[string]interface{}

func decodeErrorPayload(body []byte) errorPayload {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}
	return payload
}

func (p errorPayload) detail() string {
	if p == nil {
		return ""
	}
	if d, ok := p["detail"].(string); ok {
		return d
	}
	return ""
}

// firstMessage returns the first human-readable message in the payload,
// preferring non_field_errors. Used where a single banner message is shown.
func (p errorPayload) firstMessage() string {
	if p == nil {
		return ""
	}
	if msg := stringAt(p["non_field_errors"]); msg != "" {
		return msg
	}
	if d := p.detail(); d != "" {
		return d
	}
	for _, v := range p {
		if msg := stringAt(v); msg != "" {
			return msg
		}
	}
	return ""
}

// fieldErrors maps field names to their first message, skipping detail and
// non_field_errors entries.
func (p errorPayload) fieldErrors() errs.FieldErrors {
	if p == nil {
		return nil
	}
	fields := errs.FieldErrors{}
	for key, v := range p {
		if key == "detail" || key == "non_field_errors" {
			continue
		}
		if msg := stringAt(v); msg != "" {
			fields[key] = msg
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// stringAt extracts a message from either a string or a []string-shaped value.
func stringAt(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []interface{}:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// errorFromResponse converts a non-success response into a StandardError per
// the client's error taxonomy.
func errorFromResponse(status int, body []byte) error {
	payload := decodeErrorPayload(body)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		detail := payload.detail()
		if detail == "" {
			detail = fmt.Sprintf("status %d", status)
		}
		return errs.NewAuthenticationError(detail)
	case status >= 500:
		return errs.NewServiceUnavailableError(fmt.Errorf("server returned %d", status))
	default:
		if fields := payload.fieldErrors(); fields != nil {
			return errs.NewSubmissionRejectedError(payload.detail(), fields)
		}
		return errs.NewRequestRejectedError(payload.firstMessage(), fmt.Sprintf("status %d", status))
	}
}
