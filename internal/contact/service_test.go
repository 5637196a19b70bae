// internal/contact/service_test.go
package contact

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housing-portal/internal/api"
	errs "housing-portal/internal/common/errors"
	"housing-portal/internal/common/logger"
)

type fakeTokens struct{}

func (fakeTokens) AccessToken() string            { return "" }
func (fakeTokens) RefreshToken() string           { return "" }
func (fakeTokens) UpdateTokens(_, _ string) error { return nil }

func newService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := api.NewClient(api.Options{BaseURL: srv.URL, Tokens: fakeTokens{}})
	return NewService(client, logger.NewTestLogger(t))
}

func validForm() Form {
	return Form{
		FullName: "Thabo Mokoena",
		Email:    "thabo@example.com",
		Subject:  "Viewing request",
		Message:  "Could I arrange a viewing for next week?",
	}
}

func TestSendDeliversCamelCasePayload(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/contact/", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Thabo Mokoena", payload["fullName"])
		assert.Equal(t, "Viewing request", payload["subject"])
		w.Write([]byte(`{"detail": "Message received"}`))
	})

	require.NoError(t, svc.Send(context.Background(), validForm()))
}

func TestSendValidatesForm(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	})

	cases := map[string]Form{
		"missing name":  {Email: "a@b.com", Subject: "s", Message: "m"},
		"missing email": {FullName: "n", Subject: "s", Message: "m"},
		"bad email":     {FullName: "n", Email: "nope", Subject: "s", Message: "m"},
		"missing body":  {FullName: "n", Email: "a@b.com", Subject: "s"},
	}

	for name, form := range cases {
		t.Run(name, func(t *testing.T) {
			err := svc.Send(context.Background(), form)
			require.Error(t, err)
			se, ok := errs.AsStandard(err)
			require.True(t, ok)
			assert.Equal(t, "All fields are required and the email must be valid.", se.Details)
		})
	}
}

func TestSendAcceptsCreatedStatus(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	})

	require.NoError(t, svc.Send(context.Background(), validForm()))
}

func TestSendPropagatesServerFailure(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := svc.Send(context.Background(), validForm())

	require.Error(t, err)
	assert.True(t, errs.IsRetryable(err))
}
