// internal/dashboard/service_test.go
package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housing-portal/internal/api"
	errs "housing-portal/internal/common/errors"
	"housing-portal/internal/common/logger"
	"housing-portal/internal/models"
)

type fakeTokens struct{}

func (fakeTokens) AccessToken() string            { return "token" }
func (fakeTokens) RefreshToken() string           { return "refresh" }
func (fakeTokens) UpdateTokens(_, _ string) error { return nil }

func newService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := api.NewClient(api.Options{BaseURL: srv.URL, Tokens: fakeTokens{}})
	return NewService(client, logger.NewTestLogger(t))
}

func noRequests(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}
}

func attachment(name string) models.Attachment {
	return models.Attachment{Filename: name, ContentType: "application/pdf", Content: []byte("%PDF-1.4")}
}

func TestCancelRejectedForNonPendingApplication(t *testing.T) {
	svc := newService(t, noRequests(t))

	err := svc.CancelApplication(context.Background(), &models.Application{Status: models.StatusApproved})

	require.Error(t, err)
	assert.True(t, errs.HasCode(err, errs.ErrCodeValidationFailed))
}

func TestCancelPendingApplication(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/application/cancel/", r.URL.Path)
		w.Write([]byte(`{"detail": "Application cancelled."}`))
	})

	err := svc.CancelApplication(context.Background(), &models.Application{
		Status:          models.StatusPending,
		ReferenceNumber: "APP-3",
	})

	require.NoError(t, err)
}

func TestProofOfPaymentGuardedByStatus(t *testing.T) {
	svc := newService(t, noRequests(t))

	err := svc.UploadProofOfPayment(context.Background(),
		&models.Application{Status: models.StatusPending}, attachment("pop.pdf"))

	require.Error(t, err)
}

func TestLeaseUploadGuardedByExistingLease(t *testing.T) {
	svc := newService(t, noRequests(t))

	err := svc.UploadLease(context.Background(),
		&models.Tenant{IsActive: true, SignedLease: "uploads/lease.pdf"}, attachment("lease.pdf"))

	require.Error(t, err)
}

func TestRequiredDocumentNeedsNameAndFile(t *testing.T) {
	svc := newService(t, noRequests(t))

	err := svc.UploadRequiredDocument(context.Background(), "", attachment("doc.pdf"))
	require.Error(t, err)

	err = svc.UploadRequiredDocument(context.Background(), "Bank Statement", models.Attachment{})
	require.Error(t, err)
}

func TestMaintenanceFormValidation(t *testing.T) {
	svc := newService(t, noRequests(t))

	err := svc.CreateMaintenanceRequest(context.Background(), MaintenanceForm{
		Title:    "Broken geyser",
		Category: models.MaintenancePlumbing,
		Priority: models.PriorityHigh,
	})
	require.Error(t, err, "missing description must fail")

	err = svc.CreateMaintenanceRequest(context.Background(), MaintenanceForm{
		Title:       "Broken geyser",
		Description: "No hot water since Monday",
		Category:    models.MaintenanceCategory("GARDENING"),
		Priority:    models.PriorityHigh,
	})
	require.Error(t, err, "unknown category must fail")
}

func TestMaintenanceRequestSubmitted(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/maintenance-requests/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "PLUMBING", r.FormValue("category"))
		assert.Equal(t, "HIGH", r.FormValue("priority"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 12}`))
	})

	err := svc.CreateMaintenanceRequest(context.Background(), MaintenanceForm{
		Title:       "Broken geyser",
		Description: "No hot water since Monday",
		Category:    models.MaintenancePlumbing,
		Priority:    models.PriorityHigh,
	})

	require.NoError(t, err)
}

func TestFeedbackRequiresRating(t *testing.T) {
	svc := newService(t, noRequests(t))

	err := svc.SubmitFeedback(context.Background(), FeedbackForm{RequestID: 12})

	require.Error(t, err)
	se, ok := errs.AsStandard(err)
	require.True(t, ok)
	assert.Equal(t, "Please select a star rating.", se.Details)
}

func TestFeedbackRatingBounds(t *testing.T) {
	svc := newService(t, noRequests(t))

	err := svc.SubmitFeedback(context.Background(), FeedbackForm{RequestID: 12, Rating: 6})

	require.Error(t, err)
}
