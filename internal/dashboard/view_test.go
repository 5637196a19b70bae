// internal/dashboard/view_test.go
package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housing-portal/internal/common/logger"
	"housing-portal/internal/models"
)

func TestSelectViewPicksExactlyOne(t *testing.T) {
	tests := []struct {
		name     string
		snapshot *models.DashboardSnapshot
		want     View
	}{
		{"nil snapshot still loading", nil, ViewLoading},
		{"empty account", &models.DashboardSnapshot{}, ViewNoApplication},
		{
			"active tenant",
			&models.DashboardSnapshot{IsTenant: true, TenantDetails: &models.Tenant{IsActive: true}},
			ViewTenantActive,
		},
		{
			"former tenant",
			&models.DashboardSnapshot{IsTenant: true, TenantDetails: &models.Tenant{IsActive: false}},
			ViewTenantFormer,
		},
		{
			"tenant flag without record falls through to applicant",
			&models.DashboardSnapshot{IsTenant: true, ApplicationDetails: &models.Application{Status: models.StatusApproved}},
			ViewApplicant,
		},
		{
			"applicant",
			&models.DashboardSnapshot{ApplicationDetails: &models.Application{Status: models.StatusPending}},
			ViewApplicant,
		},
		{
			"tenant flag with neither record",
			&models.DashboardSnapshot{IsTenant: true},
			ViewNoApplication,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectView(tt.snapshot))
		})
	}
}

func TestPresentStatusCoversEveryKnownStatus(t *testing.T) {
	labels := map[models.ApplicationStatus]string{
		models.StatusPending:               "Pending",
		models.StatusUnderReview:           "Under Review",
		models.StatusWaitlisted:            "Waitlisted",
		models.StatusProvisionallyApproved: "Provisionally Approved",
		models.StatusRequiresDocuments:     "Documents Required",
		models.StatusApproved:              "Approved",
		models.StatusDeclined:              "Declined",
		models.StatusTenantCreated:         "Tenant Created",
		models.StatusCancelled:             "Cancelled",
	}

	for status, label := range labels {
		pres := PresentStatus(status, logger.NewNoOpLogger())
		assert.Equal(t, label, pres.Label)
		assert.False(t, pres.Unknown, "status %s should be recognized", status)
	}
}

func TestPresentStatusFlagsUnknownValues(t *testing.T) {
	pres := PresentStatus(models.ApplicationStatus("SOMETHING_NEW"), logger.NewTestLogger(t))

	assert.True(t, pres.Unknown)
	assert.Equal(t, "Unknown Status", pres.Label)
	assert.Equal(t, "gray", pres.Tone)
}

func TestSummarizeBalance(t *testing.T) {
	due := SummarizeBalance(1250.50)
	assert.Equal(t, "Outstanding Balance", due.Label)
	assert.Equal(t, 1250.50, due.Amount)
	assert.False(t, due.Settled)

	credit := SummarizeBalance(-300)
	assert.Equal(t, "Balance Due To You", credit.Label)
	assert.Equal(t, 300.0, credit.Amount)

	settled := SummarizeBalance(0)
	assert.Equal(t, "Account Settled", settled.Label)
	assert.True(t, settled.Settled)
}

func TestCanCancelOnlyWhilePending(t *testing.T) {
	assert.True(t, CanCancel(&models.Application{Status: models.StatusPending}))
	assert.False(t, CanCancel(&models.Application{Status: models.StatusUnderReview}))
	assert.False(t, CanCancel(&models.Application{Status: models.StatusApproved}))
	assert.False(t, CanCancel(nil))
}

func TestNeedsProofOfPayment(t *testing.T) {
	assert.True(t, NeedsProofOfPayment(&models.Application{Status: models.StatusProvisionallyApproved}))
	assert.False(t, NeedsProofOfPayment(&models.Application{
		Status:         models.StatusProvisionallyApproved,
		ProofOfDeposit: "uploads/pop.pdf",
	}))
	assert.False(t, NeedsProofOfPayment(&models.Application{Status: models.StatusPending}))
	assert.False(t, NeedsProofOfPayment(nil))
}

func TestOutstandingDocuments(t *testing.T) {
	app := &models.Application{
		Status: models.StatusRequiresDocuments,
		RequiredDocuments: []models.RequiredDocument{
			{Name: "Bank Statement", Uploaded: true},
			{Name: "Affidavit", Uploaded: false},
			{Name: "Proof of Income", Uploaded: false},
		},
	}

	docs := OutstandingDocuments(app)

	assert.Len(t, docs, 2)
	assert.Equal(t, "Affidavit", docs[0].Name)

	app.Status = models.StatusPending
	assert.Nil(t, OutstandingDocuments(app))
	assert.Nil(t, OutstandingDocuments(nil))
}

func TestCanUploadLease(t *testing.T) {
	assert.True(t, CanUploadLease(&models.Tenant{IsActive: true}))
	assert.False(t, CanUploadLease(&models.Tenant{IsActive: true, SignedLease: "uploads/lease.pdf"}))
	assert.False(t, CanUploadLease(&models.Tenant{IsActive: false}))
	assert.False(t, CanUploadLease(nil))
}

func TestAssignedRoomOnlyForApprovedStatuses(t *testing.T) {
	allocation := &models.AssignedRoom{RoomNumber: "B12", RoomType: "Single Ensuite"}

	room, ok := AssignedRoom(&models.Application{Status: models.StatusApproved, FinalAssignedRoom: allocation})
	require.True(t, ok)
	assert.Equal(t, "B12", room.RoomNumber)

	_, ok = AssignedRoom(&models.Application{Status: models.StatusTenantCreated, FinalAssignedRoom: allocation})
	assert.True(t, ok)

	_, ok = AssignedRoom(&models.Application{Status: models.StatusPending, FinalAssignedRoom: allocation})
	assert.False(t, ok)

	_, ok = AssignedRoom(&models.Application{Status: models.StatusApproved})
	assert.False(t, ok)

	_, ok = AssignedRoom(nil)
	assert.False(t, ok)
}
