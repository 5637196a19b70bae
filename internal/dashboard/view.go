// internal/dashboard/view.go
package dashboard

import (
	"housing-portal/internal/common/logger"
	"housing-portal/internal/models"
)

// View is the single dashboard rendering chosen for a snapshot.
type View int

const (
	// ViewLoading means no snapshot has arrived yet.
	ViewLoading View = iota
	ViewNoApplication
	ViewApplicant
	ViewTenantActive
	ViewTenantFormer
)

func (v View) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewNoApplication:
		return "no_application"
	case ViewApplicant:
		return "applicant"
	case ViewTenantActive:
		return "tenant_active"
	case ViewTenantFormer:
		return "tenant_former"
	}
	return "unknown"
}

// SelectView picks exactly one view for a snapshot. The tenant branch wins
// only when the tenant record is actually present; an is_tenant flag without
// details falls through to the applicant checks.
func SelectView(snapshot *models.DashboardSnapshot) View {
	switch {
	case snapshot == nil:
		return ViewLoading
	case snapshot.IsTenant && snapshot.TenantDetails != nil:
		if snapshot.TenantDetails.IsActive {
			return ViewTenantActive
		}
		return ViewTenantFormer
	case snapshot.ApplicationDetails != nil:
		return ViewApplicant
	default:
		return ViewNoApplication
	}
}

// StatusPresentation is the display treatment of an application status.
type StatusPresentation struct {
	Label   string
	Tone    string
	Unknown bool
}

// PresentStatus maps an application status to its display treatment. A value
// the client does not recognize gets an explicit unknown treatment and a
// warning, never a silent default.
func PresentStatus(status models.ApplicationStatus, log logger.Logger) StatusPresentation {
	switch status {
	case models.StatusPending:
		return StatusPresentation{Label: "Pending", Tone: "yellow"}
	case models.StatusUnderReview:
		return StatusPresentation{Label: "Under Review", Tone: "blue"}
	case models.StatusWaitlisted:
		return StatusPresentation{Label: "Waitlisted", Tone: "purple"}
	case models.StatusProvisionallyApproved:
		return StatusPresentation{Label: "Provisionally Approved", Tone: "teal"}
	case models.StatusRequiresDocuments:
		return StatusPresentation{Label: "Documents Required", Tone: "orange"}
	case models.StatusApproved:
		return StatusPresentation{Label: "Approved", Tone: "green"}
	case models.StatusDeclined:
		return StatusPresentation{Label: "Declined", Tone: "red"}
	case models.StatusTenantCreated:
		return StatusPresentation{Label: "Tenant Created", Tone: "green"}
	case models.StatusCancelled:
		return StatusPresentation{Label: "Cancelled", Tone: "gray"}
	}

	if log != nil {
		log.Warn("unrecognized application status", map[string]interface{}{
			"status": string(status),
		})
	}
	return StatusPresentation{Label: "Unknown Status", Tone: "gray", Unknown: true}
}

// PresentPaymentStatus maps a payment status to its badge tone.
func PresentPaymentStatus(status models.PaymentStatus) string {
	switch status {
	case models.PaymentConfirmed:
		return "green"
	case models.PaymentFailed:
		return "red"
	case models.PaymentRefunded:
		return "blue"
	default:
		return "yellow"
	}
}

// BalanceSummary is the display treatment of a tenant's account balance.
// Ledger convention: positive owed by the tenant, negative owed to them.
type BalanceSummary struct {
	Label   string
	Amount  float64
	Settled bool
}

func SummarizeBalance(balance float64) BalanceSummary {
	switch {
	case balance < 0:
		return BalanceSummary{Label: "Balance Due To You", Amount: -balance}
	case balance == 0:
		return BalanceSummary{Label: "Account Settled", Amount: 0, Settled: true}
	default:
		return BalanceSummary{Label: "Outstanding Balance", Amount: balance}
	}
}

// CanCancel reports whether the application may still be withdrawn.
func CanCancel(app *models.Application) bool {
	return app != nil && app.Status == models.StatusPending
}

// NeedsProofOfPayment reports whether the admin-fee proof upload should be
// offered: provisionally approved with nothing on file yet.
func NeedsProofOfPayment(app *models.Application) bool {
	return app != nil && app.Status == models.StatusProvisionallyApproved && app.ProofOfDeposit == ""
}

// OutstandingDocuments lists required documents not yet uploaded.
func OutstandingDocuments(app *models.Application) []models.RequiredDocument {
	if app == nil || app.Status != models.StatusRequiresDocuments {
		return nil
	}
	var out []models.RequiredDocument
	for _, doc := range app.RequiredDocuments {
		if !doc.Uploaded {
			out = append(out, doc)
		}
	}
	return out
}

// CanUploadLease reports whether the signed-lease upload should be offered.
func CanUploadLease(tenant *models.Tenant) bool {
	return tenant != nil && tenant.IsActive && tenant.SignedLease == ""
}

// AssignedRoom returns the allocated room once the application has reached an
// approved state; earlier statuses never show an allocation.
func AssignedRoom(app *models.Application) (*models.AssignedRoom, bool) {
	if app == nil || app.FinalAssignedRoom == nil {
		return nil, false
	}
	switch app.Status {
	case models.StatusApproved, models.StatusTenantCreated:
		return app.FinalAssignedRoom, true
	}
	return nil, false
}
