// internal/dashboard/service.go
package dashboard

import (
	"context"

	"github.com/go-playground/validator/v10"

	"housing-portal/internal/api"
	errs "housing-portal/internal/common/errors"
	"housing-portal/internal/common/logger"
	"housing-portal/internal/models"
)

// Service performs the dashboard's applicant and tenant actions against the
// backend.
type Service struct {
	client   *api.Client
	logger   logger.Logger
	validate *validator.Validate
}

func NewService(client *api.Client, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		client:   client,
		logger:   log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// CancelApplication withdraws a pending application. Any other status is
// rejected client-side before the call.
func (s *Service) CancelApplication(ctx context.Context, app *models.Application) error {
	if !CanCancel(app) {
		return errs.NewValidationError("only pending applications can be cancelled")
	}
	if err := s.client.CancelApplication(ctx); err != nil {
		return err
	}
	s.logger.Info("application cancelled", map[string]interface{}{
		"reference": app.ReferenceNumber,
	})
	return nil
}

// UploadRequiredDocument sends one outstanding document by its requested name.
func (s *Service) UploadRequiredDocument(ctx context.Context, documentName string, file models.Attachment) error {
	if documentName == "" {
		return errs.NewValidationError("document name is required")
	}
	if file.IsZero() {
		return errs.NewValidationError("please choose a file to upload")
	}
	return s.client.UploadApplicationDocument(ctx, documentName, file)
}

// UploadProofOfPayment attaches the admin-fee proof to a provisionally
// approved application.
func (s *Service) UploadProofOfPayment(ctx context.Context, app *models.Application, file models.Attachment) error {
	if !NeedsProofOfPayment(app) {
		return errs.NewValidationError("proof of payment is not expected for this application")
	}
	if file.IsZero() {
		return errs.NewValidationError("please choose a file to upload")
	}
	return s.client.UploadProofOfPayment(ctx, file)
}

// UploadLease attaches the signed lease to an active tenancy.
func (s *Service) UploadLease(ctx context.Context, tenant *models.Tenant, file models.Attachment) error {
	if !CanUploadLease(tenant) {
		return errs.NewValidationError("a signed lease is already on file")
	}
	if file.IsZero() {
		return errs.NewValidationError("please choose a file to upload")
	}
	return s.client.UploadLease(ctx, file)
}

// MaintenanceForm is a new maintenance ticket as entered by the tenant.
type MaintenanceForm struct {
	Title       string                     `validate:"required"`
	Description string                     `validate:"required"`
	Category    models.MaintenanceCategory `validate:"required,oneof=PLUMBING ELECTRICAL HVAC FURNITURE APPLIANCES CLEANING SECURITY OTHER"`
	Priority    models.MaintenancePriority `validate:"required,oneof=LOW MEDIUM HIGH URGENT"`
	Photo       models.Attachment          `validate:"-"`
}

// CreateMaintenanceRequest validates and submits a new ticket.
func (s *Service) CreateMaintenanceRequest(ctx context.Context, form MaintenanceForm) error {
	if err := s.validate.Struct(form); err != nil {
		return errs.NewValidationError(err.Error())
	}
	return s.client.CreateMaintenanceRequest(ctx, api.MaintenanceRequestInput{
		Title:       form.Title,
		Description: form.Description,
		Category:    form.Category,
		Priority:    form.Priority,
		Photo:       form.Photo,
	})
}

// FeedbackForm rates a resolved maintenance request. The comment is optional.
type FeedbackForm struct {
	RequestID int    `validate:"required"`
	Rating    int    `validate:"min=1,max=5"`
	Feedback  string `validate:"-"`
}

// SubmitFeedback validates and submits a rating.
func (s *Service) SubmitFeedback(ctx context.Context, form FeedbackForm) error {
	if form.Rating == 0 {
		return errs.NewValidationError("Please select a star rating.")
	}
	if err := s.validate.Struct(form); err != nil {
		return errs.NewValidationError(err.Error())
	}
	return s.client.SubmitMaintenanceFeedback(ctx, form.RequestID, form.Rating, form.Feedback)
}

// DownloadStatement fetches the account statement for the signed-in tenant.
func (s *Service) DownloadStatement(ctx context.Context, user models.User) (api.Statement, error) {
	return s.client.DownloadStatement(ctx, user.LastName)
}
