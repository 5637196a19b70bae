// internal/contact/service.go
package contact

import (
	"context"

	"github.com/go-playground/validator/v10"

	"housing-portal/internal/api"
	errs "housing-portal/internal/common/errors"
	"housing-portal/internal/common/logger"
)

// Form is a public enquiry submission.
type Form struct {
	FullName string `validate:"required"`
	Email    string `validate:"required,email"`
	Subject  string `validate:"required"`
	Message  string `validate:"required"`
}

// Service submits contact-form enquiries.
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

// Send validates the form and delivers it. On success the caller clears the
// form.
func (s *Service) Send(ctx context.Context, form Form) error {
	if err := s.validate.Struct(form); err != nil {
		return errs.NewValidationError("All fields are required and the email must be valid.")
	}

	err := s.client.SendContactMessage(ctx, api.ContactMessage{
		FullName: form.FullName,
		Email:    form.Email,
		Subject:  form.Subject,
		Message:  form.Message,
	})
	if err != nil {
		return err
	}
	s.logger.Info("contact message sent", map[string]interface{}{"subject": form.Subject})
	return nil
}
