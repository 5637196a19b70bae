// internal/account/service.go
package account

import (
	"context"

	"github.com/go-playground/validator/v10"

	"housing-portal/internal/api"
	errs "housing-portal/internal/common/errors"
	"housing-portal/internal/common/logger"
)

// Service handles registration and password-reset flows.
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

// RegistrationForm is a new-account request. PhoneNumber is optional.
type RegistrationForm struct {
	FirstName    string `validate:"required"`
	LastName     string `validate:"required"`
	Email        string `validate:"required,email"`
	PhoneNumber  string `validate:"omitempty,min=7"`
	Password     string `validate:"required"`
	Password2    string `validate:"required"`
	CaptchaToken string `validate:"-"`
}

// Register validates the form and creates the account. A 201 from the
// backend means success; the caller then directs the user to sign in.
func (s *Service) Register(ctx context.Context, form RegistrationForm) error {
	if form.Password != form.Password2 {
		return errs.NewValidationError("Passwords do not match.")
	}
	if form.CaptchaToken == "" {
		return errs.NewValidationError("Please complete the reCAPTCHA.")
	}
	if err := s.validate.Struct(form); err != nil {
		return errs.NewValidationError(err.Error())
	}

	err := s.client.Register(ctx, api.RegisterRequest{
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        form.Email,
		PhoneNumber:  form.PhoneNumber,
		Password:     form.Password,
		CaptchaToken: form.CaptchaToken,
	})
	if err != nil {
		return err
	}
	s.logger.Info("account registered", map[string]interface{}{"email": form.Email})
	return nil
}

// RequestPasswordReset asks for a reset email and returns the backend's
// confirmation message.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return "", errs.NewValidationError("Please enter a valid email address.")
	}
	return s.client.RequestPasswordReset(ctx, email)
}

// ResetConfirmForm completes a password reset from an emailed link.
type ResetConfirmForm struct {
	UID       string `validate:"required"`
	Token     string `validate:"required"`
	Password  string `validate:"required"`
	Password2 string `validate:"required"`
}

// ConfirmPasswordReset validates and applies the new password, returning the
// backend's confirmation message.
func (s *Service) ConfirmPasswordReset(ctx context.Context, form ResetConfirmForm) (string, error) {
	if form.Password != form.Password2 {
		return "", errs.NewValidationError("Passwords do not match.")
	}
	if err := s.validate.Struct(form); err != nil {
		return "", errs.NewValidationError(err.Error())
	}
	return s.client.ConfirmPasswordReset(ctx, form.UID, form.Token, form.Password, form.Password2)
}
