// internal/wizard/submit.go
package wizard

import (
	"context"
	"strings"

	"housing-portal/internal/api"
	errs "housing-portal/internal/common/errors"
	"housing-portal/internal/models"
)

// Funding sub-document wire shapes. Each submission carries exactly one of
// these, matching the selected funding source.
type nsfasDetails struct {
	ReferenceNumber string `json:"reference_number"`
}

type bursaryDetails struct {
	BursaryName    string `json:"bursary_name"`
	CoverageAmount string `json:"coverage_amount"`
	ContactPerson  string `json:"contact_person"`
	ContactPhone   string `json:"contact_phone"`
	ContactEmail   string `json:"contact_email"`
}

type responsiblePayer struct {
	FullName              string `json:"full_name"`
	IDNumber              string `json:"id_number"`
	RelationshipToStudent string `json:"relationship_to_student"`
	PhoneNumber           string `json:"phone_number"`
	Email                 string `json:"email"`
	Address               string `json:"address"`
	EmploymentDetails     string `json:"employment_details"`
	MonthlyIncome         string `json:"monthly_income"`
}

// fundingPrefixes mark scalar fields that travel inside a sub-document
// rather than as flat form fields.
var fundingPrefixes = []string{"nsfas_", "bursary_", "payer_"}

// BuildSubmission flattens the form into its wire shape: scalar fields minus
// the funding-prefixed ones, one JSON sub-document for the selected source,
// and the attached files.
func (f *Form) BuildSubmission() api.ApplicationSubmission {
	fields := map[string]string{}
	for key, value := range f.Values {
		if value == "" || hasFundingPrefix(key) {
			continue
		}
		fields[key] = value
	}

	sub := api.ApplicationSubmission{
		Fields: fields,
		Files:  map[string]models.Attachment{},
	}

	for _, name := range []string{"id_document", "proof_of_registration", "proof_of_deposit"} {
		if file := f.Attachments[name]; !file.IsZero() {
			sub.Files[name] = file
		}
	}

	switch f.Values["funding_source"] {
	case FundingNSFAS:
		sub.SubDocName = "nsfas_details"
		sub.SubDoc = nsfasDetails{ReferenceNumber: f.Values["nsfas_reference_number"]}
		if file := f.Attachments["nsfas_approval_document"]; !file.IsZero() {
			sub.Files["nsfas_approval_document"] = file
		}
	case FundingBursary:
		sub.SubDocName = "bursary_details"
		sub.SubDoc = bursaryDetails{
			BursaryName:    f.Values["bursary_name"],
			CoverageAmount: f.Values["bursary_coverage_amount"],
			ContactPerson:  f.Values["bursary_contact_person"],
			ContactPhone:   f.Values["bursary_contact_phone"],
			ContactEmail:   f.Values["bursary_contact_email"],
		}
		if file := f.Attachments["bursary_confirmation_letter"]; !file.IsZero() {
			sub.Files["bursary_confirmation_letter"] = file
		}
	case FundingSelfPaying:
		sub.SubDocName = "responsible_payer"
		sub.SubDoc = responsiblePayer{
			FullName:              f.Values["payer_full_name"],
			IDNumber:              f.Values["payer_id_number"],
			RelationshipToStudent: f.Values["payer_relationship"],
			PhoneNumber:           f.Values["payer_phone_number"],
			Email:                 f.Values["payer_email"],
			Address:               f.Values["payer_address"],
			EmploymentDetails:     f.Values["payer_employment_details"],
			MonthlyIncome:         f.Values["payer_monthly_income"],
		}
	}

	return sub
}

// Submit validates the final page and sends the application. Server-side
// field errors are mapped back onto the form; only an in-flight submit
// blocks a retry.
func (f *Form) Submit(ctx context.Context, client *api.Client) error {
	if f.submitting {
		return errs.NewValidationError("a submission is already in progress")
	}
	if f.step != finalStep {
		return errs.NewValidationError("the form has remaining steps")
	}
	if !f.validateCurrentStep() {
		return errs.NewValidationError("please correct the errors in the form")
	}

	f.submitting = true
	defer func() { f.submitting = false }()

	err := client.CreateApplication(ctx, f.BuildSubmission())
	if err != nil {
		for field, message := range errs.FieldErrorsOf(err) {
			f.Errors[field] = message
		}
		return err
	}

	f.submitted = true
	return nil
}

func hasFundingPrefix(key string) bool {
	for _, prefix := range fundingPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}
