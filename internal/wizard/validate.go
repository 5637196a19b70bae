// internal/wizard/validate.go
package wizard

import (
	"regexp"
	"time"
)

// ValidationError describes one field-level failure.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Validation error codes.
const (
	CodeMissingRequired = "MISSING_REQUIRED"
	CodeInvalidFormat   = "INVALID_FORMAT"
	CodeInvalidValue    = "INVALID_VALUE"
)

var studentNumberRegex = regexp.MustCompile(`^\d{9}$`)

// validateCurrentStep runs the current page's validator and folds the results
// into the form's error map.
func (f *Form) validateCurrentStep() bool {
	var errs []ValidationError
	switch f.step {
	case StepPersonal:
		errs = f.validatePersonal()
	case StepAcademicRoom:
		errs = f.validateAcademicRoom()
	case StepGuardian:
		errs = f.validateGuardian()
	case StepFunding:
		errs = f.validateFunding()
	case StepMedicalVehicle:
		errs = f.validateMedicalVehicle()
	case StepDocuments:
		errs = f.validateDocuments()
	}

	f.Errors = map[string]string{}
	for _, e := range errs {
		if _, seen := f.Errors[e.Field]; !seen {
			f.Errors[e.Field] = e.Message
		}
	}
	return len(errs) == 0
}

func (f *Form) validatePersonal() []ValidationError {
	var errs []ValidationError
	errs = f.requireValues(errs, map[string]string{
		"first_name":     "First Name is required.",
		"last_name":      "Last Name is required.",
		"email":          "Email is required.",
		"phone_number":   "Phone Number is required.",
		"gender":         "Gender is required.",
		"ethnicity":      "Ethnicity is required.",
		"nationality":    "Nationality is required.",
		"address_line_1": "Address Line 1 is required.",
		"city":           "City is required.",
		"postal_code":    "Postal Code is required.",
	})

	if f.Values["resided_in_2025"] == "" {
		errs = append(errs, ValidationError{"resided_in_2025", CodeMissingRequired, "This field is required."})
	}

	dobValue := f.Values["date_of_birth"]
	var dob time.Time
	if dobValue == "" {
		errs = append(errs, ValidationError{"date_of_birth", CodeMissingRequired, "Date of Birth is required."})
	} else if parsed, err := time.Parse("2006-01-02", dobValue); err != nil {
		errs = append(errs, ValidationError{"date_of_birth", CodeInvalidFormat, "Date of Birth must be a valid date."})
	} else {
		dob = parsed
		now := f.now()
		minBirthDate := time.Date(now.Year()-16, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if dob.After(minBirthDate) {
			errs = append(errs, ValidationError{"date_of_birth", CodeInvalidValue, "Applicant must be at least 16 years old."})
		}
	}

	id := f.Values["id_number"]
	switch {
	case id == "":
		errs = append(errs, ValidationError{"id_number", CodeMissingRequired, "ID/Passport Number is required."})
	case f.Values["nationality"] == "South African":
		if !saIDRegex.MatchString(id) {
			errs = append(errs, ValidationError{"id_number", CodeInvalidFormat, "South African ID must be 13 digits."})
		} else if !dob.IsZero() && id[0:6] != dob.Format("060102") {
			errs = append(errs, ValidationError{"id_number", CodeInvalidValue, "The first 6 digits of your ID must match your Date of Birth."})
		}
	}

	return errs
}

func (f *Form) validateAcademicRoom() []ValidationError {
	var errs []ValidationError

	sn := f.Values["spu_student_number"]
	if sn == "" {
		errs = append(errs, ValidationError{"spu_student_number", CodeMissingRequired, "SPU Student Number is required."})
	} else if !studentNumberRegex.MatchString(sn) {
		errs = append(errs, ValidationError{"spu_student_number", CodeInvalidFormat, "Student Number must be exactly 9 digits."})
	}

	return f.requireValues(errs, map[string]string{
		"course_of_study":        "Course of Study is required.",
		"year_of_study":          "Year of Study is required.",
		"preferred_room_type":    "Preferred Room Type is required.",
		"preferred_move_in_date": "Preferred Move-in Date is required.",
	})
}

func (f *Form) validateGuardian() []ValidationError {
	// Secondary contact fields are optional.
	return f.requireValues(nil, map[string]string{
		"guardian_full_name":    "Guardian Full Name is required.",
		"guardian_relationship": "Guardian Relationship is required.",
		"guardian_phone_number": "Guardian Phone Number is required.",
		"guardian_email":        "Guardian Email is required.",
		"guardian_address":      "Guardian Address is required.",
	})
}

// validateFunding checks only the fields of the currently selected source, so
// values left over from a previously chosen source never block the step.
func (f *Form) validateFunding() []ValidationError {
	var errs []ValidationError

	switch f.Values["funding_source"] {
	case "":
		errs = append(errs, ValidationError{"funding_source", CodeMissingRequired, "Funding Source is required."})
	case FundingNSFAS:
		errs = f.requireValues(errs, map[string]string{
			"nsfas_reference_number": "NSFAS Reference Number is required.",
		})
		errs = f.requireAttachments(errs, map[string]string{
			"nsfas_approval_document": "NSFAS Approval Document is required.",
		})
	case FundingBursary:
		errs = f.requireValues(errs, map[string]string{
			"bursary_name":            "Bursary Name is required.",
			"bursary_contact_person":  "Contact Person is required.",
			"bursary_contact_email":   "Contact Email is required.",
			"bursary_contact_phone":   "Contact Phone is required.",
			"bursary_coverage_amount": "Coverage Amount is required.",
		})
		errs = f.requireAttachments(errs, map[string]string{
			"bursary_confirmation_letter": "Bursary Confirmation Letter is required.",
		})
	case FundingSelfPaying:
		errs = f.requireValues(errs, map[string]string{
			"payer_full_name":          "Full Name is required.",
			"payer_id_number":          "ID Number is required.",
			"payer_relationship":       "Relationship to Student is required.",
			"payer_phone_number":       "Phone Number is required.",
			"payer_email":              "Email is required.",
			"payer_address":            "Address is required.",
			"payer_employment_details": "Employment Details are required.",
			"payer_monthly_income":     "Monthly Income is required.",
		})
	default:
		errs = append(errs, ValidationError{"funding_source", CodeInvalidValue, "Funding Source is required."})
	}

	return errs
}

func (f *Form) validateMedicalVehicle() []ValidationError {
	var errs []ValidationError

	// has_vehicle is tri-state; the empty default is not an answer.
	switch f.Values["has_vehicle"] {
	case "":
		errs = append(errs, ValidationError{"has_vehicle", CodeMissingRequired, "Please select an option for vehicle ownership."})
	case "true":
		if f.Values["vehicle_details"] == "" {
			errs = append(errs, ValidationError{"vehicle_details", CodeMissingRequired, "Please provide your vehicle details."})
		}
	case "false":
	default:
		errs = append(errs, ValidationError{"has_vehicle", CodeInvalidValue, "Please select an option for vehicle ownership."})
	}

	return errs
}

func (f *Form) validateDocuments() []ValidationError {
	// Proof of deposit is optional here; it can follow after provisional
	// approval.
	return f.requireAttachments(nil, map[string]string{
		"id_document":           "ID Document is required.",
		"proof_of_registration": "Proof of Registration is required.",
	})
}

func (f *Form) requireValues(errs []ValidationError, fields map[string]string) []ValidationError {
	for field, message := range fields {
		if f.Values[field] == "" {
			errs = append(errs, ValidationError{field, CodeMissingRequired, message})
		}
	}
	return errs
}

func (f *Form) requireAttachments(errs []ValidationError, fields map[string]string) []ValidationError {
	for field, message := range fields {
		if f.Attachments[field].IsZero() {
			errs = append(errs, ValidationError{field, CodeMissingRequired, message})
		}
	}
	return errs
}
