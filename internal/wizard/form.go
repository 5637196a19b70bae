// internal/wizard/form.go
package wizard

import (
	"fmt"
	"regexp"
	"time"

	"housing-portal/internal/models"
)

// Step identifies one page of the application form.
type Step int

const (
	StepPersonal Step = iota + 1
	StepAcademicRoom
	StepGuardian
	StepFunding
	StepMedicalVehicle
	StepDocuments
)

const (
	firstStep = StepPersonal
	finalStep = StepDocuments
)

func (s Step) Name() string {
	switch s {
	case StepPersonal:
		return "Personal"
	case StepAcademicRoom:
		return "Academic & Room"
	case StepGuardian:
		return "Guardian"
	case StepFunding:
		return "Funding"
	case StepMedicalVehicle:
		return "Medical & Vehicle"
	case StepDocuments:
		return "Documents"
	}
	return fmt.Sprintf("Step %d", int(s))
}

// Funding source values accepted by the backend.
const (
	FundingNSFAS      = "NSFAS"
	FundingBursary    = "BURSARY"
	FundingSelfPaying = "SELF_PAYING"
)

var saIDRegex = regexp.MustCompile(`^\d{13}$`)

// Form is the six-step application form state. Values and Attachments are
// keyed by the backend field names; Errors mirrors them with one message per
// failed field.
type Form struct {
	Values      map[string]string
	Attachments map[string]models.Attachment
	Errors      map[string]string

	step       Step
	submitting bool
	submitted  bool

	now func() time.Time
}

// NewForm builds an empty form seeded from the signed-in account.
func NewForm(user models.User) *Form {
	f := &Form{
		Values:      map[string]string{},
		Attachments: map[string]models.Attachment{},
		Errors:      map[string]string{},
		step:        firstStep,
		now:         time.Now,
	}

	f.Values["nationality"] = "South African"
	f.Values["first_name"] = user.FirstName
	f.Values["last_name"] = user.LastName
	f.Values["email"] = user.Email
	f.Values["phone_number"] = user.PhoneNumber
	return f
}

// Step returns the current page.
func (f *Form) Step() Step {
	return f.step
}

// Submitted reports whether the form was accepted by the backend.
func (f *Form) Submitted() bool {
	return f.submitted
}

// SetField records a value and clears any error on that field. Editing the ID
// number or nationality rederives the date of birth.
func (f *Form) SetField(name, value string) {
	f.Values[name] = value
	delete(f.Errors, name)

	if name == "id_number" || name == "nationality" {
		f.deriveDateOfBirth()
	}
}

// SetAttachment records a selected file and clears any error on that field.
func (f *Form) SetAttachment(name string, file models.Attachment) {
	f.Attachments[name] = file
	delete(f.Errors, name)
}

// Next validates the current page and advances on success. Validation errors
// land in Errors and block the move.
func (f *Form) Next() bool {
	if !f.validateCurrentStep() {
		return false
	}
	if f.step < finalStep {
		f.step++
	}
	return true
}

// Previous moves back one page unconditionally, keeping entered values.
func (f *Form) Previous() {
	if f.step > firstStep {
		f.step--
	}
}

// deriveDateOfBirth fills date_of_birth from a valid 13-digit South African
// ID. The derivation is one-way: editing the date does not touch the ID. The
// century pivots on the current two-digit year, matching how the IDs encode
// birth years.
func (f *Form) deriveDateOfBirth() {
	if f.Values["nationality"] != "South African" {
		return
	}
	id := f.Values["id_number"]
	if !saIDRegex.MatchString(id) {
		return
	}

	var year int
	fmt.Sscanf(id[0:2], "%d", &year)
	month := id[2:4]
	day := id[4:6]

	currentYear := f.now().Year() % 100
	fullYear := 2000 + year
	if year > currentYear {
		fullYear = 1900 + year
	}

	dob := fmt.Sprintf("%04d-%s-%s", fullYear, month, day)
	if _, err := time.Parse("2006-01-02", dob); err != nil {
		return
	}
	f.Values["date_of_birth"] = dob
	delete(f.Errors, "date_of_birth")
}
