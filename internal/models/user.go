package models

// User represents the authenticated account holder as returned by the backend.
type User struct {
	ID          int    `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number,omitempty"`
	IsStaff     bool   `json:"is_staff,omitempty"`
}

// IsZero reports whether the record carries no identifying information.
func (u User) IsZero() bool {
	return u.ID == 0 && u.Email == ""
}

// FullName joins first and last name for display.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
