// internal/models/tenant.go
package models

// PaymentStatus enumerates ledger payment states.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentConfirmed PaymentStatus = "CONFIRMED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// Payment is one ledger entry on the tenant's account.
type Payment struct {
	ID     int           `json:"id"`
	Amount float64       `json:"amount"`
	Date   string        `json:"date"`
	Status PaymentStatus `json:"status"`
}

// Violation is a recorded house-rule infraction.
type Violation struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// Tenant is the tenancy record attached to the dashboard snapshot. Balance
// follows ledger convention: positive is owed by the tenant, negative is a
// credit due to the tenant.
type Tenant struct {
	ID          int         `json:"id"`
	IsActive    bool        `json:"is_active"`
	RoomNumber  string      `json:"room_number,omitempty"`
	LeaseStart  string      `json:"lease_start,omitempty"`
	LeaseEnd    string      `json:"lease_end,omitempty"`
	Balance     float64     `json:"balance"`
	SignedLease string      `json:"signed_lease,omitempty"`
	Payments    []Payment   `json:"payments,omitempty"`
	Violations  []Violation `json:"violations,omitempty"`
}
