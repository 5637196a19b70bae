// internal/models/application.go
package models

// ApplicationStatus enumerates the backend's application review states.
type ApplicationStatus string

const (
	StatusPending               ApplicationStatus = "PENDING"
	StatusUnderReview           ApplicationStatus = "UNDER_REVIEW"
	StatusWaitlisted            ApplicationStatus = "WAITLISTED"
	StatusProvisionallyApproved ApplicationStatus = "PROVISIONALLY_APPROVED"
	StatusRequiresDocuments     ApplicationStatus = "REQUIRES_DOCUMENTS"
	StatusApproved              ApplicationStatus = "APPROVED"
	StatusDeclined              ApplicationStatus = "DECLINED"
	StatusTenantCreated         ApplicationStatus = "TENANT_CREATED"
	StatusCancelled             ApplicationStatus = "CANCELLED"
)

// Known reports whether s is one of the statuses the client understands.
func (s ApplicationStatus) Known() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusWaitlisted,
		StatusProvisionallyApproved, StatusRequiresDocuments,
		StatusApproved, StatusDeclined, StatusTenantCreated, StatusCancelled:
		return true
	}
	return false
}

// RequiredDocument is an outstanding document request on an application.
type RequiredDocument struct {
	Name     string `json:"name"`
	Uploaded bool   `json:"uploaded"`
}

// AssignedRoom is the room allocation attached once an application is
// approved.
type AssignedRoom struct {
	RoomNumber string `json:"room_number"`
	RoomType   string `json:"room_type"`
}

// Application is the applicant-facing view of a submitted application.
type Application struct {
	ID                int                `json:"id"`
	ReferenceNumber   string             `json:"reference_number"`
	Status            ApplicationStatus  `json:"status"`
	PreferredRoomType string             `json:"preferred_room_type,omitempty"`
	ProofOfDeposit    string             `json:"proof_of_deposit,omitempty"`
	RequiredDocuments []RequiredDocument `json:"required_documents,omitempty"`
	FinalAssignedRoom *AssignedRoom      `json:"final_assigned_room,omitempty"`
	CreatedAt         string             `json:"created_at,omitempty"`
}
