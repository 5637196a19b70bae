// internal/models/maintenance.go
package models

// MaintenanceCategory enumerates accepted maintenance request categories.
type MaintenanceCategory string

const (
	MaintenancePlumbing   MaintenanceCategory = "PLUMBING"
	MaintenanceElectrical MaintenanceCategory = "ELECTRICAL"
	MaintenanceHVAC       MaintenanceCategory = "HVAC"
	MaintenanceFurniture  MaintenanceCategory = "FURNITURE"
	MaintenanceAppliances MaintenanceCategory = "APPLIANCES"
	MaintenanceCleaning   MaintenanceCategory = "CLEANING"
	MaintenanceSecurity   MaintenanceCategory = "SECURITY"
	MaintenanceOther      MaintenanceCategory = "OTHER"
)

// MaintenancePriority enumerates accepted priorities.
type MaintenancePriority string

const (
	PriorityLow    MaintenancePriority = "LOW"
	PriorityMedium MaintenancePriority = "MEDIUM"
	PriorityHigh   MaintenancePriority = "HIGH"
	PriorityUrgent MaintenancePriority = "URGENT"
)

// MaintenanceRequest is a tenant-raised maintenance ticket.
type MaintenanceRequest struct {
	ID             int                 `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Category       MaintenanceCategory `json:"category"`
	Priority       MaintenancePriority `json:"priority"`
	Status         string              `json:"status,omitempty"`
	CreatedAt      string              `json:"created_at,omitempty"`
	TenantRating   int                 `json:"tenant_rating,omitempty"`
	TenantFeedback string              `json:"tenant_feedback,omitempty"`
}

// MaintenanceCategories lists the accepted categories in display order.
func MaintenanceCategories() []MaintenanceCategory {
	return []MaintenanceCategory{
		MaintenancePlumbing, MaintenanceElectrical, MaintenanceHVAC,
		MaintenanceFurniture, MaintenanceAppliances, MaintenanceCleaning,
		MaintenanceSecurity, MaintenanceOther,
	}
}

// MaintenancePriorities lists the accepted priorities in display order.
func MaintenancePriorities() []MaintenancePriority {
	return []MaintenancePriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}
