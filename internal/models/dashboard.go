// internal/models/dashboard.go
package models

// Announcement is a notice surfaced on the dashboard.
type Announcement struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at,omitempty"`
}

// DashboardSnapshot is the backend's combined dashboard payload. It is held
// in memory only and refetched after login, on demand, and after mutations.
type DashboardSnapshot struct {
	IsTenant            bool                 `json:"is_tenant"`
	TenantDetails       *Tenant              `json:"tenant_details,omitempty"`
	ApplicationDetails  *Application         `json:"application_details,omitempty"`
	MaintenanceRequests []MaintenanceRequest `json:"maintenance_requests,omitempty"`
	Announcements       []Announcement       `json:"announcements,omitempty"`
}

// HasApplication reports whether the account already has a tenancy or a
// submitted application on file.
func (d *DashboardSnapshot) HasApplication() bool {
	if d == nil {
		return false
	}
	return d.IsTenant || d.ApplicationDetails != nil
}

// RoomType is a bookable room category with its monthly rate.
type RoomType struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	MonthlyRate float64 `json:"monthly_rate"`
	Description string  `json:"description,omitempty"`
}
