package technician

import (
	"strings"
	"time"
)

// Roles recognised by the API.
const (
	RoleTechnician = "technician"
	RoleAdmin      = "admin"
)

// Profile is a technician or administrator account.
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	ServiceArea string    `json:"service_area"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsTechnician reports whether the profile's visibility is limited to its
// service area. Role comparison ignores case.
func (p *Profile) IsTechnician() bool {
	return p != nil && strings.EqualFold(p.Role, RoleTechnician)
}

// IsAdmin reports whether the profile has the admin role.
func (p *Profile) IsAdmin() bool {
	return p != nil && strings.EqualFold(p.Role, RoleAdmin)
}
