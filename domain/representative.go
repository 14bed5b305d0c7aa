package domain

import (
	"fmt"
	"time"
)

const (
	RepresentativeActive   = "active"
	RepresentativeInactive = "inactive"

	// DefaultRoleLevel is the level of a plain customer representative.
	DefaultRoleLevel = 5
)

// Representative is the CRM profile attached to a platform user.
type Representative struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Title       string    `json:"title,omitempty"`
	RoleLevel   int       `json:"role_level"`
	Status      string    `json:"status"`
	Department  string    `json:"department,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r *Representative) IsActive() bool {
	return r != nil && r.Status == RepresentativeActive
}

// Label renders "<name> (<level>)" the way the performance tables show it.
func (r *Representative) Label() string {
	if r == nil {
		return ""
	}
	name := r.DisplayName
	if name == "" {
		name = fmt.Sprintf("#%d", r.ID)
	}
	return fmt.Sprintf("%s (%d)", name, r.RoleLevel)
}
