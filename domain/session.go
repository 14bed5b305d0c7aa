package domain

import "time"

// Session represents a cached representative session stored in Redis.
type Session struct {
	ID               string            `json:"id"`
	UserID           int64             `json:"user_id"`
	RepresentativeID int64             `json:"representative_id"`
	RoleLevel        int               `json:"role_level"`
	ExpiresAt        time.Time         `json:"expires_at"`
	CreatedAt        time.Time         `json:"created_at"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}

// Viewer identifies who is running a report.
type Viewer struct {
	RepresentativeID int64
	RoleLevel        int
}

// CanAccess reports whether the viewer's role satisfies maxRoleLevel.
// Zero means the resource is open to every representative.
func (v Viewer) CanAccess(maxRoleLevel int) bool {
	if maxRoleLevel <= 0 {
		return true
	}
	return v.RoleLevel > 0 && v.RoleLevel <= maxRoleLevel
}
