package domain

import "time"

// ExportedDocument is a serialized report ready for download. MaxRoleLevel
// is copied from the report definition and gates later downloads.
type ExportedDocument struct {
	ID           string    `json:"id"`
	Report       string    `json:"report"`
	Format       string    `json:"format"`
	Filename     string    `json:"filename"`
	ContentType  string    `json:"content_type"`
	Size         int       `json:"size"`
	MaxRoleLevel int       `json:"max_role_level,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Content      []byte    `json:"-"`
}
