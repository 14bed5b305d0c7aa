package domain

import (
	"strings"
	"time"
)

// Marital statuses recognised by the reports.
const (
	MaritalMarried  = "married"
	MaritalSingle   = "single"
	MaritalDivorced = "divorced"
	MaritalWidowed  = "widowed"
)

var maritalAliases = map[string]string{
	"married":  MaritalMarried,
	"evli":     MaritalMarried,
	"single":   MaritalSingle,
	"bekar":    MaritalSingle,
	"divorced": MaritalDivorced,
	"bosanmis": MaritalDivorced,
	"boşanmış": MaritalDivorced,
	"widowed":  MaritalWidowed,
	"dul":      MaritalWidowed,
}

// NormalizeMaritalStatus maps stored or user supplied values onto the canonical
// set. Unrecognised values are returned lower-cased so they can only match themselves.
func NormalizeMaritalStatus(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if canonical, ok := maritalAliases[v]; ok {
		return canonical
	}
	return v
}

// Customer is a policy holder owned by the CRM modules.
type Customer struct {
	ID            int64      `json:"id"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         string     `json:"email,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	BirthDate     *time.Time `json:"birth_date,omitempty"`
	Gender        string     `json:"gender,omitempty"`
	MaritalStatus string     `json:"marital_status,omitempty"`
	City          string     `json:"city,omitempty"`
	District      string     `json:"district,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (c *Customer) FullName() string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Age is the calendar-year difference between now and the birth date.
// The second return is false when the birth date is unknown.
func (c *Customer) Age(now time.Time) (int, bool) {
	if c == nil || c.BirthDate == nil || c.BirthDate.IsZero() {
		return 0, false
	}
	return now.UTC().Year() - c.BirthDate.UTC().Year(), true
}

// TenureDays counts whole days elapsed since the customer was created.
func (c *Customer) TenureDays(now time.Time) int {
	if c == nil || c.CreatedAt.IsZero() {
		return 0
	}
	days := DaysBetween(c.CreatedAt, now)
	if days < 0 {
		return 0
	}
	return days
}

// DaysBetween returns the number of UTC calendar days from a to b, comparing
// dates only. The result is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	a, b = a.UTC(), b.UTC()
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
