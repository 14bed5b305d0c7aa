package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fastygo/crm-reports/domain"
)

// TimeLayout is the TEXT encoding used for every timestamp column. Values in
// this layout compare lexicographically in timestamp order.
const (
	TimeLayout = "2006-01-02 15:04:05"
	DateLayout = "2006-01-02"
)

var parseLayouts = []string{TimeLayout, time.RFC3339Nano, "2006-01-02T15:04:05", DateLayout}

type scanner interface {
	Scan(dest ...any) error
}

// dateArg binds a range bound as a bare date. A bare date sorts before every
// timestamp on the same day, so date-only and full timestamp values both fall
// on the right side of it.
func dateArg(t time.Time) any {
	return t.UTC().Format(DateLayout)
}

// FormatTime encodes t for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func parseTime(value string) (time.Time, error) {
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

func parseNullTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := parseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullInt(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}

func scanCustomer(row scanner) (domain.Customer, error) {
	var (
		c                                             domain.Customer
		email, phone, gender, marital, city, district sql.NullString
		birthDate                                     sql.NullString
		createdAt                                     string
	)
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &email, &phone, &birthDate,
		&gender, &marital, &city, &district, &createdAt)
	if err != nil {
		return c, err
	}
	c.Email, c.Phone, c.Gender = email.String, phone.String, gender.String
	c.MaritalStatus, c.City, c.District = marital.String, city.String, district.String
	if c.BirthDate, err = parseNullTime(birthDate); err != nil {
		return c, err
	}
	c.CreatedAt, err = parseTime(createdAt)
	return c, err
}

func scanPolicy(row scanner) (domain.Policy, error) {
	var (
		p                                 domain.Policy
		offerID                           sql.NullInt64
		policyType, status, paymentStatus string
		start, end, createdAt             string
	)
	err := row.Scan(&p.ID, &p.PolicyNumber, &p.CustomerID, &p.RepresentativeID, &offerID, &policyType,
		&p.Premium, &status, &paymentStatus, &start, &end, &createdAt)
	if err != nil {
		return p, err
	}
	p.OfferID = nullInt(offerID)
	p.Type = domain.PolicyTypeOf(policyType)
	p.Status = domain.PolicyStatus(status)
	p.PaymentStatus = domain.PaymentStatus(paymentStatus)
	if p.StartDate, err = parseTime(start); err != nil {
		return p, err
	}
	if p.EndDate, err = parseTime(end); err != nil {
		return p, err
	}
	p.CreatedAt, err = parseTime(createdAt)
	return p, err
}

func scanRepresentative(row scanner) (domain.Representative, error) {
	var (
		r                 domain.Representative
		title, department sql.NullString
		createdAt         string
	)
	err := row.Scan(&r.ID, &r.UserID, &r.DisplayName, &title, &r.RoleLevel, &r.Status, &department, &createdAt)
	if err != nil {
		return r, err
	}
	r.Title, r.Department = title.String, department.String
	r.CreatedAt, err = parseTime(createdAt)
	return r, err
}

func scanOffer(row scanner) (domain.Offer, error) {
	var (
		o                     domain.Offer
		policyType, createdAt string
	)
	if err := row.Scan(&o.ID, &o.CustomerID, &policyType, &o.Premium, &createdAt); err != nil {
		return o, err
	}
	o.Type = domain.PolicyTypeOf(policyType)
	var err error
	o.CreatedAt, err = parseTime(createdAt)
	return o, err
}

func scanTask(row scanner) (domain.Task, error) {
	var (
		t                 domain.Task
		customerID        sql.NullInt64
		status, createdAt string
		completedAt       sql.NullString
	)
	err := row.Scan(&t.ID, &t.RepresentativeID, &customerID, &status, &createdAt, &completedAt)
	if err != nil {
		return t, err
	}
	t.CustomerID = nullInt(customerID)
	t.Status = domain.TaskStatus(status)
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return t, err
	}
	t.CompletedAt, err = parseNullTime(completedAt)
	return t, err
}
