package postgres

import (
	"time"

	"github.com/fastygo/crm-reports/domain"
)

type scanner interface {
	Scan(dest ...any) error
}

func timeArg(t time.Time) any {
	return t.UTC()
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// utc normalises driver timestamps so calendar bucketing never depends on the
// session time zone.
func utc(times ...*time.Time) {
	for _, t := range times {
		if t != nil && !t.IsZero() {
			*t = t.UTC()
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func scanCustomer(row scanner) (domain.Customer, error) {
	var (
		c                                             domain.Customer
		email, phone, gender, marital, city, district *string
	)
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &email, &phone, &c.BirthDate,
		&gender, &marital, &city, &district, &c.CreatedAt)
	if err != nil {
		return c, err
	}
	c.Email, c.Phone, c.Gender = deref(email), deref(phone), deref(gender)
	c.MaritalStatus, c.City, c.District = deref(marital), deref(city), deref(district)
	utc(c.BirthDate, &c.CreatedAt)
	return c, nil
}

func scanPolicy(row scanner) (domain.Policy, error) {
	var (
		p                                 domain.Policy
		policyType, status, paymentStatus string
	)
	err := row.Scan(&p.ID, &p.PolicyNumber, &p.CustomerID, &p.RepresentativeID, &p.OfferID, &policyType,
		&p.Premium, &status, &paymentStatus, &p.StartDate, &p.EndDate, &p.CreatedAt)
	if err != nil {
		return p, err
	}
	p.Type = domain.PolicyTypeOf(policyType)
	p.Status = domain.PolicyStatus(status)
	p.PaymentStatus = domain.PaymentStatus(paymentStatus)
	utc(&p.StartDate, &p.EndDate, &p.CreatedAt)
	return p, nil
}

func scanRepresentative(row scanner) (domain.Representative, error) {
	var (
		r                 domain.Representative
		title, department *string
	)
	err := row.Scan(&r.ID, &r.UserID, &r.DisplayName, &title, &r.RoleLevel, &r.Status, &department, &r.CreatedAt)
	if err != nil {
		return r, err
	}
	r.Title, r.Department = deref(title), deref(department)
	utc(&r.CreatedAt)
	return r, nil
}

func scanOffer(row scanner) (domain.Offer, error) {
	var (
		o          domain.Offer
		policyType string
	)
	if err := row.Scan(&o.ID, &o.CustomerID, &policyType, &o.Premium, &o.CreatedAt); err != nil {
		return o, err
	}
	o.Type = domain.PolicyTypeOf(policyType)
	utc(&o.CreatedAt)
	return o, nil
}

func scanTask(row scanner) (domain.Task, error) {
	var (
		t      domain.Task
		status string
	)
	if err := row.Scan(&t.ID, &t.RepresentativeID, &t.CustomerID, &status, &t.CreatedAt, &t.CompletedAt); err != nil {
		return t, err
	}
	t.Status = domain.TaskStatus(status)
	utc(&t.CreatedAt, t.CompletedAt)
	return t, nil
}
