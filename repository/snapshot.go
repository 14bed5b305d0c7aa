package repository

import (
	"context"
	"time"

	"github.com/fastygo/crm-reports/domain"
	"github.com/fastygo/crm-reports/pkg/sqlbuilder"
)

// CustomerFilter restricts the customers loaded into a snapshot.
type CustomerFilter struct {
	Created *domain.DateRange
	City    string
}

// PolicyFilter restricts the policies loaded into a snapshot. Type matches the
// canonical code and its legacy aliases. CustomerCity is resolved through a
// subquery on the customers table.
type PolicyFilter struct {
	Created      *domain.DateRange
	Type         domain.PolicyType
	Statuses     []domain.PolicyStatus
	CustomerCity string
}

type RepresentativeFilter struct {
	ActiveOnly bool
}

type OfferFilter struct {
	Created *domain.DateRange
	Type    domain.PolicyType
}

type TaskFilter struct {
	Created *domain.DateRange
}

// SnapshotQuery describes which tables to read and the filters that can be
// evaluated by the store. A nil filter leaves the table out of the snapshot.
type SnapshotQuery struct {
	Customers       *CustomerFilter
	Policies        *PolicyFilter
	Representatives *RepresentativeFilter
	Offers          *OfferFilter
	Tasks           *TaskFilter
}

// SnapshotReader loads a consistent read of the CRM tables.
type SnapshotReader interface {
	Load(ctx context.Context, query SnapshotQuery) (*domain.Snapshot, error)
}

// Column lists, in scan order.
var (
	CustomerColumns = []string{
		"id", "first_name", "last_name", "email", "phone", "birth_date",
		"gender", "marital_status", "city", "district", "created_at",
	}
	PolicyColumns = []string{
		"id", "policy_number", "customer_id", "representative_id", "offer_id", "policy_type",
		"premium_amount", "status", "payment_status", "start_date", "end_date", "created_at",
	}
	RepresentativeColumns = []string{
		"id", "user_id", "display_name", "title", "role_level", "status", "department", "created_at",
	}
	OfferColumns = []string{"id", "customer_id", "policy_type", "premium_amount", "created_at"}
	TaskColumns  = []string{"id", "representative_id", "customer_id", "status", "created_at", "completed_at"}
)

// TimeArg converts a range bound into the value a driver binds for comparison.
// Bounds are always UTC midnights.
type TimeArg func(time.Time) any

func rangeClauses(column string, r *domain.DateRange, arg TimeArg) []sqlbuilder.Clause {
	if r == nil {
		return nil
	}
	return []sqlbuilder.Clause{
		sqlbuilder.Gte(column, arg(r.Start)),
		sqlbuilder.Lt(column, arg(r.EndExclusive())),
	}
}

// CustomerQuery builds the customer SELECT for f.
func (s Schema) CustomerQuery(f CustomerFilter, arg TimeArg) *sqlbuilder.SelectBuilder {
	q := sqlbuilder.Select(s.Table(EntityCustomers), CustomerColumns...).
		Where(rangeClauses("created_at", f.Created, arg)...)
	if f.City != "" {
		q.Where(sqlbuilder.IEq("city", f.City))
	}
	return q.OrderBy("id")
}

// PolicyQuery builds the policy SELECT for f.
func (s Schema) PolicyQuery(f PolicyFilter, arg TimeArg) *sqlbuilder.SelectBuilder {
	q := sqlbuilder.Select(s.Table(EntityPolicies), PolicyColumns...).
		Where(rangeClauses("created_at", f.Created, arg)...)
	if f.Type != "" {
		q.Where(sqlbuilder.IIn("policy_type", f.Type.StoredNames()...))
	}
	if len(f.Statuses) > 0 {
		values := make([]any, len(f.Statuses))
		for i, st := range f.Statuses {
			values[i] = string(st)
		}
		q.Where(sqlbuilder.In("status", values...))
	}
	if f.CustomerCity != "" {
		sub := sqlbuilder.Select(s.Table(EntityCustomers), "id").Where(sqlbuilder.IEq("city", f.CustomerCity))
		q.Where(sqlbuilder.InSelect("customer_id", sub))
	}
	return q.OrderBy("id")
}

// RepresentativeQuery builds the representative SELECT for f.
func (s Schema) RepresentativeQuery(f RepresentativeFilter) *sqlbuilder.SelectBuilder {
	q := sqlbuilder.Select(s.Table(EntityRepresentatives), RepresentativeColumns...)
	if f.ActiveOnly {
		q.Where(sqlbuilder.Eq("status", domain.RepresentativeActive))
	}
	return q.OrderBy("id")
}

// OfferQuery builds the offer SELECT for f.
func (s Schema) OfferQuery(f OfferFilter, arg TimeArg) *sqlbuilder.SelectBuilder {
	q := sqlbuilder.Select(s.Table(EntityOffers), OfferColumns...).
		Where(rangeClauses("created_at", f.Created, arg)...)
	if f.Type != "" {
		q.Where(sqlbuilder.IIn("policy_type", f.Type.StoredNames()...))
	}
	return q.OrderBy("id")
}

// TaskQuery builds the task SELECT for f.
func (s Schema) TaskQuery(f TaskFilter, arg TimeArg) *sqlbuilder.SelectBuilder {
	return sqlbuilder.Select(s.Table(EntityTasks), TaskColumns...).
		Where(rangeClauses("created_at", f.Created, arg)...).
		OrderBy("id")
}
