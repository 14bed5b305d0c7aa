package report

import (
	"context"
	"testing"
	"time"

	"github.com/fastygo/crm-reports/domain"
	"github.com/fastygo/crm-reports/repository/memory"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

func birth(year int) *time.Time {
	t := time.Date(year, 6, 15, 0, 0, 0, 0, time.UTC)
	return &t
}

func ref(id int64) *int64 { return &id }

func customer(id int64, marital string, created time.Time) domain.Customer {
	return domain.Customer{
		ID:            id,
		FirstName:     "Customer",
		LastName:      string(rune('A' + id - 1)),
		MaritalStatus: marital,
		CreatedAt:     created,
	}
}

func policy(id, customerID, repID int64, t domain.PolicyType, premium float64, status domain.PolicyStatus) domain.Policy {
	return domain.Policy{
		ID:               id,
		PolicyNumber:     "P-" + string(rune('0'+id%10)),
		CustomerID:       customerID,
		RepresentativeID: repID,
		Type:             t,
		Premium:          premium,
		Status:           status,
		PaymentStatus:    domain.PaymentCurrent,
		StartDate:        day(2025, 6, 1),
		EndDate:          day(2026, 6, 1),
		CreatedAt:        day(2025, 6, 1),
	}
}

func rep(id int64, name string, level int, status string) domain.Representative {
	return domain.Representative{ID: id, UserID: id + 100, DisplayName: name, RoleLevel: level, Status: status}
}

func newTestUseCase(t *testing.T, data domain.Snapshot, opts ...Option) (*UseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore(data)
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	return New(store, DefaultRules(), nil, opts...), store
}

var manager = domain.Viewer{RepresentativeID: 1, RoleLevel: 1}

func mustRun(t *testing.T, uc *UseCase, name string, filters map[string]string) *Report {
	t.Helper()
	rep, err := uc.Run(context.Background(), name, filters, manager)
	if err != nil {
		t.Fatalf("run %s: %v", name, err)
	}
	return rep
}

func floatEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

// richSnapshot touches every table so that each report has something to do.
func richSnapshot() domain.Snapshot {
	c1 := customer(1, "married", day(2021, 1, 10))
	c1.BirthDate, c1.Gender, c1.City, c1.District = birth(1980), "female", "Ankara", "Cankaya"
	c2 := customer(2, "single", day(2025, 11, 5))
	c2.BirthDate, c2.Gender, c2.City, c2.District = birth(2002), "male", "Izmir", "Konak"
	c3 := customer(3, "divorced", day(2026, 1, 20))
	c3.Gender, c3.City, c3.District = "male", "Ankara", "Cankaya"

	p1 := policy(1, 1, 1, domain.PolicyCasco, 12000, domain.PolicyActive)
	p1.EndDate = day(2026, 3, 20)
	p1.PaymentStatus = domain.PaymentOverdue
	p1.OfferID = ref(1)
	p2 := policy(2, 1, 2, domain.PolicyHome, 3000, domain.PolicyCancelled)
	p2.CreatedAt = day(2025, 12, 1)
	p3 := policy(3, 2, 1, domain.PolicyTraffic, 800, domain.PolicyActive)
	p3.EndDate = day(2026, 4, 25)
	p3.CreatedAt = day(2026, 1, 5)

	completed := day(2026, 1, 3).Add(6 * time.Hour)
	return domain.Snapshot{
		Customers: []domain.Customer{c1, c2, c3},
		Policies:  []domain.Policy{p1, p2, p3},
		Representatives: []domain.Representative{
			rep(1, "Ayse", 2, domain.RepresentativeActive),
			rep(2, "Riza", 5, domain.RepresentativeActive),
		},
		Offers: []domain.Offer{
			{ID: 1, CustomerID: 1, Type: domain.PolicyCasco, Premium: 11000, CreatedAt: day(2025, 5, 20)},
			{ID: 2, CustomerID: 2, Type: domain.PolicyHome, Premium: 2500, CreatedAt: day(2026, 1, 2)},
		},
		Tasks: []domain.Task{
			{ID: 1, RepresentativeID: 1, Status: domain.TaskCompleted, CreatedAt: day(2026, 1, 3), CompletedAt: &completed},
			{ID: 2, RepresentativeID: 1, Status: domain.TaskPending, CreatedAt: day(2026, 1, 4)},
			{ID: 3, RepresentativeID: 2, Status: domain.TaskOverdue, CreatedAt: day(2026, 1, 5)},
		},
	}
}
