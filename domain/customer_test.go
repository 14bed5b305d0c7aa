package domain

import (
	"testing"
	"time"
)

func TestCustomerAgeAndGroup(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	birth := time.Date(1990, 12, 31, 0, 0, 0, 0, time.UTC)
	c := &Customer{BirthDate: &birth}

	age, ok := c.Age(now)
	if !ok || age != 36 {
		t.Fatalf("expected year-difference age 36, got %d (%v)", age, ok)
	}
	if got := AgeGroupOf(c, now); got != AgeGroup36To50 {
		t.Fatalf("expected 36-50, got %q", got)
	}

	young := time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := AgeGroupOf(&Customer{BirthDate: &young}, now); got != AgeGroupUnknown {
		t.Fatalf("expected minors to fall in unknown, got %q", got)
	}
	if got := AgeGroupOf(&Customer{}, now); got != AgeGroupUnknown {
		t.Fatalf("expected missing birth date to fall in unknown, got %q", got)
	}
}

func TestCustomerTenureDays(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	c := &Customer{CreatedAt: time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)}
	if got := c.TenureDays(now); got != 730 {
		t.Fatalf("expected 730 days, got %d", got)
	}

	future := &Customer{CreatedAt: now.AddDate(0, 0, 3)}
	if got := future.TenureDays(now); got != 0 {
		t.Fatalf("expected tenure to clamp at 0, got %d", got)
	}
}

func TestNormalizeMaritalStatus(t *testing.T) {
	cases := map[string]string{
		"Evli":    MaritalMarried,
		" single": MaritalSingle,
		"Dul":     MaritalWidowed,
		"other":   "other",
	}
	for in, want := range cases {
		if got := NormalizeMaritalStatus(in); got != want {
			t.Fatalf("NormalizeMaritalStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParsePolicyType(t *testing.T) {
	if got, ok := ParsePolicyType("Kasko"); !ok || got != PolicyCasco {
		t.Fatalf("expected kasko alias to map to casco, got %q", got)
	}
	if got, ok := ParsePolicyType("health"); !ok || got != PolicyHealth {
		t.Fatalf("expected health, got %q", got)
	}
	if _, ok := ParsePolicyType("boat"); ok {
		t.Fatalf("expected boat to be rejected")
	}
}

func TestPolicyTypeStoredNames(t *testing.T) {
	got := PolicyHealth.StoredNames()
	want := []string{"health", "saglik", "sağlık"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if got := PolicyTypeOf(" DASK "); got != PolicyEarthquake {
		t.Fatalf("expected dask to map to earthquake, got %q", got)
	}
	if got := PolicyTypeOf("boat"); got != "boat" {
		t.Fatalf("expected unknown code to be kept, got %q", got)
	}
}
