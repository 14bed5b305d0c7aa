package report

import (
	"errors"
	"testing"

	"github.com/fastygo/crm-reports/domain"
)

func TestDefaultCatalogOrder(t *testing.T) {
	want := []string{
		CustomerDemographics, VIPCustomers, RiskAnalysis, PolicyPerformance, RepresentativePerformance,
		QuoteConversion, ProfitabilityReport, GeographicDistribution, CustomerLifetimeValue, MarketAnalysis,
		TaskPerformance, CustomerSatisfaction,
	}
	defs := DefaultCatalog().Definitions()
	if len(defs) != len(want) {
		t.Fatalf("expected %d reports, got %d", len(want), len(defs))
	}
	for i, def := range defs {
		if def.Name != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], def.Name)
		}
		if def.Aggregate == nil || def.Title == "" || len(def.Entities) == 0 {
			t.Fatalf("%s is incomplete", def.Name)
		}
	}
}

func TestCatalogLookup(t *testing.T) {
	c := DefaultCatalog()

	def, err := c.Lookup("geographic")
	if err != nil || def.Name != GeographicDistribution {
		t.Fatalf("expected alias to resolve, got %v %v", def, err)
	}
	if _, err := c.Lookup("sales_forecast"); !errors.Is(err, domain.ErrUnknownReport) {
		t.Fatalf("expected ErrUnknownReport, got %v", err)
	}
}

func TestCatalogDefinitionsAreCopies(t *testing.T) {
	c := DefaultCatalog()
	defs := c.Definitions()
	defs[0].Filters[0] = "tampered"

	def, _ := c.Lookup(defs[0].Name)
	if def.Filters[0] == "tampered" {
		t.Fatalf("catalog must not be mutable through Definitions")
	}
}

func TestNewCatalogRejectsBadDefinitions(t *testing.T) {
	noop := func(domain.Predicate, *domain.Snapshot, Env) Result { return VIPList{} }

	if _, err := NewCatalog(Definition{Name: "a", Aggregate: noop}, Definition{Name: "a", Aggregate: noop}); err == nil {
		t.Fatalf("expected duplicate name to fail")
	}
	if _, err := NewCatalog(Definition{Name: "a", Aggregate: noop}, Definition{Name: "b", Aliases: []string{"a"}, Aggregate: noop}); err == nil {
		t.Fatalf("expected alias clash to fail")
	}
	if _, err := NewCatalog(Definition{Name: "a"}); err == nil {
		t.Fatalf("expected missing aggregation to fail")
	}
	if _, err := NewCatalog(Definition{Name: "a", Required: []string{FilterCity}, Aggregate: noop}); err == nil {
		t.Fatalf("expected required filter outside Filters to fail")
	}
}
