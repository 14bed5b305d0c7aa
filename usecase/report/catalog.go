package report

import (
	"fmt"
	"strings"

	"github.com/fastygo/crm-reports/domain"
	"github.com/fastygo/crm-reports/repository"
)

// Report names.
const (
	CustomerDemographics      = "customer_demographics"
	VIPCustomers              = "vip_customers"
	RiskAnalysis              = "risk_analysis"
	PolicyPerformance         = "policy_performance"
	RepresentativePerformance = "representative_performance"
	QuoteConversion           = "quote_conversion"
	ProfitabilityReport       = "profitability"
	GeographicDistribution    = "geographic_distribution"
	CustomerLifetimeValue     = "customer_lifetime_value"
	MarketAnalysis            = "market_analysis"
	TaskPerformance           = "task_performance"
	CustomerSatisfaction      = "customer_satisfaction"
)

// ManagementRoleLevel is the highest role level allowed to open restricted reports.
const ManagementRoleLevel = 3

// AggregateFunc computes a report from a predicate and a snapshot. It must not
// mutate the snapshot.
type AggregateFunc func(pred domain.Predicate, snap *domain.Snapshot, env Env) Result

// Definition describes one named report.
type Definition struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Aliases     []string `json:"aliases,omitempty"`
	// Filters lists the keys the report honours; others are validated and ignored.
	Filters  []string `json:"filters"`
	Required []string `json:"required,omitempty"`
	// DateScope names the entity whose creation time the date range restricts.
	DateScope repository.Entity   `json:"date_scope,omitempty"`
	Entities  []repository.Entity `json:"entities"`
	// PolicyStatuses narrows the policies loaded for the report.
	PolicyStatuses []domain.PolicyStatus `json:"-"`
	MaxRoleLevel   int                   `json:"max_role_level,omitempty"`
	Aggregate      AggregateFunc         `json:"-"`
}

func (d *Definition) honours(key string) bool {
	for _, f := range d.Filters {
		if f == key {
			return true
		}
	}
	return false
}

// restrict drops the parts of p the report does not honour.
func (d *Definition) restrict(p domain.Predicate) domain.Predicate {
	raw := p.Raw()
	canonical := make(map[string]string)
	keep := func(key string) bool {
		if !d.honours(key) {
			return false
		}
		if v, ok := raw[key]; ok {
			canonical[key] = v
		}
		return true
	}

	var out domain.Predicate
	if keep(FilterStartDate) && keep(FilterEndDate) {
		out.Range = p.Range
	} else {
		delete(canonical, FilterStartDate)
	}
	if keep(FilterPolicyType) {
		out.PolicyType = p.PolicyType
	}
	if keep(FilterMinPremium) {
		out.MinPremium = p.MinPremium
	}
	if keep(FilterMinDurationDays) {
		out.MinDurationDays = p.MinDurationDays
	}
	if keep(FilterCity) {
		out.City = p.City
	}
	if keep(FilterRiskLevel) {
		out.RiskLevel = p.RiskLevel
	}
	if keep(FilterMaritalStatus) {
		out.MaritalStatus = p.MaritalStatus
	}
	if keep(FilterAgeGroup) {
		out.AgeGroup = p.AgeGroup
	}
	return domain.NewPredicate(out, canonical)
}

func (d *Definition) needs(e repository.Entity) bool {
	for _, candidate := range d.Entities {
		if candidate == e {
			return true
		}
	}
	return false
}

// Catalog is an immutable registry of report definitions.
type Catalog struct {
	defs  []*Definition
	index map[string]*Definition
}

// NewCatalog registers defs in order. Names and aliases must be unique.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	c := &Catalog{index: make(map[string]*Definition, len(defs))}
	for i := range defs {
		def := defs[i]
		if def.Name == "" {
			return nil, fmt.Errorf("report definition %d has no name", i)
		}
		if def.Aggregate == nil {
			return nil, fmt.Errorf("report %q has no aggregation", def.Name)
		}
		for _, key := range def.Required {
			if !def.honours(key) {
				return nil, fmt.Errorf("report %q requires filter %q it does not honour", def.Name, key)
			}
		}
		def.Filters = append([]string(nil), def.Filters...)
		def.Required = append([]string(nil), def.Required...)
		def.Entities = append([]repository.Entity(nil), def.Entities...)
		def.Aliases = append([]string(nil), def.Aliases...)
		def.PolicyStatuses = append([]domain.PolicyStatus(nil), def.PolicyStatuses...)

		ptr := &def
		for _, key := range append([]string{def.Name}, def.Aliases...) {
			if _, exists := c.index[key]; exists {
				return nil, fmt.Errorf("duplicate report name %q", key)
			}
			c.index[key] = ptr
		}
		c.defs = append(c.defs, ptr)
	}
	return c, nil
}

// Lookup resolves a report name or alias.
func (c *Catalog) Lookup(name string) (*Definition, error) {
	def, ok := c.index[strings.TrimSpace(name)]
	if !ok {
		return nil, domain.FieldError(domain.ErrCodeUnknownReport, "report_name",
			fmt.Sprintf("unknown report %q", name))
	}
	return def, nil
}

// Definitions returns copies of the definitions in registration order.
func (c *Catalog) Definitions() []Definition {
	out := make([]Definition, len(c.defs))
	for i, def := range c.defs {
		cp := *def
		cp.Filters = append([]string(nil), def.Filters...)
		cp.Required = append([]string(nil), def.Required...)
		cp.Entities = append([]repository.Entity(nil), def.Entities...)
		cp.Aliases = append([]string(nil), def.Aliases...)
		cp.PolicyStatuses = append([]domain.PolicyStatus(nil), def.PolicyStatuses...)
		out[i] = cp
	}
	return out
}

var (
	dateFilters     = []string{FilterStartDate, FilterEndDate}
	customerFilters = []string{FilterCity, FilterMaritalStatus, FilterAgeGroup}
)

func keys(groups ...[]string) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// DefaultCatalog returns the twelve CRM reports.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		Definition{
			Name:        CustomerDemographics,
			Title:       "Customer Demographics",
			Description: "Customers by age group, gender and marital status with their premium.",
			Filters:     keys(dateFilters, customerFilters, []string{FilterPolicyType}),
			DateScope:   repository.EntityCustomers,
			Entities:    []repository.Entity{repository.EntityCustomers, repository.EntityPolicies},
			Aggregate:   aggregateDemographics,
		},
		Definition{
			Name:        VIPCustomers,
			Title:       "VIP Customers",
			Description: "Long-standing married customers with high total premium.",
			Filters:     []string{FilterMinPremium, FilterMinDurationDays, FilterCity},
			Entities:    []repository.Entity{repository.EntityCustomers, repository.EntityPolicies},
			Aggregate:   aggregateVIP,
		},
		Definition{
			Name:           RiskAnalysis,
			Title:          "Risk Analysis",
			Description:    "Active policies approaching renewal and overdue payments.",
			Filters:        keys([]string{FilterRiskLevel, FilterPolicyType}, customerFilters),
			Entities:       []repository.Entity{repository.EntityCustomers, repository.EntityPolicies},
			PolicyStatuses: []domain.PolicyStatus{domain.PolicyActive},
			Aggregate:      aggregateRisk,
		},
		Definition{
			Name:        PolicyPerformance,
			Title:       "Policy Performance",
			Description: "Policy counts and premium by type and by month of issue.",
			Filters:     keys(dateFilters, []string{FilterPolicyType}, customerFilters),
			DateScope:   repository.EntityPolicies,
			Entities:    []repository.Entity{repository.EntityCustomers, repository.EntityPolicies},
			Aggregate:   aggregatePolicyPerformance,
		},
		Definition{
			Name:         RepresentativePerformance,
			Title:        "Representative Performance",
			Description:  "Production of every active representative.",
			Filters:      keys(dateFilters, []string{FilterPolicyType, FilterCity}),
			DateScope:    repository.EntityPolicies,
			Entities:     []repository.Entity{repository.EntityCustomers, repository.EntityPolicies, repository.EntityRepresentatives},
			MaxRoleLevel: ManagementRoleLevel,
			Aggregate:    aggregateRepresentativePerformance,
		},
		Definition{
			Name:        QuoteConversion,
			Title:       "Quote Conversion",
			Description: "Share of quotes converted into policies, by policy type.",
			Filters:     keys(dateFilters, []string{FilterPolicyType}),
			DateScope:   repository.EntityOffers,
			Entities:    []repository.Entity{repository.EntityOffers, repository.EntityPolicies},
			Aggregate:   aggregateQuoteConversion,
		},
		Definition{
			Name:           ProfitabilityReport,
			Title:          "Profitability",
			Description:    "Estimated commission and cost of active policies.",
			Filters:        keys(dateFilters, []string{FilterPolicyType, FilterCity}),
			DateScope:      repository.EntityPolicies,
			Entities:       []repository.Entity{repository.EntityCustomers, repository.EntityPolicies},
			PolicyStatuses: []domain.PolicyStatus{domain.PolicyActive},
			MaxRoleLevel:   ManagementRoleLevel,
			Aggregate:      aggregateProfitability,
		},
		Definition{
			Name:        GeographicDistribution,
			Title:       "Geographic Distribution",
			Description: "Customers and premium by city and district.",
			Aliases:     []string{"geographic"},
			Filters:     keys(dateFilters, []string{FilterCity, FilterPolicyType}),
			DateScope:   repository.EntityCustomers,
			Entities:    []repository.Entity{repository.EntityCustomers, repository.EntityPolicies},
			Aggregate:   aggregateGeographic,
		},
		Definition{
			Name:        CustomerLifetimeValue,
			Title:       "Customer Lifetime Value",
			Description: "Estimated lifetime value and segment of each customer.",
			Filters:     keys(customerFilters, []string{FilterPolicyType, FilterMinPremium}),
			Entities:    []repository.Entity{repository.EntityCustomers, repository.EntityPolicies},
			Aggregate:   aggregateCLV,
		},
		Definition{
			Name:        MarketAnalysis,
			Title:       "Market Analysis",
			Description: "Policy penetration per city and premium share per policy type.",
			Filters:     []string{FilterCity, FilterPolicyType},
			Entities:    []repository.Entity{repository.EntityCustomers, repository.EntityPolicies},
			Aggregate:   aggregateMarket,
		},
		Definition{
			Name:         TaskPerformance,
			Title:        "Task Performance",
			Description:  "Task completion of every active representative.",
			Filters:      dateFilters,
			DateScope:    repository.EntityTasks,
			Entities:     []repository.Entity{repository.EntityRepresentatives, repository.EntityTasks},
			MaxRoleLevel: ManagementRoleLevel,
			Aggregate:    aggregateTaskPerformance,
		},
		Definition{
			Name:        CustomerSatisfaction,
			Title:       "Customer Satisfaction",
			Description: "Retention-based satisfaction proxy per customer.",
			Filters:     keys(customerFilters, []string{FilterPolicyType}),
			Entities:    []repository.Entity{repository.EntityCustomers, repository.EntityPolicies},
			Aggregate:   aggregateSatisfaction,
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}
