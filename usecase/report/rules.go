package report

import (
	"fmt"

	"github.com/fastygo/crm-reports/domain"
)

// Rules holds the business constants the aggregations use.
type Rules struct {
	CommissionRate float64 `json:"commission_rate"`
	CLVMultiplier  float64 `json:"clv_multiplier"`

	VIPMaritalStatus string  `json:"vip_marital_status"`
	VIPMinPremium    float64 `json:"vip_min_premium"`
	VIPMinTenureDays int     `json:"vip_min_tenure_days"`
	VIPLimit         int     `json:"vip_limit"`

	ChurnWindowDays int `json:"churn_window_days"`
	HighRiskDays    int `json:"high_risk_days"`
	MediumRiskDays  int `json:"medium_risk_days"`

	GeoLimit int `json:"geo_limit"`

	CLVLimit         int     `json:"clv_limit"`
	CLVHighPremium   float64 `json:"clv_high_premium"`
	CLVMediumPremium float64 `json:"clv_medium_premium"`

	MarketMinCustomers int `json:"market_min_customers"`

	VerySatisfiedRate float64 `json:"very_satisfied_rate"`
	SatisfiedRate     float64 `json:"satisfied_rate"`
	NeutralRate       float64 `json:"neutral_rate"`
}

// DefaultRules returns the built-in business constants.
func DefaultRules() Rules {
	return Rules{
		CommissionRate:     0.15,
		CLVMultiplier:      1.2,
		VIPMaritalStatus:   domain.MaritalMarried,
		VIPMinPremium:      5000,
		VIPMinTenureDays:   730,
		VIPLimit:           50,
		ChurnWindowDays:    90,
		HighRiskDays:       30,
		MediumRiskDays:     60,
		GeoLimit:           20,
		CLVLimit:           100,
		CLVHighPremium:     15000,
		CLVMediumPremium:   8000,
		MarketMinCustomers: 10,
		VerySatisfiedRate:  90,
		SatisfiedRate:      70,
		NeutralRate:        50,
	}
}

// Validate rejects values no report can work with. Zero is a legitimate
// setting everywhere; a zero row limit means no limit.
func (r Rules) Validate() error {
	switch {
	case r.CommissionRate < 0 || r.CommissionRate >= 1:
		return fmt.Errorf("commission rate %v must be in [0, 1)", r.CommissionRate)
	case r.CLVMultiplier < 0:
		return fmt.Errorf("clv multiplier %v must not be negative", r.CLVMultiplier)
	case r.VIPMinPremium < 0 || r.VIPMinTenureDays < 0:
		return fmt.Errorf("vip thresholds must not be negative")
	case r.VIPLimit < 0 || r.GeoLimit < 0 || r.CLVLimit < 0:
		return fmt.Errorf("row limits must not be negative")
	case r.ChurnWindowDays < 0 || r.HighRiskDays < 0 || r.MediumRiskDays < 0:
		return fmt.Errorf("risk windows must not be negative")
	case r.HighRiskDays > r.MediumRiskDays:
		return fmt.Errorf("high risk window %d exceeds medium risk window %d", r.HighRiskDays, r.MediumRiskDays)
	case r.MarketMinCustomers < 0:
		return fmt.Errorf("market minimum customers must not be negative")
	}
	return nil
}

// limit truncates n to max; max <= 0 keeps everything.
func limit(n, max int) int {
	if max > 0 && n > max {
		return max
	}
	return n
}
