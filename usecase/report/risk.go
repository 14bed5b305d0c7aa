package report

import (
	"sort"

	"github.com/fastygo/crm-reports/domain"
)

type ChurnRiskRow struct {
	CustomerID    int64             `json:"customer_id"`
	CustomerName  string            `json:"customer_name"`
	PolicyID      int64             `json:"policy_id"`
	PolicyNumber  string            `json:"policy_number"`
	PolicyType    domain.PolicyType `json:"policy_type"`
	EndDate       string            `json:"end_date"`
	DaysToRenewal int               `json:"days_to_renewal"`
	Premium       float64           `json:"premium_amount"`
	RiskLevel     string            `json:"risk_level"`
}

type PaymentDelayRow struct {
	CustomerID   int64             `json:"customer_id"`
	CustomerName string            `json:"customer_name"`
	PolicyID     int64             `json:"policy_id"`
	PolicyNumber string            `json:"policy_number"`
	PolicyType   domain.PolicyType `json:"policy_type"`
	Premium      float64           `json:"premium_amount"`
}

// Risk is the risk_analysis result.
type Risk struct {
	ChurnRisk     []ChurnRiskRow    `json:"churn_risk"`
	PaymentDelays []PaymentDelayRow `json:"payment_delays"`
}

func (Risk) isResult() {}

func (r Risk) Tables() []domain.Table {
	churn := domain.Table{Name: "churn_risk", Columns: []string{
		"customer_id", "customer_name", "policy_number", "policy_type", "end_date", "days_to_renewal", "premium_amount", "risk_level",
	}}
	for _, row := range r.ChurnRisk {
		churn.Rows = append(churn.Rows, []any{row.CustomerID, row.CustomerName, row.PolicyNumber, string(row.PolicyType),
			row.EndDate, row.DaysToRenewal, row.Premium, row.RiskLevel})
	}
	delays := domain.Table{Name: "payment_delays", Columns: []string{
		"customer_id", "customer_name", "policy_number", "policy_type", "premium_amount",
	}}
	for _, row := range r.PaymentDelays {
		delays.Rows = append(delays.Rows, []any{row.CustomerID, row.CustomerName, row.PolicyNumber, string(row.PolicyType), row.Premium})
	}
	return []domain.Table{churn, delays}
}

// aggregateRisk lists active policies due for renewal within the churn window
// and active policies with overdue payments. Policies already past their end
// date while still active carry negative days and rank as high risk.
func aggregateRisk(pred domain.Predicate, snap *domain.Snapshot, env Env) Result {
	rules := env.Rules
	customers, _ := customerSet(pred, snap, env.Now, false)
	policies := scopedPolicies(pred, snap, policyScope{byType: true, activeOnly: true, customers: customers})

	type churnEntry struct {
		row ChurnRiskRow
		end int64
	}
	var (
		churn  []churnEntry
		delays []PaymentDelayRow
	)
	for _, p := range policies {
		c := customers[p.CustomerID]
		if c == nil {
			continue
		}

		days := domain.DaysBetween(env.Now, p.EndDate)
		if days <= rules.ChurnWindowDays {
			level := rules.RiskLevel(days)
			if pred.MatchesRisk(level) {
				churn = append(churn, churnEntry{
					row: ChurnRiskRow{
						CustomerID:    c.ID,
						CustomerName:  c.FullName(),
						PolicyID:      p.ID,
						PolicyNumber:  p.PolicyNumber,
						PolicyType:    p.Type,
						EndDate:       dateString(p.EndDate),
						DaysToRenewal: days,
						Premium:       round2(p.Premium),
						RiskLevel:     level,
					},
					end: p.EndDate.Unix(),
				})
			}
		}

		if p.IsOverdue() {
			delays = append(delays, PaymentDelayRow{
				CustomerID:   c.ID,
				CustomerName: c.FullName(),
				PolicyID:     p.ID,
				PolicyNumber: p.PolicyNumber,
				PolicyType:   p.Type,
				Premium:      round2(p.Premium),
			})
		}
	}

	sort.SliceStable(churn, func(i, j int) bool {
		if churn[i].end != churn[j].end {
			return churn[i].end < churn[j].end
		}
		return churn[i].row.PolicyID < churn[j].row.PolicyID
	})
	sort.SliceStable(delays, func(i, j int) bool {
		if delays[i].Premium != delays[j].Premium {
			return delays[i].Premium > delays[j].Premium
		}
		return delays[i].PolicyID < delays[j].PolicyID
	})

	out := Risk{ChurnRisk: make([]ChurnRiskRow, 0, len(churn)), PaymentDelays: delays}
	for _, e := range churn {
		out.ChurnRisk = append(out.ChurnRisk, e.row)
	}
	if out.PaymentDelays == nil {
		out.PaymentDelays = []PaymentDelayRow{}
	}
	return out
}
