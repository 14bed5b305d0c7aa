package report

import (
	"sort"

	"github.com/fastygo/crm-reports/domain"
)

type ConversionRow struct {
	PolicyType     domain.PolicyType `json:"policy_type"`
	Quotes         int               `json:"total_quotes"`
	Converted      int               `json:"converted_policies"`
	ConversionRate float64           `json:"conversion_rate"`
	AvgQuote       float64           `json:"avg_quote_amount"`
	AvgConverted   float64           `json:"avg_converted_amount"`
}

// Conversion is the quote_conversion result.
type Conversion struct {
	Types []ConversionRow `json:"conversion_stats"`
}

func (Conversion) isResult() {}

func (c Conversion) Tables() []domain.Table {
	t := domain.Table{Name: "quote_conversion", Columns: []string{
		"policy_type", "total_quotes", "converted_policies", "conversion_rate", "avg_quote_amount", "avg_converted_amount",
	}}
	for _, r := range c.Types {
		t.Rows = append(t.Rows, []any{string(r.PolicyType), r.Quotes, r.Converted, r.ConversionRate, r.AvgQuote, r.AvgConverted})
	}
	return []domain.Table{t}
}

// aggregateQuoteConversion reports every policy type, or only the filtered
// one, so that types without quotes show a 0 rate instead of disappearing.
func aggregateQuoteConversion(pred domain.Predicate, snap *domain.Snapshot, _ Env) Result {
	converted := make(map[int64][]*domain.Policy)
	for i := range snap.Policies {
		p := &snap.Policies[i]
		if p.OfferID != nil {
			converted[*p.OfferID] = append(converted[*p.OfferID], p)
		}
	}

	type acc struct {
		quotes, converted       int
		quoteSum, convertedSum  float64
		convertedPremiumEntries int
	}
	byType := make(map[domain.PolicyType]*acc)
	types := domain.PolicyTypes
	if pred.PolicyType != "" {
		types = []domain.PolicyType{pred.PolicyType}
	}
	for _, t := range types {
		byType[t] = &acc{}
	}

	for i := range snap.Offers {
		o := &snap.Offers[i]
		if !pred.InRange(o.CreatedAt) || !pred.MatchesPolicyType(o.Type) {
			continue
		}
		a, ok := byType[o.Type]
		if !ok {
			// Offers carrying a type outside the enum still count.
			a = &acc{}
			byType[o.Type] = a
			types = append(types, o.Type)
		}
		a.quotes++
		a.quoteSum += o.Premium
		if policies := converted[o.ID]; len(policies) > 0 {
			a.converted++
			for _, p := range policies {
				a.convertedSum += p.Premium
				a.convertedPremiumEntries++
			}
		}
	}

	rows := make([]ConversionRow, 0, len(types))
	for _, t := range types {
		a := byType[t]
		rows = append(rows, ConversionRow{
			PolicyType:     t,
			Quotes:         a.quotes,
			Converted:      a.converted,
			ConversionRate: percent(float64(a.converted), float64(a.quotes)),
			AvgQuote:       round2(ratio(a.quoteSum, float64(a.quotes))),
			AvgConverted:   round2(ratio(a.convertedSum, float64(a.convertedPremiumEntries))),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ConversionRate != b.ConversionRate {
			return a.ConversionRate > b.ConversionRate
		}
		if a.Quotes != b.Quotes {
			return a.Quotes > b.Quotes
		}
		return a.PolicyType.Rank() < b.PolicyType.Rank()
	})
	return Conversion{Types: rows}
}
