package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fastygo/crm-reports/domain"
)

// Filter keys understood by Normalize.
const (
	FilterStartDate       = "start_date"
	FilterEndDate         = "end_date"
	FilterPolicyType      = "policy_type"
	FilterMinPremium      = "min_premium"
	FilterMinDurationDays = "min_duration_days"
	FilterCity            = "city"
	FilterRiskLevel       = "risk_level"
	FilterMaritalStatus   = "marital_status"
	FilterAgeGroup        = "age_group"

	filterMinDurationAlias = "min_duration"
)

const dateLayout = "2006-01-02"

// Normalize validates raw filter values and builds the canonical predicate.
// Empty values count as absent and unknown keys are ignored. The function is
// pure: identical input always yields an identical predicate or error.
func Normalize(raw map[string]string) (domain.Predicate, error) {
	get := func(key string) string {
		return strings.TrimSpace(raw[key])
	}

	var (
		p         domain.Predicate
		canonical = make(map[string]string)
	)

	start, end := get(FilterStartDate), get(FilterEndDate)
	switch {
	case start == "" && end == "":
	case start == "" || end == "":
		missing := FilterStartDate
		if end == "" {
			missing = FilterEndDate
		}
		return domain.Predicate{}, domain.FieldError(domain.ErrCodeIncompleteRange, missing,
			"start_date and end_date must be supplied together")
	default:
		from, err := parseDate(FilterStartDate, start)
		if err != nil {
			return domain.Predicate{}, err
		}
		to, err := parseDate(FilterEndDate, end)
		if err != nil {
			return domain.Predicate{}, err
		}
		if from.After(to) {
			return domain.Predicate{}, domain.FieldError(domain.ErrCodeInvalidRange, FilterStartDate,
				fmt.Sprintf("start_date %s is after end_date %s", start, end))
		}
		p.Range = &domain.DateRange{Start: from, End: to}
		canonical[FilterStartDate] = from.Format(dateLayout)
		canonical[FilterEndDate] = to.Format(dateLayout)
	}

	if v := get(FilterPolicyType); v != "" {
		t, ok := domain.ParsePolicyType(v)
		if !ok {
			return domain.Predicate{}, domain.FieldError(domain.ErrCodeInvalidFilter, FilterPolicyType,
				fmt.Sprintf("unknown policy_type %q", v))
		}
		p.PolicyType = t
		canonical[FilterPolicyType] = string(t)
	}

	if v := get(FilterMinPremium); v != "" {
		n, err := parseNonNegative(FilterMinPremium, v)
		if err != nil {
			return domain.Predicate{}, err
		}
		p.MinPremium = &n
		canonical[FilterMinPremium] = strconv.FormatInt(n, 10)
	}

	duration := get(FilterMinDurationDays)
	if duration == "" {
		duration = get(filterMinDurationAlias)
	}
	if duration != "" {
		n, err := parseNonNegative(FilterMinDurationDays, duration)
		if err != nil {
			return domain.Predicate{}, err
		}
		p.MinDurationDays = &n
		canonical[FilterMinDurationDays] = strconv.FormatInt(n, 10)
	}

	if v := get(FilterCity); v != "" {
		p.City = v
		canonical[FilterCity] = v
	}

	// Unrecognised enum values are kept so that they match nothing.
	if v := get(FilterRiskLevel); v != "" {
		p.RiskLevel = normalizeRiskLevel(v)
		canonical[FilterRiskLevel] = p.RiskLevel
	}
	if v := get(FilterMaritalStatus); v != "" {
		p.MaritalStatus = domain.NormalizeMaritalStatus(v)
		canonical[FilterMaritalStatus] = p.MaritalStatus
	}
	if v := get(FilterAgeGroup); v != "" {
		p.AgeGroup = strings.ToLower(v)
		canonical[FilterAgeGroup] = p.AgeGroup
	}

	return domain.NewPredicate(p, canonical), nil
}

var riskAliases = map[string]string{
	"yüksek": domain.RiskHigh,
	"yuksek": domain.RiskHigh,
	"orta":   domain.RiskMedium,
	"düşük":  domain.RiskLow,
	"dusuk":  domain.RiskLow,
}

func normalizeRiskLevel(v string) string {
	v = strings.ToLower(v)
	if alias, ok := riskAliases[v]; ok {
		return alias
	}
	return v
}

func parseDate(key, value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, domain.FieldError(domain.ErrCodeInvalidFilter, key,
			fmt.Sprintf("%s must be a YYYY-MM-DD date, got %q", key, value))
	}
	return t, nil
}

func parseNonNegative(key, value string) (int64, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n < 0 {
		return 0, domain.FieldError(domain.ErrCodeInvalidFilter, key,
			fmt.Sprintf("%s must be a non-negative integer, got %q", key, value))
	}
	return n, nil
}
