package transport

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// AuthLoginRequest carries the identity provider's signed assertion for the user.
type AuthLoginRequest struct {
	Assertion string `json:"assertion"`
	TTL       int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}

// ReportRequest runs a report. When Export is set the result is also
// serialized into that format.
type ReportRequest struct {
	ReportName string    `json:"report_name"`
	Filters    FilterSet `json:"filters"`
	Export     string    `json:"export,omitempty"`
}

type ExportRequest struct {
	ReportName string    `json:"report_name"`
	Filters    FilterSet `json:"filters"`
	Format     string    `json:"format"`
}

// FilterSet accepts filter values as JSON strings, numbers or booleans and
// keeps them as strings for the filter normalizer.
type FilterSet map[string]string

func (f *FilterSet) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(FilterSet, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			out[key] = v
		case float64:
			out[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			out[key] = strconv.FormatBool(v)
		default:
			return fmt.Errorf("filter %q must be a scalar value", key)
		}
	}
	*f = out
	return nil
}
