package export

import (
	"github.com/goccy/go-json"

	"github.com/fastygo/crm-reports/usecase/report"
)

func encodeJSON(rep *report.Report) ([]byte, error) {
	return json.MarshalIndent(rep, "", "  ")
}
