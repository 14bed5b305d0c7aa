package export

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fastygo/crm-reports/domain"
	"github.com/fastygo/crm-reports/usecase/report"
)

// Format is a canonical export representation.
type Format string

const (
	FormatCSV        Format = "csv"
	FormatExcel      Format = "excel"
	FormatPowerPoint Format = "powerpoint"
	FormatPDF        Format = "pdf"
	FormatJSON       Format = "json"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatCSV, FormatExcel, FormatPowerPoint, FormatPDF, FormatJSON}

var formatAliases = map[string]Format{
	"csv":          FormatCSV,
	"excel":        FormatExcel,
	"xlsx":         FormatExcel,
	"tabular":      FormatExcel,
	"powerpoint":   FormatPowerPoint,
	"presentation": FormatPowerPoint,
	"slides":       FormatPowerPoint,
	"pdf":          FormatPDF,
	"json":         FormatJSON,
}

type encoder struct {
	ext         string
	contentType string
	encode      func(*report.Report) ([]byte, error)
}

var encoders = map[Format]encoder{
	FormatCSV:        {ext: "csv", contentType: "text/csv; charset=utf-8", encode: encodeCSV},
	FormatExcel:      {ext: "xlsx", contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", encode: encodeExcel},
	FormatPowerPoint: {ext: "html", contentType: "text/html; charset=utf-8", encode: encodeSlides},
	FormatPDF:        {ext: "pdf", contentType: "application/pdf", encode: encodePDF},
	FormatJSON:       {ext: "json", contentType: "application/json", encode: encodeJSON},
}

// ParseFormat resolves a format name or alias.
func ParseFormat(value string) (Format, error) {
	f, ok := formatAliases[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return "", domain.FieldError(domain.ErrCodeUnsupportedFormat, "format",
			fmt.Sprintf("unsupported export format %q", value))
	}
	return f, nil
}

// formatCell renders a table cell for text based formats.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func filterSummary(filters map[string]string) string {
	if len(filters) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+filters[k])
	}
	return strings.Join(parts, ", ")
}
