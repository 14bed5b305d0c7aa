package export

import (
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fastygo/crm-reports/usecase/report"
)

const maxSheetName = 31

// encodeExcel writes a summary sheet followed by one sheet per table.
func encodeExcel(rep *report.Report) (out []byte, err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	const summary = "report"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	meta := [][]any{
		{"report", rep.Name},
		{"title", rep.Title},
		{"generated_at", rep.GeneratedAt.UTC().Format(time.RFC3339)},
		{"filters", filterSummary(rep.Filters)},
	}
	for i, row := range meta {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, err
		}
	}

	used := map[string]bool{summary: true}
	for _, table := range rep.Data.Tables() {
		name := sheetName(table.Name, used)
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
		columns := make([]any, len(table.Columns))
		for i, c := range table.Columns {
			columns[i] = c
		}
		if err := f.SetSheetRow(name, "A1", &columns); err != nil {
			return nil, err
		}
		if err := f.SetRowStyle(name, 1, 1, header); err != nil {
			return nil, err
		}
		for i, row := range table.Rows {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return nil, err
			}
			values := append([]any(nil), row...)
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sheetName(name string, used map[string]bool) string {
	if name == "" {
		name = "data"
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	candidate := name
	for i := 2; used[candidate]; i++ {
		suffix := "_" + strconv.Itoa(i)
		base := name
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		candidate = base + suffix
	}
	used[candidate] = true
	return candidate
}
