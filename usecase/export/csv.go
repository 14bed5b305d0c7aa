package export

import (
	"bytes"
	"encoding/csv"

	"github.com/fastygo/crm-reports/usecase/report"
)

// encodeCSV writes every table as a header plus rows. Reports with several
// tables get a title record per table and a blank record between them.
func encodeCSV(rep *report.Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	tables := rep.Data.Tables()
	for i, table := range tables {
		if len(tables) > 1 {
			if i > 0 {
				if err := w.Write([]string{}); err != nil {
					return nil, err
				}
			}
			if err := w.Write([]string{table.Name}); err != nil {
				return nil, err
			}
		}
		if err := w.Write(table.Columns); err != nil {
			return nil, err
		}
		for _, row := range table.Rows {
			record := make([]string, len(row))
			for j, cell := range row {
				record[j] = formatCell(cell)
			}
			if err := w.Write(record); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
