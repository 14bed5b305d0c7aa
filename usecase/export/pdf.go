package export

import (
	"bytes"
	_ "embed"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/fastygo/crm-reports/usecase/report"
)

const (
	pdfRowHeight = 6.0
	pdfFontSize  = 8.0
	pdfFont      = "dejavu"
)

// Core PDF fonts only cover cp1252, which has no Turkish dotless i or g-breve.
var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	dejaVuRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	dejaVuBold []byte
)

// encodePDF renders each table as a bordered grid on landscape A4 pages.
func encodePDF(rep *report.Report) ([]byte, error) {
	return renderPDF(rep, true)
}

func renderPDF(rep *report.Report, compress bool) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetTitle(rep.Title, true)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddUTF8FontFromBytes(pdfFont, "", dejaVuRegular)
	pdf.AddUTF8FontFromBytes(pdfFont, "B", dejaVuBold)
	if err := pdf.Error(); err != nil {
		return nil, err
	}

	pdf.AddPage()
	pdf.SetFont(pdfFont, "B", 16)
	pdf.CellFormat(0, 10, rep.Title, "", 1, "L", false, 0, "")
	pdf.SetFont(pdfFont, "", 9)
	pdf.CellFormat(0, 6, "Generated "+rep.GeneratedAt.UTC().Format(time.RFC1123), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Filters: "+filterSummary(rep.Filters), "", 1, "L", false, 0, "")

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right

	for _, table := range rep.Data.Tables() {
		pdf.Ln(4)
		pdf.SetFont(pdfFont, "B", 11)
		pdf.CellFormat(0, 8, strings.ReplaceAll(table.Name, "_", " "), "", 1, "L", false, 0, "")
		if len(table.Columns) == 0 {
			continue
		}
		width := usable / float64(len(table.Columns))

		header := func() {
			pdf.SetFont(pdfFont, "B", pdfFontSize)
			pdf.SetFillColor(236, 239, 241)
			for _, c := range table.Columns {
				pdf.CellFormat(width, pdfRowHeight, fitText(pdf, c, width), "1", 0, "L", true, 0, "")
			}
			pdf.Ln(-1)
			pdf.SetFont(pdfFont, "", pdfFontSize)
		}
		header()
		_, pageHeight := pdf.GetPageSize()
		_, _, _, bottom := pdf.GetMargins()
		for _, row := range table.Rows {
			if pdf.GetY()+pdfRowHeight > pageHeight-bottom {
				pdf.AddPage()
				header()
			}
			for _, v := range row {
				align := "L"
				switch v.(type) {
				case int, int64, float64:
					align = "R"
				}
				pdf.CellFormat(width, pdfRowHeight, fitText(pdf, formatCell(v), width), "1", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
		}
		if len(table.Rows) == 0 {
			pdf.CellFormat(usable, pdfRowHeight, "No data.", "1", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fitText truncates s so that it fits into a cell of the given width.
func fitText(pdf *fpdf.Fpdf, s string, width float64) string {
	limit := width - 2*pdf.GetCellMargin()
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
