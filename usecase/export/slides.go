package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/fastygo/crm-reports/usecase/report"
)

// slideRenderer renders GFM tables. Raw HTML stays disabled.
var slideRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

const slideStyle = `body{font-family:sans-serif;margin:0;background:#eceff1}
section.slide{background:#fff;margin:24px auto;padding:32px 48px;max-width:1100px;box-shadow:0 1px 4px rgba(0,0,0,.2);page-break-after:always}
table{border-collapse:collapse;width:100%}th,td{border:1px solid #cfd8dc;padding:4px 8px;text-align:left}th{background:#eceff1}`

// encodeSlides renders a Markdown deck, one slide per table, into a single
// self-contained HTML document.
func encodeSlides(rep *report.Report) ([]byte, error) {
	slides := []string{titleSlide(rep)}
	for _, table := range rep.Data.Tables() {
		slides = append(slides, tableSlide(table.Name, table.Columns, table.Rows))
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n<style>%s</style>\n</head>\n<body>\n",
		html.EscapeString(rep.Title), slideStyle)
	for _, md := range slides {
		out.WriteString("<section class=\"slide\">\n")
		if err := slideRenderer.Convert([]byte(md), &out); err != nil {
			return nil, err
		}
		out.WriteString("</section>\n")
	}
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}

func titleSlide(rep *report.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", markdownText(rep.Title))
	fmt.Fprintf(&b, "Generated %s\n\n", rep.GeneratedAt.UTC().Format(time.RFC1123))
	fmt.Fprintf(&b, "Filters: %s\n", markdownText(filterSummary(rep.Filters)))
	return b.String()
}

func tableSlide(name string, columns []string, rows [][]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", markdownText(strings.ReplaceAll(name, "_", " ")))
	if len(rows) == 0 {
		b.WriteString("No data.\n")
		return b.String()
	}
	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" ")
			b.WriteString(markdownCell(c))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	writeRow(columns)
	sep := make([]string, len(columns))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(sep)
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		writeRow(cells)
	}
	return b.String()
}

func markdownCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(markdownText(s), "|", `\|`)
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "<", "&lt;", ">", "&gt;", "#", `\#`,
)

func markdownText(s string) string {
	return markdownEscaper.Replace(s)
}
