package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// csvBatch is the number of data rows per table section.
const csvBatch = 20

// CSVLoader renders CSV as GFM tables, one section per batch of rows, each
// repeating the header.
type CSVLoader struct{}

func (l *CSVLoader) Load(r io.Reader, filename string) (string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	headers := records[0]
	width := len(headers)
	for _, rec := range records[1:] {
		if len(rec) > width {
			width = len(rec)
		}
	}

	var out strings.Builder
	dataRows := records[1:]
	if len(dataRows) == 0 {
		writeTable(&out, headers, nil, width)
		return out.String(), nil
	}
	for i := 0; i < len(dataRows); i += csvBatch {
		end := min(i+csvBatch, len(dataRows))
		if i > 0 {
			out.WriteString("\n\n")
		}
		fmt.Fprintf(&out, "## Rows %d-%d\n\n", i+2, end+1) // 1-indexed, skip header
		writeTable(&out, headers, dataRows[i:end], width)
	}
	return out.String(), nil
}

func writeTable(out *strings.Builder, headers []string, rows [][]string, width int) {
	writeRow(out, headers, width)
	out.WriteString("\n|")
	for range width {
		out.WriteString(" --- |")
	}
	for _, row := range rows {
		out.WriteString("\n")
		writeRow(out, row, width)
	}
}

func writeRow(out *strings.Builder, cells []string, width int) {
	out.WriteString("|")
	for i := 0; i < width; i++ {
		cell := ""
		if i < len(cells) {
			cell = escapeCell(cells[i])
		}
		out.WriteString(" " + cell + " |")
	}
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

func escapeCell(s string) string {
	return cellEscaper.Replace(strings.TrimSpace(s))
}
