package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jcb91/doorstop/internal/outline"
)

// CSVParser handles CSV requirement exports. The first row is treated as
// headers; every following row becomes one candidate. A "text" column
// (case-insensitive) supplies the body when present, otherwise the whole
// row is rendered as "header: value" lines. A "title" or "name" column
// supplies the section title.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*outline.Outline, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	o := &outline.Outline{Title: stripExt(filename, ".csv")}
	if len(records) < 2 {
		return o, nil
	}

	headers := records[0]
	textCol, titleCol := -1, -1
	for i, h := range headers {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "text":
			textCol = i
		case "title", "name":
			titleCol = i
		}
	}

	for rowNum, row := range records[1:] {
		var title, text string
		if titleCol >= 0 && titleCol < len(row) {
			title = strings.TrimSpace(row[titleCol])
		}
		if textCol >= 0 && textCol < len(row) {
			text = strings.TrimSpace(row[textCol])
		}
		if text == "" {
			var b strings.Builder
			for i, cell := range row {
				cell = strings.TrimSpace(cell)
				if cell == "" {
					continue
				}
				if b.Len() > 0 {
					b.WriteString("\n")
				}
				if i < len(headers) {
					b.WriteString(headers[i] + ": " + cell)
				} else {
					b.WriteString(cell)
				}
			}
			text = b.String()
		}
		if text == "" {
			continue
		}
		if title == "" {
			title = fmt.Sprintf("Row %d", rowNum+2) // 1-indexed, skip header
		}
		o.Sections = append(o.Sections, &outline.Section{Title: title, Text: text})
	}

	return o, nil
}
