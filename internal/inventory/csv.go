package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// valueHeaders are column names that hold resistor values in a BOM export.
var valueHeaders = map[string]bool{
	"value":      true,
	"values":     true,
	"resistance": true,
	"resistor":   true,
	"ohms":       true,
	"comment":    true,
}

// toleranceHeaders name an optional tolerance column whose cell is appended
// to the value before parsing.
var toleranceHeaders = map[string]bool{
	"tolerance": true,
	"tol":       true,
}

// CSVParser handles CSV files. When the header row names a value column
// only that column (plus any tolerance column) is read; otherwise every
// cell of every row is scanned.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &Document{Name: baseName(filename)}
	if len(records) == 0 {
		return doc, nil
	}

	valueCol, tolCol := -1, -1
	for i, h := range records[0] {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case valueHeaders[h] && valueCol < 0:
			valueCol = i
		case toleranceHeaders[h] && tolCol < 0:
			tolCol = i
		}
	}

	if valueCol < 0 {
		for i, row := range records {
			doc.add(fmt.Sprintf("row %d", i+1), strings.Join(row, ", "))
		}
		return doc, nil
	}

	for i, row := range records[1:] {
		if valueCol >= len(row) {
			continue
		}
		text := row[valueCol]
		if tolCol >= 0 && tolCol < len(row) && strings.TrimSpace(row[tolCol]) != "" {
			tol := strings.TrimSpace(row[tolCol])
			if !strings.HasSuffix(tol, "%") {
				tol += "%"
			}
			text += " " + tol
		}
		doc.add(fmt.Sprintf("row %d", i+2), text)
	}
	return doc, nil
}
