// Package menuimport converts spreadsheet rows into menu items. The first
// row is a header; each following row holds name, nutrition and allergens.
package menuimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/roboco-io/pubrender/internal/model"
)

// FromRows maps rows to menu items. The header row and rows with a blank
// name are skipped; missing trailing cells become empty strings.
func FromRows(rows [][]string) []model.MenuItem {
	if len(rows) <= 1 {
		return nil
	}
	items := make([]model.MenuItem, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := cell(row, 0)
		if name == "" {
			continue
		}
		items = append(items, model.MenuItem{
			Name:      name,
			Nutrition: cell(row, 1),
			Allergens: cell(row, 2),
		})
	}
	return items
}

// FromCSV reads comma separated rows and maps them with FromRows.
func FromCSV(r io.Reader) ([]model.MenuItem, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read menu csv: %w", err)
	}
	return FromRows(rows), nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
