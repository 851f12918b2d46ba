package dashboard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPageSize is the number of rows shown per data-table page.
const DefaultPageSize = 10

// Dataset is a row-labeled table. The label column usually holds years.
type Dataset struct {
	Name        string
	LabelColumn string
	Columns     []string
	Rows        []DatasetRow
}

// DatasetRow holds one labeled row of values aligned with Dataset.Columns.
type DatasetRow struct {
	Label  string
	Values []decimal.NullDecimal
}

// AllColumns returns the label column followed by the value columns.
func (ds *Dataset) AllColumns() []string {
	out := make([]string, 0, len(ds.Columns)+1)
	out = append(out, ds.LabelColumn)
	return append(out, ds.Columns...)
}

// Records converts the dataset into one map per row keyed by column name.
// Null values are kept as nil.
func (ds *Dataset) Records() []map[string]any {
	records := make([]map[string]any, len(ds.Rows))
	for i, row := range ds.Rows {
		record := make(map[string]any, len(ds.Columns)+1)
		record[ds.LabelColumn] = row.Label
		for j, column := range ds.Columns {
			if j >= len(row.Values) || !row.Values[j].Valid {
				record[column] = nil
				continue
			}
			record[column] = row.Values[j].Decimal
		}
		records[i] = record
	}
	return records
}

// ColumnIndex returns the position of a value column.
func (ds *Dataset) ColumnIndex(name string) int {
	for i, column := range ds.Columns {
		if column == name {
			return i
		}
	}
	return -1
}

// Series extracts the non-null (year, value) pairs of a column. Rows whose
// label is not an integer year are skipped.
func (ds *Dataset) Series(column string) (years []int, values []float64) {
	idx := ds.ColumnIndex(column)
	if idx < 0 {
		return nil, nil
	}
	for _, row := range ds.Rows {
		year, ok := parseYear(row.Label)
		if !ok || idx >= len(row.Values) || !row.Values[idx].Valid {
			continue
		}
		years = append(years, year)
		values = append(values, row.Values[idx].Decimal.InexactFloat64())
	}
	return years, values
}

// Validate checks the invariants a dataset must satisfy before it is served.
func (ds *Dataset) Validate() error {
	if ds == nil {
		return errors.New("dataset is nil")
	}
	if ds.LabelColumn == "" {
		return fmt.Errorf("table %s has no label column", ds.Name)
	}
	if len(ds.Columns) == 0 {
		return fmt.Errorf("table %s has no value columns", ds.Name)
	}
	if len(ds.Rows) == 0 {
		return fmt.Errorf("table %s has no rows", ds.Name)
	}
	seen := make(map[string]struct{}, len(ds.Rows))
	for i, row := range ds.Rows {
		if strings.TrimSpace(row.Label) == "" {
			return fmt.Errorf("table %s row %d has an empty label", ds.Name, i)
		}
		if _, dup := seen[row.Label]; dup {
			return fmt.Errorf("table %s repeats row label %s", ds.Name, row.Label)
		}
		seen[row.Label] = struct{}{}
		if len(row.Values) != len(ds.Columns) {
			return fmt.Errorf("table %s row %s has %d values, want %d", ds.Name, row.Label, len(row.Values), len(ds.Columns))
		}
	}
	return nil
}

// PageWindow describes one page of a paginated dataset.
type PageWindow struct {
	Page      int `json:"page"`
	PageSize  int `json:"page_size"`
	PageCount int `json:"page_count"`
	Start     int `json:"start"`
	End       int `json:"end"`
	Total     int `json:"total"`
}

// HasPrev reports whether a previous page exists.
func (w PageWindow) HasPrev() bool { return w.Page > 1 }

// HasNext reports whether a following page exists.
func (w PageWindow) HasNext() bool { return w.Page < w.PageCount }

// Paginate computes the row window for a 1-based page. Out of range pages are
// clamped to the first or last page.
func Paginate(total, page, pageSize int) PageWindow {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pageCount := (total + pageSize - 1) / pageSize
	if pageCount == 0 {
		pageCount = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pageCount {
		page = pageCount
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	if start > end {
		start = end
	}
	return PageWindow{
		Page:      page,
		PageSize:  pageSize,
		PageCount: pageCount,
		Start:     start,
		End:       end,
		Total:     total,
	}
}

// FormatValue renders a nullable decimal for display.
func FormatValue(v decimal.NullDecimal) string {
	if !v.Valid {
		return "–"
	}
	if v.Decimal.Equal(v.Decimal.Truncate(0)) {
		return v.Decimal.StringFixed(0)
	}
	return v.Decimal.StringFixed(2)
}

func parseYear(label string) (int, bool) {
	label = strings.TrimSpace(label)
	if len(label) >= 4 {
		label = label[:4]
	}
	year, err := strconv.Atoi(label)
	if err != nil {
		return 0, false
	}
	return year, true
}
