package model

import (
	"maps"
	"slices"
)

// Alternative maps criterion ids to values. It describes either a product
// row or a synthetic boundary point of a profile.
type Alternative map[string]float64

// Clone returns an independent copy of the alternative.
func (a Alternative) Clone() Alternative {
	return maps.Clone(a)
}

// Row is one product to classify.
type Row struct {
	Values    Alternative
	ID        string
	Reference string
}

// Table holds the rows under evaluation together with any string columns
// attached to them. Every column has exactly one cell per row.
type Table struct {
	columns map[string][]string
	Rows    []Row
	order   []string
}

// NewTable creates a table with the given rows and no extra columns.
func NewTable(rows []Row) *Table {
	return &Table{
		Rows:    rows,
		columns: make(map[string][]string),
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether a column with that name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// Column returns the cells of the named column.
func (t *Table) Column(name string) ([]string, bool) {
	col, ok := t.columns[name]
	return col, ok
}

// ColumnNames returns column names in insertion order.
func (t *Table) ColumnNames() []string {
	return slices.Clone(t.order)
}

// AddColumn attaches a column if no column of that name exists yet.
// It returns false, leaving the table untouched, when the name is taken
// or the cell count does not match the row count.
func (t *Table) AddColumn(name string, cells []string) bool {
	if t.HasColumn(name) || len(cells) != len(t.Rows) {
		return false
	}
	if t.columns == nil {
		t.columns = make(map[string][]string)
	}
	t.columns[name] = slices.Clone(cells)
	t.order = append(t.order, name)
	return true
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = Row{
			ID:        r.ID,
			Reference: r.Reference,
			Values:    r.Values.Clone(),
		}
	}

	clone := &Table{
		Rows:    rows,
		columns: make(map[string][]string, len(t.columns)),
		order:   slices.Clone(t.order),
	}
	for name, cells := range t.columns {
		clone.columns[name] = slices.Clone(cells)
	}
	return clone
}
