package testutil

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/Veraticus/nutrisort/internal/model"
)

// ProductBuilder assembles product tables for tests.
//
// Example:
//
//	table := testutil.NewProductBuilder(t, "X", "Y").
//		WithProduct("p1", "A", 9, 10).
//		WithProduct("p2", "E", 1, 90).
//		Build()
type ProductBuilder struct {
	t        *testing.T
	criteria []string
	rows     []model.Row
}

// NewProductBuilder starts a table over the given criteria.
func NewProductBuilder(t *testing.T, criteria ...string) *ProductBuilder {
	t.Helper()
	if len(criteria) == 0 {
		t.Fatal("product builder needs at least one criterion")
	}
	return &ProductBuilder{t: t, criteria: criteria}
}

// WithProduct adds one product; values follow the criteria order.
func (b *ProductBuilder) WithProduct(id, reference string, values ...float64) *ProductBuilder {
	b.t.Helper()
	if len(values) != len(b.criteria) {
		b.t.Fatalf("product %s: got %d values for %d criteria", id, len(values), len(b.criteria))
	}
	alt := make(model.Alternative, len(values))
	for i, c := range b.criteria {
		alt[c] = values[i]
	}
	b.rows = append(b.rows, model.Row{ID: id, Reference: reference, Values: alt})
	return b
}

// WithLadder adds n products whose i-th value on every maximized criterion
// is i and on every other criterion n+1-i, so product n is the best.
// References cycle through labels.
func (b *ProductBuilder) WithLadder(n int, maximize map[string]bool, labels ...string) *ProductBuilder {
	b.t.Helper()
	for i := 1; i <= n; i++ {
		values := make([]float64, len(b.criteria))
		for j, c := range b.criteria {
			if maximize[c] {
				values[j] = float64(i)
			} else {
				values[j] = float64(n + 1 - i)
			}
		}
		ref := ""
		if len(labels) > 0 {
			ref = labels[(i-1)%len(labels)]
		}
		b.WithProduct(fmt.Sprintf("p%03d", i), ref, values...)
	}
	return b
}

// Build returns the table.
func (b *ProductBuilder) Build() *model.Table {
	return model.NewTable(b.rows)
}

// CSV renders the products as CSV with the given id and reference headers.
func (b *ProductBuilder) CSV(idColumn, referenceColumn string) string {
	var sb strings.Builder
	header := append([]string{idColumn}, b.criteria...)
	header = append(header, referenceColumn)
	sb.WriteString(strings.Join(header, ",") + "\n")

	for _, row := range b.rows {
		cells := make([]string, 0, len(header))
		cells = append(cells, row.ID)
		for _, c := range b.criteria {
			cells = append(cells, strconv.FormatFloat(row.Values[c], 'f', -1, 64))
		}
		cells = append(cells, row.Reference)
		sb.WriteString(strings.Join(cells, ",") + "\n")
	}
	return sb.String()
}
