package electre

import (
	"fmt"
	"testing"

	"github.com/Veraticus/nutrisort/internal/model"
)

var (
	testCategories = []string{"E", "D", "C", "B", "A"}
	testReference  = []string{"A", "B", "C", "D", "E"}
)

// tenRowTable has X = 1..10 and Y a permutation of 10..100.
func tenRowTable(t *testing.T) *model.Table {
	t.Helper()
	ys := []float64{10, 40, 70, 100, 30, 60, 90, 20, 50, 80}
	refs := []string{"E", "C", "A", "D", "B", "C", "E", "A", "B", "D"}

	rows := make([]model.Row, len(ys))
	for i := range ys {
		rows[i] = model.Row{
			ID:        fmt.Sprintf("p%02d", i+1),
			Values:    model.Alternative{"X": float64(i + 1), "Y": ys[i]},
			Reference: refs[i],
		}
	}
	return model.NewTable(rows)
}
