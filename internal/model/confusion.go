package model

import "slices"

// ConfusionTable counts (reference label, predicted label) pairs.
// Rows follow the reference alphabet, columns the predicted alphabet, both
// in the order given at construction.
type ConfusionTable struct {
	rowIndex  map[string]int
	colIndex  map[string]int
	RowLabels []string
	ColLabels []string
	Counts    [][]int
	// Unmatched counts pairs whose labels are outside either alphabet.
	Unmatched int
}

// NewConfusionTable creates an empty table for the given label orders.
func NewConfusionTable(rowLabels, colLabels []string) *ConfusionTable {
	ct := &ConfusionTable{
		RowLabels: slices.Clone(rowLabels),
		ColLabels: slices.Clone(colLabels),
		rowIndex:  make(map[string]int, len(rowLabels)),
		colIndex:  make(map[string]int, len(colLabels)),
		Counts:    make([][]int, len(rowLabels)),
	}
	for i, l := range rowLabels {
		ct.rowIndex[l] = i
	}
	for j, l := range colLabels {
		ct.colIndex[l] = j
	}
	for i := range ct.Counts {
		ct.Counts[i] = make([]int, len(colLabels))
	}
	return ct
}

// Add records one observation. It returns false and increments Unmatched
// when either label is unknown.
func (ct *ConfusionTable) Add(truth, predicted string) bool {
	i, okRow := ct.rowIndex[truth]
	j, okCol := ct.colIndex[predicted]
	if !okRow || !okCol {
		ct.Unmatched++
		return false
	}
	ct.Counts[i][j]++
	return true
}

// Set overwrites the count of a pair of known labels.
func (ct *ConfusionTable) Set(truth, predicted string, n int) bool {
	i, okRow := ct.rowIndex[truth]
	j, okCol := ct.colIndex[predicted]
	if !okRow || !okCol {
		return false
	}
	ct.Counts[i][j] = n
	return true
}

// Count returns the number of observations for a pair of labels.
func (ct *ConfusionTable) Count(truth, predicted string) int {
	i, okRow := ct.rowIndex[truth]
	j, okCol := ct.colIndex[predicted]
	if !okRow || !okCol {
		return 0
	}
	return ct.Counts[i][j]
}

// Total returns the number of matched observations.
func (ct *ConfusionTable) Total() int {
	total := 0
	for _, row := range ct.Counts {
		for _, n := range row {
			total += n
		}
	}
	return total
}

// RowTotal returns the number of observations with the given reference label.
func (ct *ConfusionTable) RowTotal(truth string) int {
	i, ok := ct.rowIndex[truth]
	if !ok {
		return 0
	}
	total := 0
	for _, n := range ct.Counts[i] {
		total += n
	}
	return total
}

// ColumnTotal returns the number of observations with the given predicted label.
func (ct *ConfusionTable) ColumnTotal(predicted string) int {
	j, ok := ct.colIndex[predicted]
	if !ok {
		return 0
	}
	total := 0
	for _, row := range ct.Counts {
		total += row[j]
	}
	return total
}

// Agreement returns the share of matched observations whose predicted label
// equals the reference label. It is 0 for an empty table.
func (ct *ConfusionTable) Agreement() float64 {
	total := ct.Total()
	if total == 0 {
		return 0
	}
	agree := 0
	for _, l := range ct.RowLabels {
		agree += ct.Count(l, l)
	}
	return float64(agree) / float64(total)
}

// Matrix returns a copy of the counts.
func (ct *ConfusionTable) Matrix() [][]int {
	out := make([][]int, len(ct.Counts))
	for i, row := range ct.Counts {
		out[i] = slices.Clone(row)
	}
	return out
}

// Equal reports whether two tables have the same labels and counts.
func (ct *ConfusionTable) Equal(other *ConfusionTable) bool {
	if other == nil {
		return false
	}
	if !slices.Equal(ct.RowLabels, other.RowLabels) || !slices.Equal(ct.ColLabels, other.ColLabels) {
		return false
	}
	if ct.Unmatched != other.Unmatched {
		return false
	}
	for i := range ct.Counts {
		if !slices.Equal(ct.Counts[i], other.Counts[i]) {
			return false
		}
	}
	return true
}
