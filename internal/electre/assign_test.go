package electre

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/nutrisort/internal/common"
	"github.com/Veraticus/nutrisort/internal/model"
)

func TestProcedure_BoundaryRows(t *testing.T) {
	r := twoCriteriaRegistry(t)
	p, err := BuildProfile(tenRowTable(t), r)
	require.NoError(t, err)
	rel := NewRelation(r, 0.6)

	// A row sitting on pi(k) lands in category k; pi6 is the upper edge of
	// the best category.
	want := map[int]int{1: 1, 2: 2, 3: 3, 4: 4, 5: 5, 6: 5}
	for k := 1; k <= ProfileCount; k++ {
		b, err := p.Boundary(k)
		require.NoError(t, err)
		row := model.Row{ID: BoundaryName(k), Values: b}

		pess, err := Pessimistic.Assign(row, p, rel)
		require.NoError(t, err)
		opt, err := Optimistic.Assign(row, p, rel)
		require.NoError(t, err)

		assert.Equal(t, want[k], pess, "pessimistic at %s", BoundaryName(k))
		assert.Equal(t, want[k], opt, "optimistic at %s", BoundaryName(k))
	}
}

func TestProcedure_ExtremeRows(t *testing.T) {
	r := twoCriteriaRegistry(t)
	p, err := BuildProfile(tenRowTable(t), r)
	require.NoError(t, err)

	worst := model.Row{ID: "worst", Values: model.Alternative{"X": 1 - DefaultEpsilon, "Y": 100 + DefaultEpsilon}}
	best := model.Row{ID: "best", Values: model.Alternative{"X": 10 + DefaultEpsilon, "Y": 10 - DefaultEpsilon}}

	for _, lambda := range []float64{0.5, 0.6, 0.75, 1} {
		rel := NewRelation(r, lambda)
		for _, proc := range Procedures {
			got, err := proc.AssignLabel(worst, p, rel, testCategories)
			require.NoError(t, err)
			assert.Equal(t, "E", got, "%s lambda=%g", proc, lambda)

			got, err = proc.AssignLabel(best, p, rel, testCategories)
			require.NoError(t, err)
			assert.Equal(t, "A", got, "%s lambda=%g", proc, lambda)
		}
	}
}

func TestProcedure_EndToEndScenario(t *testing.T) {
	r := twoCriteriaRegistry(t)
	table := tenRowTable(t)
	p, err := BuildProfile(table, r)
	require.NoError(t, err)

	// X at its 90th percentile, Y at its 10th.
	xs := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	ys := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	row := model.Row{ID: "star", Values: model.Alternative{
		"X": quantile(xs, 0.9),
		"Y": quantile(ys, 0.1),
	}}
	assert.InDelta(t, 9.1, row.Values["X"], 1e-12)
	assert.InDelta(t, 19, row.Values["Y"], 1e-12)

	got, err := Optimistic.AssignLabel(row, p, NewRelation(r, 0.6), testCategories)
	require.NoError(t, err)
	assert.Equal(t, "A", got)
}

func TestProcedure_SplitRowShowsBias(t *testing.T) {
	r := twoCriteriaRegistry(t)
	p, err := BuildProfile(tenRowTable(t), r)
	require.NoError(t, err)
	rel := NewRelation(r, 0.6)

	// Excellent on X, terrible on Y: the procedures disagree as far as
	// they can.
	row := model.Row{ID: "split", Values: model.Alternative{"X": 9.5, "Y": 95}}

	pess, err := Pessimistic.AssignLabel(row, p, rel, testCategories)
	require.NoError(t, err)
	opt, err := Optimistic.AssignLabel(row, p, rel, testCategories)
	require.NoError(t, err)

	assert.Equal(t, "E", pess)
	assert.Equal(t, "A", opt)
}

func TestProcedure_OptimisticNeverBelowPessimistic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	r, err := NewRegistry(
		[]string{"a", "b", "c", "d"},
		map[string]model.Direction{"a": model.Maximize, "b": model.Minimize, "c": model.Maximize, "d": model.Minimize},
		map[string]float64{"a": 3, "b": 1, "c": 2, "d": 2},
		map[string]float64{"a": 0.05, "c": 0.1},
	)
	require.NoError(t, err)

	rows := make([]model.Row, 200)
	for i := range rows {
		rows[i] = model.Row{ID: "r", Values: model.Alternative{
			"a": rng.Float64(), "b": rng.Float64(), "c": rng.ExpFloat64(), "d": rng.NormFloat64(),
		}}
	}
	p, err := BuildProfile(model.NewTable(rows), r)
	require.NoError(t, err)

	for _, lambda := range []float64{0.5, 0.55, 0.6, 0.7, 0.8, 0.9, 1} {
		rel := NewRelation(r, lambda)
		for _, row := range rows {
			pess, err := Pessimistic.Assign(row, p, rel)
			require.NoError(t, err)
			opt, err := Optimistic.Assign(row, p, rel)
			require.NoError(t, err)
			require.GreaterOrEqual(t, opt, pess, "lambda=%g row=%v", lambda, row.Values)
			require.True(t, pess >= 1 && opt <= CategoryCount)
		}
	}
}

func TestProcedure_RejectsMissingValue(t *testing.T) {
	r := twoCriteriaRegistry(t)
	p, err := BuildProfile(tenRowTable(t), r)
	require.NoError(t, err)

	row := model.Row{ID: "p99", Values: model.Alternative{"X": 3}}
	for _, proc := range Procedures {
		_, err := proc.Assign(row, p, NewRelation(r, 0.6))
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrInvalidData)
		assert.Contains(t, err.Error(), `row "p99"`)
	}
}

func TestProcedure_AssignLabelNeedsFiveLabels(t *testing.T) {
	r := twoCriteriaRegistry(t)
	p, err := BuildProfile(tenRowTable(t), r)
	require.NoError(t, err)

	_, err = Pessimistic.AssignLabel(tenRowTable(t).Rows[0], p, NewRelation(r, 0.6), []string{"bad", "good"})
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestParseProcedure(t *testing.T) {
	tests := []struct {
		in      string
		want    Procedure
		wantErr bool
	}{
		{in: "pess", want: Pessimistic},
		{in: "Pessimistic", want: Pessimistic},
		{in: "opt", want: Optimistic},
		{in: " optimistic ", want: Optimistic},
		{in: "median", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseProcedure(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "Pess", Pessimistic.String())
	assert.Equal(t, "Opt", Optimistic.String())
}
