package electre

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/nutrisort/internal/common"
	"github.com/Veraticus/nutrisort/internal/model"
)

func TestBuildProfile_QuantileBoundaries(t *testing.T) {
	r := twoCriteriaRegistry(t)
	table := tenRowTable(t)

	p, err := BuildProfile(table, r)
	require.NoError(t, err)

	wantX := []float64{1 - DefaultEpsilon, 2.8, 4.6, 6.4, 8.2, 10 + DefaultEpsilon}
	wantY := []float64{100 + DefaultEpsilon, 82, 64, 46, 28, 10 - DefaultEpsilon}
	for k := 1; k <= ProfileCount; k++ {
		x, err := p.Value(k, "X")
		require.NoError(t, err)
		y, err := p.Value(k, "Y")
		require.NoError(t, err)

		assert.InDelta(t, wantX[k-1], x, 1e-9, "X at %s", BoundaryName(k))
		assert.InDelta(t, wantY[k-1], y, 1e-9, "Y at %s", BoundaryName(k))
	}
	require.NoError(t, p.Validate(r))
}

func TestBuildProfile_DoesNotMutateTable(t *testing.T) {
	r := twoCriteriaRegistry(t)
	table := tenRowTable(t)
	before := table.Clone()

	_, err := BuildProfile(table, r)
	require.NoError(t, err)
	assert.Equal(t, before.Rows, table.Rows)
}

func TestBuildProfile_StrictlyMonotone(t *testing.T) {
	r := twoCriteriaRegistry(t)
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 20; trial++ {
		rows := make([]model.Row, 50)
		for i := range rows {
			rows[i] = model.Row{
				ID:     "r",
				Values: model.Alternative{"X": rng.Float64() * 100, "Y": rng.NormFloat64()},
			}
		}

		p, err := BuildProfile(model.NewTable(rows), r)
		require.NoError(t, err)

		for k := 2; k <= ProfileCount; k++ {
			prevX, _ := p.Value(k-1, "X")
			x, _ := p.Value(k, "X")
			prevY, _ := p.Value(k-1, "Y")
			y, _ := p.Value(k, "Y")
			assert.Greater(t, x, prevX, "maximize criterion must increase towards %s", BoundaryName(k))
			assert.Less(t, y, prevY, "minimize criterion must decrease towards %s", BoundaryName(k))
		}
	}
}

func TestBuildProfile_Errors(t *testing.T) {
	r := twoCriteriaRegistry(t)

	_, err := BuildProfile(model.NewTable(nil), r)
	assert.ErrorIs(t, err, common.ErrNoRows)

	missing := model.NewTable([]model.Row{
		{ID: "ok", Values: model.Alternative{"X": 1, "Y": 1}},
		{ID: "bad", Values: model.Alternative{"X": 1}},
	})
	_, err = BuildProfile(missing, r)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidData)
	assert.Contains(t, err.Error(), `row "bad"`)

	_, err = BuildProfile(tenRowTable(t), r, WithEpsilon(0))
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestBuildProfile_RejectsNonFinite(t *testing.T) {
	r := twoCriteriaRegistry(t)

	for _, bad := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		rows := make([]model.Row, 0, 6)
		for i, x := range []float64{1, 2, 3, 4, bad, bad} {
			rows = append(rows, model.Row{
				ID:     fmt.Sprintf("p%d", i+1),
				Values: model.Alternative{"X": x, "Y": 1},
			})
		}

		p, err := BuildProfile(model.NewTable(rows), r)
		assert.Nil(t, p)
		require.Error(t, err, "%g", bad)
		assert.ErrorIs(t, err, common.ErrInvalidData)
		assert.Contains(t, err.Error(), `row "p5"`)
	}
}

func TestBuildProfile_SingleRow(t *testing.T) {
	r := twoCriteriaRegistry(t)
	table := model.NewTable([]model.Row{{ID: "only", Values: model.Alternative{"X": 3, "Y": 4}}})

	p, err := BuildProfile(table, r, WithEpsilon(0.5))
	require.NoError(t, err)

	x1, _ := p.Value(1, "X")
	x3, _ := p.Value(3, "X")
	x6, _ := p.Value(6, "X")
	assert.InDelta(t, 2.5, x1, 1e-12)
	assert.InDelta(t, 3, x3, 1e-12)
	assert.InDelta(t, 3.5, x6, 1e-12)
	assert.NoError(t, p.Validate(r))
}

func TestProfile_BoundaryBounds(t *testing.T) {
	p, err := BuildProfile(tenRowTable(t), twoCriteriaRegistry(t))
	require.NoError(t, err)

	for _, k := range []int{0, -1, ProfileCount + 1} {
		_, err := p.Boundary(k)
		assert.ErrorIs(t, err, ErrProfileIndex, "k=%d", k)
	}
	_, err = p.Value(1, "unknown")
	assert.Error(t, err)
}

func TestProfile_ValidateRejectsDisorder(t *testing.T) {
	r := twoCriteriaRegistry(t)
	var b [ProfileCount]model.Alternative
	for k := range b {
		b[k] = model.Alternative{"X": float64(k), "Y": float64(-k)}
	}
	require.NoError(t, NewProfile(b).Validate(r))

	b[3] = model.Alternative{"X": 0, "Y": -3}
	err := NewProfile(b).Validate(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `criterion "X"`)

	b[3] = model.Alternative{"X": math.NaN(), "Y": -3}
	err = NewProfile(b).Validate(r)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	tests := []struct {
		q, want float64
	}{
		{0, 1},
		{1, 4},
		{0.5, 2.5},
		{0.2, 1.6},
		{0.8, 3.4},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, quantile(sorted, tt.q), 1e-12, "q=%g", tt.q)
	}
}
