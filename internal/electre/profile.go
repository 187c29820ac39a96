package electre

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/Veraticus/nutrisort/internal/common"
	"github.com/Veraticus/nutrisort/internal/model"
)

const (
	// ProfileCount is the number of boundary profiles, pi1 through pi6.
	ProfileCount = 6
	// CategoryCount is the number of categories delimited by the profiles.
	CategoryCount = ProfileCount - 1

	// DefaultEpsilon pushes pi1 and pi6 just outside the observed range.
	DefaultEpsilon = 1e-6
)

// quantileLevels are the inner boundaries pi2..pi5 in ascending order.
var quantileLevels = [ProfileCount - 2]float64{0.2, 0.4, 0.6, 0.8}

// ErrProfileIndex is returned for a boundary index outside 1..ProfileCount.
var ErrProfileIndex = errors.New("profile index out of range")

// Profile is the ordered sequence of boundaries pi1..pi6. For every
// criterion pi1 is the worst boundary and pi6 the best, whatever the
// criterion's direction.
type Profile struct {
	boundaries [ProfileCount]model.Alternative
}

// Boundary returns pi(k) for k in 1..ProfileCount.
func (p *Profile) Boundary(k int) (model.Alternative, error) {
	if k < 1 || k > ProfileCount {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrProfileIndex, k, ProfileCount)
	}
	return p.boundaries[k-1], nil
}

// Value returns the value of boundary k on criterion id.
func (p *Profile) Value(k int, id string) (float64, error) {
	b, err := p.Boundary(k)
	if err != nil {
		return 0, err
	}
	v, ok := b[id]
	if !ok {
		return 0, fmt.Errorf("profile has no value for criterion %q", id)
	}
	return v, nil
}

// BoundaryName returns the conventional boundary name, "pi1" .. "pi6".
func BoundaryName(k int) string {
	return "pi" + strconv.Itoa(k)
}

// NewProfile assembles a profile from explicit boundaries, worst first.
// The boundaries are copied.
func NewProfile(boundaries [ProfileCount]model.Alternative) *Profile {
	p := &Profile{}
	for i, b := range boundaries {
		p.boundaries[i] = b.Clone()
	}
	return p
}

// Validate checks that every criterion has a value on every boundary and
// that values never get worse from pi1 to pi6.
func (p *Profile) Validate(r *Registry) error {
	for _, c := range r.criteria {
		prev := 0.0
		for k := 1; k <= ProfileCount; k++ {
			v, ok := p.boundaries[k-1][c.ID]
			if !ok {
				return fmt.Errorf("%w: %s has no value for criterion %q", common.ErrInvalidConfig, BoundaryName(k), c.ID)
			}
			if math.IsNaN(v) {
				return fmt.Errorf("%w: %s is NaN on criterion %q", common.ErrInvalidConfig, BoundaryName(k), c.ID)
			}
			if k > 1 && worse(v, prev, c.Direction) {
				return fmt.Errorf("%w: criterion %q gets worse from %s (%g) to %s (%g)",
					common.ErrInvalidConfig, c.ID, BoundaryName(k-1), prev, BoundaryName(k), v)
			}
			prev = v
		}
	}
	return nil
}

func worse(v, prev float64, d model.Direction) bool {
	if d == model.Maximize {
		return v < prev
	}
	return v > prev
}

// ProfileOption configures BuildProfile.
type ProfileOption func(*profileOptions)

type profileOptions struct {
	epsilon float64
}

// WithEpsilon sets the margin added beyond the observed minimum and maximum.
func WithEpsilon(eps float64) ProfileOption {
	return func(o *profileOptions) {
		o.epsilon = eps
	}
}

// BuildProfile derives the six boundaries from the distribution of each
// criterion over the table. The table is not modified.
func BuildProfile(table *model.Table, r *Registry, opts ...ProfileOption) (*Profile, error) {
	o := profileOptions{epsilon: DefaultEpsilon}
	for _, opt := range opts {
		opt(&o)
	}
	if !(o.epsilon > 0) || math.IsInf(o.epsilon, 0) {
		return nil, fmt.Errorf("%w: epsilon must be a finite positive number, got %g", common.ErrInvalidConfig, o.epsilon)
	}
	if table == nil || table.Len() == 0 {
		return nil, fmt.Errorf("cannot build profiles: %w", common.ErrNoRows)
	}

	p := &Profile{}
	for k := range p.boundaries {
		p.boundaries[k] = make(model.Alternative, r.Len())
	}

	col := make([]float64, table.Len())
	for _, c := range r.criteria {
		for i, row := range table.Rows {
			v, ok := row.Values[c.ID]
			if !ok {
				return nil, common.NewDataError(row.ID, c.ID, "", fmt.Errorf("missing value"))
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, common.NewDataError(row.ID, c.ID, strconv.FormatFloat(v, 'g', -1, 64), fmt.Errorf("value is not finite"))
			}
			col[i] = v
		}
		slices.Sort(col)

		lo, hi := col[0], col[len(col)-1]
		var q [len(quantileLevels)]float64
		for i, level := range quantileLevels {
			q[i] = quantile(col, level)
		}

		switch c.Direction {
		case model.Maximize:
			p.boundaries[0][c.ID] = lo - o.epsilon
			for i := range q {
				p.boundaries[i+1][c.ID] = q[i]
			}
			p.boundaries[ProfileCount-1][c.ID] = hi + o.epsilon
		case model.Minimize:
			p.boundaries[0][c.ID] = hi + o.epsilon
			for i := range q {
				p.boundaries[i+1][c.ID] = q[len(q)-1-i]
			}
			p.boundaries[ProfileCount-1][c.ID] = lo - o.epsilon
		}
	}

	return p, nil
}

// quantile interpolates linearly between the two closest ranks of a sorted
// sample, so quantile(x, 0) is the minimum and quantile(x, 1) the maximum.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lower := int(math.Floor(pos))
	if lower >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}
