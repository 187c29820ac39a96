// Package electre implements ELECTRE Tri-B sorting: concordance between
// criteria vectors, the outranking relation, distribution-derived boundary
// profiles, the pessimistic and optimistic assignment sweeps, and an
// evaluation harness that tabulates assignments against reference labels.
package electre

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/Veraticus/nutrisort/internal/common"
	"github.com/Veraticus/nutrisort/internal/model"
)

// weightTolerance bounds the rounding error of normalized weights.
const weightTolerance = 1e-9

// Registry holds the criteria of a sorting problem with normalized weights.
// It is immutable once built.
type Registry struct {
	index    map[string]int
	criteria []model.Criterion
}

// NewRegistry normalizes raw weights so they sum to 1 and validates the
// configuration. Thresholds are optional and default to 0.
func NewRegistry(ids []string, directions map[string]model.Direction, weights, thresholds map[string]float64) (*Registry, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no criteria configured", common.ErrMissingConfig)
	}

	index := make(map[string]int, len(ids))
	for i, id := range ids {
		if id == "" {
			return nil, fmt.Errorf("%w: criterion %d has an empty id", common.ErrInvalidConfig, i+1)
		}
		if _, dup := index[id]; dup {
			return nil, fmt.Errorf("%w: duplicate criterion %q", common.ErrInvalidConfig, id)
		}
		index[id] = i
	}

	if err := rejectUnknown(index, "direction", keysOf(directions)); err != nil {
		return nil, err
	}
	if err := rejectUnknown(index, "weight", keysOf(weights)); err != nil {
		return nil, err
	}
	if err := rejectUnknown(index, "preference threshold", keysOf(thresholds)); err != nil {
		return nil, err
	}

	total := 0.0
	criteria := make([]model.Criterion, len(ids))
	for i, id := range ids {
		dir, ok := directions[id]
		if !ok {
			return nil, fmt.Errorf("%w: no direction for criterion %q", common.ErrMissingConfig, id)
		}
		if !dir.Valid() {
			return nil, fmt.Errorf("%w: criterion %q has invalid direction %d", common.ErrInvalidConfig, id, int(dir))
		}

		w, ok := weights[id]
		if !ok {
			return nil, fmt.Errorf("%w: no weight for criterion %q", common.ErrMissingConfig, id)
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: criterion %q has weight %g, must be a finite non-negative number", common.ErrInvalidConfig, id, w)
		}

		p := thresholds[id]
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%w: criterion %q has preference threshold %g, must be a finite non-negative number", common.ErrInvalidConfig, id, p)
		}

		total += w
		criteria[i] = model.Criterion{
			ID:                  id,
			Direction:           dir,
			Weight:              w,
			PreferenceThreshold: p,
		}
	}

	if total == 0 {
		return nil, fmt.Errorf("%w: total criterion weight is zero", common.ErrInvalidConfig)
	}
	for i := range criteria {
		criteria[i].Weight /= total
	}

	return &Registry{
		criteria: criteria,
		index:    index,
	}, nil
}

// NewRegistryFromCriteria builds a registry from already assembled criteria,
// normalizing their weights.
func NewRegistryFromCriteria(criteria []model.Criterion) (*Registry, error) {
	ids := make([]string, 0, len(criteria))
	directions := make(map[string]model.Direction, len(criteria))
	weights := make(map[string]float64, len(criteria))
	thresholds := make(map[string]float64, len(criteria))
	for _, c := range criteria {
		ids = append(ids, c.ID)
		directions[c.ID] = c.Direction
		weights[c.ID] = c.Weight
		thresholds[c.ID] = c.PreferenceThreshold
	}
	return NewRegistry(ids, directions, weights, thresholds)
}

// Criteria returns the criteria in configuration order.
func (r *Registry) Criteria() []model.Criterion {
	return slices.Clone(r.criteria)
}

// IDs returns the criterion ids in configuration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.criteria))
	for i, c := range r.criteria {
		ids[i] = c.ID
	}
	return ids
}

// Criterion looks up a criterion by id.
func (r *Registry) Criterion(id string) (model.Criterion, bool) {
	i, ok := r.index[id]
	if !ok {
		return model.Criterion{}, false
	}
	return r.criteria[i], true
}

// Len returns the number of criteria.
func (r *Registry) Len() int {
	return len(r.criteria)
}

// CheckAlternative returns a data error for the first criterion that has no value in a.
func (r *Registry) CheckAlternative(rowID string, a model.Alternative) error {
	for _, c := range r.criteria {
		v, ok := a[c.ID]
		if !ok {
			return common.NewDataError(rowID, c.ID, "", fmt.Errorf("missing value"))
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return common.NewDataError(rowID, c.ID, strconv.FormatFloat(v, 'g', -1, 64), fmt.Errorf("value is not finite"))
		}
	}
	return nil
}

func rejectUnknown(index map[string]int, what string, keys []string) error {
	for _, k := range keys {
		if _, ok := index[k]; !ok {
			return fmt.Errorf("%w: %s given for unknown criterion %q", common.ErrInvalidConfig, what, k)
		}
	}
	return nil
}

func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
