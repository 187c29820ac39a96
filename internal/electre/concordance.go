package electre

import (
	"fmt"

	"github.com/Veraticus/nutrisort/internal/common"
	"github.com/Veraticus/nutrisort/internal/model"
)

// PartialConcordance tests whether a is at least as good as b on criterion c.
// The test is binary: the preference threshold widens the region where a
// still counts as good as b but never produces a graded value. There is no
// veto.
func PartialConcordance(a, b float64, c model.Criterion) float64 {
	switch c.Direction {
	case model.Maximize:
		if a+c.PreferenceThreshold >= b {
			return 1
		}
	case model.Minimize:
		if a-c.PreferenceThreshold <= b {
			return 1
		}
	}
	return 0
}

// Concordance returns the weighted share of criteria on which a is at least
// as good as b. The result lies in [0, 1].
func (r *Registry) Concordance(a, b model.Alternative) (float64, error) {
	total := 0.0
	for _, c := range r.criteria {
		av, ok := a[c.ID]
		if !ok {
			return 0, common.NewDataError("", c.ID, "", fmt.Errorf("first alternative has no value"))
		}
		bv, ok := b[c.ID]
		if !ok {
			return 0, common.NewDataError("", c.ID, "", fmt.Errorf("second alternative has no value"))
		}
		total += c.Weight * PartialConcordance(av, bv, c)
	}
	return total, nil
}
