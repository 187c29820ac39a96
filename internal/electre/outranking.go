package electre

import "github.com/Veraticus/nutrisort/internal/model"

// Relation is the outranking relation for one strictness threshold.
// Outranking is neither symmetric nor transitive; each direction is
// evaluated independently.
type Relation struct {
	Registry *Registry
	Lambda   float64
}

// NewRelation binds a registry to a strictness threshold.
func NewRelation(r *Registry, lambda float64) Relation {
	return Relation{Registry: r, Lambda: lambda}
}

// Outranks reports whether a is at least as good as b (a S b).
func (rel Relation) Outranks(a, b model.Alternative) (bool, error) {
	c, err := rel.Registry.Concordance(a, b)
	if err != nil {
		return false, err
	}
	return c >= rel.Lambda, nil
}

// StrictlyPreferred reports a S b and not b S a.
func (rel Relation) StrictlyPreferred(a, b model.Alternative) (bool, error) {
	ab, err := rel.Outranks(a, b)
	if err != nil || !ab {
		return false, err
	}
	ba, err := rel.Outranks(b, a)
	if err != nil {
		return false, err
	}
	return !ba, nil
}
