package electre

import (
	"fmt"
	"strings"

	"github.com/Veraticus/nutrisort/internal/common"
	"github.com/Veraticus/nutrisort/internal/model"
)

// Procedure selects one of the two ELECTRE Tri assignment sweeps.
type Procedure int

const (
	// Pessimistic scans from the best boundary down and assigns the first
	// category whose lower boundary the row outranks.
	Pessimistic Procedure = iota
	// Optimistic scans from the worst boundary up and assigns the category
	// just below the first boundary strictly preferred to the row.
	Optimistic
)

// Procedures lists both sweeps in evaluation order.
var Procedures = []Procedure{Pessimistic, Optimistic}

// String returns the short name used in derived column names.
func (p Procedure) String() string {
	switch p {
	case Pessimistic:
		return "Pess"
	case Optimistic:
		return "Opt"
	default:
		return fmt.Sprintf("Procedure(%d)", int(p))
	}
}

// ParseProcedure accepts "pessimistic", "pess", "optimistic" and "opt".
func ParseProcedure(s string) (Procedure, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pess", "pessimistic":
		return Pessimistic, nil
	case "opt", "optimistic":
		return Optimistic, nil
	default:
		return 0, fmt.Errorf("unknown procedure %q", s)
	}
}

// sweep is the state machine behind a procedure: starting at boundary
// first, it steps towards last and stops at the first boundary where test
// succeeds, yielding category(k). If no boundary succeeds it yields fallback.
type sweep struct {
	test     func(rel Relation, row, boundary model.Alternative) (bool, error)
	category func(k int) int
	first    int
	last     int
	step     int
	fallback int
}

var sweeps = map[Procedure]sweep{
	Pessimistic: {
		first: CategoryCount,
		last:  1,
		step:  -1,
		test: func(rel Relation, row, boundary model.Alternative) (bool, error) {
			return rel.Outranks(row, boundary)
		},
		category: func(k int) int { return k },
		fallback: 1,
	},
	Optimistic: {
		first: 2,
		last:  ProfileCount,
		step:  1,
		test: func(rel Relation, row, boundary model.Alternative) (bool, error) {
			return rel.StrictlyPreferred(boundary, row)
		},
		category: func(k int) int { return k - 1 },
		fallback: CategoryCount,
	},
}

func (s sweep) run(row model.Alternative, profile *Profile, rel Relation) (int, error) {
	for k := s.first; ; k += s.step {
		boundary, err := profile.Boundary(k)
		if err != nil {
			return 0, err
		}
		ok, err := s.test(rel, row, boundary)
		if err != nil {
			return 0, err
		}
		if ok {
			return s.category(k), nil
		}
		if k == s.last {
			return s.fallback, nil
		}
	}
}

// Assign returns the 1-based category index (1 is worst) of row.
func (p Procedure) Assign(row model.Row, profile *Profile, rel Relation) (int, error) {
	s, ok := sweeps[p]
	if !ok {
		return 0, fmt.Errorf("unknown procedure %d", int(p))
	}
	if err := rel.Registry.CheckAlternative(row.ID, row.Values); err != nil {
		return 0, err
	}
	category, err := s.run(row.Values, profile, rel)
	if err != nil {
		return 0, fmt.Errorf("row %q: %w", row.ID, err)
	}
	return category, nil
}

// AssignLabel is Assign followed by a lookup in the worst-to-best labels.
func (p Procedure) AssignLabel(row model.Row, profile *Profile, rel Relation, categories []string) (string, error) {
	if len(categories) != CategoryCount {
		return "", fmt.Errorf("%w: %d category labels, need %d", common.ErrInvalidConfig, len(categories), CategoryCount)
	}
	k, err := p.Assign(row, profile, rel)
	if err != nil {
		return "", err
	}
	return categories[k-1], nil
}
