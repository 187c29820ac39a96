package electre

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/nutrisort/internal/common"
	"github.com/Veraticus/nutrisort/internal/model"
)

// RunNamePrefix starts every derived column name.
const RunNamePrefix = "ELECTRE"

// EvaluationConfig drives Evaluate.
type EvaluationConfig struct {
	Registry *Registry
	// OnRunDone, if set, is called once per finished run, possibly from
	// several goroutines at once.
	OnRunDone func(RunResult)
	// Categories are the predicted labels, worst first.
	Categories []string
	// ReferenceLabels is the alphabet of the ground-truth column, in the
	// order used for confusion table rows.
	ReferenceLabels []string
	Lambdas         []float64
	Epsilon         float64
	// Workers bounds the number of runs assigned concurrently; 0 means one
	// goroutine per run.
	Workers int
}

// Validate checks the configuration without looking at any data.
func (c *EvaluationConfig) Validate() error {
	if c.Registry == nil {
		return fmt.Errorf("%w: criterion registry", common.ErrMissingConfig)
	}
	if len(c.Categories) != CategoryCount {
		return fmt.Errorf("%w: %d category labels given, need %d (one per pair of consecutive profiles)",
			common.ErrInvalidConfig, len(c.Categories), CategoryCount)
	}
	if err := validateLabels("category", c.Categories); err != nil {
		return err
	}
	if len(c.ReferenceLabels) == 0 {
		return fmt.Errorf("%w: reference labels", common.ErrMissingConfig)
	}
	if err := validateLabels("reference", c.ReferenceLabels); err != nil {
		return err
	}
	if len(c.Lambdas) == 0 {
		return fmt.Errorf("%w: no lambda values to evaluate", common.ErrMissingConfig)
	}
	seen := make(map[float64]bool, len(c.Lambdas))
	for _, l := range c.Lambdas {
		if math.IsNaN(l) || l <= 0 || l > 1 {
			return fmt.Errorf("%w: lambda %g must be in (0, 1]", common.ErrInvalidConfig, l)
		}
		if seen[l] {
			return fmt.Errorf("%w: duplicate lambda %g", common.ErrInvalidConfig, l)
		}
		seen[l] = true
	}
	if c.Epsilon < 0 {
		return fmt.Errorf("%w: epsilon %g must be positive", common.ErrInvalidConfig, c.Epsilon)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", common.ErrInvalidConfig, c.Workers)
	}
	return nil
}

func validateLabels(kind string, labels []string) error {
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if l == "" {
			return fmt.Errorf("%w: empty %s label", common.ErrInvalidConfig, kind)
		}
		if seen[l] {
			return fmt.Errorf("%w: duplicate %s label %q", common.ErrInvalidConfig, kind, l)
		}
		seen[l] = true
	}
	return nil
}

// RunResult identifies one (procedure, lambda) combination.
type RunResult struct {
	Name      string
	Procedure Procedure
	Lambda    float64
}

// RunName is the derived column name of a run, e.g. "ELECTRE_Pess_0.6".
func RunName(p Procedure, lambda float64) string {
	return fmt.Sprintf("%s_%s_%s", RunNamePrefix, p, strconv.FormatFloat(lambda, 'f', -1, 64))
}

// Result is the outcome of Evaluate.
type Result struct {
	// Table is a copy of the input with the derived columns added.
	Table      *model.Table
	Profile    *Profile
	Confusions map[string]*model.ConfusionTable
	// Criteria lists the criterion ids in configuration order.
	Criteria []string
	Runs     []RunResult
	// Added and Skipped partition the run names by whether their column
	// was written or already present.
	Added   []string
	Skipped []string
}

// Confusion returns the confusion table of a run.
func (r *Result) Confusion(name string) (*model.ConfusionTable, bool) {
	ct, ok := r.Confusions[name]
	return ct, ok
}

// Evaluate builds profiles from table and assigns every row under both
// procedures for every lambda, then cross-tabulates the derived columns
// against the reference labels. The input table is not modified.
func Evaluate(ctx context.Context, table *model.Table, cfg EvaluationConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if table == nil || table.Len() == 0 {
		return nil, common.ErrNoRows
	}

	reference := make(map[string]bool, len(cfg.ReferenceLabels))
	for _, l := range cfg.ReferenceLabels {
		reference[l] = true
	}
	for _, row := range table.Rows {
		if !reference[row.Reference] {
			return nil, common.NewDataError(row.ID, "", row.Reference,
				fmt.Errorf("reference label not in %v", cfg.ReferenceLabels))
		}
		if err := cfg.Registry.CheckAlternative(row.ID, row.Values); err != nil {
			return nil, err
		}
	}

	var opts []ProfileOption
	if cfg.Epsilon > 0 {
		opts = append(opts, WithEpsilon(cfg.Epsilon))
	}
	profile, err := BuildProfile(table, cfg.Registry, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build profiles: %w", err)
	}

	runs := make([]RunResult, 0, len(cfg.Lambdas)*len(Procedures))
	for _, lambda := range cfg.Lambdas {
		for _, p := range Procedures {
			runs = append(runs, RunResult{
				Name:      RunName(p, lambda),
				Procedure: p,
				Lambda:    lambda,
			})
		}
	}

	predictions := make([][]string, len(runs))
	g, gctx := errgroup.WithContext(ctx)
	if cfg.Workers > 0 {
		g.SetLimit(cfg.Workers)
	}
	for i, run := range runs {
		g.Go(func() error {
			cells, err := assignAll(gctx, table, profile, cfg, run)
			if err != nil {
				return err
			}
			predictions[i] = cells
			if cfg.OnRunDone != nil {
				cfg.OnRunDone(run)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Table:      table.Clone(),
		Profile:    profile,
		Criteria:   cfg.Registry.IDs(),
		Runs:       runs,
		Confusions: make(map[string]*model.ConfusionTable, len(runs)),
	}

	for i, run := range runs {
		if result.Table.AddColumn(run.Name, predictions[i]) {
			result.Added = append(result.Added, run.Name)
		} else {
			common.LogWarn("Derived column already exists, leaving it unchanged", common.Fields{"column": run.Name})
			result.Skipped = append(result.Skipped, run.Name)
		}

		cells, _ := result.Table.Column(run.Name)
		ct := model.NewConfusionTable(cfg.ReferenceLabels, cfg.Categories)
		for j, row := range result.Table.Rows {
			ct.Add(row.Reference, cells[j])
		}
		if ct.Unmatched > 0 {
			common.LogWarn("Column holds labels outside the category alphabet", common.Fields{
				"column":    run.Name,
				"unmatched": ct.Unmatched,
			})
		}
		result.Confusions[run.Name] = ct
	}

	return result, nil
}

func assignAll(ctx context.Context, table *model.Table, profile *Profile, cfg EvaluationConfig, run RunResult) ([]string, error) {
	common.LogDebug("Assigning rows", common.Fields{"run": run.Name, "rows": table.Len()})

	rel := NewRelation(cfg.Registry, run.Lambda)
	cells := make([]string, table.Len())
	for i, row := range table.Rows {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		label, err := run.Procedure.AssignLabel(row, profile, rel, cfg.Categories)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", run.Name, err)
		}
		cells[i] = label
	}
	return cells, nil
}

// Names returns the run names in evaluation order.
func (r *Result) Names() []string {
	names := make([]string, len(r.Runs))
	for i, run := range r.Runs {
		names[i] = run.Name
	}
	return names
}
