package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/nutrisort/internal/electre"
	"github.com/Veraticus/nutrisort/internal/model"
)

// Output formats accepted by WriteReport. FormatTable is handled by the
// renderers above.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Report is the machine-readable form of an evaluation.
type Report struct {
	ID       string           `json:"id,omitempty" yaml:"id,omitempty"`
	Dataset  string           `json:"dataset" yaml:"dataset"`
	Criteria []string         `json:"criteria" yaml:"criteria"`
	Profile  []BoundaryReport `json:"profile" yaml:"profile"`
	Runs     []RunReport      `json:"runs" yaml:"runs"`
	Rows     int              `json:"rows" yaml:"rows"`
}

// BoundaryReport is one boundary of the profile.
type BoundaryReport struct {
	Values   map[string]float64 `json:"values" yaml:"values"`
	Boundary string             `json:"boundary" yaml:"boundary"`
}

// RunReport is one (procedure, lambda) run with its confusion table.
type RunReport struct {
	Name       string   `json:"name" yaml:"name"`
	Procedure  string   `json:"procedure" yaml:"procedure"`
	Reference  []string `json:"reference_labels" yaml:"reference_labels"`
	Categories []string `json:"categories" yaml:"categories"`
	Confusion  [][]int  `json:"confusion" yaml:"confusion"`
	Lambda     float64  `json:"lambda" yaml:"lambda"`
	Agreement  float64  `json:"agreement" yaml:"agreement"`
	Unmatched  int      `json:"unmatched" yaml:"unmatched"`
	Skipped    bool     `json:"skipped" yaml:"skipped"`
}

// NewReport converts an evaluation result.
func NewReport(dataset string, res *electre.Result) (*Report, error) {
	r := &Report{
		Dataset:  dataset,
		Rows:     res.Table.Len(),
		Criteria: slices.Clone(res.Criteria),
	}

	for k := 1; k <= electre.ProfileCount; k++ {
		b, err := res.Profile.Boundary(k)
		if err != nil {
			return nil, err
		}
		r.Profile = append(r.Profile, BoundaryReport{
			Boundary: electre.BoundaryName(k),
			Values:   b.Clone(),
		})
	}

	skipped := make(map[string]bool, len(res.Skipped))
	for _, name := range res.Skipped {
		skipped[name] = true
	}
	for _, run := range res.Runs {
		ct, ok := res.Confusion(run.Name)
		if !ok {
			return nil, fmt.Errorf("run %s has no confusion table", run.Name)
		}
		r.Runs = append(r.Runs, NewRunReport(run.Name, run.Procedure.String(), run.Lambda, skipped[run.Name], ct))
	}
	return r, nil
}

// NewRunReport describes a single run.
func NewRunReport(name, procedure string, lambda float64, skipped bool, ct *model.ConfusionTable) RunReport {
	return RunReport{
		Name:       name,
		Procedure:  procedure,
		Lambda:     lambda,
		Skipped:    skipped,
		Reference:  slices.Clone(ct.RowLabels),
		Categories: slices.Clone(ct.ColLabels),
		Confusion:  ct.Matrix(),
		Agreement:  ct.Agreement(),
		Unmatched:  ct.Unmatched,
	}
}

// WriteReport encodes v as JSON or YAML.
func WriteReport(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported output format %q (want %s or %s)", format, FormatJSON, FormatYAML)
	}
	return nil
}
