package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/nutrisort/internal/common"
	"github.com/Veraticus/nutrisort/internal/electre"
	"github.com/Veraticus/nutrisort/internal/model"
)

// CriterionConfig is one entry of the criteria list.
type CriterionConfig struct {
	Name                string  `mapstructure:"name" yaml:"name" json:"name"`
	Direction           string  `mapstructure:"direction" yaml:"direction" json:"direction"`
	Weight              float64 `mapstructure:"weight" yaml:"weight" json:"weight"`
	PreferenceThreshold float64 `mapstructure:"preference_threshold" yaml:"preference_threshold,omitempty" json:"preference_threshold,omitempty"`
}

// DatasetConfig names the input file and its special columns.
type DatasetConfig struct {
	Path            string `mapstructure:"path" yaml:"path"`
	IDColumn        string `mapstructure:"id_column" yaml:"id_column"`
	ReferenceColumn string `mapstructure:"reference_column" yaml:"reference_column"`
}

// Evaluation holds everything needed to run the sorting harness.
type Evaluation struct {
	Dataset         DatasetConfig     `mapstructure:"dataset" yaml:"dataset"`
	Criteria        []CriterionConfig `mapstructure:"criteria" yaml:"criteria"`
	Categories      []string          `mapstructure:"categories" yaml:"categories"`
	ReferenceLabels []string          `mapstructure:"reference_labels" yaml:"reference_labels"`
	Lambdas         []float64         `mapstructure:"lambdas" yaml:"lambdas"`
	Epsilon         float64           `mapstructure:"epsilon" yaml:"epsilon"`
	Workers         int               `mapstructure:"workers" yaml:"workers"`
}

// nutriScoreCriteria are the eight columns of the Nutri-Score dataset.
var nutriScoreCriteria = []struct {
	name      string
	direction model.Direction
}{
	{"Energie_kJ", model.Minimize},
	{"Sucres_g", model.Minimize},
	{"Graisses_Sat_g", model.Minimize},
	{"Sel_g", model.Minimize},
	{"Proteines_g", model.Maximize},
	{"Fibres_g", model.Maximize},
	{"Fruits_Legumes_Pct", model.Maximize},
	{"GreenScore_Score", model.Maximize},
}

// DefaultEvaluation returns the Nutri-Score setup: eight equally weighted
// criteria, grades E (worst) to A (best) and lambdas 0.6 and 0.7.
func DefaultEvaluation() Evaluation {
	criteria := make([]CriterionConfig, len(nutriScoreCriteria))
	for i, c := range nutriScoreCriteria {
		criteria[i] = CriterionConfig{
			Name:      c.name,
			Direction: c.direction.String(),
			Weight:    1.0 / float64(len(nutriScoreCriteria)),
		}
	}

	return Evaluation{
		Dataset: DatasetConfig{
			IDColumn:        "Nom_Produit",
			ReferenceColumn: "NutriScore_Lettre",
		},
		Criteria:        criteria,
		Categories:      []string{"E", "D", "C", "B", "A"},
		ReferenceLabels: []string{"A", "B", "C", "D", "E"},
		Lambdas:         []float64{0.6, 0.7},
		Epsilon:         electre.DefaultEpsilon,
		Workers:         4,
	}
}

// LoadEvaluation overlays the keys set in v on top of the defaults.
func LoadEvaluation(v *viper.Viper) (*Evaluation, error) {
	e := DefaultEvaluation()

	keys := []struct {
		target any
		key    string
	}{
		{&e.Dataset.Path, "dataset.path"},
		{&e.Dataset.IDColumn, "dataset.id_column"},
		{&e.Dataset.ReferenceColumn, "dataset.reference_column"},
		{&e.Criteria, "criteria"},
		{&e.Categories, "categories"},
		{&e.ReferenceLabels, "reference_labels"},
		{&e.Lambdas, "lambdas"},
		{&e.Epsilon, "epsilon"},
		{&e.Workers, "workers"},
	}
	for _, k := range keys {
		if !v.IsSet(k.key) {
			continue
		}
		// Lists replace the defaults; decoding into them would merge
		// element by element.
		switch t := k.target.(type) {
		case *[]CriterionConfig:
			*t = nil
		case *[]string:
			*t = nil
		case *[]float64:
			*t = nil
		}
		if err := v.UnmarshalKey(k.key, k.target); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", common.ErrInvalidConfig, k.key, err)
		}
	}

	e.Dataset.Path = ExpandPath(e.Dataset.Path)

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// Validate checks the parts of the configuration that the harness does not.
func (e *Evaluation) Validate() error {
	if len(e.Criteria) == 0 {
		return fmt.Errorf("%w: criteria", common.ErrMissingConfig)
	}
	for i, c := range e.Criteria {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: criterion %d has no name", common.ErrInvalidConfig, i+1)
		}
		if strings.TrimSpace(c.Direction) == "" {
			return fmt.Errorf("%w: criterion %q has no direction", common.ErrMissingConfig, c.Name)
		}
		if _, err := model.ParseDirection(c.Direction); err != nil {
			return fmt.Errorf("%w: criterion %q: %w", common.ErrInvalidConfig, c.Name, err)
		}
	}
	if e.Dataset.ReferenceColumn == "" {
		return fmt.Errorf("%w: dataset.reference_column", common.ErrMissingConfig)
	}
	return nil
}

// CriterionIDs returns the configured criterion names in order.
func (e *Evaluation) CriterionIDs() []string {
	ids := make([]string, len(e.Criteria))
	for i, c := range e.Criteria {
		ids[i] = c.Name
	}
	return ids
}

// Registry builds the normalized criterion registry.
func (e *Evaluation) Registry() (*electre.Registry, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	criteria := make([]model.Criterion, len(e.Criteria))
	for i, c := range e.Criteria {
		dir, err := model.ParseDirection(c.Direction)
		if err != nil {
			return nil, fmt.Errorf("%w: criterion %q: %w", common.ErrInvalidConfig, c.Name, err)
		}
		criteria[i] = model.Criterion{
			ID:                  c.Name,
			Direction:           dir,
			Weight:              c.Weight,
			PreferenceThreshold: c.PreferenceThreshold,
		}
	}
	return electre.NewRegistryFromCriteria(criteria)
}

// Build converts the configuration into a validated harness configuration.
func (e *Evaluation) Build() (electre.EvaluationConfig, error) {
	registry, err := e.Registry()
	if err != nil {
		return electre.EvaluationConfig{}, err
	}

	cfg := electre.EvaluationConfig{
		Registry:        registry,
		Categories:      e.Categories,
		ReferenceLabels: e.ReferenceLabels,
		Lambdas:         e.Lambdas,
		Epsilon:         e.Epsilon,
		Workers:         e.Workers,
	}
	if err := cfg.Validate(); err != nil {
		return electre.EvaluationConfig{}, err
	}
	return cfg, nil
}
