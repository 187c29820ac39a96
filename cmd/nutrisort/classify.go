package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/nutrisort/internal/cli"
	"github.com/Veraticus/nutrisort/internal/common"
	"github.com/Veraticus/nutrisort/internal/electre"
	"github.com/Veraticus/nutrisort/internal/model"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Grade a single product against the profiles of a dataset",
		Long: `Build the profiles from a dataset and assign one product, given as
criterion=value pairs, under both procedures for every cut level.`,
		Example: `  nutrisort classify --data products.csv \
    --value Energie_kJ=1200 --value Sucres_g=4.5 --value Graisses_Sat_g=1.2 \
    --value Sel_g=0.3 --value Proteines_g=8 --value Fibres_g=3 \
    --value Fruits_Legumes_Pct=20 --value GreenScore_Score=55`,
		RunE: runClassify,
	}

	addDataFlag(cmd)
	addLambdaFlag(cmd)
	addOutputFlag(cmd)
	cmd.Flags().StringArray("value", nil, "criterion value as name=number (one per criterion)")
	cmd.Flags().String("name", "product", "name of the product in messages")

	return cmd
}

// parseProductValues turns name=number pairs into an alternative.
func parseProductValues(pairs []string) (model.Alternative, error) {
	alt := make(model.Alternative, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q is not name=value", common.ErrInvalidData, pair)
		}
		if _, dup := alt[name]; dup {
			return nil, fmt.Errorf("%w: %s given twice", common.ErrInvalidData, name)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, common.NewDataError("", name, raw, err)
		}
		alt[name] = v
	}
	return alt, nil
}

// classifyProduct assigns row under every (lambda, procedure) pair and
// returns the labels keyed by run name.
func classifyProduct(row model.Row, registry *electre.Registry, profile *electre.Profile, cfg electre.EvaluationConfig) ([]string, map[string]string, error) {
	names := make([]string, 0, len(cfg.Lambdas)*len(electre.Procedures))
	labels := make(map[string]string, cap(names))
	for _, lambda := range cfg.Lambdas {
		rel := electre.NewRelation(registry, lambda)
		for _, p := range electre.Procedures {
			label, err := p.AssignLabel(row, profile, rel, cfg.Categories)
			if err != nil {
				return nil, nil, err
			}
			name := electre.RunName(p, lambda)
			names = append(names, name)
			labels[name] = label
		}
	}
	return names, labels, nil
}

func runClassify(cmd *cobra.Command, _ []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	pairs, _ := cmd.Flags().GetStringArray("value")
	productName, _ := cmd.Flags().GetString("name")

	values, err := parseProductValues(pairs)
	if err != nil {
		return common.NewUserError("invalid --value", err)
	}

	eval, err := loadEvaluation(cmd)
	if err != nil {
		return err
	}
	cfg, err := eval.Build()
	if err != nil {
		return fmt.Errorf("invalid evaluation configuration: %w", err)
	}

	for name := range values {
		if _, ok := cfg.Registry.Criterion(name); !ok {
			return common.NewUserError("invalid --value",
				fmt.Errorf("%w: unknown criterion %q", common.ErrInvalidData, name))
		}
	}
	if err := cfg.Registry.CheckAlternative(productName, values); err != nil {
		return common.NewUserError("incomplete product", err)
	}

	table, err := loadTable(eval)
	if err != nil {
		return err
	}
	registry, profile, err := buildProfile(eval, table)
	if err != nil {
		return err
	}

	row := model.Row{ID: productName, Values: values}
	names, labels, err := classifyProduct(row, registry, profile, cfg)
	if err != nil {
		return err
	}

	if format != cli.FormatTable {
		return cli.WriteReport(cmd.OutOrStdout(), format, labels)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Grades of %s", productName)))
	fmt.Fprintln(out, cli.RenderAssignments(names, labels))
	return nil
}
