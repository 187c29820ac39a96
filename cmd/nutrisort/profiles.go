package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/nutrisort/internal/cli"
	"github.com/Veraticus/nutrisort/internal/config"
	"github.com/Veraticus/nutrisort/internal/electre"
	"github.com/Veraticus/nutrisort/internal/model"
)

func profilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Show the boundary profiles pi1..pi6 built from a dataset",
		Long: `Compute the six boundary profiles from the 20/40/60/80 percentiles of each
criterion, widened by epsilon at both ends. pi1 is the worst boundary and pi6
the best on every criterion.`,
		RunE: runProfiles,
	}

	addDataFlag(cmd)
	addOutputFlag(cmd)

	return cmd
}

func buildProfile(eval *config.Evaluation, table *model.Table) (*electre.Registry, *electre.Profile, error) {
	registry, err := eval.Registry()
	if err != nil {
		return nil, nil, err
	}
	var opts []electre.ProfileOption
	if eval.Epsilon > 0 {
		opts = append(opts, electre.WithEpsilon(eval.Epsilon))
	}
	profile, err := electre.BuildProfile(table, registry, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build profiles: %w", err)
	}
	return registry, profile, nil
}

func runProfiles(cmd *cobra.Command, _ []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	eval, err := loadEvaluation(cmd)
	if err != nil {
		return err
	}
	table, err := loadTable(eval)
	if err != nil {
		return err
	}
	registry, profile, err := buildProfile(eval, table)
	if err != nil {
		return err
	}

	if format != cli.FormatTable {
		boundaries := make([]cli.BoundaryReport, 0, electre.ProfileCount)
		for k := 1; k <= electre.ProfileCount; k++ {
			b, err := profile.Boundary(k)
			if err != nil {
				return err
			}
			boundaries = append(boundaries, cli.BoundaryReport{Boundary: electre.BoundaryName(k), Values: b.Clone()})
		}
		return cli.WriteReport(cmd.OutOrStdout(), format, boundaries)
	}

	rendered, err := cli.RenderProfile(profile, registry.IDs())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Profiles of %s (%d products)", eval.Dataset.Path, table.Len())))
	fmt.Fprintln(out, rendered)
	return nil
}
