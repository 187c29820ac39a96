package main

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/nutrisort/internal/cli"
	"github.com/Veraticus/nutrisort/internal/electre"
	"github.com/Veraticus/nutrisort/internal/storage"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect saved evaluations",
	}

	cmd.AddCommand(runsListCmd())
	cmd.AddCommand(runsShowCmd())
	cmd.AddCommand(runsDeleteCmd())

	return cmd
}

func runsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved evaluations, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			evaluations, err := store.ListEvaluations(ctx)
			if err != nil {
				return err
			}
			return writeEvaluationList(cmd.OutOrStdout(), evaluations)
		},
	}
}

func writeEvaluationList(out io.Writer, evaluations []storage.EvaluationSummary) error {
	if len(evaluations) == 0 {
		fmt.Fprintln(out, cli.InfoStyle.Render("No saved evaluations. Use 'nutrisort evaluate --save' to store one."))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tCREATED\tDATASET\tROWS\tRUNS"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, e := range evaluations {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
			e.ID,
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.Dataset,
			e.RowCount,
			e.RunCount); err != nil {
			return fmt.Errorf("failed to write evaluation row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		slog.Error("failed to flush table writer", "error", err)
		return err
	}
	return nil
}

func runsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the profile and confusion tables of a saved evaluation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			rec, err := store.GetEvaluation(ctx, args[0])
			if err != nil {
				return err
			}

			if format != cli.FormatTable {
				return cli.WriteReport(cmd.OutOrStdout(), format, recordReport(rec))
			}
			return writeRecord(cmd.OutOrStdout(), rec)
		},
	}
	addOutputFlag(cmd)
	return cmd
}

func recordReport(rec *storage.EvaluationRecord) *cli.Report {
	r := &cli.Report{
		ID:       rec.ID,
		Dataset:  rec.Dataset,
		Rows:     rec.RowCount,
		Criteria: rec.Criteria,
	}
	for k, b := range rec.Profile {
		r.Profile = append(r.Profile, cli.BoundaryReport{Boundary: electre.BoundaryName(k + 1), Values: b})
	}
	for _, run := range rec.Runs {
		r.Runs = append(r.Runs, cli.NewRunReport(run.Name, run.Procedure, run.Lambda, run.Skipped, run.Confusion))
	}
	return r
}

func writeRecord(out io.Writer, rec *storage.EvaluationRecord) error {
	title := fmt.Sprintf("%s on %s (%d products, %s)",
		rec.ID, rec.Dataset, rec.RowCount, rec.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintln(out, cli.FormatTitle(title))

	profile, err := cli.RenderProfile(electre.NewProfile(rec.Profile), rec.Criteria)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, profile)
	fmt.Fprintln(out)

	for _, run := range rec.Runs {
		fmt.Fprintln(out, cli.RenderRun(run.Name, run.Confusion, run.Skipped))
	}
	return nil
}

func runsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved evaluation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer closeStorage(store)

			if err := store.DeleteEvaluation(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted "+args[0]))
			return nil
		},
	}
}
