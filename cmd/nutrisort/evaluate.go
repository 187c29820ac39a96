package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/nutrisort/internal/cli"
	"github.com/Veraticus/nutrisort/internal/common"
	"github.com/Veraticus/nutrisort/internal/dataset"
	"github.com/Veraticus/nutrisort/internal/electre"
)

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Sort every product and compare with the reference grades",
		Long: `Build the six boundary profiles from the dataset, assign every product
under the pessimistic and the optimistic procedure for each cut level, and
print one confusion table per run.

Derived columns are named ELECTRE_<Pess|Opt>_<lambda>. Use --export to write
the dataset with those columns, and --save to keep the run in the database.`,
		Example: `  nutrisort evaluate --data products.csv
  nutrisort evaluate --data products.csv --lambda 0.55,0.75 --export sorted.csv
  nutrisort evaluate --data products.csv --save -o json`,
		RunE: runEvaluate,
	}

	addDataFlag(cmd)
	addLambdaFlag(cmd)
	addOutputFlag(cmd)
	cmd.Flags().String("export", "", "write the dataset with the derived columns to this CSV file")
	cmd.Flags().Bool("save", false, "store the evaluation in the database")
	cmd.Flags().Bool("no-progress", false, "hide the progress bar")

	return cmd
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	export, _ := cmd.Flags().GetString("export")
	save, _ := cmd.Flags().GetBool("save")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	eval, err := loadEvaluation(cmd)
	if err != nil {
		return err
	}
	cfg, err := eval.Build()
	if err != nil {
		return fmt.Errorf("invalid evaluation configuration: %w", err)
	}
	table, err := loadTable(eval)
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := handler.HandleInterrupts(cmd.Context(), save)
	defer stop()

	if format == cli.FormatTable && !noProgress {
		progress := cli.NewRunProgress(cmd.ErrOrStderr(), len(cfg.Lambdas)*len(electre.Procedures))
		cfg.OnRunDone = progress.Done
	}

	res, err := electre.Evaluate(ctx, table, cfg)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}
	common.LogInfo("Evaluation finished", common.Fields{
		"dataset": eval.Dataset.Path,
		"rows":    res.Table.Len(),
		"runs":    len(res.Runs),
		"skipped": len(res.Skipped),
	})

	if export != "" {
		if err := dataset.WriteCSV(export, res.Table, schemaOf(eval)); err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}
		slog.Info("Exported sorted dataset", "path", export)
	}

	report, err := cli.NewReport(eval.Dataset.Path, res)
	if err != nil {
		return err
	}

	if save {
		store, err := initStorage(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer closeStorage(store)

		id, err := store.SaveEvaluation(ctx, eval.Dataset.Path, res)
		if err != nil {
			return fmt.Errorf("failed to save evaluation: %w", err)
		}
		report.ID = id
		slog.Info("Saved evaluation", "id", id)
	}

	if format != cli.FormatTable {
		return cli.WriteReport(cmd.OutOrStdout(), format, report)
	}

	out := cmd.OutOrStdout()
	title := fmt.Sprintf("ELECTRE Tri-B on %s (%d products)", eval.Dataset.Path, res.Table.Len())
	fmt.Fprintln(out, cli.FormatTitle(title))

	skipped := make(map[string]bool, len(res.Skipped))
	for _, name := range res.Skipped {
		skipped[name] = true
	}
	for _, run := range res.Runs {
		ct, _ := res.Confusion(run.Name)
		fmt.Fprintln(out, cli.RenderRun(run.Name, ct, skipped[run.Name]))
	}
	if report.ID != "" {
		fmt.Fprintln(out, cli.FormatSuccess("Saved as "+report.ID))
	}
	return nil
}
