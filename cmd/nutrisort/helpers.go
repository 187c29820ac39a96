package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/nutrisort/internal/cli"
	"github.com/Veraticus/nutrisort/internal/common"
	"github.com/Veraticus/nutrisort/internal/config"
	"github.com/Veraticus/nutrisort/internal/dataset"
	"github.com/Veraticus/nutrisort/internal/model"
	"github.com/Veraticus/nutrisort/internal/storage"
)

const defaultDBPath = "$HOME/.local/share/nutrisort/nutrisort.db"

// initStorage opens and migrates the evaluation store.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func closeStorage(store *storage.SQLiteStorage) {
	if err := store.Close(); err != nil {
		common.LogError(err, "failed to close storage", common.Fields{"path": store.Path()})
	}
}

// addDataFlag registers --data on commands that read a dataset.
func addDataFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("data", "d", "", "CSV dataset to evaluate (overrides dataset.path)")
}

// addLambdaFlag registers --lambda on commands that assign products.
func addLambdaFlag(cmd *cobra.Command) {
	cmd.Flags().Float64Slice("lambda", nil, "cut level(s) in (0, 1]; repeat or comma-separate (overrides lambdas)")
}

// loadEvaluation reads the evaluation configuration and applies the command
// line overrides.
func loadEvaluation(cmd *cobra.Command) (*config.Evaluation, error) {
	eval, err := config.LoadEvaluation(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("invalid configuration", err)
	}

	if data, _ := cmd.Flags().GetString("data"); data != "" {
		eval.Dataset.Path = config.ExpandPath(data)
	}
	if cmd.Flags().Changed("lambda") {
		lambdas, err := cmd.Flags().GetFloat64Slice("lambda")
		if err != nil {
			return nil, err
		}
		eval.Lambdas = lambdas
	}
	if eval.Dataset.Path == "" {
		return nil, common.NewUserError("no dataset given",
			fmt.Errorf("%w: use --data or set dataset.path", common.ErrMissingConfig))
	}
	return eval, nil
}

func schemaOf(eval *config.Evaluation) dataset.Schema {
	return dataset.Schema{
		IDColumn:        eval.Dataset.IDColumn,
		ReferenceColumn: eval.Dataset.ReferenceColumn,
		Criteria:        eval.CriterionIDs(),
	}
}

func loadTable(eval *config.Evaluation) (*model.Table, error) {
	table, err := dataset.Load(eval.Dataset.Path, schemaOf(eval))
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("failed to load %s", eval.Dataset.Path), err)
	}
	common.LogDebug("Loaded dataset", common.Fields{"path": eval.Dataset.Path, "rows": table.Len()})
	return table, nil
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("output")
	switch format {
	case cli.FormatTable, cli.FormatJSON, cli.FormatYAML:
		return format, nil
	default:
		return "", common.NewUserError("invalid --output",
			fmt.Errorf("%w: %q is not one of table, json, yaml", common.ErrInvalidConfig, format))
	}
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", cli.FormatTable, "output format (table, json, yaml)")
}
