package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/nutrisort/internal/common"
	"github.com/Veraticus/nutrisort/internal/electre"
	"github.com/Veraticus/nutrisort/internal/model"
)

// EvaluationSummary is one row of the evaluations listing.
type EvaluationSummary struct {
	CreatedAt time.Time
	ID        string
	Dataset   string
	RowCount  int
	RunCount  int
}

// RunRecord is a stored run with its confusion table.
type RunRecord struct {
	Confusion *model.ConfusionTable
	Name      string
	Procedure string
	Lambda    float64
	Skipped   bool
}

// EvaluationRecord is a stored evaluation.
type EvaluationRecord struct {
	EvaluationSummary
	// Profile holds pi1..pi6, worst first.
	Profile         [electre.ProfileCount]model.Alternative
	Criteria        []string
	Categories      []string
	ReferenceLabels []string
	Runs            []RunRecord
}

// SaveEvaluation stores the runs, confusion tables and profile of res and
// returns the new evaluation id.
func (s *SQLiteStorage) SaveEvaluation(ctx context.Context, dataset string, res *electre.Result) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateString(dataset, "dataset"); err != nil {
		return "", err
	}
	if err := validateResult(res); err != nil {
		return "", err
	}

	first := res.Confusions[res.Runs[0].Name]
	categories, err := json.Marshal(first.ColLabels)
	if err != nil {
		return "", fmt.Errorf("failed to encode categories: %w", err)
	}
	reference, err := json.Marshal(first.RowLabels)
	if err != nil {
		return "", fmt.Errorf("failed to encode reference labels: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO evaluations (id, dataset, row_count, categories, reference_labels, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, dataset, res.Table.Len(), string(categories), string(reference), time.Now().UTC()); err != nil {
		return "", fmt.Errorf("failed to save evaluation: %w", err)
	}

	skipped := make(map[string]bool, len(res.Skipped))
	for _, name := range res.Skipped {
		skipped[name] = true
	}

	for pos, run := range res.Runs {
		ct := res.Confusions[run.Name]
		result, err := tx.ExecContext(ctx, `
			INSERT INTO runs (evaluation_id, position, name, procedure, lambda, skipped, unmatched)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, pos, run.Name, run.Procedure.String(), run.Lambda, skipped[run.Name], ct.Unmatched)
		if err != nil {
			return "", fmt.Errorf("failed to save run %s: %w", run.Name, err)
		}
		runID, err := result.LastInsertId()
		if err != nil {
			return "", fmt.Errorf("failed to get run id: %w", err)
		}

		for i, truth := range ct.RowLabels {
			for j, predicted := range ct.ColLabels {
				if ct.Counts[i][j] == 0 {
					continue
				}
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO confusion_cells (run_id, reference, predicted, count)
					VALUES (?, ?, ?, ?)
				`, runID, truth, predicted, ct.Counts[i][j]); err != nil {
					return "", fmt.Errorf("failed to save confusion cell: %w", err)
				}
			}
		}
	}

	for k := 1; k <= electre.ProfileCount; k++ {
		boundary, err := res.Profile.Boundary(k)
		if err != nil {
			return "", err
		}
		for pos, c := range res.Criteria {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO profile_values (evaluation_id, boundary, criterion, position, value)
				VALUES (?, ?, ?, ?, ?)
			`, id, k, c, pos, boundary[c]); err != nil {
				return "", fmt.Errorf("failed to save profile value: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit evaluation: %w", err)
	}
	return id, nil
}

// ListEvaluations returns all stored evaluations, newest first.
func (s *SQLiteStorage) ListEvaluations(ctx context.Context) ([]EvaluationSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.dataset, e.row_count, e.created_at, COUNT(r.id)
		FROM evaluations e
		LEFT JOIN runs r ON r.evaluation_id = e.id
		GROUP BY e.id
		ORDER BY e.created_at DESC, e.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []EvaluationSummary
	for rows.Next() {
		var e EvaluationSummary
		if err := rows.Scan(&e.ID, &e.Dataset, &e.RowCount, &e.CreatedAt, &e.RunCount); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetEvaluation loads one evaluation with its runs and profile.
func (s *SQLiteStorage) GetEvaluation(ctx context.Context, id string) (*EvaluationRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	rec := &EvaluationRecord{}
	var categories, reference string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, dataset, row_count, categories, reference_labels, created_at
		FROM evaluations WHERE id = ?
	`, id).Scan(&rec.ID, &rec.Dataset, &rec.RowCount, &categories, &reference, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("evaluation %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}
	if err := json.Unmarshal([]byte(categories), &rec.Categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	if err := json.Unmarshal([]byte(reference), &rec.ReferenceLabels); err != nil {
		return nil, fmt.Errorf("failed to decode reference labels: %w", err)
	}

	if err := s.loadRuns(ctx, rec); err != nil {
		return nil, err
	}
	if err := s.loadProfile(ctx, rec); err != nil {
		return nil, err
	}
	rec.RunCount = len(rec.Runs)
	return rec, nil
}

func (s *SQLiteStorage) loadRuns(ctx context.Context, rec *EvaluationRecord) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, procedure, lambda, skipped, unmatched
		FROM runs WHERE evaluation_id = ? ORDER BY position
	`, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to query runs: %w", err)
	}

	var ids []int64
	for rows.Next() {
		var (
			runID     int64
			run       RunRecord
			unmatched int
		)
		if err := rows.Scan(&runID, &run.Name, &run.Procedure, &run.Lambda, &run.Skipped, &unmatched); err != nil {
			_ = rows.Close()
			return fmt.Errorf("failed to scan run: %w", err)
		}
		run.Confusion = model.NewConfusionTable(rec.ReferenceLabels, rec.Categories)
		run.Confusion.Unmatched = unmatched
		rec.Runs = append(rec.Runs, run)
		ids = append(ids, runID)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for i, runID := range ids {
		if err := s.loadCells(ctx, runID, rec.Runs[i].Confusion); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStorage) loadCells(ctx context.Context, runID int64, ct *model.ConfusionTable) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT reference, predicted, count FROM confusion_cells WHERE run_id = ?
	`, runID)
	if err != nil {
		return fmt.Errorf("failed to query confusion cells: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var truth, predicted string
		var n int
		if err := rows.Scan(&truth, &predicted, &n); err != nil {
			return fmt.Errorf("failed to scan confusion cell: %w", err)
		}
		if !ct.Set(truth, predicted, n) {
			return fmt.Errorf("stored cell (%s, %s) is outside the stored labels", truth, predicted)
		}
	}
	return rows.Err()
}

func (s *SQLiteStorage) loadProfile(ctx context.Context, rec *EvaluationRecord) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT boundary, criterion, value FROM profile_values
		WHERE evaluation_id = ? ORDER BY boundary, position
	`, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to query profile: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for k := range rec.Profile {
		rec.Profile[k] = make(model.Alternative)
	}
	for rows.Next() {
		var k int
		var c string
		var v float64
		if err := rows.Scan(&k, &c, &v); err != nil {
			return fmt.Errorf("failed to scan profile value: %w", err)
		}
		if k < 1 || k > electre.ProfileCount {
			return fmt.Errorf("stored boundary %d: %w", k, electre.ErrProfileIndex)
		}
		rec.Profile[k-1][c] = v
		if k == 1 {
			rec.Criteria = append(rec.Criteria, c)
		}
	}
	return rows.Err()
}

// DeleteEvaluation removes an evaluation and everything attached to it.
func (s *SQLiteStorage) DeleteEvaluation(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM evaluations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete evaluation: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("evaluation %s: %w", id, common.ErrNotFound)
	}
	return nil
}
