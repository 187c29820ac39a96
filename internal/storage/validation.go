package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/nutrisort/internal/electre"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidResult    = errors.New("invalid evaluation result")
	ErrSchemaMismatched = errors.New("database schema version mismatch")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateResult makes sure every run has a confusion table and the
// profile is present.
func validateResult(res *electre.Result) error {
	if res == nil {
		return fmt.Errorf("%w: result", ErrNilParameter)
	}
	if res.Profile == nil {
		return fmt.Errorf("%w: missing profile", ErrInvalidResult)
	}
	if res.Table == nil {
		return fmt.Errorf("%w: missing table", ErrInvalidResult)
	}
	if len(res.Criteria) == 0 {
		return fmt.Errorf("%w: no criteria", ErrInvalidResult)
	}
	if len(res.Runs) == 0 {
		return fmt.Errorf("%w: no runs", ErrInvalidResult)
	}
	for _, run := range res.Runs {
		if _, ok := res.Confusions[run.Name]; !ok {
			return fmt.Errorf("%w: run %s has no confusion table", ErrInvalidResult, run.Name)
		}
	}
	return nil
}
