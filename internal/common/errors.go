// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
	"strings"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound = errors.New("not found")

	// Data errors.
	ErrInvalidData = errors.New("invalid data")
	ErrNoRows      = errors.New("no rows to evaluate")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// DataError rejects a single row or value of the evaluated table.
// Any of RowID, Criterion and Value may be empty when unknown.
type DataError struct {
	Err       error
	RowID     string
	Criterion string
	Value     string
}

func (e *DataError) Error() string {
	parts := make([]string, 0, 3)
	if e.RowID != "" {
		parts = append(parts, fmt.Sprintf("row %q", e.RowID))
	}
	if e.Criterion != "" {
		parts = append(parts, fmt.Sprintf("criterion %q", e.Criterion))
	}
	if e.Value != "" {
		parts = append(parts, fmt.Sprintf("value %q", e.Value))
	}

	msg := ErrInvalidData.Error()
	if len(parts) > 0 {
		msg += " (" + strings.Join(parts, ", ") + ")"
	}
	if e.Err != nil && !errors.Is(e.Err, ErrInvalidData) {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both ErrInvalidData and the underlying cause.
func (e *DataError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidData}
	}
	return []error{ErrInvalidData, e.Err}
}

// NewDataError creates a data error for the given row and criterion.
func NewDataError(rowID, criterion, value string, err error) error {
	return &DataError{
		RowID:     rowID,
		Criterion: criterion,
		Value:     value,
		Err:       err,
	}
}
