// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
)

// Direction indicates whether larger or smaller values of a criterion are preferred.
type Direction int

const (
	// Maximize means larger values are better.
	Maximize Direction = 1
	// Minimize means smaller values are better.
	Minimize Direction = -1
)

// String returns the configuration name of the direction.
func (d Direction) String() string {
	switch d {
	case Maximize:
		return "maximize"
	case Minimize:
		return "minimize"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	return d == Maximize || d == Minimize
}

// ParseDirection accepts the names and numeric forms used in configuration files.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "max", "maximize", "1", "+1":
		return Maximize, nil
	case "min", "minimize", "-1":
		return Minimize, nil
	default:
		return 0, fmt.Errorf("unknown direction %q (use maximize or minimize)", s)
	}
}

// Criterion is one normalized decision criterion.
type Criterion struct {
	ID                  string
	Direction           Direction
	Weight              float64
	PreferenceThreshold float64
}

// Validate checks that the criterion is well formed.
func (c Criterion) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("criterion id is required")
	}
	if !c.Direction.Valid() {
		return fmt.Errorf("criterion %q: invalid direction %d", c.ID, int(c.Direction))
	}
	if c.Weight < 0 {
		return fmt.Errorf("criterion %q: weight must be non-negative, got %g", c.ID, c.Weight)
	}
	if c.PreferenceThreshold < 0 {
		return fmt.Errorf("criterion %q: preference threshold must be non-negative, got %g", c.ID, c.PreferenceThreshold)
	}
	return nil
}
