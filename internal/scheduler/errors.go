package scheduler

import (
	"errors"
	"fmt"
)

// Sentinel errors for the scheduler package.
// Use errors.Is to check: errors.Is(err, scheduler.ErrInvalidConfig)
var (
	ErrInvalidConfig       = errors.New("scheduler: invalid configuration")
	ErrConstraintViolation = errors.New("scheduler: hard constraint violation")
	ErrDuplicateDecision   = errors.New("scheduler: task already has a terminal decision")
	ErrInvalidTransition   = errors.New("scheduler: invalid run state transition")
)

// ConfigError is returned before a run starts when the planner
// configuration cannot produce a valid slot grid.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfig.Error(), e.Field, e.Msg)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

func configErrorf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// ConstraintViolationError describes a refused mutation of a hard-constrained item.
type ConstraintViolationError struct {
	ItemID string
	Op     MutationKind
	Msg    string
}

func (e *ConstraintViolationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: cannot %s %s: %s", ErrConstraintViolation.Error(), e.Op, e.ItemID, e.Msg)
}

func (e *ConstraintViolationError) Unwrap() error { return ErrConstraintViolation }
