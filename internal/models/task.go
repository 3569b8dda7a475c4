package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/termplan/internal/constants"
)

// ErrInvalidTask is wrapped by every Task validation failure.
var ErrInvalidTask = errors.New("invalid task data")

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Category string

const (
	CategoryExam     Category = "exam"
	CategoryProject  Category = "project"
	CategoryQuiz     Category = "quiz"
	CategoryHomework Category = "homework"
	CategoryReading  Category = "reading"
)

type EnergyLevel string

const (
	EnergyLow    EnergyLevel = "low"
	EnergyMedium EnergyLevel = "medium"
	EnergyHigh   EnergyLevel = "high"
)

// Value maps the energy requirement onto the 0..1 scale used by energy profiles.
func (e EnergyLevel) Value() float64 {
	switch e {
	case EnergyLow:
		return 0
	case EnergyHigh:
		return 1.0
	default:
		return 0.5
	}
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (c Category) Valid() bool {
	switch c {
	case CategoryExam, CategoryProject, CategoryQuiz, CategoryHomework, CategoryReading:
		return true
	}
	return false
}

func (e EnergyLevel) Valid() bool {
	switch e {
	case EnergyLow, EnergyMedium, EnergyHigh:
		return true
	}
	return false
}

// ParsePriority parses a priority name, case-insensitively.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q (expected low|medium|high)", s)
	}
	return p, nil
}

// ParseCategory parses a category name, case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("invalid category %q (expected exam|project|quiz|homework|reading)", s)
	}
	return c, nil
}

// ParseEnergyLevel parses an energy requirement, case-insensitively.
func ParseEnergyLevel(s string) (EnergyLevel, error) {
	e := EnergyLevel(strings.ToLower(strings.TrimSpace(s)))
	if !e.Valid() {
		return "", fmt.Errorf("invalid energy level %q (expected low|medium|high)", s)
	}
	return e, nil
}

type Task struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	DueDate      string      `json:"due_date,omitempty"` // YYYY-MM-DD format
	EstimatedMin int         `json:"estimated_min"`
	Priority     Priority    `json:"priority"`
	Category     Category    `json:"category"`
	Energy       EnergyLevel `json:"energy"`
	Locked       bool        `json:"locked"`
	LockedStart  *time.Time  `json:"locked_start,omitempty"`
	LockedEnd    *time.Time  `json:"locked_end,omitempty"`
	Completed    bool        `json:"completed"`
	CreatedAt    time.Time   `json:"created_at"`
	DeletedAt    *string     `json:"deleted_at,omitempty"` // RFC3339 timestamp
}

func (t Task) LockID() string         { return t.ID }
func (t Task) IsLocked() bool         { return t.Locked }
func (t Task) SourceKind() SourceKind { return SourceInternal }

// HasLockedTime reports whether a locked task already occupies a concrete span.
func (t Task) HasLockedTime() bool {
	return t.Locked && t.LockedStart != nil && t.LockedEnd != nil
}

// Due parses the due date in loc. ok is false when the task has no due date.
func (t Task) Due(loc *time.Location) (due time.Time, ok bool, err error) {
	if t.DueDate == "" {
		return time.Time{}, false, nil
	}
	d, err := time.ParseInLocation(constants.DateFormat, t.DueDate, loc)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: unparsable due date %q", ErrInvalidTask, t.DueDate)
	}
	return d, true, nil
}

// Validate checks the fields the scheduler relies on.
func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidTask)
	}
	if t.EstimatedMin <= 0 {
		return fmt.Errorf("%w: estimated minutes must be positive, got %d", ErrInvalidTask, t.EstimatedMin)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidTask, t.Priority)
	}
	if !t.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidTask, t.Category)
	}
	if !t.Energy.Valid() {
		return fmt.Errorf("%w: unknown energy level %q", ErrInvalidTask, t.Energy)
	}
	if _, _, err := t.Due(time.UTC); err != nil {
		return err
	}
	if (t.LockedStart == nil) != (t.LockedEnd == nil) {
		return fmt.Errorf("%w: locked span needs both start and end", ErrInvalidTask)
	}
	if t.LockedStart != nil && !t.LockedEnd.After(*t.LockedStart) {
		return fmt.Errorf("%w: locked span ends before it starts", ErrInvalidTask)
	}
	return nil
}
