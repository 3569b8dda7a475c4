package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/termplan/internal/constants"
	"github.com/julianstephens/termplan/internal/models"
	"github.com/julianstephens/termplan/internal/scheduler"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateTaskTitle ConflictType = "duplicate_task_title"
	ConflictInvalidTask        ConflictType = "invalid_task"
	ConflictInvalidDateTime    ConflictType = "invalid_datetime"
	ConflictInvalidEvent       ConflictType = "invalid_event"
	ConflictOverlappingFixed   ConflictType = "overlapping_fixed"
	ConflictOverlappingBlocks  ConflictType = "overlapping_blocks"
	ConflictBlockOverlapsFixed ConflictType = "block_overlaps_fixed"
	ConflictOutsideWorkHours   ConflictType = "outside_work_hours"
	ConflictMissingTaskID      ConflictType = "missing_task_id"
	ConflictOvercommitted      ConflictType = "overcommitted"
)

// Conflict represents a detected conflict in stored data or a plan run
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // YYYY-MM-DD format (if applicable)
	Items       []string // Titles or block IDs involved
	TimeRange   string   // Human-readable time range (if applicable)
	TaskIDs     []string // IDs of tasks involved (for auto-fixing)
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string
	SourceConflict Conflict
}

func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Merge appends other's conflicts.
func (vr *ValidationResult) Merge(other ValidationResult) {
	vr.Conflicts = append(vr.Conflicts, other.Conflicts...)
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

// Validator checks stored tasks, events and plan runs for conflicts
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateTasks reports duplicate titles and malformed task data.
// Soft-deleted tasks are ignored.
func (v *Validator) ValidateTasks(tasks []models.Task) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	titles := map[string][]string{}
	var order []string
	for _, task := range tasks {
		if task.DeletedAt != nil || strings.TrimSpace(task.Title) == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(task.Title))
		if _, seen := titles[key]; !seen {
			order = append(order, key)
		}
		titles[key] = append(titles[key], task.ID)
	}
	for _, key := range order {
		ids := titles[key]
		if len(ids) < 2 {
			continue
		}
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictDuplicateTaskTitle,
			Description: fmt.Sprintf("Duplicate task title: %q (IDs: %v)", key, ids),
			Items:       []string{key},
			TaskIDs:     ids,
		})
	}

	for _, task := range tasks {
		if task.DeletedAt != nil {
			continue
		}
		if _, _, err := task.Due(time.UTC); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDateTime,
				Description: fmt.Sprintf("Task %q has an invalid due date: %s", task.Title, task.DueDate),
				Items:       []string{task.Title},
				TaskIDs:     []string{task.ID},
			})
			continue
		}
		if task.LockedStart != nil && task.LockedEnd != nil && !task.LockedEnd.After(*task.LockedStart) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictInvalidDateTime,
				Description: fmt.Sprintf("Task %q has locked end (%s) before start (%s)", task.Title,
					task.LockedEnd.Format(constants.DateTimeFormat), task.LockedStart.Format(constants.DateTimeFormat)),
				Items:   []string{task.Title},
				TaskIDs: []string{task.ID},
			})
			continue
		}
		if err := task.Validate(); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidTask,
				Description: fmt.Sprintf("Task %q: %v", task.Title, err),
				Items:       []string{task.Title},
				TaskIDs:     []string{task.ID},
			})
		}
	}

	return result
}

// ValidateFixed reports malformed events and overlaps between fixed
// intervals, i.e. calendar events and locked timed tasks.
func (v *Validator) ValidateFixed(tasks []models.Task, events []models.Event) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	for _, e := range events {
		if err := e.Validate(); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidEvent,
				Description: fmt.Sprintf("Event %q is ignored by the planner: %v", e.Title, err),
				Items:       []string{e.Title},
			})
		}
	}

	live := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.DeletedAt == nil {
			live = append(live, t)
		}
	}
	fixed := scheduler.CollectFixed(live, events)
	names := fixedNames(live, events)

	// Sorted by start, so the inner loop stops at the first non-overlap.
	for i := 0; i < len(fixed); i++ {
		for j := i + 1; j < len(fixed) && fixed[j].Start.Before(fixed[i].End); j++ {
			a, b := fixed[i], fixed[j]
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictOverlappingFixed,
				Description: fmt.Sprintf("%s: %q (%s) overlaps %q (%s)", a.Start.Format(constants.DateFormat),
					names[a.ItemID], span(a.Start, a.End), names[b.ItemID], span(b.Start, b.End)),
				Date:      a.Start.Format(constants.DateFormat),
				Items:     []string{names[a.ItemID], names[b.ItemID]},
				TimeRange: span(a.Start, a.End),
			})
		}
	}
	return result
}

// ValidatePlan checks a stored run against current data. Block times must
// already be in the user's location.
func (v *Validator) ValidatePlan(run models.PlanRun, tasks []models.Task, events []models.Event, cfg scheduler.Config) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	taskMap := make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		if t.DeletedAt == nil {
			taskMap[t.ID] = t
		}
	}
	title := func(id string) string {
		if t, ok := taskMap[id]; ok {
			return t.Title
		}
		return "Unknown"
	}

	blocks := append([]models.ScheduledBlock(nil), run.Blocks...)
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Start.Before(blocks[j].Start) })

	minutesByDay := map[string]int{}
	var days []string
	for _, b := range blocks {
		day := b.Day()
		if _, ok := minutesByDay[day]; !ok {
			days = append(days, day)
		}
		minutesByDay[day] += b.Minutes()

		if _, ok := taskMap[b.TaskID]; !ok {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictMissingTaskID,
				Description: fmt.Sprintf("%s: block %s references missing task ID: %s", day, b.ID(), b.TaskID),
				Date:        day,
				Items:       []string{b.ID()},
			})
		}

		if !withinWorkHours(b, cfg.WorkHours) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictOutsideWorkHours,
				Description: fmt.Sprintf("%s: %s %q lies outside work hours %02d:00-%02d:00",
					day, span(b.Start, b.End), title(b.TaskID), cfg.WorkHours.StartHour, cfg.WorkHours.EndHour),
				Date:      day,
				Items:     []string{b.ID()},
				TimeRange: span(b.Start, b.End),
				TaskIDs:   []string{b.TaskID},
			})
		}
	}

	for i := 0; i < len(blocks); i++ {
		for j := i + 1; j < len(blocks) && blocks[j].Start.Before(blocks[i].End); j++ {
			a, b := blocks[i], blocks[j]
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictOverlappingBlocks,
				Description: fmt.Sprintf("%s: %s %q overlaps %q",
					a.Day(), span(a.Start, a.End), title(a.TaskID), title(b.TaskID)),
				Date:      a.Day(),
				Items:     []string{a.ID(), b.ID()},
				TimeRange: span(a.Start, a.End),
				TaskIDs:   []string{a.TaskID, b.TaskID},
			})
		}
	}

	names := fixedNames(tasks, events)
	for _, f := range scheduler.CollectFixed(tasks, events) {
		for _, b := range blocks {
			if b.TaskID == f.ItemID || !f.Overlaps(b.Start, b.End) {
				continue
			}
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictBlockOverlapsFixed,
				Description: fmt.Sprintf("%s: %s %q overlaps fixed %q (%s)",
					b.Day(), span(b.Start, b.End), title(b.TaskID), names[f.ItemID], span(f.Start, f.End)),
				Date:      b.Day(),
				Items:     []string{b.ID(), f.ItemID},
				TimeRange: span(b.Start, b.End),
				TaskIDs:   []string{b.TaskID},
			})
		}
	}

	window := (cfg.WorkHours.EndHour - cfg.WorkHours.StartHour) * 60
	if window > 0 {
		threshold := window * 8 / 10
		for _, day := range days {
			planned := minutesByDay[day]
			if planned > threshold {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type: ConflictOvercommitted,
					Description: fmt.Sprintf("%s: %.1fh scheduled in a %.1fh work window (>80%% capacity)",
						day, float64(planned)/60, float64(window)/60),
					Date: day,
				})
			}
		}
	}

	return result
}

func withinWorkHours(b models.ScheduledBlock, wh scheduler.WorkHours) bool {
	y, m, d := b.Start.Date()
	loc := b.Start.Location()
	start := time.Date(y, m, d, wh.StartHour, 0, 0, 0, loc)
	end := time.Date(y, m, d, wh.EndHour, 0, 0, 0, loc)
	return !b.Start.Before(start) && !b.End.After(end)
}

func fixedNames(tasks []models.Task, events []models.Event) map[string]string {
	names := make(map[string]string, len(tasks)+len(events))
	for _, t := range tasks {
		names[t.ID] = t.Title
	}
	for _, e := range events {
		names[e.ID] = e.Title
	}
	return names
}

func span(start, end time.Time) string {
	return start.Format(constants.TimeFormat) + "-" + end.Format(constants.TimeFormat)
}

// AutoFixDuplicateTasks keeps the oldest task of each duplicate-title group
// and soft-deletes the rest through deleteFunc.
func AutoFixDuplicateTasks(conflicts []Conflict, tasks []models.Task, deleteFunc func(id string) error) []FixAction {
	actions := []FixAction{}

	taskMap := make(map[string]models.Task, len(tasks))
	for _, task := range tasks {
		taskMap[task.ID] = task
	}

	for _, conflict := range conflicts {
		if conflict.Type != ConflictDuplicateTaskTitle || len(conflict.TaskIDs) <= 1 {
			continue
		}

		var group []models.Task
		for _, id := range conflict.TaskIDs {
			if task, ok := taskMap[id]; ok && task.DeletedAt == nil {
				group = append(group, task)
			}
		}
		if len(group) <= 1 {
			continue
		}

		sort.Slice(group, func(i, j int) bool {
			if !group[i].CreatedAt.Equal(group[j].CreatedAt) {
				return group[i].CreatedAt.Before(group[j].CreatedAt)
			}
			return group[i].ID < group[j].ID
		})

		keep := group[0]
		var deletedIDs, failedIDs []string
		for _, task := range group[1:] {
			if err := deleteFunc(task.ID); err != nil {
				failedIDs = append(failedIDs, task.ID)
				continue
			}
			deletedIDs = append(deletedIDs, task.ID)
		}

		switch {
		case len(deletedIDs) > 0:
			msg := fmt.Sprintf("Removed %d duplicate task(s) titled %q (kept ID: %s, removed: %v)", len(deletedIDs), keep.Title, keep.ID, deletedIDs)
			if len(failedIDs) > 0 {
				msg += fmt.Sprintf(" (failed to remove: %v)", failedIDs)
			}
			actions = append(actions, FixAction{Action: msg, SourceConflict: conflict})
		case len(failedIDs) > 0:
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Failed to remove duplicates for %q: %v", keep.Title, failedIDs),
				SourceConflict: conflict,
			})
		}
	}

	return actions
}
