package scheduler

import (
	"fmt"

	"github.com/julianstephens/termplan/internal/models"
)

// Log is the append-only decision record of a single run.
type Log struct {
	entries  []models.LogEntry
	terminal map[string]bool
}

func NewLog() *Log {
	return &Log{terminal: make(map[string]bool)}
}

// Record appends a decision. A second terminal decision for the same task is
// refused with ErrDuplicateDecision.
func (l *Log) Record(taskID string, decision models.Decision, slots []models.SlotRange, score float64, reason string) error {
	if decision.Terminal() {
		if l.terminal[taskID] {
			return fmt.Errorf("%w: %s", ErrDuplicateDecision, taskID)
		}
		l.terminal[taskID] = true
	}

	var ranges []models.SlotRange
	if len(slots) > 0 {
		ranges = append(ranges, slots...)
	}
	l.entries = append(l.entries, models.LogEntry{
		Seq:      len(l.entries) + 1,
		TaskID:   taskID,
		Decision: decision,
		Slots:    ranges,
		Score:    score,
		Reason:   reason,
	})
	return nil
}

// Entries returns a copy of the recorded entries in order.
func (l *Log) Entries() []models.LogEntry {
	out := make([]models.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) HasTerminal(taskID string) bool {
	return l.terminal[taskID]
}

func (l *Log) Len() int {
	return len(l.entries)
}
