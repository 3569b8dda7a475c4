package models

import (
	"fmt"
	"time"
)

// SourceKind says where a schedulable item came from.
type SourceKind string

const (
	SourceInternal SourceKind = "internal"
	SourceLocked   SourceKind = "locked"
	SourceExternal SourceKind = "external"
)

// Lockable is the capability shared by everything the planner may be asked to
// move: tasks, calendar events, fixed intervals and scheduled blocks.
type Lockable interface {
	LockID() string
	IsLocked() bool
	SourceKind() SourceKind
}

// Event is a commitment imported from an external calendar.
type Event struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (e Event) LockID() string         { return e.ID }
func (e Event) IsLocked() bool         { return false }
func (e Event) SourceKind() SourceKind { return SourceExternal }

func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event is missing an id")
	}
	if !e.End.After(e.Start) {
		return fmt.Errorf("event %q ends before it starts", e.Title)
	}
	return nil
}

// FixedInterval is an immutable busy span.
type FixedInterval struct {
	ItemID string     `json:"item_id"`
	Start  time.Time  `json:"start"`
	End    time.Time  `json:"end"`
	Source SourceKind `json:"source"`
}

func (f FixedInterval) LockID() string         { return f.ItemID }
func (f FixedInterval) IsLocked() bool         { return f.Source == SourceLocked }
func (f FixedInterval) SourceKind() SourceKind { return f.Source }

// Overlaps reports whether [start, end) intersects the interval.
func (f FixedInterval) Overlaps(start, end time.Time) bool {
	return start.Before(f.End) && f.Start.Before(end)
}

// IntervalFromEvent converts an external event into a busy span.
func IntervalFromEvent(e Event) FixedInterval {
	return FixedInterval{ItemID: e.ID, Start: e.Start, End: e.End, Source: SourceExternal}
}

// IntervalFromTask converts a locked, timed task into a busy span. Only the
// id and the span are consulted. ok is false when the task carries no usable
// locked time.
func IntervalFromTask(t Task) (FixedInterval, bool) {
	if t.ID == "" || !t.HasLockedTime() || !t.LockedEnd.After(*t.LockedStart) {
		return FixedInterval{}, false
	}
	return FixedInterval{ItemID: t.ID, Start: *t.LockedStart, End: *t.LockedEnd, Source: SourceLocked}, true
}
