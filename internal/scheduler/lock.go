package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/termplan/internal/models"
)

// AdvisoryNotMoved prefixes the advisory raised for every refused mutation.
const AdvisoryNotMoved = "some items were not moved"

// IsHardConstraint reports whether item may never be moved, resized, deleted
// or overlapped.
func IsHardConstraint(item models.Lockable) bool {
	return item.IsLocked() || item.SourceKind() == models.SourceExternal
}

type MutationKind string

const (
	MutationMove   MutationKind = "move"
	MutationResize MutationKind = "resize"
	MutationDelete MutationKind = "delete"
)

// Mutation is a user request against a previously scheduled item. TargetID is
// a block ID, a task ID or an event ID.
//
// Move uses NewStart and keeps the duration, resize keeps the start and uses
// NewEnd, delete ignores both.
type Mutation struct {
	Kind     MutationKind
	TargetID string
	NewStart time.Time
	NewEnd   time.Time
}

// CollectFixed builds the busy spans every run must respect: external events
// and locked tasks that carry a time. A locked span counts even when the rest
// of the task is unusable or already done. Events with an inverted span are
// left out. The result is ordered by start, then item ID.
func CollectFixed(tasks []models.Task, events []models.Event) []models.FixedInterval {
	var fixed []models.FixedInterval
	for _, e := range events {
		if e.Validate() != nil {
			continue
		}
		fixed = append(fixed, models.IntervalFromEvent(e))
	}
	for _, t := range tasks {
		if f, ok := models.IntervalFromTask(t); ok {
			fixed = append(fixed, f)
		}
	}
	sortIntervals(fixed)
	return fixed
}

func sortIntervals(fixed []models.FixedInterval) {
	sort.SliceStable(fixed, func(i, j int) bool {
		if !fixed[i].Start.Equal(fixed[j].Start) {
			return fixed[i].Start.Before(fixed[j].Start)
		}
		return fixed[i].ItemID < fixed[j].ItemID
	})
}

// mutationGate applies mutations to prior blocks, refusing any that touch a
// hard constraint or would break the no-overlap invariant.
type mutationGate struct {
	items map[string]models.Lockable
	fixed []models.FixedInterval
}

func newMutationGate(tasks []models.Task, events []models.Event, fixed []models.FixedInterval) *mutationGate {
	items := make(map[string]models.Lockable, len(tasks)+len(events))
	for _, t := range tasks {
		if _, seen := items[t.ID]; !seen {
			items[t.ID] = t
		}
	}
	for _, e := range events {
		items[e.ID] = e
	}
	for _, f := range fixed {
		items[f.ItemID] = f
	}
	return &mutationGate{items: items, fixed: fixed}
}

// apply returns the updated blocks. The input slice is not modified.
func (g *mutationGate) apply(blocks []models.ScheduledBlock, m Mutation) ([]models.ScheduledBlock, error) {
	reject := func(format string, args ...any) error {
		return &ConstraintViolationError{ItemID: m.TargetID, Op: m.Kind, Msg: fmt.Sprintf(format, args...)}
	}

	if item, ok := g.items[m.TargetID]; ok && IsHardConstraint(item) {
		if item.SourceKind() == models.SourceExternal {
			return blocks, reject("external calendar events are read-only")
		}
		return blocks, reject("item is locked")
	}

	idx := findBlock(blocks, m.TargetID)
	if idx < 0 {
		return blocks, reject("no scheduled block found")
	}

	out := make([]models.ScheduledBlock, len(blocks))
	copy(out, blocks)
	b := out[idx]

	switch m.Kind {
	case MutationDelete:
		return append(out[:idx], out[idx+1:]...), nil
	case MutationMove:
		if m.NewStart.IsZero() {
			return blocks, reject("move needs a new start")
		}
		dur := b.End.Sub(b.Start)
		b.Start = m.NewStart
		b.End = m.NewStart.Add(dur)
	case MutationResize:
		if !m.NewEnd.After(b.Start) {
			return blocks, reject("new end must be after the block start")
		}
		b.End = m.NewEnd
	default:
		return blocks, reject("unknown mutation %q", m.Kind)
	}

	if !sameDay(b.Start, b.End) {
		return blocks, reject("block would cross midnight")
	}
	for _, f := range g.fixed {
		if f.Overlaps(b.Start, b.End) {
			return blocks, reject("would overlap fixed interval %s", f.ItemID)
		}
	}
	for i, other := range out {
		if i == idx || !other.UserEdited {
			continue
		}
		if b.Start.Before(other.End) && other.Start.Before(b.End) {
			return blocks, reject("would overlap edited block %s", other.ID())
		}
	}

	b.UserEdited = true
	out[idx] = b
	return out, nil
}

// findBlock matches a block ID first, then the first block of a task ID.
func findBlock(blocks []models.ScheduledBlock, target string) int {
	for i, b := range blocks {
		if b.ID() == target {
			return i
		}
	}
	for i, b := range blocks {
		if b.TaskID == target {
			return i
		}
	}
	return -1
}

// sameDay reports whether [start, end) lies within one calendar day. An end at
// the following midnight is allowed.
func sameDay(start, end time.Time) bool {
	last := end.Add(-time.Nanosecond)
	sy, sm, sd := start.Date()
	ly, lm, ld := last.Date()
	return sy == ly && sm == lm && sd == ld
}
