package models

import (
	"time"

	"github.com/julianstephens/termplan/internal/constants"
)

type Decision string

const (
	DecisionPlaced     Decision = "placed"
	DecisionSkipped    Decision = "skipped"
	DecisionOverflowed Decision = "overflowed"
	// DecisionRejected records a refused mutation or a preserved edit that now
	// collides with a busy span. It is not a terminal task decision.
	DecisionRejected Decision = "rejected"
)

// Terminal reports whether the decision settles a task for the run.
func (d Decision) Terminal() bool {
	return d == DecisionPlaced || d == DecisionSkipped || d == DecisionOverflowed
}

type OverflowReason string

const (
	ReasonInsufficientSlots OverflowReason = "insufficient contiguous slots"
	ReasonHorizonExceeded   OverflowReason = "horizon exceeded"
	ReasonInvalidData       OverflowReason = "invalid data"
)

type SlotRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type ScheduledBlock struct {
	TaskID     string    `json:"task_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	SlotCount  int       `json:"slot_count"`
	Score      float64   `json:"score"`
	UserEdited bool      `json:"user_edited"`
}

// ID identifies a block by task and start, which stays unique for split tasks.
func (b ScheduledBlock) ID() string {
	return b.TaskID + "@" + b.Start.Format(constants.BlockIDFormat)
}

// Day returns the calendar day (YYYY-MM-DD) the block lies in.
func (b ScheduledBlock) Day() string {
	return b.Start.Format(constants.DateFormat)
}

func (b ScheduledBlock) Minutes() int {
	return int(b.End.Sub(b.Start).Minutes())
}

func (b ScheduledBlock) LockID() string         { return b.ID() }
func (b ScheduledBlock) IsLocked() bool         { return false }
func (b ScheduledBlock) SourceKind() SourceKind { return SourceInternal }

type OverflowEntry struct {
	TaskID string         `json:"task_id"`
	Reason OverflowReason `json:"reason"`
}

// LogEntry explains one scheduling decision.
type LogEntry struct {
	Seq      int         `json:"seq"`
	TaskID   string      `json:"task_id"`
	Decision Decision    `json:"decision"`
	Slots    []SlotRange `json:"slots,omitempty"`
	Score    float64     `json:"score"`
	Reason   string      `json:"reason"`
}

// Advisory is a non-fatal notice surfaced to the caller, e.g. a refused move.
type Advisory struct {
	ItemID  string `json:"item_id"`
	Message string `json:"message"`
}

// PlanRun is the persisted output of one scheduling pass.
type PlanRun struct {
	Revision   int              `json:"revision"`
	Today      string           `json:"today"`      // YYYY-MM-DD format
	CreatedAt  string           `json:"created_at"` // RFC3339 timestamp
	Blocks     []ScheduledBlock `json:"blocks"`
	Overflow   []OverflowEntry  `json:"overflow"`
	Log        []LogEntry       `json:"log"`
	Advisories []Advisory       `json:"advisories,omitempty"`
}

// BlocksOn returns the run's blocks for one calendar day, in order.
func (r PlanRun) BlocksOn(day string) []ScheduledBlock {
	var out []ScheduledBlock
	for _, b := range r.Blocks {
		if b.Day() == day {
			out = append(out, b)
		}
	}
	return out
}

// In returns a copy of the run with every time converted to loc.
// Stored runs come back in UTC; block IDs depend on the wall clock.
func (r PlanRun) In(loc *time.Location) PlanRun {
	out := r
	out.Blocks = make([]ScheduledBlock, len(r.Blocks))
	for i, b := range r.Blocks {
		b.Start = b.Start.In(loc)
		b.End = b.End.In(loc)
		out.Blocks[i] = b
	}
	out.Log = make([]LogEntry, len(r.Log))
	for i, e := range r.Log {
		slots := make([]SlotRange, len(e.Slots))
		for j, s := range e.Slots {
			slots[j] = SlotRange{Start: s.Start.In(loc), End: s.End.In(loc)}
		}
		if len(slots) == 0 {
			slots = nil
		}
		e.Slots = slots
		out.Log[i] = e
	}
	return out
}

// FindBlock looks a block up by block ID, then by task ID.
func (r PlanRun) FindBlock(id string) (ScheduledBlock, bool) {
	for _, b := range r.Blocks {
		if b.ID() == id {
			return b, true
		}
	}
	for _, b := range r.Blocks {
		if b.TaskID == id {
			return b, true
		}
	}
	return ScheduledBlock{}, false
}
