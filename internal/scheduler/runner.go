package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/termplan/internal/constants"
	"github.com/julianstephens/termplan/internal/models"
)

type RunState int

const (
	StateIdle RunState = iota
	StateScoring
	StateSlotDiscovery
	StatePacking
	StateLogged
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScoring:
		return "scoring"
	case StateSlotDiscovery:
		return "slot-discovery"
	case StatePacking:
		return "packing"
	case StateLogged:
		return "logged"
	default:
		return fmt.Sprintf("RunState(%d)", int(s))
	}
}

func isAllowedTransition(from, to RunState) bool {
	switch from {
	case StateIdle:
		return to == StateScoring
	case StateScoring:
		return to == StateSlotDiscovery
	case StateSlotDiscovery:
		return to == StatePacking
	case StatePacking:
		return to == StateLogged
	case StateLogged:
		return to == StateIdle
	default:
		return false
	}
}

// Skip reasons recorded for tasks that are not placement candidates.
const (
	ReasonCompleted    = "completed"
	ReasonLockedFixed  = "locked: fixed interval"
	ReasonLockedNoTime = "locked: no fixed time"
	ReasonUserEdited   = "user-edited block preserved"
	ReasonDuplicateID  = "duplicate task id"
)

// AdvisoryEditedConflict prefixes the advisory raised for a preserved
// user-edited block that now collides with a fixed interval or another
// preserved block.
const AdvisoryEditedConflict = "user-edited block conflicts"

// Input is the immutable snapshot one run works on.
type Input struct {
	// Today is the first planning day; its location is used for every day.
	Today time.Time

	// NotBefore, when set, keeps the run from placing anything earlier.
	NotBefore time.Time

	Tasks       []models.Task
	Events      []models.Event
	PriorBlocks []models.ScheduledBlock
	Mutations   []Mutation
	Energy      models.EnergyProfile
}

type Result struct {
	Blocks     []models.ScheduledBlock
	Overflow   []models.OverflowEntry
	Log        []models.LogEntry
	Advisories []models.Advisory
	Fixed      []models.FixedInterval
	Rejections []*ConstraintViolationError
}

// PlanRun converts the result into the persisted form. Revision is assigned
// by storage.
func (r Result) PlanRun(today, createdAt time.Time) models.PlanRun {
	return models.PlanRun{
		Today:      today.Format(constants.DateFormat),
		CreatedAt:  createdAt.Format(time.RFC3339),
		Blocks:     r.Blocks,
		Overflow:   r.Overflow,
		Log:        r.Log,
		Advisories: r.Advisories,
	}
}

// Runner drives one scheduling pass at a time. It is not safe for concurrent
// use; callers serialize runs and use Generation to drop stale results.
type Runner struct {
	cfg   Config
	state RunState
}

func NewRunner(cfg Config) *Runner {
	return &Runner{cfg: cfg, state: StateIdle}
}

func (r *Runner) State() RunState {
	return r.state
}

func (r *Runner) Config() Config {
	return r.cfg
}

func (r *Runner) transition(to RunState) error {
	if !isAllowedTransition(r.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.state, to)
	}
	r.state = to
	return nil
}

// Run scores, discovers slots, packs and logs. Only a configuration problem
// or a broken run state aborts it; per-task problems end up in the log.
func (r *Runner) Run(in Input) (Result, error) {
	if r.state != StateIdle {
		return Result{}, fmt.Errorf("%w: run requested while %s", ErrInvalidTransition, r.state)
	}
	if err := r.cfg.Validate(); err != nil {
		return Result{}, err
	}
	if in.Today.IsZero() {
		return Result{}, configErrorf("today", "a planning day is required")
	}
	if err := in.Energy.Validate(); err != nil {
		return Result{}, configErrorf("energy_profile", "%v", err)
	}

	res, err := r.run(in)
	if err != nil {
		r.state = StateIdle
		return Result{}, err
	}
	return res, nil
}

func (r *Runner) run(in Input) (Result, error) {
	cfg := r.cfg
	log := NewLog()
	var res Result

	if err := r.transition(StateScoring); err != nil {
		return Result{}, err
	}

	res.Fixed = CollectFixed(in.Tasks, in.Events)

	blocks := make([]models.ScheduledBlock, len(in.PriorBlocks))
	copy(blocks, in.PriorBlocks)
	gate := newMutationGate(in.Tasks, in.Events, res.Fixed)
	for _, m := range in.Mutations {
		updated, err := gate.apply(blocks, m)
		if err != nil {
			var cv *ConstraintViolationError
			if !errors.As(err, &cv) {
				return Result{}, err
			}
			res.Rejections = append(res.Rejections, cv)
			res.Advisories = append(res.Advisories, models.Advisory{
				ItemID:  m.TargetID,
				Message: AdvisoryNotMoved + ": " + cv.Msg,
			})
			if err := log.Record(m.TargetID, models.DecisionRejected, nil, 0, cv.Msg); err != nil {
				return Result{}, err
			}
			continue
		}
		blocks = updated
	}

	// Editing any piece of a task keeps all of its pieces.
	edited := make(map[string]bool)
	for _, b := range blocks {
		if b.UserEdited {
			edited[b.TaskID] = true
		}
	}
	var preserved []models.ScheduledBlock
	for _, b := range blocks {
		if edited[b.TaskID] {
			preserved = append(preserved, b)
		}
	}
	sortBlocks(preserved)
	if err := flagPreservedConflicts(preserved, res.Fixed, log, &res); err != nil {
		return Result{}, err
	}

	scored, err := r.classify(in, edited, log, &res)
	if err != nil {
		return Result{}, err
	}

	if err := r.transition(StateSlotDiscovery); err != nil {
		return Result{}, err
	}

	busy := make([]models.FixedInterval, 0, len(res.Fixed)+len(preserved))
	busy = append(busy, res.Fixed...)
	for _, b := range preserved {
		busy = append(busy, models.FixedInterval{ItemID: b.ID(), Start: b.Start, End: b.End, Source: models.SourceInternal})
	}
	sortIntervals(busy)

	days := cfg.DiscoveryDays()
	slotsByDay := make([][]TimeSlot, days)
	for i := 0; i < days; i++ {
		ws, we := workWindow(dayAt(in.Today, i), cfg.WorkHours)
		slotsByDay[i] = FindSlots(SlotQuery{
			Day:       i,
			WorkStart: ws,
			WorkEnd:   we,
			Fixed:     busy,
			Energy:    in.Energy,
			NotBefore: in.NotBefore,
		}, cfg)
	}

	if err := r.transition(StatePacking); err != nil {
		return Result{}, err
	}

	placed, overflow, err := Pack(scored, slotsByDay, busy, cfg, log)
	if err != nil {
		return Result{}, err
	}

	if err := r.transition(StateLogged); err != nil {
		return Result{}, err
	}

	res.Blocks = append(preserved, placed...)
	sortBlocks(res.Blocks)
	res.Overflow = overflow
	res.Log = log.Entries()

	if err := r.transition(StateIdle); err != nil {
		return Result{}, err
	}
	return res, nil
}

// classify logs a terminal skip for every task that is not a placement
// candidate and scores the rest, in input order.
func (r *Runner) classify(in Input, edited map[string]bool, log *Log, res *Result) ([]ScoredTask, error) {
	seen := make(map[string]bool, len(in.Tasks))
	var scored []ScoredTask

	for i, t := range in.Tasks {
		if seen[t.ID] {
			res.Advisories = append(res.Advisories, models.Advisory{ItemID: t.ID, Message: "duplicate task id ignored"})
			key := fmt.Sprintf("%s#%d", t.ID, i)
			if err := log.Record(key, models.DecisionSkipped, nil, 0, ReasonDuplicateID); err != nil {
				return nil, err
			}
			continue
		}
		seen[t.ID] = true

		reason := ""
		_, timed := models.IntervalFromTask(t)
		switch {
		case t.Completed:
			reason = ReasonCompleted
		case timed:
			reason = ReasonLockedFixed
		case t.Validate() != nil:
			reason = string(models.ReasonInvalidData)
		case t.IsLocked():
			reason = ReasonLockedNoTime
		case edited[t.ID]:
			reason = ReasonUserEdited
		}

		if reason == "" {
			st, err := ScoreTask(t, in.Today, r.cfg)
			if err != nil {
				reason = string(models.ReasonInvalidData)
			} else {
				st.Order = i
				scored = append(scored, st)
				continue
			}
		}

		if err := log.Record(t.ID, models.DecisionSkipped, nil, 0, reason); err != nil {
			return nil, err
		}
	}
	return scored, nil
}

// flagPreservedConflicts reports preserved blocks that overlap a fixed
// interval or each other. The blocks are kept as they are; each collision
// gets a rejected log entry and an advisory. preserved must be sorted.
func flagPreservedConflicts(preserved []models.ScheduledBlock, fixed []models.FixedInterval, log *Log, res *Result) error {
	flag := func(b models.ScheduledBlock, with string) error {
		msg := fmt.Sprintf("overlaps %s", with)
		res.Advisories = append(res.Advisories, models.Advisory{
			ItemID:  b.ID(),
			Message: AdvisoryEditedConflict + ": " + msg,
		})
		return log.Record(b.TaskID, models.DecisionRejected,
			[]models.SlotRange{{Start: b.Start, End: b.End}}, b.Score, "user-edited block "+msg)
	}

	for i, b := range preserved {
		for _, f := range fixed {
			if f.Overlaps(b.Start, b.End) {
				if err := flag(b, "fixed interval "+f.ItemID); err != nil {
					return err
				}
			}
		}
		for _, other := range preserved[i+1:] {
			if !other.Start.Before(b.End) {
				break
			}
			if err := flag(b, "edited block "+other.ID()); err != nil {
				return err
			}
		}
	}
	return nil
}
