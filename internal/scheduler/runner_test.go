package scheduler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/termplan/internal/models"
)

func TestScenario_EarliestSlotsOnFreeDay(t *testing.T) {
	task := newTask("essay", 60)
	task.Priority = models.PriorityHigh
	task.DueDate = dueIn(0)

	res := mustRun(t, DefaultConfig(), Input{Today: testDay, Tasks: []models.Task{task}})

	b, ok := blockFor(res, "essay")
	if !ok {
		t.Fatalf("task not placed; log: %+v", res.Log)
	}
	if !b.Start.Equal(at(0, 9, 0)) || !b.End.Equal(at(0, 10, 0)) {
		t.Errorf("block = %v-%v, want 09:00-10:00", b.Start, b.End)
	}
	if b.SlotCount != 2 {
		t.Errorf("SlotCount = %d, want 2", b.SlotCount)
	}
	if e := terminalEntry(t, res, "essay"); e.Decision != models.DecisionPlaced {
		t.Errorf("decision = %s", e.Decision)
	}
}

func TestScenario_LockedEventUntouched(t *testing.T) {
	event := models.Event{ID: "lecture", Title: "Lecture", Start: at(0, 10, 0), End: at(0, 11, 0)}
	task := newTask("reading", 60)

	res := mustRun(t, DefaultConfig(), Input{Today: testDay, Tasks: []models.Task{task}, Events: []models.Event{event}})

	b, ok := blockFor(res, "reading")
	if !ok {
		t.Fatal("task not placed")
	}
	if !b.Start.Equal(at(0, 9, 0)) || !b.End.Equal(at(0, 10, 0)) {
		t.Errorf("block = %v-%v, want 09:00-10:00", b.Start, b.End)
	}
	if len(res.Fixed) != 1 || !res.Fixed[0].Start.Equal(event.Start) || !res.Fixed[0].End.Equal(event.End) {
		t.Errorf("fixed interval changed: %+v", res.Fixed)
	}
}

func TestScenario_OverflowInSingleDay(t *testing.T) {
	var tasks []models.Task
	for i := 0; i < 10; i++ {
		tasks = append(tasks, newTask(fmt.Sprintf("t%d", i), 480))
	}

	res := mustRun(t, oneDayConfig(), Input{Today: testDay, Tasks: tasks})

	if len(res.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d: %s", len(res.Blocks), fmtBlocks(res.Blocks))
	}
	if res.Blocks[0].TaskID != "t0" {
		t.Errorf("creation order should pick t0, got %s", res.Blocks[0].TaskID)
	}
	if len(res.Overflow) != 9 {
		t.Fatalf("expected 9 overflow entries, got %d", len(res.Overflow))
	}
	for _, o := range res.Overflow {
		if o.Reason != models.ReasonInsufficientSlots {
			t.Errorf("%s reason = %q", o.TaskID, o.Reason)
		}
	}
}

func TestScenario_InvalidDataSkipped(t *testing.T) {
	bad := newTask("bad", 0)
	good := newTask("good", 30)

	res := mustRun(t, DefaultConfig(), Input{Today: testDay, Tasks: []models.Task{bad, good}})

	e := terminalEntry(t, res, "bad")
	if e.Decision != models.DecisionSkipped || e.Reason != string(models.ReasonInvalidData) {
		t.Errorf("entry = %+v", e)
	}
	if _, ok := blockFor(res, "bad"); ok {
		t.Error("invalid task must not be scheduled")
	}
	for _, o := range res.Overflow {
		if o.TaskID == "bad" {
			t.Error("invalid task must not overflow")
		}
	}
}

func TestRun_SkipReasons(t *testing.T) {
	done := newTask("done", 30)
	done.Completed = true

	lockedFixed := newTask("exam", 120)
	start, end := at(0, 13, 0), at(0, 15, 0)
	lockedFixed.Locked = true
	lockedFixed.LockedStart = &start
	lockedFixed.LockedEnd = &end

	lockedLoose := newTask("loose", 30)
	lockedLoose.Locked = true

	badDue := newTask("baddue", 30)
	badDue.DueDate = "2025-13-45"

	res := mustRun(t, DefaultConfig(), Input{
		Today: testDay,
		Tasks: []models.Task{done, lockedFixed, lockedLoose, badDue},
	})

	want := map[string]string{
		"done":   ReasonCompleted,
		"exam":   ReasonLockedFixed,
		"loose":  ReasonLockedNoTime,
		"baddue": string(models.ReasonInvalidData),
	}
	for id, reason := range want {
		e := terminalEntry(t, res, id)
		if e.Decision != models.DecisionSkipped || e.Reason != reason {
			t.Errorf("%s: got %s %q, want skipped %q", id, e.Decision, e.Reason, reason)
		}
	}
	if len(res.Blocks) != 0 {
		t.Errorf("nothing should be placed, got %s", fmtBlocks(res.Blocks))
	}
	if len(res.Fixed) != 1 || res.Fixed[0].ItemID != "exam" {
		t.Errorf("locked timed task should become the only fixed interval, got %+v", res.Fixed)
	}
}

func TestRun_EveryTaskHasOneTerminalEntry(t *testing.T) {
	tasks := propertyTasks()
	res := mustRun(t, oneDayConfig(), Input{Today: testDay, Tasks: tasks, Events: propertyEvents()})

	for _, task := range tasks {
		terminalEntry(t, res, task.ID)
	}
	for i, e := range res.Log {
		if e.Seq != i+1 {
			t.Errorf("entry %d has seq %d", i, e.Seq)
		}
	}
}

func propertyTasks() []models.Task {
	priorities := []models.Priority{models.PriorityLow, models.PriorityMedium, models.PriorityHigh}
	categories := []models.Category{models.CategoryExam, models.CategoryProject, models.CategoryQuiz, models.CategoryHomework, models.CategoryReading}
	energies := []models.EnergyLevel{models.EnergyLow, models.EnergyMedium, models.EnergyHigh}

	var tasks []models.Task
	for i := 0; i < 15; i++ {
		task := newTask(fmt.Sprintf("p%02d", i), 30+(i%4)*45)
		task.Priority = priorities[i%3]
		task.Category = categories[i%5]
		task.Energy = energies[(i/2)%3]
		if i%3 != 0 {
			task.DueDate = dueIn(i%6 - 1)
		}
		task.CreatedAt = task.CreatedAt.Add(time.Duration(i%4) * time.Hour)
		tasks = append(tasks, task)
	}
	return tasks
}

func propertyEvents() []models.Event {
	return []models.Event{
		{ID: "ev1", Title: "Seminar", Start: at(0, 10, 0), End: at(0, 11, 30)},
		{ID: "ev2", Title: "Office hours", Start: at(0, 14, 15), End: at(0, 15, 0)},
		{ID: "ev3", Title: "Lab", Start: at(1, 9, 0), End: at(1, 12, 0)},
	}
}

func TestRun_Deterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights.HorizonDays = 3
	in := Input{
		Today:  testDay,
		Tasks:  propertyTasks(),
		Events: propertyEvents(),
		Energy: models.EnergyProfile{Hours: map[int]float64{9: 0.9, 10: 0.8, 14: 0.2, 15: 0.1}},
	}

	a := mustRun(t, cfg, in)
	b := mustRun(t, cfg, in)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("runs differ:\n%s\n%s", fmtBlocks(a.Blocks), fmtBlocks(b.Blocks))
	}
}

func TestRun_NoOverlap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights.HorizonDays = 2
	res := mustRun(t, cfg, Input{Today: testDay, Tasks: propertyTasks(), Events: propertyEvents()})

	if len(res.Blocks) == 0 {
		t.Fatal("expected some placements")
	}
	for i, a := range res.Blocks {
		for j, b := range res.Blocks {
			if i != j && a.Start.Before(b.End) && b.Start.Before(a.End) {
				t.Errorf("blocks overlap: %s and %s", a.ID(), b.ID())
			}
		}
		for _, f := range res.Fixed {
			if f.Overlaps(a.Start, a.End) {
				t.Errorf("block %s overlaps fixed %s", a.ID(), f.ItemID)
			}
		}
		if !sameDay(a.Start, a.End) {
			t.Errorf("block %s crosses midnight", a.ID())
		}
		if a.Start.Hour() < cfg.WorkHours.StartHour {
			t.Errorf("block %s starts before work hours", a.ID())
		}
	}
}

func TestRun_LockedInvariance(t *testing.T) {
	events := propertyEvents()
	before := make([]models.Event, len(events))
	copy(before, events)

	locked := newTask("locked", 60)
	ls, le := at(0, 16, 0), at(0, 17, 0)
	locked.Locked = true
	locked.LockedStart, locked.LockedEnd = &ls, &le

	tasks := append(propertyTasks(), locked)
	in := Input{Today: testDay, Tasks: tasks, Events: events}
	first := mustRun(t, oneDayConfig(), in)

	in.PriorBlocks = first.Blocks
	second := mustRun(t, oneDayConfig(), in)

	if !reflect.DeepEqual(events, before) {
		t.Error("input events were modified")
	}
	if !locked.LockedStart.Equal(ls) || !locked.LockedEnd.Equal(le) {
		t.Error("locked task span changed")
	}
	if !reflect.DeepEqual(first.Fixed, second.Fixed) {
		t.Error("fixed intervals differ between runs")
	}
	if len(first.Fixed) != 4 {
		t.Errorf("expected 4 fixed intervals, got %d", len(first.Fixed))
	}
}

func TestRun_LockedSpanBlocksRegardlessOfTaskData(t *testing.T) {
	span := func(id string, mutate func(*models.Task)) models.Task {
		task := newTask(id, 60)
		s, e := at(0, 9, 0), at(0, 10, 0)
		task.Locked = true
		task.LockedStart, task.LockedEnd = &s, &e
		mutate(&task)
		return task
	}

	tests := []struct {
		name   string
		locked models.Task
		reason string
	}{
		{"zero estimate", span("lecture", func(t *models.Task) { t.EstimatedMin = 0 }), ReasonLockedFixed},
		{"bad due date", span("lecture", func(t *models.Task) { t.DueDate = "someday" }), ReasonLockedFixed},
		{"unknown category", span("lecture", func(t *models.Task) { t.Category = "seminar" }), ReasonLockedFixed},
		{"completed", span("lecture", func(t *models.Task) { t.Completed = true }), ReasonCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustRun(t, oneDayConfig(), Input{
				Today: testDay,
				Tasks: []models.Task{tt.locked, newTask("hw", 60)},
			})

			if len(res.Fixed) != 1 || res.Fixed[0].ItemID != "lecture" {
				t.Fatalf("locked span missing from fixed intervals: %+v", res.Fixed)
			}
			b, ok := blockFor(res, "hw")
			if !ok {
				t.Fatal("hw was not placed")
			}
			if res.Fixed[0].Overlaps(b.Start, b.End) {
				t.Errorf("block %s overlaps the locked span", b.ID())
			}
			if !b.Start.Equal(at(0, 10, 0)) {
				t.Errorf("hw starts at %s, want 10:00", b.Start.Format("15:04"))
			}
			if e := terminalEntry(t, res, "lecture"); e.Decision != models.DecisionSkipped || e.Reason != tt.reason {
				t.Errorf("lecture logged %s %q, want skipped %q", e.Decision, e.Reason, tt.reason)
			}
		})
	}
}

func TestRun_IdempotentRerun(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights.HorizonDays = 2
	tasks := propertyTasks()[:6]
	first := mustRun(t, cfg, Input{Today: testDay, Tasks: tasks})

	again := mustRun(t, cfg, Input{Today: testDay, Tasks: tasks, PriorBlocks: first.Blocks})
	if !reflect.DeepEqual(first.Blocks, again.Blocks) || !reflect.DeepEqual(first.Log, again.Log) {
		t.Fatalf("re-run changed output:\n%s\n%s", fmtBlocks(first.Blocks), fmtBlocks(again.Blocks))
	}

	extra := newTask("later", 30)
	extra.Priority = models.PriorityLow
	extra.Category = models.CategoryReading
	extra.Energy = models.EnergyLow
	withExtra := mustRun(t, cfg, Input{Today: testDay, Tasks: append(tasks, extra), PriorBlocks: first.Blocks})

	for _, b := range first.Blocks {
		nb, ok := blockFor(withExtra, b.TaskID)
		if !ok || !nb.Start.Equal(b.Start) || !nb.End.Equal(b.End) {
			t.Errorf("placement of %s moved after adding a non-urgent task", b.TaskID)
		}
	}
	if _, ok := blockFor(withExtra, "later"); !ok {
		t.Error("new task should be placed")
	}
}

func TestRun_UserEditedBlockPreserved(t *testing.T) {
	edited := models.ScheduledBlock{
		TaskID: "essay", Start: at(0, 9, 0), End: at(0, 10, 30), SlotCount: 3, Score: 0.4, UserEdited: true,
	}
	essay := newTask("essay", 60)
	other := newTask("other", 60)
	other.Priority = models.PriorityHigh

	res := mustRun(t, DefaultConfig(), Input{
		Today:       testDay,
		Tasks:       []models.Task{essay, other},
		PriorBlocks: []models.ScheduledBlock{edited},
	})

	b, ok := blockFor(res, "essay")
	if !ok || !reflect.DeepEqual(b, edited) {
		t.Errorf("edited block changed: %+v", b)
	}
	if e := terminalEntry(t, res, "essay"); e.Reason != ReasonUserEdited {
		t.Errorf("essay reason = %q", e.Reason)
	}
	o, ok := blockFor(res, "other")
	if !ok || !o.Start.Equal(at(0, 10, 30)) {
		t.Errorf("other should start right after the edited block, got %+v", o)
	}
}

func TestRun_EditedBlockCollisionsFlagged(t *testing.T) {
	edited := models.ScheduledBlock{
		TaskID: "hw", Start: at(0, 9, 0), End: at(0, 10, 0), SlotCount: 2, Score: 0.5, UserEdited: true,
	}

	t.Run("new event on top", func(t *testing.T) {
		ev := models.Event{ID: "ev", Title: "Office hours", Start: at(0, 9, 0), End: at(0, 10, 0)}
		res := mustRun(t, oneDayConfig(), Input{
			Today:       testDay,
			Tasks:       []models.Task{newTask("hw", 60), newTask("other", 60)},
			Events:      []models.Event{ev},
			PriorBlocks: []models.ScheduledBlock{edited},
		})

		b, ok := blockFor(res, "hw")
		if !ok || !reflect.DeepEqual(b, edited) {
			t.Errorf("edited block must be kept as is, got %+v", b)
		}
		if len(res.Advisories) != 1 || !strings.HasPrefix(res.Advisories[0].Message, AdvisoryEditedConflict) {
			t.Fatalf("expected one conflict advisory, got %+v", res.Advisories)
		}
		if res.Advisories[0].ItemID != edited.ID() {
			t.Errorf("advisory names %s, want %s", res.Advisories[0].ItemID, edited.ID())
		}
		rejected := 0
		for _, e := range res.Log {
			if e.TaskID == "hw" && e.Decision == models.DecisionRejected {
				rejected++
			}
		}
		if rejected != 1 {
			t.Errorf("expected one rejected entry for hw, got %d", rejected)
		}
		if e := terminalEntry(t, res, "hw"); e.Reason != ReasonUserEdited {
			t.Errorf("hw terminal reason = %q", e.Reason)
		}
		if o, ok := blockFor(res, "other"); !ok || o.Start.Before(at(0, 10, 0)) {
			t.Errorf("other must stay clear of the busy hour, got %+v", o)
		}
	})

	t.Run("edited blocks overlap each other", func(t *testing.T) {
		second := models.ScheduledBlock{
			TaskID: "essay", Start: at(0, 9, 30), End: at(0, 10, 30), SlotCount: 2, UserEdited: true,
		}
		res := mustRun(t, oneDayConfig(), Input{
			Today:       testDay,
			Tasks:       []models.Task{newTask("hw", 60), newTask("essay", 60)},
			PriorBlocks: []models.ScheduledBlock{second, edited},
		})
		if len(res.Blocks) != 2 {
			t.Errorf("both edited blocks are kept, got %s", fmtBlocks(res.Blocks))
		}
		if len(res.Advisories) != 1 || res.Advisories[0].ItemID != edited.ID() {
			t.Errorf("expected one advisory on the earlier block, got %+v", res.Advisories)
		}
	})

	t.Run("no collision no advisory", func(t *testing.T) {
		res := mustRun(t, oneDayConfig(), Input{
			Today:       testDay,
			Tasks:       []models.Task{newTask("hw", 60)},
			PriorBlocks: []models.ScheduledBlock{edited},
		})
		if len(res.Advisories) != 0 {
			t.Errorf("unexpected advisories %+v", res.Advisories)
		}
	})
}

func TestRun_MutationOnHardConstraintRejected(t *testing.T) {
	event := models.Event{ID: "lecture", Title: "Lecture", Start: at(0, 10, 0), End: at(0, 11, 0)}
	locked := newTask("exam", 60)
	ls, le := at(0, 14, 0), at(0, 15, 0)
	locked.Locked = true
	locked.LockedStart, locked.LockedEnd = &ls, &le

	res := mustRun(t, DefaultConfig(), Input{
		Today:  testDay,
		Tasks:  []models.Task{locked},
		Events: []models.Event{event},
		Mutations: []Mutation{
			{Kind: MutationMove, TargetID: "lecture", NewStart: at(0, 12, 0)},
			{Kind: MutationDelete, TargetID: "exam"},
		},
	})

	if len(res.Rejections) != 2 {
		t.Fatalf("expected 2 rejections, got %d", len(res.Rejections))
	}
	for _, r := range res.Rejections {
		if !errors.Is(r, ErrConstraintViolation) {
			t.Errorf("rejection %v does not wrap ErrConstraintViolation", r)
		}
	}
	if len(res.Advisories) != 2 {
		t.Errorf("expected 2 advisories, got %+v", res.Advisories)
	}
	rejected := 0
	for _, e := range res.Log {
		if e.Decision == models.DecisionRejected {
			rejected++
		}
	}
	if rejected != 2 {
		t.Errorf("expected 2 rejected log entries, got %d", rejected)
	}
	if len(res.Fixed) != 2 || !res.Fixed[0].Start.Equal(event.Start) || !res.Fixed[1].Start.Equal(ls) {
		t.Errorf("fixed intervals changed: %+v", res.Fixed)
	}
}

func TestRun_MoveBlock(t *testing.T) {
	essay := newTask("essay", 60)
	prior := []models.ScheduledBlock{{TaskID: "essay", Start: at(0, 9, 0), End: at(0, 10, 0), SlotCount: 2}}
	event := models.Event{ID: "lecture", Title: "Lecture", Start: at(0, 13, 0), End: at(0, 14, 0)}

	tests := []struct {
		name      string
		mutation  Mutation
		wantStart time.Time
		rejected  bool
	}{
		{"move by block id", Mutation{Kind: MutationMove, TargetID: prior[0].ID(), NewStart: at(0, 15, 0)}, at(0, 15, 0), false},
		{"move by task id", Mutation{Kind: MutationMove, TargetID: "essay", NewStart: at(0, 11, 0)}, at(0, 11, 0), false},
		{"move onto event", Mutation{Kind: MutationMove, TargetID: "essay", NewStart: at(0, 12, 30)}, at(0, 9, 0), true},
		{"move across midnight", Mutation{Kind: MutationMove, TargetID: "essay", NewStart: at(0, 23, 30)}, at(0, 9, 0), true},
		{"unknown target", Mutation{Kind: MutationMove, TargetID: "nope", NewStart: at(0, 11, 0)}, at(0, 9, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustRun(t, DefaultConfig(), Input{
				Today:       testDay,
				Tasks:       []models.Task{essay},
				Events:      []models.Event{event},
				PriorBlocks: prior,
				Mutations:   []Mutation{tt.mutation},
			})

			if got := len(res.Rejections) > 0; got != tt.rejected {
				t.Fatalf("rejected = %v, want %v (%v)", got, tt.rejected, res.Rejections)
			}
			b, ok := blockFor(res, "essay")
			if !ok {
				t.Fatal("essay has no block")
			}
			if !b.Start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", b.Start, tt.wantStart)
			}
			if b.UserEdited == tt.rejected {
				t.Errorf("UserEdited = %v", b.UserEdited)
			}
		})
	}
}

func TestRun_ResizeAndDelete(t *testing.T) {
	essay := newTask("essay", 60)
	prior := []models.ScheduledBlock{{TaskID: "essay", Start: at(0, 11, 0), End: at(0, 12, 0), SlotCount: 2, UserEdited: true}}

	res := mustRun(t, DefaultConfig(), Input{
		Today:       testDay,
		Tasks:       []models.Task{essay},
		PriorBlocks: prior,
		Mutations:   []Mutation{{Kind: MutationResize, TargetID: "essay", NewEnd: at(0, 13, 0)}},
	})
	b, _ := blockFor(res, "essay")
	if !b.End.Equal(at(0, 13, 0)) || !b.Start.Equal(at(0, 11, 0)) {
		t.Errorf("resize produced %v-%v", b.Start, b.End)
	}

	res = mustRun(t, DefaultConfig(), Input{
		Today:       testDay,
		Tasks:       []models.Task{essay},
		PriorBlocks: prior,
		Mutations:   []Mutation{{Kind: MutationDelete, TargetID: "essay"}},
	})
	b, ok := blockFor(res, "essay")
	if !ok || !b.Start.Equal(at(0, 9, 0)) || b.UserEdited {
		t.Errorf("deleted edited block should be re-placed automatically, got %+v", b)
	}
}

func TestRun_HorizonExceeded(t *testing.T) {
	cfg := oneDayConfig()
	cfg.Weights.LookaheadDays = 1
	busy := models.Event{ID: "conf", Title: "Conference", Start: at(0, 8, 0), End: at(0, 18, 0)}

	res := mustRun(t, cfg, Input{Today: testDay, Tasks: []models.Task{newTask("a", 60)}, Events: []models.Event{busy}})

	if len(res.Overflow) != 1 || res.Overflow[0].Reason != models.ReasonHorizonExceeded {
		t.Fatalf("overflow = %+v", res.Overflow)
	}
	if len(res.Blocks) != 0 {
		t.Error("nothing may be placed past the horizon")
	}
}

func TestRun_CrossDaySplit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights.HorizonDays = 2
	long := newTask("thesis", 600)

	res := mustRun(t, cfg, Input{Today: testDay, Tasks: []models.Task{long}})
	if len(res.Blocks) != 0 || len(res.Overflow) != 1 {
		t.Fatalf("splitting is off by default: blocks %s overflow %+v", fmtBlocks(res.Blocks), res.Overflow)
	}

	cfg.Weights.AllowCrossDaySplit = true
	res = mustRun(t, cfg, Input{Today: testDay, Tasks: []models.Task{long}})

	if len(res.Blocks) != 2 {
		t.Fatalf("expected 2 pieces, got %s", fmtBlocks(res.Blocks))
	}
	first, second := res.Blocks[0], res.Blocks[1]
	if !first.Start.Equal(at(0, 9, 0)) || !first.End.Equal(at(0, 17, 0)) {
		t.Errorf("first piece = %v-%v", first.Start, first.End)
	}
	if !second.Start.Equal(at(1, 9, 0)) || !second.End.Equal(at(1, 11, 0)) {
		t.Errorf("second piece = %v-%v", second.Start, second.End)
	}
	e := terminalEntry(t, res, "thesis")
	if e.Decision != models.DecisionPlaced || len(e.Slots) != 2 {
		t.Errorf("entry = %+v", e)
	}

	// A single day placement always wins over a split.
	short := newTask("short", 120)
	res = mustRun(t, cfg, Input{Today: testDay, Tasks: []models.Task{short}})
	if len(res.Blocks) != 1 {
		t.Errorf("short task should not be split: %s", fmtBlocks(res.Blocks))
	}
}

func TestRun_EditedSplitPieceKeepsSiblings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights.HorizonDays = 2
	cfg.Weights.AllowCrossDaySplit = true
	long := newTask("thesis", 600)
	in := Input{Today: testDay, Tasks: []models.Task{long}}

	first := mustRun(t, cfg, in)
	if len(first.Blocks) != 2 {
		t.Fatalf("expected 2 pieces, got %s", fmtBlocks(first.Blocks))
	}

	in.PriorBlocks = first.Blocks
	in.Mutations = []Mutation{{Kind: MutationResize, TargetID: first.Blocks[1].ID(), NewEnd: at(1, 10, 30)}}
	second := mustRun(t, cfg, in)

	if len(second.Blocks) != 2 {
		t.Fatalf("both pieces must survive an edit of one, got %s", fmtBlocks(second.Blocks))
	}
	var total time.Duration
	for _, b := range second.Blocks {
		total += b.End.Sub(b.Start)
	}
	if total != 570*time.Minute {
		t.Errorf("scheduled %v, want 9h30m", total)
	}
	if !second.Blocks[0].Start.Equal(at(0, 9, 0)) || !second.Blocks[0].End.Equal(at(0, 17, 0)) {
		t.Errorf("untouched piece moved: %s", fmtBlocks(second.Blocks[:1]))
	}
	if !second.Blocks[1].UserEdited || !second.Blocks[1].End.Equal(at(1, 10, 30)) {
		t.Errorf("edited piece = %+v", second.Blocks[1])
	}
	if e := terminalEntry(t, second, "thesis"); e.Reason != ReasonUserEdited {
		t.Errorf("thesis reason = %q", e.Reason)
	}
}

func TestRun_SplitNeverClaimsPartially(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights.HorizonDays = 2
	cfg.Weights.AllowCrossDaySplit = true

	huge := newTask("huge", 2000)
	small := newTask("small", 60)
	small.Priority = models.PriorityLow

	res := mustRun(t, cfg, Input{Today: testDay, Tasks: []models.Task{huge, small}})
	if _, ok := blockFor(res, "huge"); ok {
		t.Error("huge task cannot be covered and must not be placed")
	}
	b, ok := blockFor(res, "small")
	if !ok || !b.Start.Equal(at(0, 9, 0)) {
		t.Errorf("small task should get the first slots, got %+v", b)
	}
}

func TestRun_NotBefore(t *testing.T) {
	res := mustRun(t, DefaultConfig(), Input{
		Today:     testDay,
		NotBefore: at(0, 13, 10),
		Tasks:     []models.Task{newTask("a", 30)},
	})
	b, ok := blockFor(res, "a")
	if !ok || !b.Start.Equal(at(0, 13, 30)) {
		t.Errorf("expected 13:30 start, got %+v", b)
	}
}

func TestRun_DuplicateTaskIDs(t *testing.T) {
	a := newTask("dup", 30)
	b := newTask("dup", 90)

	res := mustRun(t, DefaultConfig(), Input{Today: testDay, Tasks: []models.Task{a, b}})
	if len(res.Blocks) != 1 || res.Blocks[0].SlotCount != 1 {
		t.Errorf("first task with an id wins, got %s", fmtBlocks(res.Blocks))
	}
	if len(res.Advisories) != 1 {
		t.Errorf("expected a duplicate advisory, got %+v", res.Advisories)
	}
	terminalEntry(t, res, "dup")
	if e := terminalEntry(t, res, "dup#1"); e.Decision != models.DecisionSkipped || e.Reason != ReasonDuplicateID {
		t.Errorf("duplicate logged %s %q, want skipped %q", e.Decision, e.Reason, ReasonDuplicateID)
	}
	terminal := 0
	for _, e := range res.Log {
		if e.Decision.Terminal() {
			terminal++
		}
	}
	if terminal != 2 {
		t.Errorf("got %d terminal entries for 2 input tasks", terminal)
	}
}

func TestRunner_StateTransitions(t *testing.T) {
	r := NewRunner(DefaultConfig())
	if r.State() != StateIdle {
		t.Fatalf("new runner state = %s", r.State())
	}
	if err := r.transition(StatePacking); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("idle -> packing should fail, got %v", err)
	}

	steps := []RunState{StateScoring, StateSlotDiscovery, StatePacking, StateLogged, StateIdle}
	for _, s := range steps {
		if err := r.transition(s); err != nil {
			t.Fatalf("transition to %s failed: %v", s, err)
		}
	}

	r.state = StatePacking
	if _, err := r.Run(Input{Today: testDay}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("run while busy should fail, got %v", err)
	}
}

func TestRun_EnergyBreaksTies(t *testing.T) {
	profile := models.EnergyProfile{Hours: map[int]float64{9: 1.0}}
	lowEnergy := newTask("low", 60)
	lowEnergy.Energy = models.EnergyLow
	highEnergy := newTask("high", 60)
	highEnergy.Energy = models.EnergyHigh

	res := mustRun(t, DefaultConfig(), Input{
		Today:  testDay,
		Tasks:  []models.Task{lowEnergy, highEnergy},
		Energy: profile,
	})

	hb, _ := blockFor(res, "high")
	lb, _ := blockFor(res, "low")
	if !hb.Start.Equal(at(0, 9, 0)) || !lb.Start.Equal(at(0, 10, 0)) {
		t.Errorf("high energy task should win the tie: %s", fmtBlocks(res.Blocks))
	}
	if hb.Score <= lb.Score {
		t.Errorf("high block score %v should exceed low block score %v", hb.Score, lb.Score)
	}
}

func TestRun_EnergyNeverOutranksUrgency(t *testing.T) {
	urgent := newTask("urgent", 480)
	urgent.Priority = models.PriorityHigh
	urgent.Energy = models.EnergyHigh
	calm := newTask("calm", 480)
	calm.Category = models.CategoryExam

	cfg := oneDayConfig()
	urgentScore, err := ScoreTask(urgent, testDay, cfg)
	if err != nil {
		t.Fatal(err)
	}
	calmScore, err := ScoreTask(calm, testDay, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if urgentScore.Index <= calmScore.Index {
		t.Fatalf("fixture broken: urgent %.3f, calm %.3f", urgentScore.Index, calmScore.Index)
	}
	// A flat profile gives the medium energy task the better placement score.
	if PlacementScore(urgentScore.Index, EnergyMatch(1.0, 0.5), cfg) >= PlacementScore(calmScore.Index, EnergyMatch(0.5, 0.5), cfg) {
		t.Fatal("fixture broken: energy should favour calm")
	}

	res := mustRun(t, cfg, Input{Today: testDay, Tasks: []models.Task{calm, urgent}})

	if b, ok := blockFor(res, "urgent"); !ok || !b.Start.Equal(at(0, 9, 0)) {
		t.Errorf("the more urgent task must take the day, got %s", fmtBlocks(res.Blocks))
	}
	if len(res.Overflow) != 1 || res.Overflow[0].TaskID != "calm" {
		t.Errorf("calm should overflow, got %+v", res.Overflow)
	}
}

func TestResult_PlanRun(t *testing.T) {
	res := mustRun(t, DefaultConfig(), Input{Today: testDay, Tasks: []models.Task{newTask("a", 30)}})
	run := res.PlanRun(testDay, at(0, 8, 0))
	if run.Today != "2025-03-10" {
		t.Errorf("Today = %q", run.Today)
	}
	if len(run.BlocksOn("2025-03-10")) != 1 {
		t.Errorf("expected one block on the day, got %d", len(run.BlocksOn("2025-03-10")))
	}
}
