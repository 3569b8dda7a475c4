// Package storagetest holds the behaviour every storage.Provider must share.
package storagetest

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/termplan/internal/constants"
	"github.com/julianstephens/termplan/internal/models"
	"github.com/julianstephens/termplan/internal/storage"
)

// Run exercises an initialized provider. IDs are randomized so the suite can
// run against a database that already holds data.
func Run(t *testing.T, p storage.Provider) {
	t.Helper()
	suffix := uuid.NewString()[:8]

	t.Run("Settings", func(t *testing.T) { testSettings(t, p) })
	t.Run("Tasks", func(t *testing.T) { testTasks(t, p, suffix) })
	t.Run("Events", func(t *testing.T) { testEvents(t, p, suffix) })
	t.Run("EnergyProfile", func(t *testing.T) { testEnergy(t, p) })
	t.Run("PlanRuns", func(t *testing.T) { testPlanRuns(t, p, suffix) })
}

func testSettings(t *testing.T, p storage.Provider) {
	settings, err := p.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() failed: %v", err)
	}
	if settings.SlotGranularityMin <= 0 || settings.WorkdayEndHour <= settings.WorkdayStartHour {
		t.Fatalf("expected usable defaults, got %+v", settings)
	}

	settings.WorkdayStartHour = 8
	settings.EnergyWeight = 0.35
	settings.AllowCrossDaySplit = true
	settings.LookaheadDays = 0
	if err := p.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings() failed: %v", err)
	}

	got, err := p.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings() after save failed: %v", err)
	}
	if got != settings {
		t.Errorf("settings round trip = %+v, want %+v", got, settings)
	}

	if err := p.SaveSettings(models.DefaultSettings()); err != nil {
		t.Fatalf("restoring default settings failed: %v", err)
	}
}

func testTasks(t *testing.T, p storage.Provider, suffix string) {
	created := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	lockStart := time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)
	lockEnd := lockStart.Add(time.Hour)

	task := models.Task{
		ID:           "task-" + suffix,
		Title:        "Essay draft",
		DueDate:      "2025-03-12",
		EstimatedMin: 90,
		Priority:     models.PriorityHigh,
		Category:     models.CategoryProject,
		Energy:       models.EnergyHigh,
		CreatedAt:    created,
	}
	if err := p.AddTask(task); err != nil {
		t.Fatalf("AddTask() failed: %v", err)
	}
	if err := p.AddTask(task); err == nil {
		t.Error("adding a duplicate task id should fail")
	}

	got, err := p.GetTask(task.ID)
	if err != nil {
		t.Fatalf("GetTask() failed: %v", err)
	}
	if got.Title != task.Title || got.Priority != task.Priority || got.DueDate != task.DueDate || !got.CreatedAt.Equal(created) {
		t.Errorf("GetTask() = %+v, want %+v", got, task)
	}
	if got.LockedStart != nil {
		t.Errorf("unlocked task came back with locked start %v", got.LockedStart)
	}

	task.Locked = true
	task.LockedStart = &lockStart
	task.LockedEnd = &lockEnd
	task.Title = "Essay final"
	if err := p.UpdateTask(task); err != nil {
		t.Fatalf("UpdateTask() failed: %v", err)
	}
	got, err = p.GetTask(task.ID)
	if err != nil {
		t.Fatalf("GetTask() after update failed: %v", err)
	}
	if !got.HasLockedTime() || !got.LockedStart.Equal(lockStart) || !got.LockedEnd.Equal(lockEnd) {
		t.Errorf("locked span not persisted: %+v", got)
	}
	if got.Title != "Essay final" {
		t.Errorf("Title = %q, want %q", got.Title, "Essay final")
	}

	if err := p.DeleteTask(task.ID); err != nil {
		t.Fatalf("DeleteTask() failed: %v", err)
	}
	if _, err := p.GetTask(task.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetTask() on deleted task error = %v, want ErrNotFound", err)
	}
	if containsTask(mustTasks(t, p.GetAllTasks), task.ID) {
		t.Error("GetAllTasks() should hide soft-deleted tasks")
	}
	all := mustTasks(t, p.GetAllTasksIncludingDeleted)
	if !containsTask(all, task.ID) {
		t.Error("GetAllTasksIncludingDeleted() should list soft-deleted tasks")
	}
	if err := p.UpdateTask(task); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateTask() on deleted task error = %v, want ErrNotFound", err)
	}

	if err := p.RestoreTask(task.ID); err != nil {
		t.Fatalf("RestoreTask() failed: %v", err)
	}
	if err := p.RestoreTask(task.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("restoring a live task error = %v, want ErrNotFound", err)
	}
	if _, err := p.GetTask(task.ID); err != nil {
		t.Errorf("GetTask() after restore failed: %v", err)
	}
	if err := p.DeleteTask("missing-" + suffix); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteTask() on missing id error = %v, want ErrNotFound", err)
	}
}

func testEvents(t *testing.T, p storage.Provider, suffix string) {
	day := time.Date(2031, time.June, 2, 0, 0, 0, 0, time.UTC)
	morning := models.Event{ID: "ev-am-" + suffix, Title: "Lecture", Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour)}
	evening := models.Event{ID: "ev-pm-" + suffix, Title: "Lab", Start: day.Add(18 * time.Hour), End: day.Add(20 * time.Hour)}
	nextDay := models.Event{ID: "ev-next-" + suffix, Title: "Exam", Start: day.Add(33 * time.Hour), End: day.Add(35 * time.Hour)}

	for _, e := range []models.Event{evening, nextDay, morning} {
		if err := p.AddEvent(e); err != nil {
			t.Fatalf("AddEvent(%s) failed: %v", e.ID, err)
		}
	}
	if err := p.AddEvent(models.Event{ID: "bad-" + suffix, Start: day, End: day}); err == nil {
		t.Error("AddEvent() should reject an empty span")
	}

	inDay, err := p.GetEventsInRange(day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("GetEventsInRange() failed: %v", err)
	}
	var ids []string
	for _, e := range inDay {
		if e.ID == morning.ID || e.ID == evening.ID || e.ID == nextDay.ID {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) != 2 || ids[0] != morning.ID || ids[1] != evening.ID {
		t.Errorf("GetEventsInRange() ids = %v, want [%s %s]", ids, morning.ID, evening.ID)
	}

	// Overlap at the range edge counts; touching does not.
	edge, err := p.GetEventsInRange(day.Add(10*time.Hour), day.Add(18*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range edge {
		if e.ID == morning.ID || e.ID == evening.ID {
			t.Errorf("event %s only touches the range and should be excluded", e.ID)
		}
	}

	morning.Title = "Lecture (moved)"
	if err := p.AddEvent(morning); err != nil {
		t.Fatalf("re-adding event failed: %v", err)
	}
	got, err := p.GetEvent(morning.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != morning.Title || !got.Start.Equal(morning.Start) {
		t.Errorf("GetEvent() = %+v, want %+v", got, morning)
	}

	for _, e := range []models.Event{morning, evening, nextDay} {
		if err := p.DeleteEvent(e.ID); err != nil {
			t.Errorf("DeleteEvent(%s) failed: %v", e.ID, err)
		}
	}
	if _, err := p.GetEvent(morning.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetEvent() after delete error = %v, want ErrNotFound", err)
	}
}

func testEnergy(t *testing.T, p storage.Provider) {
	profile := models.EnergyProfile{Hours: map[int]float64{9: 0.9, 14: 0.3, 20: 0.1}}
	if err := p.SaveEnergyProfile(profile); err != nil {
		t.Fatalf("SaveEnergyProfile() failed: %v", err)
	}
	got, err := p.GetEnergyProfile()
	if err != nil {
		t.Fatalf("GetEnergyProfile() failed: %v", err)
	}
	if len(got.Hours) != 3 || got.At(9) != 0.9 || got.At(14) != 0.3 {
		t.Errorf("GetEnergyProfile() = %v", got.Hours)
	}
	if got.At(10) != constants.DefaultHourEnergy {
		t.Errorf("unset hour energy = %v, want default", got.At(10))
	}

	if err := p.SaveEnergyProfile(models.EnergyProfile{Hours: map[int]float64{24: 0.5}}); err == nil {
		t.Error("SaveEnergyProfile() should reject hour 24")
	}

	if err := p.SaveEnergyProfile(models.EnergyProfile{Hours: map[int]float64{9: 0.8}}); err != nil {
		t.Fatal(err)
	}
	got, _ = p.GetEnergyProfile()
	if len(got.Hours) != 1 {
		t.Errorf("saving a profile should replace the old one, got %v", got.Hours)
	}
}

func testPlanRuns(t *testing.T, p storage.Provider, suffix string) {
	loc := time.FixedZone("UTC-5", -5*3600)
	start := time.Date(2025, time.March, 10, 9, 0, 0, 0, loc)
	taskID := "plan-task-" + suffix

	run := models.PlanRun{
		Revision:  99,
		Today:     "2025-03-10",
		CreatedAt: "2025-03-10T08:00:00Z",
		Blocks: []models.ScheduledBlock{
			{TaskID: taskID, Start: start, End: start.Add(time.Hour), SlotCount: 2, Score: 0.75},
			{TaskID: taskID + "-b", Start: start.Add(2 * time.Hour), End: start.Add(150 * time.Minute), SlotCount: 1, Score: 0.5, UserEdited: true},
		},
		Overflow: []models.OverflowEntry{{TaskID: "big-" + suffix, Reason: models.ReasonInsufficientSlots}},
		Log: []models.LogEntry{
			{Seq: 1, TaskID: taskID, Decision: models.DecisionPlaced, Score: 0.75, Reason: "earliest fit",
				Slots: []models.SlotRange{{Start: start, End: start.Add(time.Hour)}}},
			{Seq: 2, TaskID: "big-" + suffix, Decision: models.DecisionOverflowed, Reason: string(models.ReasonInsufficientSlots)},
		},
		Advisories: []models.Advisory{{ItemID: "ev", Message: "some items were not moved"}},
	}

	first, err := p.SavePlanRun(run)
	if err != nil {
		t.Fatalf("SavePlanRun() failed: %v", err)
	}
	if first.Revision < 1 {
		t.Errorf("SavePlanRun() should assign its own revision, got %d", first.Revision)
	}
	second, err := p.SavePlanRun(run)
	if err != nil {
		t.Fatalf("second SavePlanRun() failed: %v", err)
	}
	if second.Revision != first.Revision+1 {
		t.Errorf("revisions = %d, %d; want consecutive", first.Revision, second.Revision)
	}

	latest, err := p.GetLatestPlanRun()
	if err != nil {
		t.Fatalf("GetLatestPlanRun() failed: %v", err)
	}
	if latest.Revision != second.Revision {
		t.Errorf("GetLatestPlanRun() revision = %d, want %d", latest.Revision, second.Revision)
	}

	got, err := p.GetPlanRun(first.Revision)
	if err != nil {
		t.Fatalf("GetPlanRun() failed: %v", err)
	}
	got = got.In(loc)
	if len(got.Blocks) != 2 || len(got.Overflow) != 1 || len(got.Log) != 2 || len(got.Advisories) != 1 {
		t.Fatalf("GetPlanRun() = %+v", got)
	}
	if got.Blocks[0].ID() != run.Blocks[0].ID() {
		t.Errorf("block id = %q, want %q", got.Blocks[0].ID(), run.Blocks[0].ID())
	}
	if !got.Blocks[1].UserEdited || got.Blocks[0].UserEdited {
		t.Errorf("user-edited flags not preserved: %+v", got.Blocks)
	}
	if got.Log[0].Decision != models.DecisionPlaced || len(got.Log[0].Slots) != 1 || !got.Log[0].Slots[0].Start.Equal(start) {
		t.Errorf("log entry = %+v", got.Log[0])
	}
	if len(got.Log[1].Slots) != 0 {
		t.Errorf("overflow entry should have no slots, got %v", got.Log[1].Slots)
	}
	if got.Overflow[0].Reason != models.ReasonInsufficientSlots {
		t.Errorf("overflow reason = %q", got.Overflow[0].Reason)
	}

	runs, err := p.ListPlanRuns()
	if err != nil {
		t.Fatalf("ListPlanRuns() failed: %v", err)
	}
	if len(runs) < 2 || runs[0].Revision != second.Revision {
		t.Fatalf("ListPlanRuns() = %+v, want newest first", runs)
	}
	if runs[0].Blocks != 2 || runs[0].Overflow != 1 {
		t.Errorf("summary counts = %+v", runs[0])
	}

	if _, err := p.GetPlanRun(second.Revision + 100); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetPlanRun() on missing revision error = %v, want ErrNotFound", err)
	}
}

func mustTasks(t *testing.T, fn func() ([]models.Task, error)) []models.Task {
	t.Helper()
	tasks, err := fn()
	if err != nil {
		t.Fatalf("listing tasks failed: %v", err)
	}
	return tasks
}

func containsTask(tasks []models.Task, id string) bool {
	for _, task := range tasks {
		if task.ID == id {
			return true
		}
	}
	return false
}
