package plans

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/termplan/internal/cli"
	"github.com/julianstephens/termplan/internal/models"
	"github.com/julianstephens/termplan/internal/scheduler"
	"github.com/julianstephens/termplan/internal/storage"
	"github.com/julianstephens/termplan/internal/storage/sqlite"
)

var clock = time.Date(2025, time.March, 10, 7, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return time.Date(2025, time.March, 10, hour, min, 0, 0, time.UTC)
}

func setupTestDB(t *testing.T) *cli.Context {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	settings := models.DefaultSettings()
	settings.Timezone = "UTC"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}

	err := store.AddTask(models.Task{
		ID:           "essay",
		Title:        "Write essay",
		EstimatedMin: 60,
		Priority:     models.PriorityHigh,
		Category:     models.CategoryProject,
		Energy:       models.EnergyMedium,
		CreatedAt:    clock.Add(-time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}
	return &cli.Context{Store: store, Now: func() time.Time { return clock }}
}

func latest(t *testing.T, ctx *cli.Context) models.PlanRun {
	t.Helper()
	run, err := ctx.Store.GetLatestPlanRun()
	if err != nil {
		t.Fatalf("failed to get latest plan: %v", err)
	}
	return run.In(time.UTC)
}

func TestPlanCmd(t *testing.T) {
	ctx := setupTestDB(t)

	if err := (&PlanCmd{Date: "today", DryRun: true}).Run(ctx); err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if _, err := ctx.Store.GetLatestPlanRun(); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("dry run saved a plan: %v", err)
	}

	if err := (&PlanCmd{Date: "today"}).Run(ctx); err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	run := latest(t, ctx)
	if run.Revision != 1 || len(run.Blocks) != 1 || !run.Blocks[0].Start.Equal(at(9, 0)) {
		t.Errorf("unexpected run: %+v", run)
	}

	if err := (&PlanCmd{Date: "yesterday"}).Run(ctx); err == nil {
		t.Error("an unparsable date should fail")
	}
}

func TestDayAndLogCmd(t *testing.T) {
	ctx := setupTestDB(t)

	if err := (&DayCmd{Date: "today"}).Run(ctx); err != nil {
		t.Errorf("day without a plan failed: %v", err)
	}
	if err := (&LogCmd{}).Run(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("log without a plan error = %v, want ErrNotFound", err)
	}

	if err := (&PlanCmd{Date: "today"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&DayCmd{Date: "2025-03-10"}).Run(ctx); err != nil {
		t.Errorf("day failed: %v", err)
	}
	if err := (&LogCmd{Revision: 1}).Run(ctx); err != nil {
		t.Errorf("log failed: %v", err)
	}
	if err := (&LogCmd{List: true}).Run(ctx); err != nil {
		t.Errorf("log --list failed: %v", err)
	}
	if err := (&LogCmd{Revision: 7}).Run(ctx); err == nil {
		t.Error("missing revision should fail")
	}
	if err := (&NowCmd{}).Run(ctx); err != nil {
		t.Errorf("now failed: %v", err)
	}
}

func TestBlockCommands(t *testing.T) {
	ctx := setupTestDB(t)

	if err := (&BlockMoveCmd{ID: "essay", To: "14:00"}).Run(ctx); err == nil {
		t.Fatal("moving without a plan should fail")
	}

	if err := (&PlanCmd{Date: "today"}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	if err := (&BlockMoveCmd{ID: "essay@2025-03-10T09:00", To: "14:00"}).Run(ctx); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	run := latest(t, ctx)
	if run.Revision != 2 || len(run.Blocks) != 1 {
		t.Fatalf("unexpected run after move: %+v", run)
	}
	if b := run.Blocks[0]; !b.Start.Equal(at(14, 0)) || !b.End.Equal(at(15, 0)) || !b.UserEdited {
		t.Errorf("moved block = %+v", b)
	}

	if err := (&BlockResizeCmd{ID: "essay", End: "14:30"}).Run(ctx); err != nil {
		t.Fatalf("resize failed: %v", err)
	}
	if b := latest(t, ctx).Blocks[0]; !b.End.Equal(at(14, 30)) {
		t.Errorf("resized block = %+v", b)
	}

	err := ctx.Store.AddEvent(models.Event{ID: "seminar", Title: "Seminar", Start: at(16, 0), End: at(17, 0)})
	if err != nil {
		t.Fatal(err)
	}
	err = (&BlockMoveCmd{ID: "essay", To: "16:00"}).Run(ctx)
	if !errors.Is(err, scheduler.ErrConstraintViolation) {
		t.Fatalf("move onto an event error = %v, want ErrConstraintViolation", err)
	}
	if rev := latest(t, ctx).Revision; rev != 3 {
		t.Errorf("a rejected move saved revision %d", rev)
	}

	if err := (&BlockDeleteCmd{ID: "essay"}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	// The task is placed again from scratch.
	if b := latest(t, ctx).Blocks[0]; b.UserEdited || !b.Start.Equal(at(9, 0)) {
		t.Errorf("block after delete = %+v", b)
	}
}

func TestRenderHelpers(t *testing.T) {
	run := models.PlanRun{Blocks: []models.ScheduledBlock{
		{TaskID: "b", Start: at(9, 0).AddDate(0, 0, 1), End: at(10, 0).AddDate(0, 0, 1)},
		{TaskID: "a", Start: at(9, 0), End: at(10, 0)},
	}}
	got := days(run)
	if len(got) != 2 || got[0] != "2025-03-10" || got[1] != "2025-03-11" {
		t.Errorf("days() = %v", got)
	}

	if s := formatSlots(nil); s != "-" {
		t.Errorf("formatSlots(nil) = %q", s)
	}
	slots := []models.SlotRange{{Start: at(9, 0), End: at(9, 30)}, {Start: at(13, 0), End: at(14, 0)}}
	if s := formatSlots(slots); s != "03-10 09:00-09:30, 03-10 13:00-14:00" {
		t.Errorf("formatSlots() = %q", s)
	}

	if s := title(map[string]string{"a": "Alpha"}, "a"); s != "Alpha" {
		t.Errorf("title() = %q", s)
	}
	if s := title(nil, "gone"); !strings.Contains(s, "unknown") {
		t.Errorf("title() for a missing task = %q", s)
	}
}
