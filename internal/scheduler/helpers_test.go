package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/julianstephens/termplan/internal/models"
)

// testDay is a Monday.
var testDay = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

func at(dayOffset, hour, minute int) time.Time {
	return time.Date(2025, time.March, 10+dayOffset, hour, minute, 0, 0, time.UTC)
}

func dueIn(days int) string {
	return testDay.AddDate(0, 0, days).Format("2006-01-02")
}

func newTask(id string, minutes int) models.Task {
	return models.Task{
		ID:           id,
		Title:        "Task " + id,
		EstimatedMin: minutes,
		Priority:     models.PriorityMedium,
		Category:     models.CategoryHomework,
		Energy:       models.EnergyMedium,
		CreatedAt:    time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
}

func oneDayConfig() Config {
	cfg := DefaultConfig()
	cfg.Weights.HorizonDays = 1
	return cfg
}

func mustRun(t *testing.T, cfg Config, in Input) Result {
	t.Helper()
	res, err := NewRunner(cfg).Run(in)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return res
}

func blockFor(res Result, taskID string) (models.ScheduledBlock, bool) {
	for _, b := range res.Blocks {
		if b.TaskID == taskID {
			return b, true
		}
	}
	return models.ScheduledBlock{}, false
}

func terminalEntry(t *testing.T, res Result, taskID string) models.LogEntry {
	t.Helper()
	var found []models.LogEntry
	for _, e := range res.Log {
		if e.TaskID == taskID && e.Decision.Terminal() {
			found = append(found, e)
		}
	}
	if len(found) != 1 {
		t.Fatalf("expected exactly one terminal entry for %s, got %d", taskID, len(found))
	}
	return found[0]
}

func fmtBlocks(blocks []models.ScheduledBlock) string {
	s := ""
	for _, b := range blocks {
		s += fmt.Sprintf("%s[%s-%s] ", b.TaskID, b.Start.Format("01-02 15:04"), b.End.Format("15:04"))
	}
	return s
}
