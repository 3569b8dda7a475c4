package scheduler

import (
	"errors"
	"math"
	"testing"

	"github.com/julianstephens/termplan/internal/models"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreTask_Factors(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		priority models.Priority
		category models.Category
		due      string
		want     float64
	}{
		{"high exam due today", models.PriorityHigh, models.CategoryExam, dueIn(0), 0.5*1.0 + 0.4*1.0 + 0.1*1.0},
		{"low reading no due date", models.PriorityLow, models.CategoryReading, "", 0.5*0.4 + 0.1*0.6},
		{"medium quiz due in 7 days", models.PriorityMedium, models.CategoryQuiz, dueIn(7), 0.5*0.7 + 0.4*0.5 + 0.1*0.8},
		{"project due past horizon", models.PriorityMedium, models.CategoryProject, dueIn(30), 0.5*0.7 + 0.1*0.9},
		{"low reading due at horizon", models.PriorityLow, models.CategoryReading, dueIn(14), 0.26},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := newTask("t", 30)
			task.Priority = tt.priority
			task.Category = tt.category
			task.DueDate = tt.due

			st, err := ScoreTask(task, testDay, cfg)
			if err != nil {
				t.Fatalf("ScoreTask failed: %v", err)
			}
			if !approx(st.Index, tt.want) {
				t.Errorf("Index = %v, want %v", st.Index, tt.want)
			}
			if st.Index < 0 || st.Index > 1 {
				t.Errorf("Index %v out of [0,1]", st.Index)
			}
		})
	}
}

func TestScoreTask_OverdueOutranksDueToday(t *testing.T) {
	cfg := DefaultConfig()

	overdue := newTask("overdue", 60)
	overdue.DueDate = dueIn(-1)
	today := newTask("today", 60)
	today.DueDate = dueIn(0)

	so, err := ScoreTask(overdue, testDay, cfg)
	if err != nil {
		t.Fatal(err)
	}
	st, err := ScoreTask(today, testDay, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if !so.Factors.Overdue {
		t.Error("expected overdue factor to be set")
	}
	if so.Factors.DaysUntilDue != 0 {
		t.Errorf("days until due should clamp to 0, got %d", so.Factors.DaysUntilDue)
	}
	if so.Index <= st.Index {
		t.Errorf("overdue index %v should be strictly greater than due-today index %v", so.Index, st.Index)
	}
}

func TestScoreTask_OverdueClampsToOne(t *testing.T) {
	task := newTask("t", 30)
	task.Priority = models.PriorityHigh
	task.Category = models.CategoryExam
	task.DueDate = dueIn(-3)

	st, err := ScoreTask(task, testDay, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if st.Index != 1 {
		t.Errorf("Index = %v, want 1", st.Index)
	}
}

func TestScoreTask_UnparsableDueDate(t *testing.T) {
	task := newTask("t", 30)
	task.DueDate = "next tuesday"

	_, err := ScoreTask(task, testDay, DefaultConfig())
	if !errors.Is(err, models.ErrInvalidTask) {
		t.Errorf("expected ErrInvalidTask, got %v", err)
	}
}

func TestEnergyMatchAndPlacementScore(t *testing.T) {
	if got := EnergyMatch(1.0, 1.0); got != 1 {
		t.Errorf("EnergyMatch(1,1) = %v", got)
	}
	if got := EnergyMatch(0, 1.0); got != 0 {
		t.Errorf("EnergyMatch(0,1) = %v", got)
	}
	if got := EnergyMatch(0.5, 0.25); !approx(got, 0.75) {
		t.Errorf("EnergyMatch(0.5,0.25) = %v", got)
	}

	cfg := DefaultConfig()
	if got := PlacementScore(0.5, 1.0, cfg); !approx(got, 0.8*0.5+0.2) {
		t.Errorf("PlacementScore = %v", got)
	}
}
