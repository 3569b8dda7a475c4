package scheduler

import (
	"math"
	"time"

	"github.com/julianstephens/termplan/internal/models"
)

var priorityFactors = map[models.Priority]float64{
	models.PriorityLow:    0.4,
	models.PriorityMedium: 0.7,
	models.PriorityHigh:   1.0,
}

var categoryFactors = map[models.Category]float64{
	models.CategoryExam:     1.0,
	models.CategoryProject:  0.9,
	models.CategoryQuiz:     0.8,
	models.CategoryHomework: 0.7,
	models.CategoryReading:  0.6,
}

// Factors breaks a schedule index into its additive parts so a decision can
// be explained.
type Factors struct {
	Priority     float64
	Due          float64
	Category     float64
	Overdue      bool
	DaysUntilDue int
}

// ScoredTask is a placement candidate with its urgency already computed.
type ScoredTask struct {
	Task    models.Task
	Index   float64
	Factors Factors

	// Due is the parsed due date; HasDue is false when the task has none.
	Due    time.Time
	HasDue bool

	// Order is the task's position in the run input, the last tie-break.
	Order int
}

// ScoreTask computes the schedule index of t relative to today. It fails only
// when the due date cannot be parsed.
func ScoreTask(t models.Task, today time.Time, cfg Config) (ScoredTask, error) {
	due, hasDue, err := t.Due(today.Location())
	if err != nil {
		return ScoredTask{}, err
	}

	w := cfg.Weights
	f := Factors{
		Priority: priorityFactors[t.Priority],
		Category: categoryFactors[t.Category],
	}
	if hasDue {
		days := civilDaysBetween(today, due)
		f.Overdue = days < 0
		if days < 0 {
			days = 0
		}
		f.DaysUntilDue = days
		f.Due = clamp01(1 - float64(days)/float64(w.HorizonDays))
	}

	index := w.PriorityWeight*f.Priority + w.DueWeight*f.Due + w.CategoryWeight*f.Category
	if f.Overdue {
		index += w.OverdueBoost
	}

	return ScoredTask{
		Task:    t,
		Index:   clamp01(index),
		Factors: f,
		Due:     due,
		HasDue:  hasDue,
	}, nil
}

// civilDaysBetween counts calendar days from a to b, ignoring clock time and
// DST shifts.
func civilDaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
