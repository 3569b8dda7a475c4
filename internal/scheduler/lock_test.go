package scheduler

import (
	"errors"
	"testing"

	"github.com/julianstephens/termplan/internal/models"
)

func TestIsHardConstraint(t *testing.T) {
	locked := newTask("locked", 30)
	locked.Locked = true

	tests := []struct {
		name string
		item models.Lockable
		want bool
	}{
		{"open task", newTask("open", 30), false},
		{"locked task", locked, true},
		{"external event", models.Event{ID: "e"}, true},
		{"locked interval", models.FixedInterval{ItemID: "f", Source: models.SourceLocked}, true},
		{"scheduled block", models.ScheduledBlock{TaskID: "b"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHardConstraint(tt.item); got != tt.want {
				t.Errorf("IsHardConstraint = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollectFixed_OrderAndFilter(t *testing.T) {
	late := models.Event{ID: "late", Start: at(0, 15, 0), End: at(0, 16, 0)}
	early := models.Event{ID: "early", Start: at(0, 8, 0), End: at(0, 9, 0)}
	broken := models.Event{ID: "broken", Start: at(0, 12, 0), End: at(0, 11, 0)}

	lt := newTask("lt", 60)
	s, e := at(0, 11, 0), at(0, 12, 0)
	lt.Locked = true
	lt.LockedStart, lt.LockedEnd = &s, &e

	fixed := CollectFixed([]models.Task{lt, newTask("open", 30)}, []models.Event{late, broken, early})

	want := []string{"early", "lt", "late"}
	if len(fixed) != len(want) {
		t.Fatalf("got %d intervals, want %d", len(fixed), len(want))
	}
	for i, id := range want {
		if fixed[i].ItemID != id {
			t.Errorf("fixed[%d] = %s, want %s", i, fixed[i].ItemID, id)
		}
	}
	if fixed[1].Source != models.SourceLocked || fixed[0].Source != models.SourceExternal {
		t.Error("sources not carried over")
	}
}

func TestMutationGate_DoesNotModifyInput(t *testing.T) {
	blocks := []models.ScheduledBlock{{TaskID: "a", Start: at(0, 9, 0), End: at(0, 10, 0)}}
	gate := newMutationGate(nil, nil, nil)

	out, err := gate.apply(blocks, Mutation{Kind: MutationMove, TargetID: "a", NewStart: at(0, 14, 0)})
	if err != nil {
		t.Fatal(err)
	}
	if !blocks[0].Start.Equal(at(0, 9, 0)) || blocks[0].UserEdited {
		t.Error("input blocks were modified")
	}
	if !out[0].Start.Equal(at(0, 14, 0)) || !out[0].End.Equal(at(0, 15, 0)) || !out[0].UserEdited {
		t.Errorf("moved block = %+v", out[0])
	}
}

func TestMutationGate_ResizeValidation(t *testing.T) {
	blocks := []models.ScheduledBlock{{TaskID: "a", Start: at(0, 9, 0), End: at(0, 10, 0)}}
	gate := newMutationGate(nil, nil, nil)

	_, err := gate.apply(blocks, Mutation{Kind: MutationResize, TargetID: "a", NewEnd: at(0, 8, 0)})
	var cv *ConstraintViolationError
	if !errors.As(err, &cv) || cv.Op != MutationResize {
		t.Fatalf("expected a resize violation, got %v", err)
	}
}

func TestGeneration(t *testing.T) {
	var g Generation
	first := g.Next()
	second := g.Next()

	if g.IsCurrent(first) {
		t.Error("superseded generation reported as current")
	}
	if !g.IsCurrent(second) || g.Current() != second {
		t.Error("latest generation should be current")
	}
}
