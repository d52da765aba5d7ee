package engine

import (
	"testing"
	"time"

	"taskpilot/internal/model"
)

func TestDueSoon(t *testing.T) {
	now := mustTime(t, "2026-04-01 12:00")
	in20 := now.Add(20 * time.Minute)
	in45 := now.Add(45 * time.Minute)
	past := now.Add(-5 * time.Minute)

	tasks := []model.Task{
		{ID: 1, Status: model.StatusPending, DueDate: &in20},
		{ID: 2, Status: model.StatusPending, DueDate: &in45},
		{ID: 3, Status: model.StatusCompleted, DueDate: &in20},
		{ID: 4, Status: model.StatusPending},
		{ID: 5, Status: model.StatusInProgress, DueDate: &past},
	}

	tests := []struct {
		name   string
		window time.Duration
		want   []int64
	}{
		{"30 minute window", 30 * time.Minute, []int64{1}},
		{"10 minute window excludes the 20-minute task", 10 * time.Minute, nil},
		{"hour window picks up both pending tasks", time.Hour, []int64{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := taskIDs(DueSoon(tasks, now, tt.window))
			if !equalIDs(got, tt.want...) {
				t.Fatalf("expected ids %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDueSoonBoundsInclusive(t *testing.T) {
	now := mustTime(t, "2026-04-01 12:00")
	atNow := now
	atEdge := now.Add(30 * time.Minute)
	tasks := []model.Task{
		{ID: 1, Status: model.StatusPending, DueDate: &atNow},
		{ID: 2, Status: model.StatusPending, DueDate: &atEdge},
	}
	got := taskIDs(DueSoon(tasks, now, 30*time.Minute))
	if !equalIDs(got, 1, 2) {
		t.Fatalf("window bounds must be inclusive, got %v", got)
	}
}
