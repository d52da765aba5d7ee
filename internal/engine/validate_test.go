package engine

import (
	"errors"
	"strings"
	"testing"

	"taskpilot/internal/model"
)

func TestBuildAppliesDefaults(t *testing.T) {
	now := mustTime(t, "2026-02-01 12:00")
	task, err := Build(TaskInput{Title: "  Write report  "}, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if task.Title != "Write report" {
		t.Fatalf("expected trimmed title, got %q", task.Title)
	}
	if task.Status != model.StatusPending {
		t.Fatalf("expected default status pending, got %q", task.Status)
	}
	if task.Priority != model.PriorityMedium {
		t.Fatalf("expected default priority medium, got %q", task.Priority)
	}
	if !task.CreatedAt.Equal(now) || !task.UpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps set to now")
	}
	if task.ID != 0 {
		t.Fatalf("expected zero ID before store assignment")
	}
}

func TestBuildValidation(t *testing.T) {
	now := mustTime(t, "2026-02-01 12:00")
	due := mustTime(t, "2026-02-10 09:00")

	tests := []struct {
		name      string
		input     TaskInput
		wantField string
	}{
		{"whitespace-only title", TaskInput{Title: "   "}, "title"},
		{"title too long", TaskInput{Title: strings.Repeat("a", 201)}, "title"},
		{"multibyte title too long", TaskInput{Title: strings.Repeat("あ", 201)}, "title"},
		{"description too long", TaskInput{Title: "t", Description: strings.Repeat("d", 1001)}, "description"},
		{"multibyte description too long", TaskInput{Title: "t", Description: strings.Repeat("é", 1001)}, "description"},
		{"unknown status", TaskInput{Title: "t", Status: "paused"}, "status"},
		{"unknown priority", TaskInput{Title: "t", Priority: "urgent"}, "priority"},
		{"unknown recurrence", TaskInput{Title: "t", DueDate: &due, Recurrence: "yearly"}, "recurrence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.input, now)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Fatalf("expected field %q, got %q", tt.wantField, verr.Field)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected error to unwrap to ErrValidation")
			}
		})
	}
}

func TestBuildLengthLimitsCountCharacters(t *testing.T) {
	now := mustTime(t, "2026-02-01 12:00")

	// 200 CJK characters are 600 bytes; the limit counts characters,
	// so this title is exactly at the boundary and must pass.
	title := strings.Repeat("あ", 200)
	task, err := Build(TaskInput{Title: title, Description: strings.Repeat("é", 1000)}, now)
	if err != nil {
		t.Fatalf("expected boundary-length multibyte input to pass, got %v", err)
	}
	if task.Title != title {
		t.Fatalf("title altered: %q", task.Title)
	}

	longTitle := strings.Repeat("あ", 201)
	if _, err := ApplyPatch(task, Patch{Title: &longTitle}, now); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected 201-character title to fail on patch, got %v", err)
	}
	okTitle := strings.Repeat("あ", 200)
	if _, err := ApplyPatch(task, Patch{Title: &okTitle}, now); err != nil {
		t.Fatalf("expected 200-character title to pass on patch, got %v", err)
	}
}

func TestBuildAcceptsMixedCaseValues(t *testing.T) {
	now := mustTime(t, "2026-02-01 12:00")
	due := mustTime(t, "2026-02-10 09:00")
	task, err := Build(TaskInput{
		Title:      "t",
		Status:     "In_Progress",
		Priority:   "HIGH",
		DueDate:    &due,
		Recurrence: "Weekly",
	}, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if task.Status != model.StatusInProgress || task.Priority != model.PriorityHigh || task.Recurrence != model.RecurWeekly {
		t.Fatalf("expected canonical lowercase values, got %q/%q/%q", task.Status, task.Priority, task.Recurrence)
	}
}

func TestBuildRecurrenceRequiresDueDate(t *testing.T) {
	now := mustTime(t, "2026-02-01 12:00")
	_, err := Build(TaskInput{Title: "t", Recurrence: "daily"}, now)
	if !errors.Is(err, ErrRecurrenceWithoutDue) {
		t.Fatalf("expected ErrRecurrenceWithoutDue, got %v", err)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("cross-field error should still be a validation error")
	}
}

func TestBuildNormalizesTags(t *testing.T) {
	now := mustTime(t, "2026-02-01 12:00")
	task, err := Build(TaskInput{Title: "t", Tags: []string{"Work", "work", "WORK"}}, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(task.Tags) != 1 || task.Tags[0] != "work" {
		t.Fatalf("expected single normalized tag, got %v", task.Tags)
	}
}

func TestApplyPatch(t *testing.T) {
	now := mustTime(t, "2026-02-01 12:00")
	later := mustTime(t, "2026-02-02 08:00")
	due := mustTime(t, "2026-02-10 09:00")

	task, err := Build(TaskInput{Title: "original", Tags: []string{"work"}, DueDate: &due, Recurrence: "weekly"}, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	task.ID = 7

	newTitle := "renamed"
	updated, err := ApplyPatch(task, Patch{Title: &newTitle}, later)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if updated.Title != "renamed" {
		t.Fatalf("expected renamed title, got %q", updated.Title)
	}
	if !updated.UpdatedAt.Equal(later) {
		t.Fatalf("expected UpdatedAt refreshed")
	}
	if !updated.CreatedAt.Equal(now) {
		t.Fatalf("expected CreatedAt untouched")
	}
	if task.Title != "original" {
		t.Fatalf("expected source record unchanged")
	}
}

func TestApplyPatchRecurrenceInvariant(t *testing.T) {
	now := mustTime(t, "2026-02-01 12:00")
	due := mustTime(t, "2026-02-10 09:00")

	task, err := Build(TaskInput{Title: "t", DueDate: &due, Recurrence: "daily"}, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// Clearing the due date on a recurring task must fail.
	if _, err := ApplyPatch(task, Patch{ClearDueDate: true}, now); !errors.Is(err, ErrRecurrenceWithoutDue) {
		t.Fatalf("expected ErrRecurrenceWithoutDue, got %v", err)
	}

	// Adding a recurrence to an undated task must fail.
	undated, err := Build(TaskInput{Title: "t"}, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	weekly := "weekly"
	if _, err := ApplyPatch(undated, Patch{Recurrence: &weekly}, now); !errors.Is(err, ErrRecurrenceWithoutDue) {
		t.Fatalf("expected ErrRecurrenceWithoutDue, got %v", err)
	}

	// Clearing both together is fine.
	none := ""
	cleared, err := ApplyPatch(task, Patch{ClearDueDate: true, Recurrence: &none}, now)
	if err != nil {
		t.Fatalf("expected clearing both to pass, got %v", err)
	}
	if cleared.DueDate != nil || cleared.Recurrence != model.RecurNone {
		t.Fatalf("expected due date and recurrence cleared")
	}
}
