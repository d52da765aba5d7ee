package engine

import (
	"strings"
	"time"
	"unicode/utf8"

	"taskpilot/internal/model"
)

// Title and description limits, counted in characters, with the title
// measured after trimming.
const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 1000
)

// TaskInput carries raw attribute values for building a new task record.
// Status, Priority, and Recurrence are free text and accepted
// case-insensitively; empty Status and Priority fall back to the
// defaults (pending, medium).
type TaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	Tags        []string
	DueDate     *time.Time
	Recurrence  string
}

// Patch carries optional replacement values for updating a task. Nil
// fields leave the attribute unchanged. ClearDueDate removes the due
// date; it is checked against the recurrence rule like any other change.
type Patch struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	Tags         []string
	DueDate      *time.Time
	ClearDueDate bool
	Recurrence   *string
}

// Build validates input and constructs a task record with defaults
// applied and timestamps set. The ID is zero until the owning store
// assigns one. Checks run in field order and the first violated rule is
// returned alone.
func Build(input TaskInput, now time.Time) (model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return model.Task{}, invalidf("title", "title must not be empty")
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return model.Task{}, invalidf("title", "title exceeds %d characters", MaxTitleLen)
	}
	if utf8.RuneCountInString(input.Description) > MaxDescriptionLen {
		return model.Task{}, invalidf("description", "description exceeds %d characters", MaxDescriptionLen)
	}

	status := model.StatusPending
	if strings.TrimSpace(input.Status) != "" {
		parsed, ok := model.ParseStatus(input.Status)
		if !ok {
			return model.Task{}, invalidf("status", "invalid status %q, expected pending, in_progress, or completed", input.Status)
		}
		status = parsed
	}

	priority := model.PriorityMedium
	if strings.TrimSpace(input.Priority) != "" {
		parsed, ok := model.ParsePriority(input.Priority)
		if !ok {
			return model.Task{}, invalidf("priority", "invalid priority %q, expected high, medium, or low", input.Priority)
		}
		priority = parsed
	}

	tags, err := NormalizeTags(input.Tags)
	if err != nil {
		return model.Task{}, err
	}

	recurrence, ok := model.ParseRecurrence(input.Recurrence)
	if !ok {
		return model.Task{}, invalidf("recurrence", "invalid recurrence %q, expected daily, weekly, or monthly", input.Recurrence)
	}
	if recurrence != model.RecurNone && input.DueDate == nil {
		return model.Task{}, recurrenceWithoutDue()
	}

	task := model.Task{
		Title:       title,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		Tags:        tags,
		Recurrence:  recurrence,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.DueDate != nil {
		due := *input.DueDate
		task.DueDate = &due
	}
	return task, nil
}

// ApplyPatch validates a partial update against an existing record and
// returns the updated record with its UpdatedAt refreshed. The original
// is not modified. Field checks follow the same order and
// first-violation rule as Build.
func ApplyPatch(task model.Task, patch Patch, now time.Time) (model.Task, error) {
	updated := task
	updated.Tags = append([]string(nil), task.Tags...)

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return model.Task{}, invalidf("title", "title must not be empty")
		}
		if utf8.RuneCountInString(title) > MaxTitleLen {
			return model.Task{}, invalidf("title", "title exceeds %d characters", MaxTitleLen)
		}
		updated.Title = title
	}
	if patch.Description != nil {
		if utf8.RuneCountInString(*patch.Description) > MaxDescriptionLen {
			return model.Task{}, invalidf("description", "description exceeds %d characters", MaxDescriptionLen)
		}
		updated.Description = *patch.Description
	}
	if patch.Status != nil {
		status, ok := model.ParseStatus(*patch.Status)
		if !ok {
			return model.Task{}, invalidf("status", "invalid status %q, expected pending, in_progress, or completed", *patch.Status)
		}
		updated.Status = status
	}
	if patch.Priority != nil {
		priority, ok := model.ParsePriority(*patch.Priority)
		if !ok {
			return model.Task{}, invalidf("priority", "invalid priority %q, expected high, medium, or low", *patch.Priority)
		}
		updated.Priority = priority
	}
	if patch.Tags != nil {
		tags, err := NormalizeTags(patch.Tags)
		if err != nil {
			return model.Task{}, err
		}
		updated.Tags = tags
	}
	if patch.ClearDueDate {
		updated.DueDate = nil
	} else if patch.DueDate != nil {
		due := *patch.DueDate
		updated.DueDate = &due
	}
	if patch.Recurrence != nil {
		recurrence, ok := model.ParseRecurrence(*patch.Recurrence)
		if !ok {
			return model.Task{}, invalidf("recurrence", "invalid recurrence %q, expected daily, weekly, or monthly", *patch.Recurrence)
		}
		updated.Recurrence = recurrence
	}
	if updated.Recurrence != model.RecurNone && updated.DueDate == nil {
		return model.Task{}, recurrenceWithoutDue()
	}

	updated.UpdatedAt = now
	return updated, nil
}
