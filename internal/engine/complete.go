package engine

import (
	"time"

	"taskpilot/internal/model"
)

// Complete marks a task completed and, when the task recurs, builds its
// successor instance. The completed record keeps its due date; the
// successor copies title, description, priority, tags, and recurrence,
// starts pending with the due date advanced by NextDueDate, and points
// back at the completed record through ParentTaskID. Its ID is zero
// until the owning store assigns one.
//
// The caller must apply both records atomically so the completed state
// and the successor are never observable apart. Completing an already
// completed task returns it unchanged and never spawns a second
// successor.
func Complete(task model.Task, now time.Time) (model.Task, *model.Task) {
	if task.Status == model.StatusCompleted {
		return task, nil
	}

	completed := task
	completed.Status = model.StatusCompleted
	completed.UpdatedAt = now

	if task.Recurrence == model.RecurNone || task.DueDate == nil {
		return completed, nil
	}

	nextDue := NextDueDate(*task.DueDate, task.Recurrence)
	parentID := task.ID
	successor := model.Task{
		Title:        task.Title,
		Description:  task.Description,
		Status:       model.StatusPending,
		Priority:     task.Priority,
		Tags:         append([]string(nil), task.Tags...),
		DueDate:      &nextDue,
		Recurrence:   task.Recurrence,
		ParentTaskID: &parentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return completed, &successor
}
