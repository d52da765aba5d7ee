package engine

import (
	"time"

	"taskpilot/internal/model"
)

// DueSoon returns the tasks whose due date falls inside the look-ahead
// window [now, now+window], inclusive on both ends, skipping completed
// and undated tasks. Input order is preserved; the scanner keeps no
// state, so suppressing repeat notifications is the caller's concern.
func DueSoon(tasks []model.Task, now time.Time, window time.Duration) []model.Task {
	deadline := now.Add(window)
	due := make([]model.Task, 0)
	for _, task := range tasks {
		if task.Status == model.StatusCompleted || task.DueDate == nil {
			continue
		}
		if task.DueDate.Before(now) || task.DueDate.After(deadline) {
			continue
		}
		due = append(due, task)
	}
	return due
}
