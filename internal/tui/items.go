package tui

import (
	"fmt"
	"strings"
	"time"

	"taskpilot/internal/model"
)

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "no tags"
	}
	return strings.Join(tags, ",")
}

func formatDue(task model.Task, now time.Time, window time.Duration) string {
	if task.DueDate == nil {
		return ""
	}
	label := task.DueDate.Format(model.DueDateLayout)
	if task.Status != model.StatusCompleted {
		if task.DueDate.Before(now) {
			return label + " OVERDUE"
		}
		if !task.DueDate.After(now.Add(window)) {
			return label + " !"
		}
	}
	return label
}

func formatTaskLine(task model.Task, now time.Time, window time.Duration) string {
	marker := " "
	switch task.Priority {
	case model.PriorityHigh:
		marker = "^"
	case model.PriorityLow:
		marker = "v"
	}
	recur := ""
	if task.Recurrence != model.RecurNone {
		recur = " @" + string(task.Recurrence)
	}
	line := fmt.Sprintf("%s #%d %s [%s]%s", marker, task.ID, task.Title, formatTags(task.Tags), recur)
	if due := formatDue(task, now, window); due != "" {
		line += " | " + due
	}
	return line
}

func formatHistoryLine(entry model.HistoryEntry) string {
	return fmt.Sprintf("%s %s", entry.CreatedAt.Format(model.DueDateLayout), entry.Details)
}

func splitByStatus(tasks []model.Task) (open, done []model.Task) {
	for _, task := range tasks {
		if task.Status == model.StatusCompleted {
			done = append(done, task)
		} else {
			open = append(open, task)
		}
	}
	return open, done
}
