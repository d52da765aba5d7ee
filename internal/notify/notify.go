package notify

import (
	"fmt"
	"io"

	"taskpilot/internal/model"
)

// Notifier delivers a reminder for one task. Implementations decide the
// channel; the scanner only decides which tasks are due.
type Notifier interface {
	Notify(task model.Task) error
}

// Console writes reminders as plain lines, one per task.
type Console struct {
	Out io.Writer
}

func (c Console) Notify(task model.Task) error {
	due := "unscheduled"
	if task.DueDate != nil {
		due = task.DueDate.Format(model.DueDateLayout)
	}
	_, err := fmt.Fprintf(c.Out, "reminder: #%d %s (due %s)\n", task.ID, task.Title, due)
	return err
}
