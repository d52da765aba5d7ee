package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"taskpilot/internal/engine"
	"taskpilot/internal/model"
)

// ExportJSON writes the full task collection as an indented JSON array.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer) error {
	tasks, err := s.ListAll(ctx)
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tasks)
}

// ImportJSON reads a task array produced by ExportJSON and inserts every
// record as a new task. Records are re-validated through the engine, so
// a dump that violates an invariant is rejected, and ids are reassigned;
// recurrence parent links are remapped onto the new ids where the parent
// is part of the import.
func (s *Store) ImportJSON(ctx context.Context, r io.Reader) (int, error) {
	var tasks []model.Task
	if err := json.NewDecoder(r).Decode(&tasks); err != nil {
		return 0, fmt.Errorf("parse import: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	idMap := make(map[int64]int64, len(tasks))
	imported := make([]model.Task, 0, len(tasks))
	now := time.Now()
	for i, task := range tasks {
		createdAt := task.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		validated, err := engine.Build(engine.TaskInput{
			Title:       task.Title,
			Description: task.Description,
			Status:      string(task.Status),
			Priority:    string(task.Priority),
			Tags:        task.Tags,
			DueDate:     task.DueDate,
			Recurrence:  string(task.Recurrence),
		}, createdAt)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i+1, err)
		}
		if !task.UpdatedAt.IsZero() {
			validated.UpdatedAt = task.UpdatedAt
		}

		inserted, err := s.insertTask(ctx, tx, validated)
		if err != nil {
			return 0, err
		}
		if err := s.addHistory(ctx, tx, inserted.ID, "imported", formatCreatedDetails(inserted)); err != nil {
			return 0, err
		}
		if task.ID != 0 {
			idMap[task.ID] = inserted.ID
		}
		inserted.ParentTaskID = task.ParentTaskID
		imported = append(imported, inserted)
	}

	for _, task := range imported {
		if task.ParentTaskID == nil {
			continue
		}
		newParent, ok := idMap[*task.ParentTaskID]
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, `UPDATE tasks SET parent_task_id = ? WHERE id = ?`, newParent, task.ID); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(imported), nil
}
