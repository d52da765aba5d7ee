package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"taskpilot/internal/engine"
	"taskpilot/internal/model"
)

// Store owns the task collection. The scheduling engine stays purely
// functional; the store loads the collection, hands it to the engine,
// and commits whatever records the engine returns.
//
// Mutating operations are serialized with a mutex so id assignment and
// the completion-spawn pair cannot interleave; reads take no lock.
type Store struct {
	DB *sql.DB

	mu sync.Mutex
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// CreateTask validates input through the engine and inserts the new
// record, returning it with its assigned id.
func (s *Store) CreateTask(ctx context.Context, input engine.TaskInput) (model.Task, error) {
	task, err := engine.Build(input, time.Now())
	if err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.insertTask(ctx, s.DB, task)
	if err != nil {
		return model.Task{}, err
	}
	if err := s.addHistory(ctx, s.DB, created.ID, "created", formatCreatedDetails(created)); err != nil {
		return model.Task{}, err
	}
	return created, nil
}

// GetTask loads one record by id.
func (s *Store) GetTask(ctx context.Context, taskID int64) (model.Task, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT id, title, description, status, priority, tags, due_at, recurrence, parent_task_id, created_at, updated_at FROM tasks WHERE id = ?`, taskID)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, &engine.NotFoundError{ID: taskID}
	}
	if err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// ListAll returns the full collection in insertion order.
func (s *Store) ListAll(ctx context.Context) ([]model.Task, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, title, description, status, priority, tags, due_at, recurrence, parent_task_id, created_at, updated_at FROM tasks ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// ListTasks loads the collection and runs it through the filter and
// sort engines.
func (s *Store) ListTasks(ctx context.Context, filter model.Filter, spec model.SortSpec) ([]model.Task, error) {
	tasks, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	tasks = engine.Apply(tasks, filter)
	if spec.Field != "" {
		tasks = engine.Sort(tasks, spec)
	}
	return tasks, nil
}

// SearchTasks is the keyword-first listing.
func (s *Store) SearchTasks(ctx context.Context, keyword string) ([]model.Task, error) {
	tasks, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return engine.Search(tasks, keyword), nil
}

// UpdateTask applies a validated patch to an existing record.
func (s *Store) UpdateTask(ctx context.Context, taskID int64, patch engine.Patch) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.GetTask(ctx, taskID)
	if err != nil {
		return model.Task{}, err
	}

	after, err := engine.ApplyPatch(before, patch, time.Now())
	if err != nil {
		return model.Task{}, err
	}

	if err := s.writeTask(ctx, s.DB, after); err != nil {
		return model.Task{}, err
	}
	if err := s.addHistory(ctx, s.DB, taskID, "updated", formatTaskDiff(before, after)); err != nil {
		return model.Task{}, err
	}
	return after, nil
}

// CompleteTask finalizes a task and, for recurring tasks, inserts the
// successor instance inside the same transaction, so the completed state
// and the successor become visible together or not at all.
func (s *Store) CompleteTask(ctx context.Context, taskID int64) (model.Task, *model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return model.Task{}, nil, err
	}

	if task.Status == model.StatusCompleted {
		return task, nil, nil
	}

	completed, successor := engine.Complete(task, time.Now())

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Task{}, nil, err
	}
	defer tx.Rollback()

	if err := s.writeTask(ctx, tx, completed); err != nil {
		return model.Task{}, nil, err
	}
	if err := s.addHistory(ctx, tx, taskID, "completed", formatCompletedDetails(completed)); err != nil {
		return model.Task{}, nil, err
	}

	var spawned *model.Task
	if successor != nil {
		inserted, err := s.insertTask(ctx, tx, *successor)
		if err != nil {
			return model.Task{}, nil, err
		}
		details := fmt.Sprintf("spawned: next instance #%d due %s", inserted.ID, formatDue(inserted.DueDate))
		if err := s.addHistory(ctx, tx, taskID, "spawned", details); err != nil {
			return model.Task{}, nil, err
		}
		if err := s.addHistory(ctx, tx, inserted.ID, "created", formatCreatedDetails(inserted)); err != nil {
			return model.Task{}, nil, err
		}
		spawned = &inserted
	}

	if err := tx.Commit(); err != nil {
		return model.Task{}, nil, err
	}
	return completed, spawned, nil
}

// DeleteTask removes one record. Other instances in a recurrence chain
// are left alone; their parent reference is nulled by the schema.
func (s *Store) DeleteTask(ctx context.Context, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if err := s.addHistory(ctx, s.DB, taskID, "deleted", formatDeletedDetails(before)); err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, taskID)
	return err
}

// DueSoon runs the reminder scanner over the collection.
func (s *Store) DueSoon(ctx context.Context, now time.Time, window time.Duration) ([]model.Task, error) {
	tasks, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return engine.DueSoon(tasks, now, window), nil
}

// ListHistory returns a task's audit log, oldest first.
func (s *Store) ListHistory(ctx context.Context, taskID int64) ([]model.HistoryEntry, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, task_id, event_type, details, created_at FROM history WHERE task_id = ? ORDER BY id`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		var entry model.HistoryEntry
		var created string
		if err := rows.Scan(&entry.ID, &entry.TaskID, &entry.EventType, &entry.Details, &created); err != nil {
			return nil, err
		}
		entry.CreatedAt = parseStoredTime(created)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insertTask(ctx context.Context, db execer, task model.Task) (model.Task, error) {
	tags, err := json.Marshal(task.Tags)
	if err != nil {
		return model.Task{}, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, status, priority, tags, due_at, recurrence, parent_task_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.Title, task.Description, string(task.Status), string(task.Priority), string(tags),
		nullTime(task.DueDate), string(task.Recurrence), nullID(task.ParentTaskID),
		formatStoredTime(task.CreatedAt), formatStoredTime(task.UpdatedAt))
	if err != nil {
		return model.Task{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.Task{}, err
	}
	task.ID = id
	return task, nil
}

func (s *Store) writeTask(ctx context.Context, db execer, task model.Task) error {
	tags, err := json.Marshal(task.Tags)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, tags = ?, due_at = ?, recurrence = ?, parent_task_id = ?, updated_at = ? WHERE id = ?`,
		task.Title, task.Description, string(task.Status), string(task.Priority), string(tags),
		nullTime(task.DueDate), string(task.Recurrence), nullID(task.ParentTaskID),
		formatStoredTime(task.UpdatedAt), task.ID)
	return err
}

func (s *Store) addHistory(ctx context.Context, db execer, taskID int64, eventType, details string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO history (task_id, event_type, details, created_at) VALUES (?, ?, ?, ?)`,
		taskID, eventType, details, formatStoredTime(time.Now()))
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (model.Task, error) {
	var task model.Task
	var status, priority, recurrence, tagsJSON, created, updated string
	var dueAt sql.NullString
	var parentID sql.NullInt64

	if err := row.Scan(&task.ID, &task.Title, &task.Description, &status, &priority,
		&tagsJSON, &dueAt, &recurrence, &parentID, &created, &updated); err != nil {
		return model.Task{}, err
	}

	task.Status = model.Status(status)
	task.Priority = model.Priority(priority)
	task.Recurrence = model.Recurrence(recurrence)
	if err := json.Unmarshal([]byte(tagsJSON), &task.Tags); err != nil {
		return model.Task{}, fmt.Errorf("task %d: parse tags: %w", task.ID, err)
	}
	if dueAt.Valid {
		due := parseStoredTime(dueAt.String)
		task.DueDate = &due
	}
	if parentID.Valid {
		id := parentID.Int64
		task.ParentTaskID = &id
	}
	task.CreatedAt = parseStoredTime(created)
	task.UpdatedAt = parseStoredTime(updated)
	return task, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatStoredTime(*t), Valid: true}
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func formatStoredTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseStoredTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func formatCreatedDetails(task model.Task) string {
	return "created: " + summarizeTask(task)
}

func formatDeletedDetails(task model.Task) string {
	return "deleted: " + summarizeTask(task)
}

func formatCompletedDetails(task model.Task) string {
	return "completed: " + summarizeTask(task)
}

func summarizeTask(task model.Task) string {
	return fmt.Sprintf("title='%s' status=%s priority=%s due=%s tags=%s",
		task.Title, task.Status, task.Priority, formatDue(task.DueDate), formatTags(task.Tags))
}

func formatTaskDiff(before, after model.Task) string {
	changes := []string{}
	if before.Title != after.Title {
		changes = append(changes, formatChange("title", before.Title, after.Title))
	}
	if before.Description != after.Description {
		changes = append(changes, formatChange("description", before.Description, after.Description))
	}
	if before.Status != after.Status {
		changes = append(changes, formatChange("status", string(before.Status), string(after.Status)))
	}
	if before.Priority != after.Priority {
		changes = append(changes, formatChange("priority", string(before.Priority), string(after.Priority)))
	}
	if formatDue(before.DueDate) != formatDue(after.DueDate) {
		changes = append(changes, formatChange("due", formatDue(before.DueDate), formatDue(after.DueDate)))
	}
	if before.Recurrence != after.Recurrence {
		changes = append(changes, formatChange("recurrence", string(before.Recurrence), string(after.Recurrence)))
	}
	beforeTags := formatTags(before.Tags)
	afterTags := formatTags(after.Tags)
	if beforeTags != afterTags {
		changes = append(changes, formatChange("tags", beforeTags, afterTags))
	}

	if len(changes) == 0 {
		return "updated: no changes"
	}
	return "updated: " + strings.Join(changes, "; ")
}

func formatChange(field, before, after string) string {
	return fmt.Sprintf("%s: '%s' -> '%s'", field, valueOrNone(before), valueOrNone(after))
}

func valueOrNone(value string) string {
	if strings.TrimSpace(value) == "" {
		return "none"
	}
	return value
}

func formatDue(value *time.Time) string {
	if value == nil {
		return "none"
	}
	return value.Format(model.DueDateLayout)
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "none"
	}
	return strings.Join(tags, ",")
}
