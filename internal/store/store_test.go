package store

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"taskpilot/internal/engine"
	"taskpilot/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func mustCreate(t *testing.T, s *Store, input engine.TaskInput) model.Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), input)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestCreateTaskPersists(t *testing.T) {
	s := newTestStore(t)
	due := time.Date(2026, time.March, 10, 14, 0, 0, 0, time.UTC)

	created := mustCreate(t, s, engine.TaskInput{
		Title:      "File quarterly report",
		Priority:   "High",
		Tags:       []string{"Work", "Finance!"},
		DueDate:    &due,
		Recurrence: "monthly",
	})

	if created.ID <= 0 {
		t.Fatalf("expected assigned id, got %d", created.ID)
	}

	loaded, err := s.GetTask(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if loaded.Title != "File quarterly report" {
		t.Errorf("title = %q", loaded.Title)
	}
	if loaded.Status != model.StatusPending {
		t.Errorf("status = %q, want pending", loaded.Status)
	}
	if loaded.Priority != model.PriorityHigh {
		t.Errorf("priority = %q, want high", loaded.Priority)
	}
	if len(loaded.Tags) != 2 || loaded.Tags[0] != "work" || loaded.Tags[1] != "finance" {
		t.Errorf("tags = %v, want [work finance]", loaded.Tags)
	}
	if loaded.DueDate == nil || !loaded.DueDate.Equal(due) {
		t.Errorf("due = %v, want %v", loaded.DueDate, due)
	}
	if loaded.Recurrence != model.RecurMonthly {
		t.Errorf("recurrence = %q", loaded.Recurrence)
	}

	history, err := s.ListHistory(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 1 || history[0].EventType != "created" {
		t.Fatalf("history = %+v, want one created entry", history)
	}
}

func TestCreateTaskRejectsInvalidInput(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateTask(context.Background(), engine.TaskInput{Title: "   "})
	if !errors.Is(err, engine.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	tasks, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("rejected input must not persist, got %d tasks", len(tasks))
	}
}

func TestGetTaskNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTask(context.Background(), 42)
	if !errors.Is(err, engine.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	var nf *engine.NotFoundError
	if !errors.As(err, &nf) || nf.ID != 42 {
		t.Fatalf("err = %v, want NotFoundError{ID: 42}", err)
	}
}

func TestUpdateTaskRecordsDiff(t *testing.T) {
	s := newTestStore(t)
	created := mustCreate(t, s, engine.TaskInput{Title: "Water plants", Priority: "low"})

	newStatus := "in_progress"
	newPriority := "high"
	updated, err := s.UpdateTask(context.Background(), created.ID, engine.Patch{
		Status:   &newStatus,
		Priority: &newPriority,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != model.StatusInProgress || updated.Priority != model.PriorityHigh {
		t.Fatalf("updated = %+v", updated)
	}

	history, err := s.ListHistory(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected created + updated entries, got %d", len(history))
	}
	if history[1].EventType != "updated" {
		t.Errorf("event = %q, want updated", history[1].EventType)
	}
	want := "updated: status: 'pending' -> 'in_progress'; priority: 'low' -> 'high'"
	if history[1].Details != want {
		t.Errorf("details = %q, want %q", history[1].Details, want)
	}
}

func TestUpdateTaskInvalidPatchLeavesRecordUntouched(t *testing.T) {
	s := newTestStore(t)
	created := mustCreate(t, s, engine.TaskInput{Title: "Stable"})

	bad := "not-a-status"
	if _, err := s.UpdateTask(context.Background(), created.ID, engine.Patch{Status: &bad}); !errors.Is(err, engine.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	loaded, err := s.GetTask(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Status != model.StatusPending {
		t.Errorf("status = %q, record must be unchanged", loaded.Status)
	}
}

func TestCompleteTaskSpawnsSuccessor(t *testing.T) {
	s := newTestStore(t)
	due := time.Date(2025, time.December, 27, 9, 0, 0, 0, time.UTC)
	created := mustCreate(t, s, engine.TaskInput{
		Title:      "Weekly review",
		Tags:       []string{"work"},
		DueDate:    &due,
		Recurrence: "weekly",
	})

	completed, spawned, err := s.CompleteTask(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != model.StatusCompleted {
		t.Errorf("status = %q, want completed", completed.Status)
	}
	if spawned == nil {
		t.Fatal("expected a spawned successor")
	}
	if spawned.ID <= 0 || spawned.ID == created.ID {
		t.Errorf("successor id = %d", spawned.ID)
	}
	wantDue := time.Date(2026, time.January, 3, 9, 0, 0, 0, time.UTC)
	if spawned.DueDate == nil || !spawned.DueDate.Equal(wantDue) {
		t.Errorf("successor due = %v, want %v", spawned.DueDate, wantDue)
	}
	if spawned.Status != model.StatusPending {
		t.Errorf("successor status = %q", spawned.Status)
	}
	if spawned.ParentTaskID == nil || *spawned.ParentTaskID != created.ID {
		t.Errorf("successor parent = %v, want %d", spawned.ParentTaskID, created.ID)
	}

	// Both sides of the transaction must be visible.
	tasks, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Status != model.StatusCompleted {
		t.Errorf("original status = %q", tasks[0].Status)
	}
	if tasks[0].DueDate == nil || !tasks[0].DueDate.Equal(due) {
		t.Errorf("original due changed: %v", tasks[0].DueDate)
	}

	history, err := s.ListHistory(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var events []string
	for _, entry := range history {
		events = append(events, entry.EventType)
	}
	if len(events) != 3 || events[0] != "created" || events[1] != "completed" || events[2] != "spawned" {
		t.Errorf("events = %v", events)
	}
}

func TestCompleteTaskNonRecurringNoSpawn(t *testing.T) {
	s := newTestStore(t)
	created := mustCreate(t, s, engine.TaskInput{Title: "One-off"})

	_, spawned, err := s.CompleteTask(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if spawned != nil {
		t.Fatalf("unexpected successor %+v", spawned)
	}

	// Completing again is a no-op and must not add history.
	if _, _, err := s.CompleteTask(context.Background(), created.ID); err != nil {
		t.Fatalf("re-complete: %v", err)
	}
	tasks, _ := s.ListAll(context.Background())
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	history, _ := s.ListHistory(context.Background(), created.ID)
	if len(history) != 2 {
		t.Fatalf("re-complete must not log again, history = %d entries", len(history))
	}
}

func TestDeleteTaskLeavesChainInstances(t *testing.T) {
	s := newTestStore(t)
	due := time.Date(2026, time.February, 1, 8, 0, 0, 0, time.UTC)
	parent := mustCreate(t, s, engine.TaskInput{Title: "Pay rent", DueDate: &due, Recurrence: "monthly"})

	_, spawned, err := s.CompleteTask(context.Background(), parent.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if spawned == nil {
		t.Fatal("expected successor")
	}

	if err := s.DeleteTask(context.Background(), parent.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.GetTask(context.Background(), parent.ID); !errors.Is(err, engine.ErrNotFound) {
		t.Fatalf("parent still present: %v", err)
	}
	child, err := s.GetTask(context.Background(), spawned.ID)
	if err != nil {
		t.Fatalf("successor must survive: %v", err)
	}
	if child.ParentTaskID != nil {
		t.Errorf("successor parent = %v, want nil after parent delete", child.ParentTaskID)
	}
}

func TestListTasksFiltersAndSorts(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, engine.TaskInput{Title: "Alpha", Priority: "low", Tags: []string{"work"}})
	mustCreate(t, s, engine.TaskInput{Title: "Beta", Priority: "high", Tags: []string{"work"}})
	mustCreate(t, s, engine.TaskInput{Title: "Gamma", Priority: "medium", Tags: []string{"home"}})

	tasks, err := s.ListTasks(context.Background(),
		model.Filter{Tags: []string{"work"}},
		model.SortSpec{Field: model.SortByPriority, Order: model.Ascending})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}
	if tasks[0].Title != "Beta" || tasks[1].Title != "Alpha" {
		t.Errorf("order = [%s %s], want [Beta Alpha]", tasks[0].Title, tasks[1].Title)
	}
}

func TestViewsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	status := model.StatusPending
	saved, err := s.SaveView(ctx, model.View{
		Name:   "urgent-work",
		Filter: model.Filter{Status: &status, Tags: []string{"work", "urgent"}},
	})
	if err != nil {
		t.Fatalf("save view: %v", err)
	}
	if saved.ID <= 0 {
		t.Fatalf("view id = %d", saved.ID)
	}

	loaded, err := s.GetViewByName(ctx, "urgent-work")
	if err != nil {
		t.Fatalf("get view: %v", err)
	}
	if loaded.Filter.Status == nil || *loaded.Filter.Status != model.StatusPending {
		t.Errorf("filter status = %v", loaded.Filter.Status)
	}
	if len(loaded.Filter.Tags) != 2 || loaded.Filter.Tags[1] != "urgent" {
		t.Errorf("filter tags = %v", loaded.Filter.Tags)
	}

	// Saving the same name again replaces the filter.
	high := model.PriorityHigh
	if _, err := s.SaveView(ctx, model.View{Name: "urgent-work", Filter: model.Filter{Priority: &high}}); err != nil {
		t.Fatalf("re-save: %v", err)
	}
	views, err := s.ListViews(ctx)
	if err != nil {
		t.Fatalf("list views: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d views, want 1", len(views))
	}
	if views[0].Filter.Priority == nil || *views[0].Filter.Priority != model.PriorityHigh {
		t.Errorf("replaced filter = %+v", views[0].Filter)
	}

	if err := s.DeleteView(ctx, views[0].ID); err != nil {
		t.Fatalf("delete view: %v", err)
	}
	if _, err := s.GetViewByName(ctx, "urgent-work"); err == nil {
		t.Fatal("deleted view still resolvable")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestStore(t)
	ctx := context.Background()

	due := time.Date(2026, time.April, 1, 10, 0, 0, 0, time.UTC)
	parent := mustCreate(t, src, engine.TaskInput{Title: "Backup", Tags: []string{"ops"}, DueDate: &due, Recurrence: "daily"})
	if _, _, err := src.CompleteTask(ctx, parent.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	var buf bytes.Buffer
	if err := src.ExportJSON(ctx, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := newTestStore(t)
	count, err := dst.ImportJSON(ctx, bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if count != 2 {
		t.Fatalf("imported %d, want 2", count)
	}

	tasks, err := dst.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks", len(tasks))
	}
	if tasks[0].Title != "Backup" || tasks[0].Status != model.StatusCompleted {
		t.Errorf("first = %+v", tasks[0])
	}
	if tasks[1].ParentTaskID == nil || *tasks[1].ParentTaskID != tasks[0].ID {
		t.Errorf("parent link not remapped: %v", tasks[1].ParentTaskID)
	}
}

func TestImportRejectsInvalidRecord(t *testing.T) {
	s := newTestStore(t)

	payload := `[{"title": "ok"}, {"title": ""}]`
	_, err := s.ImportJSON(context.Background(), bytes.NewReader([]byte(payload)))
	if !errors.Is(err, engine.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	tasks, _ := s.ListAll(context.Background())
	if len(tasks) != 0 {
		t.Fatalf("failed import must not persist anything, got %d tasks", len(tasks))
	}
}

func TestDueSoon(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	soon := now.Add(20 * time.Minute)
	later := now.Add(3 * time.Hour)
	mustCreate(t, s, engine.TaskInput{Title: "Soon", DueDate: &soon})
	mustCreate(t, s, engine.TaskInput{Title: "Later", DueDate: &later})
	mustCreate(t, s, engine.TaskInput{Title: "Undated"})

	tasks, err := s.DueSoon(context.Background(), now, time.Hour)
	if err != nil {
		t.Fatalf("due soon: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Soon" {
		t.Fatalf("tasks = %+v, want only Soon", tasks)
	}
}
