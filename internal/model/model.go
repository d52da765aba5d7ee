package model

import "time"

// Task is one task record together with its organizational and
// scheduling attributes. The ID is assigned by the store on creation and
// never changes afterwards.
type Task struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       Status     `json:"status"`
	Priority     Priority   `json:"priority"`
	Tags         []string   `json:"tags"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Recurrence   Recurrence `json:"recurrence,omitempty"`
	ParentTaskID *int64     `json:"recurrence_parent_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// HasTag reports whether name is one of the task's normalized tags.
func (t Task) HasTag(name string) bool {
	for _, tag := range t.Tags {
		if tag == name {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank orders priorities for sorting: high before medium before low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// Recurrence is the cadence attached to a task. The zero value means the
// task does not recur.
type Recurrence string

const (
	RecurNone    Recurrence = ""
	RecurDaily   Recurrence = "daily"
	RecurWeekly  Recurrence = "weekly"
	RecurMonthly Recurrence = "monthly"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurDaily, RecurWeekly, RecurMonthly:
		return true
	}
	return false
}

// Filter bundles the optional list predicates. Nil or zero fields impose
// no constraint; set fields combine with AND.
type Filter struct {
	Keyword     string     `json:"keyword,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	CreatedFrom *time.Time `json:"created_from,omitempty"`
	CreatedTo   *time.Time `json:"created_to,omitempty"`
}

// Empty reports whether the filter imposes no constraint at all.
func (f Filter) Empty() bool {
	return f.Keyword == "" && f.Status == nil && f.Priority == nil &&
		len(f.Tags) == 0 && f.CreatedFrom == nil && f.CreatedTo == nil
}

type SortField string

const (
	SortByPriority  SortField = "priority"
	SortByDueDate   SortField = "due_date"
	SortByCreatedAt SortField = "created_at"
	SortByTitle     SortField = "title"
)

type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// SortSpec selects a sort field and direction for the sort engine.
type SortSpec struct {
	Field SortField `json:"field"`
	Order SortOrder `json:"order"`
}

// View is a saved, named filter.
type View struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Filter    Filter    `json:"filter"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HistoryEntry is one audit-log row for a task.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	EventType string    `json:"event_type"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
