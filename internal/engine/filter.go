package engine

import (
	"strings"

	"taskpilot/internal/model"
)

// Apply returns the tasks matching every set predicate of the filter,
// preserving input order. Absent predicates are vacuously true.
// Predicates run cheapest first and short-circuit per record: status and
// priority equality, then tag containment, then the creation-date range,
// then the keyword scan.
func Apply(tasks []model.Task, filter model.Filter) []model.Task {
	if filter.Empty() {
		return tasks
	}
	keyword := strings.ToLower(strings.TrimSpace(filter.Keyword))
	matched := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if matches(task, filter, keyword) {
			matched = append(matched, task)
		}
	}
	return matched
}

// Search is the keyword-first entry point over the filter engine.
func Search(tasks []model.Task, keyword string) []model.Task {
	return Apply(tasks, model.Filter{Keyword: keyword})
}

func matches(task model.Task, filter model.Filter, keyword string) bool {
	if filter.Status != nil && task.Status != *filter.Status {
		return false
	}
	if filter.Priority != nil && task.Priority != *filter.Priority {
		return false
	}
	// All filter tags must be present on the record.
	for _, tag := range filter.Tags {
		if !task.HasTag(tag) {
			return false
		}
	}
	if filter.CreatedFrom != nil && task.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && task.CreatedAt.After(*filter.CreatedTo) {
		return false
	}
	if keyword != "" {
		haystack := strings.ToLower(task.Title + " " + task.Description)
		if !strings.Contains(haystack, keyword) {
			return false
		}
	}
	return true
}
