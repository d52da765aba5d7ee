package engine

import (
	"sort"
	"strings"

	"taskpilot/internal/model"
)

// Sort returns a new slice ordered by the spec. The sort is stable, so
// records with equal keys keep their relative input order and sorting an
// already-sorted slice is a no-op.
//
// Priority orders by rank (high, medium, low) ascending; descending
// reverses that. Undated records always sort after dated ones no matter
// the direction; the direction only flips the order among dated records.
// Titles compare case-insensitively.
func Sort(tasks []model.Task, spec model.SortSpec) []model.Task {
	sorted := append([]model.Task(nil), tasks...)
	desc := spec.Order == model.Descending
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j], spec.Field, desc)
	})
	return sorted
}

func less(a, b model.Task, field model.SortField, desc bool) bool {
	switch field {
	case model.SortByPriority:
		ra, rb := a.Priority.Rank(), b.Priority.Rank()
		if desc {
			return rb < ra
		}
		return ra < rb
	case model.SortByDueDate:
		if a.DueDate == nil || b.DueDate == nil {
			// Missing due dates sort last in both directions.
			return a.DueDate != nil && b.DueDate == nil
		}
		if desc {
			return b.DueDate.Before(*a.DueDate)
		}
		return a.DueDate.Before(*b.DueDate)
	case model.SortByTitle:
		ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title)
		if desc {
			return tb < ta
		}
		return ta < tb
	default: // created_at
		if desc {
			return b.CreatedAt.Before(a.CreatedAt)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}
}
