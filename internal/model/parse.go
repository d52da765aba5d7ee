package model

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted for due dates and date-only range bounds. Due dates
// are local, timezone-naive timestamps.
const (
	DueDateLayout = "2006-01-02 15:04"
	DateLayout    = "2006-01-02"
)

// ParseStatus accepts a status value case-insensitively and returns the
// canonical form.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// ParsePriority accepts a priority value case-insensitively and returns
// the canonical lowercase form.
func ParsePriority(raw string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	return p, p.Valid()
}

// ParseRecurrence accepts a recurrence value case-insensitively. An empty
// input parses to RecurNone.
func ParseRecurrence(raw string) (Recurrence, bool) {
	r := Recurrence(strings.ToLower(strings.TrimSpace(raw)))
	if r == RecurNone {
		return RecurNone, true
	}
	return r, r.Valid()
}

// ParseDueDate parses a due date as "YYYY-MM-DD HH:MM" or, with the time
// of day defaulting to midnight, "YYYY-MM-DD".
func ParseDueDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if t, err := time.ParseInLocation(DueDateLayout, value, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(DateLayout, value, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid due date %q, expected format %q", raw, DueDateLayout)
}

// ParseDate parses a date-only value used for creation-range bounds.
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	t, err := time.ParseInLocation(DateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected format %q", raw, DateLayout)
	}
	return t, nil
}

// ParseSortField validates a sort field name.
func ParseSortField(raw string) (SortField, bool) {
	f := SortField(strings.ToLower(strings.TrimSpace(raw)))
	switch f {
	case SortByPriority, SortByDueDate, SortByCreatedAt, SortByTitle:
		return f, true
	}
	return f, false
}

// ParseSortOrder validates a sort direction, accepting "asc" and "desc".
func ParseSortOrder(raw string) (SortOrder, bool) {
	o := SortOrder(strings.ToLower(strings.TrimSpace(raw)))
	switch o {
	case Ascending, Descending:
		return o, true
	}
	return o, false
}

// SplitTags splits a comma-separated tag list, dropping empty parts. The
// parts are passed verbatim to the tag normalizer.
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		tags = append(tags, part)
	}
	return tags
}
