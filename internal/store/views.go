package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskpilot/internal/model"
)

// SaveView stores a named filter, creating it or replacing the filter of
// an existing view with the same id.
func (s *Store) SaveView(ctx context.Context, view model.View) (model.View, error) {
	name := strings.TrimSpace(view.Name)
	if name == "" {
		return model.View{}, fmt.Errorf("view name is required")
	}

	payload, err := json.Marshal(view.Filter)
	if err != nil {
		return model.View{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if view.ID == 0 {
		result, err := s.DB.ExecContext(ctx,
			`INSERT INTO views (name, filter_json, created_at, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET filter_json = excluded.filter_json, updated_at = excluded.updated_at`,
			name, string(payload), formatStoredTime(now), formatStoredTime(now))
		if err != nil {
			return model.View{}, err
		}
		if id, err := result.LastInsertId(); err == nil {
			view.ID = id
		}
	} else {
		if _, err := s.DB.ExecContext(ctx,
			`UPDATE views SET name = ?, filter_json = ?, updated_at = ? WHERE id = ?`,
			name, string(payload), formatStoredTime(now), view.ID); err != nil {
			return model.View{}, err
		}
	}

	return s.getViewByName(ctx, name)
}

// ListViews returns all saved views by name.
func (s *Store) ListViews(ctx context.Context) ([]model.View, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, filter_json, created_at, updated_at FROM views ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []model.View
	for rows.Next() {
		view, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, rows.Err()
}

// GetViewByName resolves a saved view for `list --view NAME`.
func (s *Store) GetViewByName(ctx context.Context, name string) (model.View, error) {
	return s.getViewByName(ctx, strings.TrimSpace(name))
}

func (s *Store) getViewByName(ctx context.Context, name string) (model.View, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT id, name, filter_json, created_at, updated_at FROM views WHERE name = ?`, name)
	view, err := scanView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.View{}, fmt.Errorf("view %q not found", name)
	}
	return view, err
}

// DeleteView removes a saved view.
func (s *Store) DeleteView(ctx context.Context, viewID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.DB.ExecContext(ctx, `DELETE FROM views WHERE id = ?`, viewID)
	return err
}

func scanView(row rowScanner) (model.View, error) {
	var view model.View
	var filterJSON, created, updated string
	if err := row.Scan(&view.ID, &view.Name, &filterJSON, &created, &updated); err != nil {
		return model.View{}, err
	}
	if err := json.Unmarshal([]byte(filterJSON), &view.Filter); err != nil {
		return model.View{}, fmt.Errorf("view %q: parse filter: %w", view.Name, err)
	}
	view.CreatedAt = parseStoredTime(created)
	view.UpdatedAt = parseStoredTime(updated)
	return view, nil
}
