package store

import (
	"fmt"
	"time"

	"github.com/artcc/contribdeck/internal/contrib"
)

// SaveTarget inserts or updates the settings of t.Context.
func (s *Store) SaveTarget(t Target) (*Target, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO targets (context, username, time_window, theme, shard, refresh_minutes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(context) DO UPDATE SET
			username = excluded.username,
			time_window = excluded.time_window,
			theme = excluded.theme,
			shard = excluded.shard,
			refresh_minutes = excluded.refresh_minutes,
			updated_at = excluded.updated_at`,
		t.Context, t.Username, string(t.Window), string(t.Theme), t.Shard, t.RefreshMinutes, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("save target: %w", err)
	}
	return s.GetTarget(t.Context)
}

func (s *Store) GetTarget(context string) (*Target, error) {
	t := &Target{}
	var window, theme, createdAt, updatedAt string
	err := s.db.QueryRow(
		`SELECT context, username, time_window, theme, shard, refresh_minutes, created_at, updated_at
		 FROM targets WHERE context = ?`, context,
	).Scan(&t.Context, &t.Username, &window, &theme, &t.Shard, &t.RefreshMinutes, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("get target %q: %w", context, err)
	}
	t.Window = contrib.Window(window)
	t.Theme = contrib.Theme(theme)
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return t, nil
}

func (s *Store) ListTargets() ([]Target, error) {
	rows, err := s.db.Query(
		`SELECT context, username, time_window, theme, shard, refresh_minutes, created_at, updated_at
		 FROM targets ORDER BY username, shard, context`,
	)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	defer rows.Close()

	var targets []Target
	for rows.Next() {
		var t Target
		var window, theme, createdAt, updatedAt string
		if err := rows.Scan(&t.Context, &t.Username, &window, &theme, &t.Shard, &t.RefreshMinutes, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		t.Window = contrib.Window(window)
		t.Theme = contrib.Theme(theme)
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

func (s *Store) DeleteTarget(context string) error {
	_, err := s.db.Exec(`DELETE FROM targets WHERE context = ?`, context)
	return err
}
