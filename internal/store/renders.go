package store

import (
	"fmt"
	"time"

	"github.com/artcc/contribdeck/internal/contrib"
)

// RecordRender appends r to the render log. A zero CreatedAt means now.
func (s *Store) RecordRender(r Render) (*Render, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	res, err := s.db.Exec(
		`INSERT INTO renders (context, username, time_window, theme, shard, title, bytes, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Context, r.Username, string(r.Window), string(r.Theme), r.Shard, r.Title, r.Bytes, r.Error,
		r.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("record render: %w", err)
	}
	r.ID, _ = res.LastInsertId()
	r.CreatedAt, _ = time.Parse(time.RFC3339, r.CreatedAt.UTC().Format(time.RFC3339))
	return &r, nil
}

// ListRenders returns matching renders, newest first.
func (s *Store) ListRenders(f RenderFilter) ([]Render, error) {
	query := `SELECT id, context, username, time_window, theme, shard, title, bytes, error, created_at FROM renders WHERE 1=1`
	var args []any

	if f.Context != nil {
		query += ` AND context = ?`
		args = append(args, *f.Context)
	}
	if f.Username != nil {
		query += ` AND username = ?`
		args = append(args, *f.Username)
	}
	if f.From != nil {
		query += ` AND created_at >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND created_at < ?`
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	if f.FailedOnly {
		query += ` AND error != ''`
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list renders: %w", err)
	}
	defer rows.Close()

	var renders []Render
	for rows.Next() {
		var r Render
		var window, theme, createdAt string
		if err := rows.Scan(&r.ID, &r.Context, &r.Username, &window, &theme, &r.Shard, &r.Title, &r.Bytes, &r.Error, &createdAt); err != nil {
			return nil, err
		}
		r.Window = contrib.Window(window)
		r.Theme = contrib.Theme(theme)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		renders = append(renders, r)
	}
	return renders, rows.Err()
}

// GetDailyRenders counts renders per UTC day in [from, to).
func (s *Store) GetDailyRenders(from, to time.Time) ([]DailyRenders, error) {
	rows, err := s.db.Query(`
		SELECT date(created_at) AS day, COUNT(*), SUM(CASE WHEN error != '' THEN 1 ELSE 0 END)
		FROM renders
		WHERE created_at >= ? AND created_at < ?
		GROUP BY day
		ORDER BY day`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("daily renders: %w", err)
	}
	defer rows.Close()

	var days []DailyRenders
	for rows.Next() {
		var d DailyRenders
		if err := rows.Scan(&d.Date, &d.Count, &d.Failures); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// PruneRenders deletes log entries older than before and reports how many
// were removed.
func (s *Store) PruneRenders(before time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM renders WHERE created_at < ?`, before.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("prune renders: %w", err)
	}
	return res.RowsAffected()
}
