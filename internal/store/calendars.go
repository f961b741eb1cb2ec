package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/artcc/contribdeck/internal/contrib"
)

// SaveCalendar replaces the cached calendar of username.
func (s *Store) SaveCalendar(username string, cal *contrib.Calendar, fetchedAt time.Time) error {
	if cal == nil {
		return fmt.Errorf("save calendar %q: nil calendar", username)
	}
	weeks, err := json.Marshal(cal.Weeks)
	if err != nil {
		return fmt.Errorf("marshal weeks: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO calendars (username, total, weeks, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET
			total = excluded.total, weeks = excluded.weeks, fetched_at = excluded.fetched_at`,
		username, cal.Total, string(weeks), fetchedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save calendar %q: %w", username, err)
	}
	return nil
}

// GetCalendar returns the cached calendar of username, or nil when none was
// saved yet.
func (s *Store) GetCalendar(username string) (*CachedCalendar, error) {
	c := &CachedCalendar{Username: username, Calendar: &contrib.Calendar{}}
	var weeks, fetchedAt string
	err := s.db.QueryRow(
		`SELECT total, weeks, fetched_at FROM calendars WHERE username = ?`, username,
	).Scan(&c.Calendar.Total, &weeks, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get calendar %q: %w", username, err)
	}
	if err := json.Unmarshal([]byte(weeks), &c.Calendar.Weeks); err != nil {
		return nil, fmt.Errorf("unmarshal weeks: %w", err)
	}
	c.FetchedAt, _ = time.Parse(time.RFC3339, fetchedAt)
	return c, nil
}
