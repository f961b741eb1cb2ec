package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/artcc/contribdeck/internal/contrib"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// recordAt is a test helper that logs a render at a fixed time.
func recordAt(t *testing.T, s *Store, context string, at time.Time, failure string) *Render {
	t.Helper()
	r, err := s.RecordRender(Render{
		Context:   context,
		Username:  "octocat",
		Window:    contrib.WindowYear,
		Theme:     contrib.ThemeDark,
		Title:     "12",
		Bytes:     100,
		Error:     failure,
		CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("record render: %v", err)
	}
	return r
}

func ptr[T any](v T) *T { return &v }

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/contribdeck.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveTarget(Target{Context: "ctx", Username: "octocat"}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: data survives and migrations do not run twice.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if _, err := s2.GetTarget("ctx"); err != nil {
		t.Fatalf("expected persisted target: %v", err)
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)

	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Targets
// ============================================================

func TestSaveAndGetTarget(t *testing.T) {
	s := newTestStore(t)

	saved, err := s.SaveTarget(Target{
		Context:        "ctx-1",
		Username:       "octocat",
		Window:         contrib.WindowYearSharded,
		Theme:          contrib.ThemeDark,
		Shard:          3,
		RefreshMinutes: 15,
	})
	if err != nil {
		t.Fatal(err)
	}
	if saved.Username != "octocat" || saved.Window != contrib.WindowYearSharded || saved.Theme != contrib.ThemeDark {
		t.Fatalf("unexpected target %+v", saved)
	}
	if saved.Shard != 3 || saved.RefreshMinutes != 15 {
		t.Fatalf("unexpected shard/interval %+v", saved)
	}
	if saved.CreatedAt.IsZero() || saved.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps")
	}
}

func TestSaveTargetUpserts(t *testing.T) {
	s := newTestStore(t)

	s.SaveTarget(Target{Context: "ctx", Username: "a", Window: contrib.WindowDay})
	got, err := s.SaveTarget(Target{Context: "ctx", Username: "b", Window: contrib.WindowWeek})
	if err != nil {
		t.Fatal(err)
	}
	if got.Username != "b" || got.Window != contrib.WindowWeek {
		t.Fatalf("expected update, got %+v", got)
	}
	all, _ := s.ListTargets()
	if len(all) != 1 {
		t.Fatalf("expected 1 target, got %d", len(all))
	}
}

func TestGetTargetNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetTarget("missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestListTargets(t *testing.T) {
	s := newTestStore(t)

	s.SaveTarget(Target{Context: "c3", Username: "zed", Shard: 0})
	s.SaveTarget(Target{Context: "c2", Username: "amy", Shard: 4})
	s.SaveTarget(Target{Context: "c1", Username: "amy", Shard: 1})

	all, err := s.ListTargets()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 targets, got %d", len(all))
	}
	if all[0].Context != "c1" || all[1].Context != "c2" || all[2].Context != "c3" {
		t.Fatalf("unexpected order %s %s %s", all[0].Context, all[1].Context, all[2].Context)
	}
}

func TestListTargetsEmpty(t *testing.T) {
	s := newTestStore(t)
	all, err := s.ListTargets()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Fatalf("expected no targets, got %d", len(all))
	}
}

func TestDeleteTarget(t *testing.T) {
	s := newTestStore(t)

	s.SaveTarget(Target{Context: "ctx"})
	if err := s.DeleteTarget("ctx"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetTarget("ctx"); err == nil {
		t.Fatal("expected target to be gone")
	}
	if err := s.DeleteTarget("ctx"); err != nil {
		t.Fatalf("deleting twice should be harmless: %v", err)
	}
}

// ============================================================
// Calendars
// ============================================================

func TestSaveAndGetCalendar(t *testing.T) {
	s := newTestStore(t)

	cal := &contrib.Calendar{Total: 5, Weeks: []contrib.Week{
		{Days: []contrib.Day{{Date: "2024-01-01", Count: 2, Color: "#40c463"}, {Date: "2024-01-02", Count: 3, Color: "#30a14e"}}},
		{},
	}}
	fetched := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	if err := s.SaveCalendar("octocat", cal, fetched); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetCalendar("octocat")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || !got.FetchedAt.Equal(fetched) {
		t.Fatalf("unexpected cached calendar %+v", got)
	}
	if got.Calendar.Total != 5 || len(got.Calendar.Weeks) != 2 || got.Calendar.Weeks[0].Days[1].Count != 3 {
		t.Fatalf("calendar did not survive storage: %+v", got.Calendar)
	}
}

func TestSaveCalendarReplaces(t *testing.T) {
	s := newTestStore(t)

	s.SaveCalendar("octocat", &contrib.Calendar{Total: 1}, time.Now())
	s.SaveCalendar("octocat", &contrib.Calendar{Total: 9}, time.Now())
	got, _ := s.GetCalendar("octocat")
	if got.Calendar.Total != 9 {
		t.Fatalf("expected latest calendar, got total %d", got.Calendar.Total)
	}
}

func TestGetCalendarMissing(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetCalendar("nobody")
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil; got %+v, %v", got, err)
	}
}

func TestSaveCalendarNil(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveCalendar("octocat", nil, time.Now()); err == nil {
		t.Fatal("expected error for nil calendar")
	}
}

// ============================================================
// Render log
// ============================================================

func TestRecordRender(t *testing.T) {
	s := newTestStore(t)

	r, err := s.RecordRender(Render{Context: "ctx", Window: contrib.WindowDay, Theme: contrib.ThemeLight, Title: "3"})
	if err != nil {
		t.Fatal(err)
	}
	if r.ID == 0 || r.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", r)
	}

	all, err := s.ListRenders(RenderFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].Title != "3" || all[0].Window != contrib.WindowDay {
		t.Fatalf("unexpected log %+v", all)
	}
}

func TestListRendersNewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	recordAt(t, s, "ctx", base, "")
	recordAt(t, s, "ctx", base.Add(time.Hour), "")
	recordAt(t, s, "ctx", base.Add(-time.Hour), "")

	all, _ := s.ListRenders(RenderFilter{})
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.After(all[i-1].CreatedAt) {
			t.Fatalf("renders not newest first at %d", i)
		}
	}
}

func TestListRendersFilters(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	recordAt(t, s, "a", base, "")
	recordAt(t, s, "a", base.Add(24*time.Hour), "boom")
	recordAt(t, s, "b", base.Add(48*time.Hour), "")

	tests := []struct {
		name string
		f    RenderFilter
		want int
	}{
		{"context", RenderFilter{Context: ptr("a")}, 2},
		{"username", RenderFilter{Username: ptr("octocat")}, 3},
		{"unknown user", RenderFilter{Username: ptr("ghost")}, 0},
		{"from", RenderFilter{From: ptr(base.Add(time.Hour))}, 2},
		{"to", RenderFilter{To: ptr(base.Add(time.Hour))}, 1},
		{"failed", RenderFilter{FailedOnly: true}, 1},
		{"limit", RenderFilter{Limit: 2}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListRenders(tt.f)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Fatalf("expected %d renders, got %d", tt.want, len(got))
			}
		})
	}
}

func TestGetDailyRenders(t *testing.T) {
	s := newTestStore(t)
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	recordAt(t, s, "a", day.Add(time.Hour), "")
	recordAt(t, s, "a", day.Add(2*time.Hour), "boom")
	recordAt(t, s, "a", day.Add(26*time.Hour), "")
	recordAt(t, s, "a", day.Add(-time.Hour), "")

	got, err := s.GetDailyRenders(day, day.Add(48*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 days, got %d", len(got))
	}
	if got[0].Date != "2024-03-01" || got[0].Count != 2 || got[0].Failures != 1 {
		t.Fatalf("unexpected first day %+v", got[0])
	}
	if got[1].Date != "2024-03-02" || got[1].Count != 1 || got[1].Failures != 0 {
		t.Fatalf("unexpected second day %+v", got[1])
	}
}

func TestGetDailyRendersEmpty(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetDailyRenders(time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no days, got %d", len(got))
	}
}

func TestPruneRenders(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	recordAt(t, s, "a", base.Add(-48*time.Hour), "")
	recordAt(t, s, "a", base.Add(-time.Minute), "")
	recordAt(t, s, "a", base, "")

	n, err := s.PruneRenders(base)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 pruned, got %d", n)
	}
	left, _ := s.ListRenders(RenderFilter{})
	if len(left) != 1 {
		t.Fatalf("expected 1 render left, got %d", len(left))
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)

	defaults := map[string]string{
		"preview_user":   "",
		"preview_window": "year",
		"preview_theme":  "dark",
		"preview_shard":  "0",
		"preview_view":   "button",
	}

	for k, expected := range defaults {
		val, err := s.GetSetting(k)
		if err != nil {
			t.Fatalf("GetSetting(%q): %v", k, err)
		}
		if val != expected {
			t.Fatalf("GetSetting(%q) = %q, want %q", k, val, expected)
		}
	}
}

func TestSetSettingsExistingKey(t *testing.T) {
	s := newTestStore(t)

	s.SetSettings(map[string]string{"preview_window": "month"})
	val, _ := s.GetSetting("preview_window")
	if val != "month" {
		t.Fatalf("expected month, got %s", val)
	}
}

func TestSetSettingsNewKey(t *testing.T) {
	s := newTestStore(t)

	s.SetSettings(map[string]string{"custom_key": "custom_value"})
	val, err := s.GetSetting("custom_key")
	if err != nil {
		t.Fatal(err)
	}
	if val != "custom_value" {
		t.Fatalf("expected custom_value, got %s", val)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nonexistent")
	if err == nil {
		t.Fatal("expected error for missing setting")
	}
}

func TestSettingsPrefix(t *testing.T) {
	s := newTestStore(t)
	s.SetSettings(map[string]string{"other_key": "x"})

	preview, err := s.Settings("preview_")
	if err != nil {
		t.Fatal(err)
	}
	if len(preview) != 5 || preview["preview_theme"] != "dark" {
		t.Fatalf("unexpected preview settings %v", preview)
	}
	if _, ok := preview["other_key"]; ok {
		t.Fatal("prefix filter let other_key through")
	}

	all, err := s.Settings("")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 6 {
		t.Fatalf("expected 6 settings, got %d", len(all))
	}
}

func TestSetSettings(t *testing.T) {
	s := newTestStore(t)
	err := s.SetSettings(map[string]string{
		"preview_window": "week",
		"preview_shard":  "3",
		"preview_extra":  "yes",
	})
	if err != nil {
		t.Fatal(err)
	}
	got, _ := s.Settings("preview_")
	if got["preview_window"] != "week" || got["preview_shard"] != "3" || got["preview_extra"] != "yes" {
		t.Fatalf("unexpected settings %v", got)
	}
}

// ============================================================
// Close
// ============================================================

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	err := s.Close()
	if err != nil {
		t.Fatalf("first close: %v", err)
	}
}
