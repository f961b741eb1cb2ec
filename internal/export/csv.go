package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/artcc/contribdeck/internal/contrib"
	"github.com/artcc/contribdeck/internal/store"
)

// ToCSV writes one row per calendar day.
func ToCSV(cal *contrib.Calendar, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"Week", "Date", "Weekday", "Count", "Color"}); err != nil {
		return err
	}

	if cal != nil {
		for i, week := range cal.Weeks {
			for _, d := range week.Days {
				weekday := ""
				if t, ok := d.Time(time.UTC); ok {
					weekday = t.Weekday().String()
				}
				row := []string{strconv.Itoa(i), d.Date, weekday, strconv.Itoa(d.Count), d.Color}
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
	}

	w.Flush()
	return w.Error()
}

// RendersToCSV writes the render log.
func RendersToCSV(renders []store.Render, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"ID", "Time", "Target", "User", "Window", "Theme", "Shard", "Title", "Bytes", "Error"}); err != nil {
		return err
	}
	for _, r := range renders {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.CreatedAt.Local().Format(time.RFC3339),
			r.Context,
			r.Username,
			string(r.Window),
			string(r.Theme),
			strconv.Itoa(r.Shard),
			r.Title,
			strconv.Itoa(r.Bytes),
			r.Error,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
