package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/artcc/contribdeck/internal/contrib"
)

type jsonExport struct {
	ExportedAt string         `json:"exported_at"`
	Username   string         `json:"username"`
	Total      int            `json:"total"`
	Windows    map[string]int `json:"windows"`
	Shards     []string       `json:"shards"`
	Weeks      []contrib.Week `json:"weeks"`
}

// ToJSON writes the calendar together with the totals of every window and the
// month labels of every shard as seen at now.
func ToJSON(cal *contrib.Calendar, username string, now time.Time, path string) error {
	export := jsonExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Username:   username,
		Windows:    make(map[string]int, len(contrib.Windows)),
		Weeks:      []contrib.Week{},
	}
	if cal != nil {
		export.Total = cal.Total
		if cal.Weeks != nil {
			export.Weeks = cal.Weeks
		}
	}
	for _, w := range contrib.Windows {
		export.Windows[string(w)] = contrib.Aggregate(cal, w, now)
	}
	for i := 0; i < contrib.Shards; i++ {
		export.Shards = append(export.Shards, contrib.ShardLabel(cal, i))
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
