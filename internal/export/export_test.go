package export

import (
	"encoding/csv"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/artcc/contribdeck/internal/contrib"
	"github.com/artcc/contribdeck/internal/store"
)

var sampleNow = time.Date(2024, time.January, 8, 12, 0, 0, 0, time.UTC)

func sampleCalendar() *contrib.Calendar {
	return &contrib.Calendar{Total: 10, Weeks: []contrib.Week{
		{Days: []contrib.Day{
			{Date: "2024-01-01", Count: 3, Color: "#40c463"},
			{Date: "2024-01-02", Count: 0, Color: "#ebedf0"},
		}},
		{Days: []contrib.Day{
			{Date: "2024-01-08", Count: 7, Color: "#216e39"},
		}},
	}}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.csv")
	if err := ToCSV(sampleCalendar(), path); err != nil {
		t.Fatal(err)
	}

	records := readCSV(t, path)
	if len(records) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "Week,Date,Weekday,Count,Color" {
		t.Fatalf("unexpected header %v", records[0])
	}
	if got := strings.Join(records[1], ","); got != "0,2024-01-01,Monday,3,#40c463" {
		t.Fatalf("unexpected first row %s", got)
	}
	if records[3][0] != "1" || records[3][3] != "7" {
		t.Fatalf("unexpected last row %v", records[3])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := ToCSV(nil, path); err != nil {
		t.Fatal(err)
	}
	if records := readCSV(t, path); len(records) != 1 {
		t.Fatalf("expected header only, got %d rows", len(records))
	}
}

func TestToCSVBadDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	cal := &contrib.Calendar{Weeks: []contrib.Week{{Days: []contrib.Day{{Date: "soon", Count: 1}}}}}
	if err := ToCSV(cal, path); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, path)
	if records[1][2] != "" {
		t.Fatalf("expected empty weekday for a bad date, got %q", records[1][2])
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(sampleCalendar(), "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestRendersToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "renders.csv")
	renders := []store.Render{
		{ID: 1, Context: "ctx", Username: "octocat", Window: contrib.WindowDay, Theme: contrib.ThemeDark, Title: "7", Bytes: 120, CreatedAt: sampleNow},
		{ID: 2, Context: "ctx", Username: "octocat", Window: contrib.WindowYear, Title: "Error", Error: `bad "quote", comma`, CreatedAt: sampleNow},
	}
	if err := RendersToCSV(renders, path); err != nil {
		t.Fatal(err)
	}

	records := readCSV(t, path)
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[1][7] != "7" || records[1][8] != "120" {
		t.Fatalf("unexpected first row %v", records[1])
	}
	if records[2][9] != `bad "quote", comma` {
		t.Fatalf("special characters did not survive: %q", records[2][9])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.json")
	if err := ToJSON(sampleCalendar(), "octocat", sampleNow, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got jsonExport
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Username != "octocat" || got.Total != 10 || got.ExportedAt != "2024-01-08T12:00:00Z" {
		t.Fatalf("unexpected header fields %+v", got)
	}
	if got.Windows["day"] != 7 || got.Windows["year"] != 10 || got.Windows["week"] != 7 {
		t.Fatalf("unexpected window totals %v", got.Windows)
	}
	if len(got.Shards) != contrib.Shards || got.Shards[0] != "JAN" {
		t.Fatalf("unexpected shard labels %v", got.Shards)
	}
	if len(got.Weeks) != 2 || got.Weeks[1].Days[0].Count != 7 {
		t.Fatalf("unexpected weeks %+v", got.Weeks)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := ToJSON(nil, "", sampleNow, path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"weeks": []`) {
		t.Fatalf("expected an empty weeks array, got %s", data)
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	ToJSON(sampleCalendar(), "octocat", sampleNow, path)
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("expected indented json")
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(sampleCalendar(), "octocat", sampleNow, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// PNG
// ============================================================

func solid(size int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestToPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "button.png")
	if err := ToPNG(solid(144, color.RGBA{R: 0x40, G: 0xc4, B: 0x63, A: 0xff}), path, 0); err != nil {
		t.Fatal(err)
	}
	if img := decodePNG(t, path); img.Bounds().Dx() != 144 {
		t.Fatalf("expected original size, got %v", img.Bounds())
	}
}

func TestToPNGResized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	if err := ToPNG(solid(144, color.RGBA{A: 0xff}), path, 288); err != nil {
		t.Fatal(err)
	}
	img := decodePNG(t, path)
	if img.Bounds().Dx() != 288 || img.Bounds().Dy() != 288 {
		t.Fatalf("expected 288x288, got %v", img.Bounds())
	}
}

func TestToPNGBadPath(t *testing.T) {
	if err := ToPNG(solid(4, color.RGBA{}), "/nonexistent/dir/file.png", 0); err == nil {
		t.Fatal("expected error for bad path")
	}
}
