package pricing

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/bentpower/ercotsum-go/calc"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// flatParams makes delivered == raw so expected values stay readable.
func flatParams() calc.Params {
	return calc.Params{
		DaysPerMonth:      30,
		SamplesPerHour:    4,
		PriceCap:          900.0,
		LowCostMultiplier: 1.3,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoadDam(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dam.txt")
	writeFile(t, path, ""+
		"2025-06-01T10:00:00+0000  4.00  7.54\n"+
		"2025-06-01T11:00:00+0000  1.00  4.54\n"+
		"not a price line\n")

	table, err := LoadDam(path, flatParams(), discardLogger())
	if err != nil {
		t.Fatalf("LoadDam: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("table has %d entries, want 2 (malformed line skipped)", len(table))
	}

	e, ok := table["2025-06-01T10:00:00+0000"]
	if !ok {
		t.Fatal("missing entry for 10:00")
	}
	if e.Spp != 4.0 {
		t.Errorf("Spp = %f, want 4.0", e.Spp)
	}
	if e.Delivered != 4.0 {
		t.Errorf("Delivered = %f, want 4.0 with flat params", e.Delivered)
	}
	// 4^2/2 = 8, below the cap, above the raw price.
	if e.Anticipated != 8.0 {
		t.Errorf("Anticipated = %f, want 8.0", e.Anticipated)
	}

	// The legacy third column is ignored, the raw price is what counts.
	low := table["2025-06-01T11:00:00+0000"]
	if low.Delivered != 1.0 {
		t.Errorf("Delivered = %f, want recomputed 1.0, not the stored 4.54", low.Delivered)
	}
}

func TestLoadDamMissingFile(t *testing.T) {
	table, err := LoadDam(filepath.Join(t.TempDir(), "dam.txt"), flatParams(), discardLogger())
	if err != nil {
		t.Fatalf("missing file must not be an error, got %v", err)
	}
	if len(table) != 0 {
		t.Errorf("missing file should give an empty table, got %d entries", len(table))
	}
}

func TestMergeDamTomorrowWins(t *testing.T) {
	p := flatParams()
	dir := t.TempDir()
	todayPath := filepath.Join(dir, "today.txt")
	tomorrowPath := filepath.Join(dir, "tomorrow.txt")

	writeFile(t, todayPath, ""+
		"2025-06-01T10:00:00+0000  4.00\n"+
		"2025-06-01T11:00:00+0000  5.00\n")
	writeFile(t, tomorrowPath, ""+
		"2025-06-01T11:00:00+0000  9.00\n"+
		"2025-06-02T10:00:00+0000  2.00\n")

	today, _ := LoadDam(todayPath, p, discardLogger())
	tomorrow, _ := LoadDam(tomorrowPath, p, discardLogger())
	merged := MergeDam(today, tomorrow)

	if len(merged) != 3 {
		t.Fatalf("merged table has %d entries, want 3", len(merged))
	}
	if got := merged["2025-06-01T11:00:00+0000"].Spp; got != 9.0 {
		t.Errorf("overlapping hour = %f, want tomorrow's 9.0", got)
	}
	if got := merged["2025-06-01T10:00:00+0000"].Spp; got != 4.0 {
		t.Errorf("today-only hour = %f, want 4.0", got)
	}
}

func TestMergeDamIdenticalIsTodayOnly(t *testing.T) {
	p := flatParams()
	path := filepath.Join(t.TempDir(), "dam.txt")
	writeFile(t, path, "2025-06-01T10:00:00+0000  4.00\n")

	today, _ := LoadDam(path, p, discardLogger())
	tomorrow, _ := LoadDam(path, p, discardLogger())

	merged := MergeDam(today, tomorrow)
	if len(merged) != 1 {
		t.Errorf("identical tables should merge to today's alone, got %d entries", len(merged))
	}
}

func TestMergeDamEmptyTomorrow(t *testing.T) {
	p := flatParams()
	path := filepath.Join(t.TempDir(), "dam.txt")
	writeFile(t, path, "2025-06-01T10:00:00+0000  4.00\n")

	today, _ := LoadDam(path, p, discardLogger())
	merged := MergeDam(today, nil)
	if len(merged) != 1 {
		t.Errorf("empty tomorrow should leave today untouched, got %d entries", len(merged))
	}
}

func TestSortedStamps(t *testing.T) {
	p := flatParams()
	path := filepath.Join(t.TempDir(), "dam.txt")
	writeFile(t, path, ""+
		"2025-06-01T12:00:00+0000  3.00\n"+
		"2025-06-01T10:00:00+0000  1.00\n"+
		"2025-06-01T11:00:00+0000  2.00\n")

	table, _ := LoadDam(path, p, discardLogger())
	stamps := table.SortedStamps()
	want := []string{
		"2025-06-01T10:00:00+0000",
		"2025-06-01T11:00:00+0000",
		"2025-06-01T12:00:00+0000",
	}
	for i, s := range want {
		if stamps[i] != s {
			t.Errorf("stamps[%d] = %q, want %q", i, stamps[i], s)
		}
	}
}
