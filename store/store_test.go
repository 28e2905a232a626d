package store

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testFiles(t *testing.T) *Files {
	t.Helper()
	return New(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestWriteCurrentAndDayAppend(t *testing.T) {
	f := testFiles(t)

	lines := []string{"2025-01-01T10:15:00-0600  2.41  5.95"}
	if err := f.WriteCurrent(RTFile, "20250101", lines); err != nil {
		t.Fatalf("WriteCurrent: %v", err)
	}

	got, err := os.ReadFile(f.Current(RTFile))
	if err != nil {
		t.Fatalf("reading current file: %v", err)
	}
	if string(got) != lines[0]+"\n" {
		t.Errorf("current file = %q, want %q", got, lines[0]+"\n")
	}

	// A second distinct write replaces the current file but accumulates
	// in the day file.
	lines2 := []string{"2025-01-01T10:30:00-0600  2.50  6.04"}
	if err := f.WriteCurrent(RTFile, "20250101", lines2); err != nil {
		t.Fatalf("WriteCurrent: %v", err)
	}

	curr, _ := ReadLines(f.Current(RTFile))
	if len(curr) != 1 || curr[0] != lines2[0] {
		t.Errorf("current file lines = %v, want just %q", curr, lines2[0])
	}

	day, _ := ReadLines(f.Day("20250101", RTFile))
	if len(day) != 2 {
		t.Errorf("day file has %d lines, want 2", len(day))
	}
}

func TestWriteCurrentSkipsUnchanged(t *testing.T) {
	f := testFiles(t)

	lines := []string{"2025-01-01T10:15:00-0600  2.41  5.95"}
	if err := f.WriteCurrent(RTFile, "20250101", lines); err != nil {
		t.Fatalf("WriteCurrent: %v", err)
	}
	if err := f.WriteCurrent(RTFile, "20250101", lines); err != nil {
		t.Fatalf("WriteCurrent (repeat): %v", err)
	}

	day, _ := ReadLines(f.Day("20250101", RTFile))
	if len(day) != 1 {
		t.Errorf("unchanged write appended anyway, day file has %d lines", len(day))
	}
}

func TestWriteCurrentLeavesNoTempFile(t *testing.T) {
	f := testFiles(t)
	if err := f.WriteCurrent(DamFile, "20250101", []string{"x 1.0 4.5"}); err != nil {
		t.Fatalf("WriteCurrent: %v", err)
	}
	if _, err := os.Stat(f.Current(DamFile) + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after atomic write")
	}
}

func TestReadLinesMissingFile(t *testing.T) {
	lines, err := ReadLines(filepath.Join(t.TempDir(), "nope", "rt.txt"))
	if err != nil {
		t.Fatalf("missing file should not be an error, got %v", err)
	}
	if lines != nil {
		t.Errorf("missing file should yield no lines, got %v", lines)
	}
}

func TestLastLine(t *testing.T) {
	f := testFiles(t)
	path := f.Current(RTFile)
	if err := atomicWrite(path, []byte("first 1 2\nsecond 3 4\n")); err != nil {
		t.Fatalf("atomicWrite: %v", err)
	}

	line, ok, err := LastLine(path)
	if err != nil || !ok {
		t.Fatalf("LastLine: ok=%v err=%v", ok, err)
	}
	if line != "second 3 4" {
		t.Errorf("LastLine = %q, want %q", line, "second 3 4")
	}

	_, ok, err = LastLine(f.Current("absent.txt"))
	if err != nil {
		t.Fatalf("LastLine on missing file: %v", err)
	}
	if ok {
		t.Error("LastLine on missing file should report ok=false")
	}
}

func TestPurgeDayDirs(t *testing.T) {
	f := testFiles(t)

	for _, day := range []string{"20200101", "20200102"} {
		if err := appendText(f.Day(day, RTFile), "x 1 2\n"); err != nil {
			t.Fatalf("appendText: %v", err)
		}
	}
	// Not a day directory, must survive the purge.
	keep := filepath.Join(f.BaseDir(), "backups")
	if err := os.MkdirAll(keep, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	if err := f.PurgeDayDirs(30); err != nil {
		t.Fatalf("PurgeDayDirs: %v", err)
	}

	if _, err := os.Stat(f.Day("20200101", RTFile)); !os.IsNotExist(err) {
		t.Error("old day directory survived purge")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("non-day directory removed by purge: %v", err)
	}
}

func TestTailLines(t *testing.T) {
	lines := []string{"a", "b", "c", "d"}
	tail := TailLines(lines, 2)
	if len(tail) != 2 || tail[0] != "c" || tail[1] != "d" {
		t.Errorf("TailLines = %v, want [c d]", tail)
	}
	if got := TailLines(lines, 10); len(got) != 4 {
		t.Errorf("TailLines with large n = %v, want all lines", got)
	}
}
