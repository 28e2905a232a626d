package store

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bentpower/ercotsum-go/hours"
)

const (
	RTFile     = "rt.txt"
	DamFile    = "dam.txt"
	DemandFile = "demand.txt"
)

// Files knows the flat-file layout under the base directory:
//
//	base/rt.txt             most recently read real-time data
//	base/dam.txt            most recently read day-ahead data
//	base/YYYYMMDD/rt.txt    accumulated real-time data for that day
//	base/YYYYMMDD/dam.txt   day-ahead data for that day
//	base/YYYYMMDD/demand.txt  demand meter log for that day
type Files struct {
	baseDir string
	logger  *slog.Logger
}

func New(baseDir string, logger *slog.Logger) *Files {
	return &Files{baseDir: baseDir, logger: logger}
}

func (f *Files) BaseDir() string {
	return f.baseDir
}

func (f *Files) Current(name string) string {
	return filepath.Join(f.baseDir, name)
}

func (f *Files) Day(day, name string) string {
	return filepath.Join(f.baseDir, day, name)
}

func (f *Files) DayFor(t time.Time, name string) string {
	return f.Day(hours.DayDir(t), name)
}

// WriteCurrent replaces the current file for name and appends the same
// text to the day file. The replace is write-temp-then-rename so a reader
// never sees a half-written file. When nothing changed, nothing is written.
func (f *Files) WriteCurrent(name, day string, lines []string) error {
	newText := strings.Join(lines, "\n") + "\n"
	cpath := f.Current(name)

	old, err := os.ReadFile(cpath)
	if err != nil {
		f.logger.Info("no previous data", slog.String("path", cpath), slog.Any("error", err))
	} else if string(old) == newText {
		f.logger.Info("no change in recorded data, skipping update")
		return nil
	}

	if err := atomicWrite(cpath, []byte(newText)); err != nil {
		return err
	}

	hpath := f.Day(day, name)
	if err := appendText(hpath, newText); err != nil {
		return err
	}

	f.logger.Info("updated", slog.String("path", cpath))
	return nil
}

// AppendDayLine appends one record to the day file for t.
func (f *Files) AppendDayLine(t time.Time, name, line string) error {
	return appendText(f.DayFor(t, name), line+"\n")
}

func atomicWrite(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}

func appendText(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	fh, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening %s for append: %w", path, err)
	}
	defer fh.Close()
	if _, err := fh.WriteString(text); err != nil {
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	return nil
}

// PurgeDayDirs removes per-day history directories older than the
// retention window. Directory names that are not day stamps are left
// alone.
func (f *Files) PurgeDayDirs(retentionDays int) error {
	if retentionDays < 1 {
		return nil
	}
	cutoff := hours.DayDir(time.Now().AddDate(0, 0, -retentionDays))

	entries, err := os.ReadDir(f.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", f.baseDir, err)
	}

	for _, e := range entries {
		if !e.IsDir() || len(e.Name()) != len(cutoff) {
			continue
		}
		if _, err := time.Parse("20060102", e.Name()); err != nil {
			continue
		}
		if e.Name() >= cutoff {
			continue
		}
		path := filepath.Join(f.baseDir, e.Name())
		f.logger.Debug("deleting old day directory", slog.String("path", path))
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}
	return nil
}

// ReadLines returns the non-empty lines of path. A file that is missing,
// or that disappeared between stat and open, yields no lines and no error:
// that slice of history is simply unavailable.
func ReadLines(path string) ([]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer fh.Close()

	var lines []string
	scanner := bufio.NewScanner(fh)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}

// LastLine returns the final record of path, or ok=false when the file
// is missing or empty.
func LastLine(path string) (string, bool, error) {
	lines, err := ReadLines(path)
	if err != nil || len(lines) == 0 {
		return "", false, err
	}
	return lines[len(lines)-1], true, nil
}

// TailLines keeps at most n of the most recent lines.
func TailLines(lines []string, n int) []string {
	if n <= 0 || len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}
