package demand

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bentpower/ercotsum-go/hours"
	"github.com/bentpower/ercotsum-go/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeSamples(t *testing.T, files *store.Files, samples map[time.Time]float64) {
	t.Helper()
	for at, kw := range samples {
		line := fmt.Sprintf("%s %.3f", hours.Stamp(at), kw)
		if err := files.AppendDayLine(at, store.DemandFile, line); err != nil {
			t.Fatalf("AppendDayLine: %v", err)
		}
	}
}

func TestAveragesOneMinuteWindow(t *testing.T) {
	if err := hours.SetMarketTimezone("UTC"); err != nil {
		t.Fatalf("SetMarketTimezone: %v", err)
	}
	defer hours.SetMarketTimezone("America/Chicago")

	files := store.New(t.TempDir(), discardLogger())
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	writeSamples(t, files, map[time.Time]float64{
		t0:                       5.0,
		t0.Add(-30 * time.Second): 4.0,
		t0.Add(-70 * time.Second): 3.0,
	})

	avgs := Averages(files, t0, 1000, 20*time.Minute, discardLogger())

	if !avgs.Min1.IsValid() {
		t.Fatal("1m average should be present")
	}
	if got := avgs.Min1.Value(); got != 4.5 {
		t.Errorf("1m average = %f, want 4.5 (only the two samples within 60s)", got)
	}
	if !avgs.Min5.IsValid() {
		t.Fatal("5m average should be present")
	}
	if got, want := avgs.Min5.Value(), 4.0; got != want {
		t.Errorf("5m average = %f, want %f", got, want)
	}
}

func TestAveragesCrossMidnight(t *testing.T) {
	if err := hours.SetMarketTimezone("UTC"); err != nil {
		t.Fatalf("SetMarketTimezone: %v", err)
	}
	defer hours.SetMarketTimezone("America/Chicago")

	files := store.New(t.TempDir(), discardLogger())
	t0 := time.Date(2025, 6, 2, 0, 5, 0, 0, time.UTC)
	// One sample after midnight, one before; both land in different day logs.
	writeSamples(t, files, map[time.Time]float64{
		t0.Add(-2 * time.Minute): 6.0,
		t0.Add(-8 * time.Minute): 2.0,
	})

	avgs := Averages(files, t0, 1000, 20*time.Minute, discardLogger())

	if avgs.Min1.IsValid() {
		t.Error("no samples within 60s, 1m average should be absent")
	}
	if !avgs.Min5.IsValid() || avgs.Min5.Value() != 6.0 {
		t.Errorf("5m average = %v, want 6.0", avgs.Min5)
	}
	if !avgs.Min15.IsValid() || avgs.Min15.Value() != 4.0 {
		t.Errorf("15m average = %v, want 4.0", avgs.Min15)
	}
}

func TestAveragesEmpty(t *testing.T) {
	files := store.New(t.TempDir(), discardLogger())
	avgs := Averages(files, time.Now(), 1000, 20*time.Minute, discardLogger())
	if avgs.Min1.IsValid() || avgs.Min5.IsValid() || avgs.Min15.IsValid() {
		t.Error("all averages should be absent with no demand logs")
	}
}

func TestAveragesSkipsMalformedLines(t *testing.T) {
	if err := hours.SetMarketTimezone("UTC"); err != nil {
		t.Fatalf("SetMarketTimezone: %v", err)
	}
	defer hours.SetMarketTimezone("America/Chicago")

	files := store.New(t.TempDir(), discardLogger())
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := files.AppendDayLine(t0, store.DemandFile, "garbage line"); err != nil {
		t.Fatalf("AppendDayLine: %v", err)
	}
	writeSamples(t, files, map[time.Time]float64{t0.Add(-10 * time.Second): 3.0})

	avgs := Averages(files, t0, 1000, 20*time.Minute, discardLogger())
	if !avgs.Min1.IsValid() || avgs.Min1.Value() != 3.0 {
		t.Errorf("1m average = %v, want 3.0 despite the malformed line", avgs.Min1)
	}
}

func TestAveragesNegativeExport(t *testing.T) {
	if err := hours.SetMarketTimezone("UTC"); err != nil {
		t.Fatalf("SetMarketTimezone: %v", err)
	}
	defer hours.SetMarketTimezone("America/Chicago")

	files := store.New(t.TempDir(), discardLogger())
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	writeSamples(t, files, map[time.Time]float64{
		t0.Add(-10 * time.Second): -2.0,
		t0.Add(-20 * time.Second): 4.0,
	})

	avgs := Averages(files, t0, 1000, 20*time.Minute, discardLogger())
	if !avgs.Min1.IsValid() || avgs.Min1.Value() != 1.0 {
		t.Errorf("1m average = %v, want 1.0 (net export averages in)", avgs.Min1)
	}
}
