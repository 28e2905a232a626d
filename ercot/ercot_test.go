package ercot

import (
	"strings"
	"testing"
	"time"

	"github.com/bentpower/ercotsum-go/hours"
)

const rtPage = `<html><body>
<table>
<tr><th>Oper Day</th><th>Interval Ending</th><th>LZ_HOUSTON</th><th>LZ_NORTH</th></tr>
<tr><td>06/01/2025</td><td>1215</td><td>21.50</td><td>18.27</td></tr>
<tr><td>06/01/2025</td><td>1230</td><td>22.10</td><td>19.93</td></tr>
<tr><td>06/01/2025</td><td>2400</td><td>30.00</td><td>31.40</td></tr>
</table>
</body></html>`

const damPage = `<html><body>
<table>
<tr><th>Oper Day</th><th>Hour Ending</th><th>LZ_HOUSTON</th><th>LZ_NORTH</th></tr>
<tr><td>06/02/2025</td><td>1</td><td>19.00</td><td>17.50</td></tr>
<tr><td>06/02/2025</td><td>2</td><td>18.00</td><td>16.25</td></tr>
<tr><td>06/02/2025</td><td>24</td><td>25.00</td><td>24.80</td></tr>
</table>
</body></html>`

func useUTC(t *testing.T) {
	t.Helper()
	if err := hours.SetMarketTimezone("UTC"); err != nil {
		t.Fatalf("SetMarketTimezone: %v", err)
	}
	t.Cleanup(func() { hours.SetMarketTimezone("America/Chicago") })
}

func TestParseTable(t *testing.T) {
	b, err := ParseTable(strings.NewReader(rtPage))
	if err != nil {
		t.Fatalf("ParseTable() error: %v", err)
	}
	if len(b.ColNames) != 4 {
		t.Fatalf("got %d colnames, want 4: %v", len(b.ColNames), b.ColNames)
	}
	if b.ColNames[3] != "LZ_NORTH" {
		t.Errorf("colname[3] = %q, want LZ_NORTH", b.ColNames[3])
	}
	if len(b.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(b.Rows))
	}
	if b.Rows[0][1] != "1215" {
		t.Errorf("row[0][1] = %q, want 1215", b.Rows[0][1])
	}
}

func TestParsePricesRT(t *testing.T) {
	useUTC(t)

	page, samples, err := ParsePrices(strings.NewReader(rtPage), "LZ_NORTH")
	if err != nil {
		t.Fatalf("ParsePrices() error: %v", err)
	}
	if page != "RT" {
		t.Errorf("page = %q, want RT", page)
	}
	if len(samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(samples))
	}
	// $18.27/MWh is 1.827 cents/kWh.
	if got := samples[0].Spp; got < 1.8269 || got > 1.8271 {
		t.Errorf("sample[0].Spp = %v, want 1.827", got)
	}
	want := time.Date(2025, 6, 1, 12, 15, 0, 0, time.UTC)
	if !samples[0].At.Equal(want) {
		t.Errorf("sample[0].At = %v, want %v", samples[0].At, want)
	}
	// Interval 2400 rolls into the next day.
	want = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	if !samples[2].At.Equal(want) {
		t.Errorf("sample[2].At = %v, want %v", samples[2].At, want)
	}
}

func TestParsePricesDAM(t *testing.T) {
	useUTC(t)

	page, samples, err := ParsePrices(strings.NewReader(damPage), "LZ_NORTH")
	if err != nil {
		t.Fatalf("ParsePrices() error: %v", err)
	}
	if page != "DAM" {
		t.Errorf("page = %q, want DAM", page)
	}
	if len(samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(samples))
	}
	want := time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC)
	if !samples[0].At.Equal(want) {
		t.Errorf("sample[0].At = %v, want %v", samples[0].At, want)
	}
	// Hour ending 24 is the first hour of the next day.
	want = time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	if !samples[2].At.Equal(want) {
		t.Errorf("sample[2].At = %v, want %v", samples[2].At, want)
	}
}

func TestParsePricesBadZone(t *testing.T) {
	useUTC(t)

	if _, _, err := ParsePrices(strings.NewReader(rtPage), "LZ_WEST"); err == nil {
		t.Error("expected error for unknown zone")
	}
}

func TestParsePricesBadHeader(t *testing.T) {
	useUTC(t)

	page := strings.Replace(rtPage, "Oper Day", "Something Else", 1)
	if _, _, err := ParsePrices(strings.NewReader(page), "LZ_NORTH"); err == nil {
		t.Error("expected error for unexpected first column")
	}
}

func TestParsePricesRaggedRow(t *testing.T) {
	useUTC(t)

	page := strings.Replace(rtPage, "<td>19.93</td>", "", 1)
	if _, _, err := ParsePrices(strings.NewReader(page), "LZ_NORTH"); err == nil {
		t.Error("expected error for short row")
	}
}

func TestFormatLines(t *testing.T) {
	useUTC(t)

	_, samples, err := ParsePrices(strings.NewReader(rtPage), "LZ_NORTH")
	if err != nil {
		t.Fatalf("ParsePrices() error: %v", err)
	}
	lines := FormatLines(samples, 3.5448, 1, "")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	want := "2025-06-02T00:00:00+0000  3.14  6.68"
	if lines[0] != want {
		t.Errorf("line = %q, want %q", lines[0], want)
	}

	lines = FormatLines(samples, 0, 10, "LZ_NORTH")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "LZ_NORTH: ") {
		t.Errorf("line = %q, want zone prefix", lines[0])
	}
}

func TestFetchDateCutover(t *testing.T) {
	useUTC(t)

	dam := DefaultPages["DAM"]
	before := time.Date(2025, 6, 1, 13, 59, 0, 0, time.UTC)
	if got := dam.FetchDate(before); got.Day() != 1 {
		t.Errorf("FetchDate before cutover = %v, want same day", got)
	}
	after := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	if got := dam.FetchDate(after); got.Day() != 2 {
		t.Errorf("FetchDate at cutover = %v, want next day", got)
	}

	rt := DefaultPages["RT"]
	if got := rt.FetchDate(after); got.Day() != 1 {
		t.Errorf("RT FetchDate = %v, want same day", got)
	}
}

func TestURLFor(t *testing.T) {
	rt := DefaultPages["RT"]
	got := rt.URLFor("20250601")
	want := "http://www.ercot.com/content/cdr/html/20250601_real_time_spp"
	if got != want {
		t.Errorf("URLFor = %q, want %q", got, want)
	}
}
