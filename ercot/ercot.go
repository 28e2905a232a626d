package ercot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bentpower/ercotsum-go/convert"
	"github.com/bentpower/ercotsum-go/hours"
	"github.com/bentpower/ercotsum-go/store"
	"github.com/bentpower/ercotsum-go/types"
)

const (
	// DefaultZone is the load zone for North Central Texas.
	DefaultZone = "LZ_NORTH"

	col0Name = "Oper Day"
)

// col1Names identifies the page type from the second header column.
var col1Names = map[string]string{
	"Interval Ending": "RT",
	"Hour Ending":     "DAM",
}

// PageType describes one supported upstream page.
type PageType struct {
	Name        string
	URLTemplate string // contains {yyyymmdd}
	Last        int    // how many trailing records to record
	CutoverHour int    // DAM only: fetch tomorrow's date at/after this local hour
	OutFile     string
}

// DefaultPages covers the real-time page, updated every 15 minutes, and
// the day-ahead page, published once per day around 12:30pm with a
// recommended access time of 2pm.
var DefaultPages = map[string]PageType{
	"RT": {
		Name:        "RT",
		URLTemplate: "http://www.ercot.com/content/cdr/html/{yyyymmdd}_real_time_spp",
		Last:        1,
		OutFile:     store.RTFile,
	},
	"DAM": {
		Name:        "DAM",
		URLTemplate: "http://www.ercot.com/content/cdr/html/{yyyymmdd}_dam_spp",
		Last:        24,
		CutoverHour: 14,
		OutFile:     store.DamFile,
	},
}

func (pt PageType) URLFor(yyyymmdd string) string {
	return strings.ReplaceAll(pt.URLTemplate, "{yyyymmdd}", yyyymmdd)
}

// FetchDate picks which calendar day to request. The day-ahead data spans
// two days, so after the cutover hour the page is filed under tomorrow.
func (pt PageType) FetchDate(now time.Time) time.Time {
	now = now.In(hours.MarketLocation())
	if pt.CutoverHour > 0 && now.Hour() >= pt.CutoverHour {
		return now.AddDate(0, 0, 1)
	}
	return now
}

type Client struct {
	http   *http.Client
	logger *slog.Logger
}

func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	c.logger.Debug("fetching price page", slog.String("url", url))

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}
	return string(data), nil
}

// ParsePrices extracts the price series for one zone from a fetched page.
// It returns the detected page name ("RT" or "DAM") along with samples in
// document order, prices converted from dollars per MWh to cents per kWh.
func ParsePrices(r io.Reader, zone string) (string, []types.PriceSample, error) {
	b, err := ParseTable(r)
	if err != nil {
		return "", nil, fmt.Errorf("parsing price table: %w", err)
	}

	if len(b.ColNames) < 3 {
		return "", nil, fmt.Errorf("bad colname list: %v", b.ColNames)
	}
	if b.ColNames[0] != col0Name {
		return "", nil, fmt.Errorf("expecting %q as first colname, got %q", col0Name, b.ColNames[0])
	}
	pageName, ok := col1Names[b.ColNames[1]]
	if !ok {
		return "", nil, fmt.Errorf("expecting a known second colname, got %q", b.ColNames[1])
	}

	zoneCol := -1
	for i := 2; i < len(b.ColNames); i++ {
		if b.ColNames[i] == zone {
			zoneCol = i
			break
		}
	}
	if zoneCol < 0 {
		return "", nil, fmt.Errorf("selected zone %q is not in results", zone)
	}

	loc := hours.MarketLocation()
	width := len(b.ColNames)
	samples := make([]types.PriceSample, 0, len(b.Rows))

	for rownum, row := range b.Rows {
		if len(row) != width {
			return "", nil, fmt.Errorf("row %d has %d columns, %d expected", rownum+1, len(row), width)
		}

		var at time.Time
		switch pageName {
		case "RT":
			at, err = parseInterval(row[0], row[1], loc)
		case "DAM":
			at, err = parseHourEnding(row[0], row[1], loc)
		}
		if err != nil {
			return "", nil, fmt.Errorf("row %d: %w", rownum+1, err)
		}

		dollars, err := strconv.ParseFloat(row[zoneCol], 64)
		if err != nil {
			return "", nil, fmt.Errorf("row %d: bad price %q: %v", rownum+1, row[zoneCol], err)
		}

		samples = append(samples, types.PriceSample{
			At:  at,
			Spp: convert.CentsPerKWh(dollars),
		})
	}

	return pageName, samples, nil
}

// parseInterval handles the real-time "Interval Ending" form, HHMM.
// Interval 24xx belongs to the first hour of the next day.
func parseInterval(day, interval string, loc *time.Location) (time.Time, error) {
	if len(interval) != 4 {
		return time.Time{}, fmt.Errorf("bad interval %q", interval)
	}
	addDay := false
	if interval[:2] == "24" {
		interval = "00" + interval[2:]
		addDay = true
	}
	t, err := time.ParseInLocation("01/02/2006 1504", day+" "+interval, loc)
	if err != nil {
		return time.Time{}, err
	}
	if addDay {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

// parseHourEnding handles the day-ahead "Hour Ending" form, 1..24, where
// hour 24 is the first hour of the next day.
func parseHourEnding(day, hourEnding string, loc *time.Location) (time.Time, error) {
	hour, err := strconv.Atoi(strings.TrimSpace(hourEnding))
	if err != nil {
		return time.Time{}, fmt.Errorf("bad hour ending %q: %v", hourEnding, err)
	}
	addDay := false
	if hour == 24 {
		hour = 0
		addDay = true
	}
	t, err := time.ParseInLocation("01/02/2006 15", fmt.Sprintf("%s %02d", day, hour), loc)
	if err != nil {
		return time.Time{}, err
	}
	if addDay {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

// FormatLines renders the last n samples as price file records:
// timestamp, raw price, raw plus delivery charge. The third column is a
// convenience for eyeballing files; readers recompute delivered prices.
func FormatLines(samples []types.PriceSample, deliveryCharge float64, n int, zoneName string) []string {
	if n > len(samples) {
		n = len(samples)
	}
	lines := make([]string, 0, n)
	for _, s := range samples[len(samples)-n:] {
		line := fmt.Sprintf("%s  %.2f  %.2f", hours.Stamp(s.At), s.Spp, s.Spp+deliveryCharge)
		if zoneName != "" {
			line = zoneName + ": " + line
		}
		lines = append(lines, line)
	}
	return lines
}
