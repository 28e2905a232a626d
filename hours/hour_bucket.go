package hours

import (
	"fmt"
	"time"
)

// StampLayout is the timestamp format used in every price file. DAM tables
// are keyed by the exact string, so the layout must never change shape.
const StampLayout = "2006-01-02T15:04:05-0700"

const dayDirLayout = "20060102"

var marketLoc *time.Location = time.UTC

func init() {
	loc, err := time.LoadLocation("America/Chicago")
	if err == nil {
		marketLoc = loc
	}
}

// SetMarketTimezone changes the timezone used for stamps and day
// directories. The grid operator publishes everything in its local time.
func SetMarketTimezone(timezone string) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %s: %v", timezone, err)
	}
	marketLoc = loc
	return nil
}

func MarketLocation() *time.Location {
	return marketLoc
}

// HourBucket is a timestamp truncated to the top of the hour in market
// local time. Its String form is the key format of DAM tables.
type HourBucket struct {
	t time.Time
}

func (hb HourBucket) String() string {
	return hb.t.Format(StampLayout)
}

func (hb HourBucket) Time() time.Time {
	return hb.t
}

func (hb HourBucket) Add(hours int) HourBucket {
	return HourBucket{t: hb.t.Add(time.Duration(hours) * time.Hour)}
}

func (hb HourBucket) Before(other HourBucket) bool {
	return hb.t.Before(other.t)
}

func (hb HourBucket) IsZero() bool {
	return hb.t.IsZero()
}

func FromTime(t time.Time) HourBucket {
	if t.IsZero() {
		return HourBucket{}
	}
	t = t.In(marketLoc)
	return HourBucket{t: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, marketLoc)}
}

func FromNow() HourBucket {
	return FromTime(time.Now())
}

// Stamp formats a full-resolution timestamp the way price file lines do.
func Stamp(t time.Time) string {
	return t.In(marketLoc).Format(StampLayout)
}

// FromStamp parses a price file timestamp.
func FromStamp(s string) (time.Time, error) {
	t, err := time.Parse(StampLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(marketLoc), nil
}

// DayDir is the name of the per-day history directory for t.
func DayDir(t time.Time) string {
	return t.In(marketLoc).Format(dayDirLayout)
}

var lenientLayouts = []string{
	time.RFC3339,
	StampLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// ParseLenient parses the freeform ISO timestamps found in demand logs.
// Layouts without an offset are taken as market local time.
func ParseLenient(s string) (time.Time, error) {
	for _, layout := range lenientLayouts {
		if t, err := time.ParseInLocation(layout, s, marketLoc); err == nil {
			return t.In(marketLoc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
