package journal

import (
	"strings"
	"time"
)

// Range is an inclusive time window.
type Range struct {
	Name  string
	Start time.Time
	End   time.Time
}

var rangeDays = map[string]int{
	"week":    7,
	"month":   30,
	"quarter": 90,
	"year":    365,
}

// ResolveRange maps an insights range name to a window ending at now.
// Unknown or empty names fall back to month.
func ResolveRange(name string, now time.Time) Range {
	key := strings.ToLower(strings.TrimSpace(name))
	days, ok := rangeDays[key]
	if !ok {
		key, days = "month", rangeDays["month"]
	}
	return Range{
		Name:  key,
		Start: now.AddDate(0, 0, -days),
		End:   now,
	}
}

// MonthRange parses "YYYY-MM" into the window from the first day at 00:00:00
// through the last nanosecond of the month's final day in loc.
func MonthRange(month string, loc *time.Location) (Range, error) {
	if loc == nil {
		loc = time.UTC
	}
	first, err := time.ParseInLocation("2006-01", strings.TrimSpace(month), loc)
	if err != nil {
		return Range{}, err
	}
	return Range{
		Name:  first.Format("2006-01"),
		Start: first,
		End:   first.AddDate(0, 1, 0).Add(-time.Nanosecond),
	}, nil
}
