package analytics

import "time"

// RangeKind is a symbolic date range selector.
type RangeKind string

const (
	RangeToday     RangeKind = "today"
	RangeLastWeek  RangeKind = "last_week"
	RangeLastMonth RangeKind = "last_month"
	RangeCustom    RangeKind = "custom"
)

// DateRange is a resolved pair of concrete instants.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ResolveRange maps a symbolic range to concrete bounds. It is pure
// given now, which callers (and tests) inject.
//
// Custom bounds parse as RFC 3339 or plain dates; the from bound keeps
// its literal time, the to bound is forced to the end of its day. A
// missing or unparseable custom bound falls back to the last_week rule.
func ResolveRange(kind RangeKind, customFrom, customTo string, now time.Time) DateRange {
	switch kind {
	case RangeToday:
		return DateRange{From: startOfDay(now), To: endOfDay(now)}
	case RangeLastMonth:
		return DateRange{From: startOfDay(now.AddDate(0, 0, -29)), To: now}
	case RangeCustom:
		from, okFrom := parseBound(customFrom, now.Location())
		to, okTo := parseBound(customTo, now.Location())
		if !okFrom || !okTo {
			return lastWeek(now)
		}
		return DateRange{From: from, To: endOfDay(to)}
	default:
		return lastWeek(now)
	}
}

func lastWeek(now time.Time) DateRange {
	return DateRange{From: startOfDay(now.AddDate(0, 0, -6)), To: now}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func parseBound(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}
