package derive

import (
	"errors"
	"fmt"
	"time"
)

// Range is an inclusive time window in local time.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Today spans local midnight to 23:59:59 of now's day.
func Today(now time.Time) Range {
	start := dayStart(now)
	return Range{Start: start, End: dayEnd(now)}
}

// Week spans Monday 00:00:00 to Sunday 23:59:59 of now's week. Sunday
// counts as day 7, so a Sunday backs up six days to the preceding Monday.
func Week(now time.Time) Range {
	day := int(now.Weekday())
	if day == 0 {
		day = 7
	}
	start := dayStart(now).AddDate(0, 0, -(day - 1))
	return Range{Start: start, End: dayEnd(start.AddDate(0, 0, 6))}
}

// Month spans the first to the last day of now's month.
func Month(now time.Time) Range {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return Range{Start: start, End: dayEnd(start.AddDate(0, 1, -1))}
}

// Year spans January 1st to December 31st of now's year.
func Year(now time.Time) Range {
	start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	return Range{Start: start, End: dayEnd(start.AddDate(1, 0, -1))}
}

// Custom spans from's local midnight to to's 23:59:59, bounds inclusive.
func Custom(from, to time.Time) Range {
	return Range{Start: dayStart(from), End: dayEnd(to)}
}

// HistoryWindow resolves a history query's time window. period is one of
// "today", "week", "month" or "year"; otherwise a from/to pair in
// "2006-01-02" form selects a custom inclusive window. Empty inputs leave
// the window open (ok is false).
func HistoryWindow(period, from, to string, now time.Time) (start, end time.Time, ok bool, err error) {
	switch period {
	case "":
	case "today":
		r := Today(now)
		return r.Start, r.End, true, nil
	case "week":
		r := Week(now)
		return r.Start, r.End, true, nil
	case "month":
		r := Month(now)
		return r.Start, r.End, true, nil
	case "year":
		r := Year(now)
		return r.Start, r.End, true, nil
	default:
		return time.Time{}, time.Time{}, false, fmt.Errorf("unknown period %q", period)
	}
	if from == "" && to == "" {
		return time.Time{}, time.Time{}, false, nil
	}
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, false, errors.New("custom window needs both from and to")
	}
	fromT, err := time.ParseInLocation("2006-01-02", from, now.Location())
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("bad from date %q", from)
	}
	toT, err := time.ParseInLocation("2006-01-02", to, now.Location())
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("bad to date %q", to)
	}
	r := Custom(fromT, toT)
	return r.Start, r.End, true, nil
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
