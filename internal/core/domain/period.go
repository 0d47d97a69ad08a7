package domain

import (
	"fmt"
	"strings"
	"time"
)

// PeriodSelector names a reporting window relative to the current instant.
type PeriodSelector string

const (
	PeriodToday     PeriodSelector = "today"
	PeriodThisWeek  PeriodSelector = "this_week"
	PeriodLastWeek  PeriodSelector = "last_week"
	PeriodThisMonth PeriodSelector = "this_month"
	PeriodLastMonth PeriodSelector = "last_month"
	PeriodAll       PeriodSelector = "all"
)

// DateLayout is the layout accepted for explicit report dates.
const DateLayout = "2006-01-02"

// DateRange is the half-open window [Start, End). A zero bound is unbounded.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && !t.Before(r.End) {
		return false
	}
	return true
}

// IsUnbounded reports whether neither bound is set.
func (r DateRange) IsUnbounded() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// ResolvePeriod turns a selector into a concrete range evaluated at now in loc.
// Weeks begin on weekStart; months are calendar months.
func ResolvePeriod(sel PeriodSelector, now time.Time, loc *time.Location, weekStart time.Weekday) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	switch sel {
	case PeriodToday:
		return DateRange{Start: today, End: today.AddDate(0, 0, 1)}, nil
	case PeriodThisWeek:
		start := weekStartOf(today, weekStart)
		return DateRange{Start: start, End: start.AddDate(0, 0, 7)}, nil
	case PeriodLastWeek:
		start := weekStartOf(today, weekStart)
		return DateRange{Start: start.AddDate(0, 0, -7), End: start}, nil
	case PeriodThisMonth:
		start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
		return DateRange{Start: start, End: start.AddDate(0, 1, 0)}, nil
	case PeriodLastMonth:
		end := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
		return DateRange{Start: end.AddDate(0, -1, 0), End: end}, nil
	case PeriodAll, "":
		return DateRange{}, nil
	default:
		return DateRange{}, fmt.Errorf("unknown period %q", sel)
	}
}

func weekStartOf(day time.Time, weekStart time.Weekday) time.Time {
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// InclusiveDateRange builds the range covering every instant of the calendar
// days start through end in loc.
func InclusiveDateRange(start, end string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	s, err := time.ParseInLocation(DateLayout, start, loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date %q, expected YYYY-MM-DD", start)
	}
	e, err := time.ParseInLocation(DateLayout, end, loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date %q, expected YYYY-MM-DD", end)
	}
	if e.Before(s) {
		return DateRange{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return DateRange{Start: s, End: e.AddDate(0, 0, 1)}, nil
}

// ParseWeekday accepts an English weekday name, case-insensitive.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == name {
			return d, nil
		}
	}
	return time.Monday, fmt.Errorf("unknown weekday %q", s)
}
