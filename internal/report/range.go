package report

import (
	"time"

	"flowbarber/internal/core"
)

const (
	RangeWeek      RangeKey = "week"
	RangeFortnight RangeKey = "fortnight"
	RangeMonth     RangeKey = "month"
	RangeSemester  RangeKey = "semester"
	RangeYear      RangeKey = "year"
	RangeAll       RangeKey = "all"
)

// RangeKey names a chart period relative to "now".
type RangeKey string

func (k RangeKey) Valid() bool {
	switch k {
	case RangeWeek, RangeFortnight, RangeMonth, RangeSemester, RangeYear, RangeAll:
		return true
	default:
		return false
	}
}

// Resolve computes the concrete [start, end] boundaries for a range key.
// Weeks start on Monday. RangeAll spans the earliest through latest dated
// service, or [now, now] when the list has no dated services.
func Resolve(key RangeKey, now core.Date, services []core.Service) (start, end core.Date) {
	switch key {
	case RangeFortnight:
		return now.AddDays(-14), now
	case RangeMonth:
		return startOfMonth(now), endOfMonth(now)
	case RangeSemester:
		return startOfMonth(core.Date{Time: now.AddDate(0, -5, 0)}), endOfMonth(now)
	case RangeYear:
		return core.NewDate(now.Year(), 1, 1), core.NewDate(now.Year(), 12, 31)
	case RangeAll:
		return allTime(now, services)
	default: // RangeWeek
		start = now.AddDays(-mondayOffset(now))
		return start, start.AddDays(6)
	}
}

func mondayOffset(d core.Date) int {
	return (int(d.Weekday()) + 6) % 7
}

func startOfMonth(d core.Date) core.Date {
	return core.NewDate(d.Year(), int(d.Month()), 1)
}

func endOfMonth(d core.Date) core.Date {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	return core.Date{Time: first.AddDate(0, 1, -1)}
}

func allTime(now core.Date, services []core.Service) (start, end core.Date) {
	start, end = now, now
	seen := false
	for _, svc := range services {
		if svc.Date.IsZero() {
			continue
		}
		if !seen {
			start, end = svc.Date, svc.Date
			seen = true
			continue
		}
		if svc.Date.Before(start) {
			start = svc.Date
		}
		if svc.Date.After(end) {
			end = svc.Date
		}
	}
	return start, end
}
