// Package report provides pure aggregation over service lists: revenue
// summaries, calendar bucketing for charts, named date ranges, and the
// plaintext daily report together with its best-effort import parser.
package report

import (
	"sort"

	"flowbarber/internal/core"
)

// Summary is the linear reduction of a service list by payment method.
// Total always equals Cash + Online.
type Summary struct {
	Total  core.Money `json:"total"`
	Cash   core.Money `json:"cash"`
	Online core.Money `json:"online"`
	Count  int        `json:"count"`
}

// DayBucket holds one calendar day of a chart series.
type DayBucket struct {
	Date  core.Date  `json:"date"`
	Total core.Money `json:"total"`
	Count int        `json:"count"`
}

// MonthBucket holds one calendar month of a chart series.
type MonthBucket struct {
	Year  int        `json:"year"`
	Month int        `json:"month"`
	Total core.Money `json:"total"`
	Count int        `json:"count"`
}

// Summarize reduces a service list into totals by payment method.
// Services whose date is unset are excluded, never an error.
func Summarize(services []core.Service) Summary {
	var s Summary
	for _, svc := range services {
		if svc.Date.IsZero() {
			continue
		}
		s.Total.Cents += svc.Price.Cents
		if svc.PaymentMethod == core.Cash {
			s.Cash.Cents += svc.Price.Cents
		} else {
			s.Online.Cents += svc.Price.Cents
		}
		s.Count++
	}
	return s
}

// FilterRange returns the services dated within [start, end] inclusive.
// Services with an unset date are dropped.
func FilterRange(services []core.Service, start, end core.Date) []core.Service {
	out := make([]core.Service, 0, len(services))
	for _, svc := range services {
		if svc.Date.IsZero() {
			continue
		}
		if svc.Date.Before(start) || svc.Date.After(end) {
			continue
		}
		out = append(out, svc)
	}
	return out
}

// BucketByDay produces one entry per calendar day in [start, end] inclusive,
// zero-filled for days without services, in chronological order.
func BucketByDay(services []core.Service, start, end core.Date) []DayBucket {
	if end.Before(start) {
		return nil
	}
	index := make(map[string]int)
	var buckets []DayBucket
	for d := start; !d.After(end); d = d.AddDays(1) {
		index[d.String()] = len(buckets)
		buckets = append(buckets, DayBucket{Date: d})
	}
	for _, svc := range services {
		if svc.Date.IsZero() {
			continue
		}
		i, ok := index[svc.Date.String()]
		if !ok {
			continue
		}
		buckets[i].Total.Cents += svc.Price.Cents
		buckets[i].Count++
	}
	return buckets
}

// BucketByMonth groups services by calendar month, one entry per month
// present in the data, in chronological order. Months without services do
// not appear.
func BucketByMonth(services []core.Service) []MonthBucket {
	type ym struct{ year, month int }
	totals := make(map[ym]*MonthBucket)
	for _, svc := range services {
		if svc.Date.IsZero() {
			continue
		}
		key := ym{svc.Date.Year(), int(svc.Date.Month())}
		b, ok := totals[key]
		if !ok {
			b = &MonthBucket{Year: key.year, Month: key.month}
			totals[key] = b
		}
		b.Total.Cents += svc.Price.Cents
		b.Count++
	}
	out := make([]MonthBucket, 0, len(totals))
	for _, b := range totals {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}
