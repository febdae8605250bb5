package report

import (
	"testing"

	"flowbarber/internal/core"
)

func svc(name string, cents int64, method core.PaymentMethod, date core.Date) core.Service {
	return core.Service{
		ID:            core.NewID(),
		Name:          name,
		Price:         core.Money{Cents: cents},
		PaymentMethod: method,
		Date:          date,
	}
}

func TestSummarize(t *testing.T) {
	services := []core.Service{
		svc("Corte padrão", 3000, core.Cash, core.NewDate(2024, 6, 10)),
		svc("Corte + barba", 5000, core.Online, core.NewDate(2024, 6, 10)),
		svc("Sobrancelha", 1000, core.Cash, core.NewDate(2024, 6, 11)),
		svc("sem data", 9900, core.Cash, core.Date{}), // excluded
	}
	s := Summarize(services)
	if s.Count != 3 {
		t.Fatalf("expected count 3, got %d", s.Count)
	}
	if s.Total.Cents != 9000 || s.Cash.Cents != 4000 || s.Online.Cents != 5000 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.Total.Cents != s.Cash.Cents+s.Online.Cents {
		t.Fatalf("total must equal cash + online: %+v", s)
	}
}

func TestSummarizeSingleService(t *testing.T) {
	s := Summarize([]core.Service{
		svc("Corte padrão", 3000, core.Cash, core.NewDate(2024, 6, 10)),
	})
	if s.Total.Cents != 3000 || s.Cash.Cents != 3000 || s.Online.Cents != 0 || s.Count != 1 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestBucketByDay(t *testing.T) {
	start := core.NewDate(2024, 6, 10)
	end := core.NewDate(2024, 6, 14)
	services := []core.Service{
		svc("a", 3000, core.Cash, core.NewDate(2024, 6, 10)),
		svc("b", 2000, core.Online, core.NewDate(2024, 6, 10)),
		svc("c", 1000, core.Cash, core.NewDate(2024, 6, 13)),
		svc("fora", 500, core.Cash, core.NewDate(2024, 6, 20)), // outside range
	}

	buckets := BucketByDay(services, start, end)
	if len(buckets) != 5 {
		t.Fatalf("expected 5 buckets, got %d", len(buckets))
	}
	for i := 1; i < len(buckets); i++ {
		if !buckets[i-1].Date.Before(buckets[i].Date) {
			t.Fatalf("buckets out of order at %d", i)
		}
	}
	if buckets[0].Total.Cents != 5000 || buckets[0].Count != 2 {
		t.Fatalf("unexpected first bucket: %+v", buckets[0])
	}
	if buckets[1].Total.Cents != 0 || buckets[1].Count != 0 {
		t.Fatalf("expected zero-filled bucket: %+v", buckets[1])
	}
	if buckets[3].Total.Cents != 1000 {
		t.Fatalf("unexpected fourth bucket: %+v", buckets[3])
	}

	if got := BucketByDay(services, end, start); got != nil {
		t.Fatalf("inverted range should yield nil, got %d buckets", len(got))
	}
}

func TestBucketByMonth(t *testing.T) {
	services := []core.Service{
		svc("a", 3000, core.Cash, core.NewDate(2024, 6, 10)),
		svc("b", 2000, core.Cash, core.NewDate(2024, 6, 20)),
		svc("c", 1000, core.Cash, core.NewDate(2024, 8, 1)),
		svc("d", 4000, core.Cash, core.NewDate(2023, 12, 31)),
	}
	buckets := BucketByMonth(services)
	if len(buckets) != 3 {
		t.Fatalf("expected 3 months, got %d", len(buckets))
	}
	// Chronological, no zero fill for July.
	if buckets[0].Year != 2023 || buckets[0].Month != 12 {
		t.Fatalf("unexpected first month: %+v", buckets[0])
	}
	if buckets[1].Year != 2024 || buckets[1].Month != 6 || buckets[1].Total.Cents != 5000 || buckets[1].Count != 2 {
		t.Fatalf("unexpected june bucket: %+v", buckets[1])
	}
	if buckets[2].Month != 8 {
		t.Fatalf("unexpected last month: %+v", buckets[2])
	}
}

func TestFilterRange(t *testing.T) {
	services := []core.Service{
		svc("in", 100, core.Cash, core.NewDate(2024, 6, 10)),
		svc("edge", 100, core.Cash, core.NewDate(2024, 6, 12)),
		svc("out", 100, core.Cash, core.NewDate(2024, 6, 13)),
		svc("undated", 100, core.Cash, core.Date{}),
	}
	got := FilterRange(services, core.NewDate(2024, 6, 10), core.NewDate(2024, 6, 12))
	if len(got) != 2 {
		t.Fatalf("expected 2 services, got %d", len(got))
	}
}

func TestResolve(t *testing.T) {
	now := core.NewDate(2024, 6, 12) // a Wednesday

	cases := []struct {
		key        RangeKey
		start, end string
	}{
		{RangeWeek, "2024-06-10", "2024-06-16"}, // Monday through Sunday
		{RangeFortnight, "2024-05-29", "2024-06-12"},
		{RangeMonth, "2024-06-01", "2024-06-30"},
		{RangeSemester, "2024-01-01", "2024-06-30"},
		{RangeYear, "2024-01-01", "2024-12-31"},
	}
	for _, tc := range cases {
		start, end := Resolve(tc.key, now, nil)
		if start.String() != tc.start || end.String() != tc.end {
			t.Fatalf("%s: expected [%s, %s], got [%s, %s]", tc.key, tc.start, tc.end, start, end)
		}
	}
}

func TestResolveAllTime(t *testing.T) {
	now := core.NewDate(2024, 6, 12)

	start, end := Resolve(RangeAll, now, nil)
	if !start.SameDay(now) || !end.SameDay(now) {
		t.Fatalf("empty collection should resolve to now: [%s, %s]", start, end)
	}

	services := []core.Service{
		svc("a", 100, core.Cash, core.NewDate(2023, 2, 1)),
		svc("b", 100, core.Cash, core.NewDate(2024, 5, 30)),
		svc("undated", 100, core.Cash, core.Date{}),
	}
	start, end = Resolve(RangeAll, now, services)
	if start.String() != "2023-02-01" || end.String() != "2024-05-30" {
		t.Fatalf("unexpected all-time range: [%s, %s]", start, end)
	}
}

func TestRangeKeyValid(t *testing.T) {
	for _, k := range []RangeKey{RangeWeek, RangeFortnight, RangeMonth, RangeSemester, RangeYear, RangeAll} {
		if !k.Valid() {
			t.Fatalf("%s should be valid", k)
		}
	}
	if RangeKey("quinzena").Valid() {
		t.Fatalf("unknown key should be invalid")
	}
}
