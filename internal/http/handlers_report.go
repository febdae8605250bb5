package http

import (
	"net/http"

	"flowbarber/internal/core"
	"flowbarber/internal/report"
)

// parseRangeKey reads the range query parameter, defaulting to the week.
func parseRangeKey(r *http.Request) (report.RangeKey, bool) {
	key := report.RangeKey(r.URL.Query().Get("range"))
	if key == "" {
		key = report.RangeWeek
	}
	return key, key.Valid()
}

// rangeSummary is what the summary cache holds, so hits and misses answer
// with the same envelope.
type rangeSummary struct {
	Summary report.Summary
	Start   core.Date
	End     core.Date
}

func (s *Server) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	key, ok := parseRangeKey(r)
	if !ok {
		BadRequestError("Período inválido").Write(w)
		return
	}

	cacheKey := "summary:" + string(key)
	entry, hit := s.summaryCache.Get(cacheKey)
	if !hit {
		all := s.services.All()
		start, end := report.Resolve(key, core.Today(), all)
		entry = rangeSummary{
			Summary: report.Summarize(report.FilterRange(all, start, end)),
			Start:   start,
			End:     end,
		}
		s.summaryCache.Set(cacheKey, entry)
	}

	NewResponse().
		Data(entry.Summary).
		Field("range", key).
		Field("start", entry.Start).
		Field("end", entry.End).
		Write(w)
}

func (s *Server) handleReportSeries(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	key, ok := parseRangeKey(r)
	if !ok {
		BadRequestError("Período inválido").Write(w)
		return
	}

	// Short ranges chart per day, long ones per month.
	switch key {
	case report.RangeWeek, report.RangeFortnight, report.RangeMonth:
		cacheKey := "days:" + string(key)
		days, hit := s.dayCache.Get(cacheKey)
		if !hit {
			all := s.services.All()
			start, end := report.Resolve(key, core.Today(), all)
			days = report.BucketByDay(all, start, end)
			s.dayCache.Set(cacheKey, days)
		}
		NewResponse().Field("range", key).Field("days", days).Write(w)
	default:
		cacheKey := "months:" + string(key)
		months, hit := s.monthCache.Get(cacheKey)
		if !hit {
			all := s.services.All()
			start, end := report.Resolve(key, core.Today(), all)
			months = report.BucketByMonth(report.FilterRange(all, start, end))
			s.monthCache.Set(cacheKey, months)
		}
		NewResponse().Field("range", key).Field("months", months).Write(w)
	}
}

// handleReportDaily returns the shareable plain-text daily summary.
func (s *Server) handleReportDaily(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	text := report.FormatDaily(core.Today(), s.services.Today())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

// handleReportTable returns every service in the importable table format.
func (s *Server) handleReportTable(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	text := report.FormatTable(s.services.All())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}
