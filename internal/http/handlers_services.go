package http

import (
	"context"
	"encoding/json"
	"net/http"

	"flowbarber/internal/core"
	"flowbarber/internal/notify"
	"flowbarber/internal/report"
)

// decodeCatalog accepts either a bare JSON array of templates or an object
// wrapping one under "catalog".
func decodeCatalog(body []byte, list *[]core.PredefinedService) error {
	if err := json.Unmarshal(body, list); err == nil {
		return nil
	}
	var wrapped struct {
		Catalog []core.PredefinedService `json:"catalog"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return err
	}
	*list = wrapped.Catalog
	return nil
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListServices(w, r)
	case http.MethodPost:
		s.handleAddService(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

// handleListServices lists services, optionally filtered by a report range.
// An empty range returns everything; "today" returns the current day only.
func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	rangeParam := r.URL.Query().Get("range")

	var list []core.Service
	switch rangeParam {
	case "", "all":
		list = s.services.All()
	case "today":
		list = s.services.Today()
	default:
		key := report.RangeKey(rangeParam)
		if !key.Valid() {
			BadRequestError("Período inválido").Write(w)
			return
		}
		all := s.services.All()
		start, end := report.Resolve(key, core.Today(), all)
		list = report.FilterRange(all, start, end)
	}

	NewResponse().
		Data(list).
		Field("summary", report.Summarize(list)).
		Write(w)
}

func (s *Server) handleAddService(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}
	svc, err := parseServicePayload(p)
	if err != nil {
		UnprocessableEntityError("Dados inválidos: " + err.Error()).Write(w)
		return
	}

	var added core.Service
	events := captureEvents(r.Context(), func(ctx context.Context) {
		added = s.services.Add(ctx, svc)
	})
	s.invalidateReports()
	respondMutation(w, added, events)
}

func (s *Server) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}
	id := p.Get("id")
	if id == "" {
		BadRequestError("Identificador ausente").Write(w)
		return
	}
	svc, err := parseServicePayload(p)
	if err != nil {
		UnprocessableEntityError("Dados inválidos: " + err.Error()).Write(w)
		return
	}

	events := captureEvents(r.Context(), func(ctx context.Context) {
		s.services.Update(ctx, id, svc)
	})
	s.invalidateReports()
	respondMutation(w, s.services.All(), events)
}

func (s *Server) handleDeleteService(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost, http.MethodDelete); resp != nil {
		resp.Write(w)
		return
	}
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}
	id := p.Get("id")
	if id == "" {
		BadRequestError("Identificador ausente").Write(w)
		return
	}

	events := captureEvents(r.Context(), func(ctx context.Context) {
		s.services.Delete(ctx, id)
	})
	s.invalidateReports()
	respondMutation(w, s.services.All(), events)
}

func (s *Server) handleClearToday(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	removed := 0
	events := captureEvents(r.Context(), func(ctx context.Context) {
		removed = s.services.ClearToday(ctx)
	})
	s.invalidateReports()

	b := NewResponse().Data(s.services.All()).Field("removed", removed)
	if len(events) > 0 {
		last := events[len(events)-1]
		b.Notification(last)
		if last.Kind == notify.SaveFailed {
			b.Status(http.StatusInternalServerError)
		}
	}
	b.Write(w)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		NewResponse().Data(s.services.Catalog()).Write(w)
	case http.MethodPost:
		s.handleSaveCatalog(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleSaveCatalog(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)

	var list []core.PredefinedService
	if err := decodeCatalog(p.GetRaw(), &list); err != nil {
		UnprocessableEntityError("Dados inválidos: " + err.Error()).Write(w)
		return
	}

	events := captureEvents(r.Context(), func(ctx context.Context) {
		s.services.SaveCatalog(ctx, list)
	})
	respondMutation(w, s.services.Catalog(), events)
}
