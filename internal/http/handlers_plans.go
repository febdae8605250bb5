package http

import (
	"context"
	"net/http"

	"flowbarber/internal/core"
)

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		NewResponse().Data(s.plans.Plans()).Write(w)
	case http.MethodPost:
		s.handleAddPlan(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleAddPlan(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Formato de requisição inválido").Write(w)
		return
	}
	plan, err := parsePlanPayload(p)
	if err != nil {
		UnprocessableEntityError("Dados inválidos: " + err.Error()).Write(w)
		return
	}
	payment := parsePaymentDetails(p)

	var added core.ClientPlan
	events := captureEvents(r.Context(), func(ctx context.Context) {
		added = s.plans.Add(ctx, plan, payment)
	})
	s.invalidateReports()
	respondMutation(w, added, events)
}

func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
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
	plan, err := parsePlanPayload(p)
	if err != nil {
		UnprocessableEntityError("Dados inválidos: " + err.Error()).Write(w)
		return
	}

	events := captureEvents(r.Context(), func(ctx context.Context) {
		s.plans.Update(ctx, id, plan)
	})
	respondMutation(w, s.plans.Plans(), events)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
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
		s.plans.Delete(ctx, id)
	})
	respondMutation(w, s.plans.Plans(), events)
}

func (s *Server) handleConsumeCredit(w http.ResponseWriter, r *http.Request) {
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

	events := captureEvents(r.Context(), func(ctx context.Context) {
		s.plans.ConsumeCredit(ctx, id)
	})
	respondMutation(w, s.plans.Plans(), events)
}

func (s *Server) handleRenewPlan(w http.ResponseWriter, r *http.Request) {
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
	payment := parsePaymentDetails(p)

	events := captureEvents(r.Context(), func(ctx context.Context) {
		s.plans.ResetCredits(ctx, id, payment)
	})
	s.invalidateReports()
	respondMutation(w, s.plans.Plans(), events)
}
