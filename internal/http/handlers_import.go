package http

import (
	"context"
	"net/http"

	"flowbarber/internal/notify"
	"flowbarber/internal/report"
)

// handleImport parses a pasted report sheet and bulk-adds the services it
// recognizes. The body is either the raw text, a form with a text field, or
// a JSON object {"text": ...}.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	p := NewRequestBodyParser(r)
	text := string(p.GetRaw())
	if err := p.Parse(); err == nil {
		if v := p.Get("text"); v != "" {
			text = v
		}
	}

	parsed := report.Parse(text)
	if len(parsed) == 0 {
		UnprocessableEntityError("Nenhum serviço válido encontrado no texto. Verifique o formato.").Write(w)
		return
	}

	count := 0
	events := captureEvents(r.Context(), func(ctx context.Context) {
		count = s.services.BulkAdd(ctx, parsed)
	})
	s.invalidateReports()

	b := NewResponse().Data(s.services.All()).Field("imported", count)
	if len(events) > 0 {
		last := events[len(events)-1]
		b.Notification(last)
		if last.Kind == notify.SaveFailed {
			b.Status(http.StatusInternalServerError)
		}
	}
	b.Write(w)
}
