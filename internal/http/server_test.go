package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"flowbarber/internal/notify"
	"flowbarber/internal/services"
	"flowbarber/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.MemoryStore) {
	t.Helper()
	mem := storage.NewMemoryStore()
	notifier := notify.Fanout{}
	svc := services.NewServiceStore(mem, notifier, nil)
	svc.Load(context.Background())
	plans := services.NewPlanStore(mem, notifier, svc, nil)
	plans.Load(context.Background())

	srv := NewServer(":0", Options{
		RateLimitPerMinute: 1000,
		CacheSize:          10,
		CacheTTL:           time.Minute,
	}, svc, plans)
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	return srv, mem
}

func do(t *testing.T, srv *Server, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON response: %v\n%s", err, rr.Body.String())
	}
	return payload
}

func notificationTitle(payload map[string]any) string {
	n, _ := payload["notification"].(map[string]any)
	title, _ := n["title"].(string)
	return title
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestAddServiceFormAndList(t *testing.T) {
	srv, _ := newTestServer(t)

	form := url.Values{}
	form.Set("name", "Corte padrão")
	form.Set("price", "30,00")
	form.Set("paymentMethod", "dinheiro")
	rr := do(t, srv, http.MethodPost, "/services", "application/x-www-form-urlencoded", form.Encode())
	if rr.Code != http.StatusOK {
		t.Fatalf("add status=%d body=%s", rr.Code, rr.Body.String())
	}
	payload := decodeBody(t, rr)
	if got := notificationTitle(payload); got != "Serviço adicionado" {
		t.Fatalf("notification title = %q", got)
	}

	rr = do(t, srv, http.MethodGet, "/services", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d", rr.Code)
	}
	list := decodeBody(t, rr)["data"].([]any)
	if len(list) != 1 {
		t.Fatalf("expected 1 service, got %d", len(list))
	}
	item := list[0].(map[string]any)
	if item["name"] != "Corte padrão" || item["price"].(float64) != 30 {
		t.Fatalf("unexpected service: %+v", item)
	}
}

func TestListServicesRangeAndSummary(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodPost, "/services", "application/json", `{"name":"Corte","price":"30,00"}`)
	do(t, srv, http.MethodPost, "/services", "application/json",
		`{"name":"Barba","price":"20,00","paymentMethod":"pagamento online","date":"2020-01-15"}`)

	rr := do(t, srv, http.MethodGet, "/services?range=today", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d", rr.Code)
	}
	payload := decodeBody(t, rr)
	if list := payload["data"].([]any); len(list) != 1 {
		t.Fatalf("expected 1 service today, got %d", len(list))
	}
	summary := payload["summary"].(map[string]any)
	if summary["total"].(float64) != 30 || summary["count"].(float64) != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	rr = do(t, srv, http.MethodGet, "/services", "", "")
	if list := decodeBody(t, rr)["data"].([]any); len(list) != 2 {
		t.Fatalf("expected 2 services overall, got %d", len(list))
	}

	rr = do(t, srv, http.MethodGet, "/services?range=bogus", "", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rr.Code)
	}
}

func TestAddServiceJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/services", "application/json",
		`{"name":"Corte + barba","price":"50,00","paymentMethod":"pagamento online","date":"2024-06-10"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("add status=%d body=%s", rr.Code, rr.Body.String())
	}
	data := decodeBody(t, rr)["data"].(map[string]any)
	if data["id"] == "" || data["date"] != "2024-06-10" {
		t.Fatalf("unexpected data: %+v", data)
	}
}

func TestAddServiceInvalidPrice(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/services", "application/json",
		`{"name":"Corte","price":"abc"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d, want 422", rr.Code)
	}
}

func TestUpdateAndDeleteService(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/services", "application/json",
		`{"name":"Corte","price":"30,00"}`)
	id := decodeBody(t, rr)["data"].(map[string]any)["id"].(string)

	rr = do(t, srv, http.MethodPost, "/services/update", "application/json",
		`{"id":"`+id+`","name":"Corte navalhado","price":"35,00"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d", rr.Code)
	}
	if got := notificationTitle(decodeBody(t, rr)); got != "Serviço atualizado" {
		t.Fatalf("notification title = %q", got)
	}

	rr = do(t, srv, http.MethodPost, "/services/delete", "application/json", `{"id":"`+id+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status=%d", rr.Code)
	}
	rr = do(t, srv, http.MethodGet, "/services", "", "")
	if list, _ := decodeBody(t, rr)["data"].([]any); len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
}

func TestClearToday(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodPost, "/services", "application/json", `{"name":"Corte","price":"30,00"}`)
	rr := do(t, srv, http.MethodPost, "/services/clear-today", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("clear status=%d", rr.Code)
	}
	payload := decodeBody(t, rr)
	if payload["removed"].(float64) != 1 {
		t.Fatalf("removed = %v, want 1", payload["removed"])
	}
	if got := notificationTitle(payload); got != "Lista limpa" {
		t.Fatalf("notification title = %q", got)
	}
}

func TestCatalogRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/catalog", "", "")
	defaults := decodeBody(t, rr)["data"].([]any)
	if len(defaults) == 0 {
		t.Fatal("expected default catalog")
	}

	rr = do(t, srv, http.MethodPost, "/catalog", "application/json",
		`[{"name":"Corte","price":30},{"name":"","price":10}]`)
	if rr.Code != http.StatusOK {
		t.Fatalf("save catalog status=%d body=%s", rr.Code, rr.Body.String())
	}
	saved := decodeBody(t, rr)["data"].([]any)
	if len(saved) != 1 {
		t.Fatalf("expected invalid template filtered out, got %d", len(saved))
	}
}

func TestPlanLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/plans", "application/json",
		`{"name":"João","price":"100,00","totalCuts":"2","addToRevenue":"true","paymentMethod":"dinheiro"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("add plan status=%d body=%s", rr.Code, rr.Body.String())
	}
	payload := decodeBody(t, rr)
	if got := notificationTitle(payload); got != "Plano adicionado" {
		t.Fatalf("notification title = %q", got)
	}
	id := payload["data"].(map[string]any)["id"].(string)

	// The purchase was also recorded as revenue
	rr = do(t, srv, http.MethodGet, "/services", "", "")
	list := decodeBody(t, rr)["data"].([]any)
	if len(list) != 1 || list[0].(map[string]any)["name"] != "Plano - João" {
		t.Fatalf("expected companion revenue entry, got %+v", list)
	}

	for i := 0; i < 2; i++ {
		rr = do(t, srv, http.MethodPost, "/plans/consume", "application/json", `{"id":"`+id+`"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("consume status=%d", rr.Code)
		}
	}

	// Third consume hits the zero-credit guard
	rr = do(t, srv, http.MethodPost, "/plans/consume", "application/json", `{"id":"`+id+`"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("consume at zero status=%d, want 409", rr.Code)
	}
	if got := notificationTitle(decodeBody(t, rr)); got != "Atenção!" {
		t.Fatalf("notification title = %q", got)
	}

	rr = do(t, srv, http.MethodPost, "/plans/renew", "application/json", `{"id":"`+id+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("renew status=%d", rr.Code)
	}
	plans := decodeBody(t, rr)["data"].([]any)
	if plans[0].(map[string]any)["remainingCuts"].(float64) != 2 {
		t.Fatalf("expected full balance after renew: %+v", plans[0])
	}
}

func TestAddPlanWithoutMethodRecordsNoRevenue(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/plans", "application/json",
		`{"name":"João","price":"100,00","totalCuts":"2","addToRevenue":"true"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("add plan status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/services", "", "")
	if list, _ := decodeBody(t, rr)["data"].([]any); len(list) != 0 {
		t.Fatalf("no payment method given, yet revenue was recorded: %+v", list)
	}
}

func TestReportSummaryReflectsMutations(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodPost, "/services", "application/json", `{"name":"Corte","price":"30,00","paymentMethod":"dinheiro"}`)

	rr := do(t, srv, http.MethodGet, "/report/summary?range=week", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("summary status=%d", rr.Code)
	}
	sum := decodeBody(t, rr)["data"].(map[string]any)
	if sum["total"].(float64) != 30 || sum["cash"].(float64) != 30 || sum["count"].(float64) != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	// A second mutation must invalidate the cached summary
	do(t, srv, http.MethodPost, "/services", "application/json", `{"name":"Sobrancelha","price":"10,00","paymentMethod":"pagamento online"}`)

	rr = do(t, srv, http.MethodGet, "/report/summary?range=week", "", "")
	sum = decodeBody(t, rr)["data"].(map[string]any)
	if sum["total"].(float64) != 40 || sum["online"].(float64) != 10 || sum["count"].(float64) != 2 {
		t.Fatalf("stale summary after mutation: %+v", sum)
	}
}

func TestReportSummaryEnvelopeStableAcrossCache(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodPost, "/services", "application/json", `{"name":"Corte","price":"30,00"}`)

	cold := decodeBody(t, do(t, srv, http.MethodGet, "/report/summary?range=week", "", ""))
	cached := decodeBody(t, do(t, srv, http.MethodGet, "/report/summary?range=week", "", ""))

	for _, field := range []string{"range", "start", "end"} {
		if cold[field] == nil || cached[field] == nil {
			t.Fatalf("field %q missing: cold=%v cached=%v", field, cold[field], cached[field])
		}
		if cold[field] != cached[field] {
			t.Fatalf("field %q changed on cache hit: %v vs %v", field, cold[field], cached[field])
		}
	}
}

func TestReportSeriesAndInvalidRange(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodPost, "/services", "application/json", `{"name":"Corte","price":"30,00"}`)

	rr := do(t, srv, http.MethodGet, "/report/series?range=week", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("series status=%d", rr.Code)
	}
	days := decodeBody(t, rr)["days"].([]any)
	if len(days) != 7 {
		t.Fatalf("expected 7 day buckets for a week, got %d", len(days))
	}

	rr = do(t, srv, http.MethodGet, "/report/series?range=year", "", "")
	if _, ok := decodeBody(t, rr)["months"]; !ok {
		t.Fatal("expected month buckets for a year range")
	}

	rr = do(t, srv, http.MethodGet, "/report/summary?range=bogus", "", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid range status=%d, want 400", rr.Code)
	}
}

func TestReportDailyText(t *testing.T) {
	srv, _ := newTestServer(t)

	do(t, srv, http.MethodPost, "/services", "application/json", `{"name":"Corte","price":"30,00","paymentMethod":"dinheiro"}`)

	rr := do(t, srv, http.MethodGet, "/report/daily", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("daily status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Resumo do Dia") || !strings.Contains(body, "Corte: R$30,00") {
		t.Fatalf("unexpected daily text:\n%s", body)
	}
}

func TestImport(t *testing.T) {
	srv, _ := newTestServer(t)

	text := "data serviço método preço\n" +
		"10/06/24 Corte padrão dinheiro R$ 30,00\n" +
		"11/06/24 Corte + barba pagamento online R$ 50,00\n"
	rr := do(t, srv, http.MethodPost, "/import", "text/plain", text)
	if rr.Code != http.StatusOK {
		t.Fatalf("import status=%d body=%s", rr.Code, rr.Body.String())
	}
	payload := decodeBody(t, rr)
	if payload["imported"].(float64) != 2 {
		t.Fatalf("imported = %v, want 2", payload["imported"])
	}
	if got := notificationTitle(payload); got != "Importação concluída" {
		t.Fatalf("notification title = %q", got)
	}

	rr = do(t, srv, http.MethodPost, "/import", "text/plain", "nothing to see here")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty import status=%d, want 422", rr.Code)
	}
	if msg := decodeBody(t, rr)["error"].(string); !strings.Contains(msg, "Nenhum serviço válido") {
		t.Fatalf("unexpected error message: %q", msg)
	}
}

func TestSaveFailureMapsTo500(t *testing.T) {
	srv, mem := newTestServer(t)

	mem.FailWrites(context.DeadlineExceeded)
	rr := do(t, srv, http.MethodPost, "/services", "application/json", `{"name":"Corte","price":"30,00"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", rr.Code)
	}
	if got := notificationTitle(decodeBody(t, rr)); got != "Erro ao salvar dados" {
		t.Fatalf("notification title = %q", got)
	}
}

func TestRateLimitOnMutations(t *testing.T) {
	mem := storage.NewMemoryStore()
	svc := services.NewServiceStore(mem, notify.Fanout{}, nil)
	svc.Load(context.Background())
	plans := services.NewPlanStore(mem, notify.Fanout{}, svc, nil)
	plans.Load(context.Background())

	srv := NewServer(":0", Options{RateLimitPerMinute: 2, CacheSize: 10, CacheTTL: time.Minute}, svc, plans)
	defer func() { _ = srv.Shutdown(context.Background()) }()

	var last int
	for i := 0; i < 3; i++ {
		rr := do(t, srv, http.MethodPost, "/services", "application/json", `{"name":"Corte","price":"30,00"}`)
		last = rr.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("third request status=%d, want 429", last)
	}

	// GET requests are never rate limited
	rr := do(t, srv, http.MethodGet, "/services", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("read status=%d", rr.Code)
	}
}
