package orders

import (
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"lentera-hq/gateway/pkg/gateway/types"
)

func newTestRouter(t *testing.T) (*chi.Mux, *Store) {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "orders.db"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	r := chi.NewRouter()
	r.Route("/api/local/order", NewHandler(store).Mount)
	return r, store
}

func decodeEnvelope(t *testing.T, body []byte) types.Envelope {
	t.Helper()
	var env types.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("response is not an envelope: %v\n%s", err, body)
	}
	return env
}

func TestCreateHandler(t *testing.T) {
	r, _ := newTestRouter(t)

	body := `{"order_number":"ORD-1","produk":"kelas-ekspor","qty":2,"amount":500000}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/api/local/order", strings.NewReader(body)))

	if rec.Code != 201 {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec.Body.Bytes())
	if !env.Success {
		t.Errorf("success = false: %s", rec.Body.String())
	}
}

func TestCreateHandlerValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/api/local/order", strings.NewReader(`{"qty":-1}`)))

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec.Body.Bytes())
	if env.Code != types.CodeValidationError {
		t.Errorf("code = %q, want VALIDATION_ERROR", env.Code)
	}
	for _, field := range []string{"order_number", "produk", "qty"} {
		if len(env.Errors[field]) == 0 {
			t.Errorf("missing field error for %q: %v", field, env.Errors)
		}
	}
}

func TestCreateHandlerDuplicate(t *testing.T) {
	r, _ := newTestRouter(t)

	body := `{"order_number":"ORD-1","produk":"webinar"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/api/local/order", strings.NewReader(body)))
	if rec.Code != 201 {
		t.Fatalf("first insert status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/api/local/order", strings.NewReader(body)))
	if rec.Code != 400 {
		t.Fatalf("duplicate status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec.Body.Bytes())
	if env.Code != types.CodeValidationError || !strings.Contains(env.Message, "already exists") {
		t.Errorf("duplicate envelope = %+v", env)
	}
}

func TestCreateHandlerBadJSON(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/api/local/order", strings.NewReader("not json")))

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetHandler(t *testing.T) {
	r, store := newTestRouter(t)

	order := &Order{OrderNumber: "ORD-9", Product: "webinar"}
	if err := store.Create(httptest.NewRequest("GET", "/", nil).Context(), order); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/local/order/"+order.ID, nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/local/order/missing-id", nil))
	if rec.Code != 404 {
		t.Fatalf("missing order status = %d, want 404", rec.Code)
	}
	env := decodeEnvelope(t, rec.Body.Bytes())
	if env.Success {
		t.Error("missing order reported success")
	}
}

func TestListHandlerPagination(t *testing.T) {
	r, store := newTestRouter(t)

	ctx := httptest.NewRequest("GET", "/", nil).Context()
	for _, n := range []string{"A", "B", "C"} {
		if err := store.Create(ctx, &Order{OrderNumber: "ORD-" + n, Product: "webinar"}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/local/order?page=1&per_page=2", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	env := decodeEnvelope(t, rec.Body.Bytes())
	items, ok := env.Data.([]any)
	if !ok {
		t.Fatalf("data is %T, want array", env.Data)
	}
	if len(items) != 2 {
		t.Errorf("page size = %d, want 2", len(items))
	}

	pagination, ok := env.Pagination.(map[string]any)
	if !ok {
		t.Fatalf("pagination is %T, want object", env.Pagination)
	}
	if pagination["total"] != float64(3) || pagination["total_pages"] != float64(2) {
		t.Errorf("pagination = %v", pagination)
	}
}
