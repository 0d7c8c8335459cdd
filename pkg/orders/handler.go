package orders

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"lentera-hq/gateway/pkg/gateway"
	"lentera-hq/gateway/pkg/gateway/types"
)

const maxCreateBodyBytes = 1 << 20

// Handler serves the local order routes. Unlike the proxied endpoints
// these are answered entirely from the local store, so the admin order
// views keep working when the app backend is down.
type Handler struct {
	store *Store
}

// NewHandler creates a Handler backed by the given store.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Mount registers the order routes on a chi router.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// createRequest is the inbound order-creation payload.
type createRequest struct {
	OrderNumber  string `json:"order_number"`
	Product      string `json:"produk"`
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	Quantity     int64  `json:"qty"`
	Amount       int64  `json:"amount"`
	Status       string `json:"status"`
	Notes        string `json:"notes"`
}

// Create inserts a single order row.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxCreateBodyBytes))
	if err != nil {
		gateway.WriteJSON(w, http.StatusBadRequest,
			types.Fail(types.CodeValidationError, "could not read request body"))
		return
	}

	var req createRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		gateway.WriteJSON(w, http.StatusBadRequest,
			types.FailValidation("Validation failed.", map[string][]string{
				"body": {"must be a JSON object"},
			}))
		return
	}

	problems := map[string][]string{}
	if strings.TrimSpace(req.OrderNumber) == "" {
		problems["order_number"] = append(problems["order_number"], "order_number is required")
	}
	if strings.TrimSpace(req.Product) == "" {
		problems["produk"] = append(problems["produk"], "produk is required")
	}
	if req.Quantity < 0 {
		problems["qty"] = append(problems["qty"], "qty must not be negative")
	}
	if req.Amount < 0 {
		problems["amount"] = append(problems["amount"], "amount must not be negative")
	}
	if len(problems) > 0 {
		gateway.WriteJSON(w, http.StatusBadRequest,
			types.FailValidation("Validation failed.", problems))
		return
	}

	order := &Order{
		OrderNumber:  strings.TrimSpace(req.OrderNumber),
		Product:      strings.TrimSpace(req.Product),
		CustomerName: strings.TrimSpace(req.CustomerName),
		Phone:        strings.TrimSpace(req.Phone),
		Quantity:     req.Quantity,
		Amount:       req.Amount,
		Status:       req.Status,
		Notes:        req.Notes,
	}

	if err := h.store.Create(r.Context(), order); err != nil {
		if err == ErrDuplicateOrderNumber {
			gateway.WriteJSON(w, http.StatusBadRequest,
				types.FailValidation("order number already exists", map[string][]string{
					"order_number": {"order number already exists"},
				}))
			return
		}
		slog.Error("order insert failed", "error", err)
		gateway.WriteJSON(w, http.StatusInternalServerError,
			types.Fail(types.CodeInternalError, gateway.GenericInternalMessage))
		return
	}

	gateway.WriteJSON(w, http.StatusCreated, types.OK("order created", order))
}

// Get returns a single order by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	order, err := h.store.Get(r.Context(), id)
	if err != nil {
		slog.Error("order lookup failed", "error", err, "order_id", id)
		gateway.WriteJSON(w, http.StatusInternalServerError,
			types.Fail(types.CodeInternalError, gateway.GenericInternalMessage))
		return
	}
	if order == nil {
		gateway.WriteJSON(w, http.StatusNotFound,
			types.Fail(types.CodeClientError, "order not found"))
		return
	}

	gateway.WriteJSON(w, http.StatusOK, types.OK("ok", order))
}

// List returns a page of orders newest-first. Pagination here is real,
// computed from the local row count, unlike proxied endpoints where
// pagination is only ever forwarded from the upstream.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	opts := ListOptions{
		Status:  r.URL.Query().Get("status"),
		Page:    queryInt(r, "page"),
		PerPage: queryInt(r, "per_page"),
	}

	orders, total, err := h.store.List(r.Context(), opts)
	if err != nil {
		slog.Error("order list failed", "error", err)
		gateway.WriteJSON(w, http.StatusInternalServerError,
			types.Fail(types.CodeInternalError, gateway.GenericInternalMessage))
		return
	}

	data := make([]any, 0, len(orders))
	for _, order := range orders {
		data = append(data, order)
	}

	env := types.OKList(data)
	env.Pagination = map[string]any{
		"page":        clampPage(opts.Page),
		"per_page":    clampPerPage(opts.PerPage),
		"total":       total,
		"total_pages": totalPages(total, clampPerPage(opts.PerPage)),
	}
	gateway.WriteJSON(w, http.StatusOK, env)
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}

func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func clampPerPage(perPage int) int {
	if perPage <= 0 {
		return 20
	}
	if perPage > 100 {
		return 100
	}
	return perPage
}

func totalPages(total, perPage int) int {
	if total == 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
