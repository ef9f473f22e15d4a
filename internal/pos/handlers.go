package pos

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/ngepos/internal/catalog"
	"github.com/noah-isme/ngepos/internal/common"
	"github.com/noah-isme/ngepos/internal/ledger"
	"github.com/noah-isme/ngepos/internal/money"
	"github.com/noah-isme/ngepos/internal/payment"
)

const defaultHistoryPerPage = 20

// Handler exposes the till session over HTTP.
type Handler struct {
	session *Session
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Session *Session
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{session: cfg.Session}
}

type addItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=9999"`
}

type checkoutRequest struct {
	Method   string `json:"method" validate:"omitempty,max=32"`
	Tendered string `json:"tendered" validate:"max=32"`
}

type checkoutResponse struct {
	Transaction ledger.Transaction `json:"transaction"`
	ChangeLabel string             `json:"changeLabel"`
}

// Cart handles GET /api/v1/cart.
func (h *Handler) Cart(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	common.Data(w, http.StatusOK, h.session.Cart())
}

// AddItem handles POST /api/v1/cart/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	var req addItemRequest
	if err := common.BindJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	view, err := h.session.AddToCart(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, view)
}

// UpdateItem handles PATCH /api/v1/cart/items/{productId}.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	var req updateItemRequest
	if err := common.BindJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, h.session.SetQuantity(r.Context(), id, *req.Quantity))
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	id, ok := productIDParam(w, r)
	if !ok {
		return
	}
	common.Data(w, http.StatusOK, h.session.RemoveFromCart(r.Context(), id))
}

// ClearCart handles DELETE /api/v1/cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	common.Data(w, http.StatusOK, h.session.ClearCart(r.Context()))
}

// QuickAmounts handles GET /api/v1/checkout/quick-amounts.
func (h *Handler) QuickAmounts(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	common.Data(w, http.StatusOK, h.session.QuickAmounts())
}

// Evaluate handles GET /api/v1/checkout/evaluate?tendered=.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	common.Data(w, http.StatusOK, h.session.Evaluate(r.URL.Query().Get("tendered")))
}

// Checkout handles POST /api/v1/checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	var req checkoutRequest
	if err := common.BindJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	tx, err := h.session.Pay(r.Context(), req.Method, req.Tendered)
	if err != nil {
		writeError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, checkoutResponse{
		Transaction: tx,
		ChangeLabel: money.Format(tx.Change),
	})
}

// Transactions handles GET /api/v1/transactions.
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	page, perPage := common.ParsePagination(r, defaultHistoryPerPage)
	items, total := h.session.History(page, perPage)
	common.Page(w, items, common.NewPagination(page, perPage, total))
}

// ClearTransactions handles DELETE /api/v1/transactions.
func (h *Handler) ClearTransactions(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	if err := h.session.ClearHistory(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Dashboard handles GET /api/v1/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	common.Data(w, http.StatusOK, h.session.Dashboard())
}

func (h *Handler) configured(w http.ResponseWriter) bool {
	if h == nil || h.session == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "pos session not configured", nil)
		return false
	}
	return true
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil || id <= 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", map[string]any{"field": "productId"})
		return 0, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	var short *payment.InsufficientFundsError
	switch {
	case errors.As(err, &short):
		common.JSONError(w, http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", payment.ReasonFor(err), map[string]any{
			"total":     short.Total,
			"tendered":  short.Tendered,
			"shortfall": short.Shortfall(),
		})
	case errors.Is(err, payment.ErrMethodUnsupported):
		common.JSONError(w, http.StatusNotImplemented, "METHOD_UNSUPPORTED", err.Error(), nil)
	case errors.Is(err, payment.ErrInvalidInput):
		common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_INPUT", payment.ReasonFor(err), nil)
	case errors.Is(err, ErrEmptyCart):
		common.JSONError(w, http.StatusConflict, "EMPTY_CART", "cart is empty", nil)
	case errors.Is(err, catalog.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
	case errors.Is(err, catalog.ErrFetch):
		common.JSONError(w, http.StatusBadGateway, "CATALOG_UNAVAILABLE", "failed to fetch products", nil)
	case errors.Is(err, ledger.ErrPersistence):
		common.JSONError(w, http.StatusServiceUnavailable, "PERSISTENCE_ERROR", "transaction history could not be saved", nil)
	case errors.Is(err, ledger.ErrBusy):
		common.JSONError(w, http.StatusConflict, "BUSY", "ledger is busy", nil)
	default:
		common.WriteError(w, err)
	}
}
