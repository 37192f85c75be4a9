package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_cart/cartstore/internal/domain"
	"github.com/fjod/go_cart/cartstore/internal/logging"
	"github.com/fjod/go_cart/cartstore/internal/notify"
	"github.com/fjod/go_cart/cartstore/internal/store"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CartService is the cart surface the handler drives.
type CartService interface {
	Cart() domain.Cart
	AddProduct(ctx context.Context, productID int64) error
	RemoveProduct(ctx context.Context, productID int64) error
	UpdateProductAmount(ctx context.Context, productID int64, amount int) error
}

const maxRequestBodySize = 1 << 20

type CartHandler struct {
	cart    CartService
	timeout time.Duration
	logger  *zap.Logger
}

func NewCartHandler(cart CartService, timeout time.Duration, logger *zap.Logger) *CartHandler {
	return &CartHandler{cart: cart, timeout: timeout, logger: logger}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type UpdateAmountRequestDTO struct {
	Amount int `json:"amount"`
}

// CartResponse is returned by every cart endpoint, including failed mutations.
type CartResponse struct {
	Items   domain.Cart    `json:"items"`
	Summary domain.Summary `json:"summary"`
	Notices []string       `json:"notices,omitempty"`
	Error   string         `json:"error,omitempty"`
	Code    string         `json:"code,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.snapshot(nil))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	h.run(w, r, http.StatusCreated, func(ctx context.Context) error {
		return h.cart.AddProduct(ctx, req.ProductID)
	})
}

func (h *CartHandler) UpdateAmount(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateAmountRequestDTO
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	h.run(w, r, http.StatusOK, func(ctx context.Context) error {
		return h.cart.UpdateProductAmount(ctx, productID, req.Amount)
	})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	h.run(w, r, http.StatusOK, func(ctx context.Context) error {
		return h.cart.RemoveProduct(ctx, productID)
	})
}

// run executes op with a notice collector and answers with the resulting cart.
func (h *CartHandler) run(w http.ResponseWriter, r *http.Request, okStatus int, op func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	ctx, collector := notify.WithCollector(ctx)

	err := op(ctx)
	resp := h.snapshot(collector.Messages())
	if err == nil {
		respondJSON(w, okStatus, resp)
		return
	}

	status, code, message := statusFor(err)
	logger := logging.FromContext(ctx, h.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("cart operation failed", zap.Error(err), zap.String("code", code))
	} else {
		logger.Debug("cart operation rejected", zap.Error(err), zap.String("code", code))
	}
	resp.Error = message
	resp.Code = code
	respondJSON(w, status, resp)
}

func (h *CartHandler) snapshot(notices []string) CartResponse {
	cart := h.cart.Cart()
	return CartResponse{Items: cart, Summary: cart.Summary(), Notices: notices}
}

// statusFor maps a store error to a status, a code and a message safe to show the client.
func statusFor(err error) (int, string, string) {
	switch {
	case errors.Is(err, store.ErrStockExceeded):
		return http.StatusConflict, "stock_exceeded", "requested amount exceeds available stock"
	case errors.Is(err, store.ErrEntryNotFound):
		return http.StatusNotFound, "not_found", "product is not in the cart"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout", "request timed out"
	case errors.Is(err, store.ErrStockLookup), errors.Is(err, store.ErrCatalogLookup):
		return http.StatusBadGateway, "upstream_error", "catalog service unavailable"
	default:
		return http.StatusInternalServerError, "internal_error", "internal error"
	}
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}
