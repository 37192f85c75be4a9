package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fjod/go_cart/cartstore/internal/domain"
	"github.com/go-chi/chi/v5"
)

// Source is what the handler serves from: the embedded Memory, or a Client when proxying.
type Source interface {
	Stock(ctx context.Context, productID int64) (domain.StockInfo, error)
	Product(ctx context.Context, productID int64) (domain.Product, error)
}

// Lister is implemented by sources that can enumerate their products.
type Lister interface {
	Products(ctx context.Context) []domain.Product
}

// NewHandler serves the stock and product endpoints the Client consumes.
// GET /products is only routed when src is a Lister.
func NewHandler(src Source) http.Handler {
	r := chi.NewRouter()
	r.Get("/stock/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := productID(w, r)
		if !ok {
			return
		}
		stock, err := src.Stock(r.Context(), id)
		if err != nil {
			writeLookupError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stock)
	})
	r.Get("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := productID(w, r)
		if !ok {
			return
		}
		product, err := src.Product(r.Context(), id)
		if err != nil {
			writeLookupError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, product)
	})
	if lister, ok := src.(Lister); ok {
		r.Get("/products", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, lister.Products(r.Context()))
		})
	}
	return r
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}

func writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrInvalidResponse):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "catalog unavailable"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
