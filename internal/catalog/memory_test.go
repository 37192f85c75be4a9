package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fjod/go_cart/cartstore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_StockAndProduct(t *testing.T) {
	m := seededMemory(t)
	ctx := context.Background()

	stock, err := m.Stock(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, stock.Amount)

	_, err = m.Stock(ctx, 42)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = m.Product(ctx, 42)
	assert.ErrorIs(t, err, ErrProductNotFound)

	products := m.Products(ctx)
	require.Len(t, products, 2)
	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, int64(2), products[1].ID)
}

func TestMemory_SetStockRejectsNegative(t *testing.T) {
	m := NewMemory()
	assert.Error(t, m.SetStock(1, -1))
}

func TestLoadSeed(t *testing.T) {
	seed := Seed{
		Products: []domain.Product{{ID: 1, Title: "Tênis", Price: 10, Image: "i"}},
		Stock:    []domain.StockInfo{{ProductID: 1, Amount: 5}},
	}
	data, err := json.Marshal(seed)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "server.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	m, err := LoadSeed(path)
	require.NoError(t, err)

	stock, err := m.Stock(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, stock.Amount)
}

func TestLoadSeed_Errors(t *testing.T) {
	_, err := LoadSeed(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "read seed file")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = LoadSeed(path)
	assert.ErrorContains(t, err, "parse seed file")
}

func TestHandler(t *testing.T) {
	h := NewHandler(seededMemory(t))

	tests := []struct {
		path string
		code int
	}{
		{"/stock/1", http.StatusOK},
		{"/stock/99", http.StatusNotFound},
		{"/stock/abc", http.StatusBadRequest},
		{"/products/2", http.StatusOK},
		{"/products/0", http.StatusBadRequest},
		{"/products", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}
