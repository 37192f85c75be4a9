package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/fjod/go_cart/cartstore/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Memory is an in-process stock and product source.
type Memory struct {
	mu       sync.RWMutex
	stocks   map[int64]int            // productID -> available amount
	products map[int64]domain.Product // productID -> metadata
}

func NewMemory() *Memory {
	return &Memory{
		stocks:   make(map[int64]int),
		products: make(map[int64]domain.Product),
	}
}

// Seed is the on-disk format: the same shape the storefront's mock API serves.
type Seed struct {
	Products []domain.Product  `json:"products"`
	Stock    []domain.StockInfo `json:"stock"`
}

// LoadSeed reads a seed file and returns a populated Memory.
func LoadSeed(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	m := NewMemory()
	for _, p := range seed.Products {
		m.SetProduct(p)
	}
	for _, s := range seed.Stock {
		if err := m.SetStock(s.ProductID, s.Amount); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Memory) Stock(_ context.Context, productID int64) (domain.StockInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	amount, ok := m.stocks[productID]
	if !ok {
		return domain.StockInfo{}, ErrProductNotFound
	}
	return domain.StockInfo{ProductID: productID, Amount: amount}, nil
}

func (m *Memory) Product(_ context.Context, productID int64) (domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[productID]
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return p, nil
}

// Products returns all products ordered by id.
func (m *Memory) Products(context.Context) []domain.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Memory) SetProduct(p domain.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

// SetStock sets the available amount of a product.
func (m *Memory) SetStock(productID int64, amount int) error {
	if amount < 0 {
		return fmt.Errorf("stock for product %d cannot be negative", productID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stocks[productID] = amount
	return nil
}
