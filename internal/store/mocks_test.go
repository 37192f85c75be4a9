package store

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/go_cart/cartstore/internal/domain"
)

var errUnavailable = errors.New("service unavailable")

type mockStock struct {
	m      sync.Mutex
	stocks map[int64]int
	err    error
	calls  int
}

func newMockStock(stocks map[int64]int) *mockStock {
	return &mockStock{stocks: stocks}
}

func (m *mockStock) Stock(_ context.Context, productID int64) (domain.StockInfo, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls++
	if m.err != nil {
		return domain.StockInfo{}, m.err
	}
	amount, ok := m.stocks[productID]
	if !ok {
		return domain.StockInfo{}, errors.New("stock not found")
	}
	return domain.StockInfo{ProductID: productID, Amount: amount}, nil
}

func (m *mockStock) Calls() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.calls
}

// cancelingStock cancels the caller's context after answering, like a client that disconnects mid-request.
type cancelingStock struct {
	StockService
	cancel context.CancelFunc
}

func (c cancelingStock) Stock(ctx context.Context, productID int64) (domain.StockInfo, error) {
	info, err := c.StockService.Stock(ctx, productID)
	c.cancel()
	return info, err
}

type mockCatalog struct {
	m        sync.Mutex
	products map[int64]domain.Product
	err      error
	calls    int
}

func (m *mockCatalog) Product(_ context.Context, productID int64) (domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls++
	if m.err != nil {
		return domain.Product{}, m.err
	}
	p, ok := m.products[productID]
	if !ok {
		return domain.Product{}, errors.New("product not found")
	}
	return p, nil
}

type mockKV struct {
	m      sync.Mutex
	data   map[string]string
	getErr error
	setErr error
	writes int
}

func newMockKV() *mockKV {
	return &mockKV{data: map[string]string{}}
}

func (m *mockKV) Get(_ context.Context, key string) (string, bool, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mockKV) Set(ctx context.Context, key, value string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.writes++
	if m.setErr != nil {
		return m.setErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.data[key] = value
	return nil
}

func (m *mockKV) value(key string) (string, bool) {
	m.m.Lock()
	defer m.m.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *mockKV) failWrites(err error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.setErr = err
}

type recordingNotifier struct {
	m        sync.Mutex
	messages []string
}

func (r *recordingNotifier) Error(_ context.Context, message string) {
	r.m.Lock()
	defer r.m.Unlock()
	r.messages = append(r.messages, message)
}

func (r *recordingNotifier) Messages() []string {
	r.m.Lock()
	defer r.m.Unlock()
	return append([]string(nil), r.messages...)
}
