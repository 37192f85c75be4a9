// Package store holds the cart state and the operations that mutate it.
//
// The in-memory cart is the source of truth; the persistent key-value store
// is a mirror that receives the full snapshot after every successful mutation.
// Mutations are serialized so each one reads, validates, mutates and persists
// without another interleaving.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/fjod/go_cart/cartstore/internal/domain"
	"github.com/fjod/go_cart/cartstore/internal/logging"
	"github.com/fjod/go_cart/cartstore/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/fjod/go_cart/cartstore/internal/store")

type Store struct {
	writeMu sync.Mutex // single writer across the whole operation

	mu    sync.RWMutex
	cart  domain.Cart
	dirty bool // last write of the snapshot failed

	stock    StockService
	catalog  CatalogService
	kv       PersistentKV
	notifier Notifier

	key       string
	logger    *zap.Logger
	metrics   *metrics.Cart
	onPersist func(error)
}

func New(stock StockService, catalog CatalogService, kv PersistentKV, notifier Notifier, opts ...Option) *Store {
	s := &Store{
		cart:     domain.Cart{},
		stock:    stock,
		catalog:  catalog,
		kv:       kv,
		notifier: notifier,
		key:      DefaultStorageKey,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cart returns a snapshot of the current cart.
func (s *Store) Cart() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

// Restore loads the persisted cart. A missing, unreadable or malformed blob yields an empty cart.
func (s *Store) Restore(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	logger := logging.FromContext(ctx, s.logger).With(zap.String("key", s.key))
	cart := domain.Cart{}

	blob, ok, err := s.kv.Get(ctx, s.key)
	switch {
	case err != nil:
		logger.Warn("read persisted cart failed, starting empty", zap.Error(err))
	case !ok:
		logger.Debug("no persisted cart")
	default:
		decoded, decodeErr := domain.DecodeCart(blob)
		if decodeErr != nil {
			logger.Warn("persisted cart is malformed, starting empty", zap.Error(decodeErr))
			break
		}
		cart = decoded
	}

	s.mu.Lock()
	s.cart = cart
	s.dirty = false
	s.mu.Unlock()

	s.metrics.SetEntries(len(cart))
	logger.Info("cart restored", zap.Int("entries", len(cart)))
}

// AddProduct increments the amount of productID by one, adding it with amount 1 when absent.
func (s *Store) AddProduct(ctx context.Context, productID int64) error {
	return s.mutate(ctx, opAdd, productID, func(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
		idx := cart.IndexOf(productID)

		stock, err := s.stock.Stock(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("%w: product %d: %w", ErrStockLookup, productID, err)
		}

		current := 0
		if idx >= 0 {
			current = cart[idx].Amount
		}
		if requested := current + 1; requested > stock.Amount {
			return nil, fmt.Errorf("%w: product %d requested %d, available %d", ErrStockExceeded, productID, requested, stock.Amount)
		}

		if idx >= 0 {
			cart[idx].Amount++
			return cart, nil
		}

		product, err := s.catalog.Product(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("%w: product %d: %w", ErrCatalogLookup, productID, err)
		}
		product.ID = productID
		return append(cart, domain.CartEntry{Product: product, Amount: 1}), nil
	})
}

// RemoveProduct deletes the entry for productID.
func (s *Store) RemoveProduct(ctx context.Context, productID int64) error {
	return s.mutate(ctx, opRemove, productID, func(_ context.Context, cart domain.Cart) (domain.Cart, error) {
		idx := cart.IndexOf(productID)
		if idx < 0 {
			return nil, fmt.Errorf("%w: product %d", ErrEntryNotFound, productID)
		}
		return slices.Delete(cart, idx, idx+1), nil
	})
}

// UpdateProductAmount sets the amount of an existing entry. Amounts <= 0 are ignored;
// removal only happens through RemoveProduct.
func (s *Store) UpdateProductAmount(ctx context.Context, productID int64, amount int) error {
	if amount <= 0 {
		s.metrics.ObserveOperation(string(opUpdate), metrics.OutcomeNoop, 0)
		return nil
	}
	return s.mutate(ctx, opUpdate, productID, func(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
		stock, err := s.stock.Stock(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("%w: product %d: %w", ErrStockLookup, productID, err)
		}
		if amount > stock.Amount {
			return nil, fmt.Errorf("%w: product %d requested %d, available %d", ErrStockExceeded, productID, amount, stock.Amount)
		}

		idx := cart.IndexOf(productID)
		if idx < 0 {
			return nil, fmt.Errorf("%w: product %d", ErrEntryNotFound, productID)
		}
		cart[idx].Amount = amount
		return cart, nil
	})
}

// Flush rewrites the snapshot if the previous write failed.
func (s *Store) Flush(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	dirty, cart := s.dirty, s.cart.Clone()
	s.mu.RUnlock()

	if !dirty {
		return nil
	}
	return s.persist(ctx, cart)
}

type mutation func(ctx context.Context, cart domain.Cart) (domain.Cart, error)

// mutate runs fn on a private copy of the cart and commits the result only when fn succeeds.
func (s *Store) mutate(ctx context.Context, op operation, productID int64, fn mutation) error {
	ctx, span := tracer.Start(ctx, "cart."+string(op))
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", productID))

	start := time.Now()
	logger := logging.FromContext(ctx, s.logger).With(
		zap.String("op", string(op)),
		zap.Int64("product_id", productID),
	)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	updated, err := fn(ctx, s.Cart())
	if err != nil {
		outcome := outcomeOf(err)
		span.SetStatus(codes.Error, outcome)
		span.SetAttributes(attribute.String("cart.outcome", outcome))
		s.metrics.ObserveOperation(string(op), outcome, time.Since(start))
		if outcome == metrics.OutcomeLookupFailed {
			logger.Warn("cart operation aborted", zap.Error(err))
		} else {
			logger.Info("cart operation rejected", zap.Error(err))
		}
		s.notifier.Error(ctx, failureMessage(op, err))
		return err
	}

	s.mu.Lock()
	s.cart = updated
	s.mu.Unlock()

	s.metrics.SetEntries(len(updated))
	s.metrics.ObserveOperation(string(op), metrics.OutcomeSuccess, time.Since(start))
	span.SetAttributes(attribute.String("cart.outcome", metrics.OutcomeSuccess))

	// committed: the snapshot write runs to completion even if the caller goes away
	if perr := s.persist(context.WithoutCancel(ctx), updated); perr != nil {
		logger.Warn("persist cart failed, will retry on next write", zap.Error(perr))
	} else {
		logger.Debug("cart operation applied", zap.Int("entries", len(updated)))
	}
	return nil
}

func (s *Store) persist(ctx context.Context, cart domain.Cart) error {
	blob, err := cart.Encode()
	if err == nil {
		err = s.kv.Set(ctx, s.key, blob)
	}

	s.mu.Lock()
	s.dirty = err != nil
	s.mu.Unlock()

	if err != nil {
		s.metrics.PersistFailed()
		err = fmt.Errorf("persist cart: %w", err)
	}
	if s.onPersist != nil {
		s.onPersist(err)
	}
	return err
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrStockExceeded):
		return metrics.OutcomeStockExceeded
	case errors.Is(err, ErrEntryNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeLookupFailed
	}
}
