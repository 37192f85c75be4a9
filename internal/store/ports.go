package store

import (
	"context"

	"github.com/fjod/go_cart/cartstore/internal/domain"
)

// StockService reports the available quantity of a product.
type StockService interface {
	Stock(ctx context.Context, productID int64) (domain.StockInfo, error)
}

// CatalogService returns product metadata.
type CatalogService interface {
	Product(ctx context.Context, productID int64) (domain.Product, error)
}

// PersistentKV is durable storage for a single string blob per key.
// Get reports ok=false when the key is absent.
type PersistentKV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Notifier delivers user-facing messages. Implementations must not block the caller.
type Notifier interface {
	Error(ctx context.Context, message string)
}
