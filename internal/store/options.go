package store

import (
	"github.com/fjod/go_cart/cartstore/internal/metrics"
	"go.uber.org/zap"
)

// DefaultStorageKey is the key the cart blob is stored under.
const DefaultStorageKey = "@RocketShoes:cart"

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *metrics.Cart) Option {
	return func(s *Store) { s.metrics = m }
}

func WithStorageKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithPersistObserver registers a callback invoked after every write attempt with its result.
func WithPersistObserver(fn func(err error)) Option {
	return func(s *Store) { s.onPersist = fn }
}
