// Package notify delivers user-facing cart messages.
package notify

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/cartstore/internal/logging"
	"go.uber.org/zap"
)

type Notifier interface {
	Error(ctx context.Context, message string)
}

// Multi fans a message out to every notifier in order.
type Multi []Notifier

func (m Multi) Error(ctx context.Context, message string) {
	for _, n := range m {
		if n != nil {
			n.Error(ctx, message)
		}
	}
}

// Log writes notices to the request-scoped logger.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Error(ctx context.Context, message string) {
	logging.FromContext(ctx, l.logger).Warn("cart notice", zap.String("notice", message))
}

// Collector gathers the notices raised while handling one request.
type Collector struct {
	mu       sync.Mutex
	messages []string
}

type collectorKey struct{}

// WithCollector returns a context carrying a fresh Collector.
func WithCollector(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{}
	return context.WithValue(ctx, collectorKey{}, c), c
}

func (c *Collector) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.messages...)
}

func (c *Collector) add(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
}

// Context appends notices to the Collector found in ctx, if any.
type Context struct{}

func (Context) Error(ctx context.Context, message string) {
	if c, ok := ctx.Value(collectorKey{}).(*Collector); ok {
		c.add(message)
	}
}
