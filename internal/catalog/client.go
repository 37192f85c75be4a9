package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_cart/cartstore/internal/domain"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound        = errors.New("catalog: not found")
	ErrUnavailable     = errors.New("catalog: unavailable")
	ErrInvalidResponse = errors.New("catalog: invalid response")
)

const maxBodySize = 1 << 20

// BreakerSettings controls when the client stops calling a failing service.
type BreakerSettings struct {
	MaxFailures uint32        // consecutive failures that open the breaker
	OpenTimeout time.Duration // how long the breaker stays open
}

var DefaultBreakerSettings = BreakerSettings{MaxFailures: 5, OpenTimeout: 30 * time.Second}

// Client talks to the remote stock and product endpoints over HTTP.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	group   singleflight.Group
}

type ClientOption func(*clientConfig)

type clientConfig struct {
	transport http.RoundTripper
	breaker   BreakerSettings
}

func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *clientConfig) { c.transport = rt }
}

func WithBreaker(s BreakerSettings) ClientOption {
	return func(c *clientConfig) { c.breaker = s }
}

func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid catalog base url %q", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	cfg := clientConfig{transport: http.DefaultTransport, breaker: DefaultBreakerSettings}
	for _, opt := range opts {
		opt(&cfg)
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Timeout:     cfg.breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.breaker.MaxFailures
		},
		// an unknown product is an answer, not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
	})

	return &Client{
		baseURL: u,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(cfg.transport),
		},
		breaker: breaker,
	}, nil
}

// Stock fetches the available amount for productID. It is never cached.
func (c *Client) Stock(ctx context.Context, productID int64) (domain.StockInfo, error) {
	body, err := c.get(ctx, "stock/"+strconv.FormatInt(productID, 10))
	if err != nil {
		return domain.StockInfo{}, err
	}

	var stock domain.StockInfo
	if err := json.Unmarshal(body, &stock); err != nil {
		return domain.StockInfo{}, fmt.Errorf("%w: decode stock: %w", ErrInvalidResponse, err)
	}
	if stock.Amount < 0 {
		return domain.StockInfo{}, fmt.Errorf("%w: negative stock %d for product %d", ErrInvalidResponse, stock.Amount, productID)
	}
	stock.ProductID = productID
	return stock, nil
}

// Product fetches product metadata. Concurrent lookups of the same id, from the store and from
// proxied UI reads, share one request. The shared request is bounded by the client timeout, not
// by the context of whichever caller started it.
func (c *Client) Product(ctx context.Context, productID int64) (domain.Product, error) {
	path := "products/" + strconv.FormatInt(productID, 10)
	ch := c.group.DoChan(path, func() (any, error) {
		body, err := c.get(context.WithoutCancel(ctx), path)
		if err != nil {
			return nil, err
		}
		var product domain.Product
		if err := json.Unmarshal(body, &product); err != nil {
			return nil, fmt.Errorf("%w: decode product: %w", ErrInvalidResponse, err)
		}
		return product, nil
	})

	select {
	case <-ctx.Done():
		return domain.Product{}, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return domain.Product{}, res.Err
		}
		return res.Val.(domain.Product), nil
	}
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.fetch(ctx, path)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return body, err
}

func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	endpoint := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: GET %s", ErrNotFound, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: GET %s returned %d", ErrUnavailable, path, resp.StatusCode)
	}
	return body, nil
}
