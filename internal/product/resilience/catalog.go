// Package resilience decorates the product capability with a cache, per-call
// timeouts, bounded retries with exponential backoff and a circuit breaker.
//
// For a lookup the layers compose as cache -> breaker -> retry -> timeout -> next:
// each attempt gets its own timeout, the whole retry loop counts as one call for
// the breaker, and a cache hit skips all of them. Not-found answers are
// definitive: they are never retried and never trip the breaker.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sony/gobreaker/v2"

	"github.com/allisson/orders/internal/product/domain"
)

// Catalog is the product capability being protected.
type Catalog interface {
	Lookup(ctx context.Context, productID int64) (*domain.Product, error)
	HasStock(ctx context.Context, productID int64, quantity int) (bool, error)
}

// Config holds the resilience policy.
type Config struct {
	Name             string
	Timeout          time.Duration
	MaxAttempts      int
	InitialInterval  time.Duration
	MaxInterval      time.Duration
	FailureThreshold int
	OpenTimeout      time.Duration
	CacheSize        int
	CacheTTL         time.Duration
}

// BreakerStatus is a snapshot of the circuit breaker.
type BreakerStatus struct {
	Name                string `json:"name"`
	State               string `json:"state"`
	Requests            uint32 `json:"requests"`
	TotalFailures       uint32 `json:"total_failures"`
	ConsecutiveFailures uint32 `json:"consecutive_failures"`
}

// ProductCatalog is a Catalog wrapped with the resilience policy.
type ProductCatalog struct {
	next    Catalog
	config  Config
	cache   *expirable.LRU[int64, domain.Product]
	breaker *gobreaker.CircuitBreaker[any]
	logger  *slog.Logger
}

// NewProductCatalog wraps next with the given policy. Zero values fall back to defaults.
func NewProductCatalog(next Catalog, config Config, logger *slog.Logger) *ProductCatalog {
	config = withDefaults(config)

	c := &ProductCatalog{
		next:   next,
		config: config,
		cache:  expirable.NewLRU[int64, domain.Product](config.CacheSize, nil, config.CacheTTL),
		logger: logger,
	}

	threshold := uint32(config.FailureThreshold)
	c.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: 1,
		Timeout:     config.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrProductNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if c.logger != nil {
				c.logger.Warn("circuit breaker state changed",
					slog.String("breaker", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
			}
		},
	})

	return c
}

func withDefaults(config Config) Config {
	if config.Name == "" {
		config.Name = "product-service"
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Second
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialInterval <= 0 {
		config.InitialInterval = 100 * time.Millisecond
	}
	if config.MaxInterval <= 0 {
		config.MaxInterval = 2 * time.Second
	}
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = 30 * time.Second
	}
	if config.CacheSize <= 0 {
		config.CacheSize = 1000
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 30 * time.Second
	}
	return config
}

// Lookup returns a cached product when available, otherwise calls the product service.
func (c *ProductCatalog) Lookup(ctx context.Context, productID int64) (*domain.Product, error) {
	if cached, ok := c.cache.Get(productID); ok {
		return &cached, nil
	}

	product, err := protect(ctx, c, "lookup", func(ctx context.Context) (*domain.Product, error) {
		return c.next.Lookup(ctx, productID)
	})
	if err != nil {
		return nil, err
	}

	c.cache.Add(productID, *product)
	return product, nil
}

// HasStock checks availability through the same protection. Answers are never cached.
func (c *ProductCatalog) HasStock(ctx context.Context, productID int64, quantity int) (bool, error) {
	return protect(ctx, c, "has_stock", func(ctx context.Context) (bool, error) {
		return c.next.HasStock(ctx, productID, quantity)
	})
}

// Status returns the circuit breaker state and counters.
func (c *ProductCatalog) Status() BreakerStatus {
	counts := c.breaker.Counts()
	return BreakerStatus{
		Name:                c.breaker.Name(),
		State:               c.breaker.State().String(),
		Requests:            counts.Requests,
		TotalFailures:       counts.TotalFailures,
		ConsecutiveFailures: counts.ConsecutiveFailures,
	}
}

// protect runs fn inside the breaker, retrying transient failures with a
// per-attempt timeout.
func protect[T any](
	ctx context.Context,
	c *ProductCatalog,
	operation string,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	var zero T

	result, err := c.breaker.Execute(func() (any, error) {
		return backoff.RetryWithData[any](func() (any, error) {
			attemptCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
			defer cancel()

			value, err := fn(attemptCtx)
			if err != nil {
				if errors.Is(err, domain.ErrProductNotFound) || ctx.Err() != nil {
					return nil, backoff.Permanent(err)
				}
				return nil, err
			}
			return value, nil
		}, c.newBackOff(ctx))
	})
	if err != nil {
		return zero, c.classify(ctx, operation, err)
	}

	return result.(T), nil
}

func (c *ProductCatalog) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.config.InitialInterval
	b.MaxInterval = c.config.MaxInterval
	b.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.config.MaxAttempts-1)), ctx)
}

func (c *ProductCatalog) classify(ctx context.Context, operation string, err error) error {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return err
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: circuit %s", domain.ErrProductServiceUnavailable, c.breaker.State())
	}

	if c.logger != nil {
		c.logger.Warn("product service call failed",
			slog.String("operation", operation),
			slog.Int("attempts", c.config.MaxAttempts),
			slog.Any("error", err),
		)
	}
	return fmt.Errorf("%w: %v", domain.ErrProductServiceUnavailable, err)
}
