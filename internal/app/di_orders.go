package app

import (
	"fmt"
	"net/http"

	"github.com/allisson/orders/internal/database"
	orderHTTP "github.com/allisson/orders/internal/order/http"
	orderRepository "github.com/allisson/orders/internal/order/repository"
	orderUsecase "github.com/allisson/orders/internal/order/usecase"
	productClient "github.com/allisson/orders/internal/product/client"
	"github.com/allisson/orders/internal/product/resilience"
)

// OrderRepository returns the order repository for the configured database driver.
func (c *Container) OrderRepository() (orderUsecase.OrderRepository, error) {
	var err error
	c.orderRepositoryInit.Do(func() {
		c.orderRepository, err = c.initOrderRepository()
		if err != nil {
			c.initErrors["orderRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["orderRepository"]; exists {
		return nil, storedErr
	}
	return c.orderRepository, nil
}

// ProductCatalog returns the product service client wrapped with cache, retry and circuit breaker.
func (c *Container) ProductCatalog() (*resilience.ProductCatalog, error) {
	var err error
	c.productCatalogInit.Do(func() {
		c.productCatalog, err = c.initProductCatalog()
		if err != nil {
			c.initErrors["productCatalog"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["productCatalog"]; exists {
		return nil, storedErr
	}
	return c.productCatalog, nil
}

// OrderUseCase returns the order use case decorated with metrics.
func (c *Container) OrderUseCase() (orderUsecase.OrderUseCase, error) {
	var err error
	c.orderUseCaseInit.Do(func() {
		c.orderUseCase, err = c.initOrderUseCase()
		if err != nil {
			c.initErrors["orderUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["orderUseCase"]; exists {
		return nil, storedErr
	}
	return c.orderUseCase, nil
}

// OrderHandler returns the HTTP handler for order operations.
func (c *Container) OrderHandler() (*orderHTTP.OrderHandler, error) {
	var err error
	c.orderHandlerInit.Do(func() {
		c.orderHandler, err = c.initOrderHandler()
		if err != nil {
			c.initErrors["orderHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["orderHandler"]; exists {
		return nil, storedErr
	}
	return c.orderHandler, nil
}

func (c *Container) initOrderRepository() (orderUsecase.OrderRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for order repository: %w", err)
	}

	switch {
	case c.config.DBDriver == database.DriverMySQL:
		return orderRepository.NewMySQLOrderRepository(db), nil
	case database.IsPostgres(c.config.DBDriver):
		return orderRepository.NewPostgreSQLOrderRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initProductCatalog() (*resilience.ProductCatalog, error) {
	if c.config.ProductServiceURL == "" {
		return nil, fmt.Errorf("product service url is required")
	}

	client := productClient.NewClient(c.config.ProductServiceURL, &http.Client{})

	return resilience.NewProductCatalog(client, resilience.Config{
		Timeout:          c.config.ProductTimeout,
		MaxAttempts:      c.config.ProductRetryMaxAttempts,
		InitialInterval:  c.config.ProductRetryInitialInterval,
		FailureThreshold: c.config.ProductBreakerFailureThreshold,
		OpenTimeout:      c.config.ProductBreakerOpenTimeout,
		CacheSize:        c.config.ProductCacheSize,
		CacheTTL:         c.config.ProductCacheTTL,
	}, c.Logger()), nil
}

func (c *Container) initOrderUseCase() (orderUsecase.OrderUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for order use case: %w", err)
	}

	orderRepo, err := c.OrderRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get order repository for order use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for order use case: %w", err)
	}

	catalog, err := c.ProductCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get product catalog for order use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for order use case: %w", err)
	}

	useCase := orderUsecase.NewOrderUseCase(txManager, orderRepo, outboxRepo, catalog)
	return orderUsecase.NewOrderUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initOrderHandler() (*orderHTTP.OrderHandler, error) {
	useCase, err := c.OrderUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get order use case for order handler: %w", err)
	}
	return orderHTTP.NewOrderHandler(useCase, c.Logger()), nil
}
