package app

import (
	"context"
	"fmt"

	"github.com/allisson/orders/internal/database"
	outboxHTTP "github.com/allisson/orders/internal/outbox/http"
	"github.com/allisson/orders/internal/outbox/publisher"
	outboxRepository "github.com/allisson/orders/internal/outbox/repository"
	outboxUsecase "github.com/allisson/orders/internal/outbox/usecase"
)

// OutboxRepository returns the outbox repository for the configured database driver.
func (c *Container) OutboxRepository() (outboxUsecase.OutboxRepository, error) {
	var err error
	c.outboxRepositoryInit.Do(func() {
		c.outboxRepository, err = c.initOutboxRepository()
		if err != nil {
			c.initErrors["outboxRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxRepository"]; exists {
		return nil, storedErr
	}
	return c.outboxRepository, nil
}

// EventPublisher returns the publisher selected by the publisher driver.
func (c *Container) EventPublisher() (publisher.Publisher, error) {
	var err error
	c.eventPublisherInit.Do(func() {
		c.eventPublisher, err = c.initEventPublisher()
		if err != nil {
			c.initErrors["eventPublisher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventPublisher"]; exists {
		return nil, storedErr
	}
	return c.eventPublisher, nil
}

// OutboxUseCase returns the outbox processor.
func (c *Container) OutboxUseCase() (outboxUsecase.UseCase, error) {
	var err error
	c.outboxUseCaseInit.Do(func() {
		c.outboxUseCase, err = c.initOutboxUseCase()
		if err != nil {
			c.initErrors["outboxUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxUseCase"]; exists {
		return nil, storedErr
	}
	return c.outboxUseCase, nil
}

// OutboxHandler returns the HTTP handler for outbox statistics.
func (c *Container) OutboxHandler() (*outboxHTTP.OutboxHandler, error) {
	var err error
	c.outboxHandlerInit.Do(func() {
		c.outboxHandler, err = c.initOutboxHandler()
		if err != nil {
			c.initErrors["outboxHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxHandler"]; exists {
		return nil, storedErr
	}
	return c.outboxHandler, nil
}

func (c *Container) initOutboxRepository() (outboxUsecase.OutboxRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
	}

	switch {
	case c.config.DBDriver == database.DriverMySQL:
		return outboxRepository.NewMySQLOutboxRepository(db), nil
	case database.IsPostgres(c.config.DBDriver):
		return outboxRepository.NewPostgreSQLOutboxRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initEventPublisher() (publisher.Publisher, error) {
	p, err := publisher.New(context.Background(), publisher.Config{
		Driver:       c.config.PublisherDriver,
		TopicURL:     c.config.PublisherTopicURL,
		KafkaBrokers: c.config.KafkaBrokerList(),
		KafkaTopic:   c.config.KafkaTopic,
	}, c.Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to create event publisher: %w", err)
	}
	return p, nil
}

func (c *Container) initOutboxUseCase() (outboxUsecase.UseCase, error) {
	useCaseConfig := outboxUsecase.Config{
		Interval:        c.config.OutboxInterval,
		BatchSize:       c.config.OutboxBatchSize,
		MaxRetries:      c.config.OutboxMaxRetries,
		Workers:         c.config.OutboxWorkers,
		PublishTimeout:  c.config.OutboxPublishTimeout,
		RetryBackoff:    c.config.OutboxRetryBackoff,
		CleanupInterval: c.config.OutboxCleanupInterval,
		Retention:       c.config.OutboxRetention,
	}
	if err := useCaseConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid outbox configuration: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
	}

	eventPublisher, err := c.EventPublisher()
	if err != nil {
		return nil, fmt.Errorf("failed to get event publisher for outbox use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for outbox use case: %w", err)
	}

	return outboxUsecase.NewOutboxUseCase(
		useCaseConfig,
		txManager,
		outboxRepo,
		eventPublisher,
		businessMetrics,
		c.Logger(),
	), nil
}

func (c *Container) initOutboxHandler() (*outboxHTTP.OutboxHandler, error) {
	useCase, err := c.OutboxUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox use case for outbox handler: %w", err)
	}
	return outboxHTTP.NewOutboxHandler(useCase, c.Logger()), nil
}
