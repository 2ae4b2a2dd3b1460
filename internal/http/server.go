// Package http provides the HTTP API server, the metrics server and their middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/orders/internal/config"
	"github.com/allisson/orders/internal/metrics"
	orderHTTP "github.com/allisson/orders/internal/order/http"
	outboxHTTP "github.com/allisson/orders/internal/outbox/http"
	"github.com/allisson/orders/internal/product/resilience"
)

// Server represents the HTTP API server.
type Server struct {
	db            *sql.DB
	server        *http.Server
	router        *gin.Engine
	logger        *slog.Logger
	breakerStatus func() resilience.BreakerStatus
	stopLimiter   context.CancelFunc
}

// NewServer creates a new HTTP server. SetupRouter must be called before Start.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter registers the middleware chain and every API route.
func (s *Server) SetupRouter(
	cfg *config.Config,
	orderHandler *orderHTTP.OrderHandler,
	outboxHandler *outboxHTTP.OutboxHandler,
	breakerStatus func() resilience.BreakerStatus,
	metricsProvider *metrics.Provider,
) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := newCORSMiddleware(cfg, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), metricsProvider.Namespace()))
	}

	s.breakerStatus = breakerStatus
	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)
	router.GET("/health/circuit-breaker", s.circuitBreakerHandler)

	// Order writes are rate limited per client IP; reads are not.
	writeLimit := func(c *gin.Context) { c.Next() }
	if cfg.RateLimitEnabled {
		limiterCtx, cancel := context.WithCancel(context.Background())
		s.stopLimiter = cancel
		writeLimit = RateLimitMiddleware(limiterCtx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger)
	}

	v1 := router.Group("/v1")
	{
		orders := v1.Group("/orders")
		{
			orders.POST("", writeLimit, orderHandler.CreateHandler)
			orders.GET("", orderHandler.ListHandler)
			orders.GET("/:id", orderHandler.GetHandler)
			orders.PUT("/:id/cancel", writeLimit, orderHandler.CancelHandler)
			orders.PUT("/:id/confirm", writeLimit, orderHandler.ConfirmHandler)
		}

		v1.GET("/customers/:customer_id/orders", orderHandler.ListByCustomerHandler)
		v1.GET("/outbox/stats", outboxHandler.StatsHandler)
	}

	s.router = router
}

// GetHandler returns the configured router for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it is shut down.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured, call SetupRouter first")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if s.stopLimiter != nil {
		s.stopLimiter()
	}
	return s.server.Shutdown(ctx)
}
