package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

// CustomLoggerMiddleware logs every request with its request id through slog.
// Server errors are logged at ERROR, client errors at WARN, the rest at INFO.
func CustomLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("request_id", requestid.Get(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if query != "" {
			attrs = append(attrs, slog.String("query", query))
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			attrs = append(attrs, slog.String("errors", errs))
		}

		logger.LogAttrs(c.Request.Context(), level, "http request", attrs...)
	}
}

// healthHandler reports that the process is up.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the database is reachable.
func (s *Server) readinessHandler(c *gin.Context) {
	databaseReadiness(s.db)(c)
}

// databaseReadiness answers 503 until db responds to a ping within two seconds.
func databaseReadiness(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if db == nil || db.PingContext(ctx) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"components": gin.H{"database": "error"},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"components": gin.H{"database": "ok"},
		})
	}
}

// circuitBreakerHandler exposes the product service circuit breaker snapshot.
// An open circuit answers 503 so that load balancers can see the degradation.
func (s *Server) circuitBreakerHandler(c *gin.Context) {
	if s.breakerStatus == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "circuit breaker not configured"})
		return
	}

	status := s.breakerStatus()
	code := http.StatusOK
	if status.State == "open" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
