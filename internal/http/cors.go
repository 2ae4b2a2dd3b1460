package http

import (
	"log/slog"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/allisson/orders/internal/config"
)

// newCORSMiddleware builds the CORS middleware for browser clients of the order API.
// It returns nil when CORS is disabled or no origin is configured. A "*" origin
// allows every origin without credentials.
func newCORSMiddleware(cfg *config.Config, logger *slog.Logger) gin.HandlerFunc {
	if !cfg.CORSEnabled {
		return nil
	}

	origins := cfg.CORSOriginList()
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no origins configured, CORS will not be applied")
		return nil
	}

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "X-Request-Id"},
		ExposeHeaders: []string{"X-Request-Id"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}

	logger.Info("CORS enabled",
		slog.Bool("all_origins", corsConfig.AllowAllOrigins),
		slog.Any("origins", origins))

	return cors.New(corsConfig)
}
