// Package http provides HTTP handlers exposing the outbox ledger state.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/orders/internal/httputil"
	"github.com/allisson/orders/internal/outbox/domain"
)

// StatsReader reports the number of outbox entries per status.
type StatsReader interface {
	Stats(ctx context.Context) (map[domain.Status]int64, error)
}

// StatsResponse is the outbox backlog per status.
type StatsResponse struct {
	Pending   int64 `json:"pending"`
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
}

// OutboxHandler handles HTTP requests about the outbox.
type OutboxHandler struct {
	stats  StatsReader
	logger *slog.Logger
}

// NewOutboxHandler creates a new outbox handler.
func NewOutboxHandler(stats StatsReader, logger *slog.Logger) *OutboxHandler {
	return &OutboxHandler{stats: stats, logger: logger}
}

// StatsHandler returns the outbox backlog.
// GET /v1/outbox/stats
func (h *OutboxHandler) StatsHandler(c *gin.Context) {
	stats, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		Pending:   stats[domain.StatusPending],
		Processed: stats[domain.StatusProcessed],
		Failed:    stats[domain.StatusFailed],
	})
}
