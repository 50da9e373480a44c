package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/profilegateway/backend/internal/domain/shared"
	"github.com/profilegateway/backend/internal/infrastructure/logger"
	"github.com/profilegateway/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const healthPingTimeout = 2 * time.Second

// HealthHandler reports liveness and the state of the idempotency store
type HealthHandler struct {
	backendMode string
	store       shared.IdempotencyStore
}

// NewHealthHandler creates a new HealthHandler. store may be nil when
// idempotency keys are disabled.
func NewHealthHandler(backendMode string, store shared.IdempotencyStore) *HealthHandler {
	return &HealthHandler{backendMode: backendMode, store: store}
}

// Health godoc
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.HealthResponse
// @Failure      503 {object} dto.HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := dto.HealthResponse{
		Status:           "healthy",
		Backend:          h.backendMode,
		IdempotencyStore: "disabled",
	}

	if h.store != nil {
		resp.IdempotencyStore = h.store.Name()

		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()

		if err := h.store.Ping(ctx); err != nil {
			logger.L(ctx).Warn("Idempotency store ping failed", zap.Error(err))
			resp.Status = "unhealthy"
			resp.Error = "idempotency store unreachable"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}
