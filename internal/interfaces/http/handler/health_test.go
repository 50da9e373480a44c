package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/profilegateway/backend/internal/domain/shared"
	"github.com/profilegateway/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
)

type downStore struct {
	shared.IdempotencyStore
}

func (downStore) Name() string { return "redis" }
func (downStore) Ping(ctx context.Context) error { return errors.New("connection refused") }

func serveHealth(h *HealthHandler) *httptest.ResponseRecorder {
	engine := gin.New()
	engine.GET("/health", h.Health)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	return w
}

func TestHealthHandler(t *testing.T) {
	t.Run("memory store", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		w := serveHealth(NewHealthHandler("stub", store))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"healthy","backend":"stub","idempotency_store":"memory"}`, w.Body.String())
	})

	t.Run("idempotency disabled", func(t *testing.T) {
		w := serveHealth(NewHealthHandler("http", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"healthy","backend":"http","idempotency_store":"disabled"}`, w.Body.String())
	})

	t.Run("store unreachable", func(t *testing.T) {
		w := serveHealth(NewHealthHandler("http", downStore{}))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"unhealthy","backend":"http","idempotency_store":"redis","error":"idempotency store unreachable"}`, w.Body.String())
	})
}
