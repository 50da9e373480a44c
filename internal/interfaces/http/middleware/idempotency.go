package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/profilegateway/backend/internal/domain/shared"
	"github.com/profilegateway/backend/internal/infrastructure/logger"
	"github.com/profilegateway/backend/internal/infrastructure/telemetry"
	"github.com/profilegateway/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Idempotency header names
const (
	IdempotencyKeyHeader    = "Idempotency-Key"
	IdempotentReplayHeader  = "Idempotent-Replayed"
	idempotencyKeyNamespace = "v1"
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Store   shared.IdempotencyStore
	TTL     time.Duration
	Metrics *telemetry.ProfileMetrics
}

type idempotencyHeader struct {
	Key string `header:"Idempotency-Key" binding:"omitempty,max=255,printascii"`
}

// Idempotency replays the stored response of a POST or PUT that carries an
// Idempotency-Key already seen within the TTL.
//
// The first request with a key reserves it and its response is saved once
// the handler returns. A duplicate arriving while the first is still running
// gets 409. 5xx responses release the key so the client may retry. A key
// replayed with a different body gets 422 instead of the stored response.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.Store == nil {
		return passThrough
	}
	if cfg.TTL <= 0 {
		cfg.TTL = shared.DefaultIdempotencyTTL
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut {
			c.Next()
			return
		}

		var h idempotencyHeader
		if err := c.ShouldBindHeader(&h); err != nil {
			HandleValidationError(c, err)
			return
		}
		if h.Key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		log := logger.L(ctx)
		key := scopedIdempotencyKey(GetClientID(c), c.Request.Method, c.Request.URL.Path, h.Key)

		requestHash, ok := fingerprintBody(c)
		if !ok {
			return
		}

		reserved, err := cfg.Store.Reserve(ctx, key, cfg.TTL)
		if err != nil {
			log.Error("Idempotency store unavailable", zap.Error(err))
			abortWithCode(c, dto.ErrCodeServiceUnavailable, "Idempotency store unavailable")
			return
		}

		if !reserved {
			replay(c, cfg, key, requestHash)
			return
		}

		rec := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = rec

		// Background context: the outcome must be stored even if the client
		// has gone away.
		storeCtx := context.WithoutCancel(ctx)
		defer func() {
			if r := recover(); r != nil {
				releaseKey(storeCtx, cfg.Store, key)
				panic(r)
			}
		}()

		c.Next()

		status := rec.Status()
		if status >= http.StatusInternalServerError {
			releaseKey(storeCtx, cfg.Store, key)
			return
		}

		resp := shared.StoredResponse{
			StatusCode:  status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
			RequestHash: requestHash,
		}
		if err := cfg.Store.Save(storeCtx, key, resp, cfg.TTL); err != nil {
			log.Error("Failed to save idempotent response", zap.Error(err))
			releaseKey(storeCtx, cfg.Store, key)
		}
	}
}

func replay(c *gin.Context, cfg IdempotencyConfig, key, requestHash string) {
	ctx := c.Request.Context()

	stored, err := cfg.Store.Load(ctx, key)
	if err != nil {
		logger.L(ctx).Error("Failed to load idempotent response", zap.Error(err))
		abortWithCode(c, dto.ErrCodeServiceUnavailable, "Idempotency store unavailable")
		return
	}
	if stored == nil {
		abortWithCode(c, dto.ErrCodeConflict, "A request with this Idempotency-Key is already in progress")
		return
	}
	if stored.RequestHash != "" && stored.RequestHash != requestHash {
		logger.L(ctx).Warn("Idempotency-Key reused with a different body")
		abortWithCode(c, dto.ErrCodeIdempotencyKeyReused, "Idempotency-Key was already used with a different request body")
		return
	}

	cfg.Metrics.RecordReplay(ctx, c.Request.Method)
	logger.L(ctx).Debug("Replaying idempotent response", zap.Int("status", stored.StatusCode))

	c.Header(IdempotentReplayHeader, "true")
	c.Data(stored.StatusCode, stored.ContentType, stored.Body)
	c.Abort()
}

// fingerprintBody hashes the request body and puts it back for the handler.
func fingerprintBody(c *gin.Context) (string, bool) {
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithCode(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
			return "", false
		}
		abortWithCode(c, dto.ErrCodeBadRequest, "Failed to read request body")
		return "", false
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), true
}

func releaseKey(ctx context.Context, store shared.IdempotencyStore, key string) {
	if err := store.Release(ctx, key); err != nil {
		logger.L(ctx).Warn("Failed to release idempotency key", zap.Error(err))
	}
}

func abortWithCode(c *gin.Context, code, message string) {
	c.Set(ErrorCodeKey, code)
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// scopedIdempotencyKey binds a client key to the caller and the target
// resource, and hashes it so store keys have a fixed length.
func scopedIdempotencyKey(clientID, method, path, key string) string {
	sum := sha256.Sum256([]byte(clientID + "\x00" + method + "\x00" + path + "\x00" + key))
	return idempotencyKeyNamespace + ":" + hex.EncodeToString(sum[:])
}

// recordingWriter copies the response body while writing it through.
type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
