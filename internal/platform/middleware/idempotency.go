package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/urbandrives/storefront/internal/platform/response"
)

// IdempotencyKeyHeader carries the client-generated key of a write request.
const IdempotencyKeyHeader = "Idempotency-Key"

const (
	idempotencyInFlightTTL  = 30 * time.Second
	idempotencyCompletedTTL = 24 * time.Hour
)

// IdempotencyStore records which keys are in flight or done.
type IdempotencyStore interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Complete(ctx context.Context, key string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// Idempotency refuses a repeated Idempotency-Key with 409. A failed request
// releases its key so the same submission can be retried. Keys are scoped to
// the caller's session when one is attached.
func Idempotency(store IdempotencyStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if cur, ok := CurrentSession(c); ok {
			key = cur.SessionID.String() + ":" + key
		}
		ctx := c.Request.Context()

		ok, err := store.Acquire(ctx, key, idempotencyInFlightTTL)
		if err != nil {
			logger.Warn("idempotency store unavailable, continuing", zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusConflict, response.Envelope{
				Error: &response.ErrorBody{Code: "duplicate_request", Message: "This request is already being processed"},
			})
			return
		}

		c.Next()

		if c.Writer.Status() < http.StatusBadRequest {
			if err := store.Complete(ctx, key, idempotencyCompletedTTL); err != nil {
				logger.Warn("failed to complete idempotency key", zap.String("key", key), zap.Error(err))
			}
			return
		}
		if err := store.Release(ctx, key); err != nil {
			logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
		}
	}
}
