package middleware

import (
	"leaveflow/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// RequestID honors an inbound correlation id or mints one, and echoes it
// back so callers can stitch retries together. A request-scoped logger
// carrying the id is placed on the context for downstream layers.
func RequestID(logger ...*zap.Logger) gin.HandlerFunc {
	base := zap.L()
	if len(logger) > 0 && logger[0] != nil {
		base = logger[0]
	}

	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Set("request_id", rid)

		ctx := contextutil.WithRequestID(c.Request.Context(), rid)
		ctx = contextutil.WithLogger(ctx, base.With(zap.String("request_id", rid)))
		c.Request = c.Request.WithContext(ctx)

		c.Header(requestIDHeader, rid)
		c.Next()
	}
}
