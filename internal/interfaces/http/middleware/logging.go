// Package middleware provides the gin middleware chain: request logging,
// CORS, per-client rate limiting, and metrics collection.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/partscout/partscout/internal/infrastructure/monitoring/logging"
)

// RequestIDKey is the gin context key carrying the per-request ID.
const RequestIDKey = "request_id"

// requestIDHeader is honored when the caller supplies their own ID.
const requestIDHeader = "X-Request-ID"

// RequestLogger assigns each request an ID and logs its outcome with
// latency.  Probe endpoints are logged at debug to keep the info stream
// readable.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	logger = logger.Named("http")
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(requestIDHeader, requestID)

		started := time.Now()
		c.Next()

		fields := []logging.Field{
			logging.String("request_id", requestID),
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("elapsed", time.Since(started)),
			logging.String("client_ip", c.ClientIP()),
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("request failed", fields...)
		case c.Writer.Status() >= 400:
			logger.Warn("request rejected", fields...)
		case c.Request.URL.Path == "/health" || c.Request.URL.Path == "/ready":
			logger.Debug("request completed", fields...)
		default:
			logger.Info("request completed", fields...)
		}
	}
}
