package server

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/procurement-tracker/internal/common"
)

const headerRequestID = "X-Request-ID"

// RequestID propagates or generates a request id and stores it on the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(headerRequestID, id)
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// RequestLogger logs one line per request, with the level following the status class.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		log := common.LoggerFromContext(c.Request.Context(), logger)
		attrs := []any{
			"status", status,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"elapsed_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		switch {
		case status >= 500:
			log.Error("http.request", attrs...)
		case status >= 400:
			log.Warn("http.request", attrs...)
		default:
			log.Info("http.request", attrs...)
		}
	}
}

// Recovery turns a handler panic into a 500.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				common.LoggerFromContext(c.Request.Context(), logger).Error("http.panic",
					"error", rec,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      "internal server error",
					"request_id": common.RequestIDFromContext(c.Request.Context()),
				})
			}
		}()
		c.Next()
	}
}
