package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicadelvalle/agenda-api/pkg/metrics"
)

const requestIDKey = "request_id"

// RequestID ensures every request carries an id, generating one when the
// client did not send X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// Observe records request metrics and emits one structured log line per
// request.
func Observe(m *metrics.Collector, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.InFlightGauge.Inc()

		c.Next()

		m.InFlightGauge.Dec()
		elapsed := time.Since(start)

		// FullPath keeps cardinality bounded; raw URLs would explode the
		// metric label set.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(elapsed.Seconds())

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", elapsed),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
	}
}
