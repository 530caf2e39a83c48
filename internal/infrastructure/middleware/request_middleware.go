package middleware

import (
	"net/http"
	"time"

	"unlistedtube/pkg/logger"
	"unlistedtube/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware propagates an incoming X-Request-ID or assigns one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := utils.SanitizeString(c.GetHeader(RequestIDHeader))
		if id == "" || len(id) > 128 {
			id = utils.GenerateRequestID()
		}

		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// LoggingMiddleware logs one line per request.
func LoggingMiddleware(cl *logger.ContextLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		cl.LogRequest(c.Request.Context(), c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start).Milliseconds())
		if len(c.Errors) > 0 && c.Writer.Status() >= http.StatusInternalServerError {
			cl.LogWarn(c.Request.Context(), "request finished with errors",
				zap.String("errors", c.Errors.String()))
		}
	}
}

// HTTPMetricsRecorder is satisfied by monitoring.PrometheusCollector.
type HTTPMetricsRecorder interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// MetricsMiddleware records request counts and latencies per route.
func MetricsMiddleware(recorder HTTPMetricsRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		recorder.RecordHTTPRequest(c.Request.Method, routeOf(c), c.Writer.Status(), time.Since(start))
	}
}
