package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"birrificio/internal/core/reqctx"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

// Trace middleware adds request tracing context. The app is single-user
// and local, but every UI command still gets an id so its log lines can
// be correlated.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		traceID := c.GetHeader(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.New().String()
		}

		ctx := reqctx.WithTrace(c.Request.Context(), &reqctx.Trace{
			TraceID:   traceID,
			RequestID: requestID,
		})
		c.Request = c.Request.WithContext(ctx)

		c.Set("trace_id", traceID)
		c.Set("request_id", requestID)

		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)

		c.Next()
	}
}

// Year records the fiscal year path parameter into the request context so
// every log line downstream names the year it touched.
func Year() gin.HandlerFunc {
	return func(c *gin.Context) {
		if year := c.Param("year"); year != "" {
			ctx := reqctx.WithYear(c.Request.Context(), year)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
