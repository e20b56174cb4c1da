package middleware

import (
	"regexp"

	"household-ledger/internal/messaging"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// TraceIDHeader is the header clients may send and always receive back
	TraceIDHeader = "X-Trace-ID"
	// TraceIDContextKey is the echo context key for the trace ID
	TraceIDContextKey = "trace_id"
)

// client-supplied IDs end up in logs and AMQP headers
var validTraceID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID assigns every request a trace ID. A well-formed X-Trace-ID from the
// client is reused, anything else is replaced with a new UUID. The ID is set on
// the echo context, the response header and the request context so ledger events
// published while serving the request carry it too.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			traceID := req.Header.Get(TraceIDHeader)
			if !validTraceID.MatchString(traceID) {
				traceID = uuid.New().String()
			}

			c.Set(TraceIDContextKey, traceID)
			c.Response().Header().Set(TraceIDHeader, traceID)
			c.SetRequest(req.WithContext(messaging.WithTraceID(req.Context(), traceID)))
			return next(c)
		}
	}
}

// GetTraceID returns the trace ID set by RequestID, or ""
func GetTraceID(c echo.Context) string {
	traceID, _ := c.Get(TraceIDContextKey).(string)
	return traceID
}
