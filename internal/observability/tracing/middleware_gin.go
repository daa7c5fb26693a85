package tracing

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/wardboard/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Path parameters that name a board entity. Only well-formed ids are copied
// onto spans.
var boardParams = map[string]attribute.Key{
	"area_id": "board.area_id",
	"id":      "board.target_id",
}

// GinMiddleware opens a server span per request, named after the matched
// route once routing has happened.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer("wardboard/http")
	return func(c *gin.Context) {
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, "HTTP "+c.Request.Method, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		span.SetName(c.Request.Method + " " + route)

		attrs := []attribute.KeyValue{
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", c.Writer.Status()),
			attribute.Int64("http.server_duration_ms", time.Since(start).Milliseconds()),
		}
		if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
			attrs = append(attrs, attribute.String("request_id", requestID))
		}
		attrs = append(attrs, paramAttributes(c)...)
		span.SetAttributes(SafeAttributes(attrs...)...)

		if c.Writer.Status() >= http.StatusInternalServerError {
			if lastErr := c.Errors.Last(); lastErr != nil {
				span.RecordError(SafeError(lastErr.Err))
			}
			span.SetStatus(codes.Error, http.StatusText(c.Writer.Status()))
		}
	}
}

func paramAttributes(c *gin.Context) []attribute.KeyValue {
	var out []attribute.KeyValue
	for _, p := range c.Params {
		key, ok := boardParams[p.Key]
		if !ok {
			continue
		}
		id, err := snowflake.ParseString(p.Value)
		if err != nil {
			continue
		}
		out = append(out, attribute.Int64(string(key), id.Int64()))
	}
	return out
}
