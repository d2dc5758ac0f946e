package telemetry

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
)

const instrumentationName = "github.com/jsamuelsen/quotekeeper/internal/platform/telemetry"

// HeaderTraceID carries the request's trace ID back to the caller.
const HeaderTraceID = "X-Trace-ID"

// unmatchedRoute labels requests gin could not route, keeping metric
// cardinality bounded.
const unmatchedRoute = "unmatched"

// Middleware is the inbound instrumentation chain, in order: an otelgin
// server span, the X-Trace-ID header, and the request metrics.
func Middleware(serviceName string) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		otelgin.Middleware(serviceName),
		traceHeader,
		newServerMetrics().handle,
	}
}

// traceHeader echoes the trace ID and tags the request logger with it. It
// runs before the handler so the header lands ahead of the body.
func traceHeader(c *gin.Context) {
	ctx := c.Request.Context()

	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		id := sc.TraceID().String()
		c.Header(HeaderTraceID, id)
		c.Request = c.Request.WithContext(logging.WithTraceID(ctx, id))
	}

	c.Next()
}

type serverMetrics struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
	active   metric.Int64UpDownCounter
}

// newServerMetrics reports instrument errors to the otel error handler and
// carries on. The SDK returns a usable instrument alongside such errors.
func newServerMetrics() *serverMetrics {
	meter := otel.Meter(instrumentationName)

	var (
		m   serverMetrics
		err error
	)

	m.duration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of inbound HTTP requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		otel.Handle(err)
	}

	m.total, err = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Inbound HTTP requests by route and status"),
	)
	if err != nil {
		otel.Handle(err)
	}

	m.active, err = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Inbound HTTP requests in flight"),
	)
	if err != nil {
		otel.Handle(err)
	}

	return &m
}

func (m *serverMetrics) handle(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()

	route := c.FullPath()
	if route == "" {
		route = unmatchedRoute
	}

	inFlight := metric.WithAttributes(
		attribute.String("http.method", c.Request.Method),
		attribute.String("http.route", route),
	)

	m.active.Add(ctx, 1, inFlight)
	defer m.active.Add(ctx, -1, inFlight)

	c.Next()

	done := metric.WithAttributes(
		attribute.String("http.method", c.Request.Method),
		attribute.String("http.route", route),
		attribute.String("http.status_code", strconv.Itoa(c.Writer.Status())),
	)

	m.duration.Record(ctx, time.Since(start).Seconds(), done)
	m.total.Add(ctx, 1, done)
}
