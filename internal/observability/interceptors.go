package observability

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// MetricsUnaryInterceptor collects Prometheus metrics for unary RPCs.
func MetricsUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		method := info.FullMethod

		ActiveRequests.WithLabelValues(method).Inc()
		defer ActiveRequests.WithLabelValues(method).Dec()

		start := time.Now()
		defer func() {
			RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
		}()

		resp, err := handler(ctx, req)

		RequestsTotal.WithLabelValues(method, status.Code(err).String()).Inc()
		return resp, err
	}
}

// TracingUnaryInterceptor instruments RPCs with OpenTelemetry spans.
func TracingUnaryInterceptor(tracer trace.Tracer) grpc.UnaryServerInterceptor {
	if tracer == nil {
		tracer = otel.Tracer("expense-assistant/server")
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, span := tracer.Start(ctx, info.FullMethod, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		span.SetAttributes(
			attribute.String("rpc.system", "grpc"),
			attribute.String("rpc.service", serviceFromMethod(info.FullMethod)),
			attribute.String("rpc.method", info.FullMethod),
		)

		resp, err := handler(ctx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "ok")
		}
		return resp, err
	}
}

// serviceFromMethod turns "/pkg.Service/Method" into "pkg.Service".
func serviceFromMethod(fullMethod string) string {
	s := strings.TrimPrefix(fullMethod, "/")
	if i := strings.LastIndex(s, "/"); i > 0 {
		return s[:i]
	}
	return s
}
