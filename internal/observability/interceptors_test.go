package observability

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestServiceFromMethod(t *testing.T) {
	assert.Equal(t, "expenseassistant.v1.AssistantService", serviceFromMethod("/expenseassistant.v1.AssistantService/ExtractExpense"))
	assert.Equal(t, "plain", serviceFromMethod("plain"))
	assert.Equal(t, "", serviceFromMethod(""))
}

func TestMetricsUnaryInterceptorCountsCodes(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Svc/Fail"}
	before := testutil.ToFloat64(RequestsTotal.WithLabelValues(info.FullMethod, codes.InvalidArgument.String()))

	_, err := MetricsUnaryInterceptor()(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.InvalidArgument, "bad")
	})
	require.Error(t, err)

	after := testutil.ToFloat64(RequestsTotal.WithLabelValues(info.FullMethod, codes.InvalidArgument.String()))
	assert.Equal(t, before+1, after)
	assert.Equal(t, 0.0, testutil.ToFloat64(ActiveRequests.WithLabelValues(info.FullMethod)))
}

func TestTracingUnaryInterceptorPassesThrough(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Svc/Ok"}
	resp, err := TracingUnaryInterceptor(nil)(context.Background(), "in", info, func(ctx context.Context, req any) (any, error) {
		return req.(string) + "-out", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "in-out", resp)
}
