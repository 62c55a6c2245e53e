package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestUnaryServerInterceptor_CountsByCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)
	icpt := m.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/svc/Method"}

	_, err := icpt(context.Background(), nil, info, func(context.Context, any) (any, error) { return "ok", nil })
	require.NoError(t, err)
	_, err = icpt(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.NotFound, "missing")
	})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/svc/Method", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/svc/Method", "NotFound")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestOpsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics("test", reg)

	healthy := NewOpsHandler(reg, ReadinessCheck{Name: "db", Check: func(context.Context) error { return nil }})
	failing := NewOpsHandler(reg, ReadinessCheck{Name: "db", Check: func(context.Context) error { return errors.New("down") }})

	get := func(h http.Handler, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, get(healthy, "/-/live").Code)
	assert.Equal(t, http.StatusOK, get(healthy, "/-/ready").Code)

	rec := get(failing, "/-/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "down")

	rec = get(healthy, "/-/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "go_goroutines"))
}
