package app

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/losalerces/backend/internal/config"
	"github.com/losalerces/backend/internal/db/dbtest"
	"github.com/losalerces/backend/internal/logger"
	"github.com/losalerces/backend/internal/observability"
	"github.com/losalerces/backend/internal/service"
)

func TestServeStopsOnCancel(t *testing.T) {
	reg := prometheus.NewRegistry()
	deps := &Deps{
		Config:   &config.Config{Metrics: config.MetricsConfig{Enabled: true, Addr: "127.0.0.1:0"}},
		Log:      logger.NewNop(),
		DB:       dbtest.Open(t),
		Registry: reg,
		Metrics:  observability.NewMetrics("test", reg),
	}
	srv, _ := service.NewServer(deps.Log, deps.Metrics)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- deps.Serve(ctx, srv, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestDatabaseCheck(t *testing.T) {
	deps := &Deps{DB: dbtest.Open(t)}
	check := deps.databaseCheck()
	assert.Equal(t, "database", check.Name)
	require.NoError(t, check.Check(context.Background()))
}
