package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestEnv(t *testing.T) {
	t.Setenv("APP_APP__ENVIRONMENT", "test")
	t.Setenv("APP_DB__DRIVER", "sqlite")
	t.Setenv("APP_DB__NAME", ":memory:")
	t.Setenv("APP_JWT__KEY", "cmd-test-signing-key-cmd-test-signing-key")
	t.Setenv("APP_METRICS__ENABLED", "false")
	t.Setenv("APP_LOG__MODE", "test")
}

func TestRun_ReturnsStartupErrors(t *testing.T) {
	setTestEnv(t)
	t.Setenv("APP_GRPC__AUTH_ADDR", "127.0.0.1")

	err := run(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen 127.0.0.1")
}

func TestRun_ReturnsConfigErrors(t *testing.T) {
	setTestEnv(t)
	t.Setenv("APP_JWT__KEY", "")

	err := run(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.key is required")
}
