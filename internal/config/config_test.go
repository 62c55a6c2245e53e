package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	t.Setenv("APP_JWT__KEY", "test-signing-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "losalerces", cfg.App.Name)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "60", cfg.JWT.AccessTokenExpirationMinutes)
	assert.Equal(t, ":50051", cfg.GRPC.CoreAddr)
	assert.Equal(t, ":50052", cfg.GRPC.AuthAddr)
	assert.Equal(t, "dev", cfg.Log.Mode)
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	t.Setenv("APP_JWT__KEY", "test-signing-key")
	t.Setenv("APP_JWT__ACCESS_TOKEN_EXPIRATION_MINUTES", "2.5")
	t.Setenv("APP_DB__DRIVER", "sqlite")
	t.Setenv("APP_DB__NAME", "file::memory:")
	t.Setenv("APP_DB__MAX_OPEN_CONNS", "3")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "test-signing-key", cfg.JWT.Key)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "file::memory:", cfg.DB.Name)
	assert.Equal(t, 3, cfg.DB.MaxOpenConns)

	ttl, err := cfg.JWT.AccessTokenTTL()
	require.NoError(t, err)
	assert.Equal(t, 150*time.Second, ttl)
}

func TestLoad_MissingSigningKeyIsFatal(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.key is required")
}

func TestLoad_UnparsableExpirationIsFatal(t *testing.T) {
	t.Setenv("APP_JWT__KEY", "test-signing-key")
	t.Setenv("APP_JWT__ACCESS_TOKEN_EXPIRATION_MINUTES", "soon")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_token_expiration_minutes")
}

func TestJWTConfig_AccessTokenTTL(t *testing.T) {
	tests := []struct {
		name    string
		minutes string
		want    time.Duration
		wantErr bool
	}{
		{name: "integer", minutes: "30", want: 30 * time.Minute},
		{name: "fraction", minutes: "0.5", want: 30 * time.Second},
		{name: "padded", minutes: " 15 ", want: 15 * time.Minute},
		{name: "zero", minutes: "0", wantErr: true},
		{name: "negative", minutes: "-1", wantErr: true},
		{name: "empty", minutes: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JWTConfig{Key: "k", AccessTokenExpirationMinutes: tt.minutes}.AccessTokenTTL()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate_SQLiteDoesNotNeedHost(t *testing.T) {
	cfg := &Config{
		App:  AppConfig{Name: "x", Environment: "test"},
		DB:   DBConfig{Driver: DriverSQLite, Name: "file::memory:"},
		JWT:  JWTConfig{Key: "k", AccessTokenExpirationMinutes: "5"},
		GRPC: GRPCConfig{CoreAddr: ":0", AuthAddr: ":0"},
		Log:  LogConfig{Mode: "test"},
	}
	assert.NoError(t, cfg.Validate())

	cfg.DB.Driver = DriverPostgres
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db.host is required")
}

func TestValidate_NamesSettingsAndEnvVars(t *testing.T) {
	cfg := &Config{
		App:  AppConfig{Name: "x", Environment: "staging"},
		DB:   DBConfig{Driver: DriverSQLite, Name: "file::memory:"},
		JWT:  JWTConfig{AccessTokenExpirationMinutes: "later"},
		GRPC: GRPCConfig{CoreAddr: ":0", AuthAddr: ":0"},
		Log:  LogConfig{Mode: "test", File: LogFileConfig{Enabled: true}},
	}

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "app.environment must be one of local, dev, qa, prod, test (env APP_APP__ENVIRONMENT)")
	assert.Contains(t, msg, "jwt.key is required (env APP_JWT__KEY)")
	assert.Contains(t, msg, "log.file.path is required when log.file.enabled is true (env APP_LOG__FILE__PATH)")
	assert.Contains(t, msg, "APP_JWT__ACCESS_TOKEN_EXPIRATION_MINUTES")
}

func TestEnvNameRoundTrips(t *testing.T) {
	for _, key := range []string{"jwt.key", "db.max_open_conns", "log.file.max_backups"} {
		assert.Equal(t, key, envKey(envName(key)))
	}
}
