// Package config loads process configuration once at startup using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App     AppConfig     `koanf:"app"     validate:"required"`
	DB      DBConfig      `koanf:"db"      validate:"required"`
	JWT     JWTConfig     `koanf:"jwt"     validate:"required"`
	GRPC    GRPCConfig    `koanf:"grpc"    validate:"required"`
	Metrics MetricsConfig `koanf:"metrics"`
	Log     LogConfig     `koanf:"log"     validate:"required"`
}

type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
	SeedRoles   bool   `koanf:"seed_roles"`
}

type DBConfig struct {
	Driver          string `koanf:"driver"            validate:"required,oneof=postgres sqlite"`
	Host            string `koanf:"host"              validate:"required_if=Driver postgres"`
	Port            int    `koanf:"port"              validate:"required_if=Driver postgres,omitempty,min=1,max=65535"`
	User            string `koanf:"user"              validate:"required_if=Driver postgres"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name"              validate:"required"`
	SSLMode         string `koanf:"sslmode"`
	TimeZone        string `koanf:"timezone"`
	MaxOpenConns    int    `koanf:"max_open_conns"    validate:"min=0"`
	MaxIdleConns    int    `koanf:"max_idle_conns"    validate:"min=0"`
	ConnMaxLifeTime int    `koanf:"conn_max_lifetime" validate:"min=0"` // minutes
	Debug           bool   `koanf:"debug"`
}

// JWTConfig mirrors the Jwt:Key / Jwt:AccessTokenExpirationMinutes pair.
// The expiration is kept as text and parsed as a float number of minutes.
type JWTConfig struct {
	Key                          string `koanf:"key"                             validate:"required"`
	AccessTokenExpirationMinutes string `koanf:"access_token_expiration_minutes" validate:"required"`
	Issuer                       string `koanf:"issuer"`
	Audience                     string `koanf:"audience"`
}

// AccessTokenTTL parses AccessTokenExpirationMinutes.
func (c JWTConfig) AccessTokenTTL() (time.Duration, error) {
	minutes, err := strconv.ParseFloat(strings.TrimSpace(c.AccessTokenExpirationMinutes), 64)
	if err != nil {
		return 0, fmt.Errorf("jwt.access_token_expiration_minutes %q: %w", c.AccessTokenExpirationMinutes, err)
	}
	if minutes <= 0 {
		return 0, fmt.Errorf("jwt.access_token_expiration_minutes must be positive, got %v", minutes)
	}
	return time.Duration(minutes * float64(time.Minute)), nil
}

type GRPCConfig struct {
	CoreAddr string `koanf:"core_addr" validate:"required"`
	AuthAddr string `koanf:"auth_addr" validate:"required"`
	// RequireAuth makes the catalog service demand a bearer token.
	RequireAuth bool `koanf:"require_auth"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr" validate:"required_if=Enabled true"`
}

type LogConfig struct {
	Mode string        `koanf:"mode" validate:"required,oneof=dev prod test"`
	File LogFileConfig `koanf:"file"`
}

type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

func defaults() map[string]any {
	return map[string]any{
		"app.name":        "losalerces",
		"app.environment": "local",
		"app.seed_roles":  true,

		"db.driver":            DriverPostgres,
		"db.host":              "postgres",
		"db.port":              5432,
		"db.user":              "losalerces",
		"db.password":          "losalerces",
		"db.name":              "losalerces_db",
		"db.sslmode":           "disable",
		"db.timezone":          "America/Santiago",
		"db.max_open_conns":    10,
		"db.max_idle_conns":    5,
		"db.conn_max_lifetime": 30,
		"db.debug":             false,

		"jwt.key":                             "",
		"jwt.access_token_expiration_minutes": "60",
		"jwt.issuer":                          "",
		"jwt.audience":                        "",

		"grpc.core_addr":    ":50051",
		"grpc.auth_addr":    ":50052",
		"grpc.require_auth": false,

		"metrics.enabled": true,
		"metrics.addr":    ":9090",

		"log.mode":             "dev",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/losalerces.log",
		"log.file.max_size":    100,
		"log.file.max_backups": 3,
		"log.file.max_age":     28,
		"log.file.compress":    true,
	}
}

// Load resolves configuration with the following precedence (highest first):
//  1. APP_ environment variables (a .env file, if present, is loaded into the environment first)
//  2. configs/<profile>.yaml
//  3. configs/base.yaml
//  4. defaults
//
// Nested keys use a double underscore: APP_JWT__ACCESS_TOKEN_EXPIRATION_MINUTES.
// The returned config is validated.
func Load(profile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := loadFileIfExists(k, "configs/base.yaml"); err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		if err := loadFileIfExists(k, fmt.Sprintf("configs/%s.yaml", profile)); err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	if err := k.Load(env.Provider("APP_", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps APP_DB__MAX_OPEN_CONNS to db.max_open_conns.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "APP_")), "__", ".")
}

func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return k.Load(file.Provider(path), yaml.Parser())
}
