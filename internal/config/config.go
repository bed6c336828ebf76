package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(Load),
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type Config struct {
	AppName    string
	AppVersion string
	Env        string
	HTTPAddr   string

	DB            DBConfig
	Redis         RedisConfig
	Lock          LockConfig
	CORS          CORSConfig
	Observability ObservabilityConfig

	SeedOnStart bool
}

type DBConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LockConfig struct {
	TTL  time.Duration
	Wait time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type ObservabilityConfig struct {
	OTLPEndpoint   string
	OTLPProtocol   string
	MetricsEnabled bool
	LogLevel       string
}

func (c Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	return FromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "pricematrix")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.env", EnvProduction)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.dsn", "file:pricematrix.db?_pragma=busy_timeout(5000)")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.max_lifetime", 30*time.Minute)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("lock.ttl", 10*time.Second)
	v.SetDefault("lock.wait", 5*time.Second)
	v.SetDefault("cors.allowed_origins", "*")
	v.SetDefault("otlp.endpoint", "")
	v.SetDefault("otlp.protocol", "http")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("seed.on_start", false)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppName:    v.GetString("app.name"),
		AppVersion: v.GetString("app.version"),
		Env:        strings.ToLower(strings.TrimSpace(v.GetString("app.env"))),
		HTTPAddr:   v.GetString("http.addr"),
		DB: DBConfig{
			Driver:       strings.ToLower(strings.TrimSpace(v.GetString("db.driver"))),
			DSN:          v.GetString("db.dsn"),
			MaxOpenConns: v.GetInt("db.max_open_conns"),
			MaxIdleConns: v.GetInt("db.max_idle_conns"),
			MaxLifetime:  v.GetDuration("db.max_lifetime"),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(v.GetString("redis.addr")),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Lock: LockConfig{
			TTL:  v.GetDuration("lock.ttl"),
			Wait: v.GetDuration("lock.wait"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
		},
		Observability: ObservabilityConfig{
			OTLPEndpoint:   strings.TrimSpace(v.GetString("otlp.endpoint")),
			OTLPProtocol:   strings.ToLower(strings.TrimSpace(v.GetString("otlp.protocol"))),
			MetricsEnabled: v.GetBool("metrics.enabled"),
			LogLevel:       v.GetString("log.level"),
		},
		SeedOnStart: v.GetBool("seed.on_start"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DB.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if strings.TrimSpace(c.DB.DSN) == "" {
		return errors.New("DB_DSN is required")
	}
	if c.Lock.TTL <= 0 {
		return errors.New("LOCK_TTL must be positive")
	}
	switch c.Observability.OTLPProtocol {
	case "http", "grpc":
	default:
		return fmt.Errorf("unsupported OTLP_PROTOCOL %q", c.Observability.OTLPProtocol)
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
