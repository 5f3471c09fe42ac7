package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	Env       string
	App       AppConfig
	DB        DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Logger    LoggerConfig
}

// AppConfig holds configuration for the application servers
type AppConfig struct {
	GRPCPort               string
	HTTPPort               string
	ShutdownTimeoutSeconds int
}

// DatabaseConfig holds configuration for the database
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
	ConnMaxIdleTime int // seconds
}

// RedisConfig holds configuration for the Redis cache and rate limiter backend
type RedisConfig struct {
	Enabled     bool
	Host        string
	Port        string
	Password    string
	DB          int
	MaxRetries  int
	PoolSize    int
	MinIdleConn int
	CacheTTL    int // seconds
}

// RateLimitConfig holds configuration for the HTTP and gRPC rate limiters
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstCapacity     int
	WindowSeconds     int
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string
	Format           string
	OutputPath       string
	SlowQuerySeconds float64
	EnableSampling   bool
	ServiceName      string
	ServiceVersion   string
}

// LoadConfig reads configuration from app.env in path and from environment variables.
// Environment variables win over the file; both win over the defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("app") // Look for app.env
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	production := v.GetString("APP_ENV") == "production"
	setLoggerDefaults(v, production)

	cfg := &Config{
		Env: v.GetString("APP_ENV"),
		App: AppConfig{
			GRPCPort:               v.GetString("GRPC_PORT"),
			HTTPPort:               v.GetString("HTTP_PORT"),
			ShutdownTimeoutSeconds: v.GetInt("SHUTDOWN_TIMEOUT_SECONDS"),
		},
		DB: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("DB_DRIVER")),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			SQLitePath:      v.GetString("DB_SQLITE_PATH"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetInt("DB_CONN_MAX_LIFETIME_SECONDS"),
			ConnMaxIdleTime: v.GetInt("DB_CONN_MAX_IDLE_TIME_SECONDS"),
		},
		Redis: RedisConfig{
			Enabled:     v.GetBool("REDIS_ENABLED"),
			Host:        v.GetString("REDIS_HOST"),
			Port:        v.GetString("REDIS_PORT"),
			Password:    v.GetString("REDIS_PASSWORD"),
			DB:          v.GetInt("REDIS_DB"),
			MaxRetries:  v.GetInt("REDIS_MAX_RETRIES"),
			PoolSize:    v.GetInt("REDIS_POOL_SIZE"),
			MinIdleConn: v.GetInt("REDIS_MIN_IDLE_CONN"),
			CacheTTL:    v.GetInt("CACHE_TTL_SECONDS"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           v.GetBool("RATE_LIMIT_ENABLED"),
			RequestsPerSecond: v.GetFloat64("RATE_LIMIT_RPS"),
			BurstCapacity:     v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds:     v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Logger: LoggerConfig{
			Level:            v.GetString("LOG_LEVEL"),
			Format:           v.GetString("LOG_FORMAT"),
			OutputPath:       v.GetString("LOG_OUTPUT_PATH"),
			SlowQuerySeconds: v.GetFloat64("LOG_SLOW_QUERY_SECONDS"),
			EnableSampling:   v.GetBool("LOG_ENABLE_SAMPLING"),
			ServiceName:      v.GetString("SERVICE_NAME"),
			ServiceVersion:   v.GetString("SERVICE_VERSION"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("GRPC_PORT", "50051")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)

	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "rectangle_service")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_SQLITE_PATH", "rectangles.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_SECONDS", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_MAX_RETRIES", 3)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONN", 2)
	v.SetDefault("CACHE_TTL_SECONDS", 300)

	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)

	v.SetDefault("LOG_OUTPUT_PATH", "stdout")
	v.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	v.SetDefault("SERVICE_NAME", "rectangle-service")
	v.SetDefault("SERVICE_VERSION", "1.0.0")
}

// setLoggerDefaults depends on APP_ENV, which may come from app.env, so it runs after the file is read.
func setLoggerDefaults(v *viper.Viper, production bool) {
	if production {
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("LOG_FORMAT", "json")
		v.SetDefault("LOG_ENABLE_SAMPLING", true)
		return
	}
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOG_ENABLE_SAMPLING", false)
}

// Validate checks the configuration for values the application cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.App.HTTPPort == "" {
		errs = append(errs, errors.New("HTTP_PORT is required"))
	}
	if c.App.GRPCPort == "" {
		errs = append(errs, errors.New("GRPC_PORT is required"))
	}
	if c.App.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be positive"))
	}

	switch c.DB.Driver {
	case DriverSQLite:
		if c.DB.SQLitePath == "" {
			errs = append(errs, errors.New("DB_SQLITE_PATH is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.DB.Host == "" || c.DB.Name == "" {
			errs = append(errs, errors.New("DB_HOST and DB_NAME are required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver))
	}

	if c.Redis.Enabled && c.Redis.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL_SECONDS must be positive"))
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_RPS must be positive"))
		}
		if c.RateLimit.BurstCapacity <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_BURST must be positive"))
		}
		if c.RateLimit.WindowSeconds <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_WINDOW_SECONDS must be positive"))
		}
	}

	return errors.Join(errs...)
}

// DSN returns the PostgreSQL Data Source Name
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}
