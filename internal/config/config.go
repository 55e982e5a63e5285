package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/marwanhaqiqi/be-task-management-system-new/internal/utils"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	Cache     CacheConfig
	App       AppConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	AllowOrigins []string
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	Path            string
	MigrationsPath  string
	LogLevel        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type RateLimitConfig struct {
	RequestsPerMin int
	BurstSize      int
	UserRequests   int
	UserWindow     time.Duration
}

type AuthConfig struct {
	JWTSecret string
}

type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

type AppConfig struct {
	Timezone           string
	Location           *time.Location
	ExposeErrorDetails bool
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func LoadConfig() (*Config, error) {
	env := utils.GetEnv("ENVIRONMENT", "development")

	cfg := &Config{
		Server: ServerConfig{
			Host:         utils.GetEnv("SERVER_HOST", "0.0.0.0"),
			Port:         utils.GetEnv("SERVER_PORT", "8080"),
			Environment:  env,
			ReadTimeout:  utils.GetEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: utils.GetEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  utils.GetEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			AllowOrigins: utils.GetEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Driver:          utils.GetEnv("DB_DRIVER", DriverPostgres),
			Host:            utils.GetEnv("DB_HOST", "localhost"),
			Port:            utils.GetEnv("DB_PORT", "5432"),
			User:            utils.GetEnv("DB_USER", "postgres"),
			Password:        utils.GetEnv("DB_PASSWORD", "postgres"),
			Name:            utils.GetEnv("DB_NAME", "task_management"),
			SSLMode:         utils.GetEnv("DB_SSLMODE", "disable"),
			Path:            utils.GetEnv("DB_PATH", "tasks.db"),
			MigrationsPath:  utils.GetEnv("MIGRATIONS_PATH", "file://migrations"),
			LogLevel:        utils.GetEnv("DB_LOG_LEVEL", "warn"),
			MaxOpenConns:    utils.GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    utils.GetEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: utils.GetEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: utils.GetEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Enabled:      utils.GetEnvAsBool("REDIS_ENABLED", true),
			Host:         utils.GetEnv("REDIS_HOST", "localhost"),
			Port:         utils.GetEnv("REDIS_PORT", "6379"),
			Password:     utils.GetEnv("REDIS_PASSWORD", ""),
			DB:           utils.GetEnvAsInt("REDIS_DB", 0),
			PoolSize:     utils.GetEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: utils.GetEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
			MaxRetries:   utils.GetEnvAsInt("REDIS_MAX_RETRIES", 3),
			DialTimeout:  utils.GetEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  utils.GetEnvAsDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: utils.GetEnvAsDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMin: utils.GetEnvAsInt("RATE_LIMIT_REQUESTS_PER_MIN", 120),
			BurstSize:      utils.GetEnvAsInt("RATE_LIMIT_BURST", 20),
			UserRequests:   utils.GetEnvAsInt("RATE_LIMIT_USER_REQUESTS", 60),
			UserWindow:     utils.GetEnvAsDuration("RATE_LIMIT_USER_WINDOW", time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret: utils.GetEnv("JWT_SECRET", ""),
		},
		Cache: CacheConfig{
			Enabled: utils.GetEnvAsBool("CACHE_ENABLED", true),
			TTL:     utils.GetEnvAsDuration("CACHE_TTL", 30*time.Second),
			Prefix:  utils.GetEnv("CACHE_PREFIX", "task-api:"),
		},
		App: AppConfig{
			Timezone:           utils.GetEnv("APP_TIMEZONE", "UTC"),
			ExposeErrorDetails: utils.GetEnvAsBool("EXPOSE_ERROR_DETAILS", env != "production"),
		},
	}

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.App.Timezone, err)
	}
	cfg.App.Location = loc

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if c.Auth.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET must be set in production")
		}
		c.Auth.JWTSecret = "default_secret_change_in_production"
	}

	if c.RateLimit.RequestsPerMin <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS_PER_MIN must be positive")
	}
	if c.RateLimit.BurstSize <= 0 {
		return errors.New("RATE_LIMIT_BURST must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// DSN builds the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}
