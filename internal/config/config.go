package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Messaging MessagingConfig `mapstructure:"messaging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	// Timezone is the IANA location whose calendar date counts as "today"
	// for overdue and future task queries.
	Timezone string `mapstructure:"timezone" validate:"required,timezone"`
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gt=0"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret            string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int           `mapstructure:"token_lifetime_minutes" validate:"gt=0,lte=1440"`
	BcryptCost           int           `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
	RequireToken         bool          `mapstructure:"require_token"`
	LoginMaxAttempts     int           `mapstructure:"login_max_attempts" validate:"gt=0"`
	LoginLockout         time.Duration `mapstructure:"login_lockout" validate:"gt=0"`
}

// CORSConfig controls cross-origin access to the API.
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" validate:"gte=0"`
}

// RateLimitConfig controls per-client throttling of the authentication endpoints.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int     `mapstructure:"burst" validate:"gt=0"`
}

// RedisConfig points at the Redis instance used for failed-login tracking.
// An empty Addr disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// MessagingConfig points at the RabbitMQ broker that receives task events.
// An empty AMQPURL disables publishing.
type MessagingConfig struct {
	AMQPURL  string `mapstructure:"amqp_url" validate:"omitempty,url"`
	Exchange string `mapstructure:"exchange" validate:"required_with=AMQPURL"`
}
