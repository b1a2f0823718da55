// internal/config/config.go
package config

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppConfig
	DBConfig
	SMTPConfig
	QueueConfig
	RedisConfig
	AuthConfig
	LogConfig
}

type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	FormBaseURL string `envconfig:"FORM_BASE_URL" default:"https://localhost:3000"` // base of the hosted form link put in every email
}

type DBConfig struct {
	DBUser            string        `envconfig:"DB_USER" required:"true"`
	DBPassword        string        `envconfig:"DB_PASSWORD"`
	DBHost            string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort            string        `envconfig:"DB_PORT" default:"5432"`
	DBName            string        `envconfig:"DB_NAME" required:"true"`
	DBSSLMode         string        `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	DBConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
}

type SMTPConfig struct {
	SMTPTimeout       time.Duration `envconfig:"SMTP_TIMEOUT" default:"10s"`
	TransportCacheTTL time.Duration `envconfig:"SMTP_TRANSPORT_CACHE_TTL" default:"15m"`
}

type QueueConfig struct {
	AMQPURL string `envconfig:"AMQP_URL"` // empty keeps campaign events in-process
}

type RedisConfig struct {
	RedisAddr     string        `envconfig:"REDIS_ADDR"` // empty uses the in-process send lock
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SendLockTTL   time.Duration `envconfig:"SEND_LOCK_TTL" default:"30s"`
}

type AuthConfig struct {
	JWTSecret  string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer  string        `envconfig:"JWT_ISSUER" default:"campaign-mailer"`
	TokenTTL   time.Duration `envconfig:"JWT_TTL" default:"12h"`
	BcryptCost int           `envconfig:"BCRYPT_COST" default:"10"`
}

type LogConfig struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads an optional .env file and then the process environment.
// The returned bool reports whether a .env file was found.
func Load(files ...string) (*Config, bool, error) {
	foundEnv := godotenv.Load(files...) == nil

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, foundEnv, fmt.Errorf("load config: %w", err)
	}
	return cfg, foundEnv, nil
}

// DSN builds the lib/pq connection URL. Credentials are escaped.
func (c DBConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.User(c.DBUser),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	if c.DBPassword != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	}
	return u.String()
}
