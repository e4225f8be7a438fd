package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v10"
	mysqldriver "github.com/go-sql-driver/mysql"
)

const (
	// EnvDevelopment is the only environment allowed to run without secrets.
	// It must be selected explicitly with APP_ENV.
	EnvDevelopment = "development"
	// EnvProduction is used when APP_ENV is unset.
	EnvProduction = "production"
)

// DevJWTSecret is used when JWT_SECRET is unset in development. Never use it elsewhere.
const DevJWTSecret = "dev-only-insecure-jwt-secret"

// ErrMissingSecret is returned by Validate when a required secret is absent.
var ErrMissingSecret = errors.New("required secret is not set")

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Environment string `env:"APP_ENV" envDefault:"production"`
	SwaggerHost string `env:"SWAGGER_HOST"`
	BcryptCost  int    `env:"BCRYPT_COST" envDefault:"10"`

	HTTP     HTTPServer
	Log      Log
	JWT      JWT      `envPrefix:"JWT_"`
	MySQL    MySQL    `envPrefix:"DB_"`
	Redis    Redis    `envPrefix:"REDIS_"`
	Razorpay Razorpay `envPrefix:"RAZORPAY_"`
}

type HTTPServer struct {
	Host         string   `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port         string   `env:"HTTP_PORT" envDefault:"5000"`
	BasePath     string   `env:"HTTP_BASE_PATH"`
	AllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type JWT struct {
	Secret   string        `env:"SECRET"`
	Lifetime time.Duration `env:"LIFETIME" envDefault:"1h"`
}

type MySQL struct {
	Host           string        `env:"HOST" envDefault:"127.0.0.1"`
	Port           int           `env:"PORT" envDefault:"3306"`
	User           string        `env:"USER" envDefault:"root"`
	Password       string        `env:"PASSWORD"`
	Name           string        `env:"NAME" envDefault:"userdata"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
}

type Redis struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type Razorpay struct {
	KeyID     string `env:"KEY_ID"`
	KeySecret string `env:"KEY_SECRET"`
	Currency  string `env:"CURRENCY" envDefault:"INR"`
}

// Load builds Config from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// IsDevelopment reports whether insecure fallbacks are permitted.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// Validate rejects configurations that would run with missing signing or
// gateway credentials outside development. In development a missing JWT
// secret is replaced with DevJWTSecret and usedFallback is set.
func (c *Config) Validate() (usedFallback bool, err error) {
	if c.JWT.Lifetime <= 0 {
		return false, fmt.Errorf("JWT_LIFETIME must be positive, got %s", c.JWT.Lifetime)
	}
	if c.IsDevelopment() {
		if c.JWT.Secret == "" {
			c.JWT.Secret = DevJWTSecret
			return true, nil
		}
		return false, nil
	}

	var missing []error
	if c.JWT.Secret == "" {
		missing = append(missing, fmt.Errorf("%w: JWT_SECRET", ErrMissingSecret))
	}
	if c.Razorpay.KeyID == "" {
		missing = append(missing, fmt.Errorf("%w: RAZORPAY_KEY_ID", ErrMissingSecret))
	}
	if c.Razorpay.KeySecret == "" {
		missing = append(missing, fmt.Errorf("%w: RAZORPAY_KEY_SECRET", ErrMissingSecret))
	}
	return false, errors.Join(missing...)
}

// Addr is the listen address of the HTTP server.
func (h HTTPServer) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// DSN renders the go-sql-driver connection string.
func (m MySQL) DSN() string {
	dc := mysqldriver.NewConfig()
	dc.User = m.User
	dc.Passwd = m.Password
	dc.Net = "tcp"
	dc.Addr = net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
	dc.DBName = m.Name
	dc.ParseTime = true
	dc.Timeout = m.ConnectTimeout
	dc.Params = map[string]string{"charset": "utf8mb4"}
	return dc.FormatDSN()
}
