package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Checkout pricing policies.
const (
	PricingClient = "client"
	PricingServer = "server"
)

// EnvProduction is the APP_ENV value that turns on strict secret checks.
const EnvProduction = "production"

// Config is the full process configuration.
type Config struct {
	Env            string        `env:"APP_ENV" envDefault:"development"`
	Log            Log
	HTTP           HTTPServer
	Database       Database      `envPrefix:"DB_"`
	Admin          Admin         `envPrefix:"ADMIN_"`
	Session        Session       `envPrefix:"SESSION_"`
	Email          Email
	CSRFKeyHex     string        `env:"CSRF_KEY"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	Pricing        string        `env:"CHECKOUT_PRICING" envDefault:"client"`
	RateLimit      float64       `env:"RATE_LIMIT_PER_SECOND" envDefault:"10"`
	SlowQueryMs    float64       `env:"SLOW_QUERY_MS" envDefault:"50"`
	SlowRequestMs  float64       `env:"SLOW_REQUEST_MS" envDefault:"200"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	csrfKey []byte
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port string `env:"PORT" envDefault:"3000"`
}

type Database struct {
	Path            string        `env:"PATH" envDefault:"communityhub.db"`
	BusyTimeoutMs   int           `env:"BUSY_TIMEOUT_MS" envDefault:"5000"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	ConnectAttempts int           `env:"CONNECT_ATTEMPTS" envDefault:"3"`
	ConnectBackoff  time.Duration `env:"CONNECT_BACKOFF" envDefault:"1s"`
}

// Admin is the single configured administrator credential pair.
type Admin struct {
	Email    string `env:"EMAIL" envDefault:"admin@communityhub.com"`
	Password string `env:"PASSWORD" envDefault:"admin123"`
}

type Session struct {
	Secret string        `env:"SECRET"`
	TTL    time.Duration `env:"TTL" envDefault:"24h"`
}

type Email struct {
	ResendAPIKey string `env:"RESEND_API_KEY"`
	From         string `env:"EMAIL_FROM" envDefault:"Community Hub <noreply@communityhub.com>"`
}

// Load reads an optional .env file, then parses the process environment.
// PRE: none
// POST: returns a validated Config with secrets filled in for development
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("config_dotenv_skipped", "reason", err.Error())
	}
	return parse(env.Options{})
}

// FromMap parses configuration from the given variables only.
func FromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) finish() error {
	c.Admin.Email = strings.ToLower(strings.TrimSpace(c.Admin.Email))
	if c.Admin.Email == "" || c.Admin.Password == "" {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD cannot be empty")
	}
	if c.Pricing != PricingClient && c.Pricing != PricingServer {
		return fmt.Errorf("CHECKOUT_PRICING must be %q or %q", PricingClient, PricingServer)
	}
	if c.RateLimit <= 0 {
		return errors.New("RATE_LIMIT_PER_SECOND must be positive")
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}

	if c.CSRFKeyHex != "" {
		key, err := hex.DecodeString(c.CSRFKeyHex)
		if err != nil || len(key) != 32 {
			return errors.New("CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		c.csrfKey = key
	} else if c.IsProduction() {
		return errors.New("CSRF_KEY is required in production")
	} else {
		c.csrfKey = randomBytes(32)
		slog.Warn("config_random_csrf_key", "hint", "set CSRF_KEY for stable tokens")
	}

	if c.Session.Secret == "" {
		if c.IsProduction() {
			return errors.New("SESSION_SECRET is required in production")
		}
		c.Session.Secret = hex.EncodeToString(randomBytes(32))
		slog.Warn("config_random_session_secret", "hint", "sessions won't survive restart; set SESSION_SECRET")
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return c.HTTP.Host + ":" + c.HTTP.Port
}

// CSRFKey returns the 32-byte CSRF authentication key.
func (c *Config) CSRFKey() []byte {
	return c.csrfKey
}

// SessionKey returns the session cookie signing key.
func (c *Config) SessionKey() []byte {
	return []byte(c.Session.Secret)
}

// DSN returns the SQLite connection string with pragmas applied to every connection.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)",
		c.Database.Path, c.Database.BusyTimeoutMs)
}

// TrustedOrigins returns the host[:port] of each allowed origin, as expected by CSRF checks.
func (c *Config) TrustedOrigins() []string {
	hosts := make([]string, 0, len(c.AllowedOrigins))
	for _, o := range c.AllowedOrigins {
		u, err := url.Parse(strings.TrimSpace(o))
		if err != nil || u.Host == "" {
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}

// LogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel()}
	if strings.ToLower(c.Log.Format) == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return b
}
