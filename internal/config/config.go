// Package config loads the back-office configuration shared by the CLI and
// the gateway server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ambikamber/ambikamber.com/internal/core/pricing"
)

const (
	dirName   = ".ambikamber"
	fileName  = "backoffice.yaml"
	envPrefix = "AMBIKAMBER_"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	API     APIConfig     `yaml:"api"`
	Server  ServerConfig  `yaml:"server"`
	MySQL   MySQLConfig   `yaml:"mysql"`
	Redis   RedisConfig   `yaml:"redis"`
	Audit   AuditConfig   `yaml:"audit"`
	Session SessionConfig `yaml:"session"`
	Gate    GateConfig    `yaml:"gate"`
	Pricing PricingConfig `yaml:"pricing"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr" validate:"required"`
	GRPCAddr        string        `yaml:"grpc_addr" validate:"required"`
	CookieName      string        `yaml:"cookie_name" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type MySQLConfig struct {
	DSN             string        `yaml:"dsn" validate:"required"`
	MaxOpenConns    int           `yaml:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `yaml:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" validate:"required"`
	PoolSize int    `yaml:"pool_size" validate:"gte=1"`
}

type AuditConfig struct {
	Workers   int `yaml:"workers" validate:"gte=1"`
	QueueSize int `yaml:"queue_size" validate:"gte=1"`
}

type SessionConfig struct {
	TTL  time.Duration `yaml:"ttl"`
	File string        `yaml:"file"`
}

type GateConfig struct {
	IdleExpiry time.Duration `yaml:"idle_expiry"`
	LockTTL    time.Duration `yaml:"lock_ttl"`
}

type PricingConfig struct {
	Cart     pricing.Rule `yaml:"cart"`
	Checkout pricing.Rule `yaml:"checkout"`
}

func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:5000/api",
			Timeout: 15 * time.Second,
		},
		Server: ServerConfig{
			HTTPAddr:        ":8080",
			GRPCAddr:        ":50051",
			CookieName:      "ambikamber_session",
			ShutdownTimeout: 5 * time.Second,
		},
		MySQL: MySQLConfig{
			DSN:             "root:root@tcp(localhost:3306)/ambikamber?parseTime=true",
			MaxOpenConns:    20,
			MaxIdleConns:    10,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 20,
		},
		Audit: AuditConfig{
			Workers:   4,
			QueueSize: 1024,
		},
		Session: SessionConfig{
			TTL: 7 * 24 * time.Hour,
		},
		Gate: GateConfig{
			IdleExpiry: 30 * time.Minute,
			LockTTL:    30 * time.Second,
		},
		Pricing: PricingConfig{
			Cart:     pricing.CartRule,
			Checkout: pricing.CheckoutRule,
		},
	}
}

// DefaultPath is ~/.ambikamber/backoffice.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, dirName, fileName), nil
}

// Load reads path, creating it with defaults on first run, then applies
// AMBIKAMBER_* environment overrides and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := writeDefault(path); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Session.File == "" {
		cfg.Session.File = filepath.Join(filepath.Dir(path), "session.yaml")
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	strs := map[string]*string{
		"API_URL":      &c.API.BaseURL,
		"HTTP_ADDR":    &c.Server.HTTPAddr,
		"GRPC_ADDR":    &c.Server.GRPCAddr,
		"MYSQL_DSN":    &c.MySQL.DSN,
		"REDIS_ADDR":   &c.Redis.Addr,
		"SESSION_FILE": &c.Session.File,
	}
	for key, dst := range strs {
		if v, ok := lookup(envPrefix + key); ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"AUDIT_WORKERS": &c.Audit.Workers,
		"AUDIT_QUEUE":   &c.Audit.QueueSize,
	}
	for key, dst := range ints {
		v, ok := lookup(envPrefix + key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not a number", ErrInvalid, envPrefix, key, v)
		}
		*dst = n
	}

	durations := map[string]*time.Duration{
		"SESSION_TTL":      &c.Session.TTL,
		"GATE_IDLE_EXPIRY": &c.Gate.IdleExpiry,
	}
	for key, dst := range durations {
		v, ok := lookup(envPrefix + key)
		if !ok || v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q: %v", ErrInvalid, envPrefix, key, v, err)
		}
		*dst = d
	}
	return nil
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	positive := map[string]time.Duration{
		"session.ttl":      c.Session.TTL,
		"gate.idle_expiry": c.Gate.IdleExpiry,
		"gate.lock_ttl":    c.Gate.LockTTL,
	}
	for name, d := range positive {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalid, name)
		}
	}

	for name, r := range map[string]pricing.Rule{"cart": c.Pricing.Cart, "checkout": c.Pricing.Checkout} {
		if r.Shipping.Flat < 0 || r.Shipping.FreeAbove < 0 {
			return fmt.Errorf("%w: pricing.%s shipping must not be negative", ErrInvalid, name)
		}
		if r.Tax.Rate < 0 || r.Tax.Rate > 1 {
			return fmt.Errorf("%w: pricing.%s tax rate must be within [0, 1]", ErrInvalid, name)
		}
	}
	return nil
}
