package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Mode string `yaml:"mode"` // debug | release | test
	} `yaml:"server"`
	Database Database `yaml:"database"`
	Auth     Auth     `yaml:"auth"`
	Economy  Economy  `yaml:"economy"`
	Media    struct {
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"media"`
	Nostr struct {
		RelayURL        string        `yaml:"relay_url"`
		SecretKey       string        `yaml:"secret_key"`
		Session         string        `yaml:"session"`
		PublishInterval time.Duration `yaml:"publish_interval"`
		BatchSize       int           `yaml:"batch_size"`
	} `yaml:"nostr"`
}

// Database selects the gorm dialector. Postgres uses the host/user fields,
// sqlite uses Path.
type Database struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	Port     string `yaml:"port"`
	SSLMode  string `yaml:"sslmode"`
	Path     string `yaml:"path"`
	DSN      string `yaml:"dsn"`
	LogLevel string `yaml:"log_level"` // silent | error | warn | info
}

// Auth configures access tokens and password hashing.
type Auth struct {
	Secret     string `yaml:"secret"`
	ExpHour    int    `yaml:"exp_hour"`
	BcryptCost int    `yaml:"bcrypt_cost"`
	// Accounts registered with one of these emails get the admin role.
	AdminEmails []string `yaml:"admin_emails"`
}

// IsAdminEmail reports whether email is listed in AdminEmails.
func (a Auth) IsAdminEmail(email string) bool {
	for _, e := range a.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}

// Economy carries the tunable constants of the TL economy.
type Economy struct {
	InitialGrant      float64 `yaml:"initial_grant"`
	DefaultItemPool   float64 `yaml:"default_item_pool"`
	RevenueShare      float64 `yaml:"revenue_share"`
	BoostedMultiplier float64 `yaml:"boosted_multiplier"`
	ExchangeRate      float64 `yaml:"exchange_rate"`

	PocMin     float64 `yaml:"poc_min"`
	PocMax     float64 `yaml:"poc_max"`
	PocDefault float64 `yaml:"poc_default"`

	PocAuthRequest    float64 `yaml:"poc_auth_request"`
	PocApproved       float64 `yaml:"poc_approved"`
	PocApprovalDenied float64 `yaml:"poc_approval_denied"`
	PocDisputeUpheld  float64 `yaml:"poc_dispute_upheld"`
	PocFalseDispute   float64 `yaml:"poc_false_dispute"`

	StrikeThreshold int `yaml:"strike_threshold"`
	MinReasonLength int `yaml:"min_reason_length"`
}

// DefaultEconomy returns the production economy constants.
func DefaultEconomy() Economy {
	return Economy{
		InitialGrant:      1000,
		DefaultItemPool:   1000,
		RevenueShare:      0.7,
		BoostedMultiplier: 2.0,
		ExchangeRate:      0.5,
		PocMin:            -5,
		PocMax:            10,
		PocDefault:        1,
		PocAuthRequest:    0.1,
		PocApproved:       0.3,
		PocApprovalDenied: -0.5,
		PocDisputeUpheld:  -1.0,
		PocFalseDispute:   -2.0,
		StrikeThreshold:   3,
		MinReasonLength:   50,
	}
}

// GlobalConfig is the global configuration instance
var GlobalConfig Config

// DSN generates the PostgreSQL DSN from database config
func (d *Database) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host,
		d.User,
		d.Password,
		d.DBName,
		d.Port,
		d.SSLMode,
	)
}

func defaults() Config {
	var c Config
	c.Server.Port = 8000
	c.Server.Mode = "release"
	c.Database.Driver = "sqlite"
	c.Database.Path = "timelink.db"
	c.Database.LogLevel = "warn"
	c.Auth.ExpHour = 24
	c.Auth.BcryptCost = 10
	c.Economy = DefaultEconomy()
	c.Media.Timeout = 10 * time.Second
	c.Nostr.Session = "timelink-ledger"
	c.Nostr.PublishInterval = 5 * time.Second
	c.Nostr.BatchSize = 100
	return c
}

// LoadConfig reads and parses the YAML configuration file into GlobalConfig.
// A .env file next to the working directory, when present, is loaded first so
// that its variables can override file values.
func LoadConfig(filePath string) error {
	cfg, err := Load(filePath)
	if err != nil {
		return err
	}
	GlobalConfig = *cfg
	return nil
}

// Load reads a configuration file without touching GlobalConfig.
func Load(filePath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filePath, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("TIMELINK_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("TIMELINK_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("TIMELINK_AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("TIMELINK_AUTH_ADMIN_EMAILS"); v != "" {
		cfg.Auth.AdminEmails = strings.Split(v, ",")
	}
	if v := os.Getenv("TIMELINK_SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TIMELINK_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	return nil
}

// Validate checks required fields and economy bounds.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.DSN == "" {
			if c.Database.Host == "" {
				return errors.New("database.host is required for postgres")
			}
			if c.Database.User == "" {
				return errors.New("database.user is required for postgres")
			}
			if c.Database.DBName == "" {
				return errors.New("database.dbname is required for postgres")
			}
			if c.Database.Port == "" {
				return errors.New("database.port is required for postgres")
			}
			if c.Database.SSLMode == "" {
				return errors.New("database.sslmode is required for postgres")
			}
		}
	case "sqlite":
		if c.Database.Path == "" && c.Database.DSN == "" {
			return errors.New("database.path is required for sqlite")
		}
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Auth.Secret == "" {
		return errors.New("auth.secret is required")
	}
	if c.Auth.ExpHour <= 0 {
		return errors.New("auth.exp_hour must be positive")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.New("server.port must be between 1 and 65535")
	}
	if c.Nostr.RelayURL != "" && c.Nostr.SecretKey == "" {
		return errors.New("nostr.secret_key is required when nostr.relay_url is set")
	}
	return c.Economy.Validate()
}

// Validate checks that the economy constants are internally consistent.
func (e *Economy) Validate() error {
	if e.PocMin >= e.PocMax {
		return fmt.Errorf("economy.poc_min (%v) must be below economy.poc_max (%v)", e.PocMin, e.PocMax)
	}
	if e.PocDefault < e.PocMin || e.PocDefault > e.PocMax {
		return errors.New("economy.poc_default must lie within [poc_min, poc_max]")
	}
	if e.RevenueShare <= 0 || e.BoostedMultiplier <= 0 {
		return errors.New("economy.revenue_share and economy.boosted_multiplier must be positive")
	}
	if e.InitialGrant < 0 || e.DefaultItemPool <= 0 {
		return errors.New("economy.initial_grant must be >= 0 and economy.default_item_pool > 0")
	}
	if e.StrikeThreshold < 1 {
		return errors.New("economy.strike_threshold must be at least 1")
	}
	return nil
}
