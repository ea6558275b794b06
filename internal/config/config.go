package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration makes time.Duration parseable from "24h"-style YAML
// strings.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like 24h: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the plain time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	JWT      JWTConfig      `yaml:"jwt"`
	Match    MatchConfig    `yaml:"match"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`

	// URL, when set, wins over the individual fields. Usually injected
	// through FITBUDDY_DATABASE_DSN.
	URL string `yaml:"url"`
}

// StorageConfig selects and configures the profile image store.
type StorageConfig struct {
	// Backend is "local" or "s3".
	Backend   string `yaml:"backend"`
	LocalDir  string `yaml:"local_dir"`
	PublicURL string `yaml:"public_url"`
	S3        S3Config
}

// S3Config holds the S3 backend settings.
type S3Config struct {
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string   `yaml:"secret"`
	TTL    Duration `yaml:"ttl"`
}

// MatchConfig controls the match lifecycle.
type MatchConfig struct {
	PendingTTL    Duration `yaml:"pending_ttl"`
	SweepInterval Duration `yaml:"sweep_interval"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file and applies environment
// overrides. A missing file is not an error so the service can run on
// environment alone.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 5000},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "fitbuddy",
			DBName:  "fitbuddy",
			SSLMode: "disable",
		},
		Storage: StorageConfig{
			Backend:   "local",
			LocalDir:  "uploads/profiles",
			PublicURL: "/uploads/profiles",
		},
		JWT: JWTConfig{TTL: Duration(24 * time.Hour)},
		Match: MatchConfig{
			PendingTTL:    Duration(72 * time.Hour),
			SweepInterval: Duration(10 * time.Minute),
		},
		Log: LogConfig{Level: "info"},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FITBUDDY_JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("FITBUDDY_DATABASE_DSN"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("FITBUDDY_HOST"); v != "" {
		cfg.Server.Host = v
	}
}

// Validate rejects configurations the service must not start with.
// There is deliberately no fallback token secret.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is not configured: set jwt.secret or FITBUDDY_JWT_SECRET")
	}
	if c.JWT.TTL <= 0 {
		return errors.New("jwt ttl must be positive")
	}
	switch c.Storage.Backend {
	case "local", "s3":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
