package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env          string             `yaml:"env"`
	HTTP         HTTPConfig         `yaml:"http"`
	TravelAPI    TravelAPIConfig    `yaml:"travel_api"`
	Auth         AuthConfig         `yaml:"auth"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Kafka        KafkaConfig        `yaml:"kafka"`
	Cancellation CancellationConfig `yaml:"cancellation"`
	Bookings     BookingsConfig     `yaml:"bookings"`
	Worker       WorkerConfig       `yaml:"worker"`
	Log          LogConfig          `yaml:"log"`
}

// HTTPConfig.RateLimitRPS is the per-client request rate on /api/v1. Zero
// disables limiting.
type HTTPConfig struct {
	Address        string  `yaml:"address"`
	SwaggerDir     string  `yaml:"swagger_dir"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

type TravelAPIConfig struct {
	BaseURL        string `yaml:"base_url"`
	Token          string `yaml:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (t TravelAPIConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

type AuthConfig struct {
	// JWTSecret enables HS256 verification of inbound tokens. Empty means the
	// subject is read without verification and the travel API decides.
	JWTSecret string `yaml:"jwt_secret"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	CancellationsTopic string   `yaml:"cancellations_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
	PublishRetries     int      `yaml:"publish_retries"`
}

type CancellationConfig struct {
	// Store is either "memory" or "redis".
	Store              string `yaml:"store"`
	DialogTTLMinutes   int    `yaml:"dialog_ttl_minutes"`
	RequestLockSeconds int    `yaml:"request_lock_seconds"`
}

func (c CancellationConfig) DialogTTL() time.Duration {
	return time.Duration(c.DialogTTLMinutes) * time.Minute
}

func (c CancellationConfig) RequestLockTTL() time.Duration {
	return time.Duration(c.RequestLockSeconds) * time.Second
}

type BookingsConfig struct {
	ViewCacheTTLSeconds int `yaml:"view_cache_ttl_seconds"`
	LoadConcurrency     int `yaml:"load_concurrency"`
}

func (b BookingsConfig) ViewCacheTTL() time.Duration {
	return time.Duration(b.ViewCacheTTLSeconds) * time.Second
}

type WorkerConfig struct {
	AuditRetentionDays int `yaml:"audit_retention_days"`
	SweepMinutes       int `yaml:"sweep_minutes"`
}

func (w WorkerConfig) AuditRetention() time.Duration {
	return time.Duration(w.AuditRetentionDays) * 24 * time.Hour
}

func (w WorkerConfig) SweepInterval() time.Duration {
	return time.Duration(w.SweepMinutes) * time.Minute
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if token := os.Getenv("TRAVEL_API_TOKEN"); token != "" {
		cfg.TravelAPI.Token = token
	}
	cfg.applyDefaults()

	if cfg.TravelAPI.BaseURL == "" {
		return nil, fmt.Errorf("travel_api.base_url is required")
	}
	if cfg.Cancellation.RequestLockTTL() <= cfg.TravelAPI.Timeout() {
		return nil, fmt.Errorf("cancellation.request_lock_seconds (%d) must be larger than travel_api.timeout_seconds (%d)",
			cfg.Cancellation.RequestLockSeconds, cfg.TravelAPI.TimeoutSeconds)
	}
	if cfg.Cancellation.Store != "memory" && cfg.Cancellation.Store != "redis" {
		return nil, fmt.Errorf("unknown cancellation store %q", cfg.Cancellation.Store)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.RateLimitRPS > 0 && c.HTTP.RateLimitBurst == 0 {
		c.HTTP.RateLimitBurst = int(c.HTTP.RateLimitRPS) + 1
	}
	if c.TravelAPI.TimeoutSeconds == 0 {
		c.TravelAPI.TimeoutSeconds = 15
	}
	if c.Cancellation.Store == "" {
		c.Cancellation.Store = "memory"
	}
	if c.Cancellation.DialogTTLMinutes == 0 {
		c.Cancellation.DialogTTLMinutes = 30
	}
	if c.Cancellation.RequestLockSeconds == 0 {
		c.Cancellation.RequestLockSeconds = 30
	}
	if c.Bookings.ViewCacheTTLSeconds == 0 {
		c.Bookings.ViewCacheTTLSeconds = 30
	}
	if c.Bookings.LoadConcurrency == 0 {
		c.Bookings.LoadConcurrency = 8
	}
	if c.Kafka.CancellationsTopic == "" {
		c.Kafka.CancellationsTopic = "cancellations"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "travelbook-worker"
	}
	if c.Kafka.PublishRetries == 0 {
		c.Kafka.PublishRetries = 2
	}
	if c.Worker.AuditRetentionDays == 0 {
		c.Worker.AuditRetentionDays = 365
	}
	if c.Worker.SweepMinutes == 0 {
		c.Worker.SweepMinutes = 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
