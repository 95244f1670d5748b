package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Nosteq Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	API      APIConfig      `yaml:"api"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
	SmartOLT SmartOLTConfig `yaml:"smartolt"`
	Sync     SyncConfig     `yaml:"sync"`
	Security SecurityConfig `yaml:"security"`
}

// SiteConfig identifies the ISP deployment.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SmartOLTConfig contains the provisioning API credentials.
type SmartOLTConfig struct {
	// Subdomain is the tenant part of https://<subdomain>.smartolt.com.
	Subdomain string `yaml:"subdomain"`

	// BaseURL overrides the URL derived from Subdomain (tests, proxies).
	BaseURL string `yaml:"base_url,omitempty"`

	// APIKey is sent as the X-Token header. Set via NOSTEQ_SMARTOLT_API_KEY.
	APIKey string `yaml:"api_key"`

	// Timeout is the per-request timeout in seconds. Default: 30
	Timeout int `yaml:"timeout"`
}

// SyncConfig controls the background inventory refresh.
type SyncConfig struct {
	Enabled bool `yaml:"enabled"`

	// Interval between refresh attempts. Default: 5m
	Interval time.Duration `yaml:"interval"`

	// MaxAge is how long a stored snapshot is considered fresh. Default: 30m
	MaxAge time.Duration `yaml:"max_age"`

	// Locations enables the GPS coordinate refresh. Default: true
	Locations bool `yaml:"locations"`

	// LocationMaxAge is how long stored coordinates are considered fresh.
	// Default: 24h
	LocationMaxAge time.Duration `yaml:"location_max_age"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT token settings.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: NOSTEQ_SECTION_KEY
// For example: NOSTEQ_DATABASE_PATH, NOSTEQ_SMARTOLT_API_KEY
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "nosteq",
			Name: "Nosteq",
		},
		Database: DatabaseConfig{
			Path:        "./data/nosteq.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "nosteq-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		SmartOLT: SmartOLTConfig{
			Timeout: 30,
		},
		Sync: SyncConfig{
			Enabled:        true,
			Interval:       5 * time.Minute,
			MaxAge:         30 * time.Minute,
			Locations:      true,
			LocationMaxAge: 24 * time.Hour,
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				AccessTokenTTL: 60,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NOSTEQ_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("NOSTEQ_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("NOSTEQ_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("NOSTEQ_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("NOSTEQ_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	if v := os.Getenv("NOSTEQ_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv("NOSTEQ_SMARTOLT_SUBDOMAIN"); v != "" {
		cfg.SmartOLT.Subdomain = v
	}
	if v := os.Getenv("NOSTEQ_SMARTOLT_API_KEY"); v != "" {
		cfg.SmartOLT.APIKey = v
	}

	if v := os.Getenv("NOSTEQ_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
}

// Validate checks the configuration for errors and security issues.
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Sync.Enabled {
		if c.SmartOLT.Subdomain == "" && c.SmartOLT.BaseURL == "" {
			errs = append(errs, "smartolt.subdomain is required when sync is enabled")
		}
		if c.SmartOLT.APIKey == "" {
			errs = append(errs, "smartolt.api_key is required when sync is enabled (set NOSTEQ_SMARTOLT_API_KEY)")
		}
		if c.Sync.Interval <= 0 {
			errs = append(errs, "sync.interval must be positive")
		}
	}

	// Technician visibility is scoped by the token's subject, so a forged
	// token would expose another area's customers.
	const minJWTSecretLength = 32
	if c.Security.JWT.Secret == "" {
		errs = append(errs, "security.jwt.secret is required (set NOSTEQ_JWT_SECRET environment variable)")
	} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// SmartOLTBaseURL returns the API root for the configured tenant.
func (c *Config) SmartOLTBaseURL() string {
	if c.SmartOLT.BaseURL != "" {
		return strings.TrimRight(c.SmartOLT.BaseURL, "/")
	}
	return fmt.Sprintf("https://%s.smartolt.com/api", c.SmartOLT.Subdomain)
}

// ReadTimeout returns the read timeout as a Duration.
func (t APITimeoutConfig) ReadTimeout() time.Duration {
	return time.Duration(t.Read) * time.Second
}

// WriteTimeout returns the write timeout as a Duration.
func (t APITimeoutConfig) WriteTimeout() time.Duration {
	return time.Duration(t.Write) * time.Second
}

// IdleTimeout returns the idle timeout as a Duration.
func (t APITimeoutConfig) IdleTimeout() time.Duration {
	return time.Duration(t.Idle) * time.Second
}
