package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// validJWTSecret meets the 32-character minimum.
const validJWTSecret = "test-secret-key-at-least-32-chars!"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
site:
  id: "nosteq-test"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8080
smartolt:
  subdomain: "nosteq"
  api_key: "abc123"
sync:
  enabled: true
  interval: "2m"
  max_age: "45m"
  location_max_age: "12h"
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "nosteq-test" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "nosteq-test")
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.Sync.Interval != 2*time.Minute {
		t.Errorf("Sync.Interval = %v, want 2m", cfg.Sync.Interval)
	}
	if cfg.Sync.MaxAge != 45*time.Minute {
		t.Errorf("Sync.MaxAge = %v, want 45m", cfg.Sync.MaxAge)
	}
	if cfg.Sync.LocationMaxAge != 12*time.Hour || !cfg.Sync.Locations {
		t.Errorf("Sync locations = %v/%v, want enabled with 12h", cfg.Sync.Locations, cfg.Sync.LocationMaxAge)
	}
	if cfg.SmartOLT.Timeout != 30 {
		t.Errorf("SmartOLT.Timeout = %d, want default 30", cfg.SmartOLT.Timeout)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid: [yaml: content")

	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_SyncRequiresCredentials(t *testing.T) {
	path := writeConfig(t, `
site:
  id: "nosteq-test"
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected error when sync is enabled without credentials")
	}
	if !strings.Contains(err.Error(), "smartolt.subdomain") || !strings.Contains(err.Error(), "smartolt.api_key") {
		t.Errorf("error = %q, want both smartolt fields reported", err)
	}
}

func TestLoad_EnvSuppliesSecrets(t *testing.T) {
	path := writeConfig(t, `
site:
  id: "nosteq-test"
smartolt:
  subdomain: "nosteq"
`)
	t.Setenv("NOSTEQ_SMARTOLT_API_KEY", "from-env")
	t.Setenv("NOSTEQ_JWT_SECRET", validJWTSecret)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SmartOLT.APIKey != "from-env" {
		t.Errorf("SmartOLT.APIKey = %q, want %q", cfg.SmartOLT.APIKey, "from-env")
	}
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Site:     SiteConfig{ID: "site-001"},
			Database: DatabaseConfig{Path: "/data/nosteq.db"},
			MQTT:     MQTTConfig{QoS: 1},
			API:      APIConfig{Port: 8080},
			Security: SecurityConfig{JWT: JWTConfig{Secret: validJWTSecret}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "missing site ID", mutate: func(c *Config) { c.Site.ID = "" }, wantErr: true},
		{name: "missing database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "invalid QoS", mutate: func(c *Config) { c.MQTT.QoS = 3 }, wantErr: true},
		{name: "invalid port low", mutate: func(c *Config) { c.API.Port = 0 }, wantErr: true},
		{name: "invalid port high", mutate: func(c *Config) { c.API.Port = 70000 }, wantErr: true},
		{name: "missing JWT secret", mutate: func(c *Config) { c.Security.JWT.Secret = "" }, wantErr: true},
		{name: "JWT secret too short", mutate: func(c *Config) { c.Security.JWT.Secret = "short" }, wantErr: true},
		{
			name: "sync enabled with credentials",
			mutate: func(c *Config) {
				c.Sync = SyncConfig{Enabled: true, Interval: time.Minute}
				c.SmartOLT = SmartOLTConfig{Subdomain: "nosteq", APIKey: "k"}
			},
		},
		{
			name: "sync enabled with base URL instead of subdomain",
			mutate: func(c *Config) {
				c.Sync = SyncConfig{Enabled: true, Interval: time.Minute}
				c.SmartOLT = SmartOLTConfig{BaseURL: "http://127.0.0.1:9000/api", APIKey: "k"}
			},
		},
		{
			name: "sync enabled with zero interval",
			mutate: func(c *Config) {
				c.Sync = SyncConfig{Enabled: true}
				c.SmartOLT = SmartOLTConfig{Subdomain: "nosteq", APIKey: "k"}
			},
			wantErr: true,
		},
		{
			name: "sync enabled without API key",
			mutate: func(c *Config) {
				c.Sync = SyncConfig{Enabled: true, Interval: time.Minute}
				c.SmartOLT = SmartOLTConfig{Subdomain: "nosteq"}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_SmartOLTBaseURL(t *testing.T) {
	cfg := &Config{SmartOLT: SmartOLTConfig{Subdomain: "nosteq"}}
	if got := cfg.SmartOLTBaseURL(); got != "https://nosteq.smartolt.com/api" {
		t.Errorf("SmartOLTBaseURL() = %q", got)
	}

	cfg.SmartOLT.BaseURL = "http://127.0.0.1:9000/api/"
	if got := cfg.SmartOLTBaseURL(); got != "http://127.0.0.1:9000/api" {
		t.Errorf("SmartOLTBaseURL() with override = %q", got)
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.API.Timeouts.ReadTimeout().Seconds(); got != 30 {
		t.Errorf("ReadTimeout() = %v, want 30", got)
	}
	if got := cfg.API.Timeouts.WriteTimeout().Seconds(); got != 45 {
		t.Errorf("WriteTimeout() = %v, want 45", got)
	}
	if got := cfg.API.Timeouts.IdleTimeout().Seconds(); got != 60 {
		t.Errorf("IdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("NOSTEQ_DATABASE_PATH", "/custom/path.db")
	t.Setenv("NOSTEQ_MQTT_HOST", "mqtt.example.com")
	t.Setenv("NOSTEQ_MQTT_USERNAME", "testuser")
	t.Setenv("NOSTEQ_MQTT_PASSWORD", "testpass")
	t.Setenv("NOSTEQ_API_HOST", "192.168.1.1")
	t.Setenv("NOSTEQ_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("NOSTEQ_SMARTOLT_SUBDOMAIN", "tenant")
	t.Setenv("NOSTEQ_SMARTOLT_API_KEY", "api-key")
	t.Setenv("NOSTEQ_JWT_SECRET", "jwt-secret")

	applyEnvOverrides(cfg)

	checks := []struct {
		field string
		got   string
		want  string
	}{
		{"Database.Path", cfg.Database.Path, "/custom/path.db"},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "testuser"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"API.Host", cfg.API.Host, "192.168.1.1"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
		{"SmartOLT.Subdomain", cfg.SmartOLT.Subdomain, "tenant"},
		{"SmartOLT.APIKey", cfg.SmartOLT.APIKey, "api-key"},
		{"Security.JWT.Secret", cfg.Security.JWT.Secret, "jwt-secret"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Site.ID == "" {
		t.Error("defaultConfig should have non-empty Site.ID")
	}
	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}
	if cfg.Sync.MaxAge != 30*time.Minute {
		t.Errorf("defaultConfig Sync.MaxAge = %v, want 30m", cfg.Sync.MaxAge)
	}
	if cfg.Sync.LocationMaxAge != 24*time.Hour {
		t.Errorf("defaultConfig Sync.LocationMaxAge = %v, want 24h", cfg.Sync.LocationMaxAge)
	}
}
