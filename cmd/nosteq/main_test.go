package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kevann/nosteq-core/internal/auth"
)

const testSecret = "test-secret-for-development-only-0123456789"

// freePort returns a TCP port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("finding free port: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close() //nolint:errcheck // Only needed the port number
	return port
}

// writeConfig writes a config with MQTT, InfluxDB and sync disabled so run
// needs no external services.
func writeConfig(t *testing.T, dbPath string, port int, secret string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "test-config.yaml")

	configContent := fmt.Sprintf(`
site:
  id: test-site

database:
  path: %q
  wal_mode: true
  busy_timeout: 5

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: error
  format: text
  output: stdout

api:
  host: "127.0.0.1"
  port: %d
  timeouts:
    read: 5
    write: 5
    idle: 5

sync:
  enabled: false

security:
  jwt:
    secret: %q
    access_token_ttl: 15
`, dbPath, port, secret)

	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("NOSTEQ_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingSecret verifies config validation stops startup.
func TestRun_MissingSecret(t *testing.T) {
	t.Setenv("NOSTEQ_JWT_SECRET", "")
	t.Setenv("NOSTEQ_CONFIG", writeConfig(t, filepath.Join(t.TempDir(), "test.db"), 8080, ""))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil || !strings.Contains(err.Error(), "jwt.secret") {
		t.Fatalf("run() error = %v, want jwt secret validation error", err)
	}
}

// TestRun_SuccessfulStartupAndShutdown starts the service with every
// optional integration disabled, calls /health and cancels.
func TestRun_SuccessfulStartupAndShutdown(t *testing.T) {
	port := freePort(t)
	t.Setenv("NOSTEQ_JWT_SECRET", "")
	t.Setenv("NOSTEQ_CONFIG", writeConfig(t, filepath.Join(t.TempDir(), "test.db"), port, testSecret))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- run(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/api/v1/health", port)
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(url) //nolint:gosec,noctx // Test against a local server
		if err == nil {
			resp.Body.Close() //nolint:errcheck // Test cleanup
			if resp.StatusCode != http.StatusOK {
				t.Errorf("/health status = %d, want 200", resp.StatusCode)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not come up: %v", err)
		}
		select {
		case err := <-errCh:
			t.Fatalf("run() exited early: %v", err)
		case <-time.After(50 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("run() error = %v, want nil on shutdown", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run() did not return after cancel")
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("NOSTEQ_CONFIG", "")
	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}

	t.Setenv("NOSTEQ_CONFIG", "/custom/path/config.yaml")
	if path := getConfigPath(); path != "/custom/path/config.yaml" {
		t.Errorf("getConfigPath() = %q, want env override", path)
	}
}

func TestRunToken(t *testing.T) {
	t.Setenv("NOSTEQ_JWT_SECRET", testSecret)

	var out bytes.Buffer
	if err := runToken([]string{"-sub", "tech-001", "-role", "admin", "-ttl", "5m"}, &out); err != nil {
		t.Fatalf("runToken() error = %v", err)
	}

	claims, err := auth.ParseToken(strings.TrimSpace(out.String()), testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "tech-001" || !claims.IsAdmin() {
		t.Errorf("claims = %+v", claims)
	}
	if left := time.Until(claims.ExpiresAt.Time); left > 5*time.Minute || left < 4*time.Minute {
		t.Errorf("token expires in %v, want about 5m", left)
	}
}

func TestRunToken_FromConfig(t *testing.T) {
	t.Setenv("NOSTEQ_JWT_SECRET", "")
	t.Setenv("NOSTEQ_CONFIG", writeConfig(t, filepath.Join(t.TempDir(), "test.db"), 8080, testSecret))

	var out bytes.Buffer
	if err := runToken([]string{"-sub", "tech-002"}, &out); err != nil {
		t.Fatalf("runToken() error = %v", err)
	}

	claims, err := auth.ParseToken(strings.TrimSpace(out.String()), testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.IsAdmin() {
		t.Error("default role should be technician")
	}
	if left := time.Until(claims.ExpiresAt.Time); left > 15*time.Minute || left < 14*time.Minute {
		t.Errorf("token expires in %v, want configured 15m", left)
	}
}

func TestRunToken_Errors(t *testing.T) {
	t.Setenv("NOSTEQ_JWT_SECRET", testSecret)

	tests := []struct {
		name string
		args []string
	}{
		{"missing subject", nil},
		{"unknown role", []string{"-sub", "x", "-role", "owner"}},
		{"bad flag", []string{"-nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := runToken(tt.args, &out); err == nil {
				t.Errorf("runToken(%v) error = nil, want error", tt.args)
			}
		})
	}
}
