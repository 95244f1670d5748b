package influxdb_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kevann/nosteq-core/internal/infrastructure/config"
	"github.com/kevann/nosteq-core/internal/infrastructure/influxdb"
)

// fakeInflux answers /ping and records line protocol sent to /api/v2/write.
type fakeInflux struct {
	mu    sync.Mutex
	lines []string
}

func (f *fakeInflux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ping":
		w.WriteHeader(http.StatusNoContent)
	case "/api/v2/write":
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		for _, l := range strings.Split(strings.TrimSpace(string(body)), "\n") {
			if l != "" {
				f.lines = append(f.lines, l)
			}
		}
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeInflux) written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lines...)
}

func connectFake(t *testing.T) (*influxdb.Client, *fakeInflux) {
	t.Helper()

	fake := &fakeInflux{}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client, err := influxdb.Connect(config.InfluxDBConfig{
		Enabled:       true,
		URL:           server.URL,
		Token:         "test-token",
		Org:           "nosteq",
		Bucket:        "inventory",
		BatchSize:     10,
		FlushInterval: 1,
	})
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() }) //nolint:errcheck // Test cleanup
	return client, fake
}

func TestConnect_Disabled(t *testing.T) {
	_, err := influxdb.Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := influxdb.Connect(config.InfluxDBConfig{Enabled: true, URL: server.URL})
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestClient_HealthCheck(t *testing.T) {
	client, _ := connectFake(t)

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	client.Close()
	if err := client.HealthCheck(context.Background()); !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("HealthCheck() after Close error = %v, want ErrNotConnected", err)
	}
}

func TestClient_WriteZoneCountsAndSyncRun(t *testing.T) {
	client, fake := connectFake(t)
	ts := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	client.WriteZoneCounts("ZONE A", map[string]int{"online": 10, "los": 2}, ts)
	client.WriteSyncRun("partial", 12, 0, 1500*time.Millisecond, ts)
	client.Flush()

	lines := fake.written()
	if len(lines) != 2 {
		t.Fatalf("wrote %d lines, want 2: %v", len(lines), lines)
	}

	checks := []struct {
		prefix string
		parts  []string
	}{
		{`onu_status,area=ZONE\ A `, []string{"online=10i", "los=2i", "total=12i"}},
		{"sync_run,result=partial ", []string{"saved=12i", "statuses=0i", "duration_ms=1500i"}},
	}

	for i, c := range checks {
		if !strings.HasPrefix(lines[i], c.prefix) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], c.prefix)
		}
		for _, p := range c.parts {
			if !strings.Contains(lines[i], p) {
				t.Errorf("line %d = %q, missing %q", i, lines[i], p)
			}
		}
	}
}

func TestClient_WritesAfterCloseAreDropped(t *testing.T) {
	client, fake := connectFake(t)
	client.Close()

	client.WriteZoneCounts("ZONE B", map[string]int{"online": 1}, time.Now())
	client.Flush()

	if n := len(fake.written()); n != 0 {
		t.Errorf("wrote %d lines after Close, want 0", n)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}
}

func TestClient_NilSafe(t *testing.T) {
	var client *influxdb.Client
	if err := client.Close(); err != nil {
		t.Errorf("nil Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("nil IsConnected() = true")
	}
	client.WriteZoneCounts("ZONE A", nil, time.Now())
}
