package tsdb_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nerrad567/devparam-core/internal/infrastructure/config"
	"github.com/nerrad567/devparam-core/internal/infrastructure/tsdb"
)

// fakeInflux is a minimal InfluxDB v2 endpoint: it answers pings and
// captures line-protocol writes.
type fakeInflux struct {
	mu     sync.Mutex
	bodies []string
}

func (f *fakeInflux) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/ping"):
			w.WriteHeader(http.StatusNoContent)
		case strings.Contains(r.URL.Path, "/write"):
			body, _ := io.ReadAll(r.Body)
			f.mu.Lock()
			f.bodies = append(f.bodies, string(body))
			f.mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusOK)
		}
	})
}

func (f *fakeInflux) received() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.bodies, "\n")
}

func testConfig(url string) config.TSDBConfig {
	return config.TSDBConfig{
		Enabled:       true,
		URL:           url,
		Token:         "test-token",
		Org:           "devparam",
		Bucket:        "param_changes",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:0")
	cfg.Enabled = false

	_, err := tsdb.Connect(cfg)
	if !errors.Is(err, tsdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := tsdb.Connect(testConfig("http://127.0.0.1:59999"))
	if !errors.Is(err, tsdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestWriteParamChange(t *testing.T) {
	fake := &fakeInflux{}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client, err := tsdb.Connect(testConfig(server.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Fatal("IsConnected() = false after Connect()")
	}

	client.WriteParamChange("card0", 7, 0x1, 500)
	client.WriteGroupDestroyed("card0", 7, 1)
	client.Flush()

	got := fake.received()
	if !strings.Contains(got, "param_change") {
		t.Errorf("write body missing param_change measurement: %q", got)
	}
	if !strings.Contains(got, "device=card0") || !strings.Contains(got, "param=0x1") {
		t.Errorf("write body missing tags: %q", got)
	}
	if !strings.Contains(got, "value=500i") {
		t.Errorf("write body missing value field: %q", got)
	}
	if !strings.Contains(got, "group_destroyed") {
		t.Errorf("write body missing group_destroyed measurement: %q", got)
	}
}

func TestWriteAfterClose_IsNoop(t *testing.T) {
	fake := &fakeInflux{}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client, err := tsdb.Connect(testConfig(server.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	client.Close()

	before := fake.received()
	client.WriteParamChange("card0", 1, 0x1, 1)
	client.Flush()
	if got := fake.received(); got != before {
		t.Errorf("write after Close() reached the server: %q", got)
	}

	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
}

func TestHealthCheck(t *testing.T) {
	fake := &fakeInflux{}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client, err := tsdb.Connect(testConfig(server.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	client.Close()
	if err := client.HealthCheck(context.Background()); !errors.Is(err, tsdb.ErrNotConnected) {
		t.Errorf("HealthCheck() after Close() error = %v, want ErrNotConnected", err)
	}

	var nilClient *tsdb.Client
	if nilClient.IsConnected() {
		t.Error("nil client IsConnected() = true")
	}
}
