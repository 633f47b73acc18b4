package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSecret = "test-secret-key-at-least-32-chars!"

// writeConfig writes a temporary config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
device:
  id: "card0"
  name: "Test GPU"
  priority_min: -2047
  priority_max: 2047
  max_display_boost: 3
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  enabled: true
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8086
security:
  auth_policy: "group-access"
  jwt:
    secret: "`+testSecret+`"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.ID != "card0" {
		t.Errorf("Device.ID = %q, want %q", cfg.Device.ID, "card0")
	}
	if cfg.Device.MaxDisplayBoost != 3 {
		t.Errorf("Device.MaxDisplayBoost = %d, want 3", cfg.Device.MaxDisplayBoost)
	}
	if cfg.Security.AuthPolicy != AuthPolicyGroupAccess {
		t.Errorf("Security.AuthPolicy = %q, want %q", cfg.Security.AuthPolicy, AuthPolicyGroupAccess)
	}
	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
security:
  jwt:
    secret: "`+testSecret+`"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Security.AuthPolicy != AuthPolicyCapability {
		t.Errorf("default AuthPolicy = %q, want %q", cfg.Security.AuthPolicy, AuthPolicyCapability)
	}
	if !cfg.Groups.Enabled {
		t.Error("Groups.Enabled should default to true")
	}
	if cfg.Device.PriorityMin >= cfg.Device.PriorityMax {
		t.Errorf("default priority window invalid: [%d, %d]", cfg.Device.PriorityMin, cfg.Device.PriorityMax)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "missing device id",
			mutate:  func(c *Config) { c.Device.ID = "" },
			wantMsg: "device.id",
		},
		{
			name:    "inverted priority window",
			mutate:  func(c *Config) { c.Device.PriorityMin = 10; c.Device.PriorityMax = -10 },
			wantMsg: "priority_min",
		},
		{
			name: "default boost above max",
			mutate: func(c *Config) {
				c.Device.MaxDisplayBoost = 2
				c.Device.DefaultDisplayBoost = 5
			},
			wantMsg: "default_display_boost",
		},
		{
			name:    "unknown auth policy",
			mutate:  func(c *Config) { c.Security.AuthPolicy = "everyone" },
			wantMsg: "auth_policy",
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "short" },
			wantMsg: "32 characters",
		},
		{
			name:    "bad qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantMsg: "mqtt.qos",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Security.JWT.Secret = testSecret
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() error = %q, want substring %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "/tmp/from-file.db"
`)

	t.Setenv("DEVPARAM_DATABASE_PATH", "/tmp/from-env.db")
	t.Setenv("DEVPARAM_JWT_SECRET", testSecret)
	t.Setenv("DEVPARAM_AUTH_POLICY", AuthPolicyGroupAccess)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/from-env.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
	if cfg.Security.JWT.Secret != testSecret {
		t.Error("JWT secret env override not applied")
	}
	if cfg.Security.AuthPolicy != AuthPolicyGroupAccess {
		t.Errorf("AuthPolicy = %q, want env override", cfg.Security.AuthPolicy)
	}
}
