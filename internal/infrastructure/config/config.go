package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for devparam.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device   DeviceConfig   `yaml:"device"`
	Groups   GroupsConfig   `yaml:"groups"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	API      APIConfig      `yaml:"api"`
	TSDB     TSDBConfig     `yaml:"tsdb"`
	Logging  LoggingConfig  `yaml:"logging"`
	Security SecurityConfig `yaml:"security"`
}

// DeviceConfig identifies and describes the managed device.
type DeviceConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	// Priority window advertised by the device. A cgroup priority offset
	// is only legal if the user priority range shifted by the offset stays
	// inside [priority_min, priority_max].
	PriorityMin int64 `yaml:"priority_min"`
	PriorityMax int64 `yaml:"priority_max"`

	// MaxDisplayBoost is the highest display boost value the hardware
	// supports. Zero means the hardware has no display boost at all and
	// requests for it are rejected as unsupported.
	MaxDisplayBoost int64 `yaml:"max_display_boost"`

	// DefaultDisplayBoost is returned by the runtime accessor for groups
	// that have no boost configured.
	DefaultDisplayBoost int64 `yaml:"default_display_boost"`
}

// GroupsConfig controls the resource-group integration.
type GroupsConfig struct {
	// Enabled toggles the whole group-parameter subsystem. When false the
	// runtime accessors return defaults and the control API rejects
	// parameter requests as unsupported.
	Enabled bool `yaml:"enabled"`
}

// DatabaseConfig contains SQLite database settings for the audit trail.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings for event publishing.
type MQTTConfig struct {
	Enabled bool             `yaml:"enabled"`
	Broker  MQTTBrokerConfig `yaml:"broker"`
	Auth    MQTTAuthConfig   `yaml:"auth"`
	QoS     int              `yaml:"qos"`
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

// APIConfig contains HTTP control API settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// TSDBConfig contains InfluxDB settings for parameter-change history.
type TSDBConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Org     string `yaml:"org"`
	Bucket  string `yaml:"bucket"`

	// BatchSize is the number of points buffered before a write is
	// issued. FlushInterval (seconds) bounds how long a point can sit
	// in the buffer.
	BatchSize     int `yaml:"batch_size"`
	FlushInterval int `yaml:"flush_interval"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains authorization settings.
type SecurityConfig struct {
	// AuthPolicy selects how parameter requests are authorized:
	//   "capability":   caller needs the resource-admin capability or
	//                   device master status
	//   "group-access": caller needs write permission on the target
	//                   group's control file
	// The two policies are deliberate alternatives; see DESIGN.md.
	AuthPolicy string    `yaml:"auth_policy"`
	JWT        JWTConfig `yaml:"jwt"`
}

// JWTConfig contains API bearer token settings.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl"`
}

// Auth policy names accepted in security.auth_policy.
const (
	AuthPolicyCapability  = "capability"
	AuthPolicyGroupAccess = "group-access"
)

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: DEVPARAM_SECTION_KEY
// For example: DEVPARAM_DATABASE_PATH, DEVPARAM_JWT_SECRET
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
		Device: DeviceConfig{
			ID:                  "card0",
			Name:                "devparam device",
			PriorityMin:         -2047,
			PriorityMax:         2047,
			MaxDisplayBoost:     0,
			DefaultDisplayBoost: 0,
		},
		Groups: GroupsConfig{
			Enabled: true,
		},
		Database: DatabaseConfig{
			Path:        "./data/devparam.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "devparam-core",
			},
			QoS: 1,
		},
		TSDB: TSDBConfig{
			URL:           "http://localhost:8087",
			Org:           "devparam",
			Bucket:        "param_changes",
			BatchSize:     100,
			FlushInterval: 10,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8086,
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
		Security: SecurityConfig{
			AuthPolicy: AuthPolicyCapability,
			JWT: JWTConfig{
				AccessTokenTTL: 15,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: DEVPARAM_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DEVPARAM_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("DEVPARAM_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("DEVPARAM_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("DEVPARAM_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("DEVPARAM_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("DEVPARAM_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	if v := os.Getenv("DEVPARAM_TSDB_TOKEN"); v != "" {
		cfg.TSDB.Token = v
	}

	// Security - JWT secret (IMPORTANT: always override in production)
	if v := os.Getenv("DEVPARAM_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
	if v := os.Getenv("DEVPARAM_AUTH_POLICY"); v != "" {
		cfg.Security.AuthPolicy = v
	}
}

// Validate checks the configuration for errors and security issues.
func (c *Config) Validate() error {
	var errs []string

	if c.Device.ID == "" {
		errs = append(errs, "device.id is required")
	}
	if c.Device.PriorityMin >= c.Device.PriorityMax {
		errs = append(errs, "device.priority_min must be below device.priority_max")
	}
	if c.Device.MaxDisplayBoost < 0 {
		errs = append(errs, "device.max_display_boost must not be negative")
	}
	if c.Device.DefaultDisplayBoost < 0 || c.Device.DefaultDisplayBoost > c.Device.MaxDisplayBoost {
		errs = append(errs, "device.default_display_boost must be within [0, device.max_display_boost]")
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

	switch c.Security.AuthPolicy {
	case AuthPolicyCapability, AuthPolicyGroupAccess:
	default:
		errs = append(errs, "security.auth_policy must be \"capability\" or \"group-access\"")
	}

	// Security validation - JWT secret is REQUIRED.
	// Parameter requests adjust scheduling and bandwidth policy for whole
	// process groups, so forged tokens must not be possible.
	const minJWTSecretLength = 32
	if c.Security.JWT.Secret == "" {
		errs = append(errs, "security.jwt.secret is required (set DEVPARAM_JWT_SECRET environment variable)")
	} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters for adequate security")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
