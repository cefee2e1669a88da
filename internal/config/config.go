// Package config loads hostbridge settings from a YAML (or JSON) file and
// HOSTBRIDGE_* environment variables, in that order of precedence.
package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aretw0/hostbridge/internal/logging"
	"github.com/aretw0/hostbridge/pkg/domain"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "HOSTBRIDGE_"

// DefaultPath is read when no explicit file is given. A missing default file
// is not an error.
const DefaultPath = "hostbridge.yaml"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete runtime configuration.
type Config struct {
	Server        ServerConfig  `yaml:"server" json:"server" envPrefix:"SERVER_"`
	Log           LogConfig     `yaml:"log" json:"log" envPrefix:"LOG_"`
	Store         StoreConfig   `yaml:"store" json:"store" envPrefix:"STORE_"`
	Channels      []string      `yaml:"channels" json:"channels" env:"CHANNELS" envSeparator:","`
	FrameInterval time.Duration `yaml:"frame_interval" json:"frame_interval" env:"FRAME_INTERVAL"`
	Export        ExportConfig  `yaml:"export" json:"export" envPrefix:"EXPORT_"`
	Document      string        `yaml:"document" json:"document" env:"DOCUMENT"`
}

// ServerConfig configures the network transports.
type ServerConfig struct {
	Addr    string `yaml:"addr" json:"addr" env:"ADDR"`
	Metrics bool   `yaml:"metrics" json:"metrics" env:"METRICS"`
}

// LogConfig configures the application logger and the diagnostic sink.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" env:"LEVEL"`
	Format string `yaml:"format" json:"format" env:"FORMAT"`
	// Redact lists regular expressions; matching fields of UI log payloads are masked.
	Redact []string `yaml:"redact" json:"redact" env:"REDACT" envSeparator:","`
}

// StoreConfig selects and configures the preset store.
type StoreConfig struct {
	Driver string      `yaml:"driver" json:"driver" env:"DRIVER"`
	Path   string      `yaml:"path" json:"path" env:"PATH"`
	Redis  RedisConfig `yaml:"redis" json:"redis" envPrefix:"REDIS_"`
	// EncryptionKey is a base64 AES-256 key. Empty disables encryption.
	EncryptionKey string `yaml:"encryption_key" json:"encryption_key" env:"ENCRYPTION_KEY"`
	// FallbackKeys are previous keys still accepted for reading.
	FallbackKeys []string `yaml:"fallback_keys" json:"fallback_keys" env:"FALLBACK_KEYS" envSeparator:","`
}

// RedisConfig configures the redis driver.
type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr" env:"ADDR"`
	Password string        `yaml:"password" json:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" json:"db" env:"DB"`
	Prefix   string        `yaml:"prefix" json:"prefix" env:"PREFIX"`
	TTL      time.Duration `yaml:"ttl" json:"ttl" env:"TTL"`
}

// ExportConfig configures the SVG download facility.
type ExportConfig struct {
	SpoolDir  string `yaml:"spool_dir" json:"spool_dir" env:"SPOOL_DIR"`
	OutputDir string `yaml:"output_dir" json:"output_dir" env:"OUTPUT_DIR"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info", Format: logging.FormatAuto},
		Store: StoreConfig{
			Driver: DriverMemory,
			Redis:  RedisConfig{Addr: "localhost:6379", Prefix: "hostbridge:"},
		},
		FrameInterval: 16 * time.Millisecond,
		Export: ExportConfig{
			SpoolDir:  filepath.Join(os.TempDir(), "hostbridge-spool"),
			OutputDir: ".",
		},
	}
}

// Load reads path (or DefaultPath when empty), applies environment overrides
// and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := loadFile(path, &cfg); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			err = nil
		}
		if err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return nil
	}

	// Default to YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// Validate checks every field that can be wrong independently of the host.
func (c Config) Validate() error {
	var errs []error

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if !logging.ValidFormat(c.Log.Format) {
		errs = append(errs, fmt.Errorf("invalid log format %q", c.Log.Format))
	}
	for _, p := range c.Log.Redact {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("invalid redaction pattern %q: %w", p, err))
		}
	}

	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverRedis, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if _, _, err := c.Store.Keys(); err != nil {
		errs = append(errs, err)
	}
	if c.Store.Redis.TTL < 0 {
		errs = append(errs, fmt.Errorf("redis ttl must not be negative"))
	}

	if _, err := c.ChannelList(); err != nil {
		errs = append(errs, err)
	}
	if c.FrameInterval < 0 {
		errs = append(errs, fmt.Errorf("frame_interval must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// ChannelList returns the enabled channels. Empty means every channel.
func (c Config) ChannelList() ([]domain.Channel, error) {
	channels := make([]domain.Channel, 0, len(c.Channels))
	for _, name := range c.Channels {
		ch := domain.Channel(strings.TrimSpace(name))
		if !domain.IsOutbound(ch) {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownChannel, name)
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

// Keys decodes the encryption keys. active is nil when encryption is off.
func (s StoreConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if s.EncryptionKey == "" {
		if len(s.FallbackKeys) > 0 {
			return nil, nil, fmt.Errorf("fallback_keys set without encryption_key")
		}
		return nil, nil, nil
	}
	active, err = decodeKey(s.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("encryption_key: %w", err)
	}
	for i, k := range s.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}
