// Package config loads the daemon configuration and distributes the parts
// other services consume at runtime as retained bus messages.
//
// Resolution order: the embedded defaults for the device, then the optional
// YAML file, then DEVREST_* environment variables.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"devicerest-go/bus"
	"devicerest-go/errcode"
	"devicerest-go/services/bridge"
	"devicerest-go/services/hal"
	"devicerest-go/services/logging"
	"devicerest-go/services/rest"
	"devicerest-go/services/rest/httpapi"
	"devicerest-go/services/telemetry"
	"devicerest-go/types"
	"devicerest-go/x/mathx"
	"devicerest-go/x/strx"
)

const (
	serviceName   = "config"
	DefaultDevice = "sim"

	minChunk = 32
	maxChunk = 1024
)

// Environment overrides.
const (
	EnvHTTPAddr    = "DEVREST_HTTP_ADDR"
	EnvMQTTBroker  = "DEVREST_MQTT_BROKER"
	EnvMQTTEnabled = "DEVREST_MQTT_ENABLED"
	EnvLogLevel    = "DEVREST_LOG_LEVEL"
	EnvPlatform    = "DEVREST_PLATFORM"
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

type Config struct {
	Device    string                `yaml:"device"`
	HAL       hal.Config            `yaml:"hal"`
	REST      RESTConfig            `yaml:"rest"`
	HTTP      httpapi.Config        `yaml:"http"`
	MQTT      bridge.Config         `yaml:"mqtt"`
	Telemetry types.TelemetryConfig `yaml:"telemetry"`
	Logging   logging.Config        `yaml:"logging"`
}

type RESTConfig struct {
	// ChunkSize is the scratch buffer handed to each handler.
	ChunkSize int `yaml:"chunk_size"`
}

// Default returns the embedded configuration for device.
func Default(device string) (*Config, error) {
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return nil, errors.New("no embedded config for device: " + device)
	}
	cfg := &Config{}
	if err := decode(raw, cfg); err != nil {
		return nil, fmt.Errorf("embedded config %s: %w", device, err)
	}
	cfg.Device = device
	return cfg, nil
}

// Load resolves the configuration. path may be empty. An empty device falls
// back to the file's "device" key, then DefaultDevice.
func Load(path, device string) (*Config, error) {
	var raw []byte
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		raw = b
	}
	if device == "" && raw != nil {
		var probe struct {
			Device string `yaml:"device"`
		}
		if err := yaml.Unmarshal(raw, &probe); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		device = probe.Device
	}
	device = strx.Coalesce(device, DefaultDevice)

	cfg, err := Default(device)
	if err != nil {
		return nil, err
	}
	if raw != nil {
		if err := decode(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.Device = device
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays doc onto cfg. Unknown keys are rejected.
func decode(doc []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(doc))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvHTTPAddr); ok {
		c.HTTP.Addr = v
	}
	if v, ok := lookup(EnvMQTTBroker); ok {
		c.MQTT.Broker.URL = v
	}
	if v, ok := lookup(EnvMQTTEnabled); ok {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMQTTEnabled, err)
		}
		c.MQTT.Enabled = on
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.Logging.Level = v
	}
	if v, ok := lookup(EnvPlatform); ok {
		c.HAL.Platform = v
	}
	return nil
}

// Validate fills defaults, clamps numeric fields and rejects configurations
// the services cannot start with.
func (c *Config) Validate() error {
	if c.HAL.Platform == "" {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "hal.platform is required"}
	}

	if c.REST.ChunkSize == 0 {
		c.REST.ChunkSize = rest.DefaultChunkSize
	}
	c.REST.ChunkSize = mathx.Clamp(c.REST.ChunkSize, minChunk, maxChunk)

	c.HTTP.Addr = strx.Coalesce(c.HTTP.Addr, ":8080")

	if c.Telemetry.IntervalMs == 0 {
		c.Telemetry.IntervalMs = telemetry.DefaultIntervalMs
	}
	c.Telemetry.IntervalMs = mathx.Clamp(c.Telemetry.IntervalMs, telemetry.MinIntervalMs, telemetry.MaxIntervalMs)

	rc := &c.MQTT.Reconnect
	if rc.InitialDelayMs == 0 {
		rc.InitialDelayMs = bridge.DefaultInitialDelayMs
	}
	rc.InitialDelayMs = mathx.Clamp(rc.InitialDelayMs, bridge.MinInitialDelayMs, bridge.MaxInitialDelayMs)
	if rc.MaxDelayS == 0 {
		rc.MaxDelayS = bridge.DefaultMaxDelayS
	}
	rc.MaxDelayS = mathx.Clamp(rc.MaxDelayS, bridge.MinMaxDelayS, bridge.MaxMaxDelayS)

	if !mathx.Between(c.MQTT.QoS, 0, 2) {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "mqtt.qos", Err: bridge.ErrInvalidQoS}
	}
	if _, err := bridge.EncodeReading(c.MQTT.Encoding, types.Reading{}); err != nil {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "mqtt.encoding", Err: err}
	}
	if c.MQTT.Enabled && c.MQTT.Broker.URL == "" {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "mqtt.broker.url is required when mqtt is enabled"}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
	cfg  *Config
	log  *logging.Logger
}

func NewConfigService(cfg *Config, log *logging.Logger) *ConfigService {
	if log == nil {
		log = logging.Discard()
	}
	return &ConfigService{Name: serviceName, cfg: cfg, log: log.With("component", serviceName)}
}

// publishConfig publishes the runtime-tunable sections as retained messages
// on config/telemetry and config/bridge.
func (s *ConfigService) publishConfig(conn *bus.Connection) error {
	if s.cfg == nil {
		return errors.New("no configuration loaded")
	}
	conn.Publish(conn.NewMessage(telemetry.TopicConfig, s.cfg.Telemetry, true))
	conn.Publish(conn.NewMessage(bridge.TopicConfig, s.cfg.MQTT, true))
	return nil
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if ctx.Err() != nil {
			return
		}
		if err := s.publishConfig(conn); err != nil {
			s.log.Error("publish config", "error", err)
			return
		}
		s.log.Debug("config published", "device", s.cfg.Device)
	}()
}
