// Package bridge mirrors the device's resources onto an MQTT broker.
//
// Outbound, every retained reading on bus rest/<path> is published to
// <prefix>/<path>. Inbound, a message on <prefix>/<path>/set carrying a query
// string such as "col=g&on=0" is dispatched as PUT /<path>?<payload>, and the
// outcome is published on <prefix>/<path>/status.
//
// The service idles until a Config arrives on config/bridge, and restarts its
// link on every new Config. Link health is retained on bridge/state.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"devicerest-go/bus"
	"devicerest-go/services/logging"
	"devicerest-go/services/rest"
	"devicerest-go/types"
	"devicerest-go/x/mathx"
	"devicerest-go/x/strx"
	"devicerest-go/x/timex"
)

var (
	TopicConfig = bus.T("config", "bridge")
	TopicState  = bus.T("bridge", "state")
	topicRest   = bus.T("rest", bus.MultiWild)
)

const callTimeout = 2 * time.Second

// Config is delivered on config/bridge.
type Config struct {
	Enabled   bool            `yaml:"enabled" json:"enabled"`
	Broker    BrokerConfig    `yaml:"broker" json:"broker"`
	Prefix    string          `yaml:"prefix" json:"prefix"`
	Encoding  string          `yaml:"encoding" json:"encoding"` // "text" or "cbor"
	QoS       byte            `yaml:"qos" json:"qos"`
	Reconnect ReconnectConfig `yaml:"reconnect" json:"reconnect"`
}

type BrokerConfig struct {
	URL      string `yaml:"url" json:"url"` // tcp://host:1883
	ClientID string `yaml:"client_id" json:"client_id"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

type ReconnectConfig struct {
	InitialDelayMs uint32 `yaml:"initial_delay_ms" json:"initial_delay_ms"`
	MaxDelayS      int    `yaml:"max_delay_s" json:"max_delay_s"`
}

// Reconnect defaults and bounds.
const (
	DefaultInitialDelayMs = 500
	MinInitialDelayMs     = 10
	MaxInitialDelayMs     = 60_000
	DefaultMaxDelayS      = 30
	MinMaxDelayS          = 1
	MaxMaxDelayS          = 300
)

func (r ReconnectConfig) initialDelay() time.Duration {
	if r.InitialDelayMs == 0 {
		return timex.Ms(DefaultInitialDelayMs)
	}
	return timex.Ms(mathx.Clamp(r.InitialDelayMs, MinInitialDelayMs, MaxInitialDelayMs))
}

func (r ReconnectConfig) maxDelay() time.Duration {
	if r.MaxDelayS == 0 {
		return DefaultMaxDelayS * time.Second
	}
	return time.Duration(mathx.Clamp(r.MaxDelayS, MinMaxDelayS, MaxMaxDelayS)) * time.Second
}

func (c Config) prefix() string { return strings.Trim(strx.FirstNonEmpty(c.Prefix, "devrest"), "/") }

func (c Config) statusTopic() string { return c.prefix() + "/$online" }

// Dialer opens a broker link.
type Dialer func(ctx context.Context, cfg Config, log *logging.Logger) (Link, error)

// DialMQTT is the default Dialer.
func DialMQTT(_ context.Context, cfg Config, log *logging.Logger) (Link, error) {
	return Connect(cfg, log)
}

// Service supervises one link at a time.
type Service struct {
	conn *bus.Connection
	dial Dialer
	log  *logging.Logger

	mu     sync.Mutex
	curRun context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a bridge using dial (DialMQTT when nil).
func New(conn *bus.Connection, dial Dialer, log *logging.Logger) *Service {
	if dial == nil {
		dial = DialMQTT
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Service{conn: conn, dial: dial, log: log.With("component", "bridge")}
}

// Start subscribes for configuration and runs until ctx ends.
func (s *Service) Start(ctx context.Context) {
	cfgSub := s.conn.Subscribe(TopicConfig)
	s.publishState("idle", "awaiting_config", nil)
	go s.run(ctx, cfgSub)
}

func (s *Service) run(ctx context.Context, cfgSub *bus.Subscription) {
	defer s.conn.Unsubscribe(cfgSub)
	for {
		select {
		case <-ctx.Done():
			s.stopCurrent()
			return
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				s.publishState("error", "config_subscription_closed", nil)
				return
			}
			cfg, err := decodeConfig(msg.Payload)
			if err != nil {
				s.publishState("error", "config_decode_failed", err)
				continue
			}
			s.reconfigure(ctx, cfg)
		}
	}
}

func (s *Service) stopCurrent() {
	s.mu.Lock()
	if s.curRun != nil {
		s.curRun()
		s.curRun = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Service) reconfigure(parent context.Context, cfg Config) {
	s.stopCurrent()
	if !cfg.Enabled {
		s.publishState("idle", "disabled", nil)
		return
	}
	if _, err := EncodeReading(cfg.Encoding, types.Reading{}); err != nil {
		s.publishState("error", "bad_encoding", err)
		return
	}

	ctx, cancel := context.WithCancel(parent)
	s.mu.Lock()
	s.curRun = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runLink(ctx, cfg)
	}()
}

// -----------------------------------------------------------------------------
// Link supervision
// -----------------------------------------------------------------------------

func (s *Service) runLink(ctx context.Context, cfg Config) {
	backoff := backoffSeq(cfg.Reconnect.initialDelay(), cfg.Reconnect.maxDelay())
	var link Link
	for {
		var err error
		link, err = s.dial(ctx, cfg, s.log)
		if err == nil {
			break
		}
		delay := backoff()
		s.publishState("degraded", "dial_failed_retrying", fmt.Errorf("%v (retry in %s)", err, delay))
		if !sleep(ctx, delay) {
			return
		}
	}
	defer link.Close()

	link.SetOnConnectionChange(func(up bool, err error) {
		if up {
			s.publishState("up", "link_established", nil)
		} else {
			s.publishState("degraded", "link_lost", err)
		}
	})

	setTopic := cfg.prefix() + "/+/set"
	if err := link.Subscribe(setTopic, cfg.QoS, s.inbound(ctx, cfg, link)); err != nil {
		s.publishState("degraded", "subscribe_failed", err)
	}

	readings := s.conn.Subscribe(topicRest)
	defer s.conn.Unsubscribe(readings)

	s.publishState("up", "link_established", nil)
	s.log.Info("bridge link up", "broker", cfg.Broker.URL, "prefix", cfg.prefix())

	for {
		select {
		case <-ctx.Done():
			s.publishState("idle", "stopped", nil)
			return
		case msg, ok := <-readings.Channel():
			if !ok {
				return
			}
			s.outbound(cfg, link, msg)
		}
	}
}

// outbound forwards one bus reading to <prefix>/<path>.
func (s *Service) outbound(cfg Config, link Link, msg *bus.Message) {
	r, ok := msg.Payload.(types.Reading)
	if !ok {
		return
	}
	b, err := EncodeReading(cfg.Encoding, r)
	if err != nil {
		s.log.Warn("encode reading", "path", r.Path, "error", err)
		return
	}
	topic := cfg.prefix() + "/" + r.Path
	if err := link.Publish(topic, b, cfg.QoS, true); err != nil {
		s.log.Warn("publish reading", "topic", topic, "error", err)
	}
}

// inbound handles <prefix>/<path>/set.
func (s *Service) inbound(ctx context.Context, cfg Config, link Link) MessageHandler {
	pfx := cfg.prefix() + "/"
	return func(topic string, payload []byte) error {
		path, ok := strings.CutSuffix(strings.TrimPrefix(topic, pfx), "/set")
		if !ok || path == "" || strings.Contains(path, "/") {
			return fmt.Errorf("unexpected set topic %q", topic)
		}

		cctx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()
		r, err := rest.CallBus(cctx, s.conn, types.Call{
			Method: "PUT",
			Path:   path,
			Query:  strings.TrimSpace(string(payload)),
		})
		if err != nil {
			return fmt.Errorf("call %s: %w", path, err)
		}

		b, err := EncodeStatus(cfg.Encoding, r)
		if err != nil {
			return err
		}
		return link.Publish(pfx+path+"/status", b, cfg.QoS, false)
	}
}

// -----------------------------------------------------------------------------
// Utilities
// -----------------------------------------------------------------------------

func decodeConfig(p any) (Config, error) {
	var cfg Config
	switch v := p.(type) {
	case Config:
		return v, nil
	case *Config:
		if v == nil {
			return cfg, fmt.Errorf("nil config")
		}
		return *v, nil
	case []byte:
		err := json.Unmarshal(v, &cfg)
		return cfg, err
	case string:
		err := json.Unmarshal([]byte(v), &cfg)
		return cfg, err
	default:
		return cfg, fmt.Errorf("unsupported config payload type: %T", p)
	}
}

func (s *Service) publishState(level, status string, err error) {
	payload := map[string]any{
		"level":  level,
		"status": status,
		"ts_ms":  timex.NowMs(),
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	s.conn.Publish(s.conn.NewMessage(TopicState, payload, true))
}

func backoffSeq(min, max time.Duration) func() time.Duration {
	if min <= 0 {
		min = 250 * time.Millisecond
	}
	if max < min {
		max = min
	}
	cur := min
	return func() time.Duration {
		d := cur
		cur *= 2
		if cur > max {
			cur = max
		}
		return d
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
