// Package telemetry polls the read-only resources and publishes each
// representation as a retained types.Reading on rest/<path>.
//
// The interval and path list are retuned at runtime by publishing a
// types.TelemetryConfig (or a {"interval_ms": n} map) on config/telemetry.
package telemetry

import (
	"context"
	"slices"
	"time"

	"devicerest-go/bus"
	"devicerest-go/services/logging"
	"devicerest-go/types"
	"devicerest-go/x/mathx"
	"devicerest-go/x/timex"
)

var (
	TopicConfig   = bus.T("config", "telemetry")
	TopicState    = bus.T("telemetry", "state")
	TopicReadings = bus.T("rest")
)

const (
	MinIntervalMs     = 100
	MaxIntervalMs     = 3_600_000
	DefaultIntervalMs = 5000
)

// DefaultPaths are polled when none are configured.
var DefaultPaths = []string{"tmp", "acc", "acctmp"}

// Caller performs one request; *rest.Engine implements it.
type Caller interface {
	Call(types.Call) types.Reading
}

type Service struct {
	caller Caller
	log    *logging.Logger

	intervalMs uint32
	paths      []string
}

// New returns a poller; zero or empty fields of cfg take defaults.
func New(caller Caller, cfg types.TelemetryConfig, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Discard()
	}
	s := &Service{caller: caller, log: log.With("component", "telemetry")}
	s.apply(cfg)
	if s.intervalMs == 0 {
		s.intervalMs = DefaultIntervalMs
	}
	if len(s.paths) == 0 {
		s.paths = slices.Clone(DefaultPaths)
	}
	return s
}

// apply merges cfg; it reports whether the interval changed.
func (s *Service) apply(cfg types.TelemetryConfig) bool {
	changed := false
	if cfg.IntervalMs != 0 {
		iv := mathx.Clamp(cfg.IntervalMs, MinIntervalMs, MaxIntervalMs)
		changed = iv != s.intervalMs
		s.intervalMs = iv
	}
	if len(cfg.Paths) > 0 {
		s.paths = slices.Clone(cfg.Paths)
	}
	return changed
}

// Start subscribes for configuration and runs the poll loop on a goroutine.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	cfgSub := conn.Subscribe(TopicConfig)
	go s.serviceLoop(ctx, conn, cfgSub)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, cfgSub *bus.Subscription) {
	defer conn.Unsubscribe(cfgSub)

	s.publishState(conn, "ready", "polling")
	s.pollOnce(conn)

	tick := time.NewTicker(timex.Ms(s.intervalMs))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("telemetry stopping")
			s.publishState(conn, "stopped", "cancelled")
			return
		case <-tick.C:
			s.pollOnce(conn)
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				return
			}
			cfg, ok := decodeConfig(msg.Payload)
			if !ok {
				s.log.Warn("ignoring telemetry config", "payload", msg.Payload)
				continue
			}
			if s.apply(cfg) {
				tick.Reset(timex.Ms(s.intervalMs))
			}
			s.log.Info("telemetry retuned", "interval_ms", s.intervalMs, "paths", s.paths)
		}
	}
}

// pollOnce GETs every path and publishes the readings.
func (s *Service) pollOnce(conn *bus.Connection) {
	for _, p := range s.paths {
		r := s.caller.Call(types.Call{Method: "GET", Path: p})
		if !r.OK() {
			s.log.Warn("poll failed", "path", p, "status", r.Status)
		}
		conn.Publish(conn.NewMessage(TopicReadings.Append(r.Path), r, true))
	}
}

func (s *Service) publishState(conn *bus.Connection, level, status string) {
	conn.Publish(conn.NewMessage(TopicState, types.ServiceState{
		Level: level, Status: status, TS: timex.NowMs(),
	}, true))
}

func decodeConfig(p any) (types.TelemetryConfig, bool) {
	switch v := p.(type) {
	case types.TelemetryConfig:
		return v, true
	case *types.TelemetryConfig:
		if v == nil {
			return types.TelemetryConfig{}, false
		}
		return *v, true
	case map[string]any:
		var cfg types.TelemetryConfig
		if iv, ok := v["interval_ms"].(float64); ok && iv > 0 {
			cfg.IntervalMs = uint32(iv)
		}
		if ps, ok := v["paths"].([]any); ok {
			for _, x := range ps {
				if s, ok := x.(string); ok {
					cfg.Paths = append(cfg.Paths, s)
				}
			}
		}
		return cfg, cfg.IntervalMs != 0 || len(cfg.Paths) > 0
	default:
		return types.TelemetryConfig{}, false
	}
}
