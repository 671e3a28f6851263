package types

// ------------------------
// Telemetry (retained on rest/<path>)
// ------------------------

// Reading is one polled resource representation. Integer CBOR keys keep the
// bridged envelope small.
type Reading struct {
	Path        string `cbor:"1,keyasint" json:"path"`
	Status      string `cbor:"2,keyasint" json:"status"`       // CoAP-style code, e.g. "2.05"
	ContentType string `cbor:"3,keyasint" json:"content_type"` // e.g. "text/plain"
	Payload     []byte `cbor:"4,keyasint" json:"payload"`
	TS          int64  `cbor:"5,keyasint" json:"ts_ms"`
}

// OK reports a 2.xx outcome.
func (r Reading) OK() bool { return len(r.Status) > 0 && r.Status[0] == '2' }

// TelemetryConfig is published on config/telemetry to retune the poller.
type TelemetryConfig struct {
	IntervalMs uint32   `yaml:"interval_ms" json:"interval_ms"`
	Paths      []string `yaml:"paths,omitempty" json:"paths,omitempty"`
}

// ------------------------
// Service state (retained)
// ------------------------

type ServiceState struct {
	Level  string `json:"level"`  // "idle", "ready", "stopped", "error"
	Status string `json:"status"` // freeform short code
	TS     int64  `json:"ts_ms"`
}
