// Package hal builds the device's peripherals from configuration: a TMP102
// thermometer, an ADXL345 accelerometer and an RGB LED bank, on either real
// Linux hardware (periph) or the in-memory simulator.
//
// Bus topics:
//
//	hal/state            retained types.ServiceState
//	hal/led/<color>      retained types.LEDState after every switch
package hal

import (
	"errors"
	"fmt"

	"devicerest-go/bus"
	"devicerest-go/errcode"
	"devicerest-go/services/logging"
	"devicerest-go/types"
	"devicerest-go/x/timex"
)

var (
	TopicState = bus.T("hal", "state")
	TopicLED   = bus.T("hal", "led")
)

// HAL owns the platform and the built devices.
type HAL struct {
	Therm *Thermometer
	Accel *Accelerometer
	LEDs  *LEDBank

	plat     Platform
	adaptors map[string]Adaptor
	conn     *bus.Connection
	log      *logging.Logger
}

// New opens the configured platform and builds every device on it.
// conn may be nil.
func New(cfg Config, conn *bus.Connection, log *logging.Logger) (*HAL, error) {
	plat, err := OpenPlatform(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithPlatform(cfg, plat, conn, log)
}

// NewWithPlatform builds the configured devices on an already open platform.
// The HAL takes ownership of plat.
func NewWithPlatform(cfg Config, plat Platform, conn *bus.Connection, log *logging.Logger) (*HAL, error) {
	if log == nil {
		log = logging.Discard()
	}
	h := &HAL{
		plat:     plat,
		adaptors: map[string]Adaptor{},
		conn:     conn,
		log:      log.With("component", "hal"),
	}
	if err := h.build(cfg.Devices); err != nil {
		_ = plat.Close()
		h.publishState("error", string(errcode.Of(err)))
		return nil, err
	}
	h.LEDs.OnChange(h.publishLED)
	h.publishState("ready", "started")
	h.log.Info("hal ready", "platform", cfg.Platform, "devices", len(h.adaptors))
	return h, nil
}

func (h *HAL) build(devs []DeviceConfig) error {
	for _, dc := range devs {
		if _, dup := h.adaptors[dc.ID]; dup || dc.ID == "" {
			return &errcode.E{C: errcode.InvalidParams, Op: "build", Msg: fmt.Sprintf("device id %q", dc.ID)}
		}
		b, ok := findBuilder(dc.Type)
		if !ok {
			return &errcode.E{C: errcode.InvalidParams, Op: "build", Msg: "unknown device type " + dc.Type}
		}
		a, err := b.Build(BuildInput{Buses: h.plat, Pins: h.plat, Device: dc, Log: h.log})
		if err != nil {
			return err
		}
		h.adaptors[dc.ID] = a
		switch d := a.(type) {
		case *Thermometer:
			h.Therm = firstOf(h.Therm, d)
		case *Accelerometer:
			h.Accel = firstOf(h.Accel, d)
		case *LEDBank:
			h.LEDs = firstOf(h.LEDs, d)
		}
		h.log.Debug("device built", "id", dc.ID, "type", dc.Type, "bus", dc.Bus)
	}

	var missing []error
	if h.Therm == nil {
		missing = append(missing, errors.New("no tmp102"))
	}
	if h.Accel == nil {
		missing = append(missing, errors.New("no adxl345"))
	}
	if h.LEDs == nil {
		missing = append(missing, errors.New("no leds"))
	}
	if len(missing) > 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "build", Err: errors.Join(missing...)}
	}
	return nil
}

func firstOf[T any](cur *T, next *T) *T {
	if cur != nil {
		return cur
	}
	return next
}

// Device returns a built adaptor by ID.
func (h *HAL) Device(id string) (Adaptor, bool) {
	a, ok := h.adaptors[id]
	return a, ok
}

// Close releases the platform and marks the HAL stopped.
func (h *HAL) Close() error {
	h.publishState("stopped", "closed")
	return h.plat.Close()
}

func (h *HAL) publishState(level, status string) {
	if h.conn == nil {
		return
	}
	h.conn.Publish(h.conn.NewMessage(TopicState, types.ServiceState{
		Level: level, Status: status, TS: timex.NowMs(),
	}, true))
}

func (h *HAL) publishLED(c types.Color, on bool) {
	if h.conn == nil {
		return
	}
	h.conn.Publish(h.conn.NewMessage(TopicLED.Append(c.String()),
		types.LEDState{Color: c.String(), On: on}, true))
}
