package hal

import (
	"sync"

	"devicerest-go/drivers/tmp102"
	"devicerest-go/errcode"
	"devicerest-go/services/logging"
	"devicerest-go/x/conv"
)

func init() {
	RegisterBuilder("tmp102", BuilderFunc(buildThermometer))
}

// Thermometer serves raw TMP102 samples. A failed bus read is logged and
// answered with the last good sample (zero before the first one).
type Thermometer struct {
	id  string
	dev *tmp102.Device
	log *logging.Logger

	mu     sync.Mutex
	last   int16
	failed bool
}

func buildThermometer(in BuildInput) (Adaptor, error) {
	bus, ok := in.Buses.ByID(in.Device.Bus)
	if !ok {
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "build tmp102", Msg: in.Device.Bus}
	}
	d := tmp102.New(bus)
	d.Configure(uint8(in.Device.Address))

	t := &Thermometer{id: in.Device.ID, dev: d, log: in.Log.With("device", in.Device.ID)}
	if !d.Connected() {
		t.log.Warn("tmp102 not responding at configure; serving last good sample")
	}
	return t, nil
}

func (t *Thermometer) ID() string { return t.id }

// ReadTemperatureRaw returns the temperature register word.
func (t *Thermometer) ReadTemperatureRaw() int16 {
	t.mu.Lock()
	defer t.mu.Unlock()

	raw, err := t.dev.ReadRaw()
	if err != nil {
		if !t.failed {
			t.log.Warn("temperature read failed", "error", err)
		}
		t.failed = true
		return t.last
	}
	if t.failed {
		var hx [4]byte
		t.log.Info("temperature read recovered", "raw", "0x"+string(conv.U16Hex(hx[:], uint16(raw))))
		t.failed = false
	}
	t.last = raw
	return raw
}
