package hal

import (
	"sync"

	"devicerest-go/errcode"
	"devicerest-go/types"

	"tinygo.org/x/drivers/adxl345"
)

func init() {
	RegisterBuilder("adxl345", BuilderFunc(buildAccelerometer))
}

// Accelerometer serves raw ADXL345 axis counts.
// A read of an axis already served since the last sample takes a new
// sample, so X, Y, Z in turn come from one reading instant.
type Accelerometer struct {
	id  string
	mu  sync.Mutex
	dev adxl345.Device

	sample  [3]int16
	pending [3]bool
}

func buildAccelerometer(in BuildInput) (Adaptor, error) {
	bus, ok := in.Buses.ByID(in.Device.Bus)
	if !ok {
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "build adxl345", Msg: in.Device.Bus}
	}
	d := adxl345.New(bus)
	if in.Device.Address != 0 {
		d.Address = in.Device.Address
	}
	d.Configure()
	return &Accelerometer{id: in.Device.ID, dev: d}, nil
}

func (a *Accelerometer) ID() string { return a.id }

// ReadAxis returns one axis of the current sample.
func (a *Accelerometer) ReadAxis(axis types.Axis) int16 {
	i := int(axis)
	if i > 2 {
		i = 2
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.pending[i] {
		x, y, z := a.dev.ReadRawAcceleration()
		a.sample = [3]int16{x, y, z}
		a.pending = [3]bool{true, true, true}
	}
	a.pending[i] = false
	return a.sample[i]
}
