package hal

import (
	"errors"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/adxl345"
	"tinygo.org/x/drivers/tmp102"
)

func init() {
	RegisterPlatform("sim", func(cfg Config) (Platform, error) { return NewSim(cfg), nil })
}

// ErrNoDevice is returned by the simulated bus for an address nobody answers.
var ErrNoDevice = errors.New("sim i2c: no device at address")

// simDevice answers one I²C transaction.
type simDevice interface {
	tx(w, r []byte) error
}

// SimI2C is an in-memory I²C bus.
type SimI2C struct {
	mu   sync.Mutex
	devs map[uint16]simDevice
}

func (b *SimI2C) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.devs[addr]
	if !ok {
		return ErrNoDevice
	}
	return d.tx(w, r)
}

// wordRegs models a pointer-register chip with 16-bit big-endian registers
// (TMP102).
type wordRegs struct {
	ptr  byte
	regs [4]uint16
}

func (d *wordRegs) tx(w, r []byte) error {
	if len(w) > 0 {
		d.ptr = w[0] & 0x03
		if len(w) >= 3 {
			d.regs[d.ptr] = uint16(w[1])<<8 | uint16(w[2])
		}
	}
	v := d.regs[d.ptr]
	for i := range r {
		if i%2 == 0 {
			r[i] = byte(v >> 8)
		} else {
			r[i] = byte(v)
		}
	}
	return nil
}

// byteRegs models an auto-incrementing 8-bit register file (ADXL345).
type byteRegs struct {
	regs [64]byte
}

func (d *byteRegs) tx(w, r []byte) error {
	if len(w) == 0 {
		return nil
	}
	reg := int(w[0])
	for i, v := range w[1:] {
		if reg+i < len(d.regs) {
			d.regs[reg+i] = v
		}
	}
	for i := range r {
		if reg+i < len(d.regs) {
			r[i] = d.regs[reg+i]
		}
	}
	return nil
}

// Sim is the in-memory platform: one simulated bus shared by every
// configured bus ID, carrying a TMP102 and an ADXL345 at their default
// addresses, plus gpiotest pins created on first use.
type Sim struct {
	bus    *SimI2C
	busIDs map[string]bool
	tmp    *wordRegs
	acc    *byteRegs

	mu   sync.Mutex
	pins map[string]*gpiotest.Pin
}

// NewSim builds a simulated platform seeded from cfg.Sim.
func NewSim(cfg Config) *Sim {
	s := &Sim{
		tmp:    &wordRegs{},
		acc:    &byteRegs{},
		busIDs: map[string]bool{},
		pins:   map[string]*gpiotest.Pin{},
	}
	s.tmp.regs[tmp102.RegConfiguration] = 0x60A0
	s.acc.regs[adxl345.REG_DEVID] = 0xE5
	s.bus = &SimI2C{devs: map[uint16]simDevice{
		tmp102.Address:     s.tmp,
		adxl345.AddressLow: s.acc,
	}}
	for _, b := range cfg.Buses {
		s.busIDs[b.ID] = true
	}
	s.SetTemperatureRaw(cfg.Sim.TemperatureRaw)
	s.SetAxes(cfg.Sim.Axes[0], cfg.Sim.Axes[1], cfg.Sim.Axes[2])
	return s
}

// SetTemperatureRaw sets the TMP102 temperature register.
func (s *Sim) SetTemperatureRaw(raw int16) {
	s.bus.mu.Lock()
	s.tmp.regs[tmp102.RegTemperature] = uint16(raw)
	s.bus.mu.Unlock()
}

// SetAxes sets the ADXL345 data registers (little-endian).
func (s *Sim) SetAxes(x, y, z int16) {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	for i, v := range [3]int16{x, y, z} {
		s.acc.regs[adxl345.REG_DATAX0+2*i] = byte(uint16(v))
		s.acc.regs[adxl345.REG_DATAX0+2*i+1] = byte(uint16(v) >> 8)
	}
}

// Detach removes a chip from the bus so reads fail.
func (s *Sim) Detach(addr uint16) {
	s.bus.mu.Lock()
	delete(s.bus.devs, addr)
	s.bus.mu.Unlock()
}

// Register reads back an ADXL345 register.
func (s *Sim) Register(reg byte) byte {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	return s.acc.regs[reg]
}

// Pin returns the simulated pin, creating it if needed.
func (s *Sim) Pin(name string) *gpiotest.Pin {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pins[name]
	if !ok {
		p = &gpiotest.Pin{N: name, Num: len(s.pins)}
		s.pins[name] = p
	}
	return p
}

// Level reads a simulated pin's output level.
func (s *Sim) Level(name string) gpio.Level {
	p := s.Pin(name)
	p.Lock()
	defer p.Unlock()
	return p.L
}

func (s *Sim) ByID(id string) (drivers.I2C, bool) {
	if !s.busIDs[id] {
		return nil, false
	}
	return s.bus, true
}

func (s *Sim) ByName(name string) (gpio.PinOut, bool) {
	if name == "" {
		return nil, false
	}
	return s.Pin(name), true
}

func (s *Sim) Close() error { return nil }

var (
	_ Platform    = (*Sim)(nil)
	_ drivers.I2C = (*SimI2C)(nil)
)
