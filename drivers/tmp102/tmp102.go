// Package tmp102 reads the raw temperature register of a TMP102.
//
// The register holds a left-aligned 12-bit two's complement value: the high
// byte is whole degrees and bits 7..4 are sixteenths. ReadRaw returns the full
// 16-bit word untouched so callers can format it exactly.
//
// Probing, configuration and the milli-degree conversion come from
// tinygo.org/x/drivers/tmp102, which this package embeds.
package tmp102

import (
	"errors"

	"tinygo.org/x/drivers"
	base "tinygo.org/x/drivers/tmp102"
)

// Address is the default I2C address (ADD0 to ground).
const Address = base.Address

var ErrBus = errors.New("tmp102: bus error")

// Device is a TMP102 on an I2C bus.
type Device struct {
	base.Device
	bus  drivers.I2C
	addr uint16
	w    [1]byte
	buf  [2]byte
}

// New creates the device object; it does not touch the bus.
func New(bus drivers.I2C) *Device {
	return &Device{Device: base.New(bus), bus: bus, addr: Address}
}

// Configure sets the address. Zero selects Address.
func (d *Device) Configure(addr uint8) {
	if addr == 0 {
		addr = Address
	}
	d.addr = uint16(addr)
	d.Device.Configure(base.Config{Address: addr})
}

// ReadRaw returns the temperature register as a signed 16-bit word.
func (d *Device) ReadRaw() (int16, error) {
	d.w[0] = base.RegTemperature
	if err := d.bus.Tx(d.addr, d.w[:], d.buf[:]); err != nil {
		return 0, errors.Join(ErrBus, err)
	}
	return int16(uint16(d.buf[0])<<8 | uint16(d.buf[1])), nil
}
