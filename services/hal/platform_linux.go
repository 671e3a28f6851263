//go:build linux

package hal

import (
	"errors"
	"fmt"

	"devicerest-go/errcode"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"
)

func init() {
	RegisterPlatform("linux", openLinux)
}

// linuxPlatform serves i2c-dev buses and sysfs/chardev GPIO through periph.
type linuxPlatform struct {
	buses map[string]i2c.BusCloser
}

func openLinux(cfg Config) (Platform, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p := &linuxPlatform{buses: map[string]i2c.BusCloser{}}
	for _, b := range cfg.Buses {
		bc, err := i2creg.Open(b.Name)
		if err != nil {
			_ = p.Close()
			return nil, errcode.Wrap(errcode.UnknownBus, "open_bus "+b.ID, err)
		}
		p.buses[b.ID] = bc
	}
	return p, nil
}

func (p *linuxPlatform) ByID(id string) (drivers.I2C, bool) {
	b, ok := p.buses[id]
	return b, ok
}

func (p *linuxPlatform) ByName(name string) (gpio.PinOut, bool) {
	if name == "" {
		return nil, false
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, false
	}
	return pin, true
}

func (p *linuxPlatform) Close() error {
	var errs []error
	for id, b := range p.buses {
		if err := b.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", id, err))
		}
		delete(p.buses, id)
	}
	return errors.Join(errs...)
}
