package tmp102

import (
	"errors"
	"testing"

	"tinygo.org/x/drivers/tester"
)

func TestReadRaw(t *testing.T) {
	bus := tester.NewI2CBus(t)
	dev := bus.NewDevice(Address)

	d := New(bus)
	d.Configure(0)

	cases := []struct {
		hi, lo byte
		want   int16
	}{
		{0x1A, 0x20, 0x1A20},
		{0x00, 0x00, 0},
		{0xFF, 0xF0, -16},
		{0x80, 0x00, -32768},
		{0x7F, 0xF0, 0x7FF0},
	}
	for _, tc := range cases {
		dev.Registers[0] = tc.hi
		dev.Registers[1] = tc.lo
		got, err := d.ReadRaw()
		if err != nil {
			t.Fatalf("ReadRaw: %v", err)
		}
		if got != tc.want {
			t.Fatalf("ReadRaw(%#02x %#02x) = %d, want %d", tc.hi, tc.lo, got, tc.want)
		}
	}
}

func TestReadRawBusError(t *testing.T) {
	bus := tester.NewI2CBus(t)
	dev := bus.NewDevice(Address)
	dev.Err = errors.New("nack")

	d := New(bus)
	d.Configure(0)

	if _, err := d.ReadRaw(); !errors.Is(err, ErrBus) {
		t.Fatalf("want ErrBus, got %v", err)
	}
}

func TestConnected(t *testing.T) {
	bus := tester.NewI2CBus(t)
	dev := bus.NewDevice(0x49)

	d := New(bus)
	d.Configure(0x49)
	if d.Connected() {
		t.Fatal("connected with zeroed config register")
	}

	dev.Registers[1] = 0x60
	dev.Registers[2] = 0xA0
	if !d.Connected() {
		t.Fatal("not connected with reset config register")
	}
}
