package hal

import (
	"sync"

	"devicerest-go/errcode"
	"devicerest-go/services/logging"
	"devicerest-go/types"

	"periph.io/x/conn/v3/gpio"
)

func init() {
	RegisterBuilder("leds", BuilderFunc(buildLEDBank))
}

// LEDBank drives the red, green and blue LEDs.
type LEDBank struct {
	id        string
	pins      [3]gpio.PinOut
	activeLow bool
	log       *logging.Logger

	mu       sync.Mutex
	state    [3]bool
	onChange func(types.Color, bool)
}

func buildLEDBank(in BuildInput) (Adaptor, error) {
	b := &LEDBank{
		id:        in.Device.ID,
		activeLow: in.Device.ActiveLow,
		log:       in.Log.With("device", in.Device.ID),
	}
	names := [3]string{in.Device.Pins.Red, in.Device.Pins.Green, in.Device.Pins.Blue}
	for i, name := range names {
		p, ok := in.Pins.ByName(name)
		if !ok {
			return nil, &errcode.E{C: errcode.UnknownPin, Op: "build leds", Msg: name}
		}
		b.pins[i] = p
	}
	// Start dark.
	for c := range b.pins {
		b.set(types.Color(c), false)
	}
	return b, nil
}

func (b *LEDBank) ID() string { return b.id }

func (b *LEDBank) On(c types.Color)  { b.set(c, true) }
func (b *LEDBank) Off(c types.Color) { b.set(c, false) }

// State reports whether each LED was last switched on.
func (b *LEDBank) State() [3]bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// OnChange installs a callback run after each switch. It runs with the bank
// unlocked and must not block.
func (b *LEDBank) OnChange(fn func(types.Color, bool)) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

func (b *LEDBank) set(c types.Color, on bool) {
	if int(c) >= len(b.pins) {
		return
	}
	lvl := gpio.Level(on != b.activeLow)

	b.mu.Lock()
	if err := b.pins[c].Out(lvl); err != nil {
		b.mu.Unlock()
		b.log.Warn("led write failed", "color", c.String(), "error", err)
		return
	}
	b.state[c] = on
	fn := b.onChange
	b.mu.Unlock()

	if fn != nil {
		fn(c, on)
	}
}
