package hal

// Config describes the platform, its I²C buses and the devices on them.
type Config struct {
	Platform string         `yaml:"platform"` // "linux" or "sim"
	Buses    []BusConfig    `yaml:"buses"`
	Devices  []DeviceConfig `yaml:"devices"`
	Sim      SimConfig      `yaml:"sim"`
}

type BusConfig struct {
	ID   string `yaml:"id"`   // "i2c0"
	Name string `yaml:"name"` // platform bus name, e.g. "/dev/i2c-1"; empty for the default bus
}

type DeviceConfig struct {
	ID      string  `yaml:"id"`
	Type    string  `yaml:"type"` // "tmp102", "adxl345", "leds"
	Bus     string  `yaml:"bus,omitempty"`
	Address uint16  `yaml:"address,omitempty"` // 0 selects the chip default
	Pins    LEDPins `yaml:"pins,omitempty"`
	// ActiveLow drives a pin low to light its LED.
	ActiveLow bool `yaml:"active_low,omitempty"`
}

type LEDPins struct {
	Red   string `yaml:"red"`
	Green string `yaml:"green"`
	Blue  string `yaml:"blue"`
}

// SimConfig seeds the simulated sensors.
type SimConfig struct {
	TemperatureRaw int16    `yaml:"temperature_raw"`
	Axes           [3]int16 `yaml:"axes"`
}
