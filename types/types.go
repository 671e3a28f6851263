package types

// ------------------------
// Actuator and sensor selectors
// ------------------------

// Color selects one LED of the RGB bank.
type Color uint8

const (
	ColorRed Color = iota
	ColorGreen
	ColorBlue
)

func (c Color) String() string {
	switch c {
	case ColorRed:
		return "red"
	case ColorGreen:
		return "green"
	case ColorBlue:
		return "blue"
	default:
		return "unknown"
	}
}

// Axis selects one accelerometer axis.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "?"
	}
}

// ------------------------
// Bus payloads
// ------------------------

// Call asks the REST engine, over the bus, to dispatch one request.
type Call struct {
	Method string `cbor:"1,keyasint" json:"method"` // "GET", "PUT", ...
	Path   string `cbor:"2,keyasint" json:"path"`
	Query  string `cbor:"3,keyasint" json:"query,omitempty"`
}

// LEDState is retained on hal/led/<color>.
type LEDState struct {
	Color string `json:"color"`
	On    bool   `json:"on"`
}
