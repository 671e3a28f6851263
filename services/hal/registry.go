package hal

import (
	"fmt"
	"sync"

	"devicerest-go/services/logging"
)

// Adaptor is a built device.
type Adaptor interface {
	ID() string
}

// BuildInput is provided to a device builder.
type BuildInput struct {
	Buses  I2CBusFactory
	Pins   PinFactory
	Device DeviceConfig
	Log    *logging.Logger
}

// Builder constructs an Adaptor from config and platform factories.
type Builder interface {
	Build(in BuildInput) (Adaptor, error)
}

// BuilderFunc adapts a function to Builder.
type BuilderFunc func(in BuildInput) (Adaptor, error)

func (f BuilderFunc) Build(in BuildInput) (Adaptor, error) { return f(in) }

var (
	muBuilders sync.RWMutex
	builders   = map[string]Builder{}
)

// RegisterBuilder installs a builder for a given device type string.
// It panics on duplicate registration to catch mistakes at start-up.
func RegisterBuilder(deviceType string, b Builder) {
	muBuilders.Lock()
	defer muBuilders.Unlock()
	if deviceType == "" {
		panic("hal: empty device type for builder")
	}
	if _, exists := builders[deviceType]; exists {
		panic(fmt.Sprintf("hal: builder already registered for type %q", deviceType))
	}
	builders[deviceType] = b
}

func findBuilder(deviceType string) (Builder, bool) {
	muBuilders.RLock()
	defer muBuilders.RUnlock()
	b, ok := builders[deviceType]
	return b, ok
}
