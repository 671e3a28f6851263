package hal

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"devicerest-go/errcode"

	"periph.io/x/conn/v3/gpio"
	"tinygo.org/x/drivers"
)

// I2CBusFactory resolves configured bus IDs.
type I2CBusFactory interface {
	ByID(id string) (drivers.I2C, bool)
}

// PinFactory resolves platform pin names to outputs.
type PinFactory interface {
	ByName(name string) (gpio.PinOut, bool)
}

// Platform is the hardware a HAL runs on.
type Platform interface {
	I2CBusFactory
	PinFactory
	Close() error
}

// PlatformOpener opens a platform for cfg.
type PlatformOpener func(cfg Config) (Platform, error)

var (
	muPlatforms sync.RWMutex
	platforms   = map[string]PlatformOpener{}
)

// RegisterPlatform installs an opener. It panics on duplicates.
func RegisterPlatform(name string, open PlatformOpener) {
	muPlatforms.Lock()
	defer muPlatforms.Unlock()
	if name == "" {
		panic("hal: empty platform name")
	}
	if _, exists := platforms[name]; exists {
		panic(fmt.Sprintf("hal: platform already registered: %q", name))
	}
	platforms[name] = open
}

// Platforms lists the registered platform names.
func Platforms() []string {
	muPlatforms.RLock()
	defer muPlatforms.RUnlock()
	out := make([]string, 0, len(platforms))
	for n := range platforms {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// OpenPlatform opens the platform named in cfg.
func OpenPlatform(cfg Config) (Platform, error) {
	muPlatforms.RLock()
	open, ok := platforms[cfg.Platform]
	muPlatforms.RUnlock()
	if !ok {
		return nil, &errcode.E{C: errcode.UnknownPlatform, Op: "open_platform",
			Msg: fmt.Sprintf("%q (registered: %s)", cfg.Platform, strings.Join(Platforms(), ", "))}
	}
	return open(cfg)
}
