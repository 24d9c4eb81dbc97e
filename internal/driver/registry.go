package driver

import (
	"context"
	"errors"
	"sync"

	"github.com/AJolly/rtl-433/internal/bitbuffer"
)

// ErrNoDriver is returned by Lookup when no registered driver expects any
// of the buffer's row lengths.
var ErrNoDriver = errors.New("no driver matches the row lengths")

// Modulation carries the static demodulator settings a driver needs to have
// the receiver slice its transmissions into rows. Widths and limits are in
// microseconds.
type Modulation struct {
	Kind       string
	ShortWidth int
	LongWidth  int
	GapLimit   int
	ResetLimit int
}

// Detection contains minimal information required to identify a driver.
type Detection struct {
	BitLength int
}

// Driver processes bit buffers once selected.
type Driver interface {
	Name() string
	Model() string
	Description() string
	Fields() []string
	Modulation() Modulation
	Process(context.Context, *bitbuffer.BitBuffer) (map[string]any, error)
}

var (
	regMu    sync.RWMutex
	registry []registeredDriver
)

type registeredDriver struct {
	detect Detection
	driver Driver
}

// Register stores a driver/detection pair in memory.
func Register(det Detection, drv Driver) {
	regMu.Lock()
	defer regMu.Unlock()
	registry = append(registry, registeredDriver{detect: det, driver: drv})
}

// Lookup returns the first driver expecting a row length present in bb.
func Lookup(bb *bitbuffer.BitBuffer) (Driver, error) {
	regMu.RLock()
	defer regMu.RUnlock()
	for _, rd := range registry {
		if _, ok := bb.FindRow(rd.detect.BitLength); ok {
			return rd.driver, nil
		}
	}
	return nil, ErrNoDriver
}

// ByName returns the registered driver with the given name.
func ByName(name string) (Driver, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	for _, rd := range registry {
		if rd.driver.Name() == name {
			return rd.driver, true
		}
	}
	return nil, false
}

// All lists registered drivers in registration order.
func All() []Driver {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]Driver, 0, len(registry))
	for _, rd := range registry {
		out = append(out, rd.driver)
	}
	return out
}
