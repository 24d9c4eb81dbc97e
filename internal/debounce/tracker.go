// Package debounce rejects readings that jump too far from the last value
// accepted for the same sensor.
package debounce

import (
	"math"
	"sync"

	"github.com/AJolly/rtl-433/internal/reject"
)

const (
	// DefaultCapacity is the number of distinct sensors tracked.
	DefaultCapacity = 32
	// DefaultMaxDelta is the largest accepted change in degrees between two
	// consecutive readings of one sensor.
	DefaultMaxDelta = 12.0
)

// Key identifies one physical sensor.
type Key struct {
	DeviceID uint8
	Channel  int
}

type slot struct {
	key    Key
	tenths int
	used   bool
}

// Tracker holds the last accepted temperature per sensor in a fixed number
// of slots. Sensors are never evicted; once every slot is taken, readings
// from new sensors are rejected until the tracker is discarded.
//
// The zero value is ready to use with the default capacity and delta.
type Tracker struct {
	capacity int
	maxDelta int // tenths of a degree
	deltaSet bool

	once  sync.Once
	mu    sync.Mutex
	slots []slot
	used  int
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithCapacity sets the number of slots. Values below one are ignored.
func WithCapacity(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.capacity = n
		}
	}
}

// WithMaxDelta sets the largest accepted change in degrees. Negative values
// are ignored.
func WithMaxDelta(c float64) Option {
	return func(t *Tracker) {
		if c >= 0 {
			t.maxDelta = toTenths(c)
			t.deltaSet = true
		}
	}
}

// New returns a tracker with the given options applied.
func New(opts ...Option) *Tracker {
	t := &Tracker{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) init() {
	if t.capacity == 0 {
		t.capacity = DefaultCapacity
	}
	if !t.deltaSet {
		t.maxDelta = toTenths(DefaultMaxDelta)
	}
	t.slots = make([]slot, t.capacity)
}

// Observe checks the reading against the sensor's previous value and, if it
// is plausible, stores it. Lookup, check and store happen under one lock.
func (t *Tracker) Observe(k Key, celsius float64) error {
	t.once.Do(t.init)
	tenths := toTenths(celsius)

	t.mu.Lock()
	defer t.mu.Unlock()

	idx, free := -1, -1
	for i := range t.slots {
		s := &t.slots[i]
		if !s.used {
			if free < 0 {
				free = i
			}
			continue
		}
		if s.key == k {
			idx = i
			break
		}
	}
	if idx < 0 {
		if free < 0 {
			return reject.New(reject.TrackerFull, "%d sensors tracked, cannot track id=0x%02x channel=%d", len(t.slots), k.DeviceID, k.Channel)
		}
		idx = free
		t.used++
	} else if delta := abs(tenths - t.slots[idx].tenths); delta > t.maxDelta {
		return reject.New(reject.TemperatureDeltaTooLarge, "%.1f C -> %.1f C (delta %.1f C, max %.1f C)",
			fromTenths(t.slots[idx].tenths), fromTenths(tenths), fromTenths(delta), fromTenths(t.maxDelta))
	}
	t.slots[idx] = slot{key: k, tenths: tenths, used: true}
	return nil
}

// Last returns the last accepted temperature for k.
func (t *Tracker) Last(k Key) (float64, bool) {
	t.once.Do(t.init)
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.slots {
		if s.used && s.key == k {
			return fromTenths(s.tenths), true
		}
	}
	return 0, false
}

// Len returns the number of tracked sensors.
func (t *Tracker) Len() int {
	t.once.Do(t.init)
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.used
}

// Capacity returns the number of slots.
func (t *Tracker) Capacity() int {
	t.once.Do(t.init)
	return t.capacity
}

func toTenths(c float64) int { return int(math.Round(c * 10)) }

func fromTenths(v int) float64 { return float64(v) / 10 }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
