// Package sink delivers accepted readings to their consumers.
package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// TimeFormat matches the rtl_433 default "time" field.
const TimeFormat = "2006-01-02 15:04:05"

// Reading is what gets reported for an accepted frame.
type Reading struct {
	Time         time.Time
	Model        string
	ID           int
	Channel      int
	TemperatureC float64
}

type readingJSON struct {
	Time         string  `json:"time"`
	Model        string  `json:"model"`
	ID           int     `json:"id"`
	Channel      int     `json:"channel"`
	TemperatureC float64 `json:"temperature_C"`
}

// MarshalJSON renders the reading in rtl_433 key order.
func (r Reading) MarshalJSON() ([]byte, error) {
	return json.Marshal(readingJSON{
		Time:         r.Time.Format(TimeFormat),
		Model:        r.Model,
		ID:           r.ID,
		Channel:      r.Channel,
		TemperatureC: r.TemperatureC,
	})
}

// Sink receives accepted readings.
type Sink interface {
	Name() string
	Emit(context.Context, Reading) error
}

// JSONWriter writes one JSON object per line.
type JSONWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewJSONWriter returns a sink writing to w.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{w: w}
}

// Name implements Sink.
func (*JSONWriter) Name() string { return "json" }

// Emit implements Sink.
func (s *JSONWriter) Emit(_ context.Context, r Reading) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write reading: %w", err)
	}
	return nil
}

// Func adapts a function to the Sink interface.
type Func func(context.Context, Reading) error

// Name implements Sink.
func (Func) Name() string { return "func" }

// Emit implements Sink.
func (f Func) Emit(ctx context.Context, r Reading) error { return f(ctx, r) }

// Multi fans a reading out to every sink. All sinks are tried; failures are
// joined.
type Multi []Sink

// Name implements Sink.
func (Multi) Name() string { return "multi" }

// Emit implements Sink.
func (m Multi) Emit(ctx context.Context, r Reading) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, r); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
