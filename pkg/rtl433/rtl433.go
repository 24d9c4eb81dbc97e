package rtl433

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AJolly/rtl-433/internal/bitbuffer"
	"github.com/AJolly/rtl-433/internal/debounce"
	"github.com/AJolly/rtl-433/internal/driver"
	_ "github.com/AJolly/rtl-433/internal/driver/oria" // register driver
	"github.com/AJolly/rtl-433/internal/metrics"
	"github.com/AJolly/rtl-433/internal/options"
	"github.com/AJolly/rtl-433/internal/reject"
	"github.com/AJolly/rtl-433/internal/sink"
)

type (
	// BitBuffer is one frame candidate: rows of bits with their lengths.
	BitBuffer = bitbuffer.BitBuffer
	// Tracker is the per-sensor debounce state.
	Tracker = debounce.Tracker
	// Reason tells why a frame was rejected.
	Reason = reject.Reason
	// Sink receives accepted readings.
	Sink = sink.Sink
)

// ParseCodes reads rows in {bits}hex notation.
func ParseCodes(codes string) (*BitBuffer, error) {
	return bitbuffer.Parse(codes)
}

// NewTracker returns a tracker with the reference capacity and delta.
func NewTracker(opts ...debounce.Option) *Tracker {
	return debounce.New(opts...)
}

// Status is the outcome of decoding one frame candidate.
type Status int

const (
	// StatusNoFrame means no row of interest was present. Not an error.
	StatusNoFrame Status = iota
	// StatusAccepted means a reading was produced and emitted.
	StatusAccepted
	// StatusRejected means a frame was present but failed a check.
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusRejected:
		return "rejected"
	default:
		return "no_frame"
	}
}

// Result captures the outcome of Decode.
type Result struct {
	Driver string
	Codes  string
	Rows   int
	Status Status
	Reason Reason
	Err    error
	Fields map[string]any
}

// String renders a human-readable representation of the result.
func (r Result) String() string {
	summary := map[string]any{
		"driver": r.Driver,
		"rows":   r.Rows,
		"codes":  r.Codes,
		"status": r.Status.String(),
	}
	if r.Status == StatusRejected {
		summary["reason"] = r.Reason.String()
		summary["class"] = r.Reason.Class().String()
	}
	if r.Err != nil {
		summary["error"] = r.Err.Error()
	}
	if len(r.Fields) > 0 {
		summary["fields"] = r.Fields
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Sprintf("driver: %s rows:%d status:%s (marshal error: %v)", r.Driver, r.Rows, r.Status, err)
	}
	return string(data)
}

// Reading is the typed view of an accepted result.
type Reading struct {
	Model        string
	DeviceID     uint8
	Channel      int
	TemperatureC float64
}

// Reading extracts the measurement from an accepted result.
func (r Result) Reading() (Reading, error) {
	if r.Status != StatusAccepted {
		return Reading{}, fmt.Errorf("result is %s, not accepted", r.Status)
	}
	fs := r.FieldSet()
	model, err := fs.String("model")
	if err != nil {
		return Reading{}, err
	}
	id, err := fs.Int("id")
	if err != nil {
		return Reading{}, err
	}
	ch, err := fs.Int("channel")
	if err != nil {
		return Reading{}, err
	}
	temp, err := fs.Float("temperature_C")
	if err != nil {
		return Reading{}, err
	}
	return Reading{Model: model, DeviceID: uint8(id), Channel: int(ch), TemperatureC: temp}, nil
}

// Decoder owns the state shared across frames: the debounce tracker, the
// diagnostics logger, reporting sinks and metrics. Whoever drives the
// receive loop creates it and decides its lifetime.
type Decoder struct {
	tracker *Tracker
	logger  logrus.FieldLogger
	sinks   sink.Multi
	metrics *metrics.Collector
	now     func() time.Time
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithTracker replaces the decoder's tracker, e.g. to share one between
// decoders or to change its capacity. A nil tracker is ignored; debounce
// cannot be switched off.
func WithTracker(t *Tracker) Option {
	return func(d *Decoder) {
		if t != nil {
			d.tracker = t
		}
	}
}

// WithLogger sets the diagnostics sink.
func WithLogger(l logrus.FieldLogger) Option {
	return func(d *Decoder) { d.logger = l }
}

// WithSink adds a reporting sink.
func WithSink(s Sink) Option {
	return func(d *Decoder) { d.sinks = append(d.sinks, s) }
}

// WithMetrics records outcomes in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(d *Decoder) { d.metrics = c }
}

// WithClock overrides the time stamped on emitted readings.
func WithClock(now func() time.Time) Option {
	return func(d *Decoder) { d.now = now }
}

// NewDecoder returns a decoder with a fresh tracker unless one is given.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		tracker: debounce.New(),
		logger:  logrus.StandardLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Tracker returns the decoder's debounce tracker.
func (d *Decoder) Tracker() *Tracker { return d.tracker }

// Decode runs one frame candidate through the registered drivers. Accepted
// readings are emitted to every sink exactly once; rejections are only
// logged.
func (d *Decoder) Decode(ctx context.Context, bb *BitBuffer) Result {
	result := Result{
		Driver: "unknown",
		Codes:  bb.String(),
		Rows:   bb.NumRows(),
	}
	defer d.observe(&result)

	drv, err := driver.Lookup(bb)
	if err != nil {
		result.Reason = reject.NoMatchingRow
		return result
	}
	result.Driver = drv.Name()

	ctx = options.WithTracker(ctx, d.tracker)
	ctx = options.WithLogger(ctx, d.logger)
	fields, err := drv.Process(ctx, bb)
	if err != nil {
		reason, ok := reject.ReasonOf(err)
		if !ok {
			result.Status = StatusRejected
			result.Err = err
			return result
		}
		result.Reason = reason
		result.Err = err
		if reason.Class() != reject.Absence {
			result.Status = StatusRejected
		}
		return result
	}
	result.Status = StatusAccepted
	result.Fields = fields
	d.emit(ctx, result)
	return result
}

// DecodeCodes parses codes and decodes them. The error is only set for
// input that cannot be parsed.
func (d *Decoder) DecodeCodes(ctx context.Context, codes string) (Result, error) {
	bb, err := bitbuffer.Parse(codes)
	if err != nil {
		return Result{}, fmt.Errorf("parse codes: %w", err)
	}
	return d.Decode(ctx, bb), nil
}

func (d *Decoder) emit(ctx context.Context, r Result) {
	if len(d.sinks) == 0 {
		return
	}
	reading, err := r.Reading()
	if err != nil {
		d.logger.WithError(err).Error("accepted result without reading fields")
		return
	}
	out := sink.Reading{
		Time:         d.now(),
		Model:        reading.Model,
		ID:           int(reading.DeviceID),
		Channel:      reading.Channel,
		TemperatureC: reading.TemperatureC,
	}
	for _, s := range d.sinks {
		if err := s.Emit(ctx, out); err != nil {
			d.logger.WithError(err).WithField("sink", s.Name()).Error("failed to emit reading")
			if d.metrics != nil {
				d.metrics.SinkError(s.Name())
			}
		}
	}
}

func (d *Decoder) observe(r *Result) {
	if d.metrics == nil {
		return
	}
	d.metrics.ObserveFrame(r.Driver, r.Status.String(), r.Reason)
	if d.tracker != nil {
		d.metrics.SetTracked(d.tracker.Len())
	}
}

// Analyze decodes codes with a fresh tracker, so no debounce history
// applies.
func Analyze(ctx context.Context, codes string) (Result, error) {
	return AnalyzeWithOptions(ctx, codes, AnalyzeOptions{})
}

// AnalyzeWithOptions decodes codes with custom options.
func AnalyzeWithOptions(ctx context.Context, codes string, opts AnalyzeOptions) (Result, error) {
	return NewDecoder(opts.decoderOptions()...).DecodeCodes(ctx, codes)
}
