package oria

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/AJolly/rtl-433/internal/bitbuffer"
	"github.com/AJolly/rtl-433/internal/debounce"
	"github.com/AJolly/rtl-433/internal/driver"
	"github.com/AJolly/rtl-433/internal/frame"
	"github.com/AJolly/rtl-433/internal/options"
	"github.com/AJolly/rtl-433/internal/reject"
)

const (
	driverName  = "oria_wa150km"
	modelName   = "Oria-WA150KM"
	description = "Oria WA150KM freezer and fridge thermometer"
)

var outputFields = []string{"model", "id", "channel", "temperature_C"}

func init() {
	driver.Register(driver.Detection{BitLength: frame.EncodedBits}, Driver{})
}

// Driver decodes Oria WA150KM transmissions.
type Driver struct{}

// Name returns the canonical driver name.
func (Driver) Name() string { return driverName }

// Model returns the model string reported with every reading.
func (Driver) Model() string { return modelName }

// Description returns a human readable device name.
func (Driver) Description() string { return description }

// Fields lists the output keys in reporting order.
func (Driver) Fields() []string { return outputFields }

// Modulation returns the receiver settings for this sensor.
func (Driver) Modulation() driver.Modulation {
	return driver.Modulation{
		Kind:       "OOK_PULSE_PCM",
		ShortWidth: 490,
		LongWidth:  490,
		GapLimit:   1500,
		ResetLimit: 4000,
	}
}

// Process validates and decodes one frame candidate. When ctx carries a
// tracker the reading is also checked against the sensor's history.
func (Driver) Process(ctx context.Context, bb *bitbuffer.BitBuffer) (map[string]any, error) {
	log := options.Logger(ctx).WithField("driver", driverName)

	d, err := frame.Validate(bb)
	if err != nil {
		logRejection(log, err)
		return nil, err
	}
	r, err := ExtractReading(d, log)
	if err != nil {
		logRejection(log.WithField("payload", fmt.Sprintf("%x", d[:])), err)
		return nil, err
	}
	if tr := options.Tracker(ctx); tr != nil {
		if err := tr.Observe(debounce.Key{DeviceID: r.DeviceID, Channel: r.Channel}, r.Celsius()); err != nil {
			logRejection(log.WithFields(logrus.Fields{"id": r.DeviceID, "channel": r.Channel}), err)
			return nil, err
		}
	}
	return map[string]any{
		"model":         modelName,
		"id":            int(r.DeviceID),
		"channel":       r.Channel,
		"temperature_C": r.Celsius(),
	}, nil
}

func logRejection(log logrus.FieldLogger, err error) {
	reason, _ := reject.ReasonOf(err)
	entry := log.WithField("reason", reason.String())
	switch reason {
	case reject.NoMatchingRow, reject.BadPreamble, reject.BadTrailer:
		entry.Trace(err.Error())
	default:
		entry.Debug(err.Error())
	}
}
