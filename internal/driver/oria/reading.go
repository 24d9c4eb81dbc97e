package oria

import (
	"github.com/sirupsen/logrus"

	"github.com/AJolly/rtl-433/internal/driver/codec"
	"github.com/AJolly/rtl-433/internal/frame"
	"github.com/AJolly/rtl-433/internal/reject"
)

const (
	minTenths = -400
	maxTenths = 600

	minChannel = 1
	maxChannel = 16

	signMask = 0x08
)

// Reading is a structurally and semantically valid measurement.
type Reading struct {
	DeviceID uint8
	Channel  int
	Tenths   int
}

// Celsius returns the temperature in degrees.
func (r Reading) Celsius() float64 { return float64(r.Tenths) / 10 }

// ExtractReading pulls the measurement out of a decoded payload and checks
// each field against the protocol's limits.
func ExtractReading(d frame.Decoded, log logrus.FieldLogger) (Reading, error) {
	r := Reading{
		Channel:  int(codec.HighNibble(d[5])) + 1,
		DeviceID: d[6],
	}
	// Unreachable while the channel is a nibble plus one; kept so a
	// layout change cannot slip an out-of-range channel through.
	if r.Channel < minChannel || r.Channel > maxChannel {
		return r, reject.New(reject.ChannelOutOfRange, "channel %d, expected %d-%d", r.Channel, minChannel, maxChannel)
	}

	fracNibble := codec.HighNibble(d[7])
	frac, fracErr := codec.DecodeBCDDigit(fracNibble)
	whole, wholeErr := codec.DecodeBCDByte(d[8])
	if fracErr != nil || wholeErr != nil {
		return r, reject.New(reject.InvalidBcd, "decimal=%d tens=%d ones=%d",
			fracNibble, codec.HighNibble(d[8]), codec.LowNibble(d[8]))
	}

	r.Tenths = whole*10 + frac
	if d[9]&signMask != 0 {
		r.Tenths = -r.Tenths
	}
	if r.Tenths < minTenths || r.Tenths > maxTenths {
		return r, reject.New(reject.TemperatureOutOfRange, "%.1f C, expected %.1f C to %.1f C",
			r.Celsius(), float64(minTenths)/10, float64(maxTenths)/10)
	}

	if r.DeviceID == 0x00 || r.DeviceID == 0xFF {
		log.WithField("id", r.DeviceID).Warn("suspicious device id, might indicate corrupted data")
	}
	return r, nil
}
