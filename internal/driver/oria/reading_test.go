package oria

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/AJolly/rtl-433/internal/frame"
	"github.com/AJolly/rtl-433/internal/reject"
	"github.com/AJolly/rtl-433/internal/testutil"
)

func payload(f testutil.OriaFields) frame.Decoded {
	return frame.Decoded(testutil.OriaPayload(f))
}

func TestExtractReading(t *testing.T) {
	log, _ := test.NewNullLogger()
	r, err := ExtractReading(payload(testutil.OriaFields{DeviceID: 0x3C, Channel: 2, Tenths: -185}), log)
	require.NoError(t, err)
	require.Equal(t, Reading{DeviceID: 0x3C, Channel: 2, Tenths: -185}, r)
	require.InDelta(t, -18.5, r.Celsius(), 1e-9)
}

func TestTemperatureBoundaries(t *testing.T) {
	log, _ := test.NewNullLogger()
	for _, tenths := range []int{-400, 600, 0, -1, 1} {
		_, err := ExtractReading(payload(testutil.OriaFields{DeviceID: 1, Channel: 1, Tenths: tenths}), log)
		require.NoError(t, err, "tenths %d", tenths)
	}
	for _, tenths := range []int{-401, 601, 999, -999} {
		_, err := ExtractReading(payload(testutil.OriaFields{DeviceID: 1, Channel: 1, Tenths: tenths}), log)
		require.ErrorIs(t, err, reject.ErrTemperatureOutOfRange, "tenths %d", tenths)
	}
}

func TestInvalidBCD(t *testing.T) {
	log, _ := test.NewNullLogger()
	tests := map[string]func(d *frame.Decoded){
		"fraction": func(d *frame.Decoded) { d[7] = 0xA0 },
		"tens":     func(d *frame.Decoded) { d[8] = 0xB2 },
		"ones":     func(d *frame.Decoded) { d[8] = 0x1F },
	}
	for name, mutate := range tests {
		mutate := mutate
		t.Run(name, func(t *testing.T) {
			d := payload(testutil.OriaFields{DeviceID: 0x10, Channel: 4, Tenths: 123})
			mutate(&d)
			_, err := ExtractReading(d, log)
			require.ErrorIs(t, err, reject.ErrInvalidBcd)
		})
	}
}

func TestChannelIsNibblePlusOne(t *testing.T) {
	log, _ := test.NewNullLogger()
	for nibble := 0; nibble < 16; nibble++ {
		d := payload(testutil.OriaFields{DeviceID: 0x20, Channel: 1, Tenths: 50})
		d[5] = byte(nibble)<<4 | 0x0F
		r, err := ExtractReading(d, log)
		require.NoError(t, err)
		require.Equal(t, nibble+1, r.Channel)
	}
}

func TestSignBit(t *testing.T) {
	log, _ := test.NewNullLogger()
	d := payload(testutil.OriaFields{DeviceID: 0x20, Channel: 1, Tenths: 50})
	d[9] = 0xF7
	r, err := ExtractReading(d, log)
	require.NoError(t, err)
	require.Equal(t, 50, r.Tenths)
	d[9] = 0x08
	r, err = ExtractReading(d, log)
	require.NoError(t, err)
	require.Equal(t, -50, r.Tenths)
}

func TestSuspiciousDeviceIDIsOnlyLogged(t *testing.T) {
	for _, id := range []uint8{0x00, 0xFF} {
		log, hook := test.NewNullLogger()
		r, err := ExtractReading(payload(testutil.OriaFields{DeviceID: id, Channel: 3, Tenths: 42}), log)
		require.NoError(t, err)
		require.Equal(t, id, r.DeviceID)
		require.NotNil(t, hook.LastEntry())
		require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		require.Contains(t, hook.LastEntry().Message, "suspicious device id")
	}

	log, hook := test.NewNullLogger()
	_, err := ExtractReading(payload(testutil.OriaFields{DeviceID: 0x01, Channel: 3, Tenths: 42}), log)
	require.NoError(t, err)
	require.Empty(t, hook.AllEntries())
}
