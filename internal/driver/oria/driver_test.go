package oria

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/AJolly/rtl-433/internal/bitbuffer"
	"github.com/AJolly/rtl-433/internal/debounce"
	"github.com/AJolly/rtl-433/internal/driver"
	"github.com/AJolly/rtl-433/internal/options"
	"github.com/AJolly/rtl-433/internal/reject"
	"github.com/AJolly/rtl-433/internal/testutil"
)

func TestDriverRegistered(t *testing.T) {
	bb := testutil.OriaFrame(testutil.OriaFields{DeviceID: 1, Channel: 1, Tenths: 1})
	drv, err := driver.Lookup(bb)
	require.NoError(t, err)
	require.Equal(t, "oria_wa150km", drv.Name())
	require.Equal(t, []string{"model", "id", "channel", "temperature_C"}, drv.Fields())
	require.Equal(t, driver.Modulation{Kind: "OOK_PULSE_PCM", ShortWidth: 490, LongWidth: 490, GapLimit: 1500, ResetLimit: 4000}, drv.Modulation())

	_, err = driver.Lookup(bitbuffer.New(bitbuffer.Row{Bytes: []byte{0xAA}, Bits: 8}))
	require.ErrorIs(t, err, driver.ErrNoDriver)
}

func TestProcessRoundTrip(t *testing.T) {
	ctx := context.Background()
	for ch := 1; ch <= 16; ch += 5 {
		for _, id := range []uint8{0x01, 0x5A, 0xA5, 0xFE} {
			for tenths := -400; tenths <= 600; tenths += 137 {
				fields, err := (Driver{}).Process(ctx, testutil.OriaFrame(testutil.OriaFields{DeviceID: id, Channel: ch, Tenths: tenths}))
				require.NoError(t, err)
				require.Equal(t, "Oria-WA150KM", fields["model"])
				require.Equal(t, int(id), fields["id"])
				require.Equal(t, ch, fields["channel"])
				require.InDelta(t, float64(tenths)/10, fields["temperature_C"], 1e-9)
			}
		}
	}
}

func TestProcessDebounce(t *testing.T) {
	tr := debounce.New()
	ctx := options.WithTracker(context.Background(), tr)
	frameFor := func(tenths int) *bitbuffer.BitBuffer {
		return testutil.OriaFrame(testutil.OriaFields{DeviceID: 0x77, Channel: 5, Tenths: tenths})
	}

	_, err := (Driver{}).Process(ctx, frameFor(-180))
	require.NoError(t, err)
	_, err = (Driver{}).Process(ctx, frameFor(250))
	require.ErrorIs(t, err, reject.ErrTemperatureDeltaTooLarge)
	_, err = (Driver{}).Process(ctx, frameFor(-175))
	require.NoError(t, err)

	last, ok := tr.Last(debounce.Key{DeviceID: 0x77, Channel: 5})
	require.True(t, ok)
	require.InDelta(t, -17.5, last, 1e-9)

	// identical input, different outcome depending on history
	other := options.WithTracker(context.Background(), debounce.New())
	_, err = (Driver{}).Process(other, frameFor(250))
	require.NoError(t, err)
}

func TestProcessLogsRejections(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.TraceLevel)
	ctx := options.WithLogger(context.Background(), logger)

	d := testutil.OriaPayload(testutil.OriaFields{DeviceID: 0x10, Channel: 1, Tenths: 100})
	d[8] = 0xAA
	_, err := (Driver{}).Process(ctx, bitbuffer.New(testutil.EncodePayload(d)))
	require.ErrorIs(t, err, reject.ErrInvalidBcd)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, logrus.DebugLevel, entry.Level)
	require.Equal(t, "invalid_bcd", entry.Data["reason"])
	require.Equal(t, "oria_wa150km", entry.Data["driver"])
	require.Contains(t, entry.Message, "tens=10 ones=10")

	_, err = (Driver{}).Process(ctx, bitbuffer.New(bitbuffer.Row{Bytes: []byte{0}, Bits: 8}))
	require.ErrorIs(t, err, reject.ErrNoMatchingRow)
	require.Equal(t, logrus.TraceLevel, hook.LastEntry().Level)
}
