package frame

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AJolly/rtl-433/internal/bitbuffer"
	"github.com/AJolly/rtl-433/internal/reject"
	"github.com/AJolly/rtl-433/internal/testutil"
)

func TestValidate(t *testing.T) {
	payload := testutil.OriaPayload(testutil.OriaFields{DeviceID: 0x3C, Channel: 2, Tenths: 215})
	bb := testutil.OriaFrame(testutil.OriaFields{DeviceID: 0x3C, Channel: 2, Tenths: 215})
	before := bb.String()

	d, err := Validate(bb)
	require.NoError(t, err)
	require.Equal(t, Decoded(payload), d)
	require.Equal(t, before, bb.String(), "caller buffer must not be inverted")
}

func TestValidateRawMarkers(t *testing.T) {
	row := testutil.EncodePayload(testutil.OriaPayload(testutil.OriaFields{DeviceID: 1, Channel: 1, Tenths: 10}))
	require.Equal(t, []byte{0xAA, 0xAA, 0xAA}, row.Bytes[:3])
	require.Equal(t, byte(0x69), row.Bytes[27])
}

func TestValidateIgnoresOtherRowLengths(t *testing.T) {
	good := testutil.EncodePayload(testutil.OriaPayload(testutil.OriaFields{DeviceID: 7, Channel: 1, Tenths: 0}))
	bb := bitbuffer.New(
		bitbuffer.Row{Bytes: []byte{0x00, 0x00, 0x00}, Bits: 24},
		bitbuffer.Row{Bytes: good.Bytes, Bits: 226},
		bitbuffer.Row{Bytes: append(append([]byte{}, good.Bytes...), 0), Bits: 228},
	)
	_, err := Validate(bb)
	require.ErrorIs(t, err, reject.ErrNoMatchingRow)
}

func TestValidateMarkerFailures(t *testing.T) {
	fields := testutil.OriaFields{DeviceID: 0x42, Channel: 3, Tenths: -52}
	tests := []struct {
		name    string
		payload func(d *[14]byte)
		raw     func(raw []byte)
		want    error
	}{
		{name: "warmup0", raw: func(raw []byte) { raw[0] = 0xAB }, want: reject.ErrBadPreamble},
		{name: "warmup1", raw: func(raw []byte) { raw[1] = 0x2A }, want: reject.ErrBadPreamble},
		{name: "warmup2", raw: func(raw []byte) { raw[2] = 0xA8 }, want: reject.ErrBadPreamble},
		{name: "raw trailer", raw: func(raw []byte) { raw[27] = 0x6A }, want: reject.ErrBadTrailer},
		// only the low nibble changes, which travels in raw byte 26
		{name: "decoded trailer", payload: func(d *[14]byte) { d[13] = 0x6A }, want: reject.ErrSanityTrailerMismatch},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			d := testutil.OriaPayload(fields)
			if tc.payload != nil {
				tc.payload(&d)
			}
			row := testutil.EncodePayload(d)
			if tc.raw != nil {
				tc.raw(row.Bytes)
			}
			_, err := Validate(bitbuffer.New(row))
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidateShortManchester(t *testing.T) {
	row := testutil.EncodePayload(testutil.OriaPayload(testutil.OriaFields{DeviceID: 9, Channel: 1, Tenths: 100}))
	// the pair at bit 88 has no transition
	row.Bytes[11] = 0xFF
	_, err := Validate(bitbuffer.New(row))
	require.ErrorIs(t, err, reject.ErrNoMatchingRow)
}
