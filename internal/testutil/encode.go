package testutil

import (
	"github.com/AJolly/rtl-433/internal/bitbuffer"
	"github.com/AJolly/rtl-433/internal/driver/codec"
)

// OriaFields describes the values placed into a synthetic transmission.
// Tenths is the temperature in tenths of a degree, e.g. -405 for -40.5.
type OriaFields struct {
	DeviceID uint8
	Channel  int
	Tenths   int
}

// OriaPayload lays fields out as a decoded 14-byte payload. Values outside
// the encodable range are truncated to their nibbles.
func OriaPayload(f OriaFields) [14]byte {
	var d [14]byte
	d[0], d[1], d[2] = 0xFF, 0xFF, 0xFF
	d[3], d[4] = 0xFA, 0x20
	d[5] = byte(f.Channel-1) << 4
	d[6] = f.DeviceID
	tenths := f.Tenths
	if tenths < 0 {
		d[9] = 0x08
		tenths = -tenths
	}
	d[7] = byte(tenths%10) << 4
	bcd, err := codec.EncodeBCDByte(tenths / 10 % 100)
	if err == nil {
		d[8] = bcd
	}
	d[13] = 0x65
	return d
}

// EncodePayload turns a decoded payload into the raw 227-bit row as it is
// received: bytes bit-reflected, Manchester coded with a one as 10 and a
// zero as 01, followed by three idle bits.
func EncodePayload(d [14]byte) bitbuffer.Row {
	row := bitbuffer.Row{Bytes: make([]byte, 29), Bits: 227}
	pos := 0
	put := func(bit byte) {
		if bit != 0 {
			row.Bytes[pos/8] |= 0x80 >> uint(pos%8)
		}
		pos++
	}
	for _, b := range d {
		t := bitbuffer.ReflectByte(b)
		for i := 7; i >= 0; i-- {
			bit := (t >> uint(i)) & 1
			put(bit)
			put(bit ^ 1)
		}
	}
	return row
}

// OriaFrame builds a complete frame buffer for f, preceded by a short
// preamble row the way the receiver slices it.
func OriaFrame(f OriaFields) *bitbuffer.BitBuffer {
	return bitbuffer.New(
		bitbuffer.Row{Bytes: []byte{0xAA, 0xA0}, Bits: 12},
		EncodePayload(OriaPayload(f)),
	)
}
