package frame

import (
	"github.com/AJolly/rtl-433/internal/bitbuffer"
	"github.com/AJolly/rtl-433/internal/reject"
)

const (
	// EncodedBits is the row length of a complete transmission before
	// line decoding.
	EncodedBits = 227
	// DecodedLen is the payload length after Manchester decoding.
	DecodedLen = 14

	warmupLen     = 3
	warmupByte    = 0xAA
	rawTrailer    = 0x69
	sanityTrailer = 0x65
	sanityIndex   = DecodedLen - 1
)

// Decoded is the line-decoded, bit-reflected payload.
//
//	0  1  2  3  4  5  6  7  8  9  10 11 12 13
//	FF FF FF MM ?? CC DD TT II SS ?? ?? ?? 65
type Decoded [DecodedLen]byte

// Validate locates the transmission row in bb, checks the raw framing
// markers and returns the decoded payload. bb is not modified.
func Validate(bb *bitbuffer.BitBuffer) (Decoded, error) {
	var d Decoded
	r, ok := bb.FindRow(EncodedBits)
	if !ok {
		return d, reject.New(reject.NoMatchingRow, "no row with %d bits", EncodedBits)
	}
	row := bb.Row(r)
	if len(row.Bytes) < (EncodedBits+7)/8 {
		return d, reject.New(reject.NoMatchingRow, "row %d holds %d bytes for %d bits", r, len(row.Bytes), row.Bits)
	}
	for i := 0; i < warmupLen; i++ {
		if row.Bytes[i] != warmupByte {
			return d, reject.New(reject.BadPreamble, "warmup byte %d is 0x%02x, want 0x%02x", i, row.Bytes[i], warmupByte)
		}
	}
	last := row.Bits/8 - 1
	if row.Bytes[last] != rawTrailer {
		return d, reject.New(reject.BadTrailer, "raw byte %d is 0x%02x, want 0x%02x", last, row.Bytes[last], rawTrailer)
	}

	inv := bb.Clone()
	inv.Invert()
	out := inv.ManchesterDecode(r, 0, EncodedBits)
	if out.Bits < DecodedLen*8 {
		return d, reject.New(reject.NoMatchingRow, "manchester decode yielded %d bits, want %d", out.Bits, DecodedLen*8)
	}
	copy(d[:], out.Bytes)
	bitbuffer.ReflectBytes(d[:])

	if d[sanityIndex] != sanityTrailer {
		return d, reject.New(reject.SanityTrailerMismatch, "decoded byte %d is 0x%02x, want 0x%02x", sanityIndex, d[sanityIndex], sanityTrailer)
	}
	return d, nil
}
