package codec

import "fmt"

// HighNibble returns the upper four bits of b.
func HighNibble(b byte) byte { return (b >> 4) & 0x0F }

// LowNibble returns the lower four bits of b.
func LowNibble(b byte) byte { return b & 0x0F }

// DecodeBCDDigit validates a single BCD nibble.
func DecodeBCDDigit(n byte) (int, error) {
	if n > 9 {
		return 0, fmt.Errorf("invalid BCD digit: 0x%X", n)
	}
	return int(n), nil
}

// DecodeBCDByte converts a packed BCD byte (tens in the upper nibble) to an
// integer.
func DecodeBCDByte(b byte) (int, error) {
	tens, err := DecodeBCDDigit(HighNibble(b))
	if err != nil {
		return 0, fmt.Errorf("invalid BCD byte: 0x%02X", b)
	}
	ones, err := DecodeBCDDigit(LowNibble(b))
	if err != nil {
		return 0, fmt.Errorf("invalid BCD byte: 0x%02X", b)
	}
	return tens*10 + ones, nil
}

// EncodeBCDByte packs a value in 0..99 as BCD.
func EncodeBCDByte(v int) (byte, error) {
	if v < 0 || v > 99 {
		return 0, fmt.Errorf("value %d out of BCD byte range", v)
	}
	return byte(v/10)<<4 | byte(v%10), nil
}
