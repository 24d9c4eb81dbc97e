package bitbuffer

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Row is one demodulated pulse train. Bits may be shorter than 8*len(Bytes)
// when the transmission is not byte aligned.
type Row struct {
	Bytes []byte
	Bits  int
}

// BitAt returns the bit at position pos, MSB first. Positions past the
// backing bytes read as zero.
func (r Row) BitAt(pos int) byte {
	idx := pos / 8
	if idx < 0 || idx >= len(r.Bytes) {
		return 0
	}
	return (r.Bytes[idx] >> (7 - uint(pos%8))) & 1
}

// BitBuffer holds the rows of a single frame candidate.
type BitBuffer struct {
	rows []Row
}

// New builds a buffer from already sliced rows.
func New(rows ...Row) *BitBuffer {
	return &BitBuffer{rows: rows}
}

// NumRows returns the number of rows.
func (bb *BitBuffer) NumRows() int { return len(bb.rows) }

// Row returns row i. It panics like a slice index when i is out of range.
func (bb *BitBuffer) Row(i int) Row { return bb.rows[i] }

// AddRow appends a row.
func (bb *BitBuffer) AddRow(r Row) {
	bb.rows = append(bb.rows, r)
}

// FindRow returns the index of the first row with exactly bits bits.
func (bb *BitBuffer) FindRow(bits int) (int, bool) {
	for i, r := range bb.rows {
		if r.Bits == bits {
			return i, true
		}
	}
	return -1, false
}

// Invert complements every byte of every row in place.
func (bb *BitBuffer) Invert() {
	for _, r := range bb.rows {
		for i := range r.Bytes {
			r.Bytes[i] = ^r.Bytes[i]
		}
	}
}

// Clone returns a deep copy.
func (bb *BitBuffer) Clone() *BitBuffer {
	out := &BitBuffer{rows: make([]Row, len(bb.rows))}
	for i, r := range bb.rows {
		buf := make([]byte, len(r.Bytes))
		copy(buf, r.Bytes)
		out.rows[i] = Row{Bytes: buf, Bits: r.Bits}
	}
	return out
}

// ManchesterDecode decodes row starting at bit start, reading at most max
// input bits (0 means the whole row). Each pair of input bits yields the
// second bit of the pair; decoding stops at the first pair without a
// transition.
func (bb *BitBuffer) ManchesterDecode(row, start, max int) Row {
	in := bb.rows[row]
	end := in.Bits
	if max > 0 && start+max < end {
		end = start + max
	}
	var out Row
	for pos := start; pos+1 < end; pos += 2 {
		b1 := in.BitAt(pos)
		b2 := in.BitAt(pos + 1)
		if b1 == b2 {
			break
		}
		out.addBit(b2)
	}
	return out
}

func (r *Row) addBit(bit byte) {
	if r.Bits%8 == 0 {
		r.Bytes = append(r.Bytes, 0)
	}
	if bit != 0 {
		r.Bytes[r.Bits/8] |= 0x80 >> uint(r.Bits%8)
	}
	r.Bits++
}

// ReflectByte reverses the bit order of a single byte.
func ReflectByte(b byte) byte {
	b = (b&0xF0)>>4 | (b&0x0F)<<4
	b = (b&0xCC)>>2 | (b&0x33)<<2
	b = (b&0xAA)>>1 | (b&0x55)<<1
	return b
}

// ReflectBytes reverses the bit order within each byte of b in place.
func ReflectBytes(b []byte) {
	for i := range b {
		b[i] = ReflectByte(b[i])
	}
}

// String renders the buffer in the {bits}hex row notation understood by
// Parse.
func (bb *BitBuffer) String() string {
	parts := make([]string, 0, len(bb.rows))
	for _, r := range bb.rows {
		n := (r.Bits + 7) / 8
		if n > len(r.Bytes) {
			n = len(r.Bytes)
		}
		parts = append(parts, fmt.Sprintf("{%d}%x", r.Bits, r.Bytes[:n]))
	}
	return strings.Join(parts, " ")
}

// Parse reads rows written as {bits}hex groups separated by whitespace, '/'
// or ','. A group without a bit count is taken as fully populated hex.
func Parse(codes string) (*BitBuffer, error) {
	fields := strings.FieldsFunc(codes, func(r rune) bool {
		return unicode.IsSpace(r) || r == '/' || r == ','
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("no rows in input")
	}
	bb := &BitBuffer{}
	for _, f := range fields {
		row, err := parseRow(f)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", bb.NumRows(), err)
		}
		bb.AddRow(row)
	}
	return bb, nil
}

func parseRow(s string) (Row, error) {
	bits := -1
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return Row{}, fmt.Errorf("unterminated bit count in %q", s)
		}
		n, err := strconv.Atoi(s[1:end])
		if err != nil || n < 0 {
			return Row{}, fmt.Errorf("invalid bit count in %q", s)
		}
		bits = n
		s = s[end+1:]
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if bits < 0 {
		bits = 4 * len(s)
	}
	if len(s)%2 != 0 {
		s += "0"
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return Row{}, fmt.Errorf("decode hex: %w", err)
	}
	if need := (bits + 7) / 8; need > len(data) {
		return Row{}, fmt.Errorf("%d bits need %d bytes, got %d", bits, need, len(data))
	}
	return Row{Bytes: data, Bits: bits}, nil
}
