// Package cdr reads and writes little-endian CDR (Common Data Representation)
// payloads as carried in ROS2 MCAP channels.
//
// Every read on a Cursor is bounds-checked and returns a second boolean result
// instead of an error: false means the buffer ended before the value, and the
// cursor position is left untouched so the caller decides whether what it has
// parsed so far is still usable.
package cdr

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/safeconv"
)

// HeaderSize is the length of the encapsulation header preceding the payload.
const HeaderSize = 4

const (
	sizeUint32  = 4
	sizeFloat64 = 8
)

// Cursor is a forward-only reader over a CDR buffer.
type Cursor struct {
	buf    []byte
	pos    int
	origin int
}

// NewCursor returns a cursor positioned after the encapsulation header.
// The second result is false when buf is shorter than the header.
func NewCursor(buf []byte) (*Cursor, bool) {
	if len(buf) < HeaderSize {
		return nil, false
	}

	return &Cursor{buf: buf, pos: HeaderSize, origin: HeaderSize}, true
}

// Pos returns the absolute offset of the next read.
func (c *Cursor) Pos() int { return c.pos }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Skip advances n bytes.
func (c *Cursor) Skip(n int) bool {
	if n < 0 || n > c.Remaining() {
		return false
	}

	c.pos += n

	return true
}

// Align advances to the next multiple of n relative to the payload origin.
// Padding that runs past the end of the buffer clamps to the end, so the next
// read reports end-of-buffer.
func (c *Cursor) Align(n int) {
	rel := c.pos - c.origin
	if pad := (n - rel%n) % n; pad > 0 {
		c.pos = min(c.pos+pad, len(c.buf))
	}
}

// Uint32 reads a little-endian uint32.
func (c *Cursor) Uint32() (uint32, bool) {
	if c.Remaining() < sizeUint32 {
		return 0, false
	}

	v := binary.LittleEndian.Uint32(c.buf[c.pos:])
	c.pos += sizeUint32

	return v, true
}

// Int32 reads a little-endian int32.
func (c *Cursor) Int32() (int32, bool) {
	v, ok := c.Uint32()

	return int32(v), ok //nolint:gosec // two's complement reinterpretation.
}

// Float64 reads a little-endian IEEE-754 double.
func (c *Cursor) Float64() (float64, bool) {
	if c.Remaining() < sizeFloat64 {
		return 0, false
	}

	v := math.Float64frombits(binary.LittleEndian.Uint64(c.buf[c.pos:]))
	c.pos += sizeFloat64

	return v, true
}

// String reads a length-prefixed string and pads to 4-byte alignment.
// Trailing NUL terminators are stripped and invalid UTF-8 is replaced.
func (c *Cursor) String() (string, bool) {
	start := c.pos

	length, ok := c.Uint32()
	if !ok {
		return "", false
	}

	n, fits := safeconv.Uint32ToInt(length)
	if !fits || n > c.Remaining() {
		c.pos = start

		return "", false
	}

	raw := c.buf[c.pos : c.pos+n]
	c.pos += n
	c.Align(sizeUint32)

	return strings.ToValidUTF8(strings.TrimRight(string(raw), "\x00"), "�"), true
}

// StringSeq reads a sequence of strings. On truncation it returns the strings
// read so far together with false; the cursor stays after the last complete string.
func (c *Cursor) StringSeq() ([]string, bool) {
	start := c.pos

	count, ok := c.Uint32()
	if !ok {
		return nil, false
	}

	n, fits := safeconv.Uint32ToInt(count)
	// Each element carries at least its own length prefix.
	if !fits || n > c.Remaining()/sizeUint32 {
		c.pos = start

		return nil, false
	}

	out := make([]string, 0, n)

	for range n {
		s, strOK := c.String()
		if !strOK {
			return out, false
		}

		out = append(out, s)
	}

	return out, true
}

// Float64Seq reads a sequence of doubles. A sequence whose declared length
// does not fit in the buffer is rejected as a whole and the cursor is restored.
func (c *Cursor) Float64Seq() ([]float64, bool) {
	start := c.pos

	count, ok := c.Uint32()
	if !ok {
		return nil, false
	}

	n, fits := safeconv.Uint32ToInt(count)
	if !fits {
		c.pos = start

		return nil, false
	}

	if n == 0 {
		return []float64{}, true
	}

	c.Align(sizeFloat64)

	if n > c.Remaining()/sizeFloat64 {
		c.pos = start

		return nil, false
	}

	out := make([]float64, n)
	for i := range out {
		out[i], _ = c.Float64()
	}

	return out, true
}
