package cdr

import (
	"encoding/binary"
	"math"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/safeconv"
)

// encapsulationLE is the CDR_LE representation identifier plus options.
var encapsulationLE = [HeaderSize]byte{0x00, 0x01, 0x00, 0x00}

// Writer builds a little-endian CDR payload with the same alignment rules
// the Cursor expects.
type Writer struct {
	buf []byte
}

// NewWriter returns a writer with the encapsulation header already emitted.
func NewWriter() *Writer {
	w := &Writer{buf: make([]byte, 0, 256)}
	w.buf = append(w.buf, encapsulationLE[:]...)

	return w
}

// Bytes returns the encoded payload.
func (w *Writer) Bytes() []byte { return w.buf }

// Align pads with zero bytes to the next multiple of n relative to the payload origin.
func (w *Writer) Align(n int) {
	rel := len(w.buf) - HeaderSize
	for range (n - rel%n) % n {
		w.buf = append(w.buf, 0)
	}
}

// Uint32 appends a uint32.
func (w *Writer) Uint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// Int32 appends an int32.
func (w *Writer) Int32(v int32) {
	w.Uint32(uint32(v)) //nolint:gosec // two's complement reinterpretation.
}

// Float64 appends a double without alignment.
func (w *Writer) Float64(v float64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// String appends a NUL-terminated, length-prefixed string padded to 4 bytes.
func (w *Writer) String(s string) {
	w.Uint32(safeconv.MustIntToUint32(len(s) + 1))
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
	w.Align(sizeUint32)
}

// StringSeq appends a sequence of strings.
func (w *Writer) StringSeq(values []string) {
	w.Uint32(safeconv.MustIntToUint32(len(values)))

	for _, s := range values {
		w.String(s)
	}
}

// Float64Seq appends a sequence of doubles, 8-byte aligned when non-empty.
func (w *Writer) Float64Seq(values []float64) {
	w.Uint32(safeconv.MustIntToUint32(len(values)))

	if len(values) == 0 {
		return
	}

	w.Align(sizeFloat64)

	for _, v := range values {
		w.Float64(v)
	}
}
