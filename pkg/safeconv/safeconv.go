// Package safeconv provides integer type conversions that either panic on
// overflow or report whether the value fits.
package safeconv

import "math"

// MaxInt is the maximum value for int type (platform-dependent).
const MaxInt = int(^uint(0) >> 1)

// MaxUint32 is the maximum value for uint32 type.
const MaxUint32 = uint32(math.MaxUint32)

// MustIntToUint32 converts int to uint32, panics on bounds violation.
// Use only when bounds violations are logically impossible.
func MustIntToUint32(v int) uint32 {
	if v < 0 || uint64(v) > uint64(MaxUint32) {
		panic("safeconv: int to uint32 out of bounds")
	}

	return uint32(v)
}

// Uint32ToInt converts uint32 to int. The second result is false when the
// value does not fit, which can only happen on 32-bit platforms.
func Uint32ToInt(v uint32) (int, bool) {
	if uint64(v) > uint64(MaxInt) {
		return 0, false
	}

	return int(v), true
}

// Uint64ToFloatSeconds converts a nanosecond count to seconds.
func Uint64ToFloatSeconds(ns uint64) float64 {
	return float64(ns) * 1e-9
}
