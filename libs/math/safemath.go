package math

import (
	"errors"
	"math"
)

var ErrOverflowUint8 = errors.New("uint8 overflow")
var ErrOverflowUint32 = errors.New("uint32 overflow")
var ErrOverflowUint64 = errors.New("uint64 overflow")

// SafeAddUint64 adds two uint64 integers. The second return value is false
// on overflow.
func SafeAddUint64(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

// SafeMulUint64 multiplies two uint64 integers. The second return value is
// false on overflow.
func SafeMulUint64(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxUint64/b {
		return 0, false
	}
	return a * b, true
}

// SafeConvertUint32 takes a uint64 and checks if it overflows.
func SafeConvertUint32(a uint64) (uint32, error) {
	if a > math.MaxUint32 {
		return 0, ErrOverflowUint32
	}
	return uint32(a), nil
}

// SafeConvertUint8 takes a uint64 and checks if it overflows.
func SafeConvertUint8(a uint64) (uint8, error) {
	if a > math.MaxUint8 {
		return 0, ErrOverflowUint8
	}
	return uint8(a), nil
}
