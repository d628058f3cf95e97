package math_test

import (
	"math"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tmmath "github.com/oraichain/tonbridge-core/libs/math"
)

func TestSafeAddUint64(t *testing.T) {
	f := func(a, b uint64) bool {
		c, ok := tmmath.SafeAddUint64(a, b)
		return !ok || c == a+b
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}

	_, ok := tmmath.SafeAddUint64(math.MaxUint64, 1)
	assert.False(t, ok)
}

func TestSafeMulUint64(t *testing.T) {
	testCases := []struct {
		a, b     uint64
		c        uint64
		overflow bool
	}{
		{0, 0, 0, false},
		{1, 0, 0, false},
		{2, 3, 6, false},
		{math.MaxUint64, 1, math.MaxUint64, false},
		{math.MaxUint64 / 2, 3, 0, true},
		{1 << 32, 1 << 32, 0, true},
	}

	for i, tc := range testCases {
		c, ok := tmmath.SafeMulUint64(tc.a, tc.b)
		assert.Equal(t, !tc.overflow, ok, "#%d", i)
		assert.Equal(t, tc.c, c, "#%d", i)
	}
}

func TestSafeConvert(t *testing.T) {
	v, err := tmmath.SafeConvertUint8(255)
	require.NoError(t, err)
	assert.EqualValues(t, 255, v)
	_, err = tmmath.SafeConvertUint8(256)
	assert.Equal(t, tmmath.ErrOverflowUint8, err)

	_, err = tmmath.SafeConvertUint32(math.MaxUint32 + 1)
	assert.Equal(t, tmmath.ErrOverflowUint32, err)
}

func TestParseFraction(t *testing.T) {
	testCases := map[string]struct {
		f   string
		exp tmmath.Fraction
		err bool
	}{
		"one third":      {"1/3", tmmath.Fraction{Numerator: 1, Denominator: 3}, false},
		"two thirds":     {"2/3", tmmath.Fraction{Numerator: 2, Denominator: 3}, false},
		"zero denom":     {"1/0", tmmath.Fraction{}, true},
		"no slash":       {"13", tmmath.Fraction{}, true},
		"negative":       {"-1/3", tmmath.Fraction{}, true},
		"too many parts": {"1/2/3", tmmath.Fraction{}, true},
	}
	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			got, err := tmmath.ParseFraction(tc.f)
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.exp, got)
		})
	}
}

func TestFractionExceeds(t *testing.T) {
	twoThirds := tmmath.Fraction{Numerator: 2, Denominator: 3}

	ok, err := twoThirds.Exceeds(201, 300)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = twoThirds.Exceeds(200, 300)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = twoThirds.Exceeds(math.MaxUint64, 1)
	assert.Error(t, err)
}
