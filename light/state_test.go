package light_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	tmmath "github.com/oraichain/tonbridge-core/libs/math"
	"github.com/oraichain/tonbridge-core/light"
	"github.com/oraichain/tonbridge-core/types"
)

func TestNewState(t *testing.T) {
	vals, privs := types.DeterministicValidatorSet("new-state", 10, 10, 10)
	lb := genLightBlock(t, 5, bTime, vals, vals, privs, all(3))
	weak := genLightBlock(t, 5, bTime, vals, vals, privs, []int{0, 1})
	params := testParams(time.Hour)
	now := bTime.Add(time.Minute)

	testCases := map[string]struct {
		params  light.Params
		opts    light.TrustOptions
		lb      *types.LightBlock
		now     time.Time
		wantErr string
	}{
		"valid": {params, light.TrustOptions{Height: 5, Hash: lb.Hash()}, lb, now, ""},
		"empty chain id": {
			light.Params{TrustingPeriod: time.Hour, TrustLevel: light.DefaultTrustLevel},
			light.TrustOptions{Height: 5, Hash: lb.Hash()}, lb, now, "empty chain id",
		},
		"bad trust level": {
			light.Params{ChainID: chainID, TrustingPeriod: time.Hour, TrustLevel: tmmath.Fraction{Numerator: 1, Denominator: 5}},
			light.TrustOptions{Height: 5, Hash: lb.Hash()}, lb, now, "trustLevel must be within",
		},
		"zero height": {params, light.TrustOptions{Height: 0, Hash: lb.Hash()}, lb, now, "negative or zero height"},
		"short hash":  {params, light.TrustOptions{Height: 5, Hash: []byte{1}}, lb, now, "wrong hash"},
		"nil block":   {params, light.TrustOptions{Height: 5, Hash: lb.Hash()}, nil, now, "nil light block"},
		"other height": {
			params, light.TrustOptions{Height: 6, Hash: lb.Hash()}, lb, now, "expected header height 6",
		},
		"other hash": {
			params, light.TrustOptions{Height: 5, Hash: hash("other")}, lb, now, "expected header's hash",
		},
		"expired": {
			params, light.TrustOptions{Height: 5, Hash: lb.Hash()}, lb, bTime.Add(time.Hour), "old header has expired",
		},
		"no quorum": {
			params, light.TrustOptions{Height: 5, Hash: weak.Hash()}, weak, now, "insufficient voting power",
		},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			state, err := light.NewState(tc.params, tc.opts, tc.lb, tc.now)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.EqualValues(t, 5, state.TrustedHeight())
			assert.Equal(t, lb.AppHash, state.Trusted.AppHash)
			assert.Equal(t, lb.Hash(), state.Trusted.BlockHash)
			assert.Equal(t, vals.Hash(), state.Validators.Hash())
		})
	}
}

func TestAdvance(t *testing.T) {
	vals, privs := types.DeterministicValidatorSet("advance", 10, 10, 10, 10)
	params := testParams(4 * time.Hour)
	now := bTime.Add(time.Hour)

	root := genLightBlock(t, 1, bTime, vals, vals, privs, all(4))
	state, err := light.NewState(params, light.TrustOptions{Height: 1, Hash: root.Hash()}, root, now)
	require.NoError(t, err)

	// adjacent
	h2 := genLightBlock(t, 2, bTime.Add(time.Minute), vals, vals, privs, all(4))
	s2, err := light.Advance(state, h2, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, s2.TrustedHeight())
	assert.Equal(t, h2.AppHash, s2.Trusted.AppHash)
	// the input is untouched
	assert.EqualValues(t, 1, state.TrustedHeight())

	// skipping
	h5 := genLightBlock(t, 5, bTime.Add(5*time.Minute), vals, vals, privs, []int{0, 1, 2})
	s5, err := light.Advance(s2, h5, now)
	require.NoError(t, err)
	assert.EqualValues(t, 5, s5.TrustedHeight())

	// same or lower heights never move the state
	for _, lb := range []*types.LightBlock{h5, h2} {
		got, err := light.Advance(s5, lb, now)
		var nonMonotonic light.ErrNonMonotonicHeight
		require.True(t, errors.As(err, &nonMonotonic), "%v", err)
		assert.EqualValues(t, 5, nonMonotonic.Trusted)
		assert.Equal(t, s5, got)
	}

	// rejected update returns the state unchanged
	weak := genLightBlock(t, 6, bTime.Add(6*time.Minute), vals, vals, privs, []int{0})
	got, err := light.Advance(s5, weak, now)
	require.Error(t, err)
	assert.Equal(t, s5, got)

	_, err = light.Advance(s5, nil, now)
	assert.IsType(t, light.ErrInvalidHeader{}, err)
	_, err = light.Advance(s5, &types.LightBlock{}, now)
	assert.IsType(t, light.ErrInvalidHeader{}, err)
}

// Whatever sequence of updates is applied, the trusted height never
// decreases and equals the highest accepted update.
func TestAdvanceMonotonic(t *testing.T) {
	vals, privs := types.DeterministicValidatorSet("monotonic", 10, 10, 10)
	params := testParams(4 * time.Hour)
	now := bTime.Add(time.Hour)

	const maxHeight = 24
	full := make(map[int64]*types.LightBlock, maxHeight)
	weak := make(map[int64]*types.LightBlock, maxHeight)
	for h := int64(1); h <= maxHeight; h++ {
		ts := bTime.Add(time.Duration(h) * time.Minute)
		full[h] = genLightBlock(t, h, ts, vals, vals, privs, all(3))
		weak[h] = genLightBlock(t, h, ts, vals, vals, privs, []int{0, 1})
	}

	rapid.Check(t, func(t *rapid.T) {
		root := int64(rapid.IntRange(1, maxHeight).Draw(t, "root").(int))
		state, err := light.NewState(params, light.TrustOptions{Height: root, Hash: full[root].Hash()}, full[root], now)
		if err != nil {
			t.Fatalf("root of trust: %v", err)
		}

		steps := rapid.IntRange(1, 20).Draw(t, "steps").(int)
		for i := 0; i < steps; i++ {
			h := int64(rapid.IntRange(1, maxHeight).Draw(t, "height").(int))
			signed := rapid.Bool().Draw(t, "signed").(bool)

			lb := weak[h]
			if signed {
				lb = full[h]
			}

			prev := state
			next, err := light.Advance(state, lb, now)
			accept := signed && h > prev.TrustedHeight()
			if accept != (err == nil) {
				t.Fatalf("height %d signed %v trusted %d: err %v", h, signed, prev.TrustedHeight(), err)
			}
			if err != nil {
				if next.TrustedHeight() != prev.TrustedHeight() {
					t.Fatalf("rejected update moved trusted height %d -> %d", prev.TrustedHeight(), next.TrustedHeight())
				}
				continue
			}
			if next.TrustedHeight() != h {
				t.Fatalf("expected trusted height %d, got %d", h, next.TrustedHeight())
			}
			state = next
		}
	})
}
