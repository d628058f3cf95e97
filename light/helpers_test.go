package light_test

import (
	"fmt"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oraichain/tonbridge-core/crypto"
	"github.com/oraichain/tonbridge-core/light"
	"github.com/oraichain/tonbridge-core/types"
)

const (
	chainID       = "test"
	maxClockDrift = 10 * time.Second
)

var bTime = time.Date(2024, 5, 6, 7, 0, 0, 0, time.UTC)

func hash(s string) []byte {
	return crypto.Checksum([]byte(s))
}

// all returns the indexes of the first n validators.
func all(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func genLightBlock(t require.TestingT, height int64, ts time.Time, vals, nextVals *types.ValidatorSet,
	privs []crypto.PrivKey, signers []int) *types.LightBlock {
	return genLightBlockWithApp(t, height, ts, vals, nextVals, privs, signers, fmt.Sprintf("app-%d", height))
}

func genLightBlockWithApp(t require.TestingT, height int64, ts time.Time, vals, nextVals *types.ValidatorSet,
	privs []crypto.PrivKey, signers []int, app string) *types.LightBlock {
	lb, err := types.MakeLightBlock(chainID, height, ts, vals, nextVals, privs, signers, hash(app))
	require.NoError(t, err)
	return lb
}

func testParams(trustingPeriod time.Duration) light.Params {
	params := light.DefaultParams(chainID)
	params.TrustingPeriod = trustingPeriod
	params.MaxClockDrift = maxClockDrift
	return params
}
