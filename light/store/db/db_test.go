package db

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	"github.com/oraichain/tonbridge-core/crypto"
	"github.com/oraichain/tonbridge-core/light/store"
	"github.com/oraichain/tonbridge-core/types"
)

var genesisTime = time.Date(2024, 5, 6, 7, 34, 41, 886200108, time.UTC)

func consensusState(vals *types.ValidatorSet, height int64) store.ConsensusState {
	h := types.MakeHeader("test-chain", height, genesisTime.Add(time.Duration(height)*time.Second),
		vals, vals, crypto.Checksum([]byte(fmt.Sprintf("app-%d", height))))
	return store.NewConsensusState(h)
}

func TestLast_FirstHeight(t *testing.T) {
	dbStore := New(dbm.NewMemDB(), "TestLast_FirstHeight")
	vals, _ := types.DeterministicValidatorSet("store", 10, 20)

	// Empty store
	height, err := dbStore.LastHeight()
	require.NoError(t, err)
	assert.EqualValues(t, -1, height)

	height, err = dbStore.FirstHeight()
	require.NoError(t, err)
	assert.EqualValues(t, -1, height)

	// 1 key
	require.NoError(t, dbStore.SaveConsensusState(consensusState(vals, 1), vals))

	height, err = dbStore.LastHeight()
	require.NoError(t, err)
	assert.EqualValues(t, 1, height)

	height, err = dbStore.FirstHeight()
	require.NoError(t, err)
	assert.EqualValues(t, 1, height)

	// heights sort numerically, not lexically
	require.NoError(t, dbStore.SaveConsensusState(consensusState(vals, 256), vals))
	require.NoError(t, dbStore.SaveConsensusState(consensusState(vals, 9), vals))
	height, err = dbStore.LastHeight()
	require.NoError(t, err)
	assert.EqualValues(t, 256, height)
}

func Test_SaveConsensusState(t *testing.T) {
	dbStore := New(dbm.NewMemDB(), "Test_SaveConsensusState")
	vals, _ := types.DeterministicValidatorSet("store", 10, 20, 30)

	// Empty store
	_, err := dbStore.ConsensusState(1)
	require.ErrorIs(t, err, store.ErrConsensusStateNotFound)
	_, err = dbStore.ValidatorSet(1)
	require.ErrorIs(t, err, store.ErrConsensusStateNotFound)

	// 1 key
	want := consensusState(vals, 1)
	require.NoError(t, dbStore.SaveConsensusState(want, vals))

	got, err := dbStore.ConsensusState(1)
	require.NoError(t, err)
	assert.Equal(t, want.AppHash, got.AppHash)
	assert.Equal(t, want.BlockHash, got.BlockHash)
	assert.True(t, want.Time.Equal(got.Time))
	assert.NoError(t, got.ValidateBasic())

	valSet, err := dbStore.ValidatorSet(1)
	require.NoError(t, err)
	assert.Equal(t, vals.Hash(), valSet.Hash())

	// saving the same height twice does not grow the store
	require.NoError(t, dbStore.SaveConsensusState(want, vals))
	assert.EqualValues(t, 1, dbStore.Size())

	// Empty store
	require.NoError(t, dbStore.DeleteConsensusState(1))
	assert.EqualValues(t, 0, dbStore.Size())
	require.NoError(t, dbStore.DeleteConsensusState(1))
	assert.EqualValues(t, 0, dbStore.Size())

	_, err = dbStore.ConsensusState(1)
	require.ErrorIs(t, err, store.ErrConsensusStateNotFound)
	_, err = dbStore.ValidatorSet(1)
	require.ErrorIs(t, err, store.ErrConsensusStateNotFound)
}

func Test_ConsensusStateBefore(t *testing.T) {
	dbStore := New(dbm.NewMemDB(), "Test_ConsensusStateBefore")
	vals, _ := types.DeterministicValidatorSet("store", 10)

	assert.Panics(t, func() {
		_, _ = dbStore.ConsensusStateBefore(0)
	})

	require.NoError(t, dbStore.SaveConsensusState(consensusState(vals, 2), vals))
	require.NoError(t, dbStore.SaveConsensusState(consensusState(vals, 5), vals))

	cs, err := dbStore.ConsensusStateBefore(5)
	require.NoError(t, err)
	assert.EqualValues(t, 2, cs.Height)

	cs, err = dbStore.ConsensusStateBefore(100)
	require.NoError(t, err)
	assert.EqualValues(t, 5, cs.Height)

	_, err = dbStore.ConsensusStateBefore(2)
	assert.ErrorIs(t, err, store.ErrConsensusStateNotFound)
}

func Test_Prune(t *testing.T) {
	dbStore := New(dbm.NewMemDB(), "Test_Prune")
	vals, _ := types.DeterministicValidatorSet("store", 10)

	// Empty store
	assert.EqualValues(t, 0, dbStore.Size())
	require.NoError(t, dbStore.Prune(0))

	// One state
	require.NoError(t, dbStore.SaveConsensusState(consensusState(vals, 2), vals))
	assert.EqualValues(t, 1, dbStore.Size())

	require.NoError(t, dbStore.Prune(1))
	assert.EqualValues(t, 1, dbStore.Size())

	require.NoError(t, dbStore.Prune(0))
	assert.EqualValues(t, 0, dbStore.Size())

	// Multiple states
	for i := 1; i <= 10; i++ {
		require.NoError(t, dbStore.SaveConsensusState(consensusState(vals, int64(i)), vals))
	}

	require.NoError(t, dbStore.Prune(11))
	assert.EqualValues(t, 10, dbStore.Size())

	require.NoError(t, dbStore.Prune(7))
	assert.EqualValues(t, 7, dbStore.Size())

	height, err := dbStore.FirstHeight()
	require.NoError(t, err)
	assert.EqualValues(t, 4, height)
	_, err = dbStore.ValidatorSet(3)
	assert.ErrorIs(t, err, store.ErrConsensusStateNotFound)
}

func Test_SizeSurvivesReopen(t *testing.T) {
	db := dbm.NewMemDB()
	vals, _ := types.DeterministicValidatorSet("store", 10)

	first := New(db, "reopen")
	for i := 1; i <= 3; i++ {
		require.NoError(t, first.SaveConsensusState(consensusState(vals, int64(i)), vals))
	}

	second := New(db, "reopen")
	assert.EqualValues(t, 3, second.Size())

	// another prefix in the same db is a separate store
	other := New(db, "other")
	assert.EqualValues(t, 0, other.Size())
	height, err := other.LastHeight()
	require.NoError(t, err)
	assert.EqualValues(t, -1, height)
}

func Test_Concurrency(t *testing.T) {
	dbStore := New(dbm.NewMemDB(), "Test_Concurrency")
	vals, _ := types.DeterministicValidatorSet("store", 10, 20)

	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		wg.Add(1)
		go func(i int64) {
			defer wg.Done()

			err := dbStore.SaveConsensusState(consensusState(vals, i), vals)
			require.NoError(t, err)

			_, err = dbStore.ConsensusState(i)
			if err != nil {
				t.Log(err)
			}
			_, err = dbStore.ValidatorSet(i)
			if err != nil {
				t.Log(err)
			}
			_, err = dbStore.LastHeight()
			if err != nil {
				t.Log(err)
			}
			_, err = dbStore.FirstHeight()
			if err != nil {
				t.Log(err)
			}

			err = dbStore.Prune(2)
			if err != nil {
				t.Log(err)
			}
			_ = dbStore.Size()

			err = dbStore.DeleteConsensusState(1)
			if err != nil {
				t.Log(err)
			}
		}(int64(i))
	}

	wg.Wait()
}
