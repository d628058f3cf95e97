package packet_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	"github.com/oraichain/tonbridge-core/packet"
)

func TestSeqStore(t *testing.T) {
	s := packet.NewSeqStore(dbm.NewMemDB(), "bridge")

	ok, err := s.Received(packet.KindSendToTon, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = s.Commitment(packet.KindSendToTon, 1)
	assert.ErrorIs(t, err, packet.ErrNotReceived)

	require.NoError(t, s.MarkReceived(packet.KindSendToTon, 1, []byte{1}))
	err = s.MarkReceived(packet.KindSendToTon, 1, []byte{2})
	var replayed packet.ErrPacketReplayed
	require.True(t, errors.As(err, &replayed), "%v", err)
	assert.EqualValues(t, 1, replayed.Seq)

	c, err := s.Commitment(packet.KindSendToTon, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, c)

	// kinds are tracked separately
	require.NoError(t, s.MarkReceived(packet.KindSendToCosmos, 1, []byte{3}))

	for _, seq := range []uint64{300, 2, 1 << 40} {
		require.NoError(t, s.MarkReceived(packet.KindSendToTon, seq, []byte{4}))
	}
	seqs, err := s.Sequences(packet.KindSendToTon)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 300, 1 << 40}, seqs)

	seqs, err = s.Sequences(packet.KindSendToCosmos)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, seqs)
}

func TestSeqStoreConcurrentReplay(t *testing.T) {
	s := packet.NewSeqStore(dbm.NewMemDB(), "bridge")

	var (
		wg       sync.WaitGroup
		accepted int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.MarkReceived(packet.KindSendToTon, 42, []byte{1}); err == nil {
				atomic.AddInt32(&accepted, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, accepted)
}
