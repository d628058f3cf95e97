package packet

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/orderedcode"
	dbm "github.com/tendermint/tm-db"
)

const receivedKey = "received"

// ErrNotReceived is returned when no packet was received with a sequence.
var ErrNotReceived = errors.New("packet not received")

// SeqStore remembers which sequences have been received, per packet kind, so
// that a proven packet is consumed at most once.
type SeqStore struct {
	db     dbm.DB
	prefix string

	mtx sync.Mutex
}

// NewSeqStore returns a SeqStore keeping its records under prefix in db.
func NewSeqStore(db dbm.DB, prefix string) *SeqStore {
	return &SeqStore{db: db, prefix: prefix}
}

// MarkReceived records seq of kind together with the packet commitment. It
// fails with ErrPacketReplayed if seq was recorded before.
//
// Safe for concurrent use by multiple goroutines.
func (s *SeqStore) MarkReceived(kind Kind, seq uint64, commitment []byte) error {
	key := s.key(kind, seq)

	s.mtx.Lock()
	defer s.mtx.Unlock()

	seen, err := s.db.Has(key)
	if err != nil {
		return err
	}
	if seen {
		return ErrPacketReplayed{Seq: seq}
	}
	return s.db.SetSync(key, commitment)
}

// Received reports whether seq of kind has been recorded.
func (s *SeqStore) Received(kind Kind, seq uint64) (bool, error) {
	return s.db.Has(s.key(kind, seq))
}

// Commitment returns the commitment recorded for seq of kind.
func (s *SeqStore) Commitment(kind Kind, seq uint64) ([]byte, error) {
	bz, err := s.db.Get(s.key(kind, seq))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, fmt.Errorf("%w: %v #%d", ErrNotReceived, kind, seq)
	}
	return bz, nil
}

// Sequences returns the received sequences of kind in ascending order.
func (s *SeqStore) Sequences(kind Kind) ([]uint64, error) {
	start := s.key(kind, 0)
	end, err := orderedcode.Append(nil, s.prefix, receivedKey, uint64(kind)+1)
	if err != nil {
		return nil, err
	}

	itr, err := s.db.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	defer itr.Close()

	var seqs []uint64
	for ; itr.Valid(); itr.Next() {
		var (
			prefix, name string
			k, seq       uint64
		)
		remaining, err := orderedcode.Parse(string(itr.Key()), &prefix, &name, &k, &seq)
		if err != nil || remaining != "" {
			return nil, fmt.Errorf("corrupted sequence key %X", itr.Key())
		}
		seqs = append(seqs, seq)
	}
	return seqs, itr.Error()
}

func (s *SeqStore) key(kind Kind, seq uint64) []byte {
	key, err := orderedcode.Append(nil, s.prefix, receivedKey, uint64(kind), seq)
	if err != nil {
		panic(err)
	}
	return key
}
