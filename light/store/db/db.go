package db

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/google/orderedcode"
	dbm "github.com/tendermint/tm-db"

	"github.com/oraichain/tonbridge-core/light/store"
	"github.com/oraichain/tonbridge-core/types"
)

const (
	prefixConsensusState = int64(11)
	prefixValidatorSet   = int64(12)
	prefixSize           = int64(13)
)

type dbs struct {
	db     dbm.DB
	prefix string

	mtx  sync.RWMutex
	size uint16
}

// New returns a Store that wraps any DB (with an optional prefix in case you
// want to use one DB with many light clients).
func New(db dbm.DB, prefix string) store.Store {
	s := &dbs{db: db, prefix: prefix}
	bz, err := db.Get(s.sizeKey())
	if err == nil && len(bz) == 2 {
		s.size = unmarshalSize(bz)
	}
	return s
}

// SaveConsensusState persists ConsensusState and ValidatorSet to the db.
// Saving a height twice overwrites it.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) SaveConsensusState(cs store.ConsensusState, vals *types.ValidatorSet) error {
	if cs.Height <= 0 {
		panic("negative or zero height")
	}

	csBz, err := cs.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling consensus state: %w", err)
	}
	valsBz, err := vals.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling validator set: %w", err)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	exists, err := s.db.Has(s.csKey(cs.Height))
	if err != nil {
		return err
	}
	size := s.size
	if !exists {
		size++
	}

	b := s.db.NewBatch()
	defer b.Close()
	if err = b.Set(s.csKey(cs.Height), csBz); err != nil {
		return err
	}
	if err = b.Set(s.vsKey(cs.Height), valsBz); err != nil {
		return err
	}
	if err = b.Set(s.sizeKey(), marshalSize(size)); err != nil {
		return err
	}
	if err = b.WriteSync(); err != nil {
		return err
	}
	s.size = size
	return nil
}

// DeleteConsensusState deletes ConsensusState and ValidatorSet from the db.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) DeleteConsensusState(height int64) error {
	if height <= 0 {
		panic("negative or zero height")
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	exists, err := s.db.Has(s.csKey(height))
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	b := s.db.NewBatch()
	defer b.Close()
	if err = b.Delete(s.csKey(height)); err != nil {
		return err
	}
	if err = b.Delete(s.vsKey(height)); err != nil {
		return err
	}
	if err = b.Set(s.sizeKey(), marshalSize(s.size-1)); err != nil {
		return err
	}
	if err = b.WriteSync(); err != nil {
		return err
	}
	s.size--
	return nil
}

// ConsensusState loads the ConsensusState at the given height.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) ConsensusState(height int64) (store.ConsensusState, error) {
	if height <= 0 {
		panic("negative or zero height")
	}

	bz, err := s.db.Get(s.csKey(height))
	if err != nil {
		return store.ConsensusState{}, err
	}
	if len(bz) == 0 {
		return store.ConsensusState{}, store.ErrConsensusStateNotFound
	}

	var cs store.ConsensusState
	if err := cs.Unmarshal(bz); err != nil {
		return store.ConsensusState{}, fmt.Errorf("corrupted consensus state at %d: %w", height, err)
	}
	return cs, nil
}

// ValidatorSet loads the ValidatorSet at the given height.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) ValidatorSet(height int64) (*types.ValidatorSet, error) {
	if height <= 0 {
		panic("negative or zero height")
	}

	bz, err := s.db.Get(s.vsKey(height))
	if err != nil {
		return nil, err
	}
	if len(bz) == 0 {
		return nil, store.ErrConsensusStateNotFound
	}

	vals := new(types.ValidatorSet)
	if err := vals.Unmarshal(bz); err != nil {
		return nil, fmt.Errorf("corrupted validator set at %d: %w", height, err)
	}
	return vals, nil
}

// LastHeight returns the last ConsensusState height stored.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) LastHeight() (int64, error) {
	itr, err := s.db.ReverseIterator(s.csKey(1), s.csKey(1<<63-1))
	if err != nil {
		return -1, err
	}
	defer itr.Close()

	for ; itr.Valid(); itr.Next() {
		if height, ok := s.parseCsKey(itr.Key()); ok {
			return height, nil
		}
	}
	return -1, itr.Error()
}

// FirstHeight returns the first ConsensusState height stored.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) FirstHeight() (int64, error) {
	itr, err := s.db.Iterator(s.csKey(1), s.csKey(1<<63-1))
	if err != nil {
		return -1, err
	}
	defer itr.Close()

	for ; itr.Valid(); itr.Next() {
		if height, ok := s.parseCsKey(itr.Key()); ok {
			return height, nil
		}
	}
	return -1, itr.Error()
}

// ConsensusStateBefore iterates over consensus states until it finds one
// below the given height. It returns ErrConsensusStateNotFound if no such
// state exists.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) ConsensusStateBefore(height int64) (store.ConsensusState, error) {
	if height <= 0 {
		panic("negative or zero height")
	}

	itr, err := s.db.ReverseIterator(s.csKey(1), s.csKey(height))
	if err != nil {
		return store.ConsensusState{}, err
	}
	defer itr.Close()

	for ; itr.Valid(); itr.Next() {
		existingHeight, ok := s.parseCsKey(itr.Key())
		if !ok {
			continue
		}
		var cs store.ConsensusState
		if err := cs.Unmarshal(itr.Value()); err != nil {
			return store.ConsensusState{}, fmt.Errorf("corrupted consensus state at %d: %w", existingHeight, err)
		}
		return cs, nil
	}
	if err := itr.Error(); err != nil {
		return store.ConsensusState{}, err
	}
	return store.ConsensusState{}, store.ErrConsensusStateNotFound
}

// Prune prunes consensus states until there are only size of them left.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) Prune(size uint16) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.size <= size {
		return nil
	}
	numToPrune := s.size - size

	itr, err := s.db.Iterator(s.csKey(1), s.csKey(1<<63-1))
	if err != nil {
		return err
	}

	b := s.db.NewBatch()
	defer b.Close()

	var pruned uint16
	for ; itr.Valid() && pruned < numToPrune; itr.Next() {
		height, ok := s.parseCsKey(itr.Key())
		if !ok {
			continue
		}
		if err = b.Delete(s.csKey(height)); err != nil {
			break
		}
		if err = b.Delete(s.vsKey(height)); err != nil {
			break
		}
		pruned++
	}
	if err == nil {
		err = itr.Error()
	}
	itr.Close()
	if err != nil {
		return err
	}

	if err = b.Set(s.sizeKey(), marshalSize(s.size-pruned)); err != nil {
		return err
	}
	if err = b.WriteSync(); err != nil {
		return err
	}
	s.size -= pruned
	return nil
}

// Size returns the number of stored consensus states.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) Size() uint16 {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.size
}

func (s *dbs) csKey(height int64) []byte {
	return s.mustKey(prefixConsensusState, height)
}

func (s *dbs) vsKey(height int64) []byte {
	return s.mustKey(prefixValidatorSet, height)
}

func (s *dbs) sizeKey() []byte {
	key, err := orderedcode.Append(nil, s.prefix, prefixSize)
	if err != nil {
		panic(err)
	}
	return key
}

func (s *dbs) mustKey(kind, height int64) []byte {
	key, err := orderedcode.Append(nil, s.prefix, kind, height)
	if err != nil {
		panic(err)
	}
	return key
}

func (s *dbs) parseCsKey(key []byte) (int64, bool) {
	var (
		prefix string
		kind   int64
		height int64
	)
	remaining, err := orderedcode.Parse(string(key), &prefix, &kind, &height)
	if err != nil || remaining != "" || prefix != s.prefix || kind != prefixConsensusState {
		return 0, false
	}
	return height, true
}

func marshalSize(size uint16) []byte {
	bs := make([]byte, 2)
	binary.LittleEndian.PutUint16(bs, size)
	return bs
}

func unmarshalSize(bz []byte) uint16 {
	return binary.LittleEndian.Uint16(bz)
}
