// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/snailbrook/staking/cache"
	"github.com/snailbrook/staking/kv"
	"github.com/snailbrook/staking/log"
	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/stackedmap"
)

const (
	storageBucket = kv.Bucket("s")

	// DefaultCacheSize is the number of committed slots kept in memory.
	DefaultCacheSize = 16384
)

var logger = log.WithContext("pkg", "state")

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr snail.Address
	key  snail.Bytes32
}

func (k storageKey) dbKey() []byte {
	b := make([]byte, 0, len(k.addr)+len(k.key))
	return append(append(b, k.addr[:]...), k.key[:]...)
}

// State is a revertable view of the slots persisted in a kv store.
// It is not safe for concurrent writes; concurrent reads are safe while no writer is active.
type State struct {
	store     kv.Store
	committed *cache.LRU
	sm        *stackedmap.StackedMap[storageKey, rlp.RawValue]
}

// New create state object over the given store.
func New(store kv.Store, cacheSize int) (*State, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	committed, err := cache.NewLRU(cacheSize)
	if err != nil {
		return nil, err
	}
	s := &State{
		store:     storageBucket.NewStore(store),
		committed: committed,
	}
	s.reset()
	return s, nil
}

func (s *State) reset() {
	s.sm = stackedmap.New(s.committedGetter)
}

// committedGetter implements stackedmap.MapGetter.
func (s *State) committedGetter(key storageKey) (rlp.RawValue, bool, error) {
	v, err := s.committed.GetOrLoad(key, func(any) (any, error) {
		data, err := s.store.Get(key.dbKey())
		if err != nil {
			if s.store.IsNotFound(err) {
				return rlp.RawValue(nil), nil
			}
			return nil, err
		}
		return rlp.RawValue(data), nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(rlp.RawValue), true, nil
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr snail.Address, key snail.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr snail.Address, key snail.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr snail.Address, key snail.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr snail.Address, key snail.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Commit writes all pending changes to the store in a single batch and
// returns the number of slots written. Pending changes are dropped even if the write fails,
// leaving the state equal to the store's content.
func (s *State) Commit() (int, error) {
	changes := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(k storageKey, v rlp.RawValue) bool {
		changes[k] = v
		return true
	})
	defer s.reset()

	if len(changes) == 0 {
		return 0, nil
	}

	batch := s.store.NewBatch()
	for k, v := range changes {
		var err error
		if len(v) == 0 {
			err = batch.Delete(k.dbKey())
		} else {
			err = batch.Put(k.dbKey(), v)
		}
		if err != nil {
			return 0, &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return 0, &Error{err}
	}
	for k, v := range changes {
		s.committed.Add(k, v)
	}

	metricCommittedSlots().AddWithLabel(int64(len(changes)), map[string]string{"type": "write"})
	if changed, hit, miss := s.committed.Stats().Stats(); changed {
		metricCacheLookups().SetWithLabel(hit, map[string]string{"type": "hit"})
		metricCacheLookups().SetWithLabel(miss, map[string]string{"type": "miss"})
	}
	logger.Trace("state committed", "slots", len(changes))
	return len(changes), nil
}
