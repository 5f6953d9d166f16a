// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package checkpoint keeps, per pool, the ordered log of total-staked changes and
// integrates the pool's reward rate over it.
package checkpoint

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/storage"
)

var (
	slotCheckpoints = snail.BytesToBytes32([]byte("pool-checkpoints"))
	slotLengths     = snail.BytesToBytes32([]byte("pool-checkpoints-length"))
	slotTotalStaked = snail.BytesToBytes32([]byte("total-staked"))
)

// Checkpoint records the pool's total staked amount from Timestamp on.
type Checkpoint struct {
	Timestamp   uint64
	TotalStaked *big.Int
}

type logKey struct {
	pool  uint64
	index uint64
}

func (k logKey) Bytes() []byte {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b, k.pool)
	binary.BigEndian.PutUint64(b[8:], k.index)
	return b
}

// Service is the per pool checkpoint log plus the global total.
type Service struct {
	checkpoints *storage.Mapping[logKey, *Checkpoint]
	lengths     *storage.Mapping[storage.Uint64Key, uint64]
	totalStaked *storage.Uint256
}

func New(sctx *storage.Context) *Service {
	return &Service{
		checkpoints: storage.NewMapping[logKey, *Checkpoint](sctx, slotCheckpoints),
		lengths:     storage.NewMapping[storage.Uint64Key, uint64](sctx, slotLengths),
		totalStaked: storage.NewUint256(sctx, slotTotalStaked),
	}
}

// Len returns the number of checkpoints of the pool.
func (s *Service) Len(poolID uint64) (uint64, error) {
	n, err := s.lengths.Get(storage.Uint64Key(poolID))
	if err != nil {
		return 0, errors.Wrap(err, "failed to get checkpoint count")
	}
	return n, nil
}

// At returns the i-th checkpoint of the pool.
func (s *Service) At(poolID, i uint64) (*Checkpoint, error) {
	cp, err := s.checkpoints.Get(logKey{poolID, i})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get checkpoint")
	}
	if cp.TotalStaked == nil {
		cp.TotalStaked = new(big.Int)
	}
	return cp, nil
}

// All returns the whole log of the pool, oldest first.
func (s *Service) All(poolID uint64) ([]*Checkpoint, error) {
	n, err := s.Len(poolID)
	if err != nil {
		return nil, err
	}
	all := make([]*Checkpoint, 0, n)
	for i := uint64(0); i < n; i++ {
		cp, err := s.At(poolID, i)
		if err != nil {
			return nil, err
		}
		all = append(all, cp)
	}
	return all, nil
}

// TotalStakedForPool returns the pool's current total, the last checkpoint's value.
func (s *Service) TotalStakedForPool(poolID uint64) (*big.Int, error) {
	n, err := s.Len(poolID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return new(big.Int), nil
	}
	cp, err := s.At(poolID, n-1)
	if err != nil {
		return nil, err
	}
	return cp.TotalStaked, nil
}

// TotalStaked returns the sum over all pools.
func (s *Service) TotalStaked() (*big.Int, error) {
	return s.totalStaked.Get()
}

// Increase adds amount to the pool's total at timestamp.
func (s *Service) Increase(poolID uint64, amount *big.Int, timestamp uint64) error {
	if err := s.totalStaked.Add(amount); err != nil {
		return errors.Wrap(err, "failed to increase total staked")
	}
	return s.adjust(poolID, amount, timestamp)
}

// Decrease subtracts amount from the pool's total at timestamp.
func (s *Service) Decrease(poolID uint64, amount *big.Int, timestamp uint64) error {
	if err := s.totalStaked.Sub(amount); err != nil {
		return errors.Wrap(err, "failed to decrease total staked")
	}
	return s.adjust(poolID, new(big.Int).Neg(amount), timestamp)
}

// adjust appends a checkpoint, or updates the last one in place when it carries the same timestamp.
func (s *Service) adjust(poolID uint64, delta *big.Int, timestamp uint64) error {
	n, err := s.Len(poolID)
	if err != nil {
		return err
	}
	total := new(big.Int)
	index := n
	if n > 0 {
		last, err := s.At(poolID, n-1)
		if err != nil {
			return err
		}
		if timestamp < last.Timestamp {
			return errors.Errorf("checkpoint at %d precedes last checkpoint at %d", timestamp, last.Timestamp)
		}
		total.Set(last.TotalStaked)
		if last.Timestamp == timestamp {
			index = n - 1
		}
	}
	total.Add(total, delta)
	if total.Sign() < 0 {
		return errors.Errorf("pool %d total staked underflow", poolID)
	}
	if err := s.checkpoints.Set(logKey{poolID, index}, &Checkpoint{Timestamp: timestamp, TotalStaked: total}); err != nil {
		return errors.Wrap(err, "failed to set checkpoint")
	}
	if index == n {
		if err := s.lengths.Set(storage.Uint64Key(poolID), n+1); err != nil {
			return errors.Wrap(err, "failed to set checkpoint count")
		}
	}
	return nil
}

// Search returns the index of the last checkpoint with Timestamp <= t.
// found is false when every checkpoint is after t, or the log is empty.
func (s *Service) Search(poolID, t uint64) (index uint64, found bool, err error) {
	n, err := s.Len(poolID)
	if err != nil {
		return 0, false, err
	}
	// smallest i in [0, n) with Timestamp > t
	lo, hi := uint64(0), n
	for lo < hi {
		mid := lo + (hi-lo)/2
		cp, err := s.At(poolID, mid)
		if err != nil {
			return 0, false, err
		}
		if cp.Timestamp <= t {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return 0, false, nil
	}
	return lo - 1, true, nil
}
