// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package configurator

import (
	"github.com/pkg/errors"

	"github.com/snailbrook/staking/log"
	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/staking/access"
	"github.com/snailbrook/staking/staking/reverts"
	"github.com/snailbrook/staking/storage"
)

var logger = log.WithContext("pkg", "configurator")

var (
	slotPeriod    = snail.BytesToBytes32([]byte("staking-period"))
	slotPoolCount = snail.BytesToBytes32([]byte("pool-count"))
	slotPools     = snail.BytesToBytes32([]byte("pools"))
)

// Period is the global staking window in unix seconds.
type Period struct {
	Start uint64
	End   uint64
}

// Duration returns End - Start, zero when unset.
func (p Period) Duration() uint64 {
	if p.End <= p.Start {
		return 0
	}
	return p.End - p.Start
}

// IsSet reports whether the period was configured.
func (p Period) IsSet() bool {
	return p.End != 0
}

// Pool is an immutable pool definition.
type Pool struct {
	ID       uint64
	Duration uint64 // lock duration in seconds
}

// Service is the period and pool registry.
type Service struct {
	policy    *access.Policy
	period    *storage.Raw[Period]
	poolCount *storage.Raw[uint64]
	pools     *storage.Mapping[storage.Uint64Key, uint64]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		policy:    access.New(sctx),
		period:    storage.NewRaw[Period](sctx, slotPeriod),
		poolCount: storage.NewRaw[uint64](sctx, slotPoolCount),
		pools:     storage.NewMapping[storage.Uint64Key, uint64](sctx, slotPools),
	}
}

// Policy exposes the owner capability of the registry.
func (s *Service) Policy() *access.Policy {
	return s.policy
}

// SetStakingPeriod stores the staking window, once.
func (s *Service) SetStakingPeriod(caller snail.Address, start, end, now uint64) error {
	if err := s.policy.RequireOwner(caller); err != nil {
		return err
	}
	current, err := s.Period()
	if err != nil {
		return err
	}
	if current.IsSet() {
		return reverts.ErrAlreadyConfigured.Withf("period [%d, %d]", current.Start, current.End)
	}
	if end <= start {
		return reverts.ErrInvalidRange.Withf("start %d, end %d", start, end)
	}
	if start < now {
		return reverts.ErrPastStart.Withf("start %d, now %d", start, now)
	}
	if err := s.period.Set(Period{Start: start, End: end}); err != nil {
		return errors.Wrap(err, "failed to set staking period")
	}
	logger.Info("staking period configured", "start", start, "end", end)
	return nil
}

// AddPool appends a pool with the next sequential id.
func (s *Service) AddPool(caller snail.Address, duration uint64) (uint64, error) {
	if err := s.policy.RequireOwner(caller); err != nil {
		return 0, err
	}
	if duration == 0 {
		return 0, reverts.ErrInvalidDuration
	}
	id, err := s.PoolCount()
	if err != nil {
		return 0, err
	}
	if err := s.pools.Set(storage.Uint64Key(id), duration); err != nil {
		return 0, errors.Wrap(err, "failed to set pool")
	}
	if err := s.poolCount.Set(id + 1); err != nil {
		return 0, errors.Wrap(err, "failed to set pool count")
	}
	logger.Info("pool added", "pool", id, "duration", duration)
	return id, nil
}

func (s *Service) PoolCount() (uint64, error) {
	count, _, err := s.poolCount.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get pool count")
	}
	return count, nil
}

func (s *Service) PoolExists(id uint64) (bool, error) {
	count, err := s.PoolCount()
	if err != nil {
		return false, err
	}
	return id < count, nil
}

// RequirePool fails with PoolNotFound unless the pool exists.
func (s *Service) RequirePool(id uint64) error {
	exists, err := s.PoolExists(id)
	if err != nil {
		return err
	}
	if !exists {
		return reverts.ErrPoolNotFound.Withf("pool %d", id)
	}
	return nil
}

func (s *Service) PoolDuration(id uint64) (uint64, error) {
	if err := s.RequirePool(id); err != nil {
		return 0, err
	}
	duration, err := s.pools.Get(storage.Uint64Key(id))
	if err != nil {
		return 0, errors.Wrap(err, "failed to get pool")
	}
	return duration, nil
}

// Pools returns every pool in id order.
func (s *Service) Pools() ([]Pool, error) {
	count, err := s.PoolCount()
	if err != nil {
		return nil, err
	}
	pools := make([]Pool, 0, count)
	for id := uint64(0); id < count; id++ {
		duration, err := s.pools.Get(storage.Uint64Key(id))
		if err != nil {
			return nil, errors.Wrap(err, "failed to get pool")
		}
		pools = append(pools, Pool{ID: id, Duration: duration})
	}
	return pools, nil
}

// Period returns the staking window, zero before configuration.
func (s *Service) Period() (Period, error) {
	period, _, err := s.period.Get()
	if err != nil {
		return Period{}, errors.Wrap(err, "failed to get staking period")
	}
	return period, nil
}

func (s *Service) StartTime() (uint64, error) {
	p, err := s.Period()
	return p.Start, err
}

func (s *Service) EndTime() (uint64, error) {
	p, err := s.Period()
	return p.End, err
}

func (s *Service) Owner() (snail.Address, error) {
	return s.policy.Owner()
}

func (s *Service) TransferOwnership(caller, newOwner snail.Address) error {
	return s.policy.TransferOwnership(caller, newOwner)
}
