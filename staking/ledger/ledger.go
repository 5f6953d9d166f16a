// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/snailbrook/staking/log"
	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/staking/checkpoint"
	"github.com/snailbrook/staking/staking/configurator"
	"github.com/snailbrook/staking/staking/reverts"
	"github.com/snailbrook/staking/staking/rewardpot"
	"github.com/snailbrook/staking/storage"
	"github.com/snailbrook/staking/token"
)

var logger = log.WithContext("pkg", "ledger")

var (
	slotStakes     = snail.BytesToBytes32([]byte("stakes"))
	slotStakeCount = snail.BytesToBytes32([]byte("stake-count"))
	slotEvents     = snail.BytesToBytes32([]byte("events"))
	slotEventCount = snail.BytesToBytes32([]byte("event-count"))
)

// Service is the stake ledger. Principal is held in custody under the context's address,
// which must hold the claim role on the reward pot.
type Service struct {
	custody     snail.Address
	stakes      *storage.Mapping[stakeKey, *Stake]
	stakeCount  *storage.Mapping[snail.Address, uint64]
	events      *storage.Mapping[storage.Uint64Key, *Event]
	eventCount  *storage.Raw[uint64]
	checkpoints *checkpoint.Service
	registry    *configurator.Service
	pot         *rewardpot.Service
	token       token.Ledger

	pending []*Event
}

func New(
	sctx *storage.Context,
	registry *configurator.Service,
	pot *rewardpot.Service,
	tok token.Ledger,
) *Service {
	return &Service{
		custody:     sctx.Address(),
		stakes:      storage.NewMapping[stakeKey, *Stake](sctx, slotStakes),
		stakeCount:  storage.NewMapping[snail.Address, uint64](sctx, slotStakeCount),
		events:      storage.NewMapping[storage.Uint64Key, *Event](sctx, slotEvents),
		eventCount:  storage.NewRaw[uint64](sctx, slotEventCount),
		checkpoints: checkpoint.New(sctx),
		registry:    registry,
		pot:         pot,
		token:       tok,
	}
}

// Custody returns the account holding staked principal.
func (s *Service) Custody() snail.Address {
	return s.custody
}

// Deposit pulls amount from caller into custody and opens a stake in poolID.
func (s *Service) Deposit(caller snail.Address, poolID uint64, amount *big.Int, now uint64) (uint64, error) {
	if err := s.registry.RequirePool(poolID); err != nil {
		return 0, err
	}
	if amount.Sign() <= 0 {
		return 0, reverts.ErrZeroAmount
	}

	id, err := s.StakeCount(caller)
	if err != nil {
		return 0, err
	}
	stake := &Stake{
		ID:        id,
		Owner:     caller,
		PoolID:    poolID,
		Amount:    new(big.Int).Set(amount),
		Timestamp: now,
		Status:    StatusDeposited,
	}
	if err := s.stakes.Set(stakeKey{caller, id}, stake); err != nil {
		return 0, errors.Wrap(err, "failed to set stake")
	}
	if err := s.stakeCount.Set(caller, id+1); err != nil {
		return 0, errors.Wrap(err, "failed to set stake count")
	}
	if err := s.checkpoints.Increase(poolID, amount, now); err != nil {
		return 0, err
	}

	if err := s.token.TransferFrom(s.custody, caller, s.custody, amount); err != nil {
		return 0, err
	}

	if err := s.emit(&Event{
		Kind:      EventDeposited,
		Owner:     caller,
		StakeID:   id,
		PoolID:    poolID,
		Amount:    stake.Amount,
		Rewards:   new(big.Int),
		Timestamp: now,
	}); err != nil {
		return 0, err
	}
	logger.Debug("deposited", "owner", caller, "stake", id, "pool", poolID, "amount", amount)
	return id, nil
}

// Withdraw closes the caller's stake, returning principal and accrued rewards.
// Status and checkpoint are committed before any token movement.
func (s *Service) Withdraw(caller snail.Address, stakeID uint64, now uint64) (amount, rewards *big.Int, err error) {
	stake, err := s.UserStake(caller, stakeID)
	if err != nil {
		return nil, nil, err
	}
	if stake.IsWithdrawn() {
		return nil, nil, reverts.ErrAlreadyWithdrawn.Withf("stake %d", stakeID)
	}
	duration, err := s.registry.PoolDuration(stake.PoolID)
	if err != nil {
		return nil, nil, err
	}
	// stake.Timestamp + duration may not fit in uint64
	if now < stake.Timestamp || now-stake.Timestamp < duration {
		return nil, nil, reverts.ErrTooEarly.Withf("stake %d locked for %d seconds from %d", stakeID, duration, stake.Timestamp)
	}
	if rewards, err = s.accrued(stake, now); err != nil {
		return nil, nil, err
	}

	stake.Status = StatusWithdrawn
	if err := s.stakes.Set(stakeKey{caller, stakeID}, stake); err != nil {
		return nil, nil, errors.Wrap(err, "failed to set stake")
	}
	if err := s.checkpoints.Decrease(stake.PoolID, stake.Amount, now); err != nil {
		return nil, nil, err
	}

	if err := s.token.Transfer(s.custody, caller, stake.Amount); err != nil {
		return nil, nil, err
	}
	if rewards.Sign() > 0 {
		if err := s.pot.ClaimRewards(s.custody, caller, stake.PoolID, rewards); err != nil {
			return nil, nil, err
		}
	}

	if err := s.emit(&Event{
		Kind:      EventWithdrawn,
		Owner:     caller,
		StakeID:   stakeID,
		PoolID:    stake.PoolID,
		Amount:    stake.Amount,
		Rewards:   rewards,
		Timestamp: now,
	}); err != nil {
		return nil, nil, err
	}
	logger.Debug("withdrawn", "owner", caller, "stake", stakeID, "amount", stake.Amount, "rewards", rewards)
	return stake.Amount, rewards, nil
}

// RewardsForStake returns the rewards accrued by the stake up to now, zero once withdrawn.
func (s *Service) RewardsForStake(owner snail.Address, stakeID uint64, now uint64) (*big.Int, error) {
	stake, err := s.UserStake(owner, stakeID)
	if err != nil {
		return nil, err
	}
	if stake.IsWithdrawn() {
		return new(big.Int), nil
	}
	return s.accrued(stake, now)
}

// RewardsForAllStakes sums RewardsForStake over the owner's active stakes.
func (s *Service) RewardsForAllStakes(owner snail.Address, now uint64) (*big.Int, error) {
	stakes, err := s.UserStakes(owner)
	if err != nil {
		return nil, err
	}
	total := new(big.Int)
	for _, stake := range stakes {
		if stake.IsWithdrawn() {
			continue
		}
		r, err := s.accrued(stake, now)
		if err != nil {
			return nil, err
		}
		total.Add(total, r)
	}
	return total, nil
}

// accrued integrates the stake's share over [max(timestamp, start), min(now, end)],
// using the pool's current pot total.
func (s *Service) accrued(stake *Stake, now uint64) (*big.Int, error) {
	period, err := s.registry.Period()
	if err != nil {
		return nil, err
	}
	if !period.IsSet() {
		return new(big.Int), nil
	}
	rewards, err := s.pot.TotalRewards(stake.PoolID)
	if err != nil {
		return nil, err
	}
	return s.checkpoints.Accrue(checkpoint.Accrual{
		PoolID:         stake.PoolID,
		Amount:         stake.Amount,
		Rewards:        rewards,
		PeriodDuration: period.Duration(),
		From:           max(stake.Timestamp, period.Start),
		To:             min(now, period.End),
	})
}

func (s *Service) TotalStakedForPool(poolID uint64) (*big.Int, error) {
	return s.checkpoints.TotalStakedForPool(poolID)
}

func (s *Service) TotalStaked() (*big.Int, error) {
	return s.checkpoints.TotalStaked()
}

// PoolAPY returns floor(R * SecondsPerYear * APYPrecision / (S * D)), where R is the pot total,
// S the pool's staked total and D the period duration. It is zero when S or D is zero.
func (s *Service) PoolAPY(poolID uint64) (*big.Int, error) {
	staked, err := s.checkpoints.TotalStakedForPool(poolID)
	if err != nil {
		return nil, err
	}
	period, err := s.registry.Period()
	if err != nil {
		return nil, err
	}
	if staked.Sign() == 0 || period.Duration() == 0 {
		return new(big.Int), nil
	}
	rewards, err := s.pot.TotalRewards(poolID)
	if err != nil {
		return nil, err
	}
	num := new(big.Int).Mul(rewards, new(big.Int).SetUint64(snail.SecondsPerYear*snail.APYPrecision))
	den := new(big.Int).Mul(staked, new(big.Int).SetUint64(period.Duration()))
	return num.Quo(num, den), nil
}

func (s *Service) StakeCount(owner snail.Address) (uint64, error) {
	n, err := s.stakeCount.Get(owner)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get stake count")
	}
	return n, nil
}

// UserStake returns the owner's stake, StakeNotFound for unknown ids.
func (s *Service) UserStake(owner snail.Address, stakeID uint64) (*Stake, error) {
	n, err := s.StakeCount(owner)
	if err != nil {
		return nil, err
	}
	if stakeID >= n {
		return nil, reverts.ErrStakeNotFound.Withf("%v has no stake %d", owner, stakeID)
	}
	stake, err := s.stakes.Get(stakeKey{owner, stakeID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake")
	}
	return stake, nil
}

// UserStakes returns every stake of the owner in id order, withdrawn ones included.
func (s *Service) UserStakes(owner snail.Address) ([]*Stake, error) {
	n, err := s.StakeCount(owner)
	if err != nil {
		return nil, err
	}
	stakes := make([]*Stake, 0, n)
	for id := uint64(0); id < n; id++ {
		stake, err := s.stakes.Get(stakeKey{owner, id})
		if err != nil {
			return nil, errors.Wrap(err, "failed to get stake")
		}
		stakes = append(stakes, stake)
	}
	return stakes, nil
}

// Checkpoints returns the checkpoint log of the pool.
func (s *Service) Checkpoints(poolID uint64) ([]*checkpoint.Checkpoint, error) {
	if err := s.registry.RequirePool(poolID); err != nil {
		return nil, err
	}
	return s.checkpoints.All(poolID)
}
