// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package points

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/snailbrook/staking/log"
	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/staking/access"
	"github.com/snailbrook/staking/staking/ledger"
	"github.com/snailbrook/staking/staking/reverts"
	"github.com/snailbrook/staking/storage"
)

var logger = log.WithContext("pkg", "points")

var slotMultipliers = snail.BytesToBytes32([]byte("pool-multipliers"))

// Service computes pearl points, a multiplier weighted score of active stakes.
// It reads the stake ledger and never mutates it.
type Service struct {
	policy      *access.Policy
	multipliers *storage.Mapping[storage.Uint64Key, uint64]
	ledger      *ledger.Service
}

func New(sctx *storage.Context, ledger *ledger.Service) *Service {
	return &Service{
		policy:      access.New(sctx),
		multipliers: storage.NewMapping[storage.Uint64Key, uint64](sctx, slotMultipliers),
		ledger:      ledger,
	}
}

// Policy exposes the owner capability of the calculator.
func (s *Service) Policy() *access.Policy {
	return s.policy
}

// SetPoolMultiplier sets the pool's multiplier once. value is a percentage and must exceed 100.
func (s *Service) SetPoolMultiplier(caller snail.Address, poolID, value uint64) error {
	if err := s.policy.RequireOwner(caller); err != nil {
		return err
	}
	current, err := s.PoolMultiplier(poolID)
	if err != nil {
		return err
	}
	if current != 0 {
		return reverts.ErrAlreadySet.Withf("pool %d multiplier is %d", poolID, current)
	}
	if value <= snail.MultiplierBase {
		return reverts.ErrBelowMinimum.Withf("got %d", value)
	}
	if err := s.multipliers.Set(storage.Uint64Key(poolID), value); err != nil {
		return errors.Wrap(err, "failed to set multiplier")
	}
	logger.Info("pool multiplier set", "pool", poolID, "multiplier", value)
	return nil
}

// PoolMultiplier returns the pool's multiplier, 0 when unset.
func (s *Service) PoolMultiplier(poolID uint64) (uint64, error) {
	m, err := s.multipliers.Get(storage.Uint64Key(poolID))
	if err != nil {
		return 0, errors.Wrap(err, "failed to get multiplier")
	}
	return m, nil
}

func (s *Service) points(stake *ledger.Stake) (*big.Int, error) {
	if stake.IsWithdrawn() {
		return new(big.Int), nil
	}
	multiplier, err := s.PoolMultiplier(stake.PoolID)
	if err != nil {
		return nil, err
	}
	p := new(big.Int).Quo(stake.Amount, new(big.Int).SetUint64(snail.PointCoefficient))
	p.Mul(p, new(big.Int).SetUint64(multiplier))
	return p.Quo(p, new(big.Int).SetUint64(snail.MultiplierBase)), nil
}

// PointsForStake returns floor(amount / PointCoefficient) * multiplier / 100, zero once withdrawn.
func (s *Service) PointsForStake(owner snail.Address, stakeID uint64) (*big.Int, error) {
	stake, err := s.ledger.UserStake(owner, stakeID)
	if err != nil {
		return nil, err
	}
	return s.points(stake)
}

// TotalPointsForStaker sums PointsForStake over the owner's active stakes.
func (s *Service) TotalPointsForStaker(owner snail.Address) (*big.Int, error) {
	stakes, err := s.ledger.UserStakes(owner)
	if err != nil {
		return nil, err
	}
	total := new(big.Int)
	for _, stake := range stakes {
		p, err := s.points(stake)
		if err != nil {
			return nil, err
		}
		total.Add(total, p)
	}
	return total, nil
}

func (s *Service) Owner() (snail.Address, error) {
	return s.policy.Owner()
}

func (s *Service) TransferOwnership(caller, newOwner snail.Address) error {
	return s.policy.TransferOwnership(caller, newOwner)
}
