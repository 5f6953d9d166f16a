// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/staking/access"
	"github.com/snailbrook/staking/staking/checkpoint"
	"github.com/snailbrook/staking/staking/configurator"
	"github.com/snailbrook/staking/staking/ledger"
	"github.com/snailbrook/staking/staking/reverts"
	"github.com/snailbrook/staking/staking/rewardpot"
)

// PoolInfo is a consistent snapshot of one pool.
type PoolInfo struct {
	ID          uint64
	Duration    uint64
	Multiplier  uint64
	Rewards     rewardpot.Pot
	TotalStaked *big.Int
	APY         *big.Int
}

// StakeInfo is a stake together with its accrued rewards and points.
type StakeInfo struct {
	*ledger.Stake
	Rewards *big.Int
	Points  *big.Int
}

// Deploy hands every owner capability to operator and authorises the stake ledger to claim
// from the reward pot. It succeeds once.
func (e *Engine) Deploy(operator snail.Address) error {
	return e.mutate("deploy", func(uint64) error {
		return e.deploy(operator)
	})
}

func (e *Engine) deploy(operator snail.Address) error {
	if operator.IsZero() {
		return errors.New("operator must not be the zero address")
	}
	owner, err := e.registry.Owner()
	if err != nil {
		return err
	}
	if !owner.IsZero() {
		return reverts.ErrAlreadyConfigured.Withf("deployed by %v", owner)
	}
	if err := e.registry.Policy().SetOwner(operator); err != nil {
		return err
	}
	if err := e.points.Policy().SetOwner(operator); err != nil {
		return err
	}
	if err := e.pot.Policy().SetupRole(access.DefaultAdminRole, operator); err != nil {
		return err
	}
	if err := e.pot.Policy().SetupRole(access.RewardsClaimManagerRole, e.ledger.Custody()); err != nil {
		return err
	}
	logger.Info("engine deployed", "operator", operator)
	return nil
}

// Deployed reports whether Deploy has run.
func (e *Engine) Deployed() (bool, error) {
	return view(e, func(uint64) (bool, error) {
		owner, err := e.registry.Owner()
		return !owner.IsZero(), err
	})
}

// Token

// Mint credits new tokens to `to`. It is reserved to genesis and the solo faucet.
func (e *Engine) Mint(to snail.Address, amount *big.Int) error {
	return e.mutate("mint", func(uint64) error {
		return e.token.Mint(to, amount)
	})
}

func (e *Engine) Transfer(from, to snail.Address, amount *big.Int) error {
	return e.mutate("transfer", func(uint64) error {
		return e.token.Transfer(from, to, amount)
	})
}

func (e *Engine) Approve(owner, spender snail.Address, amount *big.Int) error {
	return e.mutate("approve", func(uint64) error {
		return e.token.Approve(owner, spender, amount)
	})
}

func (e *Engine) BalanceOf(account snail.Address) (*big.Int, error) {
	return view(e, func(uint64) (*big.Int, error) {
		return e.token.BalanceOf(account)
	})
}

func (e *Engine) Allowance(owner, spender snail.Address) (*big.Int, error) {
	return view(e, func(uint64) (*big.Int, error) {
		return e.token.Allowance(owner, spender)
	})
}

func (e *Engine) TotalSupply() (*big.Int, error) {
	return view(e, func(uint64) (*big.Int, error) {
		return e.token.TotalSupply()
	})
}

// Registry

func (e *Engine) SetStakingPeriod(caller snail.Address, start, end uint64) error {
	return e.mutate("set_period", func(now uint64) error {
		return e.registry.SetStakingPeriod(caller, start, end, now)
	})
}

func (e *Engine) AddPool(caller snail.Address, duration uint64) (id uint64, err error) {
	err = e.mutate("add_pool", func(uint64) error {
		id, err = e.registry.AddPool(caller, duration)
		return err
	})
	return
}

func (e *Engine) Period() (configurator.Period, error) {
	return view(e, func(uint64) (configurator.Period, error) {
		return e.registry.Period()
	})
}

func (e *Engine) PoolCount() (uint64, error) {
	return view(e, func(uint64) (uint64, error) {
		return e.registry.PoolCount()
	})
}

func (e *Engine) PoolExists(poolID uint64) (bool, error) {
	return view(e, func(uint64) (bool, error) {
		return e.registry.PoolExists(poolID)
	})
}

func (e *Engine) PoolDuration(poolID uint64) (uint64, error) {
	return view(e, func(uint64) (uint64, error) {
		return e.registry.PoolDuration(poolID)
	})
}

func (e *Engine) RegistryOwner() (snail.Address, error) {
	return view(e, func(uint64) (snail.Address, error) {
		return e.registry.Owner()
	})
}

func (e *Engine) TransferRegistryOwnership(caller, newOwner snail.Address) error {
	return e.mutate("transfer_registry_ownership", func(uint64) error {
		return e.registry.TransferOwnership(caller, newOwner)
	})
}

// Reward pot

func (e *Engine) DepositRewards(caller, from snail.Address, poolID uint64, amount *big.Int) error {
	return e.mutate("deposit_rewards", func(uint64) error {
		return e.pot.DepositRewards(caller, from, poolID, amount)
	})
}

func (e *Engine) ClaimRewards(caller, to snail.Address, poolID uint64, amount *big.Int) error {
	return e.mutate("claim_rewards", func(uint64) error {
		return e.pot.ClaimRewards(caller, to, poolID, amount)
	})
}

func (e *Engine) PoolRewards(poolID uint64) (*rewardpot.Pot, error) {
	return view(e, func(uint64) (*rewardpot.Pot, error) {
		return e.pot.PoolRewards(poolID)
	})
}

func (e *Engine) HasRole(role access.Role, account snail.Address) (bool, error) {
	return view(e, func(uint64) (bool, error) {
		return e.pot.HasRole(role, account)
	})
}

func (e *Engine) GrantRole(caller snail.Address, role access.Role, account snail.Address) error {
	return e.mutate("grant_role", func(uint64) error {
		return e.pot.GrantRole(caller, role, account)
	})
}

func (e *Engine) RevokeRole(caller snail.Address, role access.Role, account snail.Address) error {
	return e.mutate("revoke_role", func(uint64) error {
		return e.pot.RevokeRole(caller, role, account)
	})
}

func (e *Engine) RenounceRole(caller snail.Address, role access.Role) error {
	return e.mutate("renounce_role", func(uint64) error {
		return e.pot.RenounceRole(caller, role)
	})
}

// Stake ledger

func (e *Engine) Deposit(caller snail.Address, poolID uint64, amount *big.Int) (id uint64, err error) {
	err = e.mutate("deposit", func(now uint64) error {
		id, err = e.ledger.Deposit(caller, poolID, amount, now)
		return err
	})
	return
}

func (e *Engine) Withdraw(caller snail.Address, stakeID uint64) (amount, rewards *big.Int, err error) {
	err = e.mutate("withdraw", func(now uint64) error {
		amount, rewards, err = e.ledger.Withdraw(caller, stakeID, now)
		return err
	})
	return
}

func (e *Engine) RewardsForStake(owner snail.Address, stakeID uint64) (*big.Int, error) {
	return view(e, func(now uint64) (*big.Int, error) {
		return e.ledger.RewardsForStake(owner, stakeID, now)
	})
}

func (e *Engine) RewardsForAllStakes(owner snail.Address) (*big.Int, error) {
	return view(e, func(now uint64) (*big.Int, error) {
		return e.ledger.RewardsForAllStakes(owner, now)
	})
}

func (e *Engine) TotalStakedForPool(poolID uint64) (*big.Int, error) {
	return view(e, func(uint64) (*big.Int, error) {
		return e.ledger.TotalStakedForPool(poolID)
	})
}

func (e *Engine) TotalStaked() (*big.Int, error) {
	return view(e, func(uint64) (*big.Int, error) {
		return e.ledger.TotalStaked()
	})
}

func (e *Engine) PoolAPY(poolID uint64) (*big.Int, error) {
	return view(e, func(uint64) (*big.Int, error) {
		return e.ledger.PoolAPY(poolID)
	})
}

func (e *Engine) StakeCount(owner snail.Address) (uint64, error) {
	return view(e, func(uint64) (uint64, error) {
		return e.ledger.StakeCount(owner)
	})
}

func (e *Engine) UserStake(owner snail.Address, stakeID uint64) (*ledger.Stake, error) {
	return view(e, func(uint64) (*ledger.Stake, error) {
		return e.ledger.UserStake(owner, stakeID)
	})
}

func (e *Engine) UserStakes(owner snail.Address) ([]*ledger.Stake, error) {
	return view(e, func(uint64) ([]*ledger.Stake, error) {
		return e.ledger.UserStakes(owner)
	})
}

func (e *Engine) Checkpoints(poolID uint64) ([]*checkpoint.Checkpoint, error) {
	return view(e, func(uint64) ([]*checkpoint.Checkpoint, error) {
		return e.ledger.Checkpoints(poolID)
	})
}

// Events returns up to limit audit trail entries starting at sequence from. A zero limit returns all.
func (e *Engine) Events(from, limit uint64) ([]*ledger.Event, error) {
	return view(e, func(uint64) ([]*ledger.Event, error) {
		return e.ledger.Events(from, limit)
	})
}

// Points

func (e *Engine) SetPoolMultiplier(caller snail.Address, poolID, value uint64) error {
	return e.mutate("set_multiplier", func(uint64) error {
		return e.points.SetPoolMultiplier(caller, poolID, value)
	})
}

func (e *Engine) PoolMultiplier(poolID uint64) (uint64, error) {
	return view(e, func(uint64) (uint64, error) {
		return e.points.PoolMultiplier(poolID)
	})
}

func (e *Engine) PointsForStake(owner snail.Address, stakeID uint64) (*big.Int, error) {
	return view(e, func(uint64) (*big.Int, error) {
		return e.points.PointsForStake(owner, stakeID)
	})
}

func (e *Engine) TotalPointsForStaker(owner snail.Address) (*big.Int, error) {
	return view(e, func(uint64) (*big.Int, error) {
		return e.points.TotalPointsForStaker(owner)
	})
}

func (e *Engine) PointsOwner() (snail.Address, error) {
	return view(e, func(uint64) (snail.Address, error) {
		return e.points.Owner()
	})
}

func (e *Engine) TransferPointsOwnership(caller, newOwner snail.Address) error {
	return e.mutate("transfer_points_ownership", func(uint64) error {
		return e.points.TransferOwnership(caller, newOwner)
	})
}

// Aggregated views

func (e *Engine) poolInfo(pool configurator.Pool) (*PoolInfo, error) {
	pot, err := e.pot.PoolRewards(pool.ID)
	if err != nil {
		return nil, err
	}
	staked, err := e.ledger.TotalStakedForPool(pool.ID)
	if err != nil {
		return nil, err
	}
	apy, err := e.ledger.PoolAPY(pool.ID)
	if err != nil {
		return nil, err
	}
	multiplier, err := e.points.PoolMultiplier(pool.ID)
	if err != nil {
		return nil, err
	}
	return &PoolInfo{
		ID:          pool.ID,
		Duration:    pool.Duration,
		Multiplier:  multiplier,
		Rewards:     *pot,
		TotalStaked: staked,
		APY:         apy,
	}, nil
}

// Pool returns a snapshot of one pool.
func (e *Engine) Pool(poolID uint64) (*PoolInfo, error) {
	return view(e, func(uint64) (*PoolInfo, error) {
		duration, err := e.registry.PoolDuration(poolID)
		if err != nil {
			return nil, err
		}
		return e.poolInfo(configurator.Pool{ID: poolID, Duration: duration})
	})
}

// Pools returns a snapshot of every pool in id order.
func (e *Engine) Pools() ([]*PoolInfo, error) {
	return view(e, func(uint64) ([]*PoolInfo, error) {
		pools, err := e.registry.Pools()
		if err != nil {
			return nil, err
		}
		infos := make([]*PoolInfo, 0, len(pools))
		for _, pool := range pools {
			info, err := e.poolInfo(pool)
			if err != nil {
				return nil, err
			}
			infos = append(infos, info)
		}
		return infos, nil
	})
}

// StakerStakes returns every stake of owner with rewards and points evaluated at the same instant.
func (e *Engine) StakerStakes(owner snail.Address) ([]*StakeInfo, error) {
	return view(e, func(now uint64) ([]*StakeInfo, error) {
		stakes, err := e.ledger.UserStakes(owner)
		if err != nil {
			return nil, err
		}
		infos := make([]*StakeInfo, 0, len(stakes))
		for _, stake := range stakes {
			rewards, err := e.ledger.RewardsForStake(owner, stake.ID, now)
			if err != nil {
				return nil, err
			}
			points, err := e.points.PointsForStake(owner, stake.ID)
			if err != nil {
				return nil, err
			}
			infos = append(infos, &StakeInfo{Stake: stake, Rewards: rewards, Points: points})
		}
		return infos, nil
	})
}

// wholeTokens truncates base units to whole tokens for gauges.
func wholeTokens(amount *big.Int) int64 {
	v := new(big.Int).Quo(amount, snail.Ether)
	if !v.IsInt64() {
		return 0
	}
	return v.Int64()
}

// StakerStake returns one stake of owner with its rewards and points.
func (e *Engine) StakerStake(owner snail.Address, stakeID uint64) (*StakeInfo, error) {
	return view(e, func(now uint64) (*StakeInfo, error) {
		stake, err := e.ledger.UserStake(owner, stakeID)
		if err != nil {
			return nil, err
		}
		rewards, err := e.ledger.RewardsForStake(owner, stakeID, now)
		if err != nil {
			return nil, err
		}
		points, err := e.points.PointsForStake(owner, stakeID)
		if err != nil {
			return nil, err
		}
		return &StakeInfo{Stake: stake, Rewards: rewards, Points: points}, nil
	})
}

// EventCount returns the length of the audit trail.
func (e *Engine) EventCount() (uint64, error) {
	return view(e, func(uint64) (uint64, error) {
		return e.ledger.EventCount()
	})
}
