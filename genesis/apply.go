// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/snailbrook/staking/log"
	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/staking"
	"github.com/snailbrook/staking/staking/access"
)

var logger = log.WithContext("pkg", "genesis")

// Apply replays the deployment on a fresh engine: seed balances, deploy, set the period,
// add pools with multipliers and fund them. With BurnAdmin the operator finally renounces
// the reward pot admin role, freezing its role assignments. The deployment is one engine
// operation, so a failing step leaves the engine untouched.
func Apply(e *staking.Engine, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	balances, err := cfg.SortedBalances()
	if err != nil {
		return err
	}
	op := cfg.Operator

	var start, end uint64
	if err := e.Setup(func(s *staking.Setup) error {
		deployed, err := s.Deployed()
		if err != nil {
			return err
		}
		if deployed {
			return errors.New("engine already deployed")
		}

		start, end = cfg.Period.Bounds(s.Now())
		if start < s.Now() {
			return errors.Errorf("period: start %d is before deployment time %d", start, s.Now())
		}

		for _, b := range balances {
			if err := s.Mint(b.Address, b.Amount); err != nil {
				return errors.Wrapf(err, "mint %v", b.Address)
			}
		}
		if err := s.Deploy(op); err != nil {
			return errors.Wrap(err, "deploy")
		}
		if err := s.SetStakingPeriod(op, start, end); err != nil {
			return errors.Wrap(err, "set period")
		}

		funding := new(big.Int)
		for _, p := range cfg.Pools {
			funding.Add(funding, p.Rewards.Int())
		}
		if funding.Sign() > 0 {
			if err := s.Approve(op, snail.RewardPotAccount, funding); err != nil {
				return errors.Wrap(err, "approve reward funding")
			}
		}

		for i, p := range cfg.Pools {
			id, err := s.AddPool(op, p.Duration)
			if err != nil {
				return errors.Wrapf(err, "pool %d", i)
			}
			if p.Multiplier != 0 {
				if err := s.SetPoolMultiplier(op, id, p.Multiplier); err != nil {
					return errors.Wrapf(err, "pool %d: multiplier", id)
				}
			}
			if rewards := p.Rewards.Int(); rewards.Sign() > 0 {
				if err := s.DepositRewards(op, op, id, rewards); err != nil {
					return errors.Wrapf(err, "pool %d: fund", id)
				}
			}
		}

		if cfg.BurnAdmin {
			if err := s.RenounceRole(op, access.DefaultAdminRole); err != nil {
				return errors.Wrap(err, "renounce admin")
			}
		}
		return nil
	}); err != nil {
		return err
	}

	for i, p := range cfg.Pools {
		logger.Info("pool deployed", "pool", i, "duration", p.Duration, "multiplier", p.Multiplier, "rewards", p.Rewards.Int())
	}
	logger.Info("genesis applied", "operator", op, "start", start, "end", end, "pools", len(cfg.Pools))
	return nil
}
