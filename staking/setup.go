// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/staking/access"
)

// Setup exposes the deployment operations inside a single engine operation.
// It must not be used after the callback passed to Engine.Setup returns.
type Setup struct {
	e   *Engine
	now uint64
}

// Setup runs fn as one operation: either every change fn makes is committed, or none is.
func (e *Engine) Setup(fn func(s *Setup) error) error {
	return e.mutate("setup", func(now uint64) error {
		return fn(&Setup{e, now})
	})
}

// Now is the clock reading the whole setup runs at.
func (s *Setup) Now() uint64 { return s.now }

func (s *Setup) Deployed() (bool, error) {
	owner, err := s.e.registry.Owner()
	return !owner.IsZero(), err
}

func (s *Setup) Mint(to snail.Address, amount *big.Int) error {
	return s.e.token.Mint(to, amount)
}

func (s *Setup) Approve(owner, spender snail.Address, amount *big.Int) error {
	return s.e.token.Approve(owner, spender, amount)
}

func (s *Setup) Deploy(operator snail.Address) error {
	return s.e.deploy(operator)
}

func (s *Setup) SetStakingPeriod(caller snail.Address, start, end uint64) error {
	return s.e.registry.SetStakingPeriod(caller, start, end, s.now)
}

func (s *Setup) AddPool(caller snail.Address, duration uint64) (uint64, error) {
	return s.e.registry.AddPool(caller, duration)
}

func (s *Setup) SetPoolMultiplier(caller snail.Address, poolID, value uint64) error {
	return s.e.points.SetPoolMultiplier(caller, poolID, value)
}

func (s *Setup) DepositRewards(caller, from snail.Address, poolID uint64, amount *big.Int) error {
	return s.e.pot.DepositRewards(caller, from, poolID, amount)
}

func (s *Setup) RenounceRole(caller snail.Address, role access.Role) error {
	return s.e.pot.RenounceRole(caller, role)
}
