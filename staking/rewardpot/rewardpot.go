// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewardpot

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/snailbrook/staking/log"
	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/staking/access"
	"github.com/snailbrook/staking/staking/configurator"
	"github.com/snailbrook/staking/staking/reverts"
	"github.com/snailbrook/staking/storage"
	"github.com/snailbrook/staking/token"
)

var logger = log.WithContext("pkg", "rewardpot")

var slotPots = snail.BytesToBytes32([]byte("reward-pots"))

// Pot is the reward accounting of one pool. Claimed never exceeds Total and both only grow.
type Pot struct {
	Total   *big.Int
	Claimed *big.Int
}

// Available returns Total - Claimed.
func (p *Pot) Available() *big.Int {
	return new(big.Int).Sub(p.Total, p.Claimed)
}

// Service is the reward pot ledger. Tokens are held in custody under the context's address.
type Service struct {
	custody  snail.Address
	policy   *access.Policy
	pots     *storage.Mapping[storage.Uint64Key, *Pot]
	registry *configurator.Service
	token    token.Ledger
}

func New(sctx *storage.Context, registry *configurator.Service, tok token.Ledger) *Service {
	return &Service{
		custody:  sctx.Address(),
		policy:   access.New(sctx),
		pots:     storage.NewMapping[storage.Uint64Key, *Pot](sctx, slotPots),
		registry: registry,
		token:    tok,
	}
}

// Custody returns the account holding the pot's tokens.
func (s *Service) Custody() snail.Address {
	return s.custody
}

// Policy exposes the role grants of the pot.
func (s *Service) Policy() *access.Policy {
	return s.policy
}

func (s *Service) getPot(poolID uint64) (*Pot, error) {
	pot, err := s.pots.Get(storage.Uint64Key(poolID))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get reward pot")
	}
	if pot.Total == nil {
		pot.Total = new(big.Int)
	}
	if pot.Claimed == nil {
		pot.Claimed = new(big.Int)
	}
	return pot, nil
}

// DepositRewards pulls amount from `from` into the pot of poolID.
// The caller needs DefaultAdminRole or RewardsFunderRole.
func (s *Service) DepositRewards(caller, from snail.Address, poolID uint64, amount *big.Int) error {
	if err := s.policy.RequireAnyRole(caller, access.DefaultAdminRole, access.RewardsFunderRole); err != nil {
		return err
	}
	if err := s.registry.RequirePool(poolID); err != nil {
		return err
	}
	if amount.Sign() <= 0 {
		return reverts.ErrZeroAmount
	}
	pot, err := s.getPot(poolID)
	if err != nil {
		return err
	}
	pot.Total.Add(pot.Total, amount)
	if err := s.pots.Set(storage.Uint64Key(poolID), pot); err != nil {
		return errors.Wrap(err, "failed to set reward pot")
	}
	if err := s.token.TransferFrom(s.custody, from, s.custody, amount); err != nil {
		return err
	}
	logger.Debug("rewards deposited", "pool", poolID, "from", from, "amount", amount, "total", pot.Total)
	return nil
}

// ClaimRewards pays amount out of the pot of poolID to `to`.
// The caller needs RewardsClaimManagerRole.
func (s *Service) ClaimRewards(caller, to snail.Address, poolID uint64, amount *big.Int) error {
	if err := s.policy.RequireAnyRole(caller, access.RewardsClaimManagerRole); err != nil {
		return err
	}
	if err := s.registry.RequirePool(poolID); err != nil {
		return err
	}
	if amount.Sign() <= 0 {
		return reverts.ErrZeroAmount
	}
	pot, err := s.getPot(poolID)
	if err != nil {
		return err
	}
	if available := pot.Available(); amount.Cmp(available) > 0 {
		return reverts.ErrInsufficientPotBalance.Withf("pool %d has %v, claim %v", poolID, available, amount)
	}
	pot.Claimed.Add(pot.Claimed, amount)
	if err := s.pots.Set(storage.Uint64Key(poolID), pot); err != nil {
		return errors.Wrap(err, "failed to set reward pot")
	}
	if err := s.token.Transfer(s.custody, to, amount); err != nil {
		return err
	}
	logger.Debug("rewards claimed", "pool", poolID, "to", to, "amount", amount, "claimed", pot.Claimed)
	return nil
}

// PoolRewards returns the pot of poolID.
func (s *Service) PoolRewards(poolID uint64) (*Pot, error) {
	if err := s.registry.RequirePool(poolID); err != nil {
		return nil, err
	}
	return s.getPot(poolID)
}

// TotalRewards returns the pot's Total of poolID, zero for unknown pools.
func (s *Service) TotalRewards(poolID uint64) (*big.Int, error) {
	pot, err := s.getPot(poolID)
	if err != nil {
		return nil, err
	}
	return pot.Total, nil
}

func (s *Service) HasRole(role access.Role, account snail.Address) (bool, error) {
	return s.policy.HasRole(role, account)
}

func (s *Service) GrantRole(caller snail.Address, role access.Role, account snail.Address) error {
	return s.policy.GrantRole(caller, role, account)
}

func (s *Service) RevokeRole(caller snail.Address, role access.Role, account snail.Address) error {
	return s.policy.RevokeRole(caller, role, account)
}

func (s *Service) RenounceRole(caller snail.Address, role access.Role) error {
	return s.policy.RenounceRole(caller, role)
}
