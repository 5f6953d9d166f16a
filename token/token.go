// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/snailbrook/staking/log"
	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/staking/reverts"
	"github.com/snailbrook/staking/state"
	"github.com/snailbrook/staking/storage"
)

var (
	logger = log.WithContext("pkg", "token")

	balancesSlot    = snail.BytesToBytes32([]byte("balances"))
	allowancesSlot  = snail.BytesToBytes32([]byte("allowances"))
	totalSupplySlot = snail.BytesToBytes32([]byte("total-supply"))

	// Account is the identity under which the reference token keeps its slots.
	Account = snail.BytesToAddress([]byte("snail-token"))
)

var _ Ledger = (*Token)(nil)

// Token is a state-backed fungible token. An allowance of MaxBig256 is never decreased.
type Token struct {
	balances    *storage.Mapping[snail.Address, *big.Int]
	allowances  *storage.Mapping[snail.Bytes32, *big.Int]
	totalSupply *storage.Uint256
}

func New(st *state.State) *Token {
	ctx := storage.NewContext(Account, st)
	return &Token{
		balances:    storage.NewMapping[snail.Address, *big.Int](ctx, balancesSlot),
		allowances:  storage.NewMapping[snail.Bytes32, *big.Int](ctx, allowancesSlot),
		totalSupply: storage.NewUint256(ctx, totalSupplySlot),
	}
}

func allowanceKey(owner, spender snail.Address) snail.Bytes32 {
	return snail.Blake2b(owner.Bytes(), spender.Bytes())
}

// Mint creates amount new tokens held by `to`.
func (t *Token) Mint(to snail.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("negative mint amount")
	}
	if err := t.totalSupply.Add(amount); err != nil {
		return err
	}
	balance, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	logger.Debug("minted", "to", to, "amount", amount)
	return t.balances.Set(to, balance.Add(balance, amount))
}

func (t *Token) TotalSupply() (*big.Int, error) {
	return t.totalSupply.Get()
}

func (t *Token) BalanceOf(account snail.Address) (*big.Int, error) {
	return t.balances.Get(account)
}

func (t *Token) Allowance(owner, spender snail.Address) (*big.Int, error) {
	return t.allowances.Get(allowanceKey(owner, spender))
}

func (t *Token) Approve(owner, spender snail.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.ErrInsufficientAllowance.Withf("negative approval")
	}
	return t.allowances.Set(allowanceKey(owner, spender), new(big.Int).Set(amount))
}

func (t *Token) Transfer(from, to snail.Address, amount *big.Int) error {
	return t.move(from, to, amount)
}

func (t *Token) TransferFrom(spender, from, to snail.Address, amount *big.Int) error {
	allowance, err := t.Allowance(from, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return reverts.ErrInsufficientAllowance.Withf("%v allows %v %v, need %v", from, spender, allowance, amount)
	}
	if err := t.move(from, to, amount); err != nil {
		return err
	}
	if allowance.Cmp(math.MaxBig256) == 0 {
		return nil
	}
	return t.allowances.Set(allowanceKey(from, spender), allowance.Sub(allowance, amount))
}

func (t *Token) move(from, to snail.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.ErrInsufficientBalance.Withf("negative transfer")
	}
	fromBalance, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return reverts.ErrInsufficientBalance.Withf("%v holds %v, need %v", from, fromBalance, amount)
	}
	if err := t.balances.Set(from, fromBalance.Sub(fromBalance, amount)); err != nil {
		return err
	}
	toBalance, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	return t.balances.Set(to, toBalance.Add(toBalance, amount))
}
