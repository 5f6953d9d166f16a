// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token defines the fungible token ledger consumed by the staking engine
// and ships a reference implementation kept in engine state.
package token

import (
	"math/big"

	"github.com/snailbrook/staking/snail"
)

// Ledger is the minimal fungible token interface the staking engine depends on.
// Failures are returned verbatim to the caller of the staking operation.
type Ledger interface {
	// TransferFrom moves amount from `from` to `to`, spending spender's allowance.
	TransferFrom(spender, from, to snail.Address, amount *big.Int) error
	// Transfer moves amount held by `from` to `to`.
	Transfer(from, to snail.Address, amount *big.Int) error
	BalanceOf(account snail.Address) (*big.Int, error)
	Approve(owner, spender snail.Address, amount *big.Int) error
	Allowance(owner, spender snail.Address) (*big.Int, error)
}
