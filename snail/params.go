// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package snail

import "math/big"

// Constants of the staking program.
const (
	SecondsPerDay  uint64 = 86400
	SecondsPerYear uint64 = 365 * SecondsPerDay

	// APYPrecision scales the annual yield ratio of PoolAPY, 100 yields whole percent.
	APYPrecision uint64 = 100

	// MultiplierBase is the percentage basis of pool multipliers, 100 means 1.0x.
	MultiplierBase uint64 = 100

	// PointCoefficient divides staked base units into pearl points.
	PointCoefficient uint64 = 1000
)

// Well-known custody accounts. The reward pot and the stake ledger hold tokens on
// behalf of the program under these identities.
var (
	RewardPotAccount   = BytesToAddress([]byte("snail-reward-pot"))
	StakeLedgerAccount = BytesToAddress([]byte("snail-stake-ledger"))
)

// Ether is 1e18 base units, handy when expressing token amounts.
var Ether = big.NewInt(1e18)

// Tokens returns n whole tokens in base units.
func Tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), Ether)
}
