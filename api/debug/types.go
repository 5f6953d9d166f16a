// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package debug

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/snailbrook/staking/snail"
)

// ClockRequest sets the clock to Now, or moves it forward by Advance seconds.
// Exactly one of them must be given.
type ClockRequest struct {
	Now     *uint64 `json:"now"`
	Advance *uint64 `json:"advance"`
}

type Clock struct {
	Now uint64 `json:"now"`
}

type MintRequest struct {
	To     snail.Address         `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}
