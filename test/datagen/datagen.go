// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"
	"math/big"
	mathrand "math/rand/v2"

	"github.com/snailbrook/staking/snail"
)

func RandAddress() (addr snail.Address) {
	rand.Read(addr[:])
	return
}

func RandBytes32() (b snail.Bytes32) {
	rand.Read(b[:])
	return
}

func RandUint64N(n uint64) uint64 {
	return mathrand.Uint64N(n) //#nosec G404
}

// RandTokens returns between 1 and n whole tokens.
func RandTokens(n int64) *big.Int {
	return snail.Tokens(1 + mathrand.Int64N(n)) //#nosec G404
}
