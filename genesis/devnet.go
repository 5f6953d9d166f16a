// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/snailbrook/staking/snail"
)

// DevAccount account for development.
type DevAccount struct {
	Address    snail.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for solo mode. The first one is the operator.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		addr := crypto.PubkeyToAddress(pk.PublicKey)
		accs = append(accs, DevAccount{snail.Address(addr), pk})
	}
	devAccounts.Store(accs)
	return accs
}

// DevConfig is the solo mode deployment: a 30 day period starting at launch, three pools
// funded from the operator and 1M tokens for every dev account.
func DevConfig() *Config {
	accs := DevAccounts()
	balances := make(map[string]*Amount, len(accs))
	for _, acc := range accs {
		balances[acc.Address.String()] = (*Amount)(snail.Tokens(1_000_000))
	}
	return &Config{
		Operator: accs[0].Address,
		Period:   Period{Duration: 30 * snail.SecondsPerDay},
		Pools: []Pool{
			{Duration: snail.SecondsPerDay, Multiplier: 110, Rewards: (*Amount)(snail.Tokens(10_000))},
			{Duration: 7 * snail.SecondsPerDay, Multiplier: 150, Rewards: (*Amount)(snail.Tokens(50_000))},
			{Duration: 30 * snail.SecondsPerDay, Multiplier: 200, Rewards: (*Amount)(snail.Tokens(200_000))},
		},
		Balances:  balances,
		BurnAdmin: false,
	}
}
