// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testengine

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/snailbrook/staking/genesis"
	"github.com/snailbrook/staking/lvldb"
	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/staking"
)

// LaunchTime is the clock reading at deployment.
const LaunchTime uint64 = 1_700_000_000

// Engine is an in-memory engine deployed with the dev genesis and driven by a manual clock.
// Every dev account has approved the stake ledger without limit.
type Engine struct {
	*staking.Engine
	Clock    *staking.ManualClock
	Accounts []genesis.DevAccount
	db       *lvldb.LevelDB
}

func New() (*Engine, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	clock := staking.NewManualClock(LaunchTime)
	e, err := staking.New(db, clock, staking.Options{})
	if err != nil {
		db.Close()
		return nil, err
	}

	te := &Engine{Engine: e, Clock: clock, Accounts: genesis.DevAccounts(), db: db}
	if err := genesis.Apply(e, genesis.DevConfig()); err != nil {
		te.Close()
		return nil, err
	}
	for _, acc := range te.Accounts {
		if err := e.Approve(acc.Address, snail.StakeLedgerAccount, math.MaxBig256); err != nil {
			te.Close()
			return nil, err
		}
	}
	return te, nil
}

// Operator owns every component.
func (e *Engine) Operator() snail.Address {
	return e.Accounts[0].Address
}

// Staker returns the i-th dev account that is not the operator.
func (e *Engine) Staker(i int) snail.Address {
	return e.Accounts[1+i].Address
}

func (e *Engine) Close() {
	e.Engine.Close()
	e.db.Close()
}
