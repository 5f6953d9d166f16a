// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/state"
)

// Context binds typed storage containers to the slots of one account.
type Context struct {
	address snail.Address
	state   *state.State
}

func NewContext(address snail.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) Address() snail.Address {
	return c.address
}
