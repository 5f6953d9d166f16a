// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewardpot

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snailbrook/staking/lvldb"
	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/staking/access"
	"github.com/snailbrook/staking/staking/configurator"
	"github.com/snailbrook/staking/staking/reverts"
	"github.com/snailbrook/staking/state"
	"github.com/snailbrook/staking/storage"
	"github.com/snailbrook/staking/token"
)

var (
	admin    = snail.BytesToAddress([]byte("admin"))
	funder   = snail.BytesToAddress([]byte("funder"))
	claimer  = snail.BytesToAddress([]byte("claimer"))
	user     = snail.BytesToAddress([]byte("user"))
	treasury = snail.BytesToAddress([]byte("treasury"))
)

type fixture struct {
	st    *state.State
	tok   *token.Token
	pot   *Service
	funds *big.Int
}

func newFixture(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st, err := state.New(db, 0)
	require.NoError(t, err)

	tok := token.New(st)
	registry := configurator.New(storage.NewContext(snail.BytesToAddress([]byte("registry")), st))
	require.NoError(t, registry.Policy().SetOwner(admin))
	_, err = registry.AddPool(admin, 100)
	require.NoError(t, err)

	pot := New(storage.NewContext(snail.RewardPotAccount, st), registry, tok)
	require.NoError(t, pot.Policy().SetupRole(access.DefaultAdminRole, admin))

	funds := snail.Tokens(1_000)
	require.NoError(t, tok.Mint(treasury, funds))
	require.NoError(t, tok.Approve(treasury, pot.Custody(), funds))
	return &fixture{st: st, tok: tok, pot: pot, funds: funds}
}

// atomic runs fn inside a state checkpoint, reverting on failure.
func (f *fixture) atomic(fn func() error) error {
	rev := f.st.NewCheckpoint()
	if err := fn(); err != nil {
		f.st.RevertTo(rev)
		return err
	}
	return nil
}

func (f *fixture) potOf(t *testing.T, poolID uint64) *Pot {
	pot, err := f.pot.PoolRewards(poolID)
	require.NoError(t, err)
	return pot
}

func TestDepositRewards(t *testing.T) {
	f := newFixture(t)
	amount := snail.Tokens(100)

	assert.ErrorIs(t, f.pot.DepositRewards(user, treasury, 0, amount), reverts.ErrUnauthorized)
	assert.ErrorIs(t, f.pot.DepositRewards(admin, treasury, 1, amount), reverts.ErrPoolNotFound)
	assert.ErrorIs(t, f.pot.DepositRewards(admin, treasury, 0, big.NewInt(0)), reverts.ErrZeroAmount)

	require.NoError(t, f.pot.DepositRewards(admin, treasury, 0, amount))

	require.NoError(t, f.pot.GrantRole(admin, access.RewardsFunderRole, funder))
	require.NoError(t, f.pot.DepositRewards(funder, treasury, 0, amount))

	pot := f.potOf(t, 0)
	assert.Equal(t, snail.Tokens(200), pot.Total)
	assert.Equal(t, 0, pot.Claimed.Sign())

	custody, err := f.tok.BalanceOf(f.pot.Custody())
	require.NoError(t, err)
	assert.Equal(t, snail.Tokens(200), custody)

	_, err = f.pot.PoolRewards(7)
	assert.ErrorIs(t, err, reverts.ErrPoolNotFound)
}

func TestDepositRewardsTokenFailure(t *testing.T) {
	f := newFixture(t)

	err := f.atomic(func() error {
		return f.pot.DepositRewards(admin, user, 0, snail.Tokens(1))
	})
	assert.ErrorIs(t, err, reverts.ErrInsufficientAllowance)
	assert.Equal(t, 0, f.potOf(t, 0).Total.Sign())
}

func TestClaimRewards(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.pot.DepositRewards(admin, treasury, 0, snail.Tokens(100)))

	assert.ErrorIs(t, f.pot.ClaimRewards(admin, user, 0, snail.Tokens(1)), reverts.ErrUnauthorized)

	require.NoError(t, f.pot.GrantRole(admin, access.RewardsClaimManagerRole, claimer))
	assert.ErrorIs(t, f.pot.ClaimRewards(claimer, user, 3, snail.Tokens(1)), reverts.ErrPoolNotFound)
	assert.ErrorIs(t, f.pot.ClaimRewards(claimer, user, 0, big.NewInt(0)), reverts.ErrZeroAmount)
	assert.ErrorIs(t, f.pot.ClaimRewards(claimer, user, 0, snail.Tokens(101)), reverts.ErrInsufficientPotBalance)

	require.NoError(t, f.pot.ClaimRewards(claimer, user, 0, snail.Tokens(60)))
	require.NoError(t, f.pot.ClaimRewards(claimer, user, 0, snail.Tokens(40)))
	assert.ErrorIs(t, f.pot.ClaimRewards(claimer, user, 0, big.NewInt(1)), reverts.ErrInsufficientPotBalance)

	pot := f.potOf(t, 0)
	assert.Equal(t, pot.Total, pot.Claimed)
	assert.Equal(t, 0, pot.Available().Sign())

	balance, err := f.tok.BalanceOf(user)
	require.NoError(t, err)
	assert.Equal(t, snail.Tokens(100), balance)
}

func TestRoleLifecycle(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.pot.GrantRole(admin, access.RewardsClaimManagerRole, claimer))
	// burn the admin capability as the canonical deployment does
	require.NoError(t, f.pot.RenounceRole(admin, access.DefaultAdminRole))

	assert.ErrorIs(t, f.pot.DepositRewards(admin, treasury, 0, snail.Tokens(1)), reverts.ErrUnauthorized)
	assert.ErrorIs(t, f.pot.GrantRole(admin, access.RewardsFunderRole, funder), reverts.ErrUnauthorized)
	assert.ErrorIs(t, f.pot.RevokeRole(admin, access.RewardsClaimManagerRole, claimer), reverts.ErrUnauthorized)

	granted, err := f.pot.HasRole(access.RewardsClaimManagerRole, claimer)
	require.NoError(t, err)
	assert.True(t, granted)
}
