// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snailbrook/staking/lvldb"
	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/staking/reverts"
	"github.com/snailbrook/staking/state"
	"github.com/snailbrook/staking/storage"
)

var (
	admin  = snail.BytesToAddress([]byte("admin"))
	funder = snail.BytesToAddress([]byte("funder"))
	other  = snail.BytesToAddress([]byte("other"))
)

func newPolicy(t *testing.T) *Policy {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	st, err := state.New(db, 0)
	require.NoError(t, err)
	return New(storage.NewContext(snail.BytesToAddress([]byte("component")), st))
}

func TestOwner(t *testing.T) {
	p := newPolicy(t)

	assert.ErrorIs(t, p.RequireOwner(snail.Address{}), reverts.ErrUnauthorized, "no owner means nobody is authorized")

	require.NoError(t, p.SetOwner(admin))
	assert.NoError(t, p.RequireOwner(admin))
	assert.ErrorIs(t, p.RequireOwner(other), reverts.ErrUnauthorized)

	assert.ErrorIs(t, p.TransferOwnership(other, other), reverts.ErrUnauthorized)
	assert.ErrorIs(t, p.TransferOwnership(admin, snail.Address{}), reverts.ErrUnauthorized)
	require.NoError(t, p.TransferOwnership(admin, other))

	owner, err := p.Owner()
	require.NoError(t, err)
	assert.Equal(t, other, owner)
	assert.ErrorIs(t, p.RequireOwner(admin), reverts.ErrUnauthorized)
}

func TestRoles(t *testing.T) {
	p := newPolicy(t)
	require.NoError(t, p.SetupRole(DefaultAdminRole, admin))

	assert.ErrorIs(t, p.GrantRole(other, RewardsFunderRole, other), reverts.ErrUnauthorized)
	require.NoError(t, p.GrantRole(admin, RewardsFunderRole, funder))

	assert.NoError(t, p.RequireAnyRole(funder, DefaultAdminRole, RewardsFunderRole))
	assert.NoError(t, p.RequireAnyRole(admin, DefaultAdminRole, RewardsFunderRole))
	err := p.RequireAnyRole(other, DefaultAdminRole, RewardsFunderRole)
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)
	assert.Contains(t, err.Error(), "RewardsFunder")

	require.NoError(t, p.RevokeRole(admin, RewardsFunderRole, funder))
	granted, err := p.HasRole(RewardsFunderRole, funder)
	require.NoError(t, err)
	assert.False(t, granted)

	require.NoError(t, p.RenounceRole(admin, DefaultAdminRole))
	assert.ErrorIs(t, p.GrantRole(admin, RewardsFunderRole, funder), reverts.ErrUnauthorized)
}

func TestRoleNames(t *testing.T) {
	for _, name := range []string{"DefaultAdmin", "RewardsFunder", "RewardsClaimManager"} {
		role, ok := ParseRole(name)
		require.True(t, ok, name)
		assert.Equal(t, name, RoleName(role))
	}
	_, ok := ParseRole("Nobody")
	assert.False(t, ok)
}
