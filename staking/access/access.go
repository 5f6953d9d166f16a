// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package access

import (
	"github.com/pkg/errors"

	"github.com/snailbrook/staking/log"
	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/staking/reverts"
	"github.com/snailbrook/staking/storage"
)

var logger = log.WithContext("pkg", "access")

// Role names a capability.
type Role = snail.Bytes32

var (
	// DefaultAdminRole administers every role, including itself.
	DefaultAdminRole = Role{}
	// RewardsFunderRole may deposit rewards into the reward pot.
	RewardsFunderRole = snail.Blake2b([]byte("REWARDS_FUNDER_ROLE"))
	// RewardsClaimManagerRole may claim rewards out of the reward pot.
	RewardsClaimManagerRole = snail.Blake2b([]byte("REWARDS_CLAIM_MANAGER_ROLE"))
)

// RoleName returns a readable name of well-known roles.
func RoleName(role Role) string {
	switch role {
	case DefaultAdminRole:
		return "DefaultAdmin"
	case RewardsFunderRole:
		return "RewardsFunder"
	case RewardsClaimManagerRole:
		return "RewardsClaimManager"
	}
	return role.AbbrevString()
}

// ParseRole resolves a readable role name.
func ParseRole(name string) (Role, bool) {
	for _, role := range []Role{DefaultAdminRole, RewardsFunderRole, RewardsClaimManagerRole} {
		if RoleName(role) == name {
			return role, true
		}
	}
	return Role{}, false
}

var (
	slotOwner = snail.BytesToBytes32([]byte("access-owner"))
	slotRoles = snail.BytesToBytes32([]byte("access-roles"))
)

// Policy is the capability object a component consults before mutating.
// It supports a single owner and a set of role grants.
type Policy struct {
	owner *storage.Raw[snail.Address]
	roles *storage.Mapping[snail.Bytes32, bool]
}

func New(sctx *storage.Context) *Policy {
	return &Policy{
		owner: storage.NewRaw[snail.Address](sctx, slotOwner),
		roles: storage.NewMapping[snail.Bytes32, bool](sctx, slotRoles),
	}
}

func grantKey(role Role, account snail.Address) snail.Bytes32 {
	return snail.Blake2b(role.Bytes(), account.Bytes())
}

// Owner returns the current owner, zero if none was set.
func (p *Policy) Owner() (snail.Address, error) {
	owner, _, err := p.owner.Get()
	if err != nil {
		return snail.Address{}, errors.Wrap(err, "failed to get owner")
	}
	return owner, nil
}

// SetOwner unconditionally sets the owner.
func (p *Policy) SetOwner(owner snail.Address) error {
	if err := p.owner.Set(owner); err != nil {
		return errors.Wrap(err, "failed to set owner")
	}
	return nil
}

// RequireOwner fails with Unauthorized unless caller is the owner.
func (p *Policy) RequireOwner(caller snail.Address) error {
	owner, err := p.Owner()
	if err != nil {
		return err
	}
	if owner.IsZero() || owner != caller {
		return reverts.ErrUnauthorized.Withf("%v is not the owner", caller)
	}
	return nil
}

// TransferOwnership hands the owner capability to newOwner.
func (p *Policy) TransferOwnership(caller, newOwner snail.Address) error {
	if err := p.RequireOwner(caller); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return reverts.ErrUnauthorized.Withf("new owner is the zero address")
	}
	logger.Info("ownership transferred", "from", caller, "to", newOwner)
	return p.SetOwner(newOwner)
}

func (p *Policy) HasRole(role Role, account snail.Address) (bool, error) {
	granted, err := p.roles.Get(grantKey(role, account))
	if err != nil {
		return false, errors.Wrap(err, "failed to get role")
	}
	return granted, nil
}

// RequireAnyRole fails with Unauthorized unless account holds at least one of roles.
func (p *Policy) RequireAnyRole(account snail.Address, roles ...Role) error {
	for _, role := range roles {
		granted, err := p.HasRole(role, account)
		if err != nil {
			return err
		}
		if granted {
			return nil
		}
	}
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, RoleName(role))
	}
	return reverts.ErrUnauthorized.Withf("%v lacks role %v", account, names)
}

// SetupRole grants role without an admin check.
func (p *Policy) SetupRole(role Role, account snail.Address) error {
	return p.setRole(role, account, true)
}

// GrantRole grants role to account. The caller must hold DefaultAdminRole.
func (p *Policy) GrantRole(caller snail.Address, role Role, account snail.Address) error {
	if err := p.RequireAnyRole(caller, DefaultAdminRole); err != nil {
		return err
	}
	return p.setRole(role, account, true)
}

// RevokeRole removes role from account. The caller must hold DefaultAdminRole.
func (p *Policy) RevokeRole(caller snail.Address, role Role, account snail.Address) error {
	if err := p.RequireAnyRole(caller, DefaultAdminRole); err != nil {
		return err
	}
	return p.setRole(role, account, false)
}

// RenounceRole removes role from the caller itself.
func (p *Policy) RenounceRole(caller snail.Address, role Role) error {
	return p.setRole(role, caller, false)
}

func (p *Policy) setRole(role Role, account snail.Address, granted bool) error {
	key := grantKey(role, account)
	if !granted {
		p.roles.Delete(key)
	} else if err := p.roles.Set(key, true); err != nil {
		return errors.Wrap(err, "failed to set role")
	}
	logger.Debug("role updated", "role", RoleName(role), "account", account, "granted", granted)
	return nil
}
