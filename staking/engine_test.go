// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snailbrook/staking/kv"
	"github.com/snailbrook/staking/lvldb"
	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/staking/access"
	"github.com/snailbrook/staking/staking/ledger"
	"github.com/snailbrook/staking/staking/reverts"
)

var (
	operator = snail.BytesToAddress([]byte("operator"))
	alice    = snail.BytesToAddress([]byte("alice"))
	bob      = snail.BytesToAddress([]byte("bob"))
)

// newTestEngine deploys an engine with a 1000..4000 period and one 500s pool funded with 3000 tokens.
// alice and bob hold 1M tokens each, approved to the ledger.
func newTestEngine(t *testing.T, db kv.Store) (*Engine, *ManualClock) {
	clock := NewManualClock(900)
	e, err := New(db, clock, Options{})
	require.NoError(t, err)
	t.Cleanup(e.Close)

	require.NoError(t, e.Deploy(operator))
	require.NoError(t, e.SetStakingPeriod(operator, 1000, 4000))
	_, err = e.AddPool(operator, 500)
	require.NoError(t, err)

	require.NoError(t, e.Mint(operator, snail.Tokens(10_000)))
	require.NoError(t, e.Approve(operator, snail.RewardPotAccount, math.MaxBig256))
	require.NoError(t, e.DepositRewards(operator, operator, 0, snail.Tokens(3_000)))
	for _, u := range []snail.Address{alice, bob} {
		require.NoError(t, e.Mint(u, snail.Tokens(1_000_000)))
		require.NoError(t, e.Approve(u, snail.StakeLedgerAccount, math.MaxBig256))
	}
	return e, clock
}

func memDB(t *testing.T) kv.Store {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDeploy(t *testing.T) {
	e, _ := newTestEngine(t, memDB(t))

	ok, err := e.Deployed()
	require.NoError(t, err)
	assert.True(t, ok)

	err = e.Deploy(alice)
	assert.ErrorIs(t, err, reverts.ErrAlreadyConfigured)

	owner, err := e.RegistryOwner()
	require.NoError(t, err)
	assert.Equal(t, operator, owner)
	owner, err = e.PointsOwner()
	require.NoError(t, err)
	assert.Equal(t, operator, owner)

	granted, err := e.HasRole(access.RewardsClaimManagerRole, snail.StakeLedgerAccount)
	require.NoError(t, err)
	assert.True(t, granted)
	granted, err = e.HasRole(access.DefaultAdminRole, operator)
	require.NoError(t, err)
	assert.True(t, granted)

	assert.Error(t, e.Deploy(snail.Address{}))
}

func TestFailedOperationChangesNothing(t *testing.T) {
	e, clock := newTestEngine(t, memDB(t))
	require.NoError(t, clock.Set(1000))

	carol := snail.BytesToAddress([]byte("carol"))
	require.NoError(t, e.Mint(carol, snail.Tokens(10)))

	// no allowance: the stake record and checkpoint written before the pull must be discarded
	_, err := e.Deposit(carol, 0, snail.Tokens(5))
	assert.ErrorIs(t, err, reverts.ErrInsufficientAllowance)

	count, err := e.StakeCount(carol)
	require.NoError(t, err)
	assert.Zero(t, count)
	staked, err := e.TotalStakedForPool(0)
	require.NoError(t, err)
	assert.Zero(t, staked.Sign())
	cps, err := e.Checkpoints(0)
	require.NoError(t, err)
	assert.Empty(t, cps)
	evs, err := e.Events(0, 0)
	require.NoError(t, err)
	assert.Empty(t, evs)
	balance, err := e.BalanceOf(carol)
	require.NoError(t, err)
	assert.Equal(t, snail.Tokens(10), balance)

	// a later successful operation does not resurrect the discarded writes
	id, err := e.Deposit(alice, 0, snail.Tokens(1))
	require.NoError(t, err)
	assert.Zero(t, id)
	count, err = e.StakeCount(carol)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDepositWithdrawLifecycle(t *testing.T) {
	e, clock := newTestEngine(t, memDB(t))
	require.NoError(t, clock.Set(1000))

	id, err := e.Deposit(alice, 0, snail.Tokens(100))
	require.NoError(t, err)

	require.NoError(t, clock.Set(1499))
	_, _, err = e.Withdraw(alice, id)
	assert.ErrorIs(t, err, reverts.ErrTooEarly)

	require.NoError(t, clock.Set(1500))
	rewards, err := e.RewardsForStake(alice, id)
	require.NoError(t, err)
	assert.Equal(t, snail.Tokens(500), rewards)

	amount, paid, err := e.Withdraw(alice, id)
	require.NoError(t, err)
	assert.Equal(t, snail.Tokens(100), amount)
	assert.Equal(t, snail.Tokens(500), paid)

	balance, err := e.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, snail.Tokens(1_000_500), balance)

	pot, err := e.PoolRewards(0)
	require.NoError(t, err)
	assert.Equal(t, snail.Tokens(500), pot.Claimed)

	_, _, err = e.Withdraw(alice, id)
	assert.ErrorIs(t, err, reverts.ErrAlreadyWithdrawn)

	stakes, err := e.StakerStakes(alice)
	require.NoError(t, err)
	require.Len(t, stakes, 1)
	assert.Equal(t, ledger.StatusWithdrawn, stakes[0].Status)
	assert.Zero(t, stakes[0].Rewards.Sign())
	assert.Zero(t, stakes[0].Points.Sign())
}

func TestSubscribeEvents(t *testing.T) {
	e, clock := newTestEngine(t, memDB(t))
	require.NoError(t, clock.Set(1000))

	ch := make(chan *ledger.Event, 4)
	sub := e.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	id, err := e.Deposit(bob, 0, snail.Tokens(10))
	require.NoError(t, err)
	// failed operations publish nothing
	_, _, err = e.Withdraw(bob, id)
	require.Error(t, err)
	clock.Advance(600)
	_, _, err = e.Withdraw(bob, id)
	require.NoError(t, err)

	recv := func() *ledger.Event {
		select {
		case ev := <-ch:
			return ev
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for event")
			return nil
		}
	}
	ev := recv()
	assert.Equal(t, ledger.EventDeposited, ev.Kind)
	assert.Equal(t, uint64(0), ev.Seq)
	assert.Equal(t, bob, ev.Owner)
	assert.Equal(t, uint64(1000), ev.Timestamp)

	ev = recv()
	assert.Equal(t, ledger.EventWithdrawn, ev.Kind)
	assert.Equal(t, uint64(1), ev.Seq)
	assert.Equal(t, snail.Tokens(10), ev.Amount)
	assert.Equal(t, uint64(1600), ev.Timestamp)

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %v", ev.Kind)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestReopen(t *testing.T) {
	db, err := lvldb.New(t.TempDir(), lvldb.Options{})
	require.NoError(t, err)
	defer db.Close()

	e, clock := newTestEngine(t, db)
	require.NoError(t, clock.Set(1000))
	_, err = e.Deposit(alice, 0, snail.Tokens(100))
	require.NoError(t, err)
	require.NoError(t, e.SetPoolMultiplier(operator, 0, 150))
	e.Close()

	reopened, err := New(db, NewManualClock(2500), Options{CacheSize: 16})
	require.NoError(t, err)
	defer reopened.Close()

	ok, err := reopened.Deployed()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.ErrorIs(t, reopened.Deploy(operator), reverts.ErrAlreadyConfigured)

	stake, err := reopened.UserStake(alice, 0)
	require.NoError(t, err)
	assert.Equal(t, snail.Tokens(100), stake.Amount)
	rewards, err := reopened.RewardsForStake(alice, 0)
	require.NoError(t, err)
	assert.Equal(t, snail.Tokens(1500), rewards)
	points, err := reopened.PointsForStake(alice, 0)
	require.NoError(t, err)
	// floor(100e18 / 1000) * 150 / 100
	assert.Equal(t, new(big.Int).Mul(big.NewInt(15), big.NewInt(1e16)), points)
}

func TestPoolsSnapshot(t *testing.T) {
	e, clock := newTestEngine(t, memDB(t))
	require.NoError(t, clock.Set(1000))
	_, err := e.AddPool(operator, 1000)
	require.NoError(t, err)
	_, err = e.Deposit(alice, 0, snail.Tokens(1_000))
	require.NoError(t, err)

	pools, err := e.Pools()
	require.NoError(t, err)
	require.Len(t, pools, 2)

	assert.Equal(t, uint64(500), pools[0].Duration)
	assert.Equal(t, snail.Tokens(3_000), pools[0].Rewards.Total)
	assert.Equal(t, snail.Tokens(1_000), pools[0].TotalStaked)
	// floor(3000 * 31536000 * 100 / (1000 * 3000))
	assert.Equal(t, big.NewInt(3_153_600), pools[0].APY)
	assert.Zero(t, pools[1].TotalStaked.Sign())
	assert.Zero(t, pools[1].APY.Sign())

	_, err = e.Pool(9)
	assert.ErrorIs(t, err, reverts.ErrPoolNotFound)

	require.NoError(t, e.RefreshGauges())
}

func TestPreDeployReverts(t *testing.T) {
	e, err := New(memDB(t), NewManualClock(0), Options{})
	require.NoError(t, err)
	defer e.Close()

	assert.ErrorIs(t, e.SetStakingPeriod(operator, 10, 20), reverts.ErrUnauthorized)
	_, err = e.AddPool(operator, 10)
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)

	rewards, err := e.RewardsForAllStakes(alice)
	require.NoError(t, err)
	assert.Zero(t, rewards.Sign())
}
