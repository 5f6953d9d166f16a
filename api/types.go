// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/staking"
	"github.com/snailbrook/staking/staking/configurator"
	"github.com/snailbrook/staking/staking/ledger"
)

// Period the staking window.
type Period struct {
	Start    uint64 `json:"start"`
	End      uint64 `json:"end"`
	Duration uint64 `json:"duration"`
}

// Pool is a snapshot of one pool.
type Pool struct {
	ID             uint64                `json:"id"`
	Duration       uint64                `json:"duration"`
	Multiplier     uint64                `json:"multiplier"`
	TotalRewards   *math.HexOrDecimal256 `json:"totalRewards"`
	ClaimedRewards *math.HexOrDecimal256 `json:"claimedRewards"`
	TotalStaked    *math.HexOrDecimal256 `json:"totalStaked"`
	APY            *math.HexOrDecimal256 `json:"apy"`
}

// Stake is a stake with rewards and points evaluated at the time of the request.
type Stake struct {
	ID        uint64                `json:"id"`
	Owner     snail.Address         `json:"owner"`
	PoolID    uint64                `json:"poolId"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
	Timestamp uint64                `json:"timestamp"`
	Status    string                `json:"status"`
	Rewards   *math.HexOrDecimal256 `json:"rewards"`
	Points    *math.HexOrDecimal256 `json:"points"`
}

// Event is an audit trail entry.
type Event struct {
	Seq       uint64                `json:"seq"`
	Kind      string                `json:"kind"`
	Owner     snail.Address         `json:"owner"`
	StakeID   uint64                `json:"stakeId"`
	PoolID    uint64                `json:"poolId"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
	Rewards   *math.HexOrDecimal256 `json:"rewards,omitempty"`
	Timestamp uint64                `json:"timestamp"`
}

// Checkpoint a point of the pool's staked total history.
type Checkpoint struct {
	Timestamp   uint64                `json:"timestamp"`
	TotalStaked *math.HexOrDecimal256 `json:"totalStaked"`
}

// DepositRequest opens a stake.
type DepositRequest struct {
	PoolID uint64                `json:"poolId"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// ApprovalRequest sets the amount spender may move out of the path address.
type ApprovalRequest struct {
	Spender snail.Address         `json:"spender"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
}

// DepositResult identifies the opened stake.
type DepositResult struct {
	StakeID uint64 `json:"stakeId"`
}

// WithdrawResult is what a withdrawal paid out.
type WithdrawResult struct {
	Amount  *math.HexOrDecimal256 `json:"amount"`
	Rewards *math.HexOrDecimal256 `json:"rewards"`
}

// RewardsRequest funds a pool on behalf of caller, pulling from caller's balance.
type RewardsRequest struct {
	Caller snail.Address         `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// MultiplierRequest sets a pool's multiplier.
type MultiplierRequest struct {
	Caller snail.Address `json:"caller"`
	Value  uint64        `json:"value"`
}

// Amount is a single token quantity.
type Amount struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// Hex wraps v for JSON output.
func Hex(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		return nil
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

// Int unwraps a JSON amount, nil reads as zero.
func Int(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(v))
}

func ConvertPeriod(p configurator.Period) *Period {
	return &Period{
		Start:    p.Start,
		End:      p.End,
		Duration: p.Duration(),
	}
}

func ConvertPool(p *staking.PoolInfo) *Pool {
	return &Pool{
		ID:             p.ID,
		Duration:       p.Duration,
		Multiplier:     p.Multiplier,
		TotalRewards:   Hex(p.Rewards.Total),
		ClaimedRewards: Hex(p.Rewards.Claimed),
		TotalStaked:    Hex(p.TotalStaked),
		APY:            Hex(p.APY),
	}
}

func ConvertStake(s *staking.StakeInfo) *Stake {
	return &Stake{
		ID:        s.ID,
		Owner:     s.Owner,
		PoolID:    s.PoolID,
		Amount:    Hex(s.Amount),
		Timestamp: s.Timestamp,
		Status:    s.Status.String(),
		Rewards:   Hex(s.Rewards),
		Points:    Hex(s.Points),
	}
}

func ConvertEvent(ev *ledger.Event) *Event {
	e := &Event{
		Seq:       ev.Seq,
		Kind:      ev.Kind.String(),
		Owner:     ev.Owner,
		StakeID:   ev.StakeID,
		PoolID:    ev.PoolID,
		Amount:    Hex(ev.Amount),
		Timestamp: ev.Timestamp,
	}
	if ev.Kind == ledger.EventWithdrawn {
		e.Rewards = Hex(ev.Rewards)
	}
	return e
}
