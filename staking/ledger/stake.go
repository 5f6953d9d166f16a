// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"encoding/binary"
	"math/big"

	"github.com/snailbrook/staking/snail"
)

// Status is the lifecycle state of a stake. It moves Deposited -> Withdrawn once.
type Status uint8

const (
	StatusDeposited Status = iota + 1
	StatusWithdrawn
)

func (s Status) String() string {
	switch s {
	case StatusDeposited:
		return "deposited"
	case StatusWithdrawn:
		return "withdrawn"
	}
	return "unknown"
}

// Stake is a single deposit of one owner into one pool.
type Stake struct {
	ID        uint64
	Owner     snail.Address
	PoolID    uint64
	Amount    *big.Int
	Timestamp uint64
	Status    Status
}

func (s *Stake) IsWithdrawn() bool {
	return s.Status == StatusWithdrawn
}

type stakeKey struct {
	owner snail.Address
	id    uint64
}

func (k stakeKey) Bytes() []byte {
	return binary.BigEndian.AppendUint64(k.owner.Bytes(), k.id)
}

// EventKind distinguishes audit trail entries.
type EventKind uint8

const (
	EventDeposited EventKind = iota + 1
	EventWithdrawn
)

func (k EventKind) String() string {
	switch k {
	case EventDeposited:
		return "Deposited"
	case EventWithdrawn:
		return "Withdrawn"
	}
	return "Unknown"
}

// Event is an entry of the append-only audit trail.
// Deposited carries PoolID and Amount; Withdrawn carries Amount and Rewards.
type Event struct {
	Seq       uint64
	Kind      EventKind
	Owner     snail.Address
	StakeID   uint64
	PoolID    uint64
	Amount    *big.Int
	Rewards   *big.Int
	Timestamp uint64
}
