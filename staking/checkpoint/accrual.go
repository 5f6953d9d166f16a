// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package checkpoint

import (
	"math/big"
)

// Accrual describes the reward share to integrate for one stake.
type Accrual struct {
	PoolID         uint64
	Amount         *big.Int // stake amount
	Rewards        *big.Int // pool pot total
	PeriodDuration uint64
	From           uint64 // accrual start, inclusive
	To             uint64 // accrual end, exclusive
}

// Accrue walks the checkpoint log of the pool from the interval containing From to To and sums
// floor(Amount * Rewards * dt / (PeriodDuration * total)) per sub-interval with a non-zero total.
// It costs O(log n) reads to locate From plus one read per checkpoint crossed.
func (s *Service) Accrue(a Accrual) (*big.Int, error) {
	acc := new(big.Int)
	if a.From >= a.To || a.PeriodDuration == 0 || a.Amount.Sign() == 0 || a.Rewards.Sign() == 0 {
		return acc, nil
	}

	n, err := s.Len(a.PoolID)
	if err != nil {
		return nil, err
	}
	i, found, err := s.Search(a.PoolID, a.From)
	if err != nil {
		return nil, err
	}
	if !found {
		// the pool was empty at From; accrual begins at the first checkpoint
		i = 0
	}

	var (
		cur      *Checkpoint
		num      = new(big.Int)
		den      = new(big.Int)
		numBase  = new(big.Int).Mul(a.Amount, a.Rewards)
		duration = new(big.Int).SetUint64(a.PeriodDuration)
	)
	if i < n {
		if cur, err = s.At(a.PoolID, i); err != nil {
			return nil, err
		}
	}
	for cur != nil && cur.Timestamp < a.To {
		var next *Checkpoint
		end := a.To
		if i+1 < n {
			if next, err = s.At(a.PoolID, i+1); err != nil {
				return nil, err
			}
			if next.Timestamp < end {
				end = next.Timestamp
			}
		}
		start := max(a.From, cur.Timestamp)
		if start < end && cur.TotalStaked.Sign() > 0 {
			num.Mul(numBase, new(big.Int).SetUint64(end-start))
			den.Mul(duration, cur.TotalStaked)
			acc.Add(acc, num.Quo(num, den))
		}
		cur = next
		i++
	}
	return acc, nil
}
