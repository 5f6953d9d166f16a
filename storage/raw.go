// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/snailbrook/staking/snail"
)

// Raw stores a single rlp encoded value in one slot.
type Raw[V any] struct {
	context *Context
	pos     snail.Bytes32
}

func NewRaw[V any](context *Context, slot snail.Bytes32) *Raw[V] {
	return &Raw[V]{context: context, pos: slot}
}

// Get decodes the slot into a V. An empty slot yields the zero value and exist == false.
func (r *Raw[V]) Get() (value V, exist bool, err error) {
	err = r.context.state.DecodeStorage(r.context.address, r.pos, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		exist = true
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

func (r *Raw[V]) Set(value V) error {
	return r.context.state.EncodeStorage(r.context.address, r.pos, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}
