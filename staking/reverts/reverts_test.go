// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := New(KindZeroAmount, "test")
	assert.Equal(t, "test", revert.message)
	assert.Equal(t, revert.Error(), revert.message)
	assert.Equal(t, KindZeroAmount, revert.Kind())

	assert.True(t, IsRevertErr(revert))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))
}

func Test_RevertsMatchByKind(t *testing.T) {
	detailed := ErrTooEarly.Withf("stake %d unlocks at %d", 3, 1000)
	assert.Equal(t, "lock duration not elapsed: stake 3 unlocks at 1000", detailed.Error())
	assert.ErrorIs(t, detailed, ErrTooEarly)
	assert.NotErrorIs(t, detailed, ErrAlreadyWithdrawn)

	wrapped := errors.WithMessage(detailed, "withdraw")
	assert.ErrorIs(t, wrapped, ErrTooEarly)
	assert.True(t, IsRevertErr(wrapped))

	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindTooEarly, kind)

	_, ok = KindOf(errors.New("io"))
	assert.False(t, ok)
}
