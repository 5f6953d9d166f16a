// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snailbrook/staking/lvldb"
	"github.com/snailbrook/staking/snail"
)

func newTestState(t *testing.T) (*State, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st, err := New(db, 0)
	require.NoError(t, err)
	return st, db
}

func TestStateGetSet(t *testing.T) {
	st, _ := newTestState(t)
	addr := snail.BytesToAddress([]byte("acc"))
	key := snail.BytesToBytes32([]byte("k"))

	v, err := st.GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Empty(t, v)

	st.SetRawStorage(addr, key, rlp.RawValue{0x01})
	v, err = st.GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, rlp.RawValue{0x01}, v)

	other := snail.BytesToAddress([]byte("other"))
	v, err = st.GetRawStorage(other, key)
	require.NoError(t, err)
	assert.Empty(t, v, "slots are scoped by account")
}

func TestStateCheckpointRevert(t *testing.T) {
	st, _ := newTestState(t)
	addr := snail.BytesToAddress([]byte("acc"))
	key := snail.BytesToBytes32([]byte("k"))

	st.SetRawStorage(addr, key, rlp.RawValue{0x01})

	rev := st.NewCheckpoint()
	st.SetRawStorage(addr, key, rlp.RawValue{0x02})
	st.SetRawStorage(addr, snail.BytesToBytes32([]byte("k2")), rlp.RawValue{0x03})
	st.RevertTo(rev)

	v, err := st.GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, rlp.RawValue{0x01}, v)

	v, err = st.GetRawStorage(addr, snail.BytesToBytes32([]byte("k2")))
	require.NoError(t, err)
	assert.Empty(t, v)

	// reverting everything keeps the state usable
	st.RevertTo(0)
	st.SetRawStorage(addr, key, rlp.RawValue{0x04})
	v, err = st.GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, rlp.RawValue{0x04}, v)
}

func TestStateCommit(t *testing.T) {
	st, db := newTestState(t)
	addr := snail.BytesToAddress([]byte("acc"))
	k1 := snail.BytesToBytes32([]byte("k1"))
	k2 := snail.BytesToBytes32([]byte("k2"))

	st.SetRawStorage(addr, k1, rlp.RawValue{0x01})
	st.SetRawStorage(addr, k1, rlp.RawValue{0x11})
	st.SetRawStorage(addr, k2, rlp.RawValue{0x02})

	n, err := st.Commit()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = st.Commit()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// a fresh state over the same store sees committed slots
	reopened, err := New(db, 0)
	require.NoError(t, err)
	v, err := reopened.GetRawStorage(addr, k1)
	require.NoError(t, err)
	assert.Equal(t, rlp.RawValue{0x11}, v)

	// empty value deletes
	reopened.SetRawStorage(addr, k2, nil)
	_, err = reopened.Commit()
	require.NoError(t, err)

	has, err := db.Has(storageBucket.Key(storageKey{addr, k2}.dbKey()))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestStateEncodeDecode(t *testing.T) {
	st, _ := newTestState(t)
	addr := snail.BytesToAddress([]byte("acc"))
	key := snail.BytesToBytes32([]byte("n"))

	require.NoError(t, st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(uint64(42))
	}))

	var n uint64
	require.NoError(t, st.DecodeStorage(addr, key, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &n)
	}))
	assert.Equal(t, uint64(42), n)

	err := st.DecodeStorage(addr, key, func(raw []byte) error {
		var s []string
		return rlp.DecodeBytes(raw, &s)
	})
	var stateErr *Error
	assert.ErrorAs(t, err, &stateErr)
}
