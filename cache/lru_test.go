// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLRU(t *testing.T) {
	_, err := NewLRU(0)
	assert.Error(t, err)

	c, err := NewLRU(2)
	require.NoError(t, err)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)
	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should be evicted")
}

func TestLRUGetOrLoad(t *testing.T) {
	c, err := NewLRU(8)
	require.NoError(t, err)

	loads := 0
	loader := func(key any) (any, error) {
		loads++
		return key.(string) + "!", nil
	}

	v, err := c.GetOrLoad("k", loader)
	require.NoError(t, err)
	assert.Equal(t, "k!", v)

	v, err = c.GetOrLoad("k", loader)
	require.NoError(t, err)
	assert.Equal(t, "k!", v)
	assert.Equal(t, 1, loads)

	changed, hit, miss := c.Stats().Stats()
	assert.True(t, changed)
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)

	changed, _, _ = c.Stats().Stats()
	assert.False(t, changed)

	errLoad := errors.New("boom")
	_, err = c.GetOrLoad("x", func(any) (any, error) { return nil, errLoad })
	assert.ErrorIs(t, err, errLoad)
	assert.False(t, c.Contains("x"))
}
