// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package debug_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snailbrook/staking/api"
	"github.com/snailbrook/staking/api/debug"
	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/test/testengine"
)

func post(t *testing.T, url string, body any, out any) int {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil && res.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func TestClock(t *testing.T) {
	te, err := testengine.New()
	require.NoError(t, err)
	defer te.Close()

	router := mux.NewRouter()
	debug.New(te.Engine, te.Clock).Mount(router, "/debug")
	ts := httptest.NewServer(router)
	defer ts.Close()

	var clock debug.Clock
	assert.Equal(t, http.StatusOK, post(t, ts.URL+"/debug/clock", map[string]any{"advance": snail.SecondsPerDay}, &clock))
	assert.Equal(t, testengine.LaunchTime+snail.SecondsPerDay, clock.Now)
	assert.Equal(t, clock.Now, te.Now())

	target := testengine.LaunchTime + 7*snail.SecondsPerDay
	assert.Equal(t, http.StatusOK, post(t, ts.URL+"/debug/clock", map[string]any{"now": target}, &clock))
	assert.Equal(t, target, clock.Now)

	res, err := http.Get(ts.URL + "/debug/clock")
	require.NoError(t, err)
	defer res.Body.Close()
	require.NoError(t, json.NewDecoder(res.Body).Decode(&clock))
	assert.Equal(t, target, clock.Now)

	tests := []struct {
		name string
		body any
	}{
		{"backwards", map[string]any{"now": testengine.LaunchTime}},
		{"both", map[string]any{"now": target + 1, "advance": 1}},
		{"neither", map[string]any{}},
		{"unknown field", map[string]any{"rewind": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, post(t, ts.URL+"/debug/clock", tt.body, nil))
		})
	}
	assert.Equal(t, target, te.Now())
}

func TestMint(t *testing.T) {
	te, err := testengine.New()
	require.NoError(t, err)
	defer te.Close()

	router := mux.NewRouter()
	debug.New(te.Engine, te.Clock).Mount(router, "/debug")
	ts := httptest.NewServer(router)
	defer ts.Close()

	staker := te.Staker(0)
	var balance api.Amount
	code := post(t, ts.URL+"/debug/mint", &debug.MintRequest{To: staker, Amount: api.Hex(snail.Tokens(5))}, &balance)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, snail.Tokens(1_000_005), api.Int(balance.Amount))

	assert.Equal(t, http.StatusBadRequest, post(t, ts.URL+"/debug/mint", map[string]any{"to": staker}, nil))
}
