// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snailbrook/staking/api"
	"github.com/snailbrook/staking/api/stakers"
	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/test/datagen"
	"github.com/snailbrook/staking/test/testengine"
)

func initStakersServer(t *testing.T) (*testengine.Engine, *httptest.Server) {
	te, err := testengine.New()
	require.NoError(t, err)
	t.Cleanup(te.Close)

	router := mux.NewRouter()
	stakers.New(te.Engine).Mount(router, "/stakers")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return te, ts
}

func httpGet(t *testing.T, url string, v any) int {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	if v != nil && res.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(res.Body).Decode(v))
	}
	return res.StatusCode
}

func httpPost(t *testing.T, url string, obj any, v any) (int, string) {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if v != nil && res.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(body, v))
	}
	return res.StatusCode, res.Header.Get("X-Revert-Kind")
}

func TestDepositAndWithdraw(t *testing.T) {
	te, ts := initStakersServer(t)
	staker := te.Staker(0)
	base := ts.URL + "/stakers/" + staker.String()

	var deposited api.DepositResult
	code, _ := httpPost(t, base+"/stakes", api.DepositRequest{PoolID: 0, Amount: api.Hex(snail.Tokens(100))}, &deposited)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, uint64(0), deposited.StakeID)

	var stake api.Stake
	require.Equal(t, http.StatusOK, httpGet(t, base+"/stakes/0", &stake))
	assert.Equal(t, staker, stake.Owner)
	assert.Equal(t, "deposited", stake.Status)
	assert.Equal(t, testengine.LaunchTime, stake.Timestamp)
	assert.Equal(t, snail.Tokens(100), api.Int(stake.Amount))
	assert.Zero(t, api.Int(stake.Rewards).Sign())
	// floor(100e18 / 1000) * 110 / 100
	assert.Equal(t, big.NewInt(11e16).String(), api.Int(stake.Points).String())

	code, kind := httpPost(t, base+"/stakes/0/withdraw", nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "TooEarly", kind)

	te.Clock.Advance(snail.SecondsPerDay)
	// sole staker over one day of a thirty day period: 10000 tokens / 30
	want, _ := new(big.Int).SetString("333333333333333333333", 10)

	var rewards api.Amount
	require.Equal(t, http.StatusOK, httpGet(t, base+"/rewards", &rewards))
	assert.Equal(t, want.String(), api.Int(rewards.Amount).String())

	var withdrawn api.WithdrawResult
	code, _ = httpPost(t, base+"/stakes/0/withdraw", nil, &withdrawn)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, snail.Tokens(100), api.Int(withdrawn.Amount))
	assert.Equal(t, want.String(), api.Int(withdrawn.Rewards).String())

	var stakes []*api.Stake
	require.Equal(t, http.StatusOK, httpGet(t, base+"/stakes", &stakes))
	require.Len(t, stakes, 1)
	assert.Equal(t, "withdrawn", stakes[0].Status)

	var points api.Amount
	require.Equal(t, http.StatusOK, httpGet(t, base+"/points", &points))
	assert.Zero(t, api.Int(points.Amount).Sign())

	var balance api.Amount
	require.Equal(t, http.StatusOK, httpGet(t, base+"/balance", &balance))
	assert.Equal(t, new(big.Int).Add(snail.Tokens(1_000_000), want).String(), api.Int(balance.Amount).String())

	code, kind = httpPost(t, base+"/stakes/0/withdraw", nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "AlreadyWithdrawn", kind)
}

func TestStakersErrors(t *testing.T) {
	te, ts := initStakersServer(t)
	base := ts.URL + "/stakers/" + te.Staker(1).String()

	assert.Equal(t, http.StatusNotFound, httpGet(t, base+"/stakes/5", nil))
	assert.Equal(t, http.StatusBadRequest, httpGet(t, ts.URL+"/stakers/0xzz/stakes", nil))

	code, kind := httpPost(t, base+"/stakes", api.DepositRequest{PoolID: 9, Amount: api.Hex(snail.Tokens(1))}, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "PoolNotFound", kind)

	code, _ = httpPost(t, base+"/stakes", api.DepositRequest{PoolID: 0}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = httpPost(t, base+"/stakes", map[string]any{"poolId": 0, "amount": "1", "extra": true}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, kind = httpPost(t, base+"/stakes", api.DepositRequest{PoolID: 0, Amount: api.Hex(new(big.Int))}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ZeroAmount", kind)

	stranger := ts.URL + "/stakers/" + datagen.RandAddress().String()
	code, kind = httpPost(t, stranger+"/stakes", api.DepositRequest{PoolID: 0, Amount: api.Hex(snail.Tokens(1))}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "InsufficientAllowance", kind)

	var stakes []*api.Stake
	require.Equal(t, http.StatusOK, httpGet(t, stranger+"/stakes", &stakes))
	assert.Empty(t, stakes)
}

func TestApprovals(t *testing.T) {
	te, ts := initStakersServer(t)
	holder := datagen.RandAddress()
	require.NoError(t, te.Mint(holder, snail.Tokens(500)))
	base := ts.URL + "/stakers/" + holder.String()
	allowanceURL := base + "/approvals/" + snail.StakeLedgerAccount.String()

	var allowance api.Amount
	require.Equal(t, http.StatusOK, httpGet(t, allowanceURL, &allowance))
	assert.Zero(t, api.Int(allowance.Amount).Sign())

	code, kind := httpPost(t, base+"/stakes", api.DepositRequest{PoolID: 0, Amount: api.Hex(snail.Tokens(100))}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "InsufficientAllowance", kind)

	code, _ = httpPost(t, base+"/approvals", api.ApprovalRequest{
		Spender: snail.StakeLedgerAccount,
		Amount:  api.Hex(snail.Tokens(300)),
	}, &allowance)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, snail.Tokens(300), api.Int(allowance.Amount))

	var deposited api.DepositResult
	code, _ = httpPost(t, base+"/stakes", api.DepositRequest{PoolID: 0, Amount: api.Hex(snail.Tokens(100))}, &deposited)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, uint64(0), deposited.StakeID)

	require.Equal(t, http.StatusOK, httpGet(t, allowanceURL, &allowance))
	assert.Equal(t, snail.Tokens(200), api.Int(allowance.Amount))

	t.Run("bad requests", func(t *testing.T) {
		code, _ := httpPost(t, base+"/approvals", api.ApprovalRequest{Spender: snail.StakeLedgerAccount}, nil)
		assert.Equal(t, http.StatusBadRequest, code)
		code, _ = httpPost(t, base+"/approvals", api.ApprovalRequest{Amount: api.Hex(snail.Tokens(1))}, nil)
		assert.Equal(t, http.StatusBadRequest, code)
		code, kind := httpPost(t, base+"/approvals", map[string]any{
			"spender": snail.StakeLedgerAccount.String(),
			"amount":  "-1",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "InsufficientAllowance", kind)
		assert.Equal(t, http.StatusBadRequest, httpGet(t, base+"/approvals/0xzz", nil))
	})
}
