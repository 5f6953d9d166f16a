// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	server := httptest.NewServer(HTTPHandler())
	t.Cleanup(server.Close)

	Counter("deposits").Add(1)
	CounterVec("reverts", []string{"kind"}).AddWithLabel(1, map[string]string{"kind": "nonsense"})
	Gauge("staked").Set(10)
	GaugeVec("pool_staked", []string{"pool"}).SetWithLabel(1, map[string]string{"pool": "0"})
	HistogramVec("op_ms", []string{"op"}, BucketHTTPReqs).ObserveWithLabels(3, map[string]string{"op": "x"})

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	deposits := LazyLoadCounter("test_deposits")
	deposits().Add(2)
	Counter("test_deposits").Add(1)

	poolStaked := LazyLoadGaugeVec("test_pool_staked", []string{"pool"})
	poolStaked().SetWithLabel(100, map[string]string{"pool": "0"})
	poolStaked().AddWithLabel(5, map[string]string{"pool": "0"})

	reverts := CounterVec("test_reverts", []string{"kind"})
	reverts.AddWithLabel(1, map[string]string{"kind": "too_early"})

	HistogramVec("test_op_ms", []string{"op"}, BucketHTTPReqs).
		ObserveWithLabels(12, map[string]string{"op": "deposit"})

	server := httptest.NewServer(HTTPHandler())
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "snail_test_deposits 3")
	assert.Contains(t, text, `snail_test_pool_staked{pool="0"} 105`)
	assert.Contains(t, text, `snail_test_reverts{kind="too_early"} 1`)
	assert.Contains(t, text, "snail_test_op_ms_bucket")
}
