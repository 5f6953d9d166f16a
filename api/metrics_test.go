// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snailbrook/staking/metrics"
)

func init() {
	metrics.InitializePrometheusMetrics()
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func TestMetricsMiddleware(t *testing.T) {
	router := mux.NewRouter()
	router.Path("/pools/{id}").
		Methods(http.MethodGet).
		Name("GET /pools/{id}").
		HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if mux.Vars(r)["id"] != "0" {
				w.WriteHeader(http.StatusNotFound)
			}
		})
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	router.Use(MetricsMiddleware)
	ts := httptest.NewServer(router)
	defer ts.Close()

	_, code := httpGet(t, ts.URL+"/pools/0")
	assert.Equal(t, http.StatusOK, code)
	_, code = httpGet(t, ts.URL+"/pools/0")
	assert.Equal(t, http.StatusOK, code)
	_, code = httpGet(t, ts.URL+"/pools/7")
	assert.Equal(t, http.StatusNotFound, code)

	body, _ := httpGet(t, ts.URL+"/metrics")
	parser := expfmt.TextParser{}
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	require.NoError(t, err)

	m := families["snail_api_request_count"].GetMetric()
	require.Len(t, m, 2, "one series per status code")

	counts := map[string]float64{}
	for _, series := range m {
		labels := seriesLabels(series)
		assert.Equal(t, "pools_id", labels["name"])
		assert.Equal(t, http.MethodGet, labels["method"])
		counts[labels["code"]] = series.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"200": 2, "404": 1}, counts)
}

func seriesLabels(series *dto.Metric) map[string]string {
	labels := make(map[string]string, len(series.GetLabel()))
	for _, l := range series.GetLabel() {
		labels[l.GetName()] = l.GetValue()
	}
	return labels
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "stakers_address_stakes_id_withdraw", routeLabel("POST /stakers/{address}/stakes/{id}/withdraw"))
	assert.Equal(t, "period", routeLabel("GET /period"))
	assert.Equal(t, "unknown", routeLabel("unknown"))
}
