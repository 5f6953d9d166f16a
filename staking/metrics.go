// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import "github.com/snailbrook/staking/metrics"

var (
	metricOpCount         = metrics.LazyLoadCounterVec("engine_op_count", []string{"op", "result"})
	metricOpDuration      = metrics.LazyLoadHistogramVec("engine_op_duration_ms", []string{"op"}, metrics.BucketHTTPReqs)
	metricEventCount      = metrics.LazyLoadCounterVec("engine_event_count", []string{"kind"})
	metricPoolStaked      = metrics.LazyLoadGaugeVec("pool_staked_tokens", []string{"pool"})
	metricPoolAPY         = metrics.LazyLoadGaugeVec("pool_apy_percent", []string{"pool"})
	metricPoolUnclaimed   = metrics.LazyLoadGaugeVec("pool_unclaimed_reward_tokens", []string{"pool"})
	metricTotalStaked     = metrics.LazyLoadGauge("total_staked_tokens")
	metricSubscriberCount = metrics.LazyLoadGauge("event_subscriber_count")
)
