// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import "github.com/snailbrook/staking/metrics"

var (
	metricCommittedSlots = metrics.LazyLoadCounterVec("state_committed_slots_count", []string{"type"})
	metricCacheLookups   = metrics.LazyLoadGaugeVec("state_cache_lookups", []string{"type"})
)
