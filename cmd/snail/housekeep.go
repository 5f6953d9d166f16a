// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/robfig/cron/v3"

	"github.com/snailbrook/staking/log"
	"github.com/snailbrook/staking/staking"
)

// maxClockOffset is the drift beyond which accrual timestamps are considered unreliable.
const maxClockOffset = 5 * time.Second

func checkClockOffset() {
	resp, err := ntp.Query("pool.ntp.org")
	if err != nil {
		log.Debug("failed to access NTP", "err", err)
		return
	}
	offset := resp.ClockOffset
	if offset < 0 {
		offset = -offset
	}
	if offset > maxClockOffset {
		log.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	log.Debug(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	log.Warn(msg, append(keysAndValues, "err", err)...)
}

// startGaugeRefresher keeps the pool gauges current between operations.
func startGaugeRefresher(engine *staking.Engine, schedule string) (func(), error) {
	logger := cronLogger{}
	c := cron.New(cron.WithChain(cron.Recover(logger)), cron.WithLogger(logger))
	if _, err := c.AddFunc(schedule, func() {
		if err := engine.RefreshGauges(); err != nil {
			log.Warn("failed to refresh gauges", "err", err)
		}
	}); err != nil {
		return nil, err
	}
	c.Start()
	return func() {
		<-c.Stop().Done()
	}, nil
}
