// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Clock supplies "now" in unix seconds. It must be monotonically non-decreasing.
type Clock interface {
	Now() uint64
}

// SystemClock reads the wall clock, never going backwards.
type SystemClock struct {
	lock sync.Mutex
	last uint64
}

func (c *SystemClock) Now() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	if now := uint64(time.Now().Unix()); now > c.last {
		c.last = now
	}
	return c.last
}

// ManualClock is advanced explicitly, for tests and solo mode.
type ManualClock struct {
	lock sync.Mutex
	now  uint64
}

func NewManualClock(now uint64) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

// Set moves the clock to now. Moving backwards is an error.
func (c *ManualClock) Set(now uint64) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if now < c.now {
		return errors.Errorf("clock cannot go backwards: %d < %d", now, c.now)
	}
	c.now = now
	return nil
}

// Advance moves the clock forward by d seconds and returns the new time.
func (c *ManualClock) Advance(d uint64) uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.now += d
	return c.now
}
