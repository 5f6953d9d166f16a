// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoes(t *testing.T) {
	var (
		goes Goes
		n    atomic.Int32
	)
	for range 10 {
		goes.Go(func() { n.Add(1) })
	}
	goes.Wait()
	assert.Equal(t, int32(10), n.Load())
}

func TestGoesLoop(t *testing.T) {
	var goes Goes
	done := make(chan struct{})
	ticks := make(chan int)

	goes.Loop(done, func(done <-chan struct{}) {
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			case ticks <- i:
			}
		}
	})

	assert.Equal(t, 0, <-ticks)
	assert.Equal(t, 1, <-ticks)
	close(done)
	goes.Wait()
}
