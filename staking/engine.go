// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking composes the registry, reward pot, stake ledger and points calculator
// into an engine that runs every operation atomically against one clock.
package staking

import (
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"

	"github.com/snailbrook/staking/co"
	"github.com/snailbrook/staking/kv"
	"github.com/snailbrook/staking/log"
	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/staking/configurator"
	"github.com/snailbrook/staking/staking/ledger"
	"github.com/snailbrook/staking/staking/points"
	"github.com/snailbrook/staking/staking/reverts"
	"github.com/snailbrook/staking/staking/rewardpot"
	"github.com/snailbrook/staking/state"
	"github.com/snailbrook/staking/storage"
	"github.com/snailbrook/staking/token"
)

var logger = log.WithContext("pkg", "staking")

var (
	// RegistryAccount keeps the period and pool catalog.
	RegistryAccount = snail.BytesToAddress([]byte("snail-registry"))
	// PointsAccount keeps pool multipliers.
	PointsAccount = snail.BytesToAddress([]byte("snail-points"))
)

// Options tunes an Engine.
type Options struct {
	CacheSize   int // committed slots kept in memory
	EventBuffer int // event batches queued for subscribers
}

// Engine serialises mutating operations behind a single writer lock. Each operation reads the
// clock once, runs inside a state checkpoint and is either committed to the store in one batch
// or reverted entirely. Queries observe the last committed operation.
//
// The lock is not re-entrant: a token ledger invoked by the engine must not call back into it.
type Engine struct {
	lock  sync.RWMutex
	st    *state.State
	clock Clock

	token    *token.Token
	registry *configurator.Service
	pot      *rewardpot.Service
	ledger   *ledger.Service
	points   *points.Service

	feed   event.Feed
	scope  event.SubscriptionScope
	outbox chan []*ledger.Event
	done   chan struct{}
	goes   co.Goes
	once   sync.Once
}

// New creates an engine over the store, resuming any state already committed to it.
func New(db kv.Store, clock Clock, opts Options) (*Engine, error) {
	st, err := state.New(db, opts.CacheSize)
	if err != nil {
		return nil, err
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 256
	}

	tok := token.New(st)
	registry := configurator.New(storage.NewContext(RegistryAccount, st))
	pot := rewardpot.New(storage.NewContext(snail.RewardPotAccount, st), registry, tok)
	stakes := ledger.New(storage.NewContext(snail.StakeLedgerAccount, st), registry, pot, tok)

	e := &Engine{
		st:       st,
		clock:    clock,
		token:    tok,
		registry: registry,
		pot:      pot,
		ledger:   stakes,
		points:   points.New(storage.NewContext(PointsAccount, st), stakes),
		outbox:   make(chan []*ledger.Event, opts.EventBuffer),
		done:     make(chan struct{}),
	}
	e.goes.Loop(e.done, e.dispatchLoop)
	return e, nil
}

// Close stops event delivery and ends all subscriptions.
func (e *Engine) Close() {
	e.once.Do(func() {
		close(e.done)
		e.goes.Wait()
		e.scope.Close()
		logger.Debug("engine closed")
	})
}

// Now returns the engine clock.
func (e *Engine) Now() uint64 {
	return e.clock.Now()
}

// SubscribeEvents delivers Deposited and Withdrawn events of committed operations, in order.
// Delivery is best effort: subscribers that fall behind stall the feed until the outbox overflows,
// after which batches are skipped. The audit trail returned by Events is complete.
func (e *Engine) SubscribeEvents(ch chan *ledger.Event) event.Subscription {
	sub := e.scope.Track(e.feed.Subscribe(ch))
	metricSubscriberCount().Set(int64(e.scope.Count()))
	return sub
}

func (e *Engine) dispatchLoop(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case evs := <-e.outbox:
			for _, ev := range evs {
				e.feed.Send(ev)
			}
		}
	}
}

// mutate runs fn atomically. On error every state change made by fn is discarded.
func (e *Engine) mutate(op string, fn func(now uint64) error) (err error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	start := time.Now()
	now := e.clock.Now()
	defer func() {
		result := "ok"
		if kind, ok := reverts.KindOf(err); ok {
			result = string(kind)
		} else if err != nil {
			result = "error"
		}
		metricOpCount().AddWithLabel(1, map[string]string{"op": op, "result": result})
		metricOpDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"op": op})
	}()

	rev := e.st.NewCheckpoint()
	if err = fn(now); err != nil {
		e.st.RevertTo(rev)
		e.ledger.TakeEvents()
		if !reverts.IsRevertErr(err) {
			logger.Warn("operation failed", "op", op, "err", err)
		}
		return err
	}
	if _, err = e.st.Commit(); err != nil {
		e.ledger.TakeEvents()
		logger.Error("failed to commit operation", "op", op, "err", err)
		return err
	}

	if evs := e.ledger.TakeEvents(); len(evs) > 0 {
		for _, ev := range evs {
			metricEventCount().AddWithLabel(1, map[string]string{"kind": ev.Kind.String()})
		}
		select {
		case e.outbox <- evs:
		default:
			logger.Warn("event outbox full, live delivery skipped", "op", op, "from", evs[0].Seq, "count", len(evs))
		}
	}
	logger.Trace("operation committed", "op", op, "now", now)
	return nil
}

// view runs fn under the read lock against the last committed state.
func view[T any](e *Engine, fn func(now uint64) (T, error)) (T, error) {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return fn(e.clock.Now())
}

// RefreshGauges publishes per pool totals, unclaimed rewards and APY.
func (e *Engine) RefreshGauges() error {
	pools, err := e.Pools()
	if err != nil {
		return err
	}
	total, err := e.TotalStaked()
	if err != nil {
		return err
	}
	metricTotalStaked().Set(wholeTokens(total))
	for _, p := range pools {
		labels := map[string]string{"pool": strconv.FormatUint(p.ID, 10)}
		metricPoolStaked().SetWithLabel(wholeTokens(p.TotalStaked), labels)
		metricPoolUnclaimed().SetWithLabel(wholeTokens(p.Rewards.Available()), labels)
		if p.APY.IsInt64() {
			metricPoolAPY().SetWithLabel(p.APY.Int64(), labels)
		}
	}
	metricSubscriberCount().Set(int64(e.scope.Count()))
	return nil
}
