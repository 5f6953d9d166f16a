// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/snailbrook/staking/api"
	"github.com/snailbrook/staking/api/restutil"
	"github.com/snailbrook/staking/log"
	"github.com/snailbrook/staking/staking"
	"github.com/snailbrook/staking/staking/ledger"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 7) / 10
	// Events buffered per connection before the feed stalls.
	chanSize = 256
)

type Subscriptions struct {
	engine       *staking.Engine
	backlogLimit uint64
	upgrader     *websocket.Upgrader
	done         chan struct{}
	wg           sync.WaitGroup
}

// New creates the event stream endpoint. A client may replay at most backlogLimit past events.
func New(engine *staking.Engine, allowedOrigins []string, backlogLimit uint64) *Subscriptions {
	return &Subscriptions{
		engine:       engine,
		backlogLimit: backlogLimit,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || strings.EqualFold(allowed, origin) {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	s.wg.Add(1)
	defer s.wg.Done()

	ch := make(chan *ledger.Event, chanSize)
	sub := s.engine.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	count, err := s.engine.EventCount()
	if err != nil {
		return err
	}
	from, err := restutil.Uint64Query(req, "from", count)
	if err != nil {
		return err
	}
	if from > count {
		from = count
	}
	if count-from > s.backlogLimit {
		return restutil.Forbidden(fmt.Errorf("from: backlog exceeds the maximum allowed value of %d", s.backlogLimit))
	}
	var backlog []*ledger.Event
	if count > from {
		if backlog, err = s.engine.Events(from, count-from); err != nil {
			return err
		}
	}

	conn, err := s.upgrader.Upgrade(w, req, nil)
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}
	defer conn.Close()

	if err := s.pipe(conn, backlog, from+uint64(len(backlog)), ch, sub.Err()); err != nil {
		logger.Debug("websocket closed", "remote", req.RemoteAddr, "err", err)
	}
	return nil
}

func (s *Subscriptions) pipe(conn *websocket.Conn, backlog []*ledger.Event, next uint64, ch <-chan *ledger.Event, subErr <-chan error) error {
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(ev *ledger.Event) error {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		return conn.WriteJSON(api.ConvertEvent(ev))
	}

	for _, ev := range backlog {
		if err := write(ev); err != nil {
			return err
		}
	}

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-s.done:
			return conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "service closed"),
				time.Now().Add(writeWait))
		case <-closed:
			return nil
		case err := <-subErr:
			// closed when the engine shuts down
			if err != nil {
				return err
			}
			return conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "engine closed"),
				time.Now().Add(writeWait))
		case ev := <-ch:
			// already sent as backlog
			if ev.Seq < next {
				continue
			}
			if ev.Seq > next {
				// batches dropped by the engine outbox are read back from the audit trail
				missed, err := s.engine.Events(next, ev.Seq-next)
				if err != nil {
					return err
				}
				logger.Debug("replaying missed events", "from", next, "count", len(missed))
				for _, m := range missed {
					if err := write(m); err != nil {
						return err
					}
				}
			}
			next = ev.Seq + 1
			if err := write(ev); err != nil {
				return err
			}
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

// Close terminates open streams and waits for their handlers to return.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodGet).
		Name("WS /subscriptions/events").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubscribeEvents))
}
