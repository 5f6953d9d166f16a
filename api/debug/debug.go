// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package debug exposes clock control and token minting for solo networks.
package debug

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/snailbrook/staking/api"
	"github.com/snailbrook/staking/api/restutil"
	"github.com/snailbrook/staking/log"
	"github.com/snailbrook/staking/staking"
)

var logger = log.WithContext("pkg", "debug")

type Debug struct {
	engine *staking.Engine
	clock  *staking.ManualClock
}

func New(engine *staking.Engine, clock *staking.ManualClock) *Debug {
	return &Debug{engine, clock}
}

func (d *Debug) handleGetClock(w http.ResponseWriter, _ *http.Request) error {
	return restutil.WriteJSON(w, &Clock{Now: d.clock.Now()})
}

func (d *Debug) handleSetClock(w http.ResponseWriter, req *http.Request) error {
	var body ClockRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}

	switch {
	case body.Now != nil && body.Advance != nil:
		return restutil.BadRequest(errors.New("body: now and advance are exclusive"))
	case body.Now != nil:
		if err := d.clock.Set(*body.Now); err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "now"))
		}
	case body.Advance != nil:
		d.clock.Advance(*body.Advance)
	default:
		return restutil.BadRequest(errors.New("body: now or advance required"))
	}

	now := d.clock.Now()
	logger.Debug("clock moved", "now", now)
	return restutil.WriteJSON(w, &Clock{Now: now})
}

func (d *Debug) handleMint(w http.ResponseWriter, req *http.Request) error {
	var body MintRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return restutil.BadRequest(errors.New("body: amount required"))
	}
	if err := d.engine.Mint(body.To, api.Int(body.Amount)); err != nil {
		return err
	}
	balance, err := d.engine.BalanceOf(body.To)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &api.Amount{Amount: api.Hex(balance)})
}

func (d *Debug) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/clock").
		Methods(http.MethodGet).
		Name("GET /debug/clock").
		HandlerFunc(restutil.WrapHandlerFunc(d.handleGetClock))
	sub.Path("/clock").
		Methods(http.MethodPost).
		Name("POST /debug/clock").
		HandlerFunc(restutil.WrapHandlerFunc(d.handleSetClock))
	sub.Path("/mint").
		Methods(http.MethodPost).
		Name("POST /debug/mint").
		HandlerFunc(restutil.WrapHandlerFunc(d.handleMint))
}
