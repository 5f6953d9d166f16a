// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package period

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/snailbrook/staking/api"
	"github.com/snailbrook/staking/api/restutil"
	"github.com/snailbrook/staking/snail"
	"github.com/snailbrook/staking/staking"
)

type Period struct {
	engine *staking.Engine
}

func New(engine *staking.Engine) *Period {
	return &Period{engine}
}

func (p *Period) handleGetPeriod(w http.ResponseWriter, _ *http.Request) error {
	period, err := p.engine.Period()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, api.ConvertPeriod(period))
}

func (p *Period) handleSetPeriod(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Caller snail.Address `json:"caller"`
		Start  uint64        `json:"start"`
		End    uint64        `json:"end"`
	}
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := p.engine.SetStakingPeriod(body.Caller, body.Start, body.End); err != nil {
		return err
	}
	return p.handleGetPeriod(w, req)
}

func (p *Period) handleGetSummary(w http.ResponseWriter, _ *http.Request) error {
	period, err := p.engine.Period()
	if err != nil {
		return err
	}
	count, err := p.engine.PoolCount()
	if err != nil {
		return err
	}
	staked, err := p.engine.TotalStaked()
	if err != nil {
		return err
	}
	owner, err := p.engine.RegistryOwner()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{
		"period":      api.ConvertPeriod(period),
		"now":         p.engine.Now(),
		"poolCount":   count,
		"totalStaked": api.Hex(staked),
		"owner":       owner,
	})
}

func (p *Period) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /period").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetPeriod))
	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /period").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleSetPeriod))
	sub.Path("/summary").
		Methods(http.MethodGet).
		Name("GET /period/summary").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetSummary))
}
