// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/snailbrook/staking/api"
	"github.com/snailbrook/staking/api/restutil"
	"github.com/snailbrook/staking/staking"
)

type Pools struct {
	engine *staking.Engine
}

func New(engine *staking.Engine) *Pools {
	return &Pools{engine}
}

func (p *Pools) handleGetPools(w http.ResponseWriter, _ *http.Request) error {
	infos, err := p.engine.Pools()
	if err != nil {
		return err
	}
	pools := make([]*api.Pool, 0, len(infos))
	for _, info := range infos {
		pools = append(pools, api.ConvertPool(info))
	}
	return restutil.WriteJSON(w, pools)
}

func (p *Pools) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	id, err := restutil.Uint64Var(req, "id")
	if err != nil {
		return err
	}
	info, err := p.engine.Pool(id)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, api.ConvertPool(info))
}

func (p *Pools) handleGetCheckpoints(w http.ResponseWriter, req *http.Request) error {
	id, err := restutil.Uint64Var(req, "id")
	if err != nil {
		return err
	}
	cps, err := p.engine.Checkpoints(id)
	if err != nil {
		return err
	}
	result := make([]*api.Checkpoint, 0, len(cps))
	for _, cp := range cps {
		result = append(result, &api.Checkpoint{Timestamp: cp.Timestamp, TotalStaked: api.Hex(cp.TotalStaked)})
	}
	return restutil.WriteJSON(w, result)
}

func (p *Pools) handleDepositRewards(w http.ResponseWriter, req *http.Request) error {
	id, err := restutil.Uint64Var(req, "id")
	if err != nil {
		return err
	}
	var body api.RewardsRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return restutil.BadRequest(errors.New("body: amount required"))
	}
	if err := p.engine.DepositRewards(body.Caller, body.Caller, id, api.Int(body.Amount)); err != nil {
		return err
	}
	pot, err := p.engine.PoolRewards(id)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{
		"totalRewards":   api.Hex(pot.Total),
		"claimedRewards": api.Hex(pot.Claimed),
	})
}

func (p *Pools) handleSetMultiplier(w http.ResponseWriter, req *http.Request) error {
	id, err := restutil.Uint64Var(req, "id")
	if err != nil {
		return err
	}
	var body api.MultiplierRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := p.engine.SetPoolMultiplier(body.Caller, id, body.Value); err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"multiplier": body.Value})
}

func (p *Pools) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /pools").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetPools))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /pools/{id}").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/{id}/checkpoints").
		Methods(http.MethodGet).
		Name("GET /pools/{id}/checkpoints").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetCheckpoints))
	sub.Path("/{id}/rewards").
		Methods(http.MethodPost).
		Name("POST /pools/{id}/rewards").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleDepositRewards))
	sub.Path("/{id}/multiplier").
		Methods(http.MethodPost).
		Name("POST /pools/{id}/multiplier").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleSetMultiplier))
}
