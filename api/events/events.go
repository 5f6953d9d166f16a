// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/snailbrook/staking/api"
	"github.com/snailbrook/staking/api/restutil"
	"github.com/snailbrook/staking/staking"
)

type Events struct {
	engine *staking.Engine
	limit  uint64
}

// New creates the audit trail endpoint serving at most limit events per request.
func New(engine *staking.Engine, limit uint64) *Events {
	return &Events{
		engine,
		limit,
	}
}

func (e *Events) handleGetEvents(w http.ResponseWriter, req *http.Request) error {
	from, err := restutil.Uint64Query(req, "from", 0)
	if err != nil {
		return err
	}
	limit, err := restutil.Uint64Query(req, "limit", e.limit)
	if err != nil {
		return err
	}
	if limit == 0 || limit > e.limit {
		return restutil.Forbidden(fmt.Errorf("limit must be between 1 and %d", e.limit))
	}

	evs, err := e.engine.Events(from, limit)
	if err != nil {
		return err
	}
	result := make([]*api.Event, 0, len(evs))
	for _, ev := range evs {
		result = append(result, api.ConvertEvent(ev))
	}
	return restutil.WriteJSON(w, result)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /events").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleGetEvents))
}
