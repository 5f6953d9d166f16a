// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/snailbrook/staking/api"
	"github.com/snailbrook/staking/api/restutil"
	"github.com/snailbrook/staking/staking"
)

// Stakers serves per address stake views, token approvals and the deposit and withdraw operations.
// The address in the path acts as the caller.
type Stakers struct {
	engine *staking.Engine
}

func New(engine *staking.Engine) *Stakers {
	return &Stakers{engine}
}

func (s *Stakers) handleGetStakes(w http.ResponseWriter, req *http.Request) error {
	owner, err := restutil.AddressVar(req, "address")
	if err != nil {
		return err
	}
	infos, err := s.engine.StakerStakes(owner)
	if err != nil {
		return err
	}
	stakes := make([]*api.Stake, 0, len(infos))
	for _, info := range infos {
		stakes = append(stakes, api.ConvertStake(info))
	}
	return restutil.WriteJSON(w, stakes)
}

func (s *Stakers) handleGetStake(w http.ResponseWriter, req *http.Request) error {
	owner, err := restutil.AddressVar(req, "address")
	if err != nil {
		return err
	}
	id, err := restutil.Uint64Var(req, "id")
	if err != nil {
		return err
	}
	info, err := s.engine.StakerStake(owner, id)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, api.ConvertStake(info))
}

func (s *Stakers) handleGetRewards(w http.ResponseWriter, req *http.Request) error {
	owner, err := restutil.AddressVar(req, "address")
	if err != nil {
		return err
	}
	rewards, err := s.engine.RewardsForAllStakes(owner)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &api.Amount{Amount: api.Hex(rewards)})
}

func (s *Stakers) handleGetPoints(w http.ResponseWriter, req *http.Request) error {
	owner, err := restutil.AddressVar(req, "address")
	if err != nil {
		return err
	}
	points, err := s.engine.TotalPointsForStaker(owner)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &api.Amount{Amount: api.Hex(points)})
}

func (s *Stakers) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	owner, err := restutil.AddressVar(req, "address")
	if err != nil {
		return err
	}
	balance, err := s.engine.BalanceOf(owner)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &api.Amount{Amount: api.Hex(balance)})
}

func (s *Stakers) handleGetAllowance(w http.ResponseWriter, req *http.Request) error {
	owner, err := restutil.AddressVar(req, "address")
	if err != nil {
		return err
	}
	spender, err := restutil.AddressVar(req, "spender")
	if err != nil {
		return err
	}
	allowance, err := s.engine.Allowance(owner, spender)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &api.Amount{Amount: api.Hex(allowance)})
}

func (s *Stakers) handleApprove(w http.ResponseWriter, req *http.Request) error {
	owner, err := restutil.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var body api.ApprovalRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return restutil.BadRequest(errors.New("body: amount required"))
	}
	if body.Spender.IsZero() {
		return restutil.BadRequest(errors.New("body: spender required"))
	}
	if err := s.engine.Approve(owner, body.Spender, api.Int(body.Amount)); err != nil {
		return err
	}
	allowance, err := s.engine.Allowance(owner, body.Spender)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &api.Amount{Amount: api.Hex(allowance)})
}

func (s *Stakers) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	owner, err := restutil.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var body api.DepositRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return restutil.BadRequest(errors.New("body: amount required"))
	}
	id, err := s.engine.Deposit(owner, body.PoolID, api.Int(body.Amount))
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &api.DepositResult{StakeID: id})
}

func (s *Stakers) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	owner, err := restutil.AddressVar(req, "address")
	if err != nil {
		return err
	}
	id, err := restutil.Uint64Var(req, "id")
	if err != nil {
		return err
	}
	amount, rewards, err := s.engine.Withdraw(owner, id)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &api.WithdrawResult{
		Amount:  api.Hex(amount),
		Rewards: api.Hex(rewards),
	})
}

func (s *Stakers) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}/stakes").
		Methods(http.MethodGet).
		Name("GET /stakers/{address}/stakes").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetStakes))
	sub.Path("/{address}/stakes").
		Methods(http.MethodPost).
		Name("POST /stakers/{address}/stakes").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleDeposit))
	sub.Path("/{address}/stakes/{id}").
		Methods(http.MethodGet).
		Name("GET /stakers/{address}/stakes/{id}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetStake))
	sub.Path("/{address}/stakes/{id}/withdraw").
		Methods(http.MethodPost).
		Name("POST /stakers/{address}/stakes/{id}/withdraw").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleWithdraw))
	sub.Path("/{address}/approvals").
		Methods(http.MethodPost).
		Name("POST /stakers/{address}/approvals").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleApprove))
	sub.Path("/{address}/approvals/{spender}").
		Methods(http.MethodGet).
		Name("GET /stakers/{address}/approvals/{spender}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetAllowance))
	sub.Path("/{address}/rewards").
		Methods(http.MethodGet).
		Name("GET /stakers/{address}/rewards").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetRewards))
	sub.Path("/{address}/points").
		Methods(http.MethodGet).
		Name("GET /stakers/{address}/points").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetPoints))
	sub.Path("/{address}/balance").
		Methods(http.MethodGet).
		Name("GET /stakers/{address}/balance").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetBalance))
}
