// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blinklabs-io/daoledger/governance"
	"github.com/blinklabs-io/daoledger/types"
)

func caller(c *gin.Context) types.Account {
	return c.MustGet(callerKey).(types.Account)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{IsHealthy: true})
}

func (s *Server) handleListProposals(c *gin.Context) {
	var query listProposalsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		s.writeError(c, errBadRequest(err.Error()))
		return
	}
	ctx := c.Request.Context()
	proposals, count, err := s.config.Engine.ListProposals(ctx, query.Start, query.Limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	now := s.config.Engine.Now()
	ret := ProposalListResponse{
		Count:     count,
		Proposals: make([]ProposalResponse, 0, len(proposals)),
	}
	for _, p := range proposals {
		ret.Proposals = append(ret.Proposals, proposalResponse(p, now))
	}
	c.JSON(http.StatusOK, ret)
}

func (s *Server) handleCreateProposal(c *gin.Context) {
	var req CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, errBadRequest(err.Error()))
		return
	}
	index, err := s.config.Engine.CreateProposal(
		c.Request.Context(),
		caller(c),
		types.ItemId(*req.Item),
	)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreateProposalResponse{Index: index})
}

func (s *Server) handleGetProposal(c *gin.Context) {
	var uri indexUri
	if err := c.ShouldBindUri(&uri); err != nil {
		s.writeError(c, errBadRequest(err.Error()))
		return
	}
	proposal, err := s.config.Engine.GetProposal(c.Request.Context(), uri.Index)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, proposalResponse(proposal, s.config.Engine.Now()))
}

func (s *Server) handleGetVotes(c *gin.Context) {
	var uri indexUri
	if err := c.ShouldBindUri(&uri); err != nil {
		s.writeError(c, errBadRequest(err.Error()))
		return
	}
	votes, err := s.config.Engine.GetVotes(c.Request.Context(), uri.Index)
	if err != nil {
		s.writeError(c, err)
		return
	}
	ret := make([]VoteRecordResponse, 0, len(votes))
	for _, vote := range votes {
		ret = append(
			ret,
			VoteRecordResponse{
				Unit:   uint64(vote.Unit),
				Choice: vote.Choice.String(),
			},
		)
	}
	c.JSON(http.StatusOK, ret)
}

func (s *Server) handleVote(c *gin.Context) {
	var uri indexUri
	if err := c.ShouldBindUri(&uri); err != nil {
		s.writeError(c, errBadRequest(err.Error()))
		return
	}
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, errBadRequest(err.Error()))
		return
	}
	choice, err := governance.ParseChoice(req.Choice)
	if err != nil {
		s.writeError(c, err)
		return
	}
	weight, err := s.config.Engine.VoteOnProposal(
		c.Request.Context(),
		caller(c),
		uri.Index,
		choice,
	)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, VoteResponse{Choice: choice.String(), Weight: weight})
}

func (s *Server) handleExecute(c *gin.Context) {
	var uri indexUri
	if err := c.ShouldBindUri(&uri); err != nil {
		s.writeError(c, errBadRequest(err.Error()))
		return
	}
	proposal, err := s.config.Engine.ExecuteProposal(
		c.Request.Context(),
		caller(c),
		uri.Index,
	)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, proposalResponse(proposal, s.config.Engine.Now()))
}

func (s *Server) handleTreasuryBalance(c *gin.Context) {
	balance, err := s.config.Engine.TreasuryBalance(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, BalanceResponse{Balance: balance})
}

func (s *Server) handleTreasuryHistory(c *gin.Context) {
	var query historyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		s.writeError(c, errBadRequest(err.Error()))
		return
	}
	entries, err := s.config.Engine.TreasuryHistory(c.Request.Context(), query.Limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	ret := make([]TreasuryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		ret = append(
			ret,
			TreasuryEntryResponse{
				Timestamp:     entry.Timestamp.UTC(),
				ProposalIndex: entry.ProposalIndex,
				Kind:          entry.Kind,
				Data:          entry.Data,
				Amount:        entry.Amount,
				Balance:       entry.Balance,
				Account:       entry.Account,
			},
		)
	}
	c.JSON(http.StatusOK, ret)
}

func (s *Server) handleDeposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, errBadRequest(err.Error()))
		return
	}
	balance, err := s.config.Engine.Deposit(
		c.Request.Context(),
		caller(c),
		mustParseAmount(req.Amount),
		req.Data,
	)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, BalanceResponse{Balance: balance})
}

func (s *Server) handleWithdraw(c *gin.Context) {
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, errBadRequest(err.Error()))
		return
	}
	var amount types.Amount
	if req.Amount != "" {
		amount = mustParseAmount(req.Amount)
	}
	withdrawn, err := s.config.Engine.Withdraw(
		c.Request.Context(),
		caller(c),
		amount,
	)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, WithdrawResponse{Withdrawn: withdrawn})
}
