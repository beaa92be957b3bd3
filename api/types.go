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
	"time"

	"github.com/blinklabs-io/daoledger/governance"
	"github.com/blinklabs-io/daoledger/types"
)

type callerHeader struct {
	Account string `header:"X-Account" binding:"required,account"`
}

type indexUri struct {
	Index uint64 `uri:"index"`
}

type unitUri struct {
	Unit uint64 `uri:"unit"`
}

type itemUri struct {
	Item uint64 `uri:"item"`
}

type accountUri struct {
	Account string `uri:"account" binding:"required,account"`
}

type listProposalsQuery struct {
	Start uint64 `form:"start"`
	Limit int    `form:"limit" binding:"omitempty,min=0,max=1000"`
}

type historyQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=0,max=1000"`
}

type CreateProposalRequest struct {
	Item *uint64 `json:"item" binding:"required"`
}

type VoteRequest struct {
	Choice string `json:"choice" binding:"required,oneof=yay nay"`
}

type DepositRequest struct {
	Amount string `json:"amount" binding:"required,amount"`
	Data   []byte `json:"data"`
}

type WithdrawRequest struct {
	// Empty or zero withdraws the whole balance
	Amount string `json:"amount" binding:"omitempty,amount"`
}

type MintRequest struct {
	Value string `json:"value" binding:"required,amount"`
}

type TransferRequest struct {
	To string `json:"to" binding:"required,account"`
}

type TokenMintRequest struct {
	Amount uint64 `json:"amount" binding:"required,min=1"`
	Value  string `json:"value" binding:"required,amount"`
}

type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

type ProposalResponse struct {
	Created    time.Time     `json:"created"`
	Deadline   time.Time     `json:"deadline"`
	ExecutedAt *time.Time    `json:"executed_at,omitempty"`
	PricePaid  *types.Amount `json:"price_paid,omitempty"`
	State      string        `json:"state"`
	Outcome    string        `json:"outcome"`
	Index      uint64        `json:"index"`
	TargetItem uint64        `json:"target_item"`
	YayVotes   uint64        `json:"yay_votes"`
	NayVotes   uint64        `json:"nay_votes"`
	Proposer   types.Account `json:"proposer"`
	Executed   bool          `json:"executed"`
}

func proposalResponse(p governance.Proposal, now time.Time) ProposalResponse {
	ret := ProposalResponse{
		Created:    p.Created.UTC(),
		Deadline:   p.Deadline.UTC(),
		State:      p.State(now).String(),
		Outcome:    p.Outcome.String(),
		Index:      p.Index,
		TargetItem: uint64(p.TargetItem),
		YayVotes:   p.YayVotes,
		NayVotes:   p.NayVotes,
		Proposer:   p.Proposer,
		Executed:   p.Executed,
	}
	if p.Executed {
		executedAt := p.ExecutedAt.UTC()
		ret.ExecutedAt = &executedAt
	}
	if p.Outcome == governance.OutcomePurchased {
		pricePaid := p.PricePaid
		ret.PricePaid = &pricePaid
	}
	return ret
}

type ProposalListResponse struct {
	Proposals []ProposalResponse `json:"proposals"`
	Count     uint64             `json:"count"`
}

type CreateProposalResponse struct {
	Index uint64 `json:"index"`
}

type VoteResponse struct {
	Choice string `json:"choice"`
	Weight uint64 `json:"weight"`
}

type VoteRecordResponse struct {
	Choice string `json:"choice"`
	Unit   uint64 `json:"unit"`
}

type BalanceResponse struct {
	Balance types.Amount `json:"balance"`
}

type WithdrawResponse struct {
	Withdrawn types.Amount `json:"withdrawn"`
}

type TreasuryEntryResponse struct {
	Timestamp     time.Time     `json:"timestamp"`
	ProposalIndex *uint64       `json:"proposal_index,omitempty"`
	Kind          string        `json:"kind"`
	Data          []byte        `json:"data,omitempty"`
	Amount        types.Amount  `json:"amount"`
	Balance       types.Amount  `json:"balance"`
	Account       types.Account `json:"account"`
}

type AssetsInfoResponse struct {
	UnitPrice types.Amount `json:"unit_price"`
	MaxUnits  uint64       `json:"max_units"`
	Minted    uint64       `json:"minted"`
	Paused    bool         `json:"paused"`
}

type PresaleResponse struct {
	Ends time.Time `json:"ends"`
}

type MintResponse struct {
	Unit uint64 `json:"unit"`
}

type UnitResponse struct {
	Owner types.Account `json:"owner"`
	Unit  uint64        `json:"unit"`
}

type AssetBalanceResponse struct {
	Units   []uint64      `json:"units"`
	Account types.Account `json:"account"`
	Balance uint64        `json:"balance"`
}

type WhitelistResponse struct {
	Account     types.Account `json:"account"`
	Whitelisted bool          `json:"whitelisted"`
	Count       int           `json:"count"`
}

type MarketItemResponse struct {
	Owner     *types.Account `json:"owner,omitempty"`
	Price     types.Amount   `json:"price"`
	Item      uint64         `json:"item"`
	Available bool           `json:"available"`
}

type TokenBalanceResponse struct {
	Account     types.Account `json:"account"`
	Balance     uint64        `json:"balance"`
	TotalSupply uint64        `json:"total_supply"`
}

type ClaimResponse struct {
	Claimed uint64 `json:"claimed"`
}
