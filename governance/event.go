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

package governance

import (
	"time"

	"github.com/blinklabs-io/daoledger/event"
	"github.com/blinklabs-io/daoledger/types"
)

const (
	ProposalCreatedEventType  event.EventType = "governance.proposal_created"
	VoteCastEventType         event.EventType = "governance.vote_cast"
	ProposalExecutedEventType event.EventType = "governance.proposal_executed"
	TreasuryDepositEventType  event.EventType = "treasury.deposit"
	TreasuryWithdrawEventType event.EventType = "treasury.withdraw"
)

type ProposalCreatedEvent struct {
	Deadline   time.Time
	Index      uint64
	TargetItem types.ItemId
	Proposer   types.Account
}

// VoteCastEvent lists the units spent by a single vote call
type VoteCastEvent struct {
	Units  []types.UnitId
	Index  uint64
	Weight uint64
	Voter  types.Account
	Choice Choice
}

type ProposalExecutedEvent struct {
	Index     uint64
	PricePaid types.Amount
	Executor  types.Account
	Outcome   Outcome
}

type TreasuryDepositEvent struct {
	Data    []byte
	Amount  types.Amount
	Balance types.Amount
	From    types.Account
}

type TreasuryWithdrawEvent struct {
	Amount  types.Amount
	Balance types.Amount
	To      types.Account
}
