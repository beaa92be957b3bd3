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
	"fmt"
	"time"

	"github.com/blinklabs-io/daoledger/database/models"
	"github.com/blinklabs-io/daoledger/types"
)

// Choice is the side a vote is cast for
type Choice uint8

const (
	ChoiceYay Choice = 0
	ChoiceNay Choice = 1
)

func (c Choice) String() string {
	switch c {
	case ChoiceYay:
		return "yay"
	case ChoiceNay:
		return "nay"
	default:
		return fmt.Sprintf("Choice(%d)", uint8(c))
	}
}

func (c Choice) Valid() bool {
	return c == ChoiceYay || c == ChoiceNay
}

// ParseChoice accepts "yay" or "nay"
func ParseChoice(s string) (Choice, error) {
	switch s {
	case "yay":
		return ChoiceYay, nil
	case "nay":
		return ChoiceNay, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidChoice, s)
	}
}

type ProposalState int

const (
	ProposalStateActive ProposalState = iota
	ProposalStateExpiredPendingExecution
	ProposalStateExecuted
)

func (s ProposalState) String() string {
	switch s {
	case ProposalStateActive:
		return "active"
	case ProposalStateExpiredPendingExecution:
		return "expired_pending_execution"
	case ProposalStateExecuted:
		return "executed"
	default:
		return fmt.Sprintf("ProposalState(%d)", int(s))
	}
}

// Outcome records what an execution did. It is informational only: Executed
// is the terminal marker
type Outcome uint8

const (
	OutcomeNone      Outcome = models.ProposalOutcomeNone
	OutcomePurchased Outcome = models.ProposalOutcomePurchased
	OutcomeRejected  Outcome = models.ProposalOutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomePurchased:
		return "purchased"
	case OutcomeRejected:
		return "rejected"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}

type Proposal struct {
	Created    time.Time
	Deadline   time.Time
	ExecutedAt time.Time
	Index      uint64
	TargetItem types.ItemId
	YayVotes   uint64
	NayVotes   uint64
	PricePaid  types.Amount
	Proposer   types.Account
	Executed   bool
	Outcome    Outcome
}

// State derives the lifecycle state at the given time
func (p Proposal) State(now time.Time) ProposalState {
	if p.Executed {
		return ProposalStateExecuted
	}
	if now.Before(p.Deadline) {
		return ProposalStateActive
	}
	return ProposalStateExpiredPendingExecution
}

func proposalFromModel(m *models.Proposal) Proposal {
	ret := Proposal{
		Index:      m.ProposalIndex,
		TargetItem: types.ItemId(m.TargetItem),
		Created:    time.Unix(0, m.CreatedTime).UTC(),
		Deadline:   time.Unix(0, m.Deadline).UTC(),
		YayVotes:   uint64(m.YayVotes),
		NayVotes:   uint64(m.NayVotes),
		Executed:   m.Executed,
		Outcome:    Outcome(m.Outcome),
	}
	// Stored proposers are always account-sized
	if proposer, err := types.AccountFromBytes(m.Proposer); err == nil {
		ret.Proposer = proposer
	}
	if m.ExecutedTime != nil {
		ret.ExecutedAt = time.Unix(0, *m.ExecutedTime).UTC()
	}
	if m.PricePaid != nil {
		ret.PricePaid = types.Amount(*m.PricePaid)
	}
	return ret
}

// Vote is the choice recorded for one asset unit on a proposal
type Vote struct {
	Unit   types.UnitId
	Choice Choice
}
