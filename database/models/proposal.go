// Copyright 2025 Blink Labs Software
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

package models

import (
	"errors"

	"github.com/blinklabs-io/daoledger/database/types"
)

var ErrProposalNotFound = errors.New("proposal not found")

// Proposal outcomes recorded at execution
const (
	ProposalOutcomeNone      = 0
	ProposalOutcomePurchased = 1
	ProposalOutcomeRejected  = 2
)

// Proposal is a request to purchase a marketplace item with treasury funds.
// Timestamps are unix nanoseconds
type Proposal struct {
	ID            uint         `gorm:"primarykey"`
	ProposalIndex uint64       `gorm:"uniqueIndex;not null"`
	TargetItem    uint64       `gorm:"index;not null"`
	Proposer      []byte       `gorm:"size:20;not null"`
	CreatedTime   int64        `gorm:"not null"`
	Deadline      int64        `gorm:"index;not null"`
	YayVotes      types.Uint64 `gorm:"not null"`
	NayVotes      types.Uint64 `gorm:"not null"`
	Executed      bool         `gorm:"index;not null"`
	Outcome       uint8        `gorm:"not null"`
	ExecutedTime  *int64
	PricePaid     *types.Uint64
}

// TableName returns the table name
func (Proposal) TableName() string {
	return "proposal"
}
