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
	"errors"

	"github.com/blinklabs-io/daoledger/types"
)

var (
	// ErrNotAuthorized is returned when the caller holds no asset unit, or is
	// not the treasury owner on withdraw
	ErrNotAuthorized = types.ErrNotAuthorized
	// ErrVotingWindowClosed is returned when voting at or after the deadline
	ErrVotingWindowClosed = errors.New("voting window closed")
	// ErrVotingWindowOpen is returned when executing before the deadline
	ErrVotingWindowOpen = errors.New("voting window still open")
	// ErrAlreadyExecuted is returned when executing a proposal a second time
	ErrAlreadyExecuted = errors.New("proposal already executed")
	// ErrNoEligibleVotingRights is returned when every unit the caller holds
	// has already voted on the proposal
	ErrNoEligibleVotingRights = errors.New("no eligible voting rights")
	// ErrInsufficientFunds is returned when the treasury cannot cover a
	// purchase or withdrawal. The concrete error is *types.InsufficientFundsError
	ErrInsufficientFunds = types.ErrInsufficientFunds
	// ErrItemUnavailable is returned when the target item is already sold
	ErrItemUnavailable  = types.ErrItemUnavailable
	ErrProposalNotFound = errors.New("proposal not found")
	ErrInvalidChoice    = errors.New("invalid vote choice")
	ErrBalanceOverflow  = errors.New("treasury balance overflow")
)
