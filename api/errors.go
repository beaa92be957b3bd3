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
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blinklabs-io/daoledger/governance"
	"github.com/blinklabs-io/daoledger/registry"
	"github.com/blinklabs-io/daoledger/token"
	"github.com/blinklabs-io/daoledger/types"
	"github.com/blinklabs-io/daoledger/whitelist"
)

// requestError is a client error detected before reaching a component
type requestError struct {
	msg string
}

func (e *requestError) Error() string {
	return e.msg
}

func errBadRequest(msg string) error {
	return &requestError{msg: msg}
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{types.ErrNotAuthorized, http.StatusForbidden},
	{registry.ErrNotWhitelisted, http.StatusForbidden},
	{types.ErrInsufficientFunds, http.StatusPaymentRequired},
	{types.ErrItemUnavailable, http.StatusGone},
	{governance.ErrProposalNotFound, http.StatusNotFound},
	{registry.ErrUnitNotFound, http.StatusNotFound},
	{governance.ErrVotingWindowClosed, http.StatusConflict},
	{governance.ErrVotingWindowOpen, http.StatusConflict},
	{governance.ErrAlreadyExecuted, http.StatusConflict},
	{governance.ErrNoEligibleVotingRights, http.StatusConflict},
	{governance.ErrBalanceOverflow, http.StatusConflict},
	{whitelist.ErrAlreadyWhitelisted, http.StatusConflict},
	{whitelist.ErrMaxAddressesWhitelisted, http.StatusConflict},
	{registry.ErrPresaleNotStarted, http.StatusConflict},
	{registry.ErrPresaleRunning, http.StatusConflict},
	{registry.ErrPresaleEnded, http.StatusConflict},
	{registry.ErrMaxUnitsMinted, http.StatusConflict},
	{registry.ErrPaused, http.StatusConflict},
	{token.ErrTotalSupplyExceeded, http.StatusConflict},
	{token.ErrAlreadyClaimed, http.StatusConflict},
	{governance.ErrInvalidChoice, http.StatusBadRequest},
	{registry.ErrInvalidTransferDst, http.StatusBadRequest},
	{token.ErrZeroAmount, http.StatusBadRequest},
}

func statusForError(err error) int {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return http.StatusBadRequest
	}
	for _, tmpStatus := range errorStatuses {
		if errors.Is(err, tmpStatus.err) {
			return tmpStatus.status
		}
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := statusForError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error(
			"request failed",
			"path", c.FullPath(),
			"error", err,
		)
		msg = "internal error"
	}
	c.JSON(status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    msg,
	})
}
