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

package types

import (
	"errors"
	"fmt"
)

// Error kinds shared by every component that accepts value or gates callers
var (
	ErrNotAuthorized     = errors.New("not authorized")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrItemUnavailable   = errors.New("item unavailable")
)

// InsufficientFundsError reports a funds check that failed. It matches
// ErrInsufficientFunds with errors.Is.
type InsufficientFundsError struct {
	Available Amount
	Required  Amount
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf(
		"insufficient funds: available=%s, required=%s",
		e.Available,
		e.Required,
	)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}
