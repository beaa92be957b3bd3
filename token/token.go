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

// Package token implements the capped fungible reward token. Balances are
// counted in whole tokens
package token

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/daoledger/event"
	"github.com/blinklabs-io/daoledger/types"
)

const (
	DefaultTokensPerUnit = 10
	DefaultMaxSupply     = 10000

	TokensMintedEventType  event.EventType = "token.minted"
	TokensClaimedEventType event.EventType = "token.claimed"
)

// DefaultTokenPrice is 0.001 coin per token
var DefaultTokenPrice = types.Coin / 1000

var (
	ErrNotAuthorized       = types.ErrNotAuthorized
	ErrInsufficientFunds   = types.ErrInsufficientFunds
	ErrTotalSupplyExceeded = errors.New("total supply exceeded")
	ErrAlreadyClaimed      = errors.New("all tokens already claimed")
	ErrZeroAmount          = errors.New("amount must be greater than zero")
)

// Holdings enumerates the asset units that entitle an account to claim
type Holdings interface {
	UnitsOwnedBy(ctx context.Context, account types.Account) ([]types.UnitId, error)
}

type TokensMintedEvent struct {
	Account types.Account
	Amount  uint64
}

type TokensClaimedEvent struct {
	Units   []types.UnitId
	Account types.Account
	Amount  uint64
}

type TokenConfig struct {
	Holdings      Holdings
	EventBus      *event.EventBus
	Logger        *slog.Logger
	Owner         types.Account
	Price         types.Amount
	TokensPerUnit uint64
	MaxSupply     uint64
}

type Token struct {
	config   TokenConfig
	balances map[types.Account]uint64
	claimed  map[types.UnitId]struct{}
	supply   uint64
	proceeds types.Amount
	mu       sync.Mutex
}

func NewToken(cfg TokenConfig) (*Token, error) {
	if cfg.Holdings == nil {
		return nil, errors.New("token: holdings source is required")
	}
	if cfg.Owner.IsZero() {
		return nil, errors.New("token: owner account is required")
	}
	if cfg.Price == 0 {
		cfg.Price = DefaultTokenPrice
	}
	if cfg.TokensPerUnit == 0 {
		cfg.TokensPerUnit = DefaultTokensPerUnit
	}
	if cfg.MaxSupply == 0 {
		cfg.MaxSupply = DefaultMaxSupply
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cfg.Logger = cfg.Logger.With("component", "token")
	return &Token{
		config:   cfg,
		balances: make(map[types.Account]uint64),
		claimed:  make(map[types.UnitId]struct{}),
	}, nil
}

// Mint sells amount tokens to the caller for value
func (t *Token) Mint(caller types.Account, amount uint64, value types.Amount) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	required, ok := t.config.Price.Mul(amount)
	if !ok || value < required {
		return &types.InsufficientFundsError{Available: value, Required: required}
	}
	t.mu.Lock()
	if err := t.checkSupply(amount); err != nil {
		t.mu.Unlock()
		return err
	}
	t.supply += amount
	t.balances[caller] += amount
	t.proceeds, _ = t.proceeds.Add(value)
	t.mu.Unlock()
	t.config.Logger.Info(
		"tokens minted",
		"account", caller.String(),
		"amount", amount,
	)
	t.publish(
		TokensMintedEventType,
		TokensMintedEvent{Account: caller, Amount: amount},
	)
	return nil
}

// Claim credits the free allotment for every asset unit the caller holds that
// has not been claimed for yet, and returns the tokens credited
func (t *Token) Claim(ctx context.Context, caller types.Account) (uint64, error) {
	units, err := t.config.Holdings.UnitsOwnedBy(ctx, caller)
	if err != nil {
		return 0, fmt.Errorf("query owned units: %w", err)
	}
	if len(units) == 0 {
		return 0, fmt.Errorf("%w: %s holds no asset units", ErrNotAuthorized, caller)
	}
	t.mu.Lock()
	var unclaimed []types.UnitId
	for _, unit := range units {
		if _, ok := t.claimed[unit]; !ok {
			unclaimed = append(unclaimed, unit)
		}
	}
	if len(unclaimed) == 0 {
		t.mu.Unlock()
		return 0, ErrAlreadyClaimed
	}
	amount := uint64(len(unclaimed)) * t.config.TokensPerUnit
	if err := t.checkSupply(amount); err != nil {
		t.mu.Unlock()
		return 0, err
	}
	for _, unit := range unclaimed {
		t.claimed[unit] = struct{}{}
	}
	t.supply += amount
	t.balances[caller] += amount
	t.mu.Unlock()
	t.config.Logger.Info(
		"tokens claimed",
		"account", caller.String(),
		"units", len(unclaimed),
		"amount", amount,
	)
	t.publish(
		TokensClaimedEventType,
		TokensClaimedEvent{Account: caller, Units: unclaimed, Amount: amount},
	)
	return amount, nil
}

func (t *Token) checkSupply(amount uint64) error {
	if amount > t.config.MaxSupply-t.supply {
		return fmt.Errorf(
			"%w: supply %d, max %d, requested %d",
			ErrTotalSupplyExceeded,
			t.supply,
			t.config.MaxSupply,
			amount,
		)
	}
	return nil
}

func (t *Token) BalanceOf(account types.Account) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[account]
}

func (t *Token) TotalSupply() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.supply
}

func (t *Token) MaxSupply() uint64 {
	return t.config.MaxSupply
}

func (t *Token) Price() types.Amount {
	return t.config.Price
}

// Deposit accepts value sent to the token outside of minting
func (t *Token) Deposit(value types.Amount) types.Amount {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.proceeds, _ = t.proceeds.Add(value)
	return t.proceeds
}

// Withdraw releases all collected value to the owner
func (t *Token) Withdraw(caller types.Account) (types.Amount, error) {
	if caller != t.config.Owner {
		return 0, fmt.Errorf("%w: %s is not the token owner", ErrNotAuthorized, caller)
	}
	t.mu.Lock()
	amount := t.proceeds
	t.proceeds = 0
	t.mu.Unlock()
	t.config.Logger.Info("proceeds withdrawn", "amount", amount.String())
	return amount, nil
}

func (t *Token) publish(evtType event.EventType, data any) {
	if t.config.EventBus == nil {
		return
	}
	t.config.EventBus.Publish(evtType, event.NewEvent(evtType, data))
}
