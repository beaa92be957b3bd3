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

// Package registry implements the non-fungible asset collection whose units
// carry membership and voting weight
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/blinklabs-io/daoledger/event"
	"github.com/blinklabs-io/daoledger/types"
)

const (
	DefaultMaxUnits        = 20
	DefaultPresaleDuration = 5 * time.Minute

	UnitMintedEventType      event.EventType = "registry.unit_minted"
	UnitTransferredEventType event.EventType = "registry.unit_transferred"
)

// DefaultUnitPrice is 0.01 coin
var DefaultUnitPrice = types.Coin / 100

var (
	ErrNotAuthorized      = types.ErrNotAuthorized
	ErrInsufficientFunds  = types.ErrInsufficientFunds
	ErrPresaleNotStarted  = errors.New("presale not started")
	ErrPresaleRunning     = errors.New("presale still running")
	ErrPresaleEnded       = errors.New("presale ended")
	ErrNotWhitelisted     = errors.New("caller not whitelisted")
	ErrMaxUnitsMinted     = errors.New("all units minted")
	ErrPaused             = errors.New("registry paused")
	ErrUnitNotFound       = errors.New("unit not found")
	ErrInvalidTransferDst = errors.New("invalid transfer destination")
)

// Membership reports whether an account may take part in the presale
type Membership interface {
	Contains(account types.Account) bool
}

type UnitMintedEvent struct {
	Owner   types.Account
	Unit    types.UnitId
	Presale bool
}

type UnitTransferredEvent struct {
	From types.Account
	To   types.Account
	Unit types.UnitId
}

type RegistryConfig struct {
	Whitelist       Membership
	EventBus        *event.EventBus
	Clock           clock.Clock
	Logger          *slog.Logger
	Owner           types.Account
	UnitPrice       types.Amount
	MaxUnits        uint64
	PresaleDuration time.Duration
}

// Registry tracks ownership of a fixed-size collection of asset units. Unit
// ids start at 1
type Registry struct {
	config       RegistryConfig
	owners       map[types.UnitId]types.Account
	presaleEnds  time.Time
	proceeds     types.Amount
	minted       uint64
	mu           sync.RWMutex
	presaleStart bool
	paused       bool
}

func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	if cfg.Owner.IsZero() {
		return nil, errors.New("registry: owner account is required")
	}
	if cfg.Whitelist == nil {
		return nil, errors.New("registry: whitelist is required")
	}
	if cfg.MaxUnits == 0 {
		cfg.MaxUnits = DefaultMaxUnits
	}
	if cfg.UnitPrice == 0 {
		cfg.UnitPrice = DefaultUnitPrice
	}
	if cfg.PresaleDuration <= 0 {
		cfg.PresaleDuration = DefaultPresaleDuration
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cfg.Logger = cfg.Logger.With("component", "registry")
	return &Registry{
		config: cfg,
		owners: make(map[types.UnitId]types.Account),
	}, nil
}

func (r *Registry) UnitPrice() types.Amount {
	return r.config.UnitPrice
}

func (r *Registry) MaxUnits() uint64 {
	return r.config.MaxUnits
}

// StartPresale opens the whitelist-only sale window
func (r *Registry) StartPresale(caller types.Account) (time.Time, error) {
	if caller != r.config.Owner {
		return time.Time{}, fmt.Errorf("%w: %s is not the registry owner", ErrNotAuthorized, caller)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presaleStart = true
	r.presaleEnds = r.config.Clock.Now().Add(r.config.PresaleDuration)
	r.config.Logger.Info("presale started", "ends", r.presaleEnds)
	return r.presaleEnds, nil
}

// PresaleMint mints the next unit to a whitelisted caller while the presale runs
func (r *Registry) PresaleMint(caller types.Account, value types.Amount) (types.UnitId, error) {
	return r.mint(caller, value, true)
}

// Mint mints the next unit to the caller once the presale has ended
func (r *Registry) Mint(caller types.Account, value types.Amount) (types.UnitId, error) {
	return r.mint(caller, value, false)
}

func (r *Registry) mint(caller types.Account, value types.Amount, presale bool) (types.UnitId, error) {
	r.mu.Lock()
	if err := r.checkMint(caller, value, presale); err != nil {
		r.mu.Unlock()
		return 0, err
	}
	r.minted++
	unit := types.UnitId(r.minted)
	r.owners[unit] = caller
	// Overpayment is kept, like any other value sent to the collection
	r.proceeds, _ = r.proceeds.Add(value)
	r.mu.Unlock()
	r.config.Logger.Info(
		"unit minted",
		"unit", unit,
		"owner", caller.String(),
		"presale", presale,
	)
	r.publish(
		UnitMintedEventType,
		UnitMintedEvent{Owner: caller, Unit: unit, Presale: presale},
	)
	return unit, nil
}

func (r *Registry) checkMint(caller types.Account, value types.Amount, presale bool) error {
	if r.paused {
		return ErrPaused
	}
	if !r.presaleStart {
		return ErrPresaleNotStarted
	}
	now := r.config.Clock.Now()
	if presale {
		if !now.Before(r.presaleEnds) {
			return ErrPresaleEnded
		}
		if !r.config.Whitelist.Contains(caller) {
			return fmt.Errorf("%w: %s", ErrNotWhitelisted, caller)
		}
	} else if now.Before(r.presaleEnds) {
		return ErrPresaleRunning
	}
	if r.minted >= r.config.MaxUnits {
		return fmt.Errorf("%w: limit is %d", ErrMaxUnitsMinted, r.config.MaxUnits)
	}
	if value < r.config.UnitPrice {
		return &types.InsufficientFundsError{
			Available: value,
			Required:  r.config.UnitPrice,
		}
	}
	return nil
}

func (r *Registry) setPaused(caller types.Account, paused bool) error {
	if caller != r.config.Owner {
		return fmt.Errorf("%w: %s is not the registry owner", ErrNotAuthorized, caller)
	}
	r.mu.Lock()
	r.paused = paused
	r.mu.Unlock()
	r.config.Logger.Info("registry pause changed", "paused", paused)
	return nil
}

// Pause stops all minting
func (r *Registry) Pause(caller types.Account) error {
	return r.setPaused(caller, true)
}

func (r *Registry) Unpause(caller types.Account) error {
	return r.setPaused(caller, false)
}

func (r *Registry) Paused() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.paused
}

// Transfer moves a unit from its current owner to another account
func (r *Registry) Transfer(caller types.Account, to types.Account, unit types.UnitId) error {
	if to.IsZero() {
		return ErrInvalidTransferDst
	}
	r.mu.Lock()
	owner, ok := r.owners[unit]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnitNotFound, unit)
	}
	if owner != caller {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s does not own unit %d", ErrNotAuthorized, caller, unit)
	}
	r.owners[unit] = to
	r.mu.Unlock()
	r.config.Logger.Info(
		"unit transferred",
		"unit", unit,
		"from", caller.String(),
		"to", to.String(),
	)
	r.publish(
		UnitTransferredEventType,
		UnitTransferredEvent{From: caller, To: to, Unit: unit},
	)
	return nil
}

// BalanceOf returns the number of units held by account
func (r *Registry) BalanceOf(ctx context.Context, account types.Account) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count uint64
	for _, owner := range r.owners {
		if owner == account {
			count++
		}
	}
	return count, nil
}

func (r *Registry) OwnerOf(ctx context.Context, unit types.UnitId) (types.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner, ok := r.owners[unit]
	if !ok {
		return types.Account{}, fmt.Errorf("%w: %d", ErrUnitNotFound, unit)
	}
	return owner, nil
}

// UnitsOwnedBy returns the units held by account in ascending order
func (r *Registry) UnitsOwnedBy(ctx context.Context, account types.Account) ([]types.UnitId, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ret []types.UnitId
	for unit, owner := range r.owners {
		if owner == account {
			ret = append(ret, unit)
		}
	}
	slices.Sort(ret)
	return ret, nil
}

func (r *Registry) TotalMinted() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.minted
}

// Deposit accepts value sent to the collection outside of minting
func (r *Registry) Deposit(value types.Amount) types.Amount {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.proceeds, _ = r.proceeds.Add(value)
	return r.proceeds
}

func (r *Registry) Proceeds() types.Amount {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.proceeds
}

// Withdraw releases all collected value to the owner
func (r *Registry) Withdraw(caller types.Account) (types.Amount, error) {
	if caller != r.config.Owner {
		return 0, fmt.Errorf("%w: %s is not the registry owner", ErrNotAuthorized, caller)
	}
	r.mu.Lock()
	amount := r.proceeds
	r.proceeds = 0
	r.mu.Unlock()
	r.config.Logger.Info("proceeds withdrawn", "amount", amount.String())
	return amount, nil
}

func (r *Registry) publish(evtType event.EventType, data any) {
	if r.config.EventBus == nil {
		return
	}
	r.config.EventBus.Publish(evtType, event.NewEvent(evtType, data))
}
