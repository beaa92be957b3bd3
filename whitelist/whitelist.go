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

// Package whitelist implements a capped membership set used to gate the asset presale
package whitelist

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/daoledger/event"
	"github.com/blinklabs-io/daoledger/types"
)

const (
	DefaultMaxAddresses = 10

	AddressAddedEventType event.EventType = "whitelist.address_added"
)

var (
	ErrAlreadyWhitelisted      = errors.New("address already whitelisted")
	ErrMaxAddressesWhitelisted = errors.New("max addresses whitelisted")
)

type AddressAddedEvent struct {
	Account types.Account
	Count   int
}

type WhitelistConfig struct {
	EventBus     *event.EventBus
	Logger       *slog.Logger
	MaxAddresses int
}

type Whitelist struct {
	config    WhitelistConfig
	addresses map[types.Account]struct{}
	mu        sync.RWMutex
}

func NewWhitelist(cfg WhitelistConfig) *Whitelist {
	if cfg.MaxAddresses <= 0 {
		cfg.MaxAddresses = DefaultMaxAddresses
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cfg.Logger = cfg.Logger.With("component", "whitelist")
	return &Whitelist{
		config:    cfg,
		addresses: make(map[types.Account]struct{}),
	}
}

// Add puts the caller on the whitelist
func (w *Whitelist) Add(caller types.Account) error {
	w.mu.Lock()
	if _, ok := w.addresses[caller]; ok {
		w.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyWhitelisted, caller)
	}
	if len(w.addresses) >= w.config.MaxAddresses {
		w.mu.Unlock()
		return fmt.Errorf(
			"%w: limit is %d",
			ErrMaxAddressesWhitelisted,
			w.config.MaxAddresses,
		)
	}
	w.addresses[caller] = struct{}{}
	count := len(w.addresses)
	w.mu.Unlock()
	w.config.Logger.Info(
		"address whitelisted",
		"account", caller.String(),
		"count", count,
	)
	if w.config.EventBus != nil {
		w.config.EventBus.Publish(
			AddressAddedEventType,
			event.NewEvent(
				AddressAddedEventType,
				AddressAddedEvent{Account: caller, Count: count},
			),
		)
	}
	return nil
}

func (w *Whitelist) Contains(account types.Account) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.addresses[account]
	return ok
}

// Count returns the number of whitelisted addresses
func (w *Whitelist) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.addresses)
}

func (w *Whitelist) MaxAddresses() int {
	return w.config.MaxAddresses
}
