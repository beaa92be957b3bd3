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

// Package marketplace implements a fixed-price item shop that the governance
// engine buys from
package marketplace

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/daoledger/event"
	"github.com/blinklabs-io/daoledger/types"
)

const ItemPurchasedEventType event.EventType = "marketplace.item_purchased"

// DefaultItemPrice is 0.1 coin
var DefaultItemPrice = types.Coin / 10

type ItemPurchasedEvent struct {
	Buyer  types.Account
	Item   types.ItemId
	Amount types.Amount
}

type MarketConfig struct {
	EventBus  *event.EventBus
	Logger    *slog.Logger
	ItemPrice types.Amount
}

// Market sells every item id exactly once at a single fixed price
type Market struct {
	config   MarketConfig
	owners   map[types.ItemId]types.Account
	proceeds types.Amount
	mu       sync.RWMutex
}

func NewMarket(cfg MarketConfig) *Market {
	if cfg.ItemPrice == 0 {
		cfg.ItemPrice = DefaultItemPrice
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cfg.Logger = cfg.Logger.With("component", "marketplace")
	return &Market{
		config: cfg,
		owners: make(map[types.ItemId]types.Account),
	}
}

func (m *Market) IsAvailable(ctx context.Context, item types.ItemId) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, sold := m.owners[item]
	return !sold, nil
}

func (m *Market) PriceOf(ctx context.Context, item types.ItemId) (types.Amount, error) {
	return m.config.ItemPrice, nil
}

// OwnerOf returns the buyer of an item. The second return value is false
// while the item is unsold
func (m *Market) OwnerOf(item types.ItemId) (types.Account, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	owner, ok := m.owners[item]
	return owner, ok
}

// Purchase sells item to buyer. It fails if amount is below the price or the
// item is already sold
func (m *Market) Purchase(
	ctx context.Context,
	buyer types.Account,
	item types.ItemId,
	amount types.Amount,
) error {
	if amount < m.config.ItemPrice {
		return &types.InsufficientFundsError{
			Available: amount,
			Required:  m.config.ItemPrice,
		}
	}
	m.mu.Lock()
	if _, sold := m.owners[item]; sold {
		m.mu.Unlock()
		return fmt.Errorf("%w: item %d", types.ErrItemUnavailable, item)
	}
	m.owners[item] = buyer
	m.proceeds, _ = m.proceeds.Add(amount)
	m.mu.Unlock()
	m.config.Logger.Info(
		"item purchased",
		"item", item,
		"buyer", buyer.String(),
		"amount", amount.String(),
	)
	if m.config.EventBus != nil {
		m.config.EventBus.Publish(
			ItemPurchasedEventType,
			event.NewEvent(
				ItemPurchasedEventType,
				ItemPurchasedEvent{Buyer: buyer, Item: item, Amount: amount},
			),
		)
	}
	return nil
}

func (m *Market) Proceeds() types.Amount {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.proceeds
}

// Adapter buys on behalf of a fixed account
type Adapter struct {
	Market *Market
	Buyer  types.Account
}

func (a *Adapter) IsAvailable(ctx context.Context, item types.ItemId) (bool, error) {
	return a.Market.IsAvailable(ctx, item)
}

func (a *Adapter) PriceOf(ctx context.Context, item types.ItemId) (types.Amount, error) {
	return a.Market.PriceOf(ctx, item)
}

func (a *Adapter) Purchase(ctx context.Context, item types.ItemId, amount types.Amount) error {
	return a.Market.Purchase(ctx, a.Buyer, item, amount)
}
