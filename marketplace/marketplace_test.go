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

package marketplace_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/daoledger/event"
	"github.com/blinklabs-io/daoledger/governance"
	"github.com/blinklabs-io/daoledger/marketplace"
	"github.com/blinklabs-io/daoledger/types"
)

var (
	testBuyer = types.MustParseAccount("0x00000000000000000000000000000000000000d0")
	testOther = types.MustParseAccount("0x00000000000000000000000000000000000000e0")
)

var _ governance.Marketplace = (*marketplace.Adapter)(nil)

func TestPurchase(t *testing.T) {
	ctx := context.Background()
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, purchaseCh := eb.Subscribe(marketplace.ItemPurchasedEventType)
	market := marketplace.NewMarket(marketplace.MarketConfig{EventBus: eb})
	price, err := market.PriceOf(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "0.1", price.String())

	testDefs := []struct {
		name    string
		buyer   types.Account
		amount  types.Amount
		wantErr error
	}{
		{name: "below price", buyer: testBuyer, amount: price - 1, wantErr: types.ErrInsufficientFunds},
		{name: "exact price", buyer: testBuyer, amount: price},
		{name: "already sold", buyer: testOther, amount: 2 * price, wantErr: types.ErrItemUnavailable},
	}
	for _, tc := range testDefs {
		t.Run(tc.name, func(t *testing.T) {
			err := market.Purchase(ctx, tc.buyer, 3, tc.amount)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	available, err := market.IsAvailable(ctx, 3)
	require.NoError(t, err)
	assert.False(t, available)
	available, err = market.IsAvailable(ctx, 4)
	require.NoError(t, err)
	assert.True(t, available)
	owner, ok := market.OwnerOf(3)
	require.True(t, ok)
	assert.Equal(t, testBuyer, owner)
	_, ok = market.OwnerOf(4)
	assert.False(t, ok)
	assert.Equal(t, price, market.Proceeds())

	select {
	case evt := <-purchaseCh:
		data, ok := evt.Data.(marketplace.ItemPurchasedEvent)
		require.True(t, ok)
		assert.Equal(t, types.ItemId(3), data.Item)
	case <-time.After(1 * time.Second):
		t.Fatalf("timeout waiting for purchase event")
	}
}

func TestAdapter(t *testing.T) {
	ctx := context.Background()
	market := marketplace.NewMarket(marketplace.MarketConfig{
		ItemPrice: types.Coin,
	})
	adapter := &marketplace.Adapter{Market: market, Buyer: testBuyer}
	price, err := adapter.PriceOf(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, types.Coin, price)
	require.NoError(t, adapter.Purchase(ctx, 1, price))
	owner, ok := market.OwnerOf(1)
	require.True(t, ok)
	assert.Equal(t, testBuyer, owner)
	available, err := adapter.IsAvailable(ctx, 1)
	require.NoError(t, err)
	assert.False(t, available)
}
