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
	"context"

	"github.com/blinklabs-io/daoledger/types"
)

// OwnershipOracle answers asset unit ownership questions. The engine only
// reads ownership
type OwnershipOracle interface {
	BalanceOf(ctx context.Context, account types.Account) (uint64, error)
	OwnerOf(ctx context.Context, unit types.UnitId) (types.Account, error)
	// UnitsOwnedBy returns the units held by account in ascending order
	UnitsOwnedBy(ctx context.Context, account types.Account) ([]types.UnitId, error)
}

// Marketplace sells items for a fixed price
type Marketplace interface {
	IsAvailable(ctx context.Context, item types.ItemId) (bool, error)
	PriceOf(ctx context.Context, item types.ItemId) (types.Amount, error)
	// Purchase fails if amount is below the price or the item is sold
	Purchase(ctx context.Context, item types.ItemId, amount types.Amount) error
}
