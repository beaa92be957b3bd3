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

import "github.com/blinklabs-io/daoledger/database/types"

const treasuryRowId = 1

// Treasury entry kinds
const (
	TreasuryEntryDeposit  = "deposit"
	TreasuryEntryWithdraw = "withdraw"
	TreasuryEntryPurchase = "purchase"
)

// Treasury holds the single pooled fund balance
type Treasury struct {
	ID      uint         `gorm:"primarykey"`
	Balance types.Uint64 `gorm:"not null"`
}

// NewTreasury returns the singleton treasury row with the given balance
func NewTreasury(balance uint64) *Treasury {
	return &Treasury{
		ID:      treasuryRowId,
		Balance: types.Uint64(balance),
	}
}

// TableName returns the table name
func (Treasury) TableName() string {
	return "treasury"
}

// TreasuryEntry is an append-only journal record of a treasury balance change
type TreasuryEntry struct {
	ID            uint         `gorm:"primarykey"`
	Kind          string       `gorm:"size:16;index;not null"`
	Account       []byte       `gorm:"size:20;not null"`
	Amount        types.Uint64 `gorm:"not null"`
	Balance       types.Uint64 `gorm:"not null"`
	ProposalIndex *uint64      `gorm:"index"`
	Data          []byte
	Timestamp     int64 `gorm:"not null"`
}

// TableName returns the table name
func (TreasuryEntry) TableName() string {
	return "treasury_entry"
}
