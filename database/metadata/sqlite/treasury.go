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

package sqlite

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blinklabs-io/daoledger/database/models"
	"github.com/blinklabs-io/daoledger/database/types"
)

// GetTreasuryBalance returns the pooled fund balance, or 0 before the first deposit
func (d *MetadataStoreSqlite) GetTreasuryBalance(txn types.Txn) (uint64, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var ret models.Treasury
	result := db.First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get treasury balance: %w", result.Error)
	}
	return uint64(ret.Balance), nil
}

// SetTreasuryBalance replaces the pooled fund balance
func (d *MetadataStoreSqlite) SetTreasuryBalance(
	balance uint64,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"balance"}),
	}).Create(models.NewTreasury(balance))
	if result.Error != nil {
		return fmt.Errorf("set treasury balance: %w", result.Error)
	}
	return nil
}

// AddTreasuryEntry appends a record to the treasury journal
func (d *MetadataStoreSqlite) AddTreasuryEntry(
	entry *models.TreasuryEntry,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Create(entry); result.Error != nil {
		return fmt.Errorf("add treasury entry: %w", result.Error)
	}
	return nil
}

// GetTreasuryEntries returns up to limit journal records, newest first. A
// limit of 0 returns every record
func (d *MetadataStoreSqlite) GetTreasuryEntries(
	limit int,
	txn types.Txn,
) ([]models.TreasuryEntry, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.TreasuryEntry
	query := db.Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	result := query.Find(&ret)
	if result.Error != nil {
		return nil, fmt.Errorf("get treasury entries: %w", result.Error)
	}
	return ret, nil
}
