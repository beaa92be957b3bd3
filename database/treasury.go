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

package database

import (
	"github.com/blinklabs-io/daoledger/database/models"
)

// GetTreasuryBalance returns the pooled fund balance
func (d *Database) GetTreasuryBalance(txn *Txn) (uint64, error) {
	var ret uint64
	err := d.withTxn(txn, false, func(txn *Txn) error {
		var err error
		ret, err = d.metadata.GetTreasuryBalance(txn.Metadata())
		return err
	})
	return ret, err
}

// SetTreasuryBalance replaces the pooled fund balance
func (d *Database) SetTreasuryBalance(balance uint64, txn *Txn) error {
	return d.withTxn(txn, true, func(txn *Txn) error {
		return d.metadata.SetTreasuryBalance(balance, txn.Metadata())
	})
}

// AddTreasuryEntry appends a record to the treasury journal
func (d *Database) AddTreasuryEntry(
	entry *models.TreasuryEntry,
	txn *Txn,
) error {
	return d.withTxn(txn, true, func(txn *Txn) error {
		return d.metadata.AddTreasuryEntry(entry, txn.Metadata())
	})
}

// GetTreasuryEntries returns up to limit journal records, newest first
func (d *Database) GetTreasuryEntries(
	limit int,
	txn *Txn,
) ([]models.TreasuryEntry, error) {
	var ret []models.TreasuryEntry
	err := d.withTxn(txn, false, func(txn *Txn) error {
		var err error
		ret, err = d.metadata.GetTreasuryEntries(limit, txn.Metadata())
		return err
	})
	return ret, err
}
