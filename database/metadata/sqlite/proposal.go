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

// GetProposal returns the proposal with the given index
func (d *MetadataStoreSqlite) GetProposal(
	index uint64,
	txn types.Txn,
) (*models.Proposal, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret models.Proposal
	result := db.Where("proposal_index = ?", index).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrProposalNotFound
		}
		return nil, fmt.Errorf("get proposal %d: %w", index, result.Error)
	}
	return &ret, nil
}

// GetProposalCount returns the number of proposals ever created
func (d *MetadataStoreSqlite) GetProposalCount(txn types.Txn) (uint64, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var count int64
	if result := db.Model(&models.Proposal{}).Count(&count); result.Error != nil {
		return 0, fmt.Errorf("count proposals: %w", result.Error)
	}
	return uint64(count), nil //nolint:gosec
}

// GetProposals returns up to limit proposals starting at the given index, in index order
func (d *MetadataStoreSqlite) GetProposals(
	start uint64,
	limit int,
	txn types.Txn,
) ([]models.Proposal, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Proposal
	query := db.Where("proposal_index >= ?", start).Order("proposal_index ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	result := query.Find(&ret)
	if result.Error != nil {
		return nil, fmt.Errorf("list proposals: %w", result.Error)
	}
	return ret, nil
}

// SetProposal creates or updates a proposal. Records loaded from the store are
// updated by primary key, new records are upserted by index
func (d *MetadataStoreSqlite) SetProposal(
	proposal *models.Proposal,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	var result *gorm.DB
	if proposal.ID != 0 {
		result = db.Save(proposal)
	} else {
		result = db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "proposal_index"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"yay_votes",
				"nay_votes",
				"executed",
				"outcome",
				"executed_time",
				"price_paid",
			}),
		}).Create(proposal)
	}
	if result.Error != nil {
		return fmt.Errorf(
			"set proposal %d: %w",
			proposal.ProposalIndex,
			result.Error,
		)
	}
	return nil
}
