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
	"errors"
	"fmt"

	"github.com/blinklabs-io/daoledger/database/models"
	"github.com/blinklabs-io/daoledger/database/types"
)

// VoteRecord is the vote cast with a single asset unit on a proposal
type VoteRecord struct {
	UnitId uint64
	Choice uint8
}

// GetProposal returns the proposal with the given index
func (d *Database) GetProposal(
	index uint64,
	txn *Txn,
) (*models.Proposal, error) {
	var ret *models.Proposal
	err := d.withTxn(txn, false, func(txn *Txn) error {
		var err error
		ret, err = d.metadata.GetProposal(index, txn.Metadata())
		return err
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// GetProposalCount returns the number of proposals ever created
func (d *Database) GetProposalCount(txn *Txn) (uint64, error) {
	var ret uint64
	err := d.withTxn(txn, false, func(txn *Txn) error {
		var err error
		ret, err = d.metadata.GetProposalCount(txn.Metadata())
		return err
	})
	return ret, err
}

// GetProposals returns up to limit proposals starting at the given index
func (d *Database) GetProposals(
	start uint64,
	limit int,
	txn *Txn,
) ([]models.Proposal, error) {
	var ret []models.Proposal
	err := d.withTxn(txn, false, func(txn *Txn) error {
		var err error
		ret, err = d.metadata.GetProposals(start, limit, txn.Metadata())
		return err
	})
	return ret, err
}

// SetProposal creates or updates a proposal
func (d *Database) SetProposal(proposal *models.Proposal, txn *Txn) error {
	return d.withTxn(txn, true, func(txn *Txn) error {
		return d.metadata.SetProposal(proposal, txn.Metadata())
	})
}

// GetVote returns the choice recorded for an asset unit on a proposal. The
// second return value is false when the unit has not voted
func (d *Database) GetVote(
	proposalIndex uint64,
	unitId uint64,
	txn *Txn,
) (uint8, bool, error) {
	var choice uint8
	var found bool
	err := d.withTxn(txn, false, func(txn *Txn) error {
		val, err := d.blob.Get(
			txn.Blob(),
			types.VoteBlobKey(proposalIndex, unitId),
		)
		if err != nil {
			if errors.Is(err, types.ErrBlobKeyNotFound) {
				return nil
			}
			return err
		}
		if len(val) != 1 {
			return fmt.Errorf(
				"invalid vote record for proposal %d unit %d: length %d",
				proposalIndex,
				unitId,
				len(val),
			)
		}
		choice = val[0]
		found = true
		return nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("get vote: %w", err)
	}
	return choice, found, nil
}

// SetVote records the choice of an asset unit on a proposal
func (d *Database) SetVote(
	proposalIndex uint64,
	unitId uint64,
	choice uint8,
	txn *Txn,
) error {
	err := d.withTxn(txn, true, func(txn *Txn) error {
		return d.blob.Set(
			txn.Blob(),
			types.VoteBlobKey(proposalIndex, unitId),
			[]byte{choice},
		)
	})
	if err != nil {
		return fmt.Errorf("set vote: %w", err)
	}
	return nil
}

// GetVotes returns every vote record for a proposal ordered by unit id
func (d *Database) GetVotes(
	proposalIndex uint64,
	txn *Txn,
) ([]VoteRecord, error) {
	var ret []VoteRecord
	err := d.withTxn(txn, false, func(txn *Txn) error {
		prefix := types.VoteBlobProposalPrefix(proposalIndex)
		iter := d.blob.NewIterator(
			txn.Blob(),
			types.BlobIteratorOptions{Prefix: prefix},
		)
		defer iter.Close()
		for iter.Rewind(); iter.ValidForPrefix(prefix); iter.Next() {
			item := iter.Item()
			unitId, ok := types.VoteBlobKeyUnit(item.Key())
			if !ok {
				continue
			}
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if len(val) != 1 {
				continue
			}
			ret = append(ret, VoteRecord{UnitId: unitId, Choice: val[0]})
		}
		return iter.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("get votes: %w", err)
	}
	return ret, nil
}
