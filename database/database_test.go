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

package database_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/daoledger/database"
	"github.com/blinklabs-io/daoledger/database/blob/badger"
	"github.com/blinklabs-io/daoledger/database/models"
)

func setupTestDb(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	return db
}

func TestVoteRecords(t *testing.T) {
	db := setupTestDb(t)
	_, found, err := db.GetVote(0, 1, nil)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, db.SetVote(0, 3, 0, nil))
	require.NoError(t, db.SetVote(0, 1, 1, nil))
	require.NoError(t, db.SetVote(1, 1, 0, nil))

	choice, found, err := db.GetVote(0, 1, nil)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint8(1), choice)

	votes, err := db.GetVotes(0, nil)
	require.NoError(t, err)
	assert.Equal(
		t,
		[]database.VoteRecord{
			{UnitId: 1, Choice: 1},
			{UnitId: 3, Choice: 0},
		},
		votes,
	)
	votes, err = db.GetVotes(2, nil)
	require.NoError(t, err)
	assert.Empty(t, votes)
}

func TestTxnDoRollsBackBothStores(t *testing.T) {
	db := setupTestDb(t)
	errTest := errors.New("test error")
	txn := db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		if err := db.SetVote(0, 1, 0, txn); err != nil {
			return err
		}
		if err := db.SetProposal(&models.Proposal{
			ProposalIndex: 0,
			Proposer:      make([]byte, 20),
		}, txn); err != nil {
			return err
		}
		if err := db.SetTreasuryBalance(100, txn); err != nil {
			return err
		}
		return errTest
	})
	assert.ErrorIs(t, err, errTest)

	_, found, err := db.GetVote(0, 1, nil)
	require.NoError(t, err)
	assert.False(t, found)
	count, err := db.GetProposalCount(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
	balance, err := db.GetTreasuryBalance(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)
}

func TestTxnDoCommitsBothStores(t *testing.T) {
	db := setupTestDb(t)
	txn := db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		if err := db.SetVote(0, 1, 0, txn); err != nil {
			return err
		}
		return db.SetProposal(&models.Proposal{
			ProposalIndex: 0,
			TargetItem:    3,
			Proposer:      make([]byte, 20),
		}, txn)
	})
	require.NoError(t, err)
	_, found, err := db.GetVote(0, 1, nil)
	require.NoError(t, err)
	assert.True(t, found)
	proposal, err := db.GetProposal(0, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), proposal.TargetItem)
	// Committing again is a no-op
	assert.NoError(t, txn.Commit())
}

func TestGetProposalNotFound(t *testing.T) {
	db := setupTestDb(t)
	_, err := db.GetProposal(5, nil)
	assert.ErrorIs(t, err, models.ErrProposalNotFound)
}

func TestTreasuryJournal(t *testing.T) {
	db := setupTestDb(t)
	require.NoError(t, db.SetTreasuryBalance(10, nil))
	require.NoError(t, db.AddTreasuryEntry(&models.TreasuryEntry{
		Kind:    models.TreasuryEntryDeposit,
		Account: make([]byte, 20),
		Amount:  10,
		Balance: 10,
	}, nil))
	balance, err := db.GetTreasuryBalance(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), balance)
	entries, err := db.GetTreasuryEntries(0, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.TreasuryEntryDeposit, entries[0].Kind)
}

func TestCommitTimestampPersisted(t *testing.T) {
	dataDir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	require.NoError(t, db.SetVote(0, 1, 0, nil))
	require.NoError(t, db.Close())

	// Both stores carry the same commit timestamp, so reopening succeeds
	db, err = database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck
	_, found, err := db.GetVote(0, 1, nil)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestBlobTuning(t *testing.T) {
	testDefs := []struct {
		name           string
		config         database.Config
		blockCacheSize int64
		indexCacheSize int64
		gcInterval     time.Duration
	}{
		{
			name:           "defaults",
			blockCacheSize: int64(badger.DefaultBlockCacheSize),
			indexCacheSize: int64(badger.DefaultIndexCacheSize),
			gcInterval:     badger.DefaultGcInterval,
		},
		{
			name: "custom",
			config: database.Config{
				BlobCacheSize:      8 << 20,
				BlobIndexCacheSize: 4 << 20,
				BlobGcInterval:     time.Minute,
			},
			blockCacheSize: 8 << 20,
			indexCacheSize: 4 << 20,
			gcInterval:     time.Minute,
		},
		{
			name: "gc disabled",
			config: database.Config{
				BlobGcInterval: -1,
			},
			blockCacheSize: int64(badger.DefaultBlockCacheSize),
			indexCacheSize: int64(badger.DefaultIndexCacheSize),
		},
	}
	for _, tc := range testDefs {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.config
			cfg.DataDir = t.TempDir()
			db, err := database.New(&cfg)
			require.NoError(t, err)
			defer db.Close() //nolint:errcheck
			opts := db.Blob().DB().Opts()
			assert.Equal(t, tc.blockCacheSize, opts.BlockCacheSize)
			assert.Equal(t, tc.indexCacheSize, opts.IndexCacheSize)
			assert.Equal(t, tc.gcInterval, db.Blob().GcInterval())
		})
	}
}
