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

package badger_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/daoledger/database/blob/badger"
	"github.com/blinklabs-io/daoledger/database/types"
)

func setupTestStore(t *testing.T, opts ...badger.BlobStoreBadgerOptionFunc) *badger.BlobStoreBadger {
	t.Helper()
	store, err := badger.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestBlobStoreGetSet(t *testing.T) {
	store := setupTestStore(t)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k1"), []byte("v1")))
	val, err := store.Get(txn, []byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)
	require.NoError(t, txn.Commit())

	readTxn := store.NewTransaction(false)
	defer readTxn.Rollback() //nolint:errcheck
	val, err = store.Get(readTxn, []byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)
	_, err = store.Get(readTxn, []byte("missing"))
	assert.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestBlobStoreRollback(t *testing.T) {
	store := setupTestStore(t)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k1"), []byte("v1")))
	require.NoError(t, txn.Rollback())
	// Using a finished transaction fails
	_, err := store.Get(txn, []byte("k1"))
	assert.ErrorIs(t, err, types.ErrTxnFinished)

	readTxn := store.NewTransaction(false)
	defer readTxn.Rollback() //nolint:errcheck
	_, err = store.Get(readTxn, []byte("k1"))
	assert.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestBlobStoreTxnValidation(t *testing.T) {
	store := setupTestStore(t)
	other := setupTestStore(t)
	_, err := store.Get(nil, []byte("k"))
	assert.ErrorIs(t, err, types.ErrNilTxn)
	otherTxn := other.NewTransaction(false)
	defer otherTxn.Rollback() //nolint:errcheck
	_, err = store.Get(otherTxn, []byte("k"))
	assert.Error(t, err)
	iter := store.NewIterator(nil, types.BlobIteratorOptions{})
	assert.False(t, iter.Valid())
	assert.ErrorIs(t, iter.Err(), types.ErrNilTxn)
	iter.Close()
}

func TestBlobStorePrefixIterator(t *testing.T) {
	store := setupTestStore(t)
	txn := store.NewTransaction(true)
	for _, unit := range []uint64{5, 1, 3} {
		require.NoError(t, store.Set(txn, types.VoteBlobKey(0, unit), []byte{0}))
	}
	require.NoError(t, store.Set(txn, types.VoteBlobKey(1, 2), []byte{1}))
	require.NoError(t, txn.Commit())

	readTxn := store.NewTransaction(false)
	defer readTxn.Rollback() //nolint:errcheck
	prefix := types.VoteBlobProposalPrefix(0)
	iter := store.NewIterator(readTxn, types.BlobIteratorOptions{Prefix: prefix})
	defer iter.Close()
	var units []uint64
	for iter.Rewind(); iter.ValidForPrefix(prefix); iter.Next() {
		unit, ok := types.VoteBlobKeyUnit(iter.Item().Key())
		require.True(t, ok)
		units = append(units, unit)
	}
	require.NoError(t, iter.Err())
	assert.Equal(t, []uint64{1, 3, 5}, units)
}

func TestBlobStoreCommitTimestamp(t *testing.T) {
	store := setupTestStore(t)
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)
	txn := store.NewTransaction(true)
	require.NoError(t, store.SetCommitTimestamp(1700000000000, txn))
	require.NoError(t, txn.Commit())
	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), ts)
}

func TestBlobStoreOnDisk(t *testing.T) {
	dataDir := t.TempDir()
	reg := prometheus.NewRegistry()
	store, err := badger.New(
		badger.WithDataDir(dataDir),
		badger.WithPromRegistry(reg),
	)
	require.NoError(t, err)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k1"), []byte("v1")))
	require.NoError(t, txn.Commit())
	count, err := testutil.GatherAndCount(reg, "database_blob_lsm_size_bytes")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.NoError(t, store.Close())

	// Data survives reopening
	store, err = badger.New(badger.WithDataDir(dataDir))
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck
	readTxn := store.NewTransaction(false)
	defer readTxn.Rollback() //nolint:errcheck
	val, err := store.Get(readTxn, []byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)
}
