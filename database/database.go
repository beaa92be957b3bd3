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
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/daoledger/database/blob/badger"
	"github.com/blinklabs-io/daoledger/database/metadata/sqlite"
)

// Config holds the settings for opening a Database
type Config struct {
	PromRegistry  prometheus.Registerer
	Logger        *slog.Logger
	DataDir       string
	BlobCacheSize uint64
	// BlobIndexCacheSize is the badger index cache size. Zero uses the default
	BlobIndexCacheSize uint64
	// BlobGcInterval is how often value log GC runs on disk. Zero uses the
	// default and a negative value disables it
	BlobGcInterval time.Duration
}

// Database pairs the metadata store (proposals and treasury) with the blob
// store (vote records)
type Database struct {
	logger   *slog.Logger
	blob     *badger.BlobStoreBadger
	metadata *sqlite.MetadataStoreSqlite
	dataDir  string
}

// Blob returns the underling blob store instance
func (d *Database) Blob() *badger.BlobStoreBadger {
	return d.blob
}

// DataDir returns the path to the data directory used for storage
func (d *Database) DataDir() string {
	return d.dataDir
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// Metadata returns the underlying metadata store instance
func (d *Database) Metadata() *sqlite.MetadataStoreSqlite {
	return d.metadata
}

// Transaction starts a new database transaction and returns a handle to it
func (d *Database) Transaction(readWrite bool) *Txn {
	return NewTxn(d, readWrite)
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	if d.metadata != nil {
		err = errors.Join(err, d.metadata.Close())
	}
	if d.blob != nil {
		err = errors.Join(err, d.blob.Close())
	}
	return err
}

// New creates a new database instance with optional persistence using the provided data directory
func New(config *Config) (*Database, error) {
	if config == nil {
		config = &Config{}
	}
	logger := config.Logger
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	metadataDb, err := sqlite.New(
		sqlite.WithDataDir(config.DataDir),
		sqlite.WithLogger(logger),
		sqlite.WithPromRegistry(config.PromRegistry),
	)
	if err != nil {
		return nil, fmt.Errorf("open metadata store: %w", err)
	}
	blobOpts := []badger.BlobStoreBadgerOptionFunc{
		badger.WithDataDir(config.DataDir),
		badger.WithLogger(logger),
		badger.WithPromRegistry(config.PromRegistry),
	}
	if config.BlobCacheSize > 0 {
		blobOpts = append(blobOpts, badger.WithBlockCacheSize(config.BlobCacheSize))
	}
	if config.BlobIndexCacheSize > 0 {
		blobOpts = append(blobOpts, badger.WithIndexCacheSize(config.BlobIndexCacheSize))
	}
	switch {
	case config.BlobGcInterval < 0:
		blobOpts = append(blobOpts, badger.WithGcInterval(0))
	case config.BlobGcInterval > 0:
		blobOpts = append(blobOpts, badger.WithGcInterval(config.BlobGcInterval))
	}
	blobDb, err := badger.New(blobOpts...)
	if err != nil {
		_ = metadataDb.Close()
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	db := &Database{
		logger:   logger,
		blob:     blobDb,
		metadata: metadataDb,
		dataDir:  config.DataDir,
	}
	if err := db.checkCommitTimestamp(); err != nil {
		// Database is available for recovery, so return it with error
		return db, err
	}
	return db, nil
}

// withTxn runs fn in the provided transaction, or in a new transaction owned
// by this call when txn is nil
func (d *Database) withTxn(txn *Txn, readWrite bool, fn func(*Txn) error) error {
	if txn != nil {
		return fn(txn)
	}
	txn = d.Transaction(readWrite)
	return txn.Do(fn)
}
