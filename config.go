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

package daoledger

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/daoledger/types"
)

const DefaultShutdownTimeout = 30 * time.Second

type Config struct {
	promRegistry      prometheus.Registerer
	logger            *slog.Logger
	clock             clock.Clock
	dataDir           string
	apiListenAddress  string
	owner             types.Account
	daoAccount        types.Account
	votingWindow      time.Duration
	shutdownTimeout   time.Duration
	unitPrice         types.Amount
	maxUnits          uint64
	presaleDuration   time.Duration
	whitelistMaxAddrs int
	itemPrice         types.Amount
	tokenPrice        types.Amount
	tokensPerUnit     uint64
	tokenMaxSupply    uint64
	badgerCacheSize   uint64
	badgerIndexCache  uint64
	badgerGcInterval  time.Duration
	tracing           bool
	tracingStdout     bool
}

func (c *Config) validate() error {
	if c.owner.IsZero() {
		return errors.New("owner account must be specified")
	}
	if c.daoAccount.IsZero() {
		return errors.New("DAO account must be specified")
	}
	if c.votingWindow < 0 {
		return errors.New("voting window must not be negative")
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new daoledger config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:          slog.New(slog.NewJSONHandler(io.Discard, nil)),
		clock:           clock.New(),
		shutdownTimeout: DefaultShutdownTimeout,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithBadgerCacheSize specifies the block cache size for the vote store
func WithBadgerCacheSize(size uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.badgerCacheSize = size
	}
}

// WithBadgerIndexCacheSize specifies the index cache size for the vote store
func WithBadgerIndexCacheSize(size uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.badgerIndexCache = size
	}
}

// WithBadgerGcInterval specifies how often the vote store runs value log GC. A negative value disables it
func WithBadgerGcInterval(interval time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.badgerGcInterval = interval
	}
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. The default is no metrics
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithClock overrides the wall clock used for voting deadlines and the presale
func WithClock(clk clock.Clock) ConfigOptionFunc {
	return func(c *Config) {
		c.clock = clk
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}

// WithApiListenAddress specifies the listen address for the REST API. An empty value disables it
func WithApiListenAddress(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = addr
	}
}

// WithOwner specifies the account allowed to withdraw from the treasury and administer the collection
func WithOwner(owner types.Account) ConfigOptionFunc {
	return func(c *Config) {
		c.owner = owner
	}
}

// WithDaoAccount specifies the account that receives items bought by executed proposals
func WithDaoAccount(account types.Account) ConfigOptionFunc {
	return func(c *Config) {
		c.daoAccount = account
	}
}

// WithVotingWindow specifies how long a proposal accepts votes. The default is 5 minutes
func WithVotingWindow(window time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.votingWindow = window
	}
}

// WithUnitPrice specifies the mint price of an asset unit
func WithUnitPrice(price types.Amount) ConfigOptionFunc {
	return func(c *Config) {
		c.unitPrice = price
	}
}

// WithMaxUnits specifies the asset collection size
func WithMaxUnits(maxUnits uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.maxUnits = maxUnits
	}
}

// WithPresaleDuration specifies how long the whitelist-only presale runs
func WithPresaleDuration(duration time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.presaleDuration = duration
	}
}

// WithWhitelistMaxAddresses specifies the whitelist capacity
func WithWhitelistMaxAddresses(maxAddrs int) ConfigOptionFunc {
	return func(c *Config) {
		c.whitelistMaxAddrs = maxAddrs
	}
}

// WithItemPrice specifies the marketplace price of every item
func WithItemPrice(price types.Amount) ConfigOptionFunc {
	return func(c *Config) {
		c.itemPrice = price
	}
}

// WithTokenPrice specifies the mint price of a single reward token
func WithTokenPrice(price types.Amount) ConfigOptionFunc {
	return func(c *Config) {
		c.tokenPrice = price
	}
}

// WithTokensPerUnit specifies the reward tokens claimable for each asset unit
func WithTokensPerUnit(tokens uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.tokensPerUnit = tokens
	}
}

// WithTokenMaxSupply specifies the reward token supply cap
func WithTokenMaxSupply(maxSupply uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.tokenMaxSupply = maxSupply
	}
}
