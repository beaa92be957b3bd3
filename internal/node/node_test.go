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

package node

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/daoledger"
	"github.com/blinklabs-io/daoledger/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Owner:           "0x00000000000000000000000000000000000000aa",
		DaoAccount:      "0x00000000000000000000000000000000000000da",
		BindAddr:        "127.0.0.1",
		ApiPort:         8080,
		VotingWindow:    "5m",
		ShutdownTimeout: "30s",
		Badger: config.BadgerConfig{
			CacheSize:      config.DefaultBadgerCacheSize,
			IndexCacheSize: config.DefaultBadgerIndexCacheSize,
			GcInterval:     config.DefaultBadgerGcInterval,
		},
		Registry: config.RegistryConfig{
			UnitPrice:       "0.01",
			PresaleDuration: "5m",
			MaxUnits:        20,
		},
		Marketplace: config.MarketplaceConfig{ItemPrice: "0.1"},
		Token: config.TokenConfig{
			Price:     "0.001",
			PerUnit:   10,
			MaxSupply: 10000,
		},
	}
}

func TestNodeOptions(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	opts, err := nodeOptions(testConfig(), logger)
	require.NoError(t, err)
	_, err = daoledger.New(daoledger.NewConfig(opts...))
	assert.NoError(t, err)
}

func TestNodeOptionsInvalid(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{
			name:   "bad owner",
			modify: func(c *config.Config) { c.Owner = "nope" },
		},
		{
			name:   "bad voting window",
			modify: func(c *config.Config) { c.VotingWindow = "later" },
		},
		{
			name:   "bad badger GC interval",
			modify: func(c *config.Config) { c.Badger.GcInterval = "often" },
		},
		{
			name:   "bad item price",
			modify: func(c *config.Config) { c.Marketplace.ItemPrice = "0.0000000001" },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(cfg)
			_, err := nodeOptions(cfg, logger)
			assert.Error(t, err)
		})
	}
}
