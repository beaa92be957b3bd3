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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOwner = "0x00000000000000000000000000000000000000aa"
	testDao   = "0x00000000000000000000000000000000000000da"
)

func resetGlobalConfig() {
	globalConfig = defaultConfig()
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "test-daoledger.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0o644))
	return tmpFile
}

func TestLoad_CompareFullStruct(t *testing.T) {
	resetGlobalConfig()
	yamlContent := `
databasePath: "/var/lib/daoledger"
bindAddr: "127.0.0.1"
apiPort: 9000
metricsPort: 9001
owner: "` + testOwner + `"
daoAccount: "` + testDao + `"
votingWindow: "10m"
shutdownTimeout: "5s"
tracing: true
badger:
  cacheSize: 8388608
  indexCacheSize: 4194304
  gcInterval: "10m"
registry:
  maxUnits: 50
  unitPrice: "0.02"
  presaleDuration: "1h"
whitelist:
  maxAddresses: 3
marketplace:
  itemPrice: "0.5"
token:
  price: "0.002"
  perUnit: 5
  maxSupply: 500
`
	expected := &Config{
		DatabasePath:    "/var/lib/daoledger",
		BindAddr:        "127.0.0.1",
		ApiPort:         9000,
		MetricsPort:     9001,
		Owner:           testOwner,
		DaoAccount:      testDao,
		VotingWindow:    "10m",
		ShutdownTimeout: "5s",
		Tracing:         true,
		Badger: BadgerConfig{
			CacheSize:      8388608,
			IndexCacheSize: 4194304,
			GcInterval:     "10m",
		},
		Registry: RegistryConfig{
			UnitPrice:       "0.02",
			PresaleDuration: "1h",
			MaxUnits:        50,
		},
		Whitelist:   WhitelistConfig{MaxAddresses: 3},
		Marketplace: MarketplaceConfig{ItemPrice: "0.5"},
		Token: TokenConfig{
			Price:     "0.002",
			PerUnit:   5,
			MaxSupply: 500,
		},
	}
	actual, err := LoadConfig(writeConfigFile(t, yamlContent))
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	resetGlobalConfig()
	yamlContent := `
owner: "` + testOwner + `"
daoAccount: "` + testDao + `"
registry:
  maxUnits: 5
`
	cfg, err := LoadConfig(writeConfigFile(t, yamlContent))
	require.NoError(t, err)
	assert.Equal(t, uint64(5), cfg.Registry.MaxUnits)
	assert.Equal(t, "0.01", cfg.Registry.UnitPrice)
	assert.Equal(t, DefaultVotingWindow, cfg.VotingWindow)
	assert.Equal(t, uint(8080), cfg.ApiPort)
	assert.Equal(t, uint64(10000), cfg.Token.MaxSupply)
	assert.Equal(t, DefaultBadgerCacheSize, cfg.Badger.CacheSize)
	assert.Equal(t, DefaultBadgerGcInterval, cfg.Badger.GcInterval)
}

func TestLoad_EnvOverrides(t *testing.T) {
	resetGlobalConfig()
	t.Setenv("DAOLEDGER_OWNER", testOwner)
	t.Setenv("DAOLEDGER_DAO_ACCOUNT", testDao)
	t.Setenv("DAOLEDGER_API_PORT", "9999")
	t.Setenv("DAOLEDGER_VOTING_WINDOW", "1m")
	t.Setenv("DAOLEDGER_REGISTRY_MAX_UNITS", "7")
	t.Setenv("DAOLEDGER_BADGER_CACHE_SIZE", "1048576")
	cfg, err := LoadConfig(writeConfigFile(t, "apiPort: 1234\n"))
	require.NoError(t, err)
	assert.Equal(t, testOwner, cfg.Owner)
	assert.Equal(t, uint(9999), cfg.ApiPort)
	assert.Equal(t, "1m", cfg.VotingWindow)
	assert.Equal(t, uint64(7), cfg.Registry.MaxUnits)
	assert.Equal(t, uint64(1048576), cfg.Badger.CacheSize)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing owner",
			yaml: `daoAccount: "` + testDao + `"`,
		},
		{
			name: "bad owner",
			yaml: "owner: \"0x1234\"\ndaoAccount: \"" + testDao + "\"",
		},
		{
			name: "bad voting window",
			yaml: "owner: \"" + testOwner + "\"\ndaoAccount: \"" + testDao + "\"\nvotingWindow: \"soon\"",
		},
		{
			name: "bad badger GC interval",
			yaml: "owner: \"" + testOwner + "\"\ndaoAccount: \"" + testDao + "\"\nbadger:\n  gcInterval: \"hourly\"",
		},
		{
			name: "bad token price",
			yaml: "owner: \"" + testOwner + "\"\ndaoAccount: \"" + testDao + "\"\ntoken:\n  price: \"-1\"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetGlobalConfig()
			_, err := LoadConfig(writeConfigFile(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(t.Context()))
	cfg := defaultConfig()
	ctx := WithContext(t.Context(), cfg)
	assert.Same(t, cfg, FromContext(ctx))
}
