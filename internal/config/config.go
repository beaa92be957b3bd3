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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/blinklabs-io/daoledger/types"
)

type ctxKey string

const configContextKey ctxKey = "daoledger.config"

const (
	DefaultShutdownTimeout = "30s"
	DefaultVotingWindow    = "5m"
	DefaultPresaleDuration = "5m"

	DefaultBadgerCacheSize      uint64 = 64 << 20
	DefaultBadgerIndexCacheSize uint64 = 16 << 20
	DefaultBadgerGcInterval            = "5m"

	envPrefix = "daoledger"
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type RegistryConfig struct {
	UnitPrice       string `yaml:"unitPrice"       split_words:"true"`
	PresaleDuration string `yaml:"presaleDuration" split_words:"true"`
	MaxUnits        uint64 `yaml:"maxUnits"        split_words:"true"`
}

type WhitelistConfig struct {
	MaxAddresses int `yaml:"maxAddresses" split_words:"true"`
}

type MarketplaceConfig struct {
	ItemPrice string `yaml:"itemPrice" split_words:"true"`
}

type TokenConfig struct {
	Price     string `yaml:"price"`
	PerUnit   uint64 `yaml:"perUnit"   split_words:"true"`
	MaxSupply uint64 `yaml:"maxSupply" split_words:"true"`
}

// BadgerConfig tunes the vote store. A negative GcInterval disables value log GC
type BadgerConfig struct {
	GcInterval     string `yaml:"gcInterval"     split_words:"true"`
	CacheSize      uint64 `yaml:"cacheSize"      split_words:"true"`
	IndexCacheSize uint64 `yaml:"indexCacheSize" split_words:"true"`
}

type Config struct {
	Badger          BadgerConfig      `yaml:"badger"`
	Registry        RegistryConfig    `yaml:"registry"`
	Marketplace     MarketplaceConfig `yaml:"marketplace"`
	Token           TokenConfig       `yaml:"token"`
	DatabasePath    string            `yaml:"databasePath"    split_words:"true"`
	BindAddr        string            `yaml:"bindAddr"        split_words:"true"`
	Owner           string            `yaml:"owner"`
	DaoAccount      string            `yaml:"daoAccount"      split_words:"true"`
	VotingWindow    string            `yaml:"votingWindow"    split_words:"true"`
	ShutdownTimeout string            `yaml:"shutdownTimeout" split_words:"true"`
	Whitelist       WhitelistConfig   `yaml:"whitelist"`
	ApiPort         uint              `yaml:"apiPort"         split_words:"true"`
	MetricsPort     uint              `yaml:"metricsPort"     split_words:"true"`
	Tracing         bool              `yaml:"tracing"`
	TracingStdout   bool              `yaml:"tracingStdout"   split_words:"true"`
}

// Validate checks the values that are kept as strings for readability in the
// config file
func (c *Config) Validate() error {
	for _, tmpAccount := range []struct {
		name  string
		value string
	}{
		{"owner", c.Owner},
		{"daoAccount", c.DaoAccount},
	} {
		if tmpAccount.value == "" {
			return fmt.Errorf("%s must be specified", tmpAccount.name)
		}
		if _, err := types.ParseAccount(tmpAccount.value); err != nil {
			return fmt.Errorf("invalid %s: %w", tmpAccount.name, err)
		}
	}
	for _, tmpDuration := range []struct {
		name  string
		value string
	}{
		{"votingWindow", c.VotingWindow},
		{"shutdownTimeout", c.ShutdownTimeout},
		{"registry.presaleDuration", c.Registry.PresaleDuration},
		{"badger.gcInterval", c.Badger.GcInterval},
	} {
		if _, err := time.ParseDuration(tmpDuration.value); err != nil {
			return fmt.Errorf("invalid %s: %w", tmpDuration.name, err)
		}
	}
	for _, tmpAmount := range []struct {
		name  string
		value string
	}{
		{"registry.unitPrice", c.Registry.UnitPrice},
		{"marketplace.itemPrice", c.Marketplace.ItemPrice},
		{"token.price", c.Token.Price},
	} {
		if _, err := types.ParseAmount(tmpAmount.value); err != nil {
			return fmt.Errorf("invalid %s: %w", tmpAmount.name, err)
		}
	}
	return nil
}

var globalConfig = defaultConfig()

func defaultConfig() *Config {
	return &Config{
		DatabasePath:    ".daoledger",
		BindAddr:        "0.0.0.0",
		ApiPort:         8080,
		MetricsPort:     12799,
		VotingWindow:    DefaultVotingWindow,
		ShutdownTimeout: DefaultShutdownTimeout,
		Badger: BadgerConfig{
			CacheSize:      DefaultBadgerCacheSize,
			IndexCacheSize: DefaultBadgerIndexCacheSize,
			GcInterval:     DefaultBadgerGcInterval,
		},
		Registry: RegistryConfig{
			UnitPrice:       "0.01",
			PresaleDuration: DefaultPresaleDuration,
			MaxUnits:        20,
		},
		Whitelist: WhitelistConfig{
			MaxAddresses: 10,
		},
		Marketplace: MarketplaceConfig{
			ItemPrice: "0.1",
		},
		Token: TokenConfig{
			Price:     "0.001",
			PerUnit:   10,
			MaxSupply: 10000,
		},
	}
}

func LoadConfig(configFile string) (*Config, error) {
	if configFile == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".daoledger", "daoledger.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		if configFile == "" {
			systemPath := "/etc/daoledger/daoledger.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		err = yaml.Unmarshal(buf, globalConfig)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	err := envconfig.Process(envPrefix, globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}
	if err := globalConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}
