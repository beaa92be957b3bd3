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
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/blinklabs-io/daoledger/api"
	"github.com/blinklabs-io/daoledger/database"
	"github.com/blinklabs-io/daoledger/event"
	"github.com/blinklabs-io/daoledger/governance"
	"github.com/blinklabs-io/daoledger/marketplace"
	"github.com/blinklabs-io/daoledger/registry"
	"github.com/blinklabs-io/daoledger/token"
	"github.com/blinklabs-io/daoledger/whitelist"
)

type Node struct {
	eventBus      *event.EventBus
	db            *database.Database
	whitelist     *whitelist.Whitelist
	registry      *registry.Registry
	market        *marketplace.Market
	token         *token.Token
	engine        *governance.Engine
	api           *api.Server
	shutdownFuncs []func(context.Context) error
	config        Config
	ready         chan struct{}
	done          chan struct{}
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	n := &Node{
		config:   cfg,
		eventBus: event.NewEventBus(cfg.promRegistry, cfg.logger),
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
	}
	return n, nil
}

// Ready is closed once Run has started every component
func (n *Node) Ready() <-chan struct{} {
	return n.ready
}

// Engine returns the governance engine. It is nil until Run has started
func (n *Node) Engine() *governance.Engine {
	return n.engine
}

// Registry returns the asset registry. It is nil until Run has started
func (n *Node) Registry() *registry.Registry {
	return n.registry
}

// Api returns the REST API server, if enabled
func (n *Node) Api() *api.Server {
	return n.api
}

func (n *Node) Run() error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	// Load database
	db, err := database.New(&database.Config{
		DataDir:            n.config.dataDir,
		Logger:             n.config.logger,
		PromRegistry:       n.config.promRegistry,
		BlobCacheSize:      n.config.badgerCacheSize,
		BlobIndexCacheSize: n.config.badgerIndexCache,
		BlobGcInterval:     n.config.badgerGcInterval,
	})
	if db != nil {
		n.db = db
	}
	if err != nil {
		var dbErr database.CommitTimestampError
		if errors.As(err, &dbErr) {
			n.config.logger.Error(
				"database stores are out of sync, refusing to start",
				"error", err,
			)
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.logEvents()
	// Collaborators
	n.whitelist = whitelist.NewWhitelist(whitelist.WhitelistConfig{
		EventBus:     n.eventBus,
		Logger:       n.config.logger,
		MaxAddresses: n.config.whitelistMaxAddrs,
	})
	n.registry, err = registry.NewRegistry(registry.RegistryConfig{
		Whitelist:       n.whitelist,
		EventBus:        n.eventBus,
		Clock:           n.config.clock,
		Logger:          n.config.logger,
		Owner:           n.config.owner,
		UnitPrice:       n.config.unitPrice,
		MaxUnits:        n.config.maxUnits,
		PresaleDuration: n.config.presaleDuration,
	})
	if err != nil {
		return fmt.Errorf("failed to create asset registry: %w", err)
	}
	n.market = marketplace.NewMarket(marketplace.MarketConfig{
		EventBus:  n.eventBus,
		Logger:    n.config.logger,
		ItemPrice: n.config.itemPrice,
	})
	n.token, err = token.NewToken(token.TokenConfig{
		Holdings:      n.registry,
		EventBus:      n.eventBus,
		Logger:        n.config.logger,
		Owner:         n.config.owner,
		Price:         n.config.tokenPrice,
		TokensPerUnit: n.config.tokensPerUnit,
		MaxSupply:     n.config.tokenMaxSupply,
	})
	if err != nil {
		return fmt.Errorf("failed to create reward token: %w", err)
	}
	// Governance engine
	n.engine, err = governance.NewEngine(governance.EngineConfig{
		Database: n.db,
		Oracle:   n.registry,
		Marketplace: &marketplace.Adapter{
			Market: n.market,
			Buyer:  n.config.daoAccount,
		},
		EventBus:     n.eventBus,
		Clock:        n.config.clock,
		Logger:       n.config.logger,
		PromRegistry: n.config.promRegistry,
		Owner:        n.config.owner,
		VotingWindow: n.config.votingWindow,
	})
	if err != nil {
		return fmt.Errorf("failed to create governance engine: %w", err)
	}
	// REST API
	if n.config.apiListenAddress != "" {
		n.api, err = api.New(api.ServerConfig{
			Engine:        n.engine,
			Whitelist:     n.whitelist,
			Registry:      n.registry,
			Market:        n.market,
			Token:         n.token,
			Logger:        n.config.logger,
			ListenAddress: n.config.apiListenAddress,
		})
		if err != nil {
			return fmt.Errorf("failed to create API server: %w", err)
		}
		//nolint:contextcheck
		if err := n.api.Start(context.Background()); err != nil {
			return err
		}
	}
	close(n.ready)

	// Wait for shutdown signal
	<-n.done
	return nil
}

// logEvents writes every domain event to the debug log
func (n *Node) logEvents() {
	logger := n.config.logger.With("component", "node")
	for _, evtType := range []event.EventType{
		governance.ProposalCreatedEventType,
		governance.VoteCastEventType,
		governance.ProposalExecutedEventType,
		governance.TreasuryDepositEventType,
		governance.TreasuryWithdrawEventType,
		whitelist.AddressAddedEventType,
		registry.UnitMintedEventType,
		registry.UnitTransferredEventType,
		marketplace.ItemPurchasedEventType,
		token.TokensMintedEventType,
		token.TokensClaimedEventType,
	} {
		n.eventBus.SubscribeFunc(
			evtType,
			func(evt event.Event) {
				logger.Debug(
					"event",
					"type", string(evt.Type),
					"data", fmt.Sprintf("%+v", evt.Data),
				)
			},
		)
	}
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	shutdownTimeout := DefaultShutdownTimeout
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown")

	// Phase 1: Stop accepting new work
	n.config.logger.Debug("shutdown phase 1: stopping new work")

	if n.api != nil {
		if stopErr := n.api.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("API shutdown: %w", stopErr))
		}
	}

	// Phase 2: Stop event delivery
	n.config.logger.Debug("shutdown phase 2: stopping event delivery")

	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	// Phase 3: Close database
	n.config.logger.Debug("shutdown phase 3: closing database")

	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	// Phase 4: Cleanup resources
	n.config.logger.Debug("shutdown phase 4: cleanup resources")

	// Call registered shutdown functions
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	n.config.logger.Debug("graceful shutdown complete")
	close(n.done)
	return err
}
