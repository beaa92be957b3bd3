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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blinklabs-io/daoledger"
	"github.com/blinklabs-io/daoledger/internal/config"
	"github.com/blinklabs-io/daoledger/types"
)

// nodeOptions converts the loaded config into node options. The string values
// have already been checked by config.Validate
func nodeOptions(cfg *config.Config, logger *slog.Logger) ([]daoledger.ConfigOptionFunc, error) {
	owner, err := types.ParseAccount(cfg.Owner)
	if err != nil {
		return nil, fmt.Errorf("invalid owner: %w", err)
	}
	daoAccount, err := types.ParseAccount(cfg.DaoAccount)
	if err != nil {
		return nil, fmt.Errorf("invalid DAO account: %w", err)
	}
	var durations [4]time.Duration
	for i, tmpDuration := range []string{
		cfg.VotingWindow,
		cfg.ShutdownTimeout,
		cfg.Registry.PresaleDuration,
		cfg.Badger.GcInterval,
	} {
		durations[i], err = time.ParseDuration(tmpDuration)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", tmpDuration, err)
		}
	}
	var amounts [3]types.Amount
	for i, tmpAmount := range []string{
		cfg.Registry.UnitPrice,
		cfg.Marketplace.ItemPrice,
		cfg.Token.Price,
	} {
		amounts[i], err = types.ParseAmount(tmpAmount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", tmpAmount, err)
		}
	}
	opts := []daoledger.ConfigOptionFunc{
		daoledger.WithLogger(logger),
		daoledger.WithDatabasePath(cfg.DatabasePath),
		daoledger.WithOwner(owner),
		daoledger.WithDaoAccount(daoAccount),
		daoledger.WithVotingWindow(durations[0]),
		daoledger.WithShutdownTimeout(durations[1]),
		daoledger.WithPresaleDuration(durations[2]),
		daoledger.WithBadgerGcInterval(durations[3]),
		daoledger.WithBadgerCacheSize(cfg.Badger.CacheSize),
		daoledger.WithBadgerIndexCacheSize(cfg.Badger.IndexCacheSize),
		daoledger.WithUnitPrice(amounts[0]),
		daoledger.WithItemPrice(amounts[1]),
		daoledger.WithTokenPrice(amounts[2]),
		daoledger.WithMaxUnits(cfg.Registry.MaxUnits),
		daoledger.WithWhitelistMaxAddresses(cfg.Whitelist.MaxAddresses),
		daoledger.WithTokensPerUnit(cfg.Token.PerUnit),
		daoledger.WithTokenMaxSupply(cfg.Token.MaxSupply),
		daoledger.WithTracing(cfg.Tracing),
		daoledger.WithTracingStdout(cfg.TracingStdout),
		// Enable metrics with default prometheus registry
		daoledger.WithPrometheusRegistry(prometheus.DefaultRegisterer),
	}
	if cfg.ApiPort > 0 {
		opts = append(
			opts,
			daoledger.WithApiListenAddress(
				fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.ApiPort),
			),
		)
	}
	return opts, nil
}

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	opts, err := nodeOptions(cfg, logger)
	if err != nil {
		return err
	}
	n, err := daoledger.New(daoledger.NewConfig(opts...))
	if err != nil {
		return err
	}
	shutdownTimeout, _ := time.ParseDuration(cfg.ShutdownTimeout)
	if shutdownTimeout <= 0 {
		shutdownTimeout = daoledger.DefaultShutdownTimeout
	}
	// Metrics listener
	var metricsServer *http.Server
	if cfg.MetricsPort > 0 {
		metricsAddr := fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.MetricsPort)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:              metricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 60 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		}
		logger.Info(
			"serving prometheus metrics on "+metricsAddr,
			"component", "node",
		)
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				logger.Error(
					fmt.Sprintf("failed to start metrics listener: %s", err),
					"component", "node",
				)
			}
		}()
	}
	shutdownMetrics := func() {
		if metricsServer == nil {
			return
		}
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}
	}
	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()
	// Run node in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- n.Run()
	}()
	// Wait for signal or error
	select {
	case <-signalCtx.Done():
		logger.Info("signal received, initiating graceful shutdown")
		shutdownMetrics()
		if err := n.Stop(); err != nil {
			logger.Error("shutdown errors occurred", "error", err)
			return err
		}
		if err := <-errChan; err != nil {
			return err
		}
		logger.Info("node stopped")
		return nil
	case err := <-errChan:
		if err == nil {
			logger.Info("node stopped")
			shutdownMetrics()
			return nil
		}
		logger.Error("node error", "error", err)
		signalCtxStop()
		// Shutdown node resources
		if stopErr := n.Stop(); stopErr != nil {
			logger.Error(
				"shutdown errors occurred during error cleanup",
				"error",
				stopErr,
			)
		}
		shutdownMetrics()
		return err
	}
}
